package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestProvider(t *testing.T) {
	t.Run("foundry project defaults", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "foundry.toml"), `
[profile.default]
src = "src"
out = "build"

[rpc_endpoints]
sepolia = "${SEPOLIA_RPC_URL}"
local = "http://127.0.0.1:8545"

[etherscan]
sepolia = { key = "abc", url = "https://api-sepolia.etherscan.io/api" }
`)

		v := SetupViper(root, nil)
		cfg, err := Provider(v)
		require.NoError(t, err)

		assert.Equal(t, root, cfg.ProjectRoot)
		assert.Equal(t, filepath.Join(root, DataDirName), cfg.DataDir)
		assert.Equal(t, "default", cfg.Namespace)
		assert.Equal(t, 10*time.Minute, cfg.Timeout)
		assert.Equal(t, DefaultContract, cfg.DefaultContract)
		assert.Equal(t, []string{"build", "artifacts"}, cfg.ArtifactDirs)

		// endpoints stay raw until resolved
		assert.Equal(t, "${SEPOLIA_RPC_URL}", cfg.FoundryConfig.RpcEndpoints["sepolia"])
		assert.Equal(t, "abc", cfg.FoundryConfig.Etherscan["sepolia"].Key)
	})

	t.Run("hardhat project without foundry.toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "hardhat.config.js"), "module.exports = {};\n")

		cfg, err := Provider(SetupViper(root, nil))
		require.NoError(t, err)

		assert.Empty(t, cfg.FoundryConfig.RpcEndpoints)
		assert.Equal(t, []string{"out", "artifacts"}, cfg.ArtifactDirs)
	})

	t.Run("nftdeploy.toml overrides defaults", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "foundry.toml"), "[profile.default]\n")
		writeFile(t, filepath.Join(root, "nftdeploy.toml"), `
[deploy]
contract = "Marketplace"
sender = "ops"
confirmations = 6

[artifacts]
dirs = ["out"]

[senders.ops]
type = "keystore"
keystore = "keys/ops.json"
password_env = "OPS_PASSWORD"
`)

		cfg, err := Provider(SetupViper(root, nil))
		require.NoError(t, err)

		assert.Equal(t, "Marketplace", cfg.DefaultContract)
		assert.Equal(t, "ops", cfg.DefaultSender)
		assert.Equal(t, uint64(6), cfg.DefaultConfirmations)
		assert.Equal(t, []string{"out"}, cfg.ArtifactDirs)
		require.Contains(t, cfg.ProjectConfig.Senders, "ops")
		assert.Equal(t, config.SenderTypeKeystore, cfg.ProjectConfig.Senders["ops"].Type)
	})

	t.Run("rejects unknown sender type", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "nftdeploy.toml"), `
[senders.hw]
type = "ledger"
`)

		_, err := Provider(SetupViper(root, nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported type")
	})

	t.Run("flags override config", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "foundry.toml"), "")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("network", "", "")
		flags.String("namespace", "", "")
		flags.Bool("non-interactive", false, "")
		flags.Uint64("confirmations", 0, "")
		require.NoError(t, flags.Parse([]string{"--network", "sepolia", "--namespace", "staging", "--non-interactive", "--confirmations", "3"}))

		cfg, err := Provider(SetupViper(root, flags))
		require.NoError(t, err)

		assert.Equal(t, "sepolia", cfg.NetworkName)
		assert.Equal(t, "staging", cfg.Namespace)
		assert.True(t, cfg.NonInteractive)
		assert.Equal(t, uint64(3), cfg.DefaultConfirmations)
	})

	t.Run("loads .env before expansion", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "foundry.toml"), `
[etherscan]
sepolia = { key = "${NFTDEPLOY_TEST_ETHERSCAN_KEY}" }
`)
		writeFile(t, filepath.Join(root, ".env"), "NFTDEPLOY_TEST_ETHERSCAN_KEY=from-dotenv\n")
		t.Cleanup(func() { os.Unsetenv("NFTDEPLOY_TEST_ETHERSCAN_KEY") })

		cfg, err := Provider(SetupViper(root, nil))
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.FoundryConfig.Etherscan["sepolia"].Key)
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "hardhat.config.ts"), "export default {};\n")
	nested := filepath.Join(root, "contracts", "market")
	require.NoError(t, os.MkdirAll(nested, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(nested))

	found, err := FindProjectRoot()
	require.NoError(t, err)

	// macOS temp dirs resolve through /private
	expected, _ := filepath.EvalSymlinks(root)
	actual, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, expected, actual)
}

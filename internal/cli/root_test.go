package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/blockchain"
	"github.com/trebuchet-org/nft-deployer/internal/app"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/logging"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// creation code that deploys a contract whose runtime returns 42
const testBytecode = "0x600a600c600039600a6000f3602a60005260206000f3"

func init() {
	color.NoColor = true
}

// autoCommitClient mines a block after every submitted transaction
type autoCommitClient struct {
	simulated.Client
	backend *simulated.Backend
	sent    int
}

func (c *autoCommitClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.sent++
	c.backend.Commit()
	return nil
}

type testProject struct {
	root   string
	client *autoCommitClient
	from   string
}

// newTestProject creates a Foundry project with one compiled marketplace
// artifact, a funded PRIVATE_KEY and a localhost endpoint answering eth_chainId
// for the in-process chain
func newTestProject(t *testing.T, withArtifact bool) *testProject {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	t.Setenv("PRIVATE_KEY", hexutil.Encode(crypto.FromECDSA(key)))
	t.Setenv(logging.LogLevelEnv, "error")

	balance, _ := new(big.Int).SetString("100000000000000000000", 10)
	backend := simulated.NewBackend(types.GenesisAlloc{from: {Balance: balance}})
	t.Cleanup(func() { _ = backend.Close() })

	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Method != "eth_chainId" {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x539"}`, req.ID)
	}))
	t.Cleanup(rpc.Close)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "foundry.toml"), `[profile.default]
src = "src"
out = "out"

[rpc_endpoints]
localhost = "`+rpc.URL+`"
`)
	if withArtifact {
		writeFile(t, filepath.Join(root, "out", "DynamicNFTMarketplace.sol", "DynamicNFTMarketplace.json"), `{
  "abi": [],
  "bytecode": {"object": "`+testBytecode+`", "linkReferences": {}},
  "deployedBytecode": {"object": "0x602a60005260206000f3"},
  "metadata": {
    "compiler": {"version": "0.8.24+commit.e11b9ed9"},
    "settings": {"compilationTarget": {"src/DynamicNFTMarketplace.sol": "DynamicNFTMarketplace"}}
  }
}`)
	}

	return &testProject{
		root:   root,
		client: &autoCommitClient{Client: backend.Client(), backend: backend},
		from:   from.Hex(),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// run executes the CLI against the project's in-process chain
func (p *testProject) run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	return p.runCmd(newRootCmd(p.factory), args...)
}

func (p *testProject) runCmd(rootCmd *cobra.Command, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	args = append([]string{"--project-root", p.root, "--non-interactive"}, args...)
	code = execute(context.Background(), rootCmd, args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func (p *testProject) factory(v *viper.Viper, sink usecase.ProgressSink) (*app.App, error) {
	deployer := blockchain.NewDeployerWithDialer(logging.NewLoggerTo(&bytes.Buffer{}, nil),
		func(context.Context, string) (blockchain.Backend, error) { return p.client, nil },
		10*time.Millisecond)
	return app.InitAppWithDeployer(v, sink, deployer)
}

func (p *testProject) expectedAddress(nonce uint64) string {
	return crypto.CreateAddress(common.HexToAddress(p.from), nonce).Hex()
}

func TestDeploy_DefaultContract(t *testing.T) {
	p := newTestProject(t, true)

	code, stdout, stderr := p.run(t)
	require.Equal(t, 0, code, stderr)

	assert.Equal(t,
		"Deploying DynamicNFTMarketplace contract...\n"+
			"DynamicNFTMarketplace deployed to: "+p.expectedAddress(0)+"\n"+
			"Deployment completed successfully!\n",
		stdout)
	assert.Equal(t, 1, p.client.sent)
	assert.Contains(t, stderr, "[Resolving]")
	assert.NotContains(t, stderr, "Error:")

	code, stdout, _ = p.run(t, "list", "--json")
	require.Equal(t, 0, code)
	var records []models.Deployment
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "default/1337/DynamicNFTMarketplace", records[0].ID)
	assert.Equal(t, p.expectedAddress(0), records[0].Address)
	assert.Equal(t, p.from, records[0].Deployer)
	assert.Equal(t, "src/DynamicNFTMarketplace.sol:DynamicNFTMarketplace", records[0].Artifact.Path)
}

func TestDeploy_Subcommand(t *testing.T) {
	p := newTestProject(t, true)

	code, _, stderr := p.run(t, "deploy", "src/DynamicNFTMarketplace.sol:DynamicNFTMarketplace", "--tag", "v1")
	require.Equal(t, 0, code, stderr)

	// Re-deploying gets the next free label instead of overwriting
	code, stdout, stderr := p.run(t, "deploy", "DynamicNFTMarketplace", "--json")
	require.Equal(t, 0, code, stderr)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	assert.Equal(t, p.expectedAddress(1), out["address"])
	assert.Equal(t, "default/1337/DynamicNFTMarketplace:2", out["deploymentId"])
	assert.Equal(t, 2, p.client.sent)

	code, stdout, stderr = p.run(t, "show", "DynamicNFTMarketplace:2", "-o", "yaml")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "address: "+p.expectedAddress(1))

	code, stdout, _ = p.run(t, "show", p.expectedAddress(0))
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Tags: v1")
}

func TestDeploy_DryRun(t *testing.T) {
	p := newTestProject(t, true)

	code, stdout, stderr := p.run(t, "deploy", "--dry-run")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "DynamicNFTMarketplace would deploy to: "+p.expectedAddress(0))
	assert.Zero(t, p.client.sent)

	_, err := os.Stat(filepath.Join(p.root, ".nftdeploy", "deployments.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeploy_Failures(t *testing.T) {
	t.Run("no artifacts", func(t *testing.T) {
		p := newTestProject(t, false)
		code, stdout, stderr := p.run(t)

		assert.Equal(t, 1, code)
		assert.Equal(t, "Deploying DynamicNFTMarketplace contract...\n", stdout)
		assert.Contains(t, stderr, "Error: no artifact directories found")
		assert.Zero(t, p.client.sent)
	})

	t.Run("unknown contract", func(t *testing.T) {
		p := newTestProject(t, true)
		code, stdout, stderr := p.run(t, "deploy", "RoyaltyRegistry")

		assert.Equal(t, 1, code)
		assert.NotContains(t, stdout, "deployed to")
		assert.Contains(t, stderr, "Error: ")
		assert.Contains(t, stderr, "RoyaltyRegistry")
		assert.Zero(t, p.client.sent)
	})

	t.Run("unknown network", func(t *testing.T) {
		p := newTestProject(t, true)
		code, _, stderr := p.run(t, "--network", "goerli")

		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "GOERLI_RPC_URL")
		assert.Zero(t, p.client.sent)
	})

	t.Run("unexpected argument", func(t *testing.T) {
		p := newTestProject(t, true)
		code, _, stderr := p.run(t, "DynamicNFTMarketplace")

		assert.Equal(t, 1, code)
		assert.True(t, strings.HasPrefix(stderr, "Error: unknown command"), stderr)
	})
}

func TestNetworksCommand(t *testing.T) {
	p := newTestProject(t, true)

	code, stdout, stderr := p.run(t, "networks")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "✅ localhost - Chain ID: 1337")
}

func TestTagCommand(t *testing.T) {
	p := newTestProject(t, true)
	code, _, stderr := p.run(t, "deploy", "--tag", "v1")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := p.run(t, "tag", "DynamicNFTMarketplace", "--add", "stable")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Added tag 'stable' to default/1337/DynamicNFTMarketplace")
	assert.Contains(t, stdout, "Tags: v1, stable")

	code, _, stderr = p.run(t, "tag", "DynamicNFTMarketplace", "--add", "stable")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already has tag 'stable'")

	code, stdout, stderr = p.run(t, "tag", "DynamicNFTMarketplace", "--remove", "v1")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Tags: stable")

	code, stdout, _ = p.run(t, "show", "DynamicNFTMarketplace")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Tags: stable")
}

func TestConfigCommand(t *testing.T) {
	p := newTestProject(t, true)

	code, stdout, stderr := p.run(t, "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "No local config")

	code, stdout, stderr = p.run(t, "config", "set", "ns", "staging")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Set namespace to: staging")

	code, stdout, stderr = p.run(t, "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "namespace: staging")
	assert.Contains(t, stdout, "network:   (not set)")

	// Stored namespace applies to the next deploy
	code, _, stderr = p.run(t)
	require.Equal(t, 0, code, stderr)
	code, stdout, _ = p.run(t, "list", "--json")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"staging/1337/DynamicNFTMarketplace"`)

	code, stdout, stderr = p.run(t, "config", "remove", "namespace")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Removed namespace (was staging)")

	code, _, stderr = p.run(t, "config", "set", "chain", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: unknown config key: chain")
}

func TestExecute_CancelsTimeoutContext(t *testing.T) {
	p := newTestProject(t, true)

	for _, fail := range []bool{false, true} {
		var captured context.Context
		rootCmd := newRootCmd(p.factory)
		rootCmd.AddCommand(&cobra.Command{
			Use: "capture",
			RunE: func(cmd *cobra.Command, args []string) error {
				captured = cmd.Context()
				if fail {
					return errors.New("boom")
				}
				return nil
			},
		})

		code, _, _ := p.runCmd(rootCmd, "capture", "--timeout", "1h")
		assert.Equal(t, lo.Ternary(fail, 1, 0), code)
		require.NotNil(t, captured)
		assert.ErrorIs(t, captured.Err(), context.Canceled)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	code := execute(context.Background(), NewRootCmd(), []string{"version"}, &out, &bytes.Buffer{})
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out.String(), "nftdeploy version "))
}

func TestContractName(t *testing.T) {
	assert.Equal(t, "DynamicNFTMarketplace", contractName("DynamicNFTMarketplace"))
	assert.Equal(t, "DynamicNFTMarketplace", contractName("src/DynamicNFTMarketplace.sol:DynamicNFTMarketplace"))
	assert.Equal(t, "Royalty", contractName("contracts/Royalty.sol"))
}

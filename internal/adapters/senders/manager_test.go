package senders

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

// first anvil/hardhat dev account
const (
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func newManager(t *testing.T, senders map[string]config.SenderConfig, defaultSender string) *Manager {
	t.Helper()
	cfg := &config.RuntimeConfig{
		ProjectRoot:   t.TempDir(),
		DefaultSender: defaultSender,
		ProjectConfig: &config.ProjectConfig{Senders: senders},
	}
	return NewManager(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTransactOpts(t *testing.T) {
	ctx := context.Background()

	t.Run("private key from environment reference", func(t *testing.T) {
		t.Setenv("NFTDEPLOY_TEST_DEPLOYER_KEY", devKey)
		m := newManager(t, map[string]config.SenderConfig{
			"deployer": {Type: config.SenderTypePrivateKey, PrivateKey: "${NFTDEPLOY_TEST_DEPLOYER_KEY}", Address: devAddress},
		}, "")

		opts, err := m.TransactOpts(ctx, "", 31337)
		require.NoError(t, err)
		assert.Equal(t, devAddress, opts.From.Hex())
		assert.NotNil(t, opts.Signer)
	})

	t.Run("address mismatch", func(t *testing.T) {
		m := newManager(t, map[string]config.SenderConfig{
			"deployer": {Type: config.SenderTypePrivateKey, PrivateKey: devKey, Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},
		}, "")

		_, err := m.TransactOpts(ctx, "deployer", 31337)
		assert.ErrorContains(t, err, "expected 0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	})

	t.Run("falls back to PRIVATE_KEY", func(t *testing.T) {
		t.Setenv(PrivateKeyEnv, devKey)
		m := newManager(t, nil, "")

		opts, err := m.TransactOpts(ctx, "", 1)
		require.NoError(t, err)
		assert.Equal(t, devAddress, opts.From.Hex())
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(PrivateKeyEnv, "")
		m := newManager(t, nil, "")

		_, err := m.TransactOpts(ctx, "", 1)
		assert.ErrorIs(t, err, domain.ErrSenderNotConfigured)
	})

	t.Run("unknown sender name", func(t *testing.T) {
		m := newManager(t, map[string]config.SenderConfig{
			"deployer": {Type: config.SenderTypePrivateKey, PrivateKey: devKey},
		}, "")

		_, err := m.TransactOpts(ctx, "treasury", 1)
		assert.ErrorIs(t, err, domain.ErrSenderNotConfigured)
	})

	t.Run("default sender from config", func(t *testing.T) {
		m := newManager(t, map[string]config.SenderConfig{
			"a":       {Type: config.SenderTypePrivateKey, PrivateKey: "0x01"},
			"Primary": {Type: config.SenderTypePrivateKey, PrivateKey: devKey},
		}, "primary")

		opts, err := m.TransactOpts(ctx, "", 1)
		require.NoError(t, err)
		assert.Equal(t, devAddress, opts.From.Hex())
	})

	t.Run("invalid private key", func(t *testing.T) {
		m := newManager(t, map[string]config.SenderConfig{
			"deployer": {Type: config.SenderTypePrivateKey, PrivateKey: "0xnothex"},
		}, "")

		_, err := m.TransactOpts(ctx, "", 1)
		assert.ErrorContains(t, err, "invalid private key")
	})

	t.Run("keystore", func(t *testing.T) {
		key, err := crypto.HexToECDSA(devKey[2:])
		require.NoError(t, err)

		ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
		account, err := ks.ImportECDSA(key, "hunter2")
		require.NoError(t, err)

		t.Setenv("NFTDEPLOY_TEST_KEYSTORE_PASSWORD", "hunter2")
		m := newManager(t, map[string]config.SenderConfig{
			"cold": {Type: config.SenderTypeKeystore, Keystore: account.URL.Path, PasswordEnv: "NFTDEPLOY_TEST_KEYSTORE_PASSWORD"},
		}, "")

		opts, err := m.TransactOpts(ctx, "cold", 11155111)
		require.NoError(t, err)
		assert.Equal(t, devAddress, opts.From.Hex())

		t.Setenv("NFTDEPLOY_TEST_KEYSTORE_PASSWORD", "wrong")
		_, err = m.TransactOpts(ctx, "cold", 11155111)
		assert.ErrorContains(t, err, "failed to decrypt keystore")
	})
}

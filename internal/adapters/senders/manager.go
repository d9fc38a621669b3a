package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	cfgpkg "github.com/trebuchet-org/nft-deployer/internal/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// PrivateKeyEnv is read when no sender is configured in nftdeploy.toml
const PrivateKeyEnv = "PRIVATE_KEY"

// Manager builds signers from sender configurations
type Manager struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewManager creates a new sender manager
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// TransactOpts returns signing options for the named sender bound to chainID
func (m *Manager) TransactOpts(ctx context.Context, senderName string, chainID uint64) (*bind.TransactOpts, error) {
	name, sender, err := m.getSender(senderName)
	if err != nil {
		return nil, err
	}

	key, err := m.loadKey(name, sender)
	if err != nil {
		return nil, err
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	if sender.Address != "" && !strings.EqualFold(common.HexToAddress(sender.Address).Hex(), address.Hex()) {
		return nil, fmt.Errorf("sender %s: key belongs to %s, expected %s", name, address.Hex(), sender.Address)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, fmt.Errorf("sender %s: %w", name, err)
	}
	opts.Context = ctx

	m.log.Debug("loaded sender", "sender", name, "type", sender.Type, "address", address.Hex())
	return opts, nil
}

// getSender resolves a sender by name, then the configured default, then the
// PRIVATE_KEY environment variable
func (m *Manager) getSender(name string) (string, config.SenderConfig, error) {
	var senders map[string]config.SenderConfig
	if m.cfg.ProjectConfig != nil {
		senders = m.cfg.ProjectConfig.Senders
	}

	if name == "" {
		name = m.cfg.DefaultSender
	}

	if name != "" {
		if sender, ok := senders[name]; ok {
			return name, sender, nil
		}
		for key, sender := range senders {
			if strings.EqualFold(key, name) {
				return key, sender, nil
			}
		}
		return "", config.SenderConfig{}, fmt.Errorf("%w: sender '%s' not found in nftdeploy.toml", domain.ErrSenderNotConfigured, name)
	}

	if sender, ok := senders["default"]; ok {
		return "default", sender, nil
	}
	if len(senders) == 1 {
		for key, sender := range senders {
			return key, sender, nil
		}
	}
	for _, key := range []string{"deployer", "local", "dev"} {
		if sender, ok := senders[key]; ok {
			return key, sender, nil
		}
	}

	if os.Getenv(PrivateKeyEnv) != "" {
		return PrivateKeyEnv, config.SenderConfig{
			Type:       config.SenderTypePrivateKey,
			PrivateKey: "${" + PrivateKeyEnv + "}",
		}, nil
	}

	return "", config.SenderConfig{}, fmt.Errorf("%w: set %s or add a [senders.<name>] section to nftdeploy.toml",
		domain.ErrSenderNotConfigured, PrivateKeyEnv)
}

func (m *Manager) loadKey(name string, sender config.SenderConfig) (*ecdsa.PrivateKey, error) {
	switch sender.Type {
	case config.SenderTypePrivateKey:
		raw, err := cfgpkg.ExpandValue(sender.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("sender %s: %w", name, err)
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
		if err != nil {
			return nil, fmt.Errorf("sender %s: invalid private key: %w", name, err)
		}
		return key, nil

	case config.SenderTypeKeystore:
		path := sender.Keystore
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.cfg.ProjectRoot, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("sender %s: failed to read keystore: %w", name, err)
		}
		password := ""
		if sender.PasswordEnv != "" {
			password = os.Getenv(sender.PasswordEnv)
		}
		key, err := keystore.DecryptKey(data, password)
		if err != nil {
			return nil, fmt.Errorf("sender %s: failed to decrypt keystore: %w", name, err)
		}
		return key.PrivateKey, nil

	default:
		return nil, fmt.Errorf("sender %s: unsupported sender type %q", name, sender.Type)
	}
}

// Ensure the manager implements the interface
var _ usecase.SenderProvider = (*Manager)(nil)

package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	cfgpkg "github.com/trebuchet-org/nft-deployer/internal/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// LocalConfigStore keeps LocalConfig as JSON inside the data directory
type LocalConfigStore struct {
	configPath string
}

// NewLocalConfigStore creates a store for <data dir>/config.local.json
func NewLocalConfigStore(cfg *config.RuntimeConfig) *LocalConfigStore {
	return &LocalConfigStore{
		configPath: filepath.Join(cfg.DataDir, cfgpkg.LocalConfigFile),
	}
}

// Exists checks if the config file exists
func (s *LocalConfigStore) Exists() bool {
	_, err := os.Stat(s.configPath)
	return err == nil
}

// Load reads the configuration, returning an empty one when the file is missing
func (s *LocalConfigStore) Load(ctx context.Context) (*config.LocalConfig, error) {
	data, err := os.ReadFile(s.configPath)
	if os.IsNotExist(err) {
		return &config.LocalConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var local config.LocalConfig
	if err := json.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.configPath, err)
	}
	return &local, nil
}

// Save writes the configuration through a temp file and rename
func (s *LocalConfigStore) Save(ctx context.Context, local *config.LocalConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(local, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := s.configPath + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, s.configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetPath returns the path to the config file
func (s *LocalConfigStore) GetPath() string {
	return s.configPath
}

// Ensure LocalConfigStore implements LocalConfigRepository
var _ usecase.LocalConfigRepository = (*LocalConfigStore)(nil)

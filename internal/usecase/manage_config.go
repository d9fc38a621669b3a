package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

// ShowConfigResult contains the stored defaults and where they live
type ShowConfigResult struct {
	Config     *config.LocalConfig
	ConfigPath string
	Exists     bool
}

// ShowConfig shows the local configuration
type ShowConfig struct {
	store LocalConfigRepository
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(store LocalConfigRepository) *ShowConfig {
	return &ShowConfig{store: store}
}

// Run executes the show config use case
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	local, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &ShowConfigResult{
		Config:     local,
		ConfigPath: uc.store.GetPath(),
		Exists:     uc.store.Exists(),
	}, nil
}

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// ConfigChangeResult describes one changed key
type ConfigChangeResult struct {
	Config        *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	Value         string // new value, empty after a remove
	PreviousValue string
}

// SetConfig sets a local configuration value
type SetConfig struct {
	store LocalConfigRepository
}

// NewSetConfig creates a new SetConfig use case
func NewSetConfig(store LocalConfigRepository) *SetConfig {
	return &SetConfig{store: store}
}

// Run executes the set config use case
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*ConfigChangeResult, error) {
	if params.Value == "" {
		return nil, fmt.Errorf("empty value for %s, use \"config remove\" to clear it", params.Key)
	}
	return changeConfig(ctx, uc.store, params.Key, params.Value)
}

// RemoveConfig clears a local configuration value
type RemoveConfig struct {
	store LocalConfigRepository
}

// NewRemoveConfig creates a new RemoveConfig use case
func NewRemoveConfig(store LocalConfigRepository) *RemoveConfig {
	return &RemoveConfig{store: store}
}

// Run executes the remove config use case
func (uc *RemoveConfig) Run(ctx context.Context, key string) (*ConfigChangeResult, error) {
	if !uc.store.Exists() {
		return nil, fmt.Errorf("no config file found at %s", uc.store.GetPath())
	}
	return changeConfig(ctx, uc.store, key, "")
}

func changeConfig(ctx context.Context, store LocalConfigRepository, rawKey, value string) (*ConfigChangeResult, error) {
	key, err := config.ParseConfigKey(rawKey)
	if err != nil {
		return nil, err
	}

	local, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	previous := local.Get(key)
	local.Set(key, value)

	if err := store.Save(ctx, local); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &ConfigChangeResult{
		Config:        local,
		ConfigPath:    store.GetPath(),
		Key:           key,
		Value:         value,
		PreviousValue: previous,
	}, nil
}

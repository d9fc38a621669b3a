package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

// loadEnvFiles loads .env files from the project root. Variables already set
// in the process environment are not overridden.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadFoundryConfig loads and parses foundry.toml. A missing file yields an
// empty config (hardhat projects have none).
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	cfg := &config.FoundryConfig{
		Profile:      make(map[string]config.ProfileConfig),
		RpcEndpoints: make(map[string]string),
		Etherscan:    make(map[string]config.EtherscanConfig),
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		return cfg, nil
	}

	var raw config.FoundryConfig
	if _, err := toml.DecodeFile(foundryPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	for name, profile := range raw.Profile {
		cfg.Profile[name] = profile
	}

	// Endpoints keep their raw form here; expansion happens at resolution
	// time so a missing variable only fails the network that needs it.
	for name, url := range raw.RpcEndpoints {
		cfg.RpcEndpoints[name] = url
	}

	for network, ec := range raw.Etherscan {
		ec.URL = os.ExpandEnv(ec.URL)
		ec.Key = os.ExpandEnv(ec.Key)
		cfg.Etherscan[network] = ec
	}

	return cfg, nil
}

// loadProjectConfig loads nftdeploy.toml. A missing file yields defaults.
func loadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	cfg := &config.ProjectConfig{
		Senders: make(map[string]config.SenderConfig),
	}

	path := filepath.Join(projectRoot, "nftdeploy.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	for name, sender := range cfg.Senders {
		if sender.Type == "" {
			return nil, fmt.Errorf("sender %s: type is required", name)
		}
		if sender.Type != config.SenderTypePrivateKey && sender.Type != config.SenderTypeKeystore {
			return nil, fmt.Errorf("sender %s: unsupported type %q (valid: private_key, keystore)", name, sender.Type)
		}
	}

	return cfg, nil
}

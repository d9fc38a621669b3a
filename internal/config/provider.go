package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

const (
	// DataDirName is the per-project state directory
	DataDirName = ".nftdeploy"

	// LocalConfigFile holds defaults written by "nftdeploy config set"
	LocalConfigFile = "config.local.json"

	// DefaultContract is deployed when no contract is named on the command line
	DefaultContract = "DynamicNFTMarketplace"
)

// projectMarkers are the files that identify a project root
var projectMarkers = []string{
	"foundry.toml",
	"hardhat.config.js",
	"hardhat.config.ts",
	"hardhat.config.cjs",
	"nftdeploy.toml",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	projectRoot = absRoot

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, DataDirName),
		Namespace:      v.GetString("namespace"),
		NetworkName:    v.GetString("network"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
	}

	// .env files are loaded before any ${VAR} expansion happens
	loadEnvFiles(projectRoot)

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	projectConfig, err := loadProjectConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load nftdeploy.toml: %w", err)
	}
	cfg.ProjectConfig = projectConfig

	cfg.DefaultContract = firstNonEmpty(v.GetString("contract"), projectConfig.Deploy.Contract, DefaultContract)
	cfg.DefaultSender = firstNonEmpty(v.GetString("sender"), projectConfig.Deploy.Sender)
	cfg.DefaultConfirmations = projectConfig.Deploy.Confirmations
	if v.IsSet("confirmations") {
		cfg.DefaultConfirmations = v.GetUint64("confirmations")
	}

	cfg.ArtifactDirs = projectConfig.Artifacts.Dirs
	if len(cfg.ArtifactDirs) == 0 {
		cfg.ArtifactDirs = []string{foundryConfig.OutDir(cfg.Namespace), "artifacts"}
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find a project marker
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a contracts project (no foundry.toml or hardhat.config found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigFile(filepath.Join(projectRoot, DataDirName, LocalConfigFile))
	v.SetConfigType("json")

	// Set up environment variables
	v.SetEnvPrefix("NFTDEPLOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("namespace", "default")
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			// Only flags the user actually set win over env and config file
			if !f.Changed {
				return
			}
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Namespace   string
	NetworkName string // resolved lazily, after the contract factory

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Project defaults (flags override these)
	DefaultContract      string
	DefaultSender        string
	DefaultConfirmations uint64

	// Directories scanned for compilation artifacts, relative to ProjectRoot
	ArtifactDirs []string

	// Resolved configurations
	FoundryConfig *FoundryConfig
	ProjectConfig *ProjectConfig
}

// EtherscanV2APIURL is the multichain Etherscan API, selected with ?chainid=
const EtherscanV2APIURL = "https://api.etherscan.io/v2/api"

// Network represents network configuration
type Network struct {
	ChainID        uint64 `json:"chainId" yaml:"chainId"`
	Name           string `json:"name" yaml:"name"`
	RPCURL         string `json:"rpcUrl" yaml:"rpcUrl"`
	ExplorerURL    string `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
	ExplorerAPIURL string `json:"-" yaml:"-"`
	ExplorerAPIKey string `json:"-" yaml:"-"`
}

// IsLocal reports whether the network is a local development chain
func (n *Network) IsLocal() bool {
	return n.ChainID == 31337 || n.ChainID == 1337
}

package config

// FoundryConfig represents the parts of foundry.toml nftdeploy reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig   `toml:"profile"`
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`
}

// EtherscanConfig represents Etherscan configuration for a network
// This matches Foundry's expected structure
type EtherscanConfig struct {
	Key   string `toml:"key,omitempty"`   // API key for verification
	URL   string `toml:"url,omitempty"`   // API URL (for custom explorers)
	Chain any    `toml:"chain,omitempty"` // chain id or name
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath     string   `toml:"src,omitempty"`
	OutPath     string   `toml:"out,omitempty"`
	LibPaths    []string `toml:"libs,omitempty"`
	SolcVersion string   `toml:"solc_version,omitempty"`
}

// OutDir returns the artifact output directory of the given profile, falling
// back to the default profile and then to forge's default "out"
func (f *FoundryConfig) OutDir(profile string) string {
	if f == nil {
		return "out"
	}
	if p, ok := f.Profile[profile]; ok && p.OutPath != "" {
		return p.OutPath
	}
	if p, ok := f.Profile["default"]; ok && p.OutPath != "" {
		return p.OutPath
	}
	return "out"
}

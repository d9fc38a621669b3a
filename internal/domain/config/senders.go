package config

type SenderType string

var (
	SenderTypePrivateKey SenderType = "private_key"
	SenderTypeKeystore   SenderType = "keystore"
)

// SenderConfig represents a sender configuration
type SenderConfig struct {
	Type        SenderType `toml:"type"`
	Address     string     `toml:"address,omitempty"`
	PrivateKey  string     `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Keystore    string     `toml:"keystore,omitempty"`     // path to an encrypted JSON key file
	PasswordEnv string     `toml:"password_env,omitempty"` // env var holding the keystore password
}

// ProjectConfig is the nftdeploy.toml file at the project root
type ProjectConfig struct {
	Deploy    DeployDefaults          `toml:"deploy"`
	Artifacts ArtifactsConfig         `toml:"artifacts"`
	Senders   map[string]SenderConfig `toml:"senders"`
}

// DeployDefaults holds defaults for the deploy command
type DeployDefaults struct {
	Contract      string `toml:"contract"`
	Sender        string `toml:"sender"`
	Confirmations uint64 `toml:"confirmations"`
}

// ArtifactsConfig lists the directories holding compilation artifacts
type ArtifactsConfig struct {
	Dirs []string `toml:"dirs"`
}

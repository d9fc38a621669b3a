package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// getRelativePath returns the relative path from current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	return relPath
}

// RenderConfig renders the configuration display
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "No local config at %s\n", getRelativePath(result.ConfigPath))
		fmt.Fprintln(r.out, "Defaults apply: namespace 'default', network 'localhost'")
		return nil
	}

	fmt.Fprintln(r.out, "📋 Current config:")
	for _, key := range config.ValidConfigKeys() {
		value := result.Config.Get(key)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(r.out, "%-10s %s\n", key+":", value)
	}
	fmt.Fprintf(r.out, "\n📁 config file: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.ConfigChangeResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s to: %s", result.Key, result.Value)))
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.ConfigChangeResult) error {
	if result.PreviousValue == "" {
		fmt.Fprintf(r.out, "%s was not set\n", result.Key)
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s (was %s)", result.Key, result.PreviousValue)))
	}
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

package config

import (
	"fmt"
	"strings"
)

// LocalConfig holds per-checkout defaults in .nftdeploy/config.local.json.
// Keys match the viper keys so the file is read as a config source as-is.
type LocalConfig struct {
	Namespace string `json:"namespace,omitempty"`
	Network   string `json:"network,omitempty"`
	Contract  string `json:"contract,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNamespace ConfigKey = "namespace"
	ConfigKeyNetwork   ConfigKey = "network"
	ConfigKeyContract  ConfigKey = "contract"
	ConfigKeySender    ConfigKey = "sender"
)

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNamespace,
		ConfigKeyNetwork,
		ConfigKeyContract,
		ConfigKeySender,
	}
}

// ParseConfigKey normalizes a key ("ns" is short for namespace) and rejects
// unknown ones
func ParseConfigKey(key string) (ConfigKey, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "ns" {
		return ConfigKeyNamespace, nil
	}
	for _, valid := range ValidConfigKeys() {
		if string(valid) == key {
			return valid, nil
		}
	}

	names := make([]string, 0, len(ValidConfigKeys()))
	for _, k := range ValidConfigKeys() {
		if k == ConfigKeyNamespace {
			names = append(names, string(k)+" (ns)")
		} else {
			names = append(names, string(k))
		}
	}
	return "", fmt.Errorf("unknown config key: %s\nAvailable keys: %s", key, strings.Join(names, ", "))
}

// Get returns the value stored for key
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNamespace:
		return c.Namespace
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyContract:
		return c.Contract
	case ConfigKeySender:
		return c.Sender
	}
	return ""
}

// Set stores value for key; an empty value clears it
func (c *LocalConfig) Set(key ConfigKey, value string) {
	switch key {
	case ConfigKeyNamespace:
		c.Namespace = value
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyContract:
		c.Contract = value
	case ConfigKeySender:
		c.Sender = value
	}
}

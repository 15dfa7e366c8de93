package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Holds tables that are awkward to express as env vars.
type YAMLConfig struct {
	Flavors    map[int]string   `yaml:"flavors"`    // Rounded score -> micro flavor text
	Moderators ModeratorsConfig `yaml:"moderators"`
}

// ModeratorsConfig defines who receives moderation e-mails besides moderator accounts.
type ModeratorsConfig struct {
	ExtraRecipients []string `yaml:"extra_recipients,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from an explicit path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FlavorOverrides returns the micro flavor table, or nil when none is configured.
func (c *YAMLConfig) FlavorOverrides() map[int]string {
	if c == nil {
		return nil
	}
	return c.Flavors
}

// ExtraModeratorRecipients returns additional addresses for moderator notifications.
func (c *YAMLConfig) ExtraModeratorRecipients() []string {
	if c == nil {
		return nil
	}
	return c.Moderators.ExtraRecipients
}

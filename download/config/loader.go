package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable names for credential overlay. Credentials from the
// environment win over the config file so secrets can stay out of it.
const (
	EnvClientID     = "TUNEDL_CLIENT_ID"
	EnvClientSecret = "TUNEDL_CLIENT_SECRET"
)

// Load reads settings from a YAML file, overlays credentials from the
// environment, applies defaults, and validates. An empty path skips the file
// and builds settings from environment and defaults alone.
func Load(path string) (*Settings, error) {
	var settings Settings

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &ConfigError{Message: fmt.Sprintf("configuration file not found: %s", path)}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("error reading configuration file: %v", err)}
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("error parsing configuration file: %v", err)}
		}
	}

	if v := os.Getenv(EnvClientID); v != "" {
		settings.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		settings.ClientSecret = v
	}

	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

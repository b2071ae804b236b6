package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cloudlink/pkg/logging"
)

const (
	userConfigDir  = ".config/cloudlink"
	configFileName = "config.yaml"
)

// OAuthConfig holds the identity-provider client settings.
type OAuthConfig struct {
	// Domain is the identity provider base URL.
	Domain string `yaml:"domain"`

	// ClientID is the OAuth client id registered for cloudlink.
	ClientID string `yaml:"clientId"`

	// Audience is the API audience tokens are issued for.
	Audience string `yaml:"audience"`
}

// Config is the top-level cloudlink configuration.
type Config struct {
	// OAuth configures the identity-provider client.
	OAuth OAuthConfig `yaml:"oauth"`

	// VaultDir is the directory of the file-backed secret vault.
	// Empty means the default under the user's home directory.
	VaultDir string `yaml:"vaultDir"`

	// CallbackPort is the local port the OAuth redirect listener binds.
	CallbackPort int `yaml:"callbackPort"`
}

// GetDefaultConfigPathOrPanic returns the user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// GetDefaultConfig returns the built-in configuration, pointing at the
// production cloud service.
func GetDefaultConfig() Config {
	return Config{
		OAuth: OAuthConfig{
			Domain:   "https://auth.cloudlink.dev",
			ClientID: "kJ3x9TqWb2YfLp8RzN4mCv6HsD1aGt0u",
			Audience: "https://api.cloudlink.dev/",
		},
		CallbackPort: 4215,
	}
}

// Load loads configuration from the specified directory, overlaying
// config.yaml on top of the defaults. A missing file yields the defaults; a
// malformed file is an error.
func Load(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Warn("ConfigLoader", "Error reading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

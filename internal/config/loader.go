package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDir  = ".mariner"
	configFile = "config"
	configType = "yaml"
)

// Load reads the configuration from ~/.mariner/config.yaml and fills in
// profile passwords from the keyring. Returns an empty config if the file
// does not exist.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	viper.SetConfigName(configFile)
	viper.SetConfigType(configType)
	viper.AddConfigPath(dir)

	// Defaults
	viper.SetDefault("preferences.theme", "default")

	cfg := &Config{}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for i := range cfg.Connections {
		pw, err := GetPassword(cfg.Connections[i].Name)
		if err != nil {
			continue // a profile without a stored secret still loads
		}
		cfg.Connections[i].Password = pw
	}

	return cfg, nil
}

// Save writes the configuration to ~/.mariner/config.yaml. Passwords go to
// the keyring, never to disk.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	for _, conn := range cfg.Connections {
		if conn.Password == "" {
			continue
		}
		if err := SetPassword(conn.Name, conn.Password); err != nil {
			return fmt.Errorf("store secret for %q: %w", conn.Name, err)
		}
	}

	viper.Set("connections", cfg.Connections)
	viper.Set("preferences", cfg.Preferences)

	path := filepath.Join(dir, configFile+"."+configType)
	return viper.WriteConfigAs(path)
}

// SaveConnection adds a profile (if new) and persists the config.
func SaveConnection(cfg *Config, conn Connection) error {
	if cfg.HasConnection(conn.Name) {
		return nil
	}
	cfg.AddConnection(conn)
	return Save(cfg)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

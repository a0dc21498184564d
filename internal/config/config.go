// Package config loads daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "focusbreaker"
	configFileName = "config.yaml"

	// DefaultListenAddr is where the daemon serves its API.
	DefaultListenAddr = "127.0.0.1:7466"
)

// Config holds daemon settings that live outside the database. Behavioral
// tunables (intervals, snooze allowance) live in the settings table and are
// edited over the API.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		DBPath:     defaultDBPath(),
	}
}

// Load reads the config file, falling back to defaults for missing values.
// A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()
	path, err := Path()
	if err != nil {
		return cfg, err
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fileData Config
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	if fileData.ListenAddr != "" {
		cfg.ListenAddr = fileData.ListenAddr
	}
	if fileData.DBPath != "" {
		cfg.DBPath = fileData.DBPath
	}
	return cfg, nil
}

// Save writes the configuration to the config file, creating the directory
// if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Path returns the config file location under the user config directory.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appDirName, configFileName), nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "focusbreaker.db"
	}
	return filepath.Join(home, ".focusbreaker", "focusbreaker.db")
}

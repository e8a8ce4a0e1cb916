package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the atelier configuration
type Config struct {
	Model       string `json:"model"`        // LLM in provider:model form
	APIKey      string `json:"api_key"`      // API key for the LLM provider
	BaseURL     string `json:"base_url"`     // Base URL for the LLM provider (optional)
	DataDir     string `json:"data_dir"`     // Where the store database and working file live
	PreviewAddr string `json:"preview_addr"` // Listen address for the preview server
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Model:       "openai:gpt-4o",
		PreviewAddr: "127.0.0.1:8924",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.DataDir = filepath.Join(home, ".atelier")
	}
	return cfg
}

// LoadConfig loads configuration from global and local sources
func LoadConfig(workDir string) (*Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := loadGlobalConfig()
	if err == nil {
		mergeCfg(cfg, globalCfg)
	}

	// Local config takes precedence
	localCfg, err := loadLocalConfig(workDir)
	if err == nil {
		mergeCfg(cfg, localCfg)
	}

	return cfg, nil
}

// Get retrieves a configuration value by key
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "model":
		return c.Model, nil
	case "api_key":
		return c.APIKey, nil
	case "base_url":
		return c.BaseURL, nil
	case "data_dir":
		return c.DataDir, nil
	case "preview_addr":
		return c.PreviewAddr, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a configuration value by key
func (c *Config) Set(key, value string) error {
	switch key {
	case "model":
		c.Model = value
	case "api_key":
		c.APIKey = value
	case "base_url":
		c.BaseURL = value
	case "data_dir":
		c.DataDir = value
	case "preview_addr":
		c.PreviewAddr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// loadGlobalConfig loads configuration from ~/.atelier/config.json
func loadGlobalConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return loadConfigFromFile(filepath.Join(homeDir, ".atelier", "config.json"))
}

// loadLocalConfig loads configuration from <workDir>/.atelier/config.json
func loadLocalConfig(workDir string) (*Config, error) {
	return loadConfigFromFile(filepath.Join(workDir, ".atelier", "config.json"))
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveGlobalConfig saves configuration to ~/.atelier/config.json
func SaveGlobalConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(homeDir, ".atelier")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// SaveLocalConfig saves configuration to <workDir>/.atelier/config.json
func SaveLocalConfig(workDir string, cfg *Config) error {
	dir := filepath.Join(workDir, ".atelier")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// mergeCfg merges source config into destination config
func mergeCfg(dst, src *Config) {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.PreviewAddr != "" {
		dst.PreviewAddr = src.PreviewAddr
	}
}

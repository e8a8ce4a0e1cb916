package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Model != "openai:gpt-4o" {
		t.Errorf("Expected default model, got %q", cfg.Model)
	}
	if cfg.PreviewAddr == "" {
		t.Errorf("Expected default preview address")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	cfg := DefaultConfig()

	keys := map[string]string{
		"model":        "ollama:llama3",
		"api_key":      "sk-test",
		"base_url":     "http://localhost:8080/v1",
		"data_dir":     "/tmp/atelier",
		"preview_addr": "127.0.0.1:9000",
	}
	for k, v := range keys {
		if err := cfg.Set(k, v); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
		got, err := cfg.Get(k)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", k, err)
		}
		if got != v {
			t.Errorf("Get(%q) = %q, want %q", k, got, v)
		}
	}

	if err := cfg.Set("bogus", "x"); err == nil {
		t.Errorf("Expected error for unknown key")
	}
	if _, err := cfg.Get("bogus"); err == nil {
		t.Errorf("Expected error for unknown key")
	}
}

func TestLocalConfigOverridesDefaults(t *testing.T) {
	workDir := t.TempDir()
	localDir := filepath.Join(workDir, ".atelier")
	if err := os.MkdirAll(localDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	local := &Config{Model: "ollama:codellama", PreviewAddr: "127.0.0.1:9999"}
	data, _ := json.Marshal(local)
	if err := os.WriteFile(filepath.Join(localDir, "config.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(workDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Model != "ollama:codellama" {
		t.Errorf("Expected local model override, got %q", cfg.Model)
	}
	if cfg.PreviewAddr != "127.0.0.1:9999" {
		t.Errorf("Expected local preview address override, got %q", cfg.PreviewAddr)
	}
	// Unset fields keep their defaults.
	if cfg.DataDir == "" && os.Getenv("HOME") != "" {
		t.Errorf("Expected default data dir retained")
	}
}

func TestSaveLocalConfig(t *testing.T) {
	workDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Model = "openai:gpt-4o-mini"

	if err := SaveLocalConfig(workDir, cfg); err != nil {
		t.Fatalf("SaveLocalConfig failed: %v", err)
	}

	loaded, err := LoadConfig(workDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Model != "openai:gpt-4o-mini" {
		t.Errorf("Expected saved model, got %q", loaded.Model)
	}
}

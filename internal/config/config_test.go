package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "folioChat" {
		t.Errorf("expected Name=folioChat, got %s", cfg.Name)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default base URL, got %s", cfg.Server.BaseURL)
	}
	if cfg.Chat.RevealChunk != 2 {
		t.Errorf("expected RevealChunk=2, got %d", cfg.Chat.RevealChunk)
	}
	if len(cfg.Chat.SuggestedQuestions) == 0 {
		t.Error("expected default suggested questions")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("FOLIO_SERVER_URL", "")
	t.Setenv("FOLIO_SEND_TIMEOUT", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://folio.example.com"
	cfg.Chat.VisitorName = "recruiter"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.BaseURL != "https://folio.example.com" {
		t.Errorf("expected saved base URL, got %s", loaded.Server.BaseURL)
	}
	if loaded.Chat.VisitorName != "recruiter" {
		t.Errorf("expected saved visitor name, got %s", loaded.Chat.VisitorName)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("FOLIO_SERVER_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should return defaults, got error: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default base URL, got %s", cfg.Server.BaseURL)
	}
}

func TestLoad_PartialYAML(t *testing.T) {
	t.Setenv("FOLIO_SERVER_URL", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := "server:\n  base_url: https://partial.example.com\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://partial.example.com" {
		t.Errorf("expected yaml base URL, got %s", cfg.Server.BaseURL)
	}
	// Unspecified fields keep defaults
	if cfg.Chat.RevealChunk != 2 {
		t.Errorf("expected default RevealChunk, got %d", cfg.Chat.RevealChunk)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetSendTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s send timeout, got %v", got)
	}
	if got := cfg.GetRevealInterval(); got != 30*time.Millisecond {
		t.Errorf("expected 30ms reveal interval, got %v", got)
	}

	// Garbage durations fall back to defaults
	cfg.Server.SendTimeout = "not-a-duration"
	cfg.Chat.RevealInterval = "also-bad"
	if got := cfg.GetSendTimeout(); got != 30*time.Second {
		t.Errorf("expected fallback send timeout, got %v", got)
	}
	if got := cfg.GetRevealInterval(); got != 30*time.Millisecond {
		t.Errorf("expected fallback reveal interval, got %v", got)
	}
}

func TestGetRevealChunk_Floor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chat.RevealChunk = 0
	if got := cfg.GetRevealChunk(); got != 2 {
		t.Errorf("expected floor of 2, got %d", got)
	}
	cfg.Chat.RevealChunk = 5
	if got := cfg.GetRevealChunk(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Server.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty base URL")
	}

	cfg = DefaultConfig()
	cfg.Server.SendTimeout = "banana"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid send timeout")
	}

	cfg = DefaultConfig()
	cfg.Chat.RevealInterval = "banana"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid reveal interval")
	}
}

package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("FOLIO_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.ServerURL = "https://folio.example.com"
	cfg.Token = "tok_123"
	cfg.VisitorName = "Recruiter"
	cfg.Logging.DebugMode = true

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServerURL != "https://folio.example.com" {
		t.Errorf("ServerURL=%q", loaded.ServerURL)
	}
	if loaded.Token != "tok_123" {
		t.Errorf("Token=%q", loaded.Token)
	}
	if loaded.VisitorName != "Recruiter" {
		t.Errorf("VisitorName=%q", loaded.VisitorName)
	}
	if !loaded.Logging.DebugMode {
		t.Errorf("Logging.DebugMode=false, want true")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FOLIO_HOME", filepath.Join(t.TempDir(), "nothing-here"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("ServerURL=%q, want default", cfg.ServerURL)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme=%q, want dark", cfg.Theme)
	}
}

func TestConfigDirHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOLIO_HOME", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir=%q, want %q", got, dir)
	}
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Server(t *testing.T) {
	t.Run("FOLIO_SERVER_URL overrides base URL", func(t *testing.T) {
		t.Setenv("FOLIO_SERVER_URL", "https://env.example.com")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://env.example.com", cfg.Server.BaseURL)
	})

	t.Run("FOLIO_SEND_TIMEOUT overrides timeout", func(t *testing.T) {
		t.Setenv("FOLIO_SEND_TIMEOUT", "45s")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "45s", cfg.Server.SendTimeout)
	})

	t.Run("empty env leaves config untouched", func(t *testing.T) {
		t.Setenv("FOLIO_SERVER_URL", "")
		t.Setenv("FOLIO_SEND_TIMEOUT", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
		assert.Equal(t, "30s", cfg.Server.SendTimeout)
	})
}

func TestEnvOverrides_Chat(t *testing.T) {
	t.Run("FOLIO_VISITOR_NAME sets visitor name", func(t *testing.T) {
		t.Setenv("FOLIO_VISITOR_NAME", "alex")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "alex", cfg.Chat.VisitorName)
	})
}

func TestEnvOverrides_Logging(t *testing.T) {
	t.Run("FOLIO_LOG_LEVEL sets level", func(t *testing.T) {
		t.Setenv("FOLIO_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestEnvOverrides_AppliedOnLoad(t *testing.T) {
	t.Setenv("FOLIO_SERVER_URL", "https://wins.example.com")

	// Env override beats the value in the file
	tmpDir := t.TempDir()
	path := tmpDir + "/config.yaml"
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://loses.example.com"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://wins.example.com", loaded.Server.BaseURL)
}

func TestEnvOverrides_AppliedWhenFileMissing(t *testing.T) {
	t.Setenv("FOLIO_SERVER_URL", "https://envonly.example.com")

	loaded, err := Load(t.TempDir() + "/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "https://envonly.example.com", loaded.Server.BaseURL)
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadOnChange(t *testing.T) {
	t.Setenv("FOLIO_SERVER_URL", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  base_url: https://v1.example.com\n"), 0644))

	var mu sync.Mutex
	var latest *Config
	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		latest = cfg
		mu.Unlock()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	assert.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(path, []byte("server:\n  base_url: https://v2.example.com\n"), 0644))

	// Debounce window is 500ms, poller ticks every 100ms
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return latest != nil && latest.Server.BaseURL == "https://v2.example.com"
	}, 5*time.Second, 50*time.Millisecond, "expected reload with updated base URL")

	stats := w.GetStats()
	assert.GreaterOrEqual(t, stats.Reloads, 1)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: folioChat\n"), 0644))

	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(path, func(*Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-reloaded:
		t.Fatal("sibling file change should not trigger reload")
	case <-time.After(900 * time.Millisecond):
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	// Stop before Start must not block or panic
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestWatcher_StartIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx)) // second Start is a no-op
	w.Stop()
}

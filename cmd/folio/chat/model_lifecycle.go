package chat

import (
	"foliochat/internal/logging"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Shutdown stops the session engine and flushes usage stats.
// Safe to call multiple times - only executes once.
// MUST be called before tea.Quit to prevent goroutine leaks.
func (m *Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		// Cancel any in-flight request via the root context
		if m.shutdownCancel != nil {
			m.shutdownCancel()
		}

		// Stop the config watcher before tearing the session down
		if m.watcher != nil {
			m.watcher.Stop()
		}

		// Close the engine; this waits for its goroutines to drain
		if m.sess != nil {
			m.sess.Close()
		}

		// Flush pending usage stats to disk
		if m.tracker != nil {
			if err := m.tracker.Save(); err != nil {
				logging.Usage("shutdown: save failed: %v", err)
			}
		}

		logging.UI("chat: shutdown complete")
	})
}

// performShutdown is a value-receiver wrapper for Shutdown() that can be called
// from Update(). It uses a local copy to call the pointer method.
func (m Model) performShutdown() {
	// Safe because Shutdown serializes through the shared sync.Once
	modelPtr := &m
	modelPtr.Shutdown()
}

// waitForUpdate listens for transcript changes from the engine.
// The returned command re-arms itself from the Update handler.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		if m.sess == nil {
			return nil
		}
		select {
		case <-m.sess.Updates():
			return sessionUpdateMsg{}
		case <-m.sess.Done():
			return sessionClosedMsg{}
		}
	}
}

// waitForQuota listens for quota-exhausted refusals from the engine.
func (m Model) waitForQuota() tea.Cmd {
	return func() tea.Msg {
		if m.sess == nil {
			return nil
		}
		select {
		case ev := <-m.sess.QuotaEvents():
			return quotaMsg(ev)
		case <-m.sess.Done():
			return nil
		}
	}
}

// waitForConfigReload listens for reloaded config files from the
// watcher so pacing and theme changes land without a restart.
func (m Model) waitForConfigReload() tea.Cmd {
	return func() tea.Msg {
		if m.cfgReloads == nil {
			return nil
		}
		select {
		case cfg := <-m.cfgReloads:
			return configReloadMsg{cfg: cfg}
		case <-m.shutdownCtx.Done():
			return nil
		}
	}
}

// Init initializes the interactive chat model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.performSessionBoot(), // Portfolio lookup runs off the UI thread
		m.waitForConfigReload(),
	)
}

// RunInteractiveChat starts the interactive chat session
func RunInteractiveChat(cfg Config) error {
	model := InitChat(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

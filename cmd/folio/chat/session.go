// Package chat provides the interactive TUI chat surface for folioChat.
// This file contains chat initialization and the session boot command.
package chat

import (
	"context"
	"path/filepath"
	"sync"

	"foliochat/cmd/folio/config"
	"foliochat/cmd/folio/ui"
	"foliochat/internal/api"
	appconfig "foliochat/internal/config"
	"foliochat/internal/logging"
	"foliochat/internal/session"
	"foliochat/internal/usage"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// InitChat initializes the interactive chat model
func InitChat(cfg Config) Model {
	// User prefs (token, server, theme) and app tuning (pacing, visitor)
	userCfg, _ := config.Load()
	appCfg := loadAppConfig()

	// Initialize styles. The tuning file wins over the prefs file so a
	// live reload can flip the theme.
	theme := userCfg.Theme
	if appCfg.Chat.Theme != "" {
		theme = appCfg.Chat.Theme
	}
	styles := ui.DefaultStyles()
	switch theme {
	case "dark":
		styles = ui.NewStyles(ui.DarkTheme())
	case "light":
		styles = ui.NewStyles(ui.LightTheme())
	}

	// Initialize textinput for input
	ti := textinput.New()
	ti.Placeholder = "Connecting..."
	ti.Prompt = "| "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	// Initialize spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	// Initialize viewport for chat history
	vp := viewport.New(80, 20)
	vp.SetContent("")

	// Initialize markdown renderer
	renderer := newMarkdownRenderer(styles.Theme.IsDark, 80)

	// Usage tracker persists per-question outcomes under the folio home
	var tracker *usage.Tracker
	if dir, err := config.ConfigDir(); err != nil {
		logging.Usage("chat: tracker unavailable: %v", err)
	} else if t, err := usage.NewTracker(dir); err != nil {
		logging.Usage("chat: tracker unavailable: %v", err)
	} else {
		tracker = t
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = userCfg.ServerURL
	}
	visitorName := cfg.VisitorName
	if visitorName == "" {
		visitorName = userCfg.VisitorName
	}
	if visitorName == "" {
		visitorName = appCfg.Chat.VisitorName
	}

	suggested := appCfg.Chat.SuggestedQuestions
	if len(suggested) == 0 {
		suggested = defaultSuggestedQuestions
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	m := Model{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,

		tracker: tracker,

		portfolioURL: cfg.PortfolioURL,
		visitorName:  visitorName,
		serverURL:    serverURL,
		token:        userCfg.Token,

		sessionCfg: session.Config{
			PortfolioURL:       cfg.PortfolioURL,
			SendTimeout:        appCfg.GetSendTimeout(),
			LookupTimeout:      appCfg.GetLookupTimeout(),
			RevealInterval:     appCfg.GetRevealInterval(),
			RevealChunk:        appCfg.GetRevealChunk(),
			SuggestedQuestions: suggested,
		},

		isBooting: true,

		shutdownOnce:   &sync.Once{},
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	m.watcher, m.cfgReloads = startConfigWatcher(shutdownCtx)

	return m
}

// loadAppConfig reads the config.yaml tuning file from the folio home,
// falling back to defaults when it is absent or unreadable.
func loadAppConfig() *appconfig.Config {
	dir, err := config.ConfigDir()
	if err != nil {
		return appconfig.DefaultConfig()
	}
	cfg, err := appconfig.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		logging.ConfigWarn("chat: config load failed: %v", err)
		return appconfig.DefaultConfig()
	}
	return cfg
}

// startConfigWatcher watches config.yaml and delivers reloads over a
// coalescing channel the Update loop drains. Returns nils when the
// watcher cannot be set up; the chat just runs without live reload.
func startConfigWatcher(ctx context.Context) (*appconfig.Watcher, chan *appconfig.Config) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, nil
	}

	reloads := make(chan *appconfig.Config, 1)
	w, err := appconfig.NewWatcher(filepath.Join(dir, "config.yaml"), func(cfg *appconfig.Config) {
		// Keep only the newest reload; onChange runs on a single
		// goroutine so the drain cannot race another producer.
		select {
		case reloads <- cfg:
		default:
			select {
			case <-reloads:
			default:
			}
			reloads <- cfg
		}
	})
	if err != nil {
		logging.ConfigWarn("chat: config watcher unavailable: %v", err)
		return nil, nil
	}

	if err := w.Start(ctx); err != nil {
		logging.ConfigWarn("chat: config watcher failed to start: %v", err)
		return nil, nil
	}
	return w, reloads
}

// performSessionBoot resolves the portfolio and constructs the session
// engine off the UI thread. A lookup failure is terminal for the chat
// surface: the model renders its unavailable screen instead of an
// input area.
func (m Model) performSessionBoot() tea.Cmd {
	return func() tea.Msg {
		client := api.NewClient(m.serverURL)
		if m.token != "" {
			client.SetToken(m.token)
		}

		backend := newPortfolioBackend(client, m.visitorName, m.tracker)

		ctx := usage.WithSessionContext(m.shutdownCtx, uuid.NewString())
		sess, err := session.New(ctx, m.sessionCfg, backend)
		if err != nil {
			logging.Boot("chat: session boot failed for %q: %v", m.portfolioURL, err)
			return bootCompleteMsg{err: err}
		}

		logging.Boot("chat: session ready for %q", m.portfolioURL)
		return bootCompleteMsg{sess: sess}
	}
}

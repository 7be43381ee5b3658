package chat

import (
	"context"
	"sync"

	"foliochat/cmd/folio/ui"
	appconfig "foliochat/internal/config"
	"foliochat/internal/session"
	"foliochat/internal/usage"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration for initializing the chat interface.
type Config struct {
	// PortfolioURL is the custom URL slug of the portfolio to chat with.
	PortfolioURL string

	// VisitorName optionally identifies the visitor to the portfolio
	// owner's analytics. Empty means anonymous.
	VisitorName string

	// ServerURL overrides the configured backend address when non-empty.
	ServerURL string
}

// defaultSuggestedQuestions seed the quick replies offered while the
// conversation is still empty. Alt+1..Alt+3 submit them directly.
var defaultSuggestedQuestions = []string{
	"What projects have you built?",
	"What technologies do you work with?",
	"Tell me about your background.",
}

// =============================================================================
// CORE TYPES
// =============================================================================

// Model is the main model for the interactive chat interface
type Model struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// Backend
	sess    *session.Session
	tracker *usage.Tracker

	// Connection settings resolved during InitChat
	portfolioURL string
	visitorName  string
	serverURL    string
	token        string
	sessionCfg   session.Config

	// Live config reload
	watcher    *appconfig.Watcher
	cfgReloads chan *appconfig.Config

	// State
	history      []session.Message
	ownerName    string
	quotaNotice  string
	quotaCount   int
	err          error
	width        int
	height       int
	ready        bool
	inputHistory []string
	historyIndex int

	// Boot State
	isBooting bool

	// Shutdown coordination
	shutdownOnce   *sync.Once         // Pointer so Model copies share the once
	shutdownCtx    context.Context    // Root context for the session and its requests
	shutdownCancel context.CancelFunc // Cancels shutdownCtx on quit
}

// Messages for tea updates
type (
	// bootCompleteMsg carries the result of the startup portfolio lookup.
	bootCompleteMsg struct {
		sess *session.Session
		err  error
	}

	// sessionUpdateMsg signals that the conversation transcript or the
	// request state changed and the viewport needs re-rendering.
	sessionUpdateMsg struct{}

	// quotaMsg is one quota-exhausted refusal from the engine.
	quotaMsg session.QuotaEvent

	// sessionClosedMsg signals the engine shut down and listeners
	// should stop re-arming.
	sessionClosedMsg struct{}

	// configReloadMsg carries a freshly reloaded config file so reveal
	// pacing and theme changes apply without restarting the chat.
	configReloadMsg struct {
		cfg *appconfig.Config
	}

	// windowSizeMsg is the internal alias for tea.WindowSizeMsg so
	// layout recalculation can be re-entered from other cases.
	windowSizeMsg struct {
		Width  int
		Height int
	}
)

// Package chat provides test utilities for TUI testing.
// This file contains mocks, fixtures, and helpers for testing the chat package.
package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"foliochat/cmd/folio/ui"
	"foliochat/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// MOCK BACKEND
// =============================================================================

// MockBackend simulates the portfolio service for testing.
type MockBackend struct {
	mu        sync.Mutex
	info      session.PortfolioInfo
	lookupErr error
	answer    string
	askErr    error
	askDelay  time.Duration
	askCalls  int
}

// NewMockBackend creates a mock backend for an active portfolio.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		info: session.PortfolioInfo{
			Name:      "Jane's Portfolio",
			CustomURL: "jane",
			OwnerName: "Jane Doe",
			Active:    true,
		},
		answer: "Mock answer.",
	}
}

// LookupPortfolio returns the configured portfolio or lookup error.
func (b *MockBackend) LookupPortfolio(_ context.Context, _ string) (*session.PortfolioInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	info := b.info
	return &info, nil
}

// AskQuestion returns the configured answer, honoring askDelay and
// context cancellation.
func (b *MockBackend) AskQuestion(ctx context.Context, _, _ string) (string, error) {
	b.mu.Lock()
	b.askCalls++
	delay := b.askDelay
	answer := b.answer
	askErr := b.askErr
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return answer, askErr
}

// AskCalls returns how many questions reached the backend.
func (b *MockBackend) AskCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.askCalls
}

// MockError is a simple error type for failure injection.
type MockError struct {
	msg string
}

func (e *MockError) Error() string {
	return e.msg
}

// =============================================================================
// TEST MODEL BUILDER
// =============================================================================

// TestModelOption configures a test model.
type TestModelOption func(*Model)

// NewTestModel creates a minimal Model suitable for testing.
// It initializes all required fields with lightweight defaults.
func NewTestModel(opts ...TestModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "Test input..."
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    ui.NewStyles(ui.DarkTheme()),

		portfolioURL: "jane",

		width:  100,
		height: 30,
		ready:  true,

		shutdownOnce:   &sync.Once{},
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithBooting marks the model as still booting.
func WithBooting(booting bool) TestModelOption {
	return func(m *Model) {
		m.isBooting = booting
	}
}

// WithSession attaches a live session engine.
func WithSession(s *session.Session) TestModelOption {
	return func(m *Model) {
		m.sess = s
		m.ownerName = s.Portfolio().OwnerName
		m.history = s.Messages()
	}
}

// newLiveSession builds a session over the mock backend with a fast
// reveal so tests settle quickly.
func newLiveSession(t *testing.T, backend *MockBackend) *session.Session {
	t.Helper()
	s, err := session.New(context.Background(), session.Config{
		PortfolioURL:       "jane",
		RevealInterval:     time.Millisecond,
		RevealChunk:        16,
		SuggestedQuestions: defaultSuggestedQuestions,
	}, backend)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// waitForTranscript polls until the transcript holds n messages with
// the engine idle, or fails at the deadline.
func waitForTranscript(t *testing.T, s *session.Session, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Messages()) >= n && !s.IsSending() && !s.Revealing() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("transcript never reached %d settled messages (have %d)", n, len(s.Messages()))
}

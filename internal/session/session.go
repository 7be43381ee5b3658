// Package session implements the chat session engine for a single
// portfolio conversation.
//
// The engine owns an append-only message sequence seeded with a welcome
// turn, admits at most one in-flight question at a time (concurrent
// submissions are silently dropped, never queued), and presents each
// answer through a timer-driven typewriter reveal. Quota-exhausted
// responses surface as a distinct event stream instead of a
// conversation turn. The hosting view is a read-only observer whose
// only write channels are SubmitQuestion and CancelActiveReveal.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"foliochat/internal/logging"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn. User content is immutable once
// appended. Assistant content is mutated only by the reveal that
// targets it; once that reveal completes or is cancelled, the content
// never changes again.
type Message struct {
	ID      uuid.UUID
	Role    Role
	Content string
	Time    time.Time
}

// PortfolioInfo is the result of the startup portfolio lookup.
type PortfolioInfo struct {
	Name      string
	CustomURL string
	OwnerName string
	Active    bool
}

// Backend is the engine's view of the portfolio service.
type Backend interface {
	// LookupPortfolio resolves a portfolio by its custom URL.
	// Unknown and inactive portfolios should both return an error.
	LookupPortfolio(ctx context.Context, customURL string) (*PortfolioInfo, error)

	// AskQuestion sends one visitor question and returns the complete
	// answer text. The engine classifies a quota-exhausted refusal by
	// asserting the returned error against
	// interface{ QuotaExceeded() bool }.
	AskQuestion(ctx context.Context, customURL, question string) (string, error)
}

// QuotaEvent is raised once per quota-exhausted response. Consecutive
// occurrences each raise a fresh event; the engine keeps no suppression
// state.
type QuotaEvent struct {
	PortfolioURL string
	Question     string
	Time         time.Time
}

// Engine defaults.
const (
	DefaultSendTimeout    = 30 * time.Second
	DefaultLookupTimeout  = 10 * time.Second
	DefaultRevealInterval = 30 * time.Millisecond
	DefaultRevealChunk    = 2
)

// FallbackAnswer is appended verbatim as an assistant turn when a send
// fails for any reason other than quota exhaustion. It is never
// revealed incrementally.
const FallbackAnswer = "Sorry, I'm having trouble responding right now. Please try again in a moment."

// Config configures a Session.
type Config struct {
	// PortfolioURL is the portfolio's custom URL slug.
	PortfolioURL string

	// SendTimeout bounds one question round trip. A request that
	// outlives it settles as a generic failure. Zero means
	// DefaultSendTimeout.
	SendTimeout time.Duration

	// LookupTimeout bounds the startup portfolio lookup. Zero means
	// DefaultLookupTimeout.
	LookupTimeout time.Duration

	// RevealInterval is the delay between reveal ticks. Zero means
	// DefaultRevealInterval.
	RevealInterval time.Duration

	// RevealChunk is how many characters each tick publishes. Zero
	// means DefaultRevealChunk.
	RevealChunk int

	// SuggestedQuestions are the quick-reply strings offered by the
	// hosting view.
	SuggestedQuestions []string
}

func (c *Config) applyDefaults() {
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
	if c.RevealInterval <= 0 {
		c.RevealInterval = DefaultRevealInterval
	}
	if c.RevealChunk <= 0 {
		c.RevealChunk = DefaultRevealChunk
	}
}

// Session is the chat session engine for one portfolio conversation.
type Session struct {
	cfg     Config
	backend Backend

	mu        sync.Mutex
	messages  []Message
	sending   bool
	reveal    *reveal // active typewriter reveal, nil when idle
	portfolio PortfolioInfo
	closed    bool

	updates     chan struct{}   // cap-1 dirty signal, coalesced
	quotaEvents chan QuotaEvent // one entry per quota refusal

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New looks up the portfolio and returns a ready session seeded with
// the welcome message. A failed lookup (unknown, inactive, or
// unreachable portfolio) is terminal: no session is created and the
// hosting view should present its not-found state instead of a chat
// surface.
func New(ctx context.Context, cfg Config, backend Backend) (*Session, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	if strings.TrimSpace(cfg.PortfolioURL) == "" {
		return nil, errors.New("portfolio URL required")
	}
	cfg.applyDefaults()

	lookupCtx, lookupCancel := context.WithTimeout(ctx, cfg.LookupTimeout)
	defer lookupCancel()

	logging.BootDebug("session: looking up portfolio %q", cfg.PortfolioURL)

	info, err := backend.LookupPortfolio(lookupCtx, cfg.PortfolioURL)
	if err != nil {
		logging.BootError("session: portfolio lookup failed: %v", err)
		return nil, fmt.Errorf("portfolio lookup failed: %w", err)
	}
	if !info.Active {
		return nil, fmt.Errorf("portfolio %q is not active", cfg.PortfolioURL)
	}
	if strings.TrimSpace(info.OwnerName) == "" {
		return nil, fmt.Errorf("portfolio lookup returned no owner name")
	}

	sessCtx, sessCancel := context.WithCancel(ctx)
	s := &Session{
		cfg:         cfg,
		backend:     backend,
		portfolio:   *info,
		updates:     make(chan struct{}, 1),
		quotaEvents: make(chan QuotaEvent, 4),
		ctx:         sessCtx,
		cancel:      sessCancel,
	}

	s.messages = append(s.messages, Message{
		ID:      uuid.New(),
		Role:    RoleAssistant,
		Content: WelcomeMessage(info.OwnerName),
		Time:    time.Now(),
	})

	logging.Session("session: opened for %q (owner=%s)", cfg.PortfolioURL, info.OwnerName)
	return s, nil
}

// WelcomeMessage returns the seeded assistant greeting for an owner.
func WelcomeMessage(ownerName string) string {
	return fmt.Sprintf("Hi! I'm the AI assistant for **%s**'s portfolio. Ask me anything about their skills, experience, or projects!", ownerName)
}

// SubmitQuestion submits one visitor question. It reports true when
// the question was accepted, which is also the signal for the hosting
// view to clear its input buffer. Blank input and submissions made
// while a request is already in flight are silently dropped: no queue,
// no error, and the caller's draft stays put.
//
// On acceptance the user turn is appended and the sending flag is set
// before this method returns; the network round trip settles on a
// background goroutine.
func (s *Session) SubmitQuestion(text string) bool {
	question := strings.TrimSpace(text)
	if question == "" {
		return false
	}

	s.mu.Lock()
	if s.closed || s.sending {
		s.mu.Unlock()
		logging.SessionDebug("session: submission dropped (sending=%v closed=%v)", s.sending, s.closed)
		return false
	}
	s.sending = true
	s.messages = append(s.messages, Message{
		ID:      uuid.New(),
		Role:    RoleUser,
		Content: question,
		Time:    time.Now(),
	})
	s.mu.Unlock()

	s.notify()
	logging.Session("session: question accepted (%d chars)", len(question))

	s.wg.Add(1)
	go s.settle(question)
	return true
}

// SuggestedQuestions returns the configured quick-reply strings.
func (s *Session) SuggestedQuestions() []string {
	out := make([]string, len(s.cfg.SuggestedQuestions))
	copy(out, s.cfg.SuggestedQuestions)
	return out
}

// SubmitSuggestedQuestion submits the quick-reply at index i. It is a
// convenience overload of SubmitQuestion with identical drop semantics.
func (s *Session) SubmitSuggestedQuestion(i int) bool {
	if i < 0 || i >= len(s.cfg.SuggestedQuestions) {
		return false
	}
	return s.SubmitQuestion(s.cfg.SuggestedQuestions[i])
}

// SetRevealPacing adjusts the typewriter pacing at runtime. The chunk
// size takes effect on the active reveal's next tick; the interval
// takes effect when the next reveal starts. Non-positive values leave
// the current setting unchanged.
func (s *Session) SetRevealPacing(interval time.Duration, chunk int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.cfg.RevealInterval = interval
	}
	if chunk > 0 {
		s.cfg.RevealChunk = chunk
	}
	logging.SessionDebug("session: reveal pacing set to %v/%d", s.cfg.RevealInterval, s.cfg.RevealChunk)
}

// settle runs one question round trip to completion and applies the
// outcome. The request itself is never cancelled by the UI; only
// session close tears it down early, and a timeout settles it as a
// generic failure.
func (s *Session) settle(question string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SendTimeout)
	defer cancel()

	answer, err := s.backend.AskQuestion(ctx, s.cfg.PortfolioURL, question)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.sending = false

	switch {
	case err == nil:
		msg := Message{
			ID:   uuid.New(),
			Role: RoleAssistant,
			Time: time.Now(),
		}
		s.messages = append(s.messages, msg)
		s.beginRevealLocked(len(s.messages)-1, answer)
		s.mu.Unlock()
		logging.Session("session: answer settled (%d chars), reveal started", len(answer))

	case isQuotaExceeded(err):
		// History keeps only the user turn; the refusal surfaces as
		// an event, not a message.
		s.mu.Unlock()
		logging.SessionWarn("session: quota exhausted: %v", err)
		s.raiseQuotaEvent(question)

	default:
		s.messages = append(s.messages, Message{
			ID:      uuid.New(),
			Role:    RoleAssistant,
			Content: FallbackAnswer,
			Time:    time.Now(),
		})
		s.mu.Unlock()
		logging.SessionError("session: send failed: %v", err)
	}

	s.notify()
}

// isQuotaExceeded classifies an error as a quota refusal by behavior
// rather than by concrete type.
func isQuotaExceeded(err error) bool {
	var quotaErr interface{ QuotaExceeded() bool }
	return errors.As(err, &quotaErr) && quotaErr.QuotaExceeded()
}

// Messages returns a consistent snapshot of the conversation,
// including whatever partial content the active reveal has published
// so far.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// IsSending reports whether a question round trip is in flight.
func (s *Session) IsSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Portfolio returns the lookup result this session was opened with.
func (s *Session) Portfolio() PortfolioInfo {
	return s.portfolio
}

// Updates returns a signal channel that receives after any observable
// state change. Signals are coalesced; consumers re-read the snapshot
// on each receive.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// QuotaEvents returns the quota refusal event stream. Every refusal
// raises a fresh event; display deduplication belongs to the hosting
// view.
func (s *Session) QuotaEvents() <-chan QuotaEvent {
	return s.quotaEvents
}

// notify publishes a coalesced dirty signal.
func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Session) raiseQuotaEvent(question string) {
	ev := QuotaEvent{
		PortfolioURL: s.cfg.PortfolioURL,
		Question:     question,
		Time:         time.Now(),
	}
	select {
	case s.quotaEvents <- ev:
	default:
		// The sending gate caps outstanding refusals; a full buffer
		// means no listener is attached, and dropping is harmless.
	}
}

// Done is closed once the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close shuts the session down and waits for its goroutines. Any
// active reveal freezes at its current prefix. Safe to call more than
// once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		r := s.reveal
		s.reveal = nil
		s.mu.Unlock()

		if r != nil {
			r.cancel()
		}
		s.cancel()
		s.wg.Wait()

		logging.Session("session: closed for %q", s.cfg.PortfolioURL)
	})
}

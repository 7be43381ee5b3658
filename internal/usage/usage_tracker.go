package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"foliochat/internal/logging"
)

type contextKey struct{}

type sessionKey struct{}

// Tracker records how chat questions settled, per portfolio and per
// session, and persists the counters under the folio home directory.
type Tracker struct {
	mu       sync.Mutex
	data     UsageData
	filePath string
	dirty    bool
}

// NewTracker creates a usage tracker persisting to usage.json inside
// the given folio home directory (normally ~/.folio).
func NewTracker(homeDir string) (*Tracker, error) {
	if err := os.MkdirAll(homeDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folio dir: %w", err)
	}

	t := &Tracker{
		filePath: filepath.Join(homeDir, "usage.json"),
		data: UsageData{
			Version: "1.0",
			Aggregate: AggregatedStats{
				ByPortfolio: make(map[string]TurnCounts),
				BySession:   make(map[string]TurnCounts),
				ByDay:       make(map[string]TurnCounts),
			},
		},
	}

	if err := t.Load(); err != nil {
		// A corrupt or unreadable file should not block the chat;
		// start over with empty counters.
		logging.UsageDebug("usage: load failed, starting fresh: %v", err)
	}

	return t, nil
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}

	// Ensure maps are initialized if file was empty/partial
	if t.data.Aggregate.ByPortfolio == nil {
		t.data.Aggregate.ByPortfolio = make(map[string]TurnCounts)
	}
	if t.data.Aggregate.BySession == nil {
		t.data.Aggregate.BySession = make(map[string]TurnCounts)
	}
	if t.data.Aggregate.ByDay == nil {
		t.data.Aggregate.ByDay = make(map[string]TurnCounts)
	}

	return nil
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	t.dirty = false
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records one settled question for a portfolio. The session ID
// is taken from the context when WithSessionContext put one there.
func (t *Tracker) Track(ctx context.Context, portfolioURL string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessionID := "unknown"
	if val, ok := ctx.Value(sessionKey{}).(string); ok && val != "" {
		sessionID = val
	}

	t.data.Aggregate.Total.Add(outcome)
	addToMap(t.data.Aggregate.ByPortfolio, portfolioURL, outcome)
	addToMap(t.data.Aggregate.BySession, sessionID, outcome)
	addToMap(t.data.Aggregate.ByDay, time.Now().Format("2006-01-02"), outcome)

	logging.UsageDebug("usage: %s on %q (session=%s)", outcome, portfolioURL, sessionID)

	// Debounced auto-save
	if !t.dirty {
		t.dirty = true
		time.AfterFunc(5*time.Second, func() {
			if err := t.Save(); err != nil {
				logging.Usage("usage: autosave failed: %v", err)
			}
		})
	}
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByPortfolio = copyTurnCountsMap(stats.ByPortfolio)
	stats.BySession = copyTurnCountsMap(stats.BySession)
	stats.ByDay = copyTurnCountsMap(stats.ByDay)
	return stats
}

func copyTurnCountsMap(src map[string]TurnCounts) map[string]TurnCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TurnCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TurnCounts, key string, outcome Outcome) {
	entry := m[key]
	entry.Add(outcome)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context, or nil.
func FromContext(ctx context.Context) *Tracker {
	val := ctx.Value(contextKey{})
	if val == nil {
		return nil
	}
	return val.(*Tracker)
}

// WithSessionContext tags the context with a chat session ID so Track
// can attribute questions to it.
func WithSessionContext(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTracker_TrackAggregatesAndPersists(t *testing.T) {
	home := t.TempDir()
	tracker, err := NewTracker(home)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	// Avoid background autosave during the test (debounce uses AfterFunc).
	tracker.dirty = true

	ctx := WithSessionContext(context.Background(), "sess_1")
	tracker.Track(ctx, "jane-doe", OutcomeAnswered)
	tracker.Track(ctx, "jane-doe", OutcomeAnswered)
	tracker.Track(ctx, "jane-doe", OutcomeQuotaDenied)
	tracker.Track(ctx, "john-roe", OutcomeFailed)

	stats := tracker.Stats()
	if stats.Total.Questions != 4 || stats.Total.Answered != 2 || stats.Total.QuotaDenied != 1 || stats.Total.Failed != 1 {
		t.Fatalf("Total=%+v, want questions=4 answered=2 quota=1 failed=1", stats.Total)
	}
	if got := stats.ByPortfolio["jane-doe"]; got.Questions != 3 || got.Answered != 2 {
		t.Fatalf("ByPortfolio[jane-doe]=%+v, want questions=3 answered=2", got)
	}
	if got := stats.ByPortfolio["john-roe"]; got.Failed != 1 {
		t.Fatalf("ByPortfolio[john-roe]=%+v, want failed=1", got)
	}
	if got := stats.BySession["sess_1"]; got.Questions != 4 {
		t.Fatalf("BySession[sess_1]=%+v, want questions=4", got)
	}
	day := time.Now().Format("2006-01-02")
	if got := stats.ByDay[day]; got.Questions != 4 {
		t.Fatalf("ByDay[%s]=%+v, want questions=4", day, got)
	}

	if err := tracker.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "usage.json"))
	if err != nil {
		t.Fatalf("read usage.json: %v", err)
	}
	var persisted UsageData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal usage.json: %v", err)
	}
	if persisted.Aggregate.Total.Questions != 4 {
		t.Fatalf("persisted questions=%d, want 4", persisted.Aggregate.Total.Questions)
	}
}

func TestTracker_LoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	first, err := NewTracker(home)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	first.dirty = true
	ctx := WithSessionContext(context.Background(), "sess_rt")
	first.Track(ctx, "jane-doe", OutcomeAnswered)
	first.Track(ctx, "john-roe", OutcomeQuotaDenied)
	if err := first.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := NewTracker(home)
	if err != nil {
		t.Fatalf("NewTracker reload: %v", err)
	}
	if diff := cmp.Diff(first.Stats(), second.Stats()); diff != "" {
		t.Fatalf("reloaded stats mismatch (-saved +reloaded):\n%s", diff)
	}
}

func TestTracker_CorruptFileStartsFresh(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "usage.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	tracker, err := NewTracker(home)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	if got := tracker.Stats().Total.Questions; got != 0 {
		t.Fatalf("questions=%d, want 0 after corrupt load", got)
	}
}

func TestTracker_ContextHelpers(t *testing.T) {
	home := t.TempDir()
	tracker, err := NewTracker(home)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	ctx := NewContext(context.Background(), tracker)
	if got := FromContext(ctx); got == nil {
		t.Fatalf("FromContext returned nil")
	}
	if got := FromContext(ctx); got != tracker {
		t.Fatalf("FromContext mismatch")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("FromContext on bare context = %v, want nil", got)
	}
}

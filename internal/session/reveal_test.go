package session

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevealSession(t *testing.T, backend Backend, interval time.Duration, chunk int) *Session {
	t.Helper()
	s, err := New(context.Background(), Config{
		PortfolioURL:   "jane-doe",
		RevealInterval: interval,
		RevealChunk:    chunk,
	}, backend)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// contentAt returns the content of the message at index i, or "" while
// that message does not exist yet. Poll helpers rely on the empty
// string reading as "not there yet".
func contentAt(s *Session, i int) string {
	msgs := s.Messages()
	if len(msgs) <= i {
		return ""
	}
	return msgs[i].Content
}

func TestReveal_ProgressesInChunks(t *testing.T) {
	backend := &fakeBackend{answer: "0123456789"}
	s := newRevealSession(t, backend, 30*time.Millisecond, 2)

	require.True(t, s.SubmitQuestion("count"))

	// The answer must pass through partial states before completing.
	sawPartial := false
	require.Eventually(t, func() bool {
		content := contentAt(s, 2)
		if content != "" && content != "0123456789" {
			sawPartial = true
		}
		return content == "0123456789" && !s.Revealing()
	}, 5*time.Second, time.Millisecond)

	assert.True(t, sawPartial, "reveal should surface intermediate prefixes")
}

func TestReveal_CancelFreezesPrefix(t *testing.T) {
	answer := strings.Repeat("abcde", 10) // 50 runes
	backend := &fakeBackend{answer: answer}
	s := newRevealSession(t, backend, 5*time.Millisecond, 2)

	require.True(t, s.SubmitQuestion("long one"))

	require.Eventually(t, func() bool {
		return utf8.RuneCountInString(contentAt(s, 2)) >= 10
	}, 5*time.Second, time.Millisecond)

	s.CancelActiveReveal()
	frozen := contentAt(s, 2)

	require.GreaterOrEqual(t, utf8.RuneCountInString(frozen), 10)
	require.Less(t, utf8.RuneCountInString(frozen), 50, "cancel must not force-complete")
	assert.True(t, strings.HasPrefix(answer, frozen))
	assert.False(t, s.Revealing())

	// The frozen prefix never moves again.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, contentAt(s, 2))
	assert.False(t, s.IsSending(), "cancel must not touch the request gate")
}

func TestReveal_CancelWithoutActiveRevealIsNoop(t *testing.T) {
	s := newRevealSession(t, &fakeBackend{}, time.Millisecond, 2)

	s.CancelActiveReveal()
	s.CancelActiveReveal()

	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Revealing())
}

func TestReveal_NewAnswerSupersedesRunningReveal(t *testing.T) {
	first := strings.Repeat("abcdefghij", 30) // 300 runes, ~750ms at 5ms/2
	backend := &fakeBackend{
		answerFn: func(question string) (string, error) {
			if question == "switch" {
				return "Done.", nil
			}
			return first, nil
		},
	}
	s := newRevealSession(t, backend, 5*time.Millisecond, 2)

	require.True(t, s.SubmitQuestion("long one"))
	require.Eventually(t, func() bool {
		return utf8.RuneCountInString(contentAt(s, 2)) >= 10
	}, 5*time.Second, time.Millisecond)

	// Gate reopened at settlement, so a new turn is accepted mid-reveal.
	require.True(t, s.SubmitQuestion("switch"))
	waitSettled(t, s)

	msgs := s.Messages()
	require.Len(t, msgs, 5)

	// Superseded answer stays at the prefix it had reached.
	abandoned := msgs[2].Content
	assert.True(t, strings.HasPrefix(first, abandoned))
	assert.Greater(t, utf8.RuneCountInString(abandoned), 0)
	assert.Less(t, utf8.RuneCountInString(abandoned), 300)

	assert.Equal(t, "Done.", msgs[4].Content)

	// Frozen means frozen, even after the second reveal finished.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, abandoned, contentAt(s, 2))
}

func TestReveal_QuotaRefusalLeavesRunningRevealAlone(t *testing.T) {
	first := strings.Repeat("0123456789", 20) // 200 runes
	calls := 0
	backend := &fakeBackend{
		answerFn: func(question string) (string, error) {
			calls++
			if calls > 1 {
				return "", &quotaError{detail: "limit"}
			}
			return first, nil
		},
	}
	s := newRevealSession(t, backend, 5*time.Millisecond, 2)

	require.True(t, s.SubmitQuestion("long one"))
	require.Eventually(t, func() bool {
		return utf8.RuneCountInString(contentAt(s, 2)) >= 10
	}, 5*time.Second, time.Millisecond)

	// A refusal appends nothing, so the reveal it would have displaced
	// keeps running to completion.
	require.True(t, s.SubmitQuestion("over quota"))
	select {
	case <-s.QuotaEvents():
	case <-time.After(time.Second):
		t.Fatal("expected a quota event")
	}

	waitSettled(t, s)
	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, first, msgs[2].Content)
}

func TestReveal_EmptyAnswerSettlesWithoutReveal(t *testing.T) {
	backend := &fakeBackend{answer: ""}
	s := newRevealSession(t, backend, 50*time.Millisecond, 2)

	require.True(t, s.SubmitQuestion("anything there?"))
	require.Eventually(t, func() bool { return !s.IsSending() }, 5*time.Second, time.Millisecond)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "", msgs[2].Content)
	assert.False(t, s.Revealing())
}

func TestReveal_MultibyteAnswerKeepsValidPrefixes(t *testing.T) {
	answer := "héllo wörld, ünïcode tèst ✓ 世界"
	backend := &fakeBackend{answer: answer}
	s := newRevealSession(t, backend, 2*time.Millisecond, 3)

	require.True(t, s.SubmitQuestion("unicode"))

	require.Eventually(t, func() bool {
		content := contentAt(s, 2)
		if !utf8.ValidString(content) {
			t.Errorf("invalid UTF-8 prefix: %q", content)
		}
		if !strings.HasPrefix(answer, content) {
			t.Errorf("content %q is not a prefix of the answer", content)
		}
		return content == answer && !s.Revealing()
	}, 5*time.Second, time.Millisecond)
}

func TestReveal_ChunkLargerThanAnswerCompletesInOneTick(t *testing.T) {
	backend := &fakeBackend{answer: "hi"}
	s := newRevealSession(t, backend, time.Millisecond, 100)

	require.True(t, s.SubmitQuestion("short"))
	waitSettled(t, s)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi", msgs[2].Content)
}

func TestReveal_SetRevealPacingBumpsChunkMidReveal(t *testing.T) {
	answer := strings.Repeat("abcdefghij", 30) // 300 runes, 15s at 50ms/1
	backend := &fakeBackend{answer: answer}
	s := newRevealSession(t, backend, 50*time.Millisecond, 1)

	require.True(t, s.SubmitQuestion("long one"))
	require.Eventually(t, func() bool {
		return contentAt(s, 2) != ""
	}, 5*time.Second, time.Millisecond)

	// A chunk large enough to finish on the next tick.
	s.SetRevealPacing(0, len(answer))

	require.Eventually(t, func() bool {
		return contentAt(s, 2) == answer && !s.Revealing()
	}, 2*time.Second, time.Millisecond)
}

func TestReveal_SetRevealPacingIgnoresNonPositive(t *testing.T) {
	s := newRevealSession(t, &fakeBackend{answer: "ok"}, time.Millisecond, 2)

	s.SetRevealPacing(0, 0)
	s.SetRevealPacing(-time.Second, -5)

	require.True(t, s.SubmitQuestion("hello"))
	waitSettled(t, s)
	assert.Equal(t, "ok", contentAt(s, 2))
}

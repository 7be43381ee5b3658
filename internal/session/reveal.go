package session

import (
	"context"
	"time"

	"foliochat/internal/logging"

	"github.com/google/uuid"
)

// reveal is one typewriter disclosure of an already-known answer. It
// is keyed to the message it targets, not to the request that produced
// it, so the fetch path and the pacing path stay independent.
type reveal struct {
	messageID uuid.UUID
	index     int
	full      []rune
	cursor    int // runes published so far; guarded by Session.mu
	ctx       context.Context
	cancel    context.CancelFunc
}

// beginRevealLocked starts a reveal against messages[index], which
// must already exist with empty content. At most one reveal is active
// at a time: a prior reveal is cancelled in place, its message frozen
// at whatever prefix it had reached, never force-completed.
// Caller holds s.mu.
func (s *Session) beginRevealLocked(index int, answer string) {
	if s.reveal != nil {
		prior := s.reveal
		s.reveal = nil
		prior.cancel()
		logging.Reveal("reveal: superseded at %d/%d runes", prior.cursor, len(prior.full))
	}

	full := []rune(answer)
	if len(full) == 0 {
		// Nothing to disclose; the message stays empty and complete.
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	r := &reveal{
		messageID: s.messages[index].ID,
		index:     index,
		full:      full,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.reveal = r

	s.wg.Add(1)
	go s.revealLoop(r, s.cfg.RevealInterval)
}

// revealLoop paces the disclosure. Each tick publishes one more chunk
// until the full text is out or the reveal is torn down. The interval
// is fixed for the lifetime of one reveal; the chunk size is re-read
// under the lock on every tick.
func (s *Session) revealLoop(r *reveal, interval time.Duration) {
	defer s.wg.Done()
	defer r.cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			done := s.advanceReveal(r)
			s.notify()
			if done {
				return
			}
		}
	}
}

// advanceReveal publishes the next chunk of r's message and reports
// whether the reveal is over. A reveal that has been cancelled or
// superseded performs no mutation at all: the message keeps the prefix
// it had when the cursor was taken away.
func (s *Session) advanceReveal(r *reveal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reveal != r {
		return true
	}

	r.cursor += s.cfg.RevealChunk
	if r.cursor > len(r.full) {
		r.cursor = len(r.full)
	}
	s.messages[r.index].Content = string(r.full[:r.cursor])

	if r.cursor == len(r.full) {
		s.reveal = nil
		logging.RevealDebug("reveal: completed %d runes for message %s", len(r.full), r.messageID)
		return true
	}
	return false
}

// CancelActiveReveal freezes the in-progress assistant message at its
// currently published prefix. The effect is immediate and synchronous:
// once this returns, that message's content never changes again. A
// call with no active reveal is a no-op.
func (s *Session) CancelActiveReveal() {
	s.mu.Lock()
	r := s.reveal
	s.reveal = nil
	s.mu.Unlock()

	if r == nil {
		return
	}
	r.cancel()
	logging.Reveal("reveal: cancelled at %d/%d runes", r.cursor, len(r.full))
	s.notify()
}

// Revealing reports whether a typewriter reveal is in progress.
func (s *Session) Revealing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveal != nil
}

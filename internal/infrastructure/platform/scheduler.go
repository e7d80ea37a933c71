// Package platform adapts Ebitengine to the collaborator contracts used by
// the game orchestrator: frame scheduling, rendering, audio, controls and the
// UI overlay.
package platform

import (
	"time"

	"github.com/younwookim/hollowhouse/internal/application/loop"
)

// FrameScheduler implements loop.Scheduler on top of Ebitengine's update tick.
// Callbacks requested during a Pump run on the next Pump, like
// requestAnimationFrame.
type FrameScheduler struct {
	now     func() time.Time
	next    loop.Handle
	pending map[loop.Handle]func(time.Time)
	order   []loop.Handle
}

// NewFrameScheduler creates a scheduler. now defaults to time.Now.
func NewFrameScheduler(now func() time.Time) *FrameScheduler {
	if now == nil {
		now = time.Now
	}
	return &FrameScheduler{
		now:     now,
		pending: make(map[loop.Handle]func(time.Time)),
	}
}

// RequestFrame queues fn for the next frame
func (s *FrameScheduler) RequestFrame(fn func(now time.Time)) loop.Handle {
	s.next++
	h := s.next
	s.pending[h] = fn
	s.order = append(s.order, h)
	return h
}

// CancelFrame drops a queued callback. Unknown handles are ignored.
func (s *FrameScheduler) CancelFrame(h loop.Handle) {
	delete(s.pending, h)
}

// Now returns the scheduler clock
func (s *FrameScheduler) Now() time.Time {
	return s.now()
}

// Len returns the number of queued callbacks
func (s *FrameScheduler) Len() int {
	return len(s.pending)
}

// Pump runs every callback queued before the call, in request order.
// It returns the number of callbacks run.
func (s *FrameScheduler) Pump(now time.Time) int {
	batch := s.order
	s.order = nil

	ran := 0
	for _, h := range batch {
		fn, ok := s.pending[h]
		if !ok {
			continue
		}
		delete(s.pending, h)
		fn(now)
		ran++
	}
	return ran
}

// Package loop drives the frame-synchronized update/render cycle.
//
// The loop owns exactly one pending frame callback at a time. Stop and Pause
// always cancel that callback before forgetting it, so no tick can fire after
// either returns until Start or Resume is called again.
package loop

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/state"
)

// MaxDelta caps the seconds passed to a single step
const MaxDelta = 0.1

// Handle identifies a requested frame callback. Zero means none.
type Handle uint64

// Scheduler requests callbacks for the next display frame
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) Handle
	CancelFrame(h Handle)
	Now() time.Time
}

// Host is the game side of the loop
type Host interface {
	// CanStart gates Start, e.g. until the pre-level cutscene has finished.
	CanStart() bool
	// OnStart runs once per Start before the first tick is scheduled.
	OnStart()
	// Exempt reports whether the active scene must not be driven.
	Exempt() bool
	// OnExempt runs when a tick lands on an exempt scene.
	OnExempt()
	// Step advances the game by dt seconds and renders one frame.
	Step(dt float64) error
	// OnFrameError receives any error or panic raised by Step.
	OnFrameError(err error)
}

// Loop is the single self-rescheduling game loop
type Loop struct {
	sched Scheduler
	host  Host
	log   *zap.SugaredLogger

	state  state.LoopState
	handle Handle
	last   time.Time
}

// New creates a stopped loop
func New(sched Scheduler, host Host, log *zap.SugaredLogger) *Loop {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loop{sched: sched, host: host, log: log}
}

// State returns the current loop state
func (l *Loop) State() state.LoopState {
	return l.state
}

// Pending reports whether a tick is scheduled
func (l *Loop) Pending() bool {
	return l.handle != 0
}

// Start begins ticking. It is a no-op while paused or while the host refuses.
func (l *Loop) Start() {
	if l.state == state.LoopPaused {
		return
	}
	if !l.host.CanStart() {
		l.log.Debugw("loop start deferred")
		return
	}

	l.cancel()
	l.last = l.sched.Now()
	l.state = state.LoopRunning
	l.host.OnStart()
	l.schedule()
}

// Stop cancels the pending tick and returns to Stopped
func (l *Loop) Stop() {
	l.cancel()
	l.state = state.LoopStopped
}

// Pause cancels the pending tick and freezes the loop
func (l *Loop) Pause() {
	if l.state == state.LoopPaused {
		return
	}
	l.cancel()
	l.state = state.LoopPaused
}

// Resume leaves the paused state and starts again
func (l *Loop) Resume() {
	if l.state != state.LoopPaused {
		return
	}
	l.state = state.LoopStopped
	l.Start()
}

func (l *Loop) schedule() {
	l.handle = l.sched.RequestFrame(l.tick)
}

func (l *Loop) cancel() {
	if l.handle != 0 {
		l.sched.CancelFrame(l.handle)
		l.handle = 0
	}
}

func (l *Loop) tick(now time.Time) {
	l.handle = 0

	if l.host.Exempt() {
		l.host.OnExempt()
		l.state = state.LoopStopped
		return
	}

	// Reschedule before any work so a failing frame cannot stall the loop
	l.schedule()

	if l.state == state.LoopPaused {
		return
	}

	dt := now.Sub(l.last).Seconds()
	l.last = now
	if dt > MaxDelta {
		dt = MaxDelta
	}
	if dt < 0 {
		dt = 0
	}

	if err := l.step(dt); err != nil {
		l.log.Errorw("frame failed", "error", err)
		l.host.OnFrameError(err)
	}
}

func (l *Loop) step(dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame panic: %v", r)
		}
	}()
	return l.host.Step(dt)
}

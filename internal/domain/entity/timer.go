package entity

import "math"

// Default level timer values
const (
	DefaultTimerDuration         = 1500.0
	DefaultTimerWarningThreshold = 60.0
)

// Timer is the countdown for the active level.
// Remaining only decreases while Active and is restored by Reset.
type Timer struct {
	DurationSeconds         float64
	RemainingSeconds        float64
	Active                  bool
	WarningThresholdSeconds float64
}

// NewTimer creates an inactive timer with the given duration and warning threshold.
// Non-positive values fall back to the defaults.
func NewTimer(duration, warning float64) *Timer {
	if duration <= 0 {
		duration = DefaultTimerDuration
	}
	if warning <= 0 {
		warning = DefaultTimerWarningThreshold
	}
	return &Timer{
		DurationSeconds:         duration,
		RemainingSeconds:        duration,
		WarningThresholdSeconds: warning,
	}
}

// Reset restores the full duration and deactivates the timer.
func (t *Timer) Reset() {
	t.RemainingSeconds = t.DurationSeconds
	t.Active = false
}

// Activate starts the countdown.
func (t *Timer) Activate() {
	t.Active = true
}

// Deactivate freezes the countdown.
func (t *Timer) Deactivate() {
	t.Active = false
}

// Advance counts down by dt seconds.
// It returns true only on the tick that crosses zero; the timer deactivates
// itself at that point so later ticks cannot report expiry again.
func (t *Timer) Advance(dt float64) (expired bool) {
	if !t.Active || dt <= 0 {
		return false
	}

	t.RemainingSeconds -= dt
	if t.RemainingSeconds <= 0 {
		t.Active = false
		return true
	}
	return false
}

// Display returns the whole seconds shown on the HUD (never negative).
func (t *Timer) Display() int {
	return int(math.Max(0, math.Ceil(t.RemainingSeconds)))
}

// InWarning reports whether the remaining time is at or below the warning threshold.
func (t *Timer) InWarning() bool {
	return float64(t.Display()) <= t.WarningThresholdSeconds
}

// Expired reports whether the countdown has reached zero.
func (t *Timer) Expired() bool {
	return t.RemainingSeconds <= 0
}

package state

import "github.com/younwookim/hollowhouse/internal/domain/entity"

// Session is the process-wide game state.
// It is owned by the game orchestrator and handed to scenes by pointer;
// every field has a single writer and no field is touched across goroutines.
type Session struct {
	CurrentLevel   int
	UnlockedLevels int
	Paused         bool

	Player *entity.Player

	Completed        bool
	Resetting        bool
	CutsceneFinished bool

	Input    entity.InputFlags
	Counters entity.LevelCounters
}

// NewSession creates a session with one unlocked level
func NewSession() *Session {
	return &Session{UnlockedLevels: 1}
}

// ResetLevel restores the per-level defaults.
// CurrentLevel, UnlockedLevels and the cutscene gate are left untouched.
func (s *Session) ResetLevel() {
	s.Input.Clear()
	if s.Player != nil {
		s.Player.Reset()
	}
	s.Counters.Reset()
	s.Paused = false
	s.Completed = false
}

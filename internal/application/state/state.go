package state

// LoopState represents the run state of the game loop
type LoopState int

const (
	LoopStopped LoopState = iota
	LoopRunning
	LoopPaused
)

// String returns the string representation of the loop state
func (s LoopState) String() string {
	switch s {
	case LoopStopped:
		return "Stopped"
	case LoopRunning:
		return "Running"
	case LoopPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

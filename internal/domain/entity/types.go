package entity

// EntityID is a unique identifier for an entity
type EntityID uint32

// EnemyKind identifies the creature type of an enemy
type EnemyKind int

const (
	EnemySpider EnemyKind = iota
	EnemyRake
)

// String returns the string representation of the enemy kind
func (k EnemyKind) String() string {
	switch k {
	case EnemySpider:
		return "spider"
	case EnemyRake:
		return "rake"
	default:
		return "unknown"
	}
}

// ParseEnemyKind converts a level-data name into an EnemyKind.
func ParseEnemyKind(name string) (EnemyKind, bool) {
	switch name {
	case "spider":
		return EnemySpider, true
	case "rake":
		return EnemyRake, true
	default:
		return 0, false
	}
}

// InputFlags holds the transient movement/fire state written by the input system
type InputFlags struct {
	MoveForward  bool
	MoveBackward bool
	MoveLeft     bool
	MoveRight    bool
	Firing       bool
	Reloading    bool
}

// Clear releases every held input.
func (f *InputFlags) Clear() {
	*f = InputFlags{}
}

// Any reports whether any movement or fire input is held.
func (f InputFlags) Any() bool {
	return f.MoveForward || f.MoveBackward || f.MoveLeft || f.MoveRight || f.Firing || f.Reloading
}

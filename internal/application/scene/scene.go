// Package scene defines the scene capabilities and the manager that switches
// between them.
//
// Each game screen (splash, menus, cutscene, level) implements Scene and any
// of the optional capability interfaces it needs. The Manager guarantees that
// at most one scene is active at any time.
package scene

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a discrete game mode (menu, cutscene, level, etc.)
type Scene interface {
	// Enter is called once when the scene becomes active.
	// It may load assets and is awaited before the switch completes.
	Enter(ctx context.Context, sc Context) error
}

// Updater is implemented by scenes that advance every loop tick.
// dt is the clamped delta time in seconds.
type Updater interface {
	Update(dt float64) error
}

// Exiter is implemented by scenes that run a teardown step before cleanup.
type Exiter interface {
	Exit(ctx context.Context) error
}

// Cleaner is implemented by scenes that own resources.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// LoopExempt is implemented by non-gameplay scenes the game loop must not drive.
type LoopExempt interface {
	LoopExempt() bool
}

// InputHandler is implemented by scenes that poll input every host frame,
// whether or not the game loop is running.
type InputHandler interface {
	HandleInput(ctx context.Context) error
}

// Drawer is implemented by scenes that render themselves.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// Context is the payload forwarded verbatim to Enter
type Context struct {
	LevelIndex int
	MusicID    string
	Values     map[string]any
}

// IsExempt reports whether s declares itself loop-exempt
func IsExempt(s Scene) bool {
	le, ok := s.(LoopExempt)
	return ok && le.LoopExempt()
}

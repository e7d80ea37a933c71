package platform

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/domain/entity"
)

// ErrControlsNotReady is returned by RequestPointerLock before Reinitialize
var ErrControlsNotReady = errors.New("controls not initialized")

// Bindings maps game actions to keys. Any key in a slice triggers the action.
type Bindings struct {
	Forward  []ebiten.Key
	Backward []ebiten.Key
	Left     []ebiten.Key
	Right    []ebiten.Key
	Fire     []ebiten.Key
	Reload   []ebiten.Key
	Pause    []ebiten.Key
}

// DefaultBindings is WASD plus arrow keys
var DefaultBindings = Bindings{
	Forward:  []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp},
	Backward: []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown},
	Left:     []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft},
	Right:    []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight},
	Fire:     []ebiten.Key{ebiten.KeySpace},
	Reload:   []ebiten.Key{ebiten.KeyR},
	Pause:    []ebiten.Key{ebiten.KeyEscape, ebiten.KeyP},
}

// Controls translates the keyboard into session input flags and owns the
// captured cursor
type Controls struct {
	keys     scene.Keys
	bindings Bindings
	log      *zap.SugaredLogger

	// SetCursorMode defaults to ebiten.SetCursorMode
	SetCursorMode func(ebiten.CursorModeType)

	initialized bool
	enabled     bool
	locked      bool
}

// NewControls creates uninitialized controls over keys
func NewControls(keys scene.Keys, log *zap.SugaredLogger) *Controls {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controls{
		keys:          keys,
		bindings:      DefaultBindings,
		log:           log,
		SetCursorMode: ebiten.SetCursorMode,
	}
}

// SetBindings replaces the key bindings
func (c *Controls) SetBindings(b Bindings) {
	c.bindings = b
}

// Reinitialize readies the controls for a new level run
func (c *Controls) Reinitialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.initialized = true
	c.enabled = true
	return nil
}

// SetControlsEnabled gates movement input. Pause keys keep working.
func (c *Controls) SetControlsEnabled(enabled bool) {
	c.enabled = enabled
}

// Enabled reports whether movement input is processed
func (c *Controls) Enabled() bool {
	return c.initialized && c.enabled
}

// RequestPointerLock captures the cursor
func (c *Controls) RequestPointerLock() error {
	if !c.initialized {
		return ErrControlsNotReady
	}
	c.SetCursorMode(ebiten.CursorModeCaptured)
	c.locked = true
	return nil
}

// ReleasePointerLock shows the cursor again
func (c *Controls) ReleasePointerLock() {
	if !c.locked {
		return
	}
	c.SetCursorMode(ebiten.CursorModeVisible)
	c.locked = false
}

// Locked reports whether the cursor is captured
func (c *Controls) Locked() bool {
	return c.locked
}

// Cleanup releases the cursor and detaches from input
func (c *Controls) Cleanup() {
	c.ReleasePointerLock()
	c.initialized = false
	c.enabled = false
	c.log.Debugw("controls cleaned up")
}

// Poll writes the held keys into in and reports whether pause was pressed.
// Disabled controls clear in.
func (c *Controls) Poll(in *entity.InputFlags) (pause bool) {
	if !c.initialized {
		return false
	}
	pause = c.any(c.bindings.Pause, c.keys.JustPressed)

	if !c.enabled {
		in.Clear()
		return pause
	}

	in.MoveForward = c.any(c.bindings.Forward, c.keys.Pressed)
	in.MoveBackward = c.any(c.bindings.Backward, c.keys.Pressed)
	in.MoveLeft = c.any(c.bindings.Left, c.keys.Pressed)
	in.MoveRight = c.any(c.bindings.Right, c.keys.Pressed)
	in.Firing = c.any(c.bindings.Fire, c.keys.Pressed)
	in.Reloading = c.any(c.bindings.Reload, c.keys.JustPressed)
	return pause
}

func (c *Controls) any(keys []ebiten.Key, fn func(ebiten.Key) bool) bool {
	for _, k := range keys {
		if fn(k) {
			return true
		}
	}
	return false
}

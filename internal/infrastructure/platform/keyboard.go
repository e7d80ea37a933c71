package platform

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Keyboard reads the Ebitengine keyboard
type Keyboard struct{}

// Pressed reports whether k is held
func (Keyboard) Pressed(k ebiten.Key) bool {
	return ebiten.IsKeyPressed(k)
}

// JustPressed reports whether k went down this frame
func (Keyboard) JustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}

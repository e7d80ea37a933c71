package scene

import "github.com/hajimehoshi/ebiten/v2"

// Keys reports keyboard state for the current host frame
type Keys interface {
	Pressed(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
}

// AnyJustPressed reports whether any of ks was pressed this frame
func AnyJustPressed(keys Keys, ks ...ebiten.Key) bool {
	for _, k := range ks {
		if keys.JustPressed(k) {
			return true
		}
	}
	return false
}

// Package loading provides the interstitial shown while a level or cutscene
// is being prepared.
package loading

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// Loading is a static "Loading..." screen
type Loading struct {
	entered int
	level   int
}

// New creates the loading scene
func New() *Loading {
	return &Loading{}
}

// Enter records the level being prepared
func (l *Loading) Enter(_ context.Context, sc scene.Context) error {
	l.entered++
	l.level = sc.LevelIndex
	return nil
}

// Entered returns how many times the scene was entered
func (l *Loading) Entered() int {
	return l.entered
}

// Draw shows the loading text
func (l *Loading) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	ebitenutil.DebugPrintAt(screen, "Loading...", w/2-30, h/2-8)
}

var colorBG = color.Black

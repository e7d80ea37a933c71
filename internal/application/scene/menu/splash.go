package menu

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// SplashSeconds is how long the splash stays up without input
const SplashSeconds = 2.5

// Splash shows the title and moves on to the main menu
type Splash struct {
	nav  Navigator
	keys scene.Keys

	// FrameDelta is the seconds counted per HandleInput call
	FrameDelta float64
	elapsed    float64
	title      string
}

// NewSplash creates the splash screen
func NewSplash(nav Navigator, keys scene.Keys, title string) *Splash {
	return &Splash{nav: nav, keys: keys, FrameDelta: 1.0 / 60.0, title: title}
}

// Enter restarts the countdown
func (s *Splash) Enter(_ context.Context, _ scene.Context) error {
	s.elapsed = 0
	return nil
}

// LoopExempt keeps the game loop parked on the splash
func (s *Splash) LoopExempt() bool { return true }

// HandleInput counts down and moves on when time is up or a key is pressed
func (s *Splash) HandleInput(ctx context.Context) error {
	s.elapsed += s.FrameDelta
	skip := scene.AnyJustPressed(s.keys, ebiten.KeyEnter, ebiten.KeySpace, ebiten.KeyEscape)
	if skip || s.elapsed >= SplashSeconds {
		return s.nav.Navigate(ctx, scene.MainMenu)
	}
	return nil
}

// Draw centers the title
func (s *Splash) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	ebitenutil.DebugPrintAt(screen, s.title, w/2-len(s.title)*3, h/2-8)
}

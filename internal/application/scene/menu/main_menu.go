package menu

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// MainMenu is the title menu
type MainMenu struct {
	nav  Navigator
	keys scene.Keys
	list list
}

// NewMainMenu creates the main menu
func NewMainMenu(nav Navigator, keys scene.Keys, title string) *MainMenu {
	m := &MainMenu{nav: nav, keys: keys}
	m.list = list{
		title: title,
		items: []item{
			{label: "Continue", action: m.continueGame},
			{label: "New Game", action: func(ctx context.Context) error {
				return nav.StartLevelWithCutscene(ctx, 0)
			}},
			{label: "Select Level", action: nav.ShowLevelMenu},
			{label: "Profile", action: m.goTo(scene.Profile)},
			{label: "Settings", action: m.goTo(scene.Settings)},
			{label: "Credits", action: m.goTo(scene.Credits)},
			{label: "Quit", action: func(context.Context) error {
				nav.Quit()
				return nil
			}},
		},
	}
	return m
}

// Enter puts the cursor back on the first entry
func (m *MainMenu) Enter(_ context.Context, _ scene.Context) error {
	m.list.reset()
	return nil
}

// LoopExempt keeps the game loop parked on the menu
func (m *MainMenu) LoopExempt() bool { return true }

// HandleInput moves the cursor or runs the selected entry
func (m *MainMenu) HandleInput(ctx context.Context) error {
	return m.list.handle(ctx, m.keys)
}

// Draw renders the entries
func (m *MainMenu) Draw(screen *ebiten.Image) {
	m.list.draw(screen)
}

// continueGame starts the highest unlocked level
func (m *MainMenu) continueGame(ctx context.Context) error {
	p := m.nav.Progress()
	idx := p.UnlockedLevels - 1
	if idx > p.MaxLevel {
		idx = p.MaxLevel
	}
	if idx < 0 {
		idx = 0
	}
	return m.nav.StartLevelWithCutscene(ctx, idx)
}

func (m *MainMenu) goTo(key scene.Key) func(context.Context) error {
	return func(ctx context.Context) error {
		return m.nav.Navigate(ctx, key)
	}
}

package menu

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// LevelMenu lists the levels, locking those not yet unlocked
type LevelMenu struct {
	nav  Navigator
	keys scene.Keys
	list list
}

// NewLevelMenu creates the level select screen
func NewLevelMenu(nav Navigator, keys scene.Keys) *LevelMenu {
	return &LevelMenu{nav: nav, keys: keys}
}

// Enter rebuilds the list from the current progress
func (m *LevelMenu) Enter(_ context.Context, _ scene.Context) error {
	p := m.nav.Progress()
	items := make([]item, 0, p.MaxLevel+2)
	for i := 0; i <= p.MaxLevel; i++ {
		idx := i
		items = append(items, item{
			label:    levelLabel(idx),
			disabled: idx >= p.UnlockedLevels,
			action: func(ctx context.Context) error {
				return m.nav.StartLevelWithCutscene(ctx, idx)
			},
		})
	}
	items = append(items, item{label: "Shop", action: func(ctx context.Context) error {
		return m.nav.Navigate(ctx, scene.Shop)
	}})
	m.list = list{title: "Select Level", items: items}
	m.list.reset()
	return nil
}

// LoopExempt keeps the game loop parked on the menu
func (m *LevelMenu) LoopExempt() bool { return true }

// HandleInput starts the selected level; Escape goes back to the main menu
func (m *LevelMenu) HandleInput(ctx context.Context) error {
	if m.keys.JustPressed(ebiten.KeyEscape) {
		return m.nav.Navigate(ctx, scene.MainMenu)
	}
	return m.list.handle(ctx, m.keys)
}

// Draw renders the level list
func (m *LevelMenu) Draw(screen *ebiten.Image) {
	m.list.draw(screen)
}

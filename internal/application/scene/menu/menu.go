// Package menu provides the non-gameplay screens: splash, main menu, level
// select, shop, credits, settings and profile.
package menu

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/scene"
)

var colorBG = color.RGBA{8, 6, 10, 255}

// Navigator is the part of the game the menus drive
type Navigator interface {
	Navigate(ctx context.Context, key scene.Key) error
	ShowLevelMenu(ctx context.Context) error
	StartLevelWithCutscene(ctx context.Context, index int) error
	ShopItems() []economy.Item
	PurchaseItem(ctx context.Context, itemID string, fast bool) (economy.Purchase, error)
	ResetProgress() error
	Progress() Progress
	Quit()
}

// Progress summarizes the player's save for the menus
type Progress struct {
	UnlockedLevels  int
	MaxLevel        int
	XP              int
	CompletedLevels []int
	TotalEarned     int64
	TotalSpent      int64
	Net             int64
	Achievements    []string
	Balance         int64
	Offline         bool
}

type item struct {
	label    string
	disabled bool
	action   func(ctx context.Context) error
}

// list is a vertical menu moved with Up/Down and activated with Enter
type list struct {
	title  string
	items  []item
	cursor int
	status string
}

func (l *list) reset() {
	l.cursor = 0
	l.status = ""
	l.skipDisabled(1)
}

// handle moves the cursor or runs the selected action
func (l *list) handle(ctx context.Context, keys scene.Keys) error {
	if len(l.items) == 0 {
		return nil
	}
	switch {
	case scene.AnyJustPressed(keys, ebiten.KeyArrowDown, ebiten.KeyS):
		l.move(1)
	case scene.AnyJustPressed(keys, ebiten.KeyArrowUp, ebiten.KeyW):
		l.move(-1)
	case scene.AnyJustPressed(keys, ebiten.KeyEnter, ebiten.KeySpace):
		it := l.items[l.cursor]
		if it.disabled || it.action == nil {
			return nil
		}
		return it.action(ctx)
	}
	return nil
}

func (l *list) move(dir int) {
	n := len(l.items)
	l.cursor = (l.cursor + dir + n) % n
	l.skipDisabled(dir)
}

func (l *list) skipDisabled(dir int) {
	n := len(l.items)
	for i := 0; i < n && l.items[l.cursor].disabled; i++ {
		l.cursor = (l.cursor + dir + n) % n
	}
}

func (l *list) draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	ebitenutil.DebugPrintAt(screen, l.title, 24, 20)
	for i, it := range l.items {
		prefix := "  "
		if i == l.cursor {
			prefix = "> "
		}
		label := it.label
		if it.disabled {
			label += " (locked)"
		}
		ebitenutil.DebugPrintAt(screen, prefix+label, 32, 52+16*i)
	}
	if l.status != "" {
		ebitenutil.DebugPrintAt(screen, l.status, 24, 60+16*len(l.items))
	}
}

func levelLabel(i int) string {
	return fmt.Sprintf("Level %d", i+1)
}

package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// text is a static page dismissed with Escape or Enter
type text struct {
	nav   Navigator
	keys  scene.Keys
	lines []string
}

// HandleInput returns to the main menu on Escape or Enter
func (t *text) HandleInput(ctx context.Context) error {
	if scene.AnyJustPressed(t.keys, ebiten.KeyEscape, ebiten.KeyEnter) {
		return t.nav.Navigate(ctx, scene.MainMenu)
	}
	return nil
}

// Draw renders the page lines
func (t *text) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	ebitenutil.DebugPrintAt(screen, strings.Join(t.lines, "\n"), 24, 20)
}

// Credits lists the people behind the game
type Credits struct {
	text
}

// NewCredits creates the credits page
func NewCredits(nav Navigator, keys scene.Keys, lines []string) *Credits {
	return &Credits{text{nav: nav, keys: keys, lines: lines}}
}

// Enter shows the page as built
func (c *Credits) Enter(_ context.Context, _ scene.Context) error {
	return nil
}

// Profile shows progress, rewards and the wallet balance
type Profile struct {
	text
}

// NewProfile creates the profile page
func NewProfile(nav Navigator, keys scene.Keys) *Profile {
	return &Profile{text{nav: nav, keys: keys}}
}

// Enter snapshots the current progress
func (p *Profile) Enter(_ context.Context, _ scene.Context) error {
	p.lines = ProfileLines(p.nav.Progress())
	return nil
}

// Lines returns the rendered page
func (p *Profile) Lines() []string {
	return p.lines
}

// ProfileLines renders a progress summary
func ProfileLines(pr Progress) []string {
	completed := "none"
	if len(pr.CompletedLevels) > 0 {
		labels := make([]string, len(pr.CompletedLevels))
		for i, l := range pr.CompletedLevels {
			labels[i] = fmt.Sprint(l + 1)
		}
		completed = strings.Join(labels, ", ")
	}
	balance := fmt.Sprintf("Balance: %d sats", pr.Balance)
	if pr.Offline {
		balance += " (offline)"
	}
	return []string{
		"Profile",
		"",
		fmt.Sprintf("Unlocked levels: %d / %d", pr.UnlockedLevels, pr.MaxLevel+1),
		"Completed: " + completed,
		fmt.Sprintf("XP: %d", pr.XP),
		fmt.Sprintf("Earned: %d sats  Spent: %d sats  Net: %d sats", pr.TotalEarned, pr.TotalSpent, pr.Net),
		balance,
		fmt.Sprintf("Achievements: %d", len(pr.Achievements)),
		"",
		"ESC to go back",
	}
}

// Settings offers progress reset
type Settings struct {
	nav  Navigator
	keys scene.Keys
	list list
}

// NewSettings creates the settings page
func NewSettings(nav Navigator, keys scene.Keys) *Settings {
	s := &Settings{nav: nav, keys: keys}
	s.list = list{
		title: "Settings",
		items: []item{
			{label: "Reset progress", action: s.resetProgress},
			{label: "Back", action: func(ctx context.Context) error {
				return nav.Navigate(ctx, scene.MainMenu)
			}},
		},
	}
	return s
}

// Enter puts the cursor back on the first entry
func (s *Settings) Enter(_ context.Context, _ scene.Context) error {
	s.list.reset()
	return nil
}

// HandleInput runs the selected entry; Escape goes back to the main menu
func (s *Settings) HandleInput(ctx context.Context) error {
	if s.keys.JustPressed(ebiten.KeyEscape) {
		return s.nav.Navigate(ctx, scene.MainMenu)
	}
	return s.list.handle(ctx, s.keys)
}

// Draw renders the entries and the last status
func (s *Settings) Draw(screen *ebiten.Image) {
	s.list.draw(screen)
}

// Status returns the last action feedback
func (s *Settings) Status() string {
	return s.list.status
}

func (s *Settings) resetProgress(context.Context) error {
	if err := s.nav.ResetProgress(); err != nil {
		s.list.status = "Reset failed"
		return err
	}
	s.list.status = "Progress reset"
	return nil
}

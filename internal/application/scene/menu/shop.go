package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// Shop sells items for satoshis. Every item can be paid over Lightning or on-chain.
type Shop struct {
	nav  Navigator
	keys scene.Keys
	list list
}

// NewShop creates the shop screen
func NewShop(nav Navigator, keys scene.Keys) *Shop {
	return &Shop{nav: nav, keys: keys}
}

// Enter rebuilds the item list from the current prices and balance
func (s *Shop) Enter(_ context.Context, _ scene.Context) error {
	catalog := s.nav.ShopItems()
	items := make([]item, 0, 2*len(catalog)+1)
	for _, it := range catalog {
		name := itemName(it.ID)
		items = append(items,
			item{label: fmt.Sprintf("%s  %d sats  Lightning", name, it.Price), action: s.buy(it.ID, true)},
			item{label: fmt.Sprintf("%s  %d sats  on-chain", name, it.Price), action: s.buy(it.ID, false)},
		)
	}
	items = append(items, item{label: "Back", action: s.nav.ShowLevelMenu})

	s.list = list{items: items}
	s.list.reset()
	s.refreshTitle()
	return nil
}

// LoopExempt keeps the game loop parked on the shop
func (s *Shop) LoopExempt() bool { return true }

// HandleInput buys the selected item; Escape goes back to level select
func (s *Shop) HandleInput(ctx context.Context) error {
	if s.keys.JustPressed(ebiten.KeyEscape) {
		return s.nav.ShowLevelMenu(ctx)
	}
	return s.list.handle(ctx, s.keys)
}

// Draw renders the items and the last purchase status
func (s *Shop) Draw(screen *ebiten.Image) {
	s.list.draw(screen)
}

// Status returns the last purchase feedback
func (s *Shop) Status() string {
	return s.list.status
}

// buy reports a refused purchase on screen instead of failing the frame
func (s *Shop) buy(itemID string, fast bool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		p, err := s.nav.PurchaseItem(ctx, itemID, fast)
		switch {
		case errors.Is(err, economy.ErrInsufficientFunds):
			s.list.status = "Not enough sats for " + itemName(itemID)
			return nil
		case err != nil:
			s.list.status = "Purchase failed"
			return err
		}
		s.list.status = fmt.Sprintf("Bought %s for %d sats", itemName(itemID), p.Price)
		s.refreshTitle()
		return nil
	}
}

func (s *Shop) refreshTitle() {
	pr := s.nav.Progress()
	s.list.title = fmt.Sprintf("Shop  (balance %d sats)", pr.Balance)
	if pr.Offline {
		s.list.title += " offline"
	}
}

// itemName turns health_pack into Health Pack
func itemName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

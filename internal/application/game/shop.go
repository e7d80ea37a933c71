package game

import (
	"context"
	"errors"
	"time"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/domain/profile"
)

// ErrNoEconomy is returned by purchases when no economy is configured or it
// failed to start
var ErrNoEconomy = errors.New("economy unavailable")

// ShopItems lists the items on sale, cheapest first
func (g *Game) ShopItems() []economy.Item {
	if g.economy == nil {
		return nil
	}
	return g.economy.Catalog()
}

// PurchaseItem buys itemID over Lightning (fast) or on-chain, records it in
// the profile ledger and refreshes the balance
func (g *Game) PurchaseItem(ctx context.Context, itemID string, fast bool) (economy.Purchase, error) {
	if !g.ensureEconomy(ctx) {
		return economy.Purchase{}, ErrNoEconomy
	}

	res, err := g.economy.PurchaseItem(ctx, g.profile.ID, itemID, fast)
	if err != nil {
		g.log.Warnw("purchase refused", "item", itemID, "fast", fast, "error", err)
		return economy.Purchase{}, err
	}

	g.profile.Append(profile.Transaction{
		ID:        res.Value.TxID,
		Kind:      profile.TxPurchase,
		Action:    itemID,
		Level:     g.session.CurrentLevel,
		Amount:    res.Value.Price,
		Degraded:  res.Degraded(),
		Timestamp: time.Now(),
	})
	if g.store != nil {
		if err := g.store.SaveProfile(g.profile); err != nil {
			g.log.Warnw("profile save failed", "error", err)
		}
	}
	g.refreshBalance(ctx)
	return res.Value, nil
}

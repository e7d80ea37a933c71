// Package economy grants satoshi rewards and sells items against the
// player's on-chain and Lightning balances.
//
// The economy is best-effort: when Bitcoin Core or LND cannot be reached it
// keeps answering from local wallets and mock data, and marks every result
// as Degraded instead of returning an error.
package economy

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotInitialized is returned by purchases before Init
	ErrNotInitialized = errors.New("economy not initialized")
	// ErrUnknownItem is returned for an item without a price
	ErrUnknownItem = errors.New("item not found")
	// ErrInsufficientFunds is returned when the chosen balance cannot cover the price
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Reward action keys
const (
	ActionLevelComplete = "level_complete"
	ActionLevelBonus    = "level_bonus"
	ActionPerfectLevel  = "perfect_level"
)

// DefaultPrices are item prices in satoshis
var DefaultPrices = map[string]int64{
	"ammo_pack":      1000,
	"health_pack":    2000,
	"armor":          5000,
	"special_weapon": 10000,
}

// DefaultRewards are reward amounts in satoshis per action
var DefaultRewards = map[string]int64{
	ActionLevelComplete: 1000,
	ActionLevelBonus:    500,
	ActionPerfectLevel:  2000,
}

// Chain is the on-chain backend
type Chain interface {
	Connect(ctx context.Context) bool
	GetBalance(ctx context.Context, address string) (sats int64, degraded bool)
}

// Lightning is the Lightning backend
type Lightning interface {
	Connect(ctx context.Context) bool
	RequestPayment(ctx context.Context, amount int64, memo string) (paymentHash string, degraded bool)
	CheckInvoice(ctx context.Context, paymentHash string) (settled, degraded bool)
}

// Balance is a player's balance in satoshis
type Balance struct {
	OnChain   int64
	Lightning int64
	Total     int64
}

// Reward is the outcome of RewardPlayer. Granted is false when nothing was paid.
type Reward struct {
	Action     string
	Amount     int64
	NewBalance int64
	TxID       string
	Granted    bool
}

// Purchase is the outcome of a successful PurchaseItem
type Purchase struct {
	ItemID     string
	Price      int64
	Fast       bool
	NewBalance int64
	TxID       string
	// Settled is set for Lightning purchases whose invoice the node reports paid
	Settled bool
}

// Item is an item on sale
type Item struct {
	ID    string
	Price int64
}

// Wallet is a player's local wallet
type Wallet struct {
	Address   string
	Lightning int64
	// Spent on-chain since the wallet was opened
	OnChainSpent int64
}

// Economy is the reward and purchase service
type Economy struct {
	chain Chain
	ln    Lightning
	log   *zap.SugaredLogger

	prices  map[string]int64
	rewards map[string]int64
	wallets map[string]*Wallet

	initialized bool
	offline     bool

	// OnDegraded is called for every degraded result with the operation name
	OnDegraded func(op string)
}

// New creates an economy over the given backends. Either may be nil.
func New(chain Chain, ln Lightning, log *zap.SugaredLogger) *Economy {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Economy{
		chain:   chain,
		ln:      ln,
		log:     log,
		prices:  copyRates(DefaultPrices),
		rewards: copyRates(DefaultRewards),
		wallets: make(map[string]*Wallet),
	}
}

// SetPrice overrides an item price
func (e *Economy) SetPrice(itemID string, sats int64) {
	e.prices[itemID] = sats
}

// SetReward overrides a reward rate
func (e *Economy) SetReward(action string, sats int64) {
	e.rewards[action] = sats
}

// Init connects the backends. It is idempotent: later calls return nil
// without reconnecting. Unreachable backends put the economy in offline mode.
func (e *Economy) Init(ctx context.Context) error {
	if e.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("init economy: %w", err)
	}

	chainLive := e.chain != nil && e.chain.Connect(ctx)
	lnLive := e.ln != nil && e.ln.Connect(ctx)
	e.offline = !chainLive || !lnLive
	e.initialized = true

	e.log.Infow("economy initialized", "chain_live", chainLive, "lightning_live", lnLive)
	return nil
}

// Initialized reports whether Init has completed
func (e *Economy) Initialized() bool {
	return e.initialized
}

// Offline reports whether any backend is answered from mock data
func (e *Economy) Offline() bool {
	return e.offline
}

// RewardRate returns the reward for action, 0 if unknown
func (e *Economy) RewardRate(action string) int64 {
	return e.rewards[action]
}

// Price returns the price of an item
func (e *Economy) Price(itemID string) (int64, bool) {
	p, ok := e.prices[itemID]
	return p, ok
}

// Catalog lists the items on sale, cheapest first
func (e *Economy) Catalog() []Item {
	items := make([]Item, 0, len(e.prices))
	for id, price := range e.prices {
		items = append(items, Item{ID: id, Price: price})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// RewardPlayer credits the reward for action to the player's Lightning balance
func (e *Economy) RewardPlayer(ctx context.Context, playerID, action string) Result[Reward] {
	if !e.initialized {
		return markDegraded(e, "reward", Reward{Action: action}, "economy not initialized")
	}
	amount, ok := e.rewards[action]
	if !ok || amount <= 0 {
		return markDegraded(e, "reward", Reward{Action: action}, "unknown action "+action)
	}

	w := e.wallet(playerID)
	w.Lightning += amount

	r := Reward{
		Action:     action,
		Amount:     amount,
		NewBalance: w.Lightning,
		TxID:       uuid.NewString(),
		Granted:    true,
	}
	e.log.Infow("reward granted", "player", playerID, "action", action, "sats", amount)

	if e.offline {
		return markDegraded(e, "reward", r, "backend offline")
	}
	return liveResult(r)
}

// GetPlayerBalance returns the player's on-chain and Lightning balances
func (e *Economy) GetPlayerBalance(ctx context.Context, playerID string) Result[Balance] {
	if !e.initialized {
		return markDegraded(e, "balance", Balance{}, "economy not initialized")
	}

	w := e.wallet(playerID)
	var onChain int64
	degraded := e.offline
	if e.chain != nil {
		sats, d := e.chain.GetBalance(ctx, w.Address)
		onChain = sats - w.OnChainSpent
		degraded = degraded || d
	} else {
		degraded = true
	}
	if onChain < 0 {
		onChain = 0
	}

	b := Balance{OnChain: onChain, Lightning: w.Lightning, Total: onChain + w.Lightning}
	if degraded {
		return markDegraded(e, "balance", b, "backend offline")
	}
	return liveResult(b)
}

// PurchaseItem buys itemID with the Lightning balance (fast) or on-chain.
// Unlike rewards, purchases fail with an error on unknown items or low funds.
func (e *Economy) PurchaseItem(ctx context.Context, playerID, itemID string, fast bool) (Result[Purchase], error) {
	if !e.initialized {
		return Result[Purchase]{}, ErrNotInitialized
	}
	price, ok := e.prices[itemID]
	if !ok {
		return Result[Purchase]{}, fmt.Errorf("purchase %s: %w", itemID, ErrUnknownItem)
	}

	w := e.wallet(playerID)
	p := Purchase{ItemID: itemID, Price: price, Fast: fast}
	degraded := e.offline

	if fast {
		if w.Lightning < price {
			return Result[Purchase]{}, fmt.Errorf("purchase %s: lightning: %w", itemID, ErrInsufficientFunds)
		}
		hash := ""
		if e.ln != nil {
			var d bool
			hash, d = e.ln.RequestPayment(ctx, price, "Game Purchase: "+itemID)
			degraded = degraded || d
			if hash != "" {
				p.Settled, d = e.ln.CheckInvoice(ctx, hash)
				degraded = degraded || d
			}
		}
		w.Lightning -= price
		p.NewBalance = w.Lightning
		p.TxID = "lightning_" + txSuffix(hash)
	} else {
		bal := e.GetPlayerBalance(ctx, playerID)
		degraded = degraded || bal.Degraded()
		if bal.Value.OnChain < price {
			return Result[Purchase]{}, fmt.Errorf("purchase %s: on-chain: %w", itemID, ErrInsufficientFunds)
		}
		w.OnChainSpent += price
		p.NewBalance = bal.Value.OnChain - price
		p.TxID = "onchain_" + txSuffix("")
	}

	e.log.Infow("item purchased", "player", playerID, "item", itemID, "sats", price, "fast", fast)
	if degraded {
		return markDegraded(e, "purchase", p, "backend offline"), nil
	}
	return liveResult(p), nil
}

// Cleanup returns to the uninitialized state. Wallets survive so a later
// Init picks up the same balances.
func (e *Economy) Cleanup(ctx context.Context) {
	e.initialized = false
	e.offline = false
}

// Wallet returns the player's wallet, creating it on first use
func (e *Economy) Wallet(playerID string) *Wallet {
	return e.wallet(playerID)
}

func (e *Economy) wallet(playerID string) *Wallet {
	if w, ok := e.wallets[playerID]; ok {
		return w
	}
	w := &Wallet{Address: newAddress()}
	e.wallets[playerID] = w
	return w
}

func markDegraded[T any](e *Economy, op string, v T, reason string) Result[T] {
	if e.OnDegraded != nil {
		e.OnDegraded(op)
	}
	return degradedResult(v, reason)
}

// newAddress derives a demo address from a random key
func newAddress() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "bc1q" + uuid.NewString()
	}
	return "bc1q" + hex.EncodeToString(key)[:40]
}

func txSuffix(hash string) string {
	if hash != "" {
		return hash
	}
	return uuid.NewString()
}

func copyRates(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

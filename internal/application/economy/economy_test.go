package economy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/hollowhouse/internal/infrastructure/bitcoin"
)

type fakeChain struct {
	live     bool
	sats     int64
	degraded bool
	connects int
}

func (f *fakeChain) Connect(context.Context) bool {
	f.connects++
	return f.live
}

func (f *fakeChain) GetBalance(context.Context, string) (int64, bool) {
	return f.sats, f.degraded
}

type fakeLightning struct {
	live     bool
	invoices []int64
	checked  []string
	connects int
}

func (f *fakeLightning) Connect(context.Context) bool {
	f.connects++
	return f.live
}

func (f *fakeLightning) RequestPayment(_ context.Context, amount int64, _ string) (string, bool) {
	f.invoices = append(f.invoices, amount)
	return "hash", !f.live
}

func (f *fakeLightning) CheckInvoice(_ context.Context, hash string) (bool, bool) {
	f.checked = append(f.checked, hash)
	return f.live, !f.live
}

func newLive(t *testing.T) (*Economy, *fakeChain, *fakeLightning) {
	t.Helper()
	chain := &fakeChain{live: true, sats: 50_000}
	ln := &fakeLightning{live: true}
	e := New(chain, ln, nil)
	require.NoError(t, e.Init(context.Background()))
	return e, chain, ln
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "live", Live.String())
	assert.Equal(t, "degraded", Degraded.String())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestEconomy_InitIdempotent(t *testing.T) {
	e, chain, ln := newLive(t)

	require.NoError(t, e.Init(context.Background()))
	require.NoError(t, e.Init(context.Background()))

	assert.Equal(t, 1, chain.connects)
	assert.Equal(t, 1, ln.connects)
	assert.True(t, e.Initialized())
	assert.False(t, e.Offline())
}

func TestEconomy_InitCancelled(t *testing.T) {
	e := New(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, e.Init(ctx), context.Canceled)
	assert.False(t, e.Initialized())
}

func TestEconomy_Defaults(t *testing.T) {
	e := New(nil, nil, nil)

	assert.Equal(t, int64(1000), e.RewardRate(ActionLevelComplete))
	assert.Equal(t, int64(500), e.RewardRate(ActionLevelBonus))
	assert.Equal(t, int64(2000), e.RewardRate(ActionPerfectLevel))
	assert.Equal(t, int64(0), e.RewardRate("enemy_kill"))

	for item, price := range map[string]int64{"ammo_pack": 1000, "health_pack": 2000, "armor": 5000, "special_weapon": 10000} {
		got, ok := e.Price(item)
		assert.True(t, ok, item)
		assert.Equal(t, price, got, item)
	}
}

func TestEconomy_RewardCreditsLightning(t *testing.T) {
	e, _, _ := newLive(t)
	ctx := context.Background()

	r := e.RewardPlayer(ctx, "p1", ActionLevelComplete)
	require.False(t, r.Degraded())
	assert.True(t, r.Value.Granted)
	assert.Equal(t, int64(1000), r.Value.Amount)
	assert.Equal(t, int64(1000), r.Value.NewBalance)
	assert.NotEmpty(t, r.Value.TxID)

	r = e.RewardPlayer(ctx, "p1", ActionLevelBonus)
	assert.Equal(t, int64(1500), r.Value.NewBalance)

	bal := e.GetPlayerBalance(ctx, "p1")
	assert.Equal(t, Balance{OnChain: 50_000, Lightning: 1500, Total: 51_500}, bal.Value)
}

func TestEconomy_RewardBeforeInit(t *testing.T) {
	e := New(nil, nil, nil)
	var ops []string
	e.OnDegraded = func(op string) { ops = append(ops, op) }

	r := e.RewardPlayer(context.Background(), "p1", ActionLevelComplete)

	assert.True(t, r.Degraded())
	assert.False(t, r.Value.Granted)
	assert.Equal(t, []string{"reward"}, ops)
}

func TestEconomy_RewardUnknownAction(t *testing.T) {
	e, _, _ := newLive(t)

	r := e.RewardPlayer(context.Background(), "p1", "enemy_kill")

	assert.True(t, r.Degraded())
	assert.False(t, r.Value.Granted)
	assert.Contains(t, r.Reason, "enemy_kill")
}

func TestEconomy_OfflineRewardIsDegradedButGranted(t *testing.T) {
	e := New(&fakeChain{}, &fakeLightning{}, nil)
	require.NoError(t, e.Init(context.Background()))
	degradedCalls := 0
	e.OnDegraded = func(string) { degradedCalls++ }

	r := e.RewardPlayer(context.Background(), "p1", ActionLevelComplete)

	assert.True(t, e.Offline())
	assert.True(t, r.Degraded())
	assert.True(t, r.Value.Granted)
	assert.Equal(t, int64(1000), r.Value.Amount)
	assert.Equal(t, 1, degradedCalls)
}

func TestEconomy_Catalog(t *testing.T) {
	e := New(nil, nil, nil)
	e.SetPrice("lantern", 1000)
	e.SetPrice("armor", 300)

	assert.Equal(t, []Item{
		{ID: "armor", Price: 300},
		{ID: "ammo_pack", Price: 1000},
		{ID: "lantern", Price: 1000},
		{ID: "health_pack", Price: 2000},
		{ID: "special_weapon", Price: 10000},
	}, e.Catalog())
}

func TestEconomy_PurchaseLightning(t *testing.T) {
	e, _, ln := newLive(t)
	ctx := context.Background()
	e.RewardPlayer(ctx, "p1", ActionPerfectLevel)

	res, err := e.PurchaseItem(ctx, "p1", "ammo_pack", true)
	require.NoError(t, err)
	assert.False(t, res.Degraded())
	assert.Equal(t, int64(1000), res.Value.NewBalance)
	assert.Equal(t, "lightning_hash", res.Value.TxID)
	assert.Equal(t, []int64{1000}, ln.invoices)
	assert.Equal(t, []string{"hash"}, ln.checked)
	assert.True(t, res.Value.Settled)

	_, err = e.PurchaseItem(ctx, "p1", "armor", true)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(1000), e.Wallet("p1").Lightning)
}

func TestEconomy_PurchaseOnChain(t *testing.T) {
	e, _, _ := newLive(t)
	ctx := context.Background()

	res, err := e.PurchaseItem(ctx, "p1", "special_weapon", false)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), res.Value.NewBalance)
	assert.Contains(t, res.Value.TxID, "onchain_")

	bal := e.GetPlayerBalance(ctx, "p1")
	assert.Equal(t, int64(40_000), bal.Value.OnChain)

	for i := 0; i < 4; i++ {
		_, err = e.PurchaseItem(ctx, "p1", "special_weapon", false)
		require.NoError(t, err)
	}
	_, err = e.PurchaseItem(ctx, "p1", "special_weapon", false)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestEconomy_PurchaseErrors(t *testing.T) {
	e := New(nil, nil, nil)
	_, err := e.PurchaseItem(context.Background(), "p1", "armor", true)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, e.Init(context.Background()))
	_, err = e.PurchaseItem(context.Background(), "p1", "cape", true)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestEconomy_WalletAddress(t *testing.T) {
	e := New(nil, nil, nil)
	a := e.Wallet("p1")
	b := e.Wallet("p2")

	assert.Same(t, a, e.Wallet("p1"))
	assert.NotEqual(t, a.Address, b.Address)
	assert.Len(t, a.Address, 44)
}

func TestEconomy_Cleanup(t *testing.T) {
	e, _, _ := newLive(t)
	ctx := context.Background()
	e.RewardPlayer(ctx, "p1", ActionLevelComplete)

	e.Cleanup(ctx)

	assert.False(t, e.Initialized())
	assert.True(t, e.GetPlayerBalance(ctx, "p1").Degraded())
	_, err := e.PurchaseItem(ctx, "p1", "ammo_pack", true)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, e.Init(ctx))
	assert.Equal(t, int64(1000), e.Wallet("p1").Lightning)
	assert.Equal(t, int64(1000), e.GetPlayerBalance(ctx, "p1").Value.Lightning)
}

func TestEconomy_UnreachableBackends(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := New(bitcoin.NewCoreClient(url, 0, nil), bitcoin.NewLightningClient(url, 0, nil), nil)
	ctx := context.Background()
	require.NoError(t, e.Init(ctx))

	r := e.RewardPlayer(ctx, "p1", ActionLevelComplete)
	assert.True(t, r.Degraded())
	assert.True(t, r.Value.Granted)
	assert.Equal(t, int64(1000), r.Value.Amount)

	bal := e.GetPlayerBalance(ctx, "p1")
	assert.True(t, bal.Degraded())
	assert.Equal(t, int64(bitcoin.SatsPerBTC), bal.Value.OnChain)
	assert.Equal(t, int64(1000), bal.Value.Lightning)
}

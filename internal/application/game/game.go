// Package game provides the orchestrator that owns the scene manager, the
// game loop and the level lifecycle.
//
// Game implements ebiten.Game for the host window, loop.Host for the frame
// loop and menu.Navigator for the menu scenes. Every method runs on the
// Ebitengine update goroutine.
package game

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/loop"
	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/application/scene/cutscene"
	"github.com/younwookim/hollowhouse/internal/application/scene/loading"
	"github.com/younwookim/hollowhouse/internal/application/scene/menu"
	"github.com/younwookim/hollowhouse/internal/application/scene/playing"
	"github.com/younwookim/hollowhouse/internal/application/state"
	"github.com/younwookim/hollowhouse/internal/domain/entity"
	"github.com/younwookim/hollowhouse/internal/domain/profile"
	"github.com/younwookim/hollowhouse/internal/domain/world"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
)

// DefaultMaxLevel is the highest level index when Options leaves it zero
const DefaultMaxLevel = 7

// Sound cues played by the orchestrator
const (
	CueTimeout  = "timeout"
	CueGameOver = "game_over"
)

// Renderer draws the world once per loop step
type Renderer interface {
	Render(view world.View) error
	Dispose()
	// Reset makes a disposed renderer usable again
	Reset()
}

// Audio plays sound effects and music
type Audio interface {
	Init(ctx context.Context) error
	Play(id string, volume float64, loop bool)
	PauseMusic()
	ResumeMusic()
	StopAllSounds()
	UpdateListenerPosition() bool
}

// Controls maps device input onto the session input flags
type Controls interface {
	SetControlsEnabled(enabled bool)
	Reinitialize(ctx context.Context) error
	RequestPointerLock() error
	ReleasePointerLock()
	Cleanup()
	// Poll fills in and reports whether pause was requested this frame.
	Poll(in *entity.InputFlags) bool
}

// UI is the overlay drawn above the scenes
type UI interface {
	ShowPauseMenu()
	HidePauseMenu()
	ShowGameHUD()
	ShowTimeExpiredMessage(onConfirm func())
	ShowGameWonPopup()
	ShowGameOverPopup(onRestart func())
	UpdateTimerDisplay(seconds int, warning bool)
	ShowError(title, msg string)
	ShowMessage(title, msg string)
	ShowReward(sats int64, label string)
	UpdateBalance(b economy.Balance)
	RemoveAllUI()
}

// Economy is the reward and shop service
type Economy interface {
	Init(ctx context.Context) error
	Catalog() []economy.Item
	RewardPlayer(ctx context.Context, playerID, action string) economy.Result[economy.Reward]
	GetPlayerBalance(ctx context.Context, playerID string) economy.Result[economy.Balance]
	PurchaseItem(ctx context.Context, playerID, itemID string, fast bool) (economy.Result[economy.Purchase], error)
	RewardRate(action string) int64
	Cleanup(ctx context.Context)
}

// ProgressStore persists unlocked levels and profiles
type ProgressStore interface {
	UnlockedLevels() int
	SetUnlockedLevels(n int) error
	LoadProfile(id string) (*profile.Profile, error)
	SaveProfile(p *profile.Profile) error
}

// World is the scene graph shared by every level
type World interface {
	Rebuild(ctx context.Context) error
	View() world.View
	Bind(player *entity.Player, counters *entity.LevelCounters)
	Graph() *world.Graph
}

// FramePump is the scheduler the host frame drives
type FramePump interface {
	loop.Scheduler
	Pump(now time.Time) int
}

// Changes reports data files changed on disk
type Changes interface {
	Poll() []string
}

type drawable interface {
	Draw(screen *ebiten.Image)
}

type interactive interface {
	HandleInput(keys scene.Keys)
	Update(dt float64)
}

// Options are the static game settings
type Options struct {
	ScreenWidth  int
	ScreenHeight int
	Title        string
	Credits      []string

	MaxLevel      int
	TimerDuration float64
	TimerWarning  float64
	PlayerID      string
}

// Deps are the collaborators. Every field except Scheduler may be nil.
type Deps struct {
	Data      *config.GameData
	Scheduler FramePump
	Keys      scene.Keys

	Renderer Renderer
	Audio    Audio
	Controls Controls
	UI       UI
	Economy  Economy
	Store    ProgressStore
	World    World

	Metrics *telemetry.Metrics
	Log     *zap.SugaredLogger

	// Watch and ReloadCutscenes enable cutscene hot reload
	Watch           Changes
	ReloadCutscenes func() ([]config.CutsceneConfig, error)
}

// Game orchestrates scenes, the loop and the level lifecycle
type Game struct {
	opts Options
	data *config.GameData
	log  *zap.SugaredLogger

	sched    FramePump
	keys     scene.Keys
	renderer Renderer
	audio    Audio
	controls Controls
	ui       UI
	economy  Economy
	store    ProgressStore
	world    World
	metrics  *telemetry.Metrics

	watch  Changes
	reload func() ([]config.CutsceneConfig, error)

	session *state.Session
	timer   *entity.Timer
	manager *scene.Manager
	loop    *loop.Loop

	profile *profile.Profile
	balance economy.Balance

	ctx         context.Context
	initialized bool
	cleaned     bool
	completing  bool
	quit        bool
	frameDelta  float64
}

// New wires the orchestrator and registers the static scenes.
// No scene is entered until Init.
func New(opts Options, deps Deps) *Game {
	if opts.MaxLevel <= 0 {
		opts.MaxLevel = DefaultMaxLevel
	}
	if opts.PlayerID == "" {
		opts.PlayerID = profile.GuestID
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	data := deps.Data
	if data == nil {
		data = &config.GameData{}
	}

	g := &Game{
		opts:       opts,
		data:       data,
		log:        log,
		sched:      deps.Scheduler,
		keys:       deps.Keys,
		renderer:   deps.Renderer,
		audio:      deps.Audio,
		controls:   deps.Controls,
		ui:         deps.UI,
		economy:    deps.Economy,
		store:      deps.Store,
		world:      deps.World,
		metrics:    deps.Metrics,
		watch:      deps.Watch,
		reload:     deps.ReloadCutscenes,
		session:    state.NewSession(),
		timer:      entity.NewTimer(opts.TimerDuration, opts.TimerWarning),
		profile:    profile.New(opts.PlayerID, ""),
		ctx:        context.Background(),
		frameDelta: 1.0 / 60.0,
	}

	if g.store != nil {
		g.session.UnlockedLevels = g.store.UnlockedLevels()
	}
	g.session.Player = entity.NewPlayer(0, 0, playing.DefaultMaxHealth, playing.DefaultMaxAmmo)

	g.manager = scene.NewManager(scene.NewRegistry(), log)
	g.manager.OnTransition = func(to scene.Key) {
		if g.metrics != nil {
			g.metrics.SceneEntered(to.Kind.String())
		}
	}
	g.loop = loop.New(g.sched, g, log)
	g.registerStatic()
	return g
}

func (g *Game) registerStatic() {
	reg := g.manager.Registry()
	static := map[scene.Key]scene.Factory{
		scene.Splash:    func() (scene.Scene, error) { return menu.NewSplash(g, g.keys, g.opts.Title), nil },
		scene.Loading:   func() (scene.Scene, error) { return loading.New(), nil },
		scene.MainMenu:  func() (scene.Scene, error) { return menu.NewMainMenu(g, g.keys, g.opts.Title), nil },
		scene.LevelMenu: func() (scene.Scene, error) { return menu.NewLevelMenu(g, g.keys), nil },
		scene.Credits:   func() (scene.Scene, error) { return menu.NewCredits(g, g.keys, g.opts.Credits), nil },
		scene.Profile:   func() (scene.Scene, error) { return menu.NewProfile(g, g.keys), nil },
		scene.Settings:  func() (scene.Scene, error) { return menu.NewSettings(g, g.keys), nil },
		scene.Shop:      func() (scene.Scene, error) { return menu.NewShop(g, g.keys), nil },
	}
	for key, factory := range static {
		if err := reg.Register(key, factory, scene.Cached); err != nil {
			g.log.Errorw("register scene", "scene", key.String(), "error", err)
		}
	}
}

// Init loads the profile, connects the economy and shows the splash screen.
// Calling it again is a no-op.
func (g *Game) Init(ctx context.Context) error {
	if g.initialized {
		return nil
	}
	g.initialized = true
	g.ctx = ctx

	if g.audio != nil {
		if err := g.audio.Init(ctx); err != nil {
			g.log.Warnw("audio unavailable", "error", err)
		}
	}

	if g.store != nil {
		p, err := g.store.LoadProfile(g.opts.PlayerID)
		if err != nil {
			g.log.Warnw("profile load failed, using a fresh one", "error", err)
		} else {
			g.profile = p
		}
	}

	g.ensureEconomy(ctx)

	if g.world != nil {
		if err := g.world.Rebuild(ctx); err != nil {
			g.log.Errorw("world build failed", "error", err)
		}
	}

	if err := g.manager.SwitchTo(ctx, scene.Splash, scene.Context{}); err != nil {
		return err
	}
	g.loop.Start()
	return nil
}

// Session returns the shared game state
func (g *Game) Session() *state.Session { return g.session }

// Timer returns the level countdown
func (g *Game) Timer() *entity.Timer { return g.timer }

// Manager returns the scene manager
func (g *Game) Manager() *scene.Manager { return g.manager }

// Loop returns the game loop
func (g *Game) Loop() *loop.Loop { return g.loop }

// Profile returns the active player profile
func (g *Game) Profile() *profile.Profile { return g.profile }

// Update runs one host frame. Implements ebiten.Game.
func (g *Game) Update() error {
	ctx := g.ctx
	g.pollData()

	if ui, ok := g.ui.(interactive); ok {
		ui.Update(g.frameDelta)
		if g.keys != nil {
			ui.HandleInput(g.keys)
		}
	}

	if key, ok := g.manager.CurrentKey(); ok && key.Kind == scene.KindLevel {
		g.handleLevelInput(ctx)
	} else if h, ok := g.manager.Current().(scene.InputHandler); ok {
		if err := h.HandleInput(ctx); err != nil {
			g.log.Errorw("scene input failed", "scene", g.manager.CurrentSceneName(), "error", err)
		}
	}

	if g.sched != nil {
		g.sched.Pump(g.sched.Now())
	}

	if g.quit {
		g.CleanupEverything(ctx)
		return ebiten.Termination
	}
	return nil
}

func (g *Game) handleLevelInput(ctx context.Context) {
	if g.controls != nil && g.controls.Poll(&g.session.Input) {
		g.TogglePause()
	}
	if g.session.Paused && g.keys != nil && g.keys.JustPressed(ebiten.KeyQ) {
		if err := g.ReturnToMainMenu(ctx); err != nil {
			g.log.Errorw("return to main menu failed", "error", err)
		}
	}
}

// Draw renders the active scene and the overlay. Implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if d, ok := g.manager.Current().(scene.Drawer); ok {
		d.Draw(screen)
	} else if d, ok := g.renderer.(drawable); ok {
		d.Draw(screen)
	}
	if d, ok := g.ui.(drawable); ok {
		d.Draw(screen)
	}
}

// Layout returns the logical screen size. Implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.opts.ScreenWidth, g.opts.ScreenHeight
}

// CanStart holds the loop until the pre-level cutscene has finished
func (g *Game) CanStart() bool {
	return g.session.CutsceneFinished && !g.session.Paused
}

// OnStart activates the level timer
func (g *Game) OnStart() {
	if !g.timer.Expired() {
		g.timer.Activate()
	}
}

// Exempt reports whether the active scene is outside the loop
func (g *Game) Exempt() bool {
	cur := g.manager.Current()
	return cur != nil && scene.IsExempt(cur)
}

// OnExempt frees the pointer when the loop parks on a menu
func (g *Game) OnExempt() {
	if g.controls != nil {
		g.controls.ReleasePointerLock()
	}
}

// Step advances the timer and the active scene, then renders the world
func (g *Game) Step(dt float64) error {
	if g.timer.Advance(dt) {
		g.handleTimeExpired()
	}
	if g.ui != nil && (g.timer.Active || g.timer.Expired()) {
		g.ui.UpdateTimerDisplay(g.timer.Display(), g.timer.InWarning())
	}
	if g.audio != nil {
		g.audio.UpdateListenerPosition()
	}

	if u, ok := g.manager.Current().(scene.Updater); ok {
		if err := u.Update(dt); err != nil {
			return err
		}
	}

	if g.renderer != nil && g.world != nil {
		if err := g.renderer.Render(g.world.View()); err != nil {
			return err
		}
	}
	return nil
}

// OnFrameError recovers from a failed frame
func (g *Game) OnFrameError(err error) {
	if g.metrics != nil {
		g.metrics.FrameFailed()
	}
	g.HandleGameError(err)
}

// Navigate switches to a menu scene, falling back to the main menu on failure
func (g *Game) Navigate(ctx context.Context, key scene.Key) error {
	if err := g.manager.SwitchTo(ctx, key, scene.Context{}); err != nil {
		g.log.Errorw("navigation failed", "scene", key.String(), "error", err)
		if g.ui != nil {
			g.ui.ShowError("Navigation failed", key.String())
		}
		if key != scene.MainMenu {
			g.fallbackToMainMenu(ctx)
		}
		return err
	}
	return nil
}

// Progress summarizes unlock state and the profile for the menus
func (g *Game) Progress() menu.Progress {
	pr := menu.Progress{
		UnlockedLevels: g.session.UnlockedLevels,
		MaxLevel:       g.maxLevel(),
		Balance:        g.balance.Total,
		Offline:        g.economy == nil,
	}
	if g.profile != nil {
		pr.XP = g.profile.XP
		pr.CompletedLevels = g.profile.CompletedLevels()
		pr.TotalEarned = g.profile.TotalEarned
		pr.TotalSpent = g.profile.TotalSpent
		pr.Net = g.profile.Net()
		pr.Achievements = append([]string(nil), g.profile.Achievements...)
	}
	if o, ok := g.economy.(interface{ Offline() bool }); ok {
		pr.Offline = o.Offline()
	}
	return pr
}

// Quit ends the game after the current frame
func (g *Game) Quit() {
	g.quit = true
}

// ReloadCutscenes swaps in new cutscene data. Levels started afterwards use it.
func (g *Game) ReloadCutscenes(cutscenes []config.CutsceneConfig) {
	g.data.Cutscenes = cutscenes
	g.log.Infow("cutscenes reloaded", "count", len(cutscenes))
}

func (g *Game) pollData() {
	if g.watch == nil || g.reload == nil {
		return
	}
	if len(g.watch.Poll()) == 0 {
		return
	}
	cs, err := g.reload()
	if err != nil {
		g.log.Warnw("cutscene reload failed", "error", err)
		return
	}
	g.ReloadCutscenes(cs)
}

func (g *Game) refreshBalance(ctx context.Context) {
	if g.economy == nil {
		return
	}
	res := g.economy.GetPlayerBalance(ctx, g.profile.ID)
	g.balance = res.Value
	if g.ui != nil {
		g.ui.UpdateBalance(res.Value)
	}
}

// maxLevel is the highest index with level data, capped by Options.MaxLevel
func (g *Game) maxLevel() int {
	m := g.opts.MaxLevel
	if n := len(g.data.Levels); n > 0 && n-1 < m {
		m = n - 1
	}
	return m
}

func (g *Game) newLevel(idx int) scene.Factory {
	return func() (scene.Scene, error) {
		cfg, ok := g.data.Level(idx)
		if !ok {
			return nil, errNoLevel(idx)
		}
		var sounds playing.Sounds
		if g.audio != nil {
			sounds = g.audio
		}
		var w playing.World
		if g.world != nil {
			w = g.world
		}
		p := playing.New(idx, *cfg, g.session, w, sounds, g.log)
		p.OnComplete = func() {
			if err := g.HandleLevelCompletion(g.ctx); err != nil {
				g.log.Errorw("level completion failed", "level", idx, "error", err)
			}
		}
		p.OnGameOver = g.HandleGameOver
		return p, nil
	}
}

func (g *Game) newCutscene(idx int) scene.Factory {
	return func() (scene.Scene, error) {
		cs, ok := g.data.Cutscene(idx)
		if !ok {
			return nil, errNoCutscene(idx)
		}
		var sounds cutscene.Sounds
		if g.audio != nil {
			sounds = g.audio
		}
		c := cutscene.New(*cs, g.keys, sounds, g.log)
		c.OnFinish = func(ctx context.Context, musicID string) error {
			return g.FinishCutscene(ctx, idx, musicID)
		}
		return c, nil
	}
}

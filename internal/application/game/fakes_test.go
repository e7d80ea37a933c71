package game

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/domain/entity"
	"github.com/younwookim/hollowhouse/internal/domain/world"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
	"github.com/younwookim/hollowhouse/internal/infrastructure/platform"
	"github.com/younwookim/hollowhouse/internal/infrastructure/storage"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
)

type fakeKeys struct {
	just map[ebiten.Key]bool
}

func (k *fakeKeys) Pressed(key ebiten.Key) bool     { return false }
func (k *fakeKeys) JustPressed(key ebiten.Key) bool { return k.just[key] }

func (k *fakeKeys) press(keys ...ebiten.Key) {
	k.just = make(map[ebiten.Key]bool)
	for _, key := range keys {
		k.just[key] = true
	}
}

type fakeRenderer struct {
	renders   int
	failNext  int
	disposed  bool
	disposals int
	resets    int
}

func (r *fakeRenderer) Render(world.View) error {
	if r.disposed {
		return errDisposed
	}
	r.renders++
	if r.failNext > 0 {
		r.failNext--
		return fmt.Errorf("render frame %d: %w", r.renders, errRender)
	}
	return nil
}

func (r *fakeRenderer) Dispose() { r.disposed = true; r.disposals++ }
func (r *fakeRenderer) Reset()   { r.disposed = false; r.resets++ }

var (
	errRender   = errors.New("gpu lost")
	errDisposed = errors.New("renderer disposed")
)

type fakeAudio struct {
	inits   int
	played  []string
	paused  bool
	stopped int
}

func (a *fakeAudio) Init(context.Context) error { a.inits++; return nil }
func (a *fakeAudio) Play(id string, _ float64, _ bool) {
	a.played = append(a.played, id)
}
func (a *fakeAudio) PauseMusic()                  { a.paused = true }
func (a *fakeAudio) ResumeMusic()                 { a.paused = false }
func (a *fakeAudio) StopAllSounds()               { a.stopped++ }
func (a *fakeAudio) UpdateListenerPosition() bool { return false }

type fakeControls struct {
	enabled     bool
	locked      bool
	reinits     int
	cleanups    int
	released    int
	pause       bool
	reinitErr   error
	lockRefused bool
}

func (c *fakeControls) SetControlsEnabled(enabled bool) { c.enabled = enabled }
func (c *fakeControls) Reinitialize(context.Context) error {
	c.reinits++
	return c.reinitErr
}
func (c *fakeControls) RequestPointerLock() error {
	if c.lockRefused {
		return errors.New("pointer lock refused")
	}
	c.locked = true
	return nil
}
func (c *fakeControls) ReleasePointerLock() { c.locked = false; c.released++ }
func (c *fakeControls) Cleanup()            { c.cleanups++; c.locked = false }
func (c *fakeControls) Poll(in *entity.InputFlags) bool {
	p := c.pause
	c.pause = false
	return p
}

type fakeUI struct {
	pauseMenu   bool
	hud         int
	timeExpired int
	gameWon     int
	gameOver    int
	errors      []string
	messages    []string
	rewards     []int64
	balance     economy.Balance
	timer       int
	cleared     int
	confirm     func()
}

func (u *fakeUI) ShowPauseMenu()    { u.pauseMenu = true }
func (u *fakeUI) HidePauseMenu()    { u.pauseMenu = false }
func (u *fakeUI) ShowGameHUD()      { u.hud++ }
func (u *fakeUI) ShowGameWonPopup() { u.gameWon++ }
func (u *fakeUI) ShowTimeExpiredMessage(onConfirm func()) {
	u.timeExpired++
	u.confirm = onConfirm
}
func (u *fakeUI) ShowGameOverPopup(onRestart func()) {
	u.gameOver++
	u.confirm = onRestart
}
func (u *fakeUI) UpdateTimerDisplay(seconds int, _ bool) { u.timer = seconds }
func (u *fakeUI) ShowError(title, _ string)            { u.errors = append(u.errors, title) }
func (u *fakeUI) ShowMessage(title, _ string)          { u.messages = append(u.messages, title) }
func (u *fakeUI) ShowReward(sats int64, _ string)      { u.rewards = append(u.rewards, sats) }
func (u *fakeUI) UpdateBalance(b economy.Balance)      { u.balance = b }
func (u *fakeUI) RemoveAllUI()                         { u.cleared++; u.pauseMenu = false }

type fakeWatch struct {
	changed []string
}

func (w *fakeWatch) Poll() []string {
	c := w.changed
	w.changed = nil
	return c
}

// fixture bundles a game with its fakes and a manual clock
type fixture struct {
	game     *Game
	sched    *platform.FrameScheduler
	clock    time.Time
	keys     *fakeKeys
	renderer *fakeRenderer
	audio    *fakeAudio
	controls *fakeControls
	ui       *fakeUI
	economy  *economy.Economy
	store    *storage.Store
	metrics  *telemetry.Metrics
	world    *world.World
	scenes   []string
}

// createTestData returns levels 0..n-1, each with one distant spider,
// and a cutscene for level 3
func createTestData(n int) *config.GameData {
	data := &config.GameData{}
	for i := 0; i < n; i++ {
		data.Levels = append(data.Levels, config.LevelConfig{
			Index:   i,
			Name:    fmt.Sprintf("Level %d", i),
			Music:   fmt.Sprintf("level_%d", i),
			Spawn:   config.PointConfig{X: 10, Y: 10},
			Enemies: []config.EnemySpawn{{Kind: "spider", X: 190, Y: 190}},
		})
	}
	data.Cutscenes = []config.CutsceneConfig{{
		ID:       "cutscene_3",
		Dialogue: []config.DialogueLine{{Text: "Down the stairs."}},
	}}
	return data
}

func newFixture(t *testing.T, data *config.GameData) *fixture {
	t.Helper()
	f := &fixture{
		clock:    time.Unix(1000, 0),
		keys:     &fakeKeys{},
		renderer: &fakeRenderer{},
		audio:    &fakeAudio{},
		controls: &fakeControls{},
		ui:       &fakeUI{},
		economy:  economy.New(nil, nil, nil),
		store:    storage.New(storage.NewMemory(), nil),
		metrics:  telemetry.New("test", prometheus.NewRegistry()),
		world:    world.New(world.Prefab{Width: 200, Height: 200}, nil),
	}
	f.sched = platform.NewFrameScheduler(func() time.Time { return f.clock })

	f.game = New(Options{
		ScreenWidth:  320,
		ScreenHeight: 200,
		Title:        "Test",
		MaxLevel:     7,
	}, Deps{
		Data:      data,
		Scheduler: f.sched,
		Keys:      f.keys,
		Renderer:  f.renderer,
		Audio:     f.audio,
		Controls:  f.controls,
		UI:        f.ui,
		Economy:   f.economy,
		Store:     f.store,
		World:     f.world,
		Metrics:   f.metrics,
	})

	m := f.game.Manager()
	prev := m.OnTransition
	m.OnTransition = func(to scene.Key) {
		f.scenes = append(f.scenes, to.String())
		prev(to)
	}
	return f
}

func newInitializedFixture(t *testing.T, data *config.GameData) *fixture {
	t.Helper()
	f := newFixture(t, data)
	require.NoError(t, f.game.Init(context.Background()))
	f.scenes = nil
	return f
}

// frame advances the clock by d and runs one host frame
func (f *fixture) frame(t *testing.T, d time.Duration) {
	t.Helper()
	f.clock = f.clock.Add(d)
	require.NoError(t, f.game.Update())
	f.keys.press()
}

func (f *fixture) currentKey() scene.Key {
	k, _ := f.game.Manager().CurrentKey()
	return k
}

package game

import (
	"context"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/application/state"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
)

func TestGame_InitShowsSplash(t *testing.T) {
	f := newFixture(t, createTestData(5))
	ctx := context.Background()

	require.NoError(t, f.game.Init(ctx))
	require.NoError(t, f.game.Init(ctx))

	assert.Equal(t, scene.Splash, f.currentKey())
	assert.Equal(t, []string{"splash"}, f.scenes)
	assert.Equal(t, 1, f.audio.inits)
	assert.True(t, f.economy.Initialized())
	assert.NotNil(t, f.world.Graph(), "world is built on init")
	assert.Equal(t, state.LoopStopped, f.game.Loop().State(), "no level, no loop")
}

func TestGame_Layout(t *testing.T) {
	f := newFixture(t, nil)
	w, h := f.game.Layout(1920, 1080)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
}

func TestGame_SplashToMainMenuThroughUpdate(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))

	f.keys.press(ebiten.KeyEnter)
	f.frame(t, 16*time.Millisecond)

	assert.Equal(t, scene.MainMenu, f.currentKey())
}

func TestGame_NavigateFailureFallsBackToMainMenu(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))

	err := f.game.Navigate(context.Background(), scene.Level(42))
	require.Error(t, err)
	assert.ErrorIs(t, err, scene.ErrNotRegistered)
	assert.Equal(t, scene.MainMenu, f.currentKey())
	assert.Equal(t, []string{"Navigation failed"}, f.ui.errors)
}

func TestGame_Progress(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	f.game.Session().UnlockedLevels = 3

	pr := f.game.Progress()
	assert.Equal(t, 3, pr.UnlockedLevels)
	assert.Equal(t, 4, pr.MaxLevel, "capped by the level data")
	assert.True(t, pr.Offline)
	assert.Empty(t, pr.CompletedLevels)
	assert.Zero(t, pr.TotalEarned)
}

func TestGame_QuitTerminatesAndCleansUp(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 0))

	f.game.Quit()
	err := f.game.Update()

	assert.ErrorIs(t, err, ebiten.Termination)
	assert.True(t, f.renderer.disposed)
	assert.False(t, f.economy.Initialized())
	assert.Nil(t, f.game.Manager().Current())
	assert.False(t, f.game.Loop().Pending())

	// the host calls it again once RunGame returns
	f.game.CleanupEverything(context.Background())
	assert.Equal(t, 1, f.renderer.disposals)
	assert.Equal(t, 1, f.controls.cleanups)
}

func TestGame_ReturnToMainMenuTearsDownAndLevelStartRestores(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	ctx := context.Background()
	require.NoError(t, f.game.StartLevelWithCutscene(ctx, 0))
	require.True(t, f.controls.locked)

	require.NoError(t, f.game.ReturnToMainMenu(ctx))

	assert.Equal(t, scene.MainMenu, f.currentKey())
	assert.True(t, f.renderer.disposed)
	assert.Equal(t, 1, f.controls.cleanups)
	assert.False(t, f.controls.locked)
	assert.False(t, f.economy.Initialized())
	assert.Equal(t, state.LoopStopped, f.game.Loop().State())
	assert.False(t, f.game.Session().CutsceneFinished)

	require.NoError(t, f.game.StartLevelWithCutscene(ctx, 0))

	assert.Equal(t, scene.Level(0), f.currentKey())
	assert.False(t, f.renderer.disposed)
	assert.Equal(t, 1, f.renderer.resets)
	assert.True(t, f.economy.Initialized())
	assert.True(t, f.controls.locked)

	before := f.renderer.renders
	f.frame(t, 16*time.Millisecond)
	assert.Equal(t, before+1, f.renderer.renders)
	assert.Zero(t, testutil.ToFloat64(f.metrics.FrameErrors))
}

func TestGame_QuitFromMenuAfterLeavingLevel(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	ctx := context.Background()
	require.NoError(t, f.game.StartLevelWithCutscene(ctx, 0))
	require.NoError(t, f.game.ReturnToMainMenu(ctx))

	f.game.Quit()
	assert.ErrorIs(t, f.game.Update(), ebiten.Termination)
	f.game.CleanupEverything(ctx)

	assert.Equal(t, 1, f.renderer.disposals)
	assert.Equal(t, 1, f.controls.cleanups)
	assert.Nil(t, f.game.Manager().Current())
}

func TestGame_CleanupEverythingOnPartialGame(t *testing.T) {
	f := newFixture(t, nil)
	g := New(Options{}, Deps{Scheduler: f.sched})

	assert.NotPanics(t, func() {
		g.CleanupEverything(context.Background())
		g.CleanupEverything(context.Background())
	})
	assert.Equal(t, state.LoopStopped, g.Loop().State())
}

func TestGame_CutsceneHotReload(t *testing.T) {
	f := newFixture(t, createTestData(5))
	watch := &fakeWatch{}
	f.game.watch = watch
	f.game.reload = func() ([]config.CutsceneConfig, error) {
		return []config.CutsceneConfig{{
			ID:       "cutscene2",
			Dialogue: []config.DialogueLine{{Text: "The attic door is open."}},
		}}, nil
	}
	require.NoError(t, f.game.Init(context.Background()))

	watch.changed = []string{"data/cutscenes.json"}
	f.frame(t, 16*time.Millisecond)

	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 2))
	assert.Equal(t, scene.Cutscene(2), f.currentKey())

	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 3))
	assert.Equal(t, scene.Level(3), f.currentKey(), "old cutscene data was replaced")
}

func TestGame_ExemptSceneStopsLoop(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	ctx := context.Background()
	require.NoError(t, f.game.StartLevelWithCutscene(ctx, 0))
	require.Equal(t, state.LoopRunning, f.game.Loop().State())
	require.True(t, f.controls.locked)

	require.NoError(t, f.game.manager.SwitchTo(ctx, scene.MainMenu, scene.Context{}))
	f.frame(t, 16*time.Millisecond)

	assert.Equal(t, state.LoopStopped, f.game.Loop().State())
	assert.False(t, f.game.Loop().Pending())
	assert.False(t, f.controls.locked, "pointer released on menus")
}

func TestGame_FrameErrorResetsLevelAndKeepsLooping(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 2))
	f.renderer.failNext = 1

	f.frame(t, 16*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FrameErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LevelResets))
	assert.Equal(t, scene.Level(2), f.currentKey())
	assert.True(t, f.game.Loop().Pending(), "next frame is scheduled")

	before := f.renderer.renders
	f.frame(t, 16*time.Millisecond)

	assert.Equal(t, before+1, f.renderer.renders, "next frame runs")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LevelResets))
	assert.False(t, f.game.Session().Resetting)
}

func TestGame_SceneUpdateErrorIsRecovered(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 1))
	f.game.Session().Player = nil

	assert.NotPanics(t, func() { f.frame(t, 16*time.Millisecond) })
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FrameErrors))
	assert.Equal(t, scene.Level(1), f.currentKey())
}

func TestGame_PauseThroughControls(t *testing.T) {
	f := newInitializedFixture(t, createTestData(5))
	require.NoError(t, f.game.StartLevelWithCutscene(context.Background(), 0))

	f.controls.pause = true
	f.frame(t, 16*time.Millisecond)

	assert.True(t, f.game.Session().Paused)
	assert.Equal(t, state.LoopPaused, f.game.Loop().State())
	assert.True(t, f.ui.pauseMenu)

	f.keys.press(ebiten.KeyQ)
	f.frame(t, 16*time.Millisecond)

	assert.Equal(t, scene.MainMenu, f.currentKey())
	assert.False(t, f.game.Session().Paused)
	assert.Equal(t, state.LoopStopped, f.game.Loop().State())
}

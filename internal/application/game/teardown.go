package game

import (
	"context"
	"runtime"

	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// ResetLevelState restores per-level defaults and stops the loop.
// The current and unlocked level and the cutscene gate survive.
func (g *Game) ResetLevelState() {
	g.session.ResetLevel()
	g.timer.Reset()
	if g.ui != nil {
		g.ui.UpdateTimerDisplay(g.timer.Display(), false)
	}

	g.loop.Stop()

	if g.controls != nil {
		g.controls.ReleasePointerLock()
	}
	if g.audio != nil && g.audio.UpdateListenerPosition() {
		if err := g.audio.Init(g.ctx); err != nil {
			g.log.Warnw("audio re-warm failed", "error", err)
		}
	}
}

// HandleGameError logs err and restarts the current level
func (g *Game) HandleGameError(err error) {
	g.log.Errorw("game error", "scene", g.manager.CurrentSceneName(), "level", g.session.CurrentLevel, "error", err)
	if rerr := g.ResetCurrentLevel(g.ctx); rerr != nil {
		g.log.Errorw("recovery failed", "error", rerr)
	}
}

// ReturnToMainMenu tears the running game down and shows the main menu.
// The next level start brings the released resources back.
func (g *Game) ReturnToMainMenu(ctx context.Context) error {
	g.CleanupEverything(ctx)
	g.session.CutsceneFinished = false
	return g.Navigate(ctx, scene.MainMenu)
}

// CleanupEverything releases every resource the game holds.
// It tolerates collaborators that were never set up. A second call only
// stops the loop and releases the active scene.
func (g *Game) CleanupEverything(ctx context.Context) {
	g.loop.Stop()
	if g.cleaned {
		g.manager.Release(ctx)
		return
	}
	g.cleaned = true

	if g.audio != nil {
		g.audio.StopAllSounds()
	}
	g.manager.Release(ctx)
	g.ResetLevelState()

	if g.renderer != nil {
		g.renderer.Dispose()
	}
	if g.controls != nil {
		g.controls.Cleanup()
	}
	if g.economy != nil {
		g.economy.Cleanup(ctx)
	}
	if g.ui != nil {
		g.ui.RemoveAllUI()
	}
	runtime.GC()
	g.log.Infow("game cleaned up")
}

// restore undoes CleanupEverything before a new level run.
// Controls come back through EnsureControls when the level is entered.
func (g *Game) restore(ctx context.Context) {
	if !g.cleaned {
		return
	}
	g.cleaned = false
	if g.renderer != nil {
		g.renderer.Reset()
	}
	g.ensureEconomy(ctx)
}

// ensureEconomy initializes the economy if cleanup dropped it
func (g *Game) ensureEconomy(ctx context.Context) bool {
	if g.economy == nil {
		return false
	}
	if err := g.economy.Init(ctx); err != nil {
		g.log.Warnw("economy init failed", "error", err)
		return false
	}
	g.refreshBalance(ctx)
	return true
}

func (g *Game) fallbackToMainMenu(ctx context.Context) {
	g.loop.Stop()
	if key, ok := g.manager.CurrentKey(); ok && key == scene.MainMenu {
		return
	}
	if err := g.manager.SwitchTo(ctx, scene.MainMenu, scene.Context{}); err != nil {
		g.log.Errorw("main menu fallback failed", "error", err)
	}
}

package game

import (
	"context"
	"fmt"
	"time"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/domain/profile"
)

func errNoLevel(idx int) error {
	return fmt.Errorf("no data for level %d", idx)
}

func errNoCutscene(idx int) error {
	return fmt.Errorf("no cutscene for level %d", idx)
}

func (g *Game) clamp(idx int) int {
	if idx < 0 {
		return 0
	}
	if m := g.maxLevel(); idx > m {
		return m
	}
	return idx
}

// StartLevelWithCutscene starts a level, playing its cutscene first when
// one exists. On failure the main menu is shown.
func (g *Game) StartLevelWithCutscene(ctx context.Context, index int) error {
	idx := g.clamp(index)
	g.restore(ctx)

	g.session.CutsceneFinished = false
	g.session.Completed = false
	if g.session.Player != nil {
		g.session.Player.Completed = false
	}
	g.session.CurrentLevel = idx
	g.ResetLevelState()

	err := g.startLevel(ctx, idx)
	if err != nil {
		g.log.Errorw("level start failed", "level", idx, "error", err)
		if g.ui != nil {
			g.ui.ShowError("Level failed to load", "Returning to main menu")
		}
		g.fallbackToMainMenu(ctx)
	}
	return err
}

func (g *Game) startLevel(ctx context.Context, idx int) error {
	if _, ok := g.data.Level(idx); !ok {
		return errNoLevel(idx)
	}

	reg := g.manager.Registry()
	if _, err := reg.RegisterIfAbsent(scene.Level(idx), g.newLevel(idx), scene.Fresh); err != nil {
		return err
	}

	if _, ok := g.data.Cutscene(idx); ok {
		if _, err := reg.RegisterIfAbsent(scene.Cutscene(idx), g.newCutscene(idx), scene.Fresh); err != nil {
			return err
		}
		if err := g.manager.SwitchTo(ctx, scene.Loading, scene.Context{LevelIndex: idx}); err != nil {
			return err
		}
		return g.manager.SwitchTo(ctx, scene.Cutscene(idx), scene.Context{LevelIndex: idx})
	}

	g.session.CutsceneFinished = true
	if err := g.manager.SwitchTo(ctx, scene.Loading, scene.Context{LevelIndex: idx}); err != nil {
		return err
	}
	return g.LoadLevel(ctx, idx)
}

// FinishCutscene moves from a finished cutscene into its level.
// The loop gate opens only once the level scene is active.
func (g *Game) FinishCutscene(ctx context.Context, index int, musicID string) error {
	if g.session.Player != nil {
		g.session.Player.Completed = false
	}

	if err := g.enterLevel(ctx, index, musicID); err != nil {
		g.log.Errorw("level after cutscene failed", "level", index, "error", err)
		if g.ui != nil {
			g.ui.ShowError("Level failed to load", "Returning to main menu")
		}
		g.fallbackToMainMenu(ctx)
		return err
	}

	if key, ok := g.manager.CurrentKey(); ok && key == scene.Level(index) {
		g.session.CutsceneFinished = true
	}
	g.loop.Start()
	return nil
}

// LoadLevel switches straight to a level scene and starts the loop
func (g *Game) LoadLevel(ctx context.Context, index int) error {
	if err := g.enterLevel(ctx, index, ""); err != nil {
		return err
	}
	g.loop.Start()
	return nil
}

func (g *Game) enterLevel(ctx context.Context, index int, musicID string) error {
	idx := g.clamp(index)
	g.session.CurrentLevel = idx

	if _, err := g.manager.Registry().RegisterIfAbsent(scene.Level(idx), g.newLevel(idx), scene.Fresh); err != nil {
		return err
	}
	if err := g.manager.SwitchTo(ctx, scene.Level(idx), scene.Context{LevelIndex: idx, MusicID: musicID}); err != nil {
		return err
	}

	if g.ui != nil {
		g.ui.ShowGameHUD()
		g.ui.UpdateTimerDisplay(g.timer.Display(), g.timer.InWarning())
	}
	if err := g.EnsureControls(ctx); err != nil {
		g.log.Warnw("controls unavailable", "error", err)
	}
	return nil
}

// ResetCurrentLevel restarts the active level from a clean state.
// A reset requested while one is running is ignored.
func (g *Game) ResetCurrentLevel(ctx context.Context) error {
	if g.session.Resetting {
		g.log.Debugw("reset already in progress")
		return nil
	}
	g.session.Resetting = true
	defer func() { g.session.Resetting = false }()

	if g.metrics != nil {
		g.metrics.LevelReset()
	}

	err := g.resetLevel(ctx, g.session.CurrentLevel)
	if err != nil {
		g.log.Errorw("level reset failed", "level", g.session.CurrentLevel, "error", err)
		if g.ui != nil {
			g.ui.ShowError("Reset failed", "Returning to main menu")
		}
		g.fallbackToMainMenu(ctx)
	}
	return err
}

func (g *Game) resetLevel(ctx context.Context, idx int) error {
	if g.controls != nil {
		g.controls.Cleanup()
	}
	if err := g.manager.SwitchTo(ctx, scene.Loading, scene.Context{LevelIndex: idx}); err != nil {
		return err
	}
	g.session.Paused = false
	_ = g.manager.SafeCleanup(ctx, g.manager.Current())
	g.ResetLevelState()

	if g.controls != nil {
		if err := g.controls.Reinitialize(ctx); err != nil {
			return fmt.Errorf("reinitialize controls: %w", err)
		}
	}
	if g.world != nil {
		if err := g.world.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild world: %w", err)
		}
	}
	if g.ui != nil {
		g.ui.RemoveAllUI()
		g.ui.ShowGameHUD()
	}
	if g.audio != nil {
		g.audio.StopAllSounds()
	}
	return g.LoadLevel(ctx, idx)
}

// HandleLevelCompletion grants the first-clear reward and moves on to the
// next level. Reward failures never block progression.
func (g *Game) HandleLevelCompletion(ctx context.Context) error {
	if g.completing {
		return nil
	}
	g.completing = true
	defer func() { g.completing = false }()

	lvl := g.session.CurrentLevel
	if g.metrics != nil {
		g.metrics.LevelCompleted()
	}
	if g.ui != nil {
		g.ui.ShowMessage("Level complete", fmt.Sprintf("Level %d cleared", lvl+1))
	}

	g.claimReward(ctx, lvl)

	if err := g.finishLevelFlow(ctx); err != nil {
		g.log.Errorw("level flow failed", "level", lvl, "error", err)
		g.fallbackToMainMenu(ctx)
		return err
	}
	return nil
}

func (g *Game) claimReward(ctx context.Context, lvl int) {
	if g.economy == nil || g.profile == nil {
		return
	}
	if g.profile.HasClaimed(lvl) {
		g.log.Infow("reward already claimed", "level", lvl)
		return
	}

	res := g.economy.RewardPlayer(ctx, g.profile.ID, economy.ActionLevelComplete)
	if !res.Value.Granted {
		g.log.Warnw("reward not granted", "level", lvl, "reason", res.Reason)
		return
	}

	g.profile.MarkClaimed(lvl)
	g.profile.AddAchievement(fmt.Sprintf("Level %d Completed", lvl+1))
	g.refreshBalance(ctx)

	amount := res.Value.Amount
	if amount == 0 {
		amount = g.economy.RewardRate(economy.ActionLevelComplete)
	}
	if g.ui != nil {
		g.ui.ShowReward(amount, fmt.Sprintf("Level %d Completed", lvl+1))
	}

	g.profile.Append(profile.Transaction{
		ID:        res.Value.TxID,
		Kind:      profile.TxReward,
		Action:    economy.ActionLevelComplete,
		Level:     lvl,
		Amount:    amount,
		Degraded:  res.Degraded(),
		Timestamp: time.Now(),
	})
	if g.store != nil {
		if err := g.store.SaveProfile(g.profile); err != nil {
			g.log.Warnw("profile save failed", "error", err)
		}
	}
}

func (g *Game) finishLevelFlow(ctx context.Context) error {
	next := g.session.CurrentLevel + 1
	g.UnlockNextLevel()

	if g.session.Player != nil {
		g.session.Player.Completed = false
	}
	g.session.CutsceneFinished = false

	g.manager.Release(ctx)
	g.ResetLevelState()
	if err := g.EnsureControls(ctx); err != nil {
		g.log.Warnw("controls unavailable", "error", err)
	}

	if _, ok := g.data.Level(next); ok && next <= g.maxLevel() {
		return g.StartLevelWithCutscene(ctx, next)
	}

	if g.ui != nil {
		g.ui.ShowGameWonPopup()
		if g.profile != nil {
			g.ui.ShowReward(g.profile.TotalEarned,
				fmt.Sprintf("Game Completed! %d levels", len(g.profile.CompletedLevels())))
		}
	}
	if g.controls != nil {
		g.controls.ReleasePointerLock()
	}
	return g.manager.SwitchTo(ctx, scene.MainMenu, scene.Context{})
}

// UnlockNextLevel opens the level after the current one and persists it
func (g *Game) UnlockNextLevel() {
	next := g.session.CurrentLevel + 1
	if next > g.maxLevel() {
		return
	}
	if next+1 <= g.session.UnlockedLevels {
		return
	}
	g.session.UnlockedLevels = next + 1
	if g.store != nil {
		if err := g.store.SetUnlockedLevels(g.session.UnlockedLevels); err != nil {
			g.log.Warnw("unlock not persisted", "unlocked", g.session.UnlockedLevels, "error", err)
		}
	}
}

// ResetProgress locks every level but the first
func (g *Game) ResetProgress() error {
	g.session.UnlockedLevels = 1
	if g.store == nil {
		return nil
	}
	if err := g.store.SetUnlockedLevels(1); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// ShowLevelMenu opens level selection
func (g *Game) ShowLevelMenu(ctx context.Context) error {
	return g.Navigate(ctx, scene.LevelMenu)
}

// EnsureControls clears stale input, reinitializes the controller and, when
// not paused, asks for pointer lock. A refused lock is not an error.
func (g *Game) EnsureControls(ctx context.Context) error {
	g.session.Input.Clear()
	if g.controls == nil {
		return nil
	}
	if err := g.controls.Reinitialize(ctx); err != nil {
		return err
	}
	g.controls.SetControlsEnabled(!g.session.Paused)
	if !g.session.Paused {
		if err := g.controls.RequestPointerLock(); err != nil {
			g.log.Debugw("pointer lock refused", "error", err)
		}
	}
	return nil
}

// TogglePause freezes or resumes the timer, controls, audio and loop together
func (g *Game) TogglePause() {
	g.session.Paused = !g.session.Paused
	paused := g.session.Paused

	if paused {
		g.timer.Deactivate()
	} else if !g.timer.Expired() {
		g.timer.Activate()
	}

	if g.controls != nil {
		g.controls.SetControlsEnabled(!paused)
		if paused {
			g.controls.ReleasePointerLock()
		} else if err := g.controls.RequestPointerLock(); err != nil {
			g.log.Debugw("pointer lock refused", "error", err)
		}
	}
	if g.audio != nil {
		if paused {
			g.audio.PauseMusic()
		} else {
			g.audio.ResumeMusic()
		}
	}
	if g.ui != nil {
		if paused {
			g.ui.ShowPauseMenu()
		} else {
			g.ui.HidePauseMenu()
		}
	}

	if paused {
		g.loop.Pause()
	} else {
		g.loop.Resume()
	}
}

// HandleGameOver stops play and offers a restart
func (g *Game) HandleGameOver() {
	g.timer.Deactivate()
	if g.controls != nil {
		g.controls.SetControlsEnabled(false)
		g.controls.ReleasePointerLock()
	}
	if g.audio != nil {
		g.audio.Play(CueGameOver, 0.8, false)
	}
	if g.ui == nil {
		g.restart()
		return
	}
	g.ui.ShowGameOverPopup(g.restart)
}

func (g *Game) handleTimeExpired() {
	g.timer.Deactivate()
	if g.audio != nil {
		g.audio.Play(CueTimeout, 0.7, false)
	}
	if g.ui == nil {
		g.restart()
		return
	}
	g.ui.ShowTimeExpiredMessage(g.restart)
}

func (g *Game) restart() {
	if err := g.ResetCurrentLevel(g.ctx); err != nil {
		g.log.Errorw("restart failed", "error", err)
	}
}

package platform

import (
	"context"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/hollowhouse/internal/domain/entity"
)

func newTestControls(keys *fakeKeys) (*Controls, *[]ebiten.CursorModeType) {
	var modes []ebiten.CursorModeType
	c := NewControls(keys, nil)
	c.SetCursorMode = func(m ebiten.CursorModeType) { modes = append(modes, m) }
	return c, &modes
}

func TestControls_PollBeforeInitIsNoop(t *testing.T) {
	keys := newFakeKeys()
	keys.held[ebiten.KeyW] = true
	keys.just[ebiten.KeyEscape] = true
	c, _ := newTestControls(keys)

	var in entity.InputFlags
	assert.False(t, c.Poll(&in))
	assert.False(t, in.Any())
}

func TestControls_PollMapsKeys(t *testing.T) {
	keys := newFakeKeys()
	keys.held[ebiten.KeyW] = true
	keys.held[ebiten.KeyArrowLeft] = true
	keys.held[ebiten.KeySpace] = true
	c, _ := newTestControls(keys)
	require.NoError(t, c.Reinitialize(context.Background()))

	var in entity.InputFlags
	pause := c.Poll(&in)

	assert.False(t, pause)
	assert.True(t, in.MoveForward)
	assert.True(t, in.MoveLeft)
	assert.True(t, in.Firing)
	assert.False(t, in.MoveBackward)
	assert.False(t, in.Reloading)
}

func TestControls_DisabledClearsInputButReportsPause(t *testing.T) {
	keys := newFakeKeys()
	keys.held[ebiten.KeyW] = true
	keys.just[ebiten.KeyP] = true
	c, _ := newTestControls(keys)
	require.NoError(t, c.Reinitialize(context.Background()))
	c.SetControlsEnabled(false)

	in := entity.InputFlags{MoveRight: true}
	assert.True(t, c.Poll(&in))
	assert.False(t, in.Any())
	assert.False(t, c.Enabled())
}

func TestControls_PointerLock(t *testing.T) {
	c, modes := newTestControls(newFakeKeys())

	assert.ErrorIs(t, c.RequestPointerLock(), ErrControlsNotReady)
	assert.Empty(t, *modes)

	require.NoError(t, c.Reinitialize(context.Background()))
	require.NoError(t, c.RequestPointerLock())
	assert.True(t, c.Locked())

	c.ReleasePointerLock()
	c.ReleasePointerLock()
	assert.False(t, c.Locked())
	assert.Equal(t, []ebiten.CursorModeType{ebiten.CursorModeCaptured, ebiten.CursorModeVisible}, *modes)
}

func TestControls_CleanupReleases(t *testing.T) {
	c, modes := newTestControls(newFakeKeys())
	require.NoError(t, c.Reinitialize(context.Background()))
	require.NoError(t, c.RequestPointerLock())

	c.Cleanup()

	assert.False(t, c.Locked())
	assert.False(t, c.Enabled())
	assert.Len(t, *modes, 2)
	assert.ErrorIs(t, c.RequestPointerLock(), ErrControlsNotReady)
}

func TestControls_ReinitializeHonoursContext(t *testing.T) {
	c, _ := newTestControls(newFakeKeys())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Reinitialize(ctx), context.Canceled)
}

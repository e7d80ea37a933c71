package platform

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/younwookim/hollowhouse/internal/application/economy"
	"github.com/younwookim/hollowhouse/internal/application/scene"
)

// ToastSeconds is how long a toast stays on screen
const ToastSeconds = 3.0

var (
	colorDim     = color.RGBA{0, 0, 0, 150}
	colorModal   = color.RGBA{40, 10, 10, 230}
	colorWarning = color.RGBA{200, 40, 40, 255}
)

type modal struct {
	title     string
	text      string
	onConfirm func()
}

type toast struct {
	title string
	text  string
	ttl   float64
}

// Overlay is the in-game UI: HUD, pause menu, blocking messages and toasts
type Overlay struct {
	screenW, screenH int

	hud     bool
	paused  bool
	won     bool
	seconds int
	warning bool

	balance    economy.Balance
	hasBalance bool

	modals []modal
	toasts []toast
}

// NewOverlay creates an empty overlay
func NewOverlay(screenW, screenH int) *Overlay {
	return &Overlay{screenW: screenW, screenH: screenH}
}

// ShowPauseMenu draws the pause menu until HidePauseMenu
func (o *Overlay) ShowPauseMenu() { o.paused = true }

// HidePauseMenu removes the pause menu
func (o *Overlay) HidePauseMenu() { o.paused = false }

// ShowGameHUD turns on the countdown and balance HUD
func (o *Overlay) ShowGameHUD() { o.hud = true }

// ShowGameWonPopup queues the end-of-game message
func (o *Overlay) ShowGameWonPopup() {
	o.won = true
	o.push("You escaped", "Every level is complete.", nil)
}

// PauseMenuVisible reports whether the pause menu is shown
func (o *Overlay) PauseMenuVisible() bool { return o.paused }

// HUDVisible reports whether the gameplay HUD is shown
func (o *Overlay) HUDVisible() bool { return o.hud }

// ShowTimeExpiredMessage blocks until confirmed, then calls onConfirm
func (o *Overlay) ShowTimeExpiredMessage(onConfirm func()) {
	o.push("Time's up", "The house has claimed you. Press Enter to try again.", onConfirm)
}

// ShowGameOverPopup blocks until confirmed, then calls onRestart
func (o *Overlay) ShowGameOverPopup(onRestart func()) {
	o.push("You died", "Press Enter to restart the level.", onRestart)
}

// UpdateTimerDisplay sets the HUD countdown
func (o *Overlay) UpdateTimerDisplay(seconds int, warning bool) {
	o.seconds = seconds
	o.warning = warning
}

// TimerDisplay returns the HUD countdown
func (o *Overlay) TimerDisplay() (seconds int, warning bool) {
	return o.seconds, o.warning
}

// ShowError shows a short-lived error toast
func (o *Overlay) ShowError(title, msg string) { o.toast("Error: "+title, msg) }

// ShowMessage shows a short-lived toast
func (o *Overlay) ShowMessage(title, msg string) { o.toast(title, msg) }

// ShowReward announces a granted reward
func (o *Overlay) ShowReward(sats int64, label string) {
	o.toast(fmt.Sprintf("+%d sats", sats), label)
}

// UpdateBalance sets the HUD balance
func (o *Overlay) UpdateBalance(b economy.Balance) {
	o.balance = b
	o.hasBalance = true
}

// RemoveAllUI clears every widget
func (o *Overlay) RemoveAllUI() {
	*o = Overlay{screenW: o.screenW, screenH: o.screenH}
}

// Blocking reports whether a message is waiting for confirmation
func (o *Overlay) Blocking() bool {
	return len(o.modals) > 0
}

// Toasts returns the titles of the visible toasts
func (o *Overlay) Toasts() []string {
	out := make([]string, 0, len(o.toasts))
	for _, t := range o.toasts {
		out = append(out, t.title)
	}
	return out
}

// Confirm dismisses the front message and runs its callback.
// It returns false when nothing was waiting.
func (o *Overlay) Confirm() bool {
	if len(o.modals) == 0 {
		return false
	}
	m := o.modals[0]
	o.modals = o.modals[1:]
	if m.onConfirm != nil {
		m.onConfirm()
	}
	return true
}

// HandleInput confirms the front message on Enter or Space
func (o *Overlay) HandleInput(keys scene.Keys) {
	if o.Blocking() && scene.AnyJustPressed(keys, ebiten.KeyEnter, ebiten.KeySpace) {
		o.Confirm()
	}
}

// Update ages toasts by dt seconds
func (o *Overlay) Update(dt float64) {
	live := o.toasts[:0]
	for _, t := range o.toasts {
		t.ttl -= dt
		if t.ttl > 0 {
			live = append(live, t)
		}
	}
	o.toasts = live
}

// Draw paints the overlay above the scene
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.hud {
		o.drawHUD(screen)
	}
	for i, t := range o.toasts {
		ebitenutil.DebugPrintAt(screen, t.title+": "+t.text, 8, o.screenH-20-14*i)
	}
	if o.paused {
		vector.DrawFilledRect(screen, 0, 0, float32(o.screenW), float32(o.screenH), colorDim, false)
		ebitenutil.DebugPrintAt(screen, "PAUSED\n\nPress ESC to resume", o.screenW/2-50, o.screenH/2-20)
	}
	if len(o.modals) > 0 {
		m := o.modals[0]
		vector.DrawFilledRect(screen, 20, float32(o.screenH/2-40), float32(o.screenW-40), 80, colorModal, false)
		ebitenutil.DebugPrintAt(screen, m.title+"\n\n"+m.text, 30, o.screenH/2-30)
	}
}

func (o *Overlay) drawHUD(screen *ebiten.Image) {
	timer := fmt.Sprintf("%02d:%02d", o.seconds/60, o.seconds%60)
	if o.warning {
		vector.DrawFilledRect(screen, float32(o.screenW-64), 4, 56, 16, colorWarning, false)
	}
	ebitenutil.DebugPrintAt(screen, timer, o.screenW-56, 4)
	if o.hasBalance {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d sats", o.balance.Total), 8, 4)
	}
}

func (o *Overlay) push(title, text string, onConfirm func()) {
	o.modals = append(o.modals, modal{title: title, text: text, onConfirm: onConfirm})
}

func (o *Overlay) toast(title, text string) {
	o.toasts = append(o.toasts, toast{title: title, text: text, ttl: ToastSeconds})
}

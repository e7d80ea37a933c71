// Package cutscene plays the dialogue shown before a level.
//
// Lines are revealed with a typewriter effect. Enter or Space finishes the
// current line or advances to the next; Escape skips the whole cutscene.
// When the last line is dismissed OnFinish hands control back to the game.
package cutscene

import (
	"context"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
)

// Typewriter timing
const (
	CharDelay  = 0.03
	TickVolume = 0.4
	TickCue    = "tick"
)

var colorTextBox = color.RGBA{0, 0, 0, 160}

// Sounds is the audio used by a cutscene
type Sounds interface {
	Play(id string, volume float64, loop bool)
}

// Cutscene is the dialogue scene for one level
type Cutscene struct {
	data  config.CutsceneConfig
	keys  scene.Keys
	sound Sounds
	log   *zap.SugaredLogger

	// OnFinish is called once the dialogue ends or is skipped.
	// musicID is the last music cue, handed on to the level.
	OnFinish func(ctx context.Context, musicID string) error

	// FrameDelta is the seconds counted per HandleInput call
	FrameDelta float64

	line       int
	text       []rune
	shown      int
	typing     bool
	acc        float64
	background string
	portrait   string
	musicID    string
	finishing  bool
	done       bool
}

// New creates a cutscene for data. sound may be nil.
func New(data config.CutsceneConfig, keys scene.Keys, sound Sounds, log *zap.SugaredLogger) *Cutscene {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cutscene{
		data:       data,
		keys:       keys,
		sound:      sound,
		log:        log,
		FrameDelta: 1.0 / 60.0,
	}
}

// Enter resets the dialogue and shows the first line
func (c *Cutscene) Enter(ctx context.Context, sc scene.Context) error {
	c.line = 0
	c.text = nil
	c.shown = 0
	c.typing = false
	c.acc = 0
	c.background = c.data.Background
	c.portrait = ""
	c.musicID = sc.MusicID
	c.finishing = false
	c.done = false
	if len(c.data.Dialogue) == 0 {
		return nil
	}
	return c.next(ctx)
}

// HandleInput reads the keys and advances the typewriter by one frame
func (c *Cutscene) HandleInput(ctx context.Context) error {
	if c.done {
		return nil
	}
	if len(c.data.Dialogue) == 0 {
		return c.finish(ctx)
	}
	if c.keys.JustPressed(ebiten.KeyEscape) {
		return c.Skip(ctx)
	}
	if scene.AnyJustPressed(c.keys, ebiten.KeyEnter, ebiten.KeySpace) {
		if err := c.Advance(ctx); err != nil || c.done {
			return err
		}
	}
	c.Tick(c.FrameDelta)
	return nil
}

// Advance completes the line being typed, or moves to the next line
func (c *Cutscene) Advance(ctx context.Context) error {
	if c.typing {
		c.FinishTyping()
		return nil
	}
	return c.next(ctx)
}

// Skip ends the cutscene immediately
func (c *Cutscene) Skip(ctx context.Context) error {
	return c.finish(ctx)
}

// FinishTyping reveals the rest of the current line
func (c *Cutscene) FinishTyping() {
	c.shown = len(c.text)
	c.typing = false
	c.acc = 0
}

// Tick reveals characters for dt seconds, with a tick cue every second one
func (c *Cutscene) Tick(dt float64) {
	if !c.typing {
		return
	}
	c.acc += dt
	for c.acc >= CharDelay && c.shown < len(c.text) {
		c.acc -= CharDelay
		c.shown++
		if c.shown%2 == 0 && c.sound != nil {
			c.sound.Play(TickCue, TickVolume, false)
		}
	}
	if c.shown >= len(c.text) {
		c.typing = false
	}
}

// Typing reports whether a line is still being revealed
func (c *Cutscene) Typing() bool {
	return c.typing
}

// Visible returns the revealed part of the current line
func (c *Cutscene) Visible() string {
	return string(c.text[:c.shown])
}

// MusicID returns the current music cue
func (c *Cutscene) MusicID() string {
	return c.musicID
}

// Done reports whether OnFinish has completed
func (c *Cutscene) Done() bool {
	return c.done
}

// Exit stops the typewriter
func (c *Cutscene) Exit(_ context.Context) error {
	c.typing = false
	return nil
}

func (c *Cutscene) next(ctx context.Context) error {
	if c.line >= len(c.data.Dialogue) {
		return c.finish(ctx)
	}
	l := c.data.Dialogue[c.line]
	c.line++

	if l.Background != "" {
		c.background = l.Background
	}
	c.portrait = l.Portrait

	if c.sound != nil {
		if l.Voice != "" {
			c.sound.Play(l.Voice, 1, false)
		}
		if l.MusicCue != "" && l.MusicCue != c.musicID {
			c.sound.Play(l.MusicCue, 0.5, true)
			c.musicID = l.MusicCue
		}
	}

	c.text = []rune(l.Text)
	c.shown = 0
	c.acc = 0
	c.typing = len(c.text) > 0
	return nil
}

func (c *Cutscene) finish(ctx context.Context) error {
	if c.finishing || c.done {
		return nil
	}
	c.finishing = true
	defer func() { c.finishing = false }()

	c.typing = false
	c.log.Debugw("cutscene finished", "id", c.data.ID, "lines", c.line)
	if c.OnFinish != nil {
		if err := c.OnFinish(ctx, c.musicID); err != nil {
			return err
		}
	}
	c.done = true
	return nil
}

// Draw renders the background, the portrait and the revealed dialogue
func (c *Cutscene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()

	if c.background != "" {
		ebitenutil.DebugPrintAt(screen, "["+c.background+"]", 8, 8)
	}
	ebitenutil.DebugPrintAt(screen, "Skip: ESC", w-64, 8)

	box := float32(h) * 0.3
	vector.DrawFilledRect(screen, 16, float32(h)-box-16, float32(w-32), box, colorTextBox, false)

	var b strings.Builder
	if c.portrait != "" {
		b.WriteString("(" + c.portrait + ")\n")
	}
	b.WriteString(c.Visible())
	ebitenutil.DebugPrintAt(screen, b.String(), 28, h-int(box)-6)
}

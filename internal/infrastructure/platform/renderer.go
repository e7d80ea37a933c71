package platform

import (
	"errors"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/younwookim/hollowhouse/internal/domain/entity"
	"github.com/younwookim/hollowhouse/internal/domain/world"
)

// ErrRendererDisposed is returned by Render after Dispose
var ErrRendererDisposed = errors.New("renderer disposed")

// Colors for rendering
var (
	colorBG         = color.RGBA{10, 8, 14, 255}
	colorFloor      = color.RGBA{34, 28, 30, 255}
	colorWall       = color.RGBA{80, 70, 76, 255}
	colorPlayer     = color.RGBA{190, 200, 170, 255}
	colorSpider     = color.RGBA{150, 40, 40, 255}
	colorRake       = color.RGBA{220, 220, 230, 255}
	colorProjectile = color.RGBA{255, 210, 120, 255}
	colorDecal      = color.RGBA{20, 16, 18, 255}
)

// Renderer keeps the latest world view and draws it on the Ebitengine screen
type Renderer struct {
	screenW, screenH int

	view     world.View
	hasView  bool
	disposed bool
	frames   int
}

// NewRenderer creates a renderer for a logical screen size
func NewRenderer(screenW, screenH int) *Renderer {
	return &Renderer{screenW: screenW, screenH: screenH}
}

// Render captures view for the next Draw
func (r *Renderer) Render(view world.View) error {
	if r.disposed {
		return ErrRendererDisposed
	}
	if view.Width <= 0 || view.Height <= 0 {
		return errors.New("render: world has no bounds")
	}
	r.view = view
	r.hasView = true
	r.frames++
	return nil
}

// Frames returns the number of views rendered
func (r *Renderer) Frames() int {
	return r.frames
}

// Dispose drops the captured view; later renders fail
func (r *Renderer) Dispose() {
	r.disposed = true
	r.hasView = false
	r.view = world.View{}
}

// Reset makes a disposed renderer usable again
func (r *Renderer) Reset() {
	r.disposed = false
}

// Draw blits the captured view. It draws nothing before the first Render.
func (r *Renderer) Draw(screen *ebiten.Image) {
	if !r.hasView {
		return
	}
	screen.Fill(colorBG)

	v := r.view
	scale, ox, oy := fit(v.Width, v.Height, float64(r.screenW), float64(r.screenH))
	px := func(x float64) float32 { return float32(ox + x*scale) }
	py := func(y float64) float32 { return float32(oy + y*scale) }
	sz := func(s float64) float32 { return float32(s * scale) }

	vector.DrawFilledRect(screen, px(0), py(0), sz(v.Width), sz(v.Height), colorFloor, false)
	for _, w := range v.Walls {
		vector.DrawFilledRect(screen, px(w.X), py(w.Y), sz(w.W), sz(w.H), colorWall, false)
	}
	for _, d := range v.Decals {
		vector.DrawFilledCircle(screen, px(d.X), py(d.Y), 1.5, colorDecal, true)
	}
	for _, e := range v.Enemies {
		c, radius := colorSpider, 6.0
		if e.Kind == entity.EnemyRake {
			c, radius = colorRake, 10.0
		}
		vector.DrawFilledCircle(screen, px(e.X), py(e.Y), sz(radius), c, true)
	}
	for _, p := range v.Projectiles {
		vector.DrawFilledRect(screen, px(p.X)-1, py(p.Y)-1, 2, 2, colorProjectile, false)
	}

	// Player with a facing line
	vector.DrawFilledCircle(screen, px(v.PlayerX), py(v.PlayerY), sz(5), colorPlayer, true)
	fx := v.PlayerX + math.Cos(v.PlayerAngle)*12
	fy := v.PlayerY + math.Sin(v.PlayerAngle)*12
	vector.StrokeLine(screen, px(v.PlayerX), py(v.PlayerY), px(fx), py(fy), 1, colorPlayer, true)
}

// fit scales a w x h world into a sw x sh screen, centred
func fit(w, h, sw, sh float64) (scale, ox, oy float64) {
	if w <= 0 || h <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(sw/w, sh/h)
	ox = (sw - w*scale) / 2
	oy = (sh - h*scale) / 2
	return scale, ox, oy
}

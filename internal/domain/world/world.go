// Package world owns the static building graph that each level is played in.
// The building prefab is cloned on every rebuild so a level never sees state
// left behind by a previous run.
package world

import (
	"context"
	"fmt"

	"github.com/younwookim/hollowhouse/internal/domain/entity"
)

// Rect is an axis-aligned wall segment in world units
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether a point lies inside the rect
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Prefab is the static building layout shared by every level
type Prefab struct {
	Width, Height float64
	Walls         []Rect
	Assets        []string // Asset names that must be warm before a rebuild
}

// Clone returns a deep copy of the prefab
func (p Prefab) Clone() Prefab {
	out := p
	out.Walls = append([]Rect(nil), p.Walls...)
	out.Assets = append([]string(nil), p.Assets...)
	return out
}

// Graph is the live scene graph of one level run
type Graph struct {
	Prefab
	Generation int
}

// Blocked reports whether a point is outside the building or inside a wall
func (g *Graph) Blocked(x, y float64) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return true
	}
	for _, w := range g.Walls {
		if w.Contains(x, y) {
			return true
		}
	}
	return false
}

// View is a render snapshot of the world
type View struct {
	Width, Height float64
	Walls         []Rect
	PlayerX       float64
	PlayerY       float64
	PlayerAngle   float64
	Enemies       []entity.Enemy
	Projectiles   []entity.Projectile
	Decals        []entity.Decal
}

// World rebuilds the graph from the prefab and exposes render views
type World struct {
	prefab Prefab
	assets *AssetCache
	graph  *Graph

	player   *entity.Player
	counters *entity.LevelCounters
}

// New creates a world for the given prefab and asset cache
func New(prefab Prefab, assets *AssetCache) *World {
	return &World{prefab: prefab, assets: assets}
}

// Bind attaches the player and level counters that appear in views
func (w *World) Bind(player *entity.Player, counters *entity.LevelCounters) {
	w.player = player
	w.counters = counters
}

// Rebuild re-warms any evicted assets and clones a fresh graph
func (w *World) Rebuild(ctx context.Context) error {
	if w.assets != nil {
		if err := w.assets.Warm(ctx, w.prefab.Assets...); err != nil {
			return fmt.Errorf("rebuild world: %w", err)
		}
	}

	gen := 1
	if w.graph != nil {
		gen = w.graph.Generation + 1
	}
	w.graph = &Graph{Prefab: w.prefab.Clone(), Generation: gen}
	return nil
}

// Graph returns the live graph, nil before the first rebuild
func (w *World) Graph() *Graph {
	return w.graph
}

// View snapshots the current graph and bound entities
func (w *World) View() View {
	var v View
	if w.graph != nil {
		v.Width = w.graph.Width
		v.Height = w.graph.Height
		v.Walls = w.graph.Walls
	}
	if w.player != nil {
		v.PlayerX = w.player.X
		v.PlayerY = w.player.Y
		v.PlayerAngle = w.player.Angle
	}
	if w.counters != nil {
		for _, e := range w.counters.Enemies {
			if e.Active {
				v.Enemies = append(v.Enemies, *e)
			}
		}
		for _, p := range w.counters.Projectiles {
			if p.Active {
				v.Projectiles = append(v.Projectiles, *p)
			}
		}
		v.Decals = append(v.Decals, w.counters.Decals...)
	}
	return v
}

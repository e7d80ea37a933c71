package entity

import "math"

// Projectile is a bullet in flight
type Projectile struct {
	X, Y   float64
	VX, VY float64
	Life   float64 // Seconds left before it expires
	Damage int
	Active bool
}

// NewBullet creates a bullet travelling along angle
func NewBullet(x, y, angle, speed, life float64, damage int) *Projectile {
	return &Projectile{
		X:      x,
		Y:      y,
		VX:     math.Cos(angle) * speed,
		VY:     math.Sin(angle) * speed,
		Life:   life,
		Damage: damage,
		Active: true,
	}
}

// Step advances the projectile and deactivates it when its life runs out
func (p *Projectile) Step(dt float64) {
	if !p.Active {
		return
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= dt
	if p.Life <= 0 {
		p.Active = false
	}
}

// Decal marks where a bullet struck
type Decal struct {
	X, Y float64
}

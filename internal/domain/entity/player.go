package entity

import "math"

// Player represents the first-person player
type Player struct {
	X, Y  float64
	Angle float64 // Facing, radians

	Health    int
	MaxHealth int
	Ammo      int
	MaxAmmo   int

	// Completed is set when the level goal has been reached
	Completed bool

	spawnX, spawnY float64
}

// NewPlayer creates a player at the given spawn point
func NewPlayer(x, y float64, maxHealth, maxAmmo int) *Player {
	p := &Player{
		MaxHealth: maxHealth,
		MaxAmmo:   maxAmmo,
		spawnX:    x,
		spawnY:    y,
	}
	p.Reset()
	return p
}

// Reset restores the player to its spawn state
func (p *Player) Reset() {
	p.X = p.spawnX
	p.Y = p.spawnY
	p.Angle = 0
	p.Health = p.MaxHealth
	p.Ammo = p.MaxAmmo
	p.Completed = false
}

// SetSpawn moves the spawn point used by Reset
func (p *Player) SetSpawn(x, y float64) {
	p.spawnX = x
	p.spawnY = y
}

// Alive reports whether the player has health left
func (p *Player) Alive() bool {
	return p.Health > 0
}

// TakeDamage applies damage and returns true if the player died
func (p *Player) TakeDamage(amount int) bool {
	if amount <= 0 || !p.Alive() {
		return !p.Alive()
	}
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	return p.Health == 0
}

// Move applies the held movement inputs for dt seconds.
// Left/right turn the player; forward/backward walk along the facing.
func (p *Player) Move(in InputFlags, speed, turnRate, dt float64) {
	if in.MoveLeft {
		p.Angle -= turnRate * dt
	}
	if in.MoveRight {
		p.Angle += turnRate * dt
	}

	step := 0.0
	if in.MoveForward {
		step += speed * dt
	}
	if in.MoveBackward {
		step -= speed * dt
	}
	p.X += math.Cos(p.Angle) * step
	p.Y += math.Sin(p.Angle) * step
}

// Fire spends one round and returns false when the magazine is empty
func (p *Player) Fire() bool {
	if p.Ammo <= 0 {
		return false
	}
	p.Ammo--
	return true
}

// Reload refills the magazine
func (p *Player) Reload() {
	p.Ammo = p.MaxAmmo
}

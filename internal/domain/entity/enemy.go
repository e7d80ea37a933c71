package entity

import "math"

// Enemy represents a hostile creature in a level
type Enemy struct {
	ID     EntityID
	Kind   EnemyKind
	X, Y   float64
	Active bool

	Health      int
	Speed       float64
	Damage      int
	Reach       float64
	Cooldown    float64
	AttackTimer float64
}

// NewEnemy creates an enemy with the stats of its kind
func NewEnemy(id EntityID, kind EnemyKind, x, y float64) *Enemy {
	e := &Enemy{
		ID:     id,
		Kind:   kind,
		X:      x,
		Y:      y,
		Active: true,
	}

	switch kind {
	case EnemyRake:
		e.Health = 5
		e.Speed = 70
		e.Damage = 20
		e.Reach = 14
		e.Cooldown = 1.2
	default:
		e.Health = 1
		e.Speed = 40
		e.Damage = 5
		e.Reach = 8
		e.Cooldown = 0.8
	}

	return e
}

// Step moves the enemy toward the target and returns the damage dealt this step
func (e *Enemy) Step(tx, ty, dt float64) int {
	if !e.Active {
		return 0
	}
	if e.AttackTimer > 0 {
		e.AttackTimer -= dt
	}

	dx := tx - e.X
	dy := ty - e.Y
	dist := math.Hypot(dx, dy)

	if dist <= e.Reach {
		if e.AttackTimer <= 0 {
			e.AttackTimer = e.Cooldown
			return e.Damage
		}
		return 0
	}

	move := e.Speed * dt
	if move > dist-e.Reach {
		move = dist - e.Reach
	}
	e.X += dx / dist * move
	e.Y += dy / dist * move
	return 0
}

// Hit applies damage and returns true if the enemy was killed by it
func (e *Enemy) Hit(damage int) bool {
	if !e.Active {
		return false
	}
	e.Health -= damage
	if e.Health <= 0 {
		e.Health = 0
		e.Active = false
		return true
	}
	return false
}

// Contains reports whether a point lies within the enemy's body
func (e *Enemy) Contains(x, y float64) bool {
	radius := 6.0
	if e.Kind == EnemyRake {
		radius = 10
	}
	return math.Hypot(x-e.X, y-e.Y) <= radius
}

package entity

// MaxDecals caps the number of bullet holes kept per level
const MaxDecals = 64

// LevelCounters holds the per-level derived state that is rebuilt on every (re)start
type LevelCounters struct {
	TotalEnemies  int
	KilledEnemies int
	Enemies       []*Enemy
	Projectiles   []*Projectile
	Decals        []Decal

	nextID EntityID
}

// Reset clears all counters and lists
func (c *LevelCounters) Reset() {
	*c = LevelCounters{}
}

// Spawn adds an enemy and counts it toward the level total
func (c *LevelCounters) Spawn(kind EnemyKind, x, y float64) *Enemy {
	c.nextID++
	e := NewEnemy(c.nextID, kind, x, y)
	c.Enemies = append(c.Enemies, e)
	c.TotalEnemies++
	return e
}

// RecordKill counts one killed enemy
func (c *LevelCounters) RecordKill() {
	if c.KilledEnemies < c.TotalEnemies {
		c.KilledEnemies++
	}
}

// Remaining returns the number of enemies still alive
func (c *LevelCounters) Remaining() int {
	return c.TotalEnemies - c.KilledEnemies
}

// Cleared reports whether every spawned enemy has been killed
func (c *LevelCounters) Cleared() bool {
	return c.TotalEnemies > 0 && c.KilledEnemies >= c.TotalEnemies
}

// AddDecal records a bullet hole, dropping the oldest past MaxDecals
func (c *LevelCounters) AddDecal(x, y float64) {
	c.Decals = append(c.Decals, Decal{X: x, Y: y})
	if len(c.Decals) > MaxDecals {
		c.Decals = c.Decals[len(c.Decals)-MaxDecals:]
	}
}

// Fire adds a projectile to the level
func (c *LevelCounters) Fire(p *Projectile) {
	c.Projectiles = append(c.Projectiles, p)
}

// Sweep drops inactive projectiles
func (c *LevelCounters) Sweep() {
	live := c.Projectiles[:0]
	for _, p := range c.Projectiles {
		if p.Active {
			live = append(live, p)
		}
	}
	c.Projectiles = live
}

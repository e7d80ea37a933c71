package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelCounters_SpawnAndKill(t *testing.T) {
	var c LevelCounters

	a := c.Spawn(EnemySpider, 0, 0)
	b := c.Spawn(EnemyRake, 10, 10)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, c.TotalEnemies)
	assert.False(t, c.Cleared())

	c.RecordKill()
	assert.Equal(t, 1, c.Remaining())

	c.RecordKill()
	c.RecordKill()
	assert.Equal(t, 2, c.KilledEnemies)
	assert.True(t, c.Cleared())
}

func TestLevelCounters_EmptyIsNotCleared(t *testing.T) {
	var c LevelCounters
	assert.False(t, c.Cleared())
}

func TestLevelCounters_Reset(t *testing.T) {
	var c LevelCounters
	c.Spawn(EnemySpider, 0, 0)
	c.RecordKill()
	c.Fire(NewBullet(0, 0, 0, 100, 1, 1))
	c.AddDecal(1, 1)

	c.Reset()

	assert.Equal(t, 0, c.TotalEnemies)
	assert.Equal(t, 0, c.KilledEnemies)
	assert.Empty(t, c.Enemies)
	assert.Empty(t, c.Projectiles)
	assert.Empty(t, c.Decals)
}

func TestLevelCounters_DecalCap(t *testing.T) {
	var c LevelCounters
	for i := 0; i < MaxDecals+10; i++ {
		c.AddDecal(float64(i), 0)
	}

	assert.Len(t, c.Decals, MaxDecals)
	assert.Equal(t, 10.0, c.Decals[0].X)
}

func TestLevelCounters_Sweep(t *testing.T) {
	var c LevelCounters
	live := NewBullet(0, 0, 0, 100, 1, 1)
	dead := NewBullet(0, 0, 0, 100, 0.1, 1)
	c.Fire(live)
	c.Fire(dead)

	for _, p := range c.Projectiles {
		p.Step(0.2)
	}
	c.Sweep()

	assert.Len(t, c.Projectiles, 1)
	assert.Same(t, live, c.Projectiles[0])
}

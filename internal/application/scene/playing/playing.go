// Package playing provides the playable level scene.
package playing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/application/scene"
	"github.com/younwookim/hollowhouse/internal/application/state"
	"github.com/younwookim/hollowhouse/internal/domain/entity"
	"github.com/younwookim/hollowhouse/internal/domain/world"
	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
)

// Default player and weapon tuning, used when level data leaves a field zero
const (
	DefaultMaxHealth   = 100
	DefaultMaxAmmo     = 12
	DefaultSpeed       = 80.0
	DefaultTurnRate    = 3.0
	DefaultBulletSpeed = 400.0
	DefaultBulletLife  = 0.8
	DefaultDamage      = 1
	DefaultCooldown    = 0.25
)

// Sound cues
const (
	CueGunshot = "gunshot"
	CueEmpty   = "dry_fire"
	CueHurt    = "player_hurt"
	CueReload  = "reload"
)

// Sounds is the audio used by the level
type Sounds interface {
	Play(id string, volume float64, loop bool)
}

// World is the scene graph the level plays in
type World interface {
	Bind(player *entity.Player, counters *entity.LevelCounters)
	Graph() *world.Graph
}

// Playing is the dynamic level scene
type Playing struct {
	index   int
	cfg     config.LevelConfig
	session *state.Session
	world   World
	sound   Sounds
	log     *zap.SugaredLogger

	// OnComplete is called once when every enemy is dead
	OnComplete func()
	// OnGameOver is called once when the player dies
	OnGameOver func()

	fireCooldown float64
	finished     bool
	cleaned      bool
}

// New creates the scene for one level. w and sound may be nil.
func New(index int, cfg config.LevelConfig, session *state.Session, w World, sound Sounds, log *zap.SugaredLogger) *Playing {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Playing{
		index:   index,
		cfg:     withDefaults(cfg),
		session: session,
		world:   w,
		sound:   sound,
		log:     log,
	}
}

func withDefaults(cfg config.LevelConfig) config.LevelConfig {
	if cfg.Player.MaxHealth <= 0 {
		cfg.Player.MaxHealth = DefaultMaxHealth
	}
	if cfg.Player.MaxAmmo <= 0 {
		cfg.Player.MaxAmmo = DefaultMaxAmmo
	}
	if cfg.Player.Speed <= 0 {
		cfg.Player.Speed = DefaultSpeed
	}
	if cfg.Player.TurnRate <= 0 {
		cfg.Player.TurnRate = DefaultTurnRate
	}
	if cfg.Weapon.BulletSpeed <= 0 {
		cfg.Weapon.BulletSpeed = DefaultBulletSpeed
	}
	if cfg.Weapon.BulletLife <= 0 {
		cfg.Weapon.BulletLife = DefaultBulletLife
	}
	if cfg.Weapon.Damage <= 0 {
		cfg.Weapon.Damage = DefaultDamage
	}
	if cfg.Weapon.Cooldown <= 0 {
		cfg.Weapon.Cooldown = DefaultCooldown
	}
	return cfg
}

// Index returns the level index
func (p *Playing) Index() int {
	return p.index
}

// Enter places the player at the spawn point and spawns the enemies
func (p *Playing) Enter(_ context.Context, sc scene.Context) error {
	s := p.session
	pc := p.cfg.Player

	if s.Player == nil {
		s.Player = entity.NewPlayer(p.cfg.Spawn.X, p.cfg.Spawn.Y, pc.MaxHealth, pc.MaxAmmo)
	} else {
		s.Player.MaxHealth = pc.MaxHealth
		s.Player.MaxAmmo = pc.MaxAmmo
		s.Player.SetSpawn(p.cfg.Spawn.X, p.cfg.Spawn.Y)
		s.Player.Reset()
	}

	s.Counters.Reset()
	for _, spawn := range p.cfg.Enemies {
		kind, ok := entity.ParseEnemyKind(spawn.Kind)
		if !ok {
			return fmt.Errorf("level %d: unknown enemy kind %q", p.index, spawn.Kind)
		}
		s.Counters.Spawn(kind, spawn.X, spawn.Y)
	}
	s.Completed = false

	if p.world != nil {
		p.world.Bind(s.Player, &s.Counters)
	}

	music := sc.MusicID
	if music == "" {
		music = p.cfg.Music
	}
	if p.sound != nil && music != "" {
		p.sound.Play(music, 0.5, true)
	}

	p.fireCooldown = 0
	p.finished = false
	p.cleaned = false
	p.log.Debugw("level entered", "level", p.index, "enemies", s.Counters.TotalEnemies)
	return nil
}

// Update advances the player, bullets and enemies by dt seconds
func (p *Playing) Update(dt float64) error {
	if p.finished || p.cleaned {
		return nil
	}
	s := p.session
	player := s.Player
	if player == nil {
		return fmt.Errorf("level %d: no player", p.index)
	}

	p.movePlayer(dt)
	p.handleWeapon(dt)
	p.updateProjectiles(dt)

	for _, e := range s.Counters.Enemies {
		dmg := e.Step(player.X, player.Y, dt)
		if dmg == 0 {
			continue
		}
		p.play(CueHurt, 0.8)
		if player.TakeDamage(dmg) {
			p.finished = true
			p.log.Infow("player died", "level", p.index, "killed_by", e.Kind.String())
			if p.OnGameOver != nil {
				p.OnGameOver()
			}
			return nil
		}
	}

	if s.Counters.Cleared() {
		p.finished = true
		s.Completed = true
		player.Completed = true
		p.log.Infow("level cleared", "level", p.index)
		if p.OnComplete != nil {
			p.OnComplete()
		}
	}
	return nil
}

func (p *Playing) movePlayer(dt float64) {
	player := p.session.Player
	px, py := player.X, player.Y
	player.Move(p.session.Input, p.cfg.Player.Speed, p.cfg.Player.TurnRate, dt)
	if p.blocked(player.X, player.Y) {
		player.X, player.Y = px, py
	}
}

func (p *Playing) handleWeapon(dt float64) {
	s := p.session
	player := s.Player

	if s.Input.Reloading {
		player.Reload()
		s.Input.Reloading = false
		p.play(CueReload, 0.6)
	}

	if p.fireCooldown > 0 {
		p.fireCooldown -= dt
	}
	if !s.Input.Firing || p.fireCooldown > 0 {
		return
	}
	p.fireCooldown = p.cfg.Weapon.Cooldown

	if !player.Fire() {
		p.play(CueEmpty, 0.5)
		return
	}
	w := p.cfg.Weapon
	s.Counters.Fire(entity.NewBullet(player.X, player.Y, player.Angle, w.BulletSpeed, w.BulletLife, w.Damage))
	p.play(CueGunshot, 0.6)
}

func (p *Playing) updateProjectiles(dt float64) {
	c := &p.session.Counters
	for _, b := range c.Projectiles {
		b.Step(dt)
		if !b.Active {
			continue
		}
		if p.blocked(b.X, b.Y) {
			b.Active = false
			c.AddDecal(b.X, b.Y)
			continue
		}
		for _, e := range c.Enemies {
			if !e.Active || !e.Contains(b.X, b.Y) {
				continue
			}
			b.Active = false
			if e.Hit(b.Damage) {
				c.RecordKill()
				p.play(e.Kind.String()+"_death", 0.7)
			}
			break
		}
	}
	c.Sweep()
}

func (p *Playing) blocked(x, y float64) bool {
	if p.world == nil {
		return false
	}
	g := p.world.Graph()
	return g != nil && g.Blocked(x, y)
}

func (p *Playing) play(id string, volume float64) {
	if p.sound != nil {
		p.sound.Play(id, volume, false)
	}
}

// Cleanup drops the level's enemies and projectiles
func (p *Playing) Cleanup(_ context.Context) error {
	if p.cleaned {
		return nil
	}
	p.cleaned = true
	p.session.Counters.Reset()
	p.session.Input.Clear()
	return nil
}

package config

import "fmt"

// GameData holds every JSON data file the game loads at startup
type GameData struct {
	Levels    []LevelConfig
	Cutscenes []CutsceneConfig
	Building  *BuildingConfig
}

// LevelConfig is one entry of levels.json
type LevelConfig struct {
	Index   int          `json:"index"`
	Name    string       `json:"name"`
	Music   string       `json:"music"`
	Spawn   PointConfig  `json:"spawn"`
	Enemies []EnemySpawn `json:"enemies"`
	Player  PlayerConfig `json:"player"`
	Weapon  WeaponConfig `json:"weapon"`
}

type PointConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type EnemySpawn struct {
	Kind string  `json:"kind"` // "spider" or "rake"
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type PlayerConfig struct {
	MaxHealth int     `json:"maxHealth"`
	MaxAmmo   int     `json:"maxAmmo"`
	Speed     float64 `json:"speed"`    // World units per second
	TurnRate  float64 `json:"turnRate"` // Radians per second
}

type WeaponConfig struct {
	BulletSpeed float64 `json:"bulletSpeed"`
	BulletLife  float64 `json:"bulletLife"` // Seconds
	Damage      int     `json:"damage"`
	Cooldown    float64 `json:"cooldown"` // Seconds between shots
}

// CutsceneConfig is one entry of cutscenes.json
type CutsceneConfig struct {
	ID         string         `json:"id"`
	Background string         `json:"background"`
	Dialogue   []DialogueLine `json:"dialogue"`
}

// DialogueLine is a single line of a cutscene
type DialogueLine struct {
	Text       string `json:"text"`
	Portrait   string `json:"portrait,omitempty"`
	Voice      string `json:"voice,omitempty"`
	MusicCue   string `json:"musicCue,omitempty"`
	Background string `json:"background,omitempty"`
}

// BuildingConfig is the static building prefab in building.json
type BuildingConfig struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Walls  []RectConfig `json:"walls"`
	Assets []string     `json:"assets"`
}

type RectConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Level returns the level with the given index
func (d *GameData) Level(index int) (*LevelConfig, bool) {
	for i := range d.Levels {
		if d.Levels[i].Index == index {
			return &d.Levels[i], true
		}
	}
	return nil, false
}

// Cutscene returns the cutscene for a level index.
// Both "cutscene3" and "cutscene_3" ids match index 3.
func (d *GameData) Cutscene(index int) (*CutsceneConfig, bool) {
	return FindCutscene(d.Cutscenes, index)
}

// FindCutscene searches cutscenes for a level index
func FindCutscene(cutscenes []CutsceneConfig, index int) (*CutsceneConfig, bool) {
	plain := fmt.Sprintf("cutscene%d", index)
	underscored := fmt.Sprintf("cutscene_%d", index)
	for i := range cutscenes {
		if id := cutscenes[i].ID; id == plain || id == underscored {
			return &cutscenes[i], true
		}
	}
	return nil, false
}

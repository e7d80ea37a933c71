package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// Data file names
const (
	LevelsFile    = "levels.json"
	CutscenesFile = "cutscenes.json"
	BuildingFile  = "building.json"
)

// Loader loads game data from JSON files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new data loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new data loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// BasePath returns the directory the loader reads from
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadLevels loads levels.json
func (l *Loader) LoadLevels() ([]LevelConfig, error) {
	var levels []LevelConfig
	if err := l.readJSON(LevelsFile, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// LoadCutscenes loads cutscenes.json
func (l *Loader) LoadCutscenes() ([]CutsceneConfig, error) {
	var cutscenes []CutsceneConfig
	if err := l.readJSON(CutscenesFile, &cutscenes); err != nil {
		return nil, err
	}
	return cutscenes, nil
}

// LoadBuilding loads building.json
func (l *Loader) LoadBuilding() (*BuildingConfig, error) {
	var cfg BuildingConfig
	if err := l.readJSON(BuildingFile, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAll loads all data files.
// A missing or broken cutscenes file is not fatal: levels then start without
// cutscenes, and the returned warning explains why.
func (l *Loader) LoadAll() (data *GameData, warning error, err error) {
	levels, err := l.LoadLevels()
	if err != nil {
		return nil, nil, err
	}

	building, err := l.LoadBuilding()
	if err != nil {
		return nil, nil, err
	}

	cutscenes, cerr := l.LoadCutscenes()
	if cerr != nil {
		cutscenes = nil
	}

	return &GameData{
		Levels:    levels,
		Cutscenes: cutscenes,
		Building:  building,
	}, cerr, nil
}

// ReadFile returns the raw bytes of a data file
func (l *Loader) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (l *Loader) readJSON(name string, v any) error {
	data, err := l.ReadFile(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// Package storage persists game progress and player profiles with gdata.
package storage

import (
	"fmt"
	"strconv"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/younwookim/hollowhouse/internal/domain/profile"
)

const (
	progressObject   = "progress"
	unlockedProperty = "unlocked_levels"
	profileObject    = "profile"
)

// Backend is the object/property store. *gdata.Manager implements it.
type Backend interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// Store reads and writes progress and profiles
type Store struct {
	backend Backend
	log     *zap.SugaredLogger
}

// Open opens the gdata store for appName.
// If gdata is unavailable the store falls back to memory for this session.
func Open(appName string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Warnw("persistent storage unavailable, progress will not be saved", "error", err)
		return New(NewMemory(), log)
	}
	return New(m, log)
}

// New creates a store over backend
func New(backend Backend, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if backend == nil {
		backend = NewMemory()
	}
	return &Store{backend: backend, log: log}
}

// UnlockedLevels returns the persisted unlocked-level count.
// Missing or unparsable values read as 1.
func (s *Store) UnlockedLevels() int {
	if !s.backend.ObjectPropExists(progressObject, unlockedProperty) {
		return 1
	}
	data, err := s.backend.LoadObjectProp(progressObject, unlockedProperty)
	if err != nil {
		s.log.Warnw("failed to read unlocked levels", "error", err)
		return 1
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// SetUnlockedLevels persists the unlocked-level count
func (s *Store) SetUnlockedLevels(n int) error {
	if n < 1 {
		n = 1
	}
	if err := s.backend.SaveObjectProp(progressObject, unlockedProperty, []byte(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("save unlocked levels: %w", err)
	}
	return nil
}

// LoadProfile returns the stored profile for id, or a new one
func (s *Store) LoadProfile(id string) (*profile.Profile, error) {
	if id == "" {
		id = profile.GuestID
	}
	if !s.backend.ObjectPropExists(profileObject, id) {
		return profile.New(id, ""), nil
	}

	data, err := s.backend.LoadObjectProp(profileObject, id)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}

	var p profile.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

// SaveProfile writes the profile under its id
func (s *Store) SaveProfile(p *profile.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.ID, err)
	}
	if err := s.backend.SaveObjectProp(profileObject, p.ID, data); err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return nil
}

// Memory is an in-process Backend
type Memory struct {
	props map[string][]byte
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{props: make(map[string][]byte)}
}

// ObjectPropExists reports whether the property was saved
func (m *Memory) ObjectPropExists(objectKey, propKey string) bool {
	_, ok := m.props[objectKey+"/"+propKey]
	return ok
}

// LoadObjectProp returns a copy of the saved property
func (m *Memory) LoadObjectProp(objectKey, propKey string) ([]byte, error) {
	data, ok := m.props[objectKey+"/"+propKey]
	if !ok {
		return nil, fmt.Errorf("%s/%s: not found", objectKey, propKey)
	}
	return append([]byte(nil), data...), nil
}

// SaveObjectProp stores a copy of data
func (m *Memory) SaveObjectProp(objectKey, propKey string, data []byte) error {
	m.props[objectKey+"/"+propKey] = append([]byte(nil), data...)
	return nil
}

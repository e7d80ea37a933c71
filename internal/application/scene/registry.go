package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned when a key has no factory
	ErrNotRegistered = errors.New("scene not registered")
	// ErrAlreadyRegistered is returned when a key is registered twice
	ErrAlreadyRegistered = errors.New("scene already registered")
)

// Factory constructs a scene
type Factory func() (Scene, error)

// Policy decides whether a factory result is reused
type Policy int

const (
	// Fresh constructs a new scene on every resolve
	Fresh Policy = iota
	// Cached constructs once and reuses the instance
	Cached
)

type entry struct {
	factory  Factory
	policy   Policy
	instance Scene
}

// Registry maps scene keys to factories
type Registry struct {
	entries map[Key]*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*entry)}
}

// Register adds a factory for key.
// An existing key is never overwritten.
func (r *Registry) Register(key Key, factory Factory, policy Policy) error {
	if factory == nil {
		return fmt.Errorf("register %s: nil factory", key)
	}
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("register %s: %w", key, ErrAlreadyRegistered)
	}
	r.entries[key] = &entry{factory: factory, policy: policy}
	return nil
}

// RegisterIfAbsent registers key unless it already exists.
// It returns true if the factory was added.
func (r *Registry) RegisterIfAbsent(key Key, factory Factory, policy Policy) (bool, error) {
	if r.Has(key) {
		return false, nil
	}
	if err := r.Register(key, factory, policy); err != nil {
		return false, err
	}
	return true, nil
}

// Has reports whether key is registered
func (r *Registry) Has(key Key) bool {
	_, ok := r.entries[key]
	return ok
}

// Resolve returns the scene for key, constructing it if needed
func (r *Registry) Resolve(key Key) (Scene, error) {
	e, ok := r.entries[key]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", key, ErrNotRegistered)
	}

	if e.policy == Cached && e.instance != nil {
		return e.instance, nil
	}

	s, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", key, err)
	}
	if s == nil {
		return nil, fmt.Errorf("construct %s: factory returned nil", key)
	}

	if e.policy == Cached {
		e.instance = s
	}
	return s, nil
}

// Forget drops the cached instance for key so the next resolve constructs again
func (r *Registry) Forget(key Key) {
	if e, ok := r.entries[key]; ok {
		e.instance = nil
	}
}

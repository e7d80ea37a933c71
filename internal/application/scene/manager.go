package scene

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Manager holds the active scene and runs the transition protocol.
//
// Calls to SwitchTo must be serialized by the caller: the manager takes no
// lock, and a second switch issued before the first returns is undefined.
type Manager struct {
	registry *Registry
	log      *zap.SugaredLogger

	current    Scene
	currentKey Key
	name       string

	// OnTransition is called after a successful switch
	OnTransition func(to Key)
}

// NewManager creates a manager over registry
func NewManager(registry *Registry, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{registry: registry, log: log}
}

// Registry returns the registry the manager resolves from
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Current returns the active scene, nil if none
func (m *Manager) Current() Scene {
	return m.current
}

// CurrentKey returns the key of the active scene.
// The second result is false when no scene is active.
func (m *Manager) CurrentKey() (Key, bool) {
	return m.currentKey, m.current != nil
}

// CurrentSceneName returns the lower-cased key of the active scene
func (m *Manager) CurrentSceneName() string {
	return m.name
}

// Has reports whether key is registered
func (m *Manager) Has(key Key) bool {
	return m.registry.Has(key)
}

// SwitchTo exits and cleans the active scene, then resolves and enters key.
//
// The old scene is always fully torn down before the new one is constructed.
// If Enter fails the new scene is cleaned as well and the manager is left
// with no active scene.
func (m *Manager) SwitchTo(ctx context.Context, key Key, sc Context) error {
	m.teardown(ctx)

	next, err := m.registry.Resolve(key)
	if err != nil {
		return fmt.Errorf("switch to %s: %w", key, err)
	}

	m.current = next
	m.currentKey = key
	m.name = strings.ToLower(key.String())

	if err := next.Enter(ctx, sc); err != nil {
		m.log.Errorw("scene enter failed", "scene", key.String(), "error", err)
		_ = m.SafeCleanup(ctx, next)
		m.registry.Forget(key)
		m.clear()
		return fmt.Errorf("enter %s: %w", key, err)
	}

	m.log.Debugw("scene switched", "scene", key.String())
	if m.OnTransition != nil {
		m.OnTransition(key)
	}
	return nil
}

// Release tears down the active scene without a successor
func (m *Manager) Release(ctx context.Context) {
	m.teardown(ctx)
}

// SafeCleanup runs the scene's Cleanup, converting a panic into an error.
// The error has already been logged; callers discard it.
func (m *Manager) SafeCleanup(ctx context.Context, s Scene) (err error) {
	c, ok := s.(Cleaner)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scene cleanup panic: %v", r)
			m.log.Errorw("scene cleanup panicked", "panic", r)
		}
	}()

	if err = c.Cleanup(ctx); err != nil {
		m.log.Warnw("scene cleanup failed", "error", err)
	}
	return err
}

func (m *Manager) teardown(ctx context.Context) {
	old := m.current
	if old == nil {
		return
	}
	key := m.currentKey
	m.clear()

	if ex, ok := old.(Exiter); ok {
		if err := safeExit(ctx, ex); err != nil {
			m.log.Warnw("scene exit failed", "scene", key.String(), "error", err)
		}
	}
	_ = m.SafeCleanup(ctx, old)
}

func (m *Manager) clear() {
	m.current = nil
	m.currentKey = Key{}
	m.name = ""
}

func safeExit(ctx context.Context, ex Exiter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scene exit panic: %v", r)
		}
	}()
	return ex.Exit(ctx)
}

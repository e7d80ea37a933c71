package scene

import (
	"context"
	"fmt"
)

// recorder collects lifecycle events across scenes in call order
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// mockScene is a test double implementing every capability
type mockScene struct {
	name string
	rec  *recorder

	enterErr     error
	exitErr      error
	cleanupErr   error
	cleanupPanic bool
	exempt       bool

	entered  int
	exited   int
	cleaned  int
	lastCtx  Context
	updateDT float64
}

func newMock(name string, rec *recorder) *mockScene {
	return &mockScene{name: name, rec: rec}
}

func (m *mockScene) Enter(_ context.Context, sc Context) error {
	m.entered++
	m.lastCtx = sc
	m.rec.add("enter %s", m.name)
	return m.enterErr
}

func (m *mockScene) Update(dt float64) error {
	m.updateDT = dt
	return nil
}

func (m *mockScene) Exit(context.Context) error {
	m.exited++
	m.rec.add("exit %s", m.name)
	return m.exitErr
}

func (m *mockScene) Cleanup(context.Context) error {
	m.cleaned++
	m.rec.add("cleanup %s", m.name)
	if m.cleanupPanic {
		panic("cleanup exploded")
	}
	return m.cleanupErr
}

func (m *mockScene) LoopExempt() bool {
	return m.exempt
}

// live reports whether the scene is entered and not yet exited
func (m *mockScene) live() bool {
	return m.entered > m.exited
}

// bareScene only implements the required capability
type bareScene struct {
	entered int
}

func (b *bareScene) Enter(context.Context, Context) error {
	b.entered++
	return nil
}

package economy

// Mode tells whether a result came from the live backends
type Mode int

const (
	Live Mode = iota
	Degraded
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Live:
		return "live"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Result is an always-available economy answer.
// Degraded results carry mock or offline values and the reason for them.
type Result[T any] struct {
	Value  T
	Mode   Mode
	Reason string
}

// Degraded reports whether the value is mock or offline data
func (r Result[T]) Degraded() bool {
	return r.Mode == Degraded
}

func liveResult[T any](v T) Result[T] {
	return Result[T]{Value: v, Mode: Live}
}

func degradedResult[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Mode: Degraded, Reason: reason}
}

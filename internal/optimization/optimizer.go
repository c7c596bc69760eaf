package optimization

import (
	"fmt"
	"math"
	"strings"
)

// Optimizer is a generational optimizer that can be driven one step at a
// time. Callers that need cancellation check their context between steps.
type Optimizer interface {
	// Step runs a single generation
	Step() error

	// Done reports whether every configured generation has run
	Done() bool

	// Generation returns the number of completed generations
	Generation() int

	// BestSolution returns the best solution found so far
	BestSolution() *Solution
}

// Objective is the function being optimized. Implementations must be pure
// and deterministic for a fixed input.
type Objective interface {
	Evaluate(position []float64) (float64, error)
}

// ObjectiveFunc adapts an ordinary function to the Objective interface.
type ObjectiveFunc func(position []float64) (float64, error)

// Evaluate calls f(position).
func (f ObjectiveFunc) Evaluate(position []float64) (float64, error) {
	return f(position)
}

// Mode selects the direction of optimization.
type Mode int

const (
	// Minimize treats lower values as better
	Minimize Mode = iota
	// Maximize treats higher values as better
	Maximize
)

// IsBetter reports whether candidate is strictly better than current.
// Equal values are never better, and any comparison involving NaN is false.
func (m Mode) IsBetter(candidate, current float64) bool {
	if m == Maximize {
		return candidate > current
	}
	return candidate < current
}

// Worst returns the value every finite value improves on.
func (m Mode) Worst() float64 {
	if m == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (m Mode) String() string {
	switch m {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "min", "minimize", "m" and "max", "maximize", "M".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "m":
		return Minimize, nil
	case "M":
		return Maximize, nil
	}
	switch strings.ToLower(s) {
	case "", "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	}
	return Minimize, NewConfigError("parse mode", "unknown optimization mode %q", s)
}

// Bounds is the closed interval [Low, High] applied to every coordinate.
type Bounds struct {
	Low  float64
	High float64
}

// Validate rejects empty, degenerate and non-finite bounds.
func (b Bounds) Validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
		return NewConfigError("validate bounds", "bounds must be finite, got [%v, %v]", b.Low, b.High)
	}
	if b.Low >= b.High {
		return NewConfigError("validate bounds", "lower bound %v must be less than upper bound %v", b.Low, b.High)
	}
	return nil
}

// Width returns High - Low.
func (b Bounds) Width() float64 {
	return b.High - b.Low
}

// Clamp pins x to the interval. NaN is passed through unchanged.
func (b Bounds) Clamp(x float64) float64 {
	if x < b.Low {
		return b.Low
	}
	if x > b.High {
		return b.High
	}
	return x
}

// Contains reports whether x lies within the closed interval.
func (b Bounds) Contains(x float64) bool {
	return x >= b.Low && x <= b.High
}

// Solution represents a solution in the optimization space
type Solution struct {
	Parameters []float64
	Value      float64
}

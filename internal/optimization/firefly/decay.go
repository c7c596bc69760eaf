package firefly

import (
	"fmt"
	"math"
	"strings"

	"github.com/copyleftdev/firefly/internal/optimization"
)

// DecayKind names an alpha decay policy.
type DecayKind int

const (
	// DecayExponential reaches a target final/initial ratio after the last generation
	DecayExponential DecayKind = iota
	// DecayGeometric multiplies alpha by a fixed delta every generation
	DecayGeometric
)

func (k DecayKind) String() string {
	switch k {
	case DecayExponential:
		return "exponential"
	case DecayGeometric:
		return "geometric"
	default:
		return fmt.Sprintf("DecayKind(%d)", int(k))
	}
}

// ParseDecayKind accepts "exponential" and "geometric". The empty string
// selects DecayExponential.
func ParseDecayKind(s string) (DecayKind, error) {
	switch strings.ToLower(s) {
	case "", "exponential":
		return DecayExponential, nil
	case "geometric", "delta":
		return DecayGeometric, nil
	}
	return DecayExponential, optimization.NewConfigError("parse decay", "unknown decay policy %q", s)
}

// DecayPolicy shrinks alpha once per generation. Next must never return a
// value larger than its argument for non-negative alpha.
type DecayPolicy interface {
	Next(alpha float64) float64
}

// ExponentialDecay multiplies alpha by a factor derived from a target
// ratio and the run length.
type ExponentialDecay struct {
	Factor float64
}

// NewExponentialDecay returns the decay that turns alpha0 into
// alpha0*targetRatio after generations steps.
func NewExponentialDecay(targetRatio float64, generations int) ExponentialDecay {
	if generations <= 0 {
		return ExponentialDecay{Factor: 1}
	}
	return ExponentialDecay{Factor: math.Pow(targetRatio, 1/float64(generations))}
}

// Next implements DecayPolicy.
func (d ExponentialDecay) Next(alpha float64) float64 {
	return alpha * d.Factor
}

// GeometricDecay multiplies alpha by Delta.
type GeometricDecay struct {
	Delta float64
}

// Next implements DecayPolicy.
func (d GeometricDecay) Next(alpha float64) float64 {
	return alpha * d.Delta
}

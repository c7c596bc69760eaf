// Package distance provides the metrics fireflies use to measure how far
// apart two positions are.
package distance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Metric computes a symmetric, non-negative distance between two positions
// of equal length. The distance is zero iff a and b are equal component-wise.
type Metric interface {
	Distance(a, b []float64) float64
}

// MetricFunc adapts an ordinary function to the Metric interface.
type MetricFunc func(a, b []float64) float64

// Distance calls f(a, b).
func (f MetricFunc) Distance(a, b []float64) float64 {
	return f(a, b)
}

// Euclidean is the L2 distance.
type Euclidean struct{}

// Distance returns sqrt(sum((a_i - b_i)^2)).
func (Euclidean) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Manhattan is the L1 distance.
type Manhattan struct{}

// Distance returns sum(|a_i - b_i|).
func (Manhattan) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Chebyshev is the L-infinity distance.
type Chebyshev struct{}

// Distance returns max(|a_i - b_i|).
func (Chebyshev) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

var registry = map[string]Metric{
	"euclidean": Euclidean{},
	"manhattan": Manhattan{},
	"chebyshev": Chebyshev{},
}

// ByName looks up a metric by its lower-case name. An empty name selects
// Euclidean.
func ByName(name string) (Metric, error) {
	if name == "" {
		return Euclidean{}, nil
	}
	m, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown distance metric %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// Names returns the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

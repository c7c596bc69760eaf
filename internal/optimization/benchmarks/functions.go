// Package benchmarks provides standard test functions for continuous
// optimization, see
// https://en.wikipedia.org/wiki/Test_functions_for_optimization.
package benchmarks

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/firefly/internal/optimization"
)

// ErrDimension is returned when a function is evaluated at a point whose
// dimension it does not support.
var ErrDimension = errors.New("unsupported dimension")

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

// Func is a named benchmark objective with its customary search domain.
type Func struct {
	name   string
	dim    int
	bounds optimization.Bounds
	mode   optimization.Mode
	eval   func(x []float64) float64
}

// Name returns the registry name of the function.
func (f *Func) Name() string { return f.name }

// Dimension returns the only supported dimension, or 0 if any is accepted.
func (f *Func) Dimension() int { return f.dim }

// Bounds returns the customary search domain.
func (f *Func) Bounds() optimization.Bounds { return f.bounds }

// Mode returns the direction the function is normally optimized in.
func (f *Func) Mode() optimization.Mode { return f.mode }

// Evaluate implements optimization.Objective.
func (f *Func) Evaluate(x []float64) (float64, error) {
	if len(x) == 0 || (f.dim > 0 && len(x) != f.dim) {
		return 0, fmt.Errorf("%s: %w: want %d, got %d", f.name, ErrDimension, f.dim, len(x))
	}
	return f.eval(x), nil
}

var (
	Sphere = &Func{
		name:   "sphere",
		bounds: optimization.Bounds{Low: -5.12, High: 5.12},
		eval: func(x []float64) float64 {
			return floats.Dot(x, x)
		},
	}

	Rosenbrock = &Func{
		name:   "rosenbrock",
		bounds: optimization.Bounds{Low: -5, High: 10},
		eval: func(x []float64) float64 {
			sum := 0.0
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				b := x[i] - 1
				sum += 100*a*a + b*b
			}
			return sum
		},
	}

	Rastrigin = &Func{
		name:   "rastrigin",
		bounds: optimization.Bounds{Low: -5.12, High: 5.12},
		eval: func(x []float64) float64 {
			sum := 10 * float64(len(x))
			for _, v := range x {
				sum += v*v - 10*cos(2*math.Pi*v)
			}
			return sum
		},
	}

	Ackley = &Func{
		name:   "ackley",
		bounds: optimization.Bounds{Low: -32.768, High: 32.768},
		eval: func(x []float64) float64 {
			d := float64(len(x))
			sumCos := 0.0
			for _, v := range x {
				sumCos += cos(2 * math.Pi * v)
			}
			return -20*exp(-0.2*sqrt(floats.Dot(x, x)/d)) - exp(sumCos/d) + 20 + math.E
		},
	}

	Griewank = &Func{
		name:   "griewank",
		bounds: optimization.Bounds{Low: -600, High: 600},
		eval: func(x []float64) float64 {
			prod := 1.0
			for i, v := range x {
				prod *= cos(v / sqrt(float64(i+1)))
			}
			return floats.Dot(x, x)/4000 - prod + 1
		},
	}

	Schwefel = &Func{
		name:   "schwefel",
		bounds: optimization.Bounds{Low: -500, High: 500},
		eval: func(x []float64) float64 {
			sum := 0.0
			for _, v := range x {
				sum += v * sin(sqrt(abs(v)))
			}
			return 418.9829*float64(len(x)) - sum
		},
	}

	Michalewicz = &Func{
		name:   "michalewicz",
		bounds: optimization.Bounds{Low: 0, High: math.Pi},
		eval: func(x []float64) float64 {
			const m = 10
			sum := 0.0
			for i, v := range x {
				sum += sin(v) * math.Pow(sin(float64(i+1)*v*v/math.Pi), 2*m)
			}
			return -sum
		},
	}

	Easom = &Func{
		name:   "easom",
		dim:    2,
		bounds: optimization.Bounds{Low: -100, High: 100},
		eval: func(x []float64) float64 {
			dx, dy := x[0]-math.Pi, x[1]-math.Pi
			return -cos(x[0]) * cos(x[1]) * exp(-dx*dx-dy*dy)
		},
	}

	Shubert = &Func{
		name:   "shubert",
		dim:    2,
		bounds: optimization.Bounds{Low: -10, High: 10},
		eval: func(x []float64) float64 {
			var s1, s2 float64
			for i := 1.0; i <= 5; i++ {
				s1 += i * cos((i+1)*x[0]+i)
				s2 += i * cos((i+1)*x[1]+i)
			}
			return s1 * s2
		},
	}

	DeJong5 = &Func{
		name:   "dejong5",
		dim:    2,
		bounds: optimization.Bounds{Low: -65.536, High: 65.536},
		eval: func(x []float64) float64 {
			grid := [5]float64{-32, -16, 0, 16, 32}
			sum := 0.002
			for i := 0; i < 25; i++ {
				a1, a2 := grid[i%5], grid[i/5]
				sum += 1 / (float64(i+1) + math.Pow(x[0]-a1, 6) + math.Pow(x[1]-a2, 6))
			}
			return 1 / sum
		},
	}

	Yang = &Func{
		name:   "yang",
		bounds: optimization.Bounds{Low: -10, High: 10},
		eval: func(x []float64) float64 {
			const m, beta = 5, 15.0
			var outer float64
			prod := 1.0
			for _, v := range x {
				outer += math.Pow(v/beta, 2*m)
				c := cos(v)
				prod *= c * c
			}
			return (exp(-outer) - 2*exp(-floats.Dot(x, x))) * prod
		},
	}

	// FourPeaks has two global maxima of height 2 at (0, 0) and (0, -4)
	// and two local ones of height 1 at (±4, 4).
	FourPeaks = &Func{
		name:   "fourpeaks",
		dim:    2,
		bounds: optimization.Bounds{Low: -5, High: 5},
		mode:   optimization.Maximize,
		eval: func(x []float64) float64 {
			peak := func(cx, cy float64) float64 {
				dx, dy := x[0]-cx, x[1]-cy
				return exp(-dx*dx - dy*dy)
			}
			return peak(4, 4) + peak(-4, 4) + 2*peak(0, -4) + 2*peak(0, 0)
		},
	}
)

// All lists every registered benchmark.
var All = []*Func{
	Sphere,
	Rosenbrock,
	Rastrigin,
	Ackley,
	Griewank,
	Schwefel,
	Michalewicz,
	Easom,
	Shubert,
	DeJong5,
	Yang,
	FourPeaks,
}

var byName = func() map[string]*Func {
	m := make(map[string]*Func, len(All))
	for _, f := range All {
		m[f.name] = f
	}
	return m
}()

// Lookup returns the benchmark registered under name.
func Lookup(name string) (*Func, error) {
	f, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q", name)
	}
	return f, nil
}

// Names returns the registered benchmark names in sorted order.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, f := range All {
		names = append(names, f.name)
	}
	sort.Strings(names)
	return names
}

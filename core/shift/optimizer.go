// Package shift moves deferrable load to cheaper hours inside a bounded
// look-around window.
//
// The optimizer reads prices and original loads from immutable snapshots and
// writes every move into a separate accumulator. A decision for hour i never
// sees a price re-derived from earlier moves, and always relocates the
// original amount of hour i.
package shift

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
)

// DefaultRadius is the look-around window in hours on each side.
const DefaultRadius = 3

// Move records one relocation of deferrable load.
type Move struct {
	From int     `json:"from"`
	To   int     `json:"to"`
	KWh  float64 `json:"kwh"`
}

// Result is the optimized deferrable load series with the moves applied and
// any boundary diagnostics raised along the way.
type Result struct {
	Load        []float64
	Moves       []Move
	Diagnostics []diag.Diagnostic
}

// Optimizer is a greedy single-pass load shifter.
type Optimizer struct {
	Radius int
	Log    logger.Logger
}

// New returns an optimizer with the given radius. A non-positive radius falls
// back to DefaultRadius.
func New(radius int, log logger.Logger) *Optimizer {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Optimizer{Radius: radius, Log: logger.OrNop(log)}
}

// Optimize returns the shifted deferrable load. prices and load must be
// aligned by index.
func (o *Optimizer) Optimize(prices, load []float64) (Result, error) {
	if len(prices) != len(load) {
		return Result{}, model.NewConfigurationError("deferrable_load",
			"length %d does not match price series length %d", len(load), len(prices))
	}
	log := logger.OrNop(o.Log)
	n := len(load)
	snapshot := append([]float64(nil), prices...)
	original := append([]float64(nil), load...)
	acc := append([]float64(nil), load...)
	res := Result{}

	for i := 0; i < n; i++ {
		lo, hi := o.window(i, n)
		if lo > hi {
			d := diag.Diagnostic{Kind: diag.BoundaryCondition, Stage: diag.StageShift, Index: i,
				Message: fmt.Sprintf("empty window [%d,%d]", lo, hi)}
			log.Warnf("load shift: %s", d)
			res.Diagnostics = append(res.Diagnostics, d)
			continue
		}
		j := cheapest(snapshot, lo, hi)
		if j < 0 || j >= n {
			d := diag.Diagnostic{Kind: diag.BoundaryCondition, Stage: diag.StageShift, Index: i,
				Message: fmt.Sprintf("cheapest hour %d outside horizon of %d", j, n)}
			log.Warnf("load shift: %s", d)
			res.Diagnostics = append(res.Diagnostics, d)
			continue
		}
		if !(snapshot[j] < snapshot[i]) || original[i] == 0 {
			continue
		}
		acc[i] -= original[i]
		acc[j] += original[i]
		res.Moves = append(res.Moves, Move{From: i, To: j, KWh: original[i]})
	}

	res.Load = acc
	if !Conserved(original, acc) {
		log.Warnf("load shift: energy not conserved, before %.6f after %.6f", floats.Sum(original), floats.Sum(acc))
	}
	log.Debugw("load shift done", map[string]any{"hours": n, "moves": len(res.Moves)})
	return res, nil
}

// Passthrough returns the load unchanged, used when shifting is disabled.
func Passthrough(load []float64) Result {
	return Result{Load: append([]float64(nil), load...)}
}

func (o *Optimizer) window(i, n int) (int, int) {
	r := o.Radius
	if r <= 0 {
		r = DefaultRadius
	}
	lo := i - r
	if lo < 0 {
		lo = 0
	}
	hi := i + r
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// cheapest returns the index of the minimum price in [lo, hi]; the first
// occurrence wins on ties. NaN prices never win.
func cheapest(prices []float64, lo, hi int) int {
	best := -1
	for k := lo; k <= hi; k++ {
		if k < 0 || k >= len(prices) || math.IsNaN(prices[k]) {
			continue
		}
		if best < 0 || prices[k] < prices[best] {
			best = k
		}
	}
	return best
}

// Conserved reports whether two load series carry the same total energy.
func Conserved(before, after []float64) bool {
	a, b := floats.Sum(before), floats.Sum(after)
	tol := 1e-9 * math.Max(1, math.Abs(a))
	return math.Abs(a-b) <= tol
}

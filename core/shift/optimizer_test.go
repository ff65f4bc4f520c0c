package shift

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/diag"
)

func TestOptimizeNoOpOnEqualPrices(t *testing.T) {
	prices := []float64{20, 20, 20, 20, 20, 20, 20, 20}
	load := []float64{1, 2, 0, 3, 1, 0, 2, 1}
	res, err := New(3, nil).Optimize(prices, load)
	require.NoError(t, err)
	assert.Equal(t, load, res.Load)
	assert.Empty(t, res.Moves)
}

func TestOptimizeMovesWholeLoadToCheapest(t *testing.T) {
	prices := []float64{30, 30, 10, 30, 30}
	load := []float64{1, 2, 0, 3, 0}
	res, err := New(3, nil).Optimize(prices, load)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 6, 0, 0}, res.Load)
	assert.Len(t, res.Moves, 3)
}

func TestOptimizeTieBreaksOnLowestIndex(t *testing.T) {
	prices := []float64{10, 30, 10}
	load := []float64{0, 4, 0}
	res, err := New(3, nil).Optimize(prices, load)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 0, 0}, res.Load)
	assert.Equal(t, Move{From: 1, To: 0, KWh: 4}, res.Moves[0])
}

func TestOptimizeWindowIsBounded(t *testing.T) {
	prices := []float64{1, 50, 50, 50, 50, 50}
	load := []float64{0, 0, 0, 0, 2, 0}
	res, err := New(3, nil).Optimize(prices, load)
	require.NoError(t, err)
	// hour 0 is four hours away from hour 4
	assert.Equal(t, load, res.Load)
}

func TestOptimizeUsesOriginalAmounts(t *testing.T) {
	// hour 0 moves into hour 1; hour 1 then moves only its own original load
	prices := []float64{30, 20, 10}
	load := []float64{1, 2, 0}
	res, err := New(1, nil).Optimize(prices, load)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, res.Load)
}

func TestOptimizeConservesEnergy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prices := make([]float64, 168)
	load := make([]float64, 168)
	for i := range prices {
		prices[i] = 5 + rng.Float64()*20
		load[i] = rng.Float64() * 3
	}
	res, err := New(DefaultRadius, nil).Optimize(prices, load)
	require.NoError(t, err)
	assert.True(t, Conserved(load, res.Load))
	for _, v := range res.Load {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.Empty(t, res.Diagnostics)
}

func TestOptimizeLengthMismatch(t *testing.T) {
	_, err := New(3, nil).Optimize([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestOptimizeNaNPriceRaisesBoundary(t *testing.T) {
	res, err := New(0, nil).Optimize([]float64{math.NaN()}, []float64{1})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.BoundaryCondition, res.Diagnostics[0].Kind)
	assert.Equal(t, []float64{1}, res.Load)
}

func TestPassthroughCopies(t *testing.T) {
	in := []float64{1, 2}
	out := Passthrough(in)
	out.Load[0] = 9
	assert.Equal(t, 1.0, in[0])
}

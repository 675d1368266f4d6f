package usecase

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"CPIReg/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(pairs ...[2]float64) models.AlignedTable {
	rows := make([]models.AlignedRow, len(pairs))
	for i, p := range pairs {
		rows[i] = models.AlignedRow{
			Date:        time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Index:       p[0],
			Performance: p[1],
		}
	}
	return models.AlignedTable{Rows: rows}
}

func ssr(table models.AlignedTable, intercept, slope float64) float64 {
	var sum float64
	for _, r := range table.Rows {
		d := r.Performance - (intercept + slope*r.Index)
		sum += d * d
	}
	return sum
}

func TestFitPerfectLine(t *testing.T) {
	fit, err := Fit(tableOf([2]float64{1, 2}, [2]float64{2, 4}, [2]float64{3, 6}))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-12)
	assert.InDelta(t, 0.0, fit.Intercept, 1e-12)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-12)
	assert.Equal(t, 3, fit.N)
}

func TestFitMatchesClosedForm(t *testing.T) {
	// mean x = 3, mean y = 4, Sxy = 6, Sxx = 10, SSres = 2.4, SStot = 6
	table := tableOf([2]float64{1, 2}, [2]float64{2, 4}, [2]float64{3, 5}, [2]float64{4, 4}, [2]float64{5, 5})

	fit, err := Fit(table)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, fit.Slope, 1e-12)
	assert.InDelta(t, 2.2, fit.Intercept, 1e-12)
	assert.InDelta(t, 0.6, fit.RSquared, 1e-12)

	best := ssr(table, fit.Intercept, fit.Slope)
	assert.InDelta(t, 2.4, best, 1e-12)
	for _, d := range []float64{-0.1, -0.01, 0.01, 0.1} {
		assert.Greater(t, ssr(table, fit.Intercept+d, fit.Slope), best)
		assert.Greater(t, ssr(table, fit.Intercept, fit.Slope+d), best)
	}
}

func TestFitRSquaredBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(30)
		pairs := make([][2]float64, n)
		for i := range pairs {
			pairs[i] = [2]float64{float64(i) + rng.Float64(), rng.NormFloat64() * 100}
		}

		fit, err := Fit(tableOf(pairs...))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fit.RSquared, 0.0)
		assert.LessOrEqual(t, fit.RSquared, 1.0)
		assert.False(t, math.IsNaN(fit.Slope))
	}
}

func TestFitConstantResponse(t *testing.T) {
	fit, err := Fit(tableOf([2]float64{1, 5}, [2]float64{2, 5}, [2]float64{4, 5}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, fit.Slope, 1e-12)
	assert.InDelta(t, 5.0, fit.Intercept, 1e-12)
	assert.Equal(t, 1.0, fit.RSquared)
}

func TestFitDegenerate(t *testing.T) {
	_, err := Fit(tableOf([2]float64{100, 1}, [2]float64{100, 2}, [2]float64{100, 3}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDegenerateInput))

	var de *models.DegenerateInputError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 100.0, de.Value)
	assert.Equal(t, 3, de.Rows)
}

func TestFitLargeMagnitudeIndexIsNotDegenerate(t *testing.T) {
	fit, err := Fit(tableOf([2]float64{1e12, 1}, [2]float64{1e12 + 0.5, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.Equal(t, 2, fit.N)
}

func TestFitInsufficient(t *testing.T) {
	for _, table := range []models.AlignedTable{{}, tableOf([2]float64{1, 1})} {
		_, err := Fit(table)
		assert.True(t, errors.Is(err, models.ErrInsufficientData))
	}
}

func TestFitDeterministic(t *testing.T) {
	table := tableOf([2]float64{257.971, 10.1}, [2]float64{261.582, 11.7}, [2]float64{281.148, 13.9}, [2]float64{299.17, 15.2})
	a, err := Fit(table)
	require.NoError(t, err)
	b, err := Fit(table)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(a.Slope), math.Float64bits(b.Slope))
	assert.Equal(t, math.Float64bits(a.Intercept), math.Float64bits(b.Intercept))
	assert.Equal(t, math.Float64bits(a.RSquared), math.Float64bits(b.RSquared))
}

package usecase

import (
	"math"

	"CPIReg/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Fit computes the ordinary least-squares line performance = a + b·index
// and its coefficient of determination.
func Fit(table models.AlignedTable) (models.FitResult, error) {
	n := table.Len()
	if n < MinAlignedRows {
		return models.FitResult{}, &models.InsufficientDataError{Rows: n, Required: MinAlignedRows}
	}

	xs := table.IndexValues()
	ys := table.PerformanceValues()
	if constant(xs) {
		return models.FitResult{}, &models.DegenerateInputError{Value: xs[0], Rows: n}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return models.FitResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rSquared(xs, ys, intercept, slope),
		N:         n,
	}, nil
}

// rSquared is clamped to [0, 1]. A constant response is fitted exactly.
func rSquared(xs, ys []float64, intercept, slope float64) float64 {
	if constant(ys) {
		return 1
	}
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)
	switch {
	case math.IsNaN(r2), r2 < 0:
		return 0
	case r2 > 1:
		return 1
	}
	return r2
}

// constant reports whether every value equals the first exactly. Any spread,
// however small relative to the magnitude, still determines a slope.
func constant(vs []float64) bool {
	for _, v := range vs[1:] {
		if v != vs[0] {
			return false
		}
	}
	return true
}

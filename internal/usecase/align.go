package usecase

import (
	"sort"
	"time"

	"CPIReg/internal/domain/models"
)

// MinAlignedRows is the hard floor below which a line cannot be fitted.
const MinAlignedRows = 2

// Align inner-joins index and performance on exact calendar date. The
// result is ascending by date and holds at least max(minRows, 2) rows.
func Align(index, performance models.Series, minRows int) (models.AlignedTable, error) {
	required := max(minRows, MinAlignedRows)

	perf := make(map[time.Time]float64, performance.Len())
	for _, o := range performance.Observations {
		perf[models.DateKey(o.Date)] = o.Value
	}

	rows := make([]models.AlignedRow, 0, min(index.Len(), performance.Len()))
	seen := make(map[time.Time]struct{}, index.Len())
	for _, o := range index.Observations {
		d := models.DateKey(o.Date)
		v, ok := perf[d]
		if !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		rows = append(rows, models.AlignedRow{Date: d, Index: o.Value, Performance: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	if len(rows) < required {
		return models.AlignedTable{}, &models.InsufficientDataError{Rows: len(rows), Required: required}
	}
	return models.AlignedTable{Rows: rows}, nil
}

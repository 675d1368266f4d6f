// Package sample holds the bundled CPI-U series used when no live index is requested.
package sample

import (
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/pkg/util"
)

// SeriesName labels the bundled index.
const SeriesName = "CPI-U (sample)"

var cpiPoints = []struct {
	year  int
	month time.Month
	value float64
}{
	{2020, 1, 257.971},
	{2020, 6, 257.797},
	{2020, 12, 260.474},
	{2021, 1, 261.582},
	{2021, 6, 271.696},
	{2021, 12, 278.802},
	{2022, 1, 281.148},
	{2022, 6, 296.311},
	{2022, 12, 296.797},
	{2023, 1, 299.170},
	{2023, 6, 305.109},
	{2023, 12, 306.746},
	{2024, 1, 308.417},
	{2024, 6, 314.069},
	{2024, 12, 314.069},
}

// CPI returns a fresh copy of the bundled CPI-U sample, monthly values
// keyed to the first of each month.
func CPI() models.Series {
	obs := make([]models.Observation, len(cpiPoints))
	for i, p := range cpiPoints {
		obs[i] = models.Observation{Date: util.MonthStart(p.year, p.month), Value: p.value}
	}
	return models.NewSeries(SeriesName, obs)
}

package models

import (
	"sort"
	"time"
)

// Observation is one (date, value) pair of a time-indexed series.
// Date is a calendar-day key: UTC midnight.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series represents an Index Series or a Performance Series.
// Observations are ascending by date with unique dates.
type Series struct {
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`
}

// NewSeries copies obs, normalises dates and sorts them ascending.
func NewSeries(name string, obs []Observation) Series {
	out := make([]Observation, len(obs))
	for i, o := range obs {
		out[i] = Observation{Date: DateKey(o.Date), Value: o.Value}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return Series{Name: name, Observations: out}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Observations) }

// Clone returns a deep copy so callers cannot share the backing array.
func (s Series) Clone() Series {
	obs := make([]Observation, len(s.Observations))
	copy(obs, s.Observations)
	return Series{Name: s.Name, Observations: obs}
}

// DateKey truncates t to its calendar day in UTC.
func DateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AlignedRow is one row of the inner join.
type AlignedRow struct {
	Date        time.Time `json:"date"`
	Index       float64   `json:"index_value"`
	Performance float64   `json:"performance_value"`
}

// AlignedTable holds rows whose dates exist in both source series, ascending by date.
type AlignedTable struct {
	Rows []AlignedRow `json:"rows"`
}

// Len returns the number of rows.
func (t AlignedTable) Len() int { return len(t.Rows) }

// IndexValues returns the independent variable column.
func (t AlignedTable) IndexValues() []float64 {
	xs := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		xs[i] = r.Index
	}
	return xs
}

// PerformanceValues returns the dependent variable column.
func (t AlignedTable) PerformanceValues() []float64 {
	ys := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		ys[i] = r.Performance
	}
	return ys
}

// FitResult is the outcome of an ordinary least-squares fit.
type FitResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// Predict evaluates the fitted line at x.
func (f FitResult) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

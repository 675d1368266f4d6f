package models

import "time"

// Report is the complete output of one pipeline run.
// Note: no transport (json/http) concerns beyond field tags.
type Report struct {
	ID                string       `json:"id"`
	CreatedAt         time.Time    `json:"created_at"`
	IndexSource       string       `json:"index_source"`
	PerformanceSource string       `json:"performance_source"`
	Table             AlignedTable `json:"table"`
	Fit               FitResult    `json:"fit"`
	Equation          string       `json:"equation"`
	Summary           string       `json:"summary"`
	Plot              []byte       `json:"plot,omitempty"`
}

// RunEvent is published after each run, successful or not.
type RunEvent struct {
	RunID             string    `json:"run_id"`
	Status            string    `json:"status"`
	Kind              ErrorKind `json:"kind,omitempty"`
	Message           string    `json:"message,omitempty"`
	IndexSource       string    `json:"index_source"`
	PerformanceSource string    `json:"performance_source"`
	Rows              int       `json:"rows"`
	Slope             float64   `json:"slope"`
	Intercept         float64   `json:"intercept"`
	RSquared          float64   `json:"r_squared"`
	At                time.Time `json:"at"`
}

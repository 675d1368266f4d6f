package models

// Requests for the interactive form and JSON API. Defined in domain for consistency and reuse.

type RunRequest struct {
	IndexSource       string `form:"index_source" json:"index_source" default:"sample" validate:"oneof=sample live"`
	APIKey            string `form:"api_key" json:"api_key"`
	StartYear         int    `form:"start_year" json:"start_year" default:"2020" validate:"gte=1913,lte=2100"`
	EndYear           int    `form:"end_year" json:"end_year" default:"2024" validate:"gtefield=StartYear,lte=2100"`
	PerformanceSource string `form:"performance_source" json:"performance_source" default:"sample" validate:"oneof=sample upload"`
}

// Live reports whether the caller asked for live index data.
func (r *RunRequest) Live() bool { return r.IndexSource == string(IndexSourceLive) }

// Range returns the requested provider range.
func (r *RunRequest) Range() DateRange {
	return DateRange{StartYear: r.StartYear, EndYear: r.EndYear}
}

type RunLookupRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

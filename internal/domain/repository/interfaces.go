package repository

import (
	"context"
	"errors"

	"CPIReg/internal/domain/models"
)

// ErrReportNotFound is returned when a report id is unknown or expired.
var ErrReportNotFound = errors.New("report not found")

// IndexProvider fetches a price-index series from a remote data provider.
// One call performs exactly one outbound request.
type IndexProvider interface {
	FetchSeries(ctx context.Context, key string, r models.DateRange) (models.Series, error)
}

// ReportStore keeps finished reports so the form can link their plots.
type ReportStore interface {
	Save(ctx context.Context, r *models.Report) error
	Get(ctx context.Context, id string) (*models.Report, error)
}

// RunArchive persists run results for later analysis.
type RunArchive interface {
	Archive(ctx context.Context, r *models.Report) error
	Close() error
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishRun(ctx context.Context, ev *models.RunEvent) error
	Close() error
}

type Metrics interface {
	RecordRun(indexSource, result string)
	RecordError(kind string)
	RecordFit(rows int, rSquared float64)
	RecordLatency(op string, seconds float64)
}

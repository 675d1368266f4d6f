package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"CPIReg/internal/domain/models"
	"CPIReg/internal/service/tabular"
)

const (
	performanceSeriesName = "performance"
	syntheticSeriesName   = "performance (synthetic)"
)

var errNoProvider = errors.New("no live index provider configured")

// LoadIndexSeries returns the sample series or fetches a live one.
// A live load issues exactly one provider request.
func (p *Pipeline) LoadIndexSeries(ctx context.Context, src models.IndexSource) (models.Series, error) {
	switch src.Kind {
	case models.IndexSourceSample, "":
		return p.cfg.SampleIndex.Clone(), nil
	case models.IndexSourceLive:
		if p.provider == nil {
			return models.Series{}, &models.DataSourceError{Source: "index", Op: "fetch", Err: errNoProvider}
		}
		return p.provider.FetchSeries(ctx, src.Key, src.Range)
	default:
		return models.Series{}, fmt.Errorf("unknown index source %q", src.Kind)
	}
}

// LoadPerformanceSeries parses a file or upload, or derives a synthetic
// series from index when no performance data is available.
func (p *Pipeline) LoadPerformanceSeries(src models.PerformanceSource, index models.Series) (models.Series, error) {
	switch src.Kind {
	case models.PerformanceSourceFile:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return models.Series{}, &models.InputFormatError{Value: src.Path, Reason: "cannot read performance file", Err: err}
		}
		return tabular.Parse(performanceSeriesName, src.Path, data, p.cfg.Columns)
	case models.PerformanceSourceUpload:
		if len(src.Data) == 0 {
			return models.Series{}, &models.InputFormatError{Value: src.Filename, Reason: "uploaded file is empty"}
		}
		return tabular.Parse(performanceSeriesName, src.Filename, src.Data, p.cfg.Columns)
	case models.PerformanceSourceSynthetic:
		return SyntheticPerformance(index), nil
	default:
		return models.Series{}, fmt.Errorf("unknown performance source %q", src.Kind)
	}
}

// SyntheticPerformance builds index·1.2 + 50 + 0.5·i on the index dates.
func SyntheticPerformance(index models.Series) models.Series {
	obs := make([]models.Observation, index.Len())
	for i, o := range index.Observations {
		obs[i] = models.Observation{Date: o.Date, Value: o.Value*1.2 + 50 + 0.5*float64(i)}
	}
	return models.NewSeries(syntheticSeriesName, obs)
}

// DefaultPerformanceSource returns the configured file, or the synthetic
// series when the file does not exist and fallback is allowed.
func DefaultPerformanceSource(path string, fallback bool) models.PerformanceSource {
	if _, err := os.Stat(path); err != nil && errors.Is(err, os.ErrNotExist) && fallback {
		return models.SyntheticSource()
	}
	return models.FileSource(path)
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/internal/service/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioIndex() models.Series {
	return models.NewSeries("cpi", []models.Observation{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 100},
		{Date: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Value: 110},
		{Date: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), Value: 120},
		{Date: time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC), Value: 125},
	})
}

func scenarioConfig() PipelineConfig {
	return PipelineConfig{
		SampleIndex: scenarioIndex(),
		MinRows:     2,
		Format:      report.DefaultFormatOptions(),
		Plot:        report.PlotOptions{Width: 400, Height: 300},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "division_performance.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,value\n2021-01-01,10\n2021-02-01,12\n2021-03-01,14\n"), 0o600))

	rep, err := NewPipeline(scenarioConfig(), nil).Run(context.Background(), Input{
		Index:       models.SampleIndex(),
		Performance: models.FileSource(path),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Table.Len())
	assert.Greater(t, rep.Fit.Slope, 0.0)
	assert.Greater(t, rep.Fit.RSquared, 0.99)
	assert.InDelta(t, 0.2, rep.Fit.Slope, 1e-9)
	assert.InDelta(t, -10.0, rep.Fit.Intercept, 1e-9)
	assert.Equal(t, "performance ≈ -10.0000 + 0.2000 × index", rep.Equation)
	assert.Contains(t, rep.Summary, "R²:         1.0000")
	assert.Equal(t, "sample", rep.IndexSource)
	assert.Empty(t, rep.ID)

	require.NotEmpty(t, rep.Plot)
	_, err = png.Decode(bytes.NewReader(rep.Plot))
	assert.NoError(t, err)
}

func TestPipelineSyntheticFallback(t *testing.T) {
	rep, err := NewPipeline(scenarioConfig(), nil).Run(context.Background(), Input{
		Index:       models.SampleIndex(),
		Performance: models.SyntheticSource(),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Fit.N)
	assert.Greater(t, rep.Fit.RSquared, 0.99)
}

func TestPipelineErrorKinds(t *testing.T) {
	cfg := scenarioConfig()

	tests := []struct {
		name string
		perf string
		kind models.ErrorKind
	}{
		{name: "no overlap", perf: "date,value\n2030-01,1\n2030-02,2\n", kind: models.KindInsufficientData},
		{name: "bad value", perf: "date,value\n2021-01,ten\n", kind: models.KindInputFormat},
		{name: "ambiguous", perf: "date,a,b\n2021-01,1,2\n", kind: models.KindInputFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(cfg, nil).Run(context.Background(), Input{
				Index:       models.SampleIndex(),
				Performance: models.UploadSource("perf.csv", []byte(tt.perf)),
			})
			require.Error(t, err)
			assert.Equal(t, tt.kind, models.KindOf(err))
		})
	}
}

func TestPipelineDegenerateIndex(t *testing.T) {
	cfg := scenarioConfig()
	cfg.SampleIndex = models.NewSeries("flat", []models.Observation{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 100},
		{Date: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Value: 100},
	})

	_, err := NewPipeline(cfg, nil).Run(context.Background(), Input{
		Index:       models.SampleIndex(),
		Performance: models.UploadSource("perf.csv", []byte("date,value\n2021-01,1\n2021-02,2\n")),
	})
	assert.True(t, errors.Is(err, models.ErrDegenerateInput))
}

func TestPipelineLiveMakesOneRequest(t *testing.T) {
	provider := &fakeProvider{series: scenarioIndex()}
	_, err := NewPipeline(scenarioConfig(), provider).Run(context.Background(), Input{
		Index:       models.LiveIndex("key", models.DateRange{StartYear: 2021, EndYear: 2021}),
		Performance: models.SyntheticSource(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

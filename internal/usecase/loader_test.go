package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/internal/service/sample"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIndexSeriesSample(t *testing.T) {
	provider := &fakeProvider{}
	p := NewPipeline(PipelineConfig{SampleIndex: sample.CPI()}, provider)

	s, err := p.LoadIndexSeries(context.Background(), models.SampleIndex())
	require.NoError(t, err)
	assert.Equal(t, 15, s.Len())
	assert.Zero(t, provider.calls)

	s.Observations[0].Value = -1
	again, err := p.LoadIndexSeries(context.Background(), models.SampleIndex())
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, again.Observations[0].Value)
}

func TestLoadIndexSeriesLive(t *testing.T) {
	provider := &fakeProvider{series: sample.CPI()}
	p := NewPipeline(PipelineConfig{}, provider)

	r := models.DateRange{StartYear: 2021, EndYear: 2023}
	s, err := p.LoadIndexSeries(context.Background(), models.LiveIndex("key", r))
	require.NoError(t, err)
	assert.Equal(t, 15, s.Len())
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "key", provider.key)
	assert.Equal(t, r, provider.rng)
}

func TestLoadIndexSeriesLiveFailure(t *testing.T) {
	want := &models.DataSourceError{Source: "bls", Op: "fetch", Err: errors.New("unauthorized")}
	provider := &fakeProvider{err: want}
	p := NewPipeline(PipelineConfig{}, provider)

	_, err := p.LoadIndexSeries(context.Background(), models.LiveIndex("bad", models.DateRange{StartYear: 2020, EndYear: 2021}))
	assert.ErrorIs(t, err, models.ErrDataSource)
	assert.Equal(t, 1, provider.calls)

	_, err = NewPipeline(PipelineConfig{}, nil).LoadIndexSeries(context.Background(), models.LiveIndex("k", models.DateRange{}))
	assert.ErrorIs(t, err, models.ErrDataSource)
}

func TestResolveIndexSourceWithoutKeyUsesSample(t *testing.T) {
	provider := &fakeProvider{}
	p := NewPipeline(PipelineConfig{SampleIndex: sample.CPI()}, provider)

	src := models.ResolveIndexSource(true, "", models.DateRange{StartYear: 2020, EndYear: 2024})
	assert.Equal(t, models.IndexSourceSample, src.Kind)

	_, err := p.LoadIndexSeries(context.Background(), src)
	require.NoError(t, err)
	assert.Zero(t, provider.calls)
}

func TestLoadPerformanceSeriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Value\n2021-02,12\n2021-01,10\n"), 0o600))

	p := NewPipeline(PipelineConfig{}, nil)
	s, err := p.LoadPerformanceSeries(models.FileSource(path), models.Series{})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 10.0, s.Observations[0].Value)
}

func TestLoadPerformanceSeriesErrors(t *testing.T) {
	p := NewPipeline(PipelineConfig{}, nil)

	_, err := p.LoadPerformanceSeries(models.FileSource(filepath.Join(t.TempDir(), "missing.csv")), models.Series{})
	assert.ErrorIs(t, err, models.ErrInputFormat)

	_, err = p.LoadPerformanceSeries(models.UploadSource("perf.csv", nil), models.Series{})
	assert.ErrorIs(t, err, models.ErrInputFormat)

	_, err = p.LoadPerformanceSeries(models.UploadSource("perf.csv", []byte("when,amount\n2021-01,1\n")), models.Series{})
	assert.ErrorIs(t, err, models.ErrInputFormat)
}

func TestSyntheticPerformance(t *testing.T) {
	index := models.NewSeries("cpi", []models.Observation{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 100},
		{Date: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Value: 110},
	})

	p := NewPipeline(PipelineConfig{}, nil)
	s, err := p.LoadPerformanceSeries(models.SyntheticSource(), index)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.InDelta(t, 170.0, s.Observations[0].Value, 1e-9)
	assert.InDelta(t, 182.5, s.Observations[1].Value, 1e-9)
	assert.Equal(t, index.Observations[1].Date, s.Observations[1].Date)
}

func TestDefaultPerformanceSource(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "perf.csv")
	require.NoError(t, os.WriteFile(existing, []byte("date,value\n2021-01-01,1\n"), 0o644))
	missing := filepath.Join(dir, "missing.csv")

	assert.Equal(t, models.FileSource(existing), DefaultPerformanceSource(existing, true))
	assert.Equal(t, models.SyntheticSource(), DefaultPerformanceSource(missing, true))
	assert.Equal(t, models.FileSource(missing), DefaultPerformanceSource(missing, false))
}

package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"CPIReg/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	series models.Series
	err    error
}

func (s stubProvider) FetchSeries(context.Context, string, models.DateRange) (models.Series, error) {
	return s.series, s.err
}

func TestInstrumentedProviderCountsErrors(t *testing.T) {
	p := Instrument(stubProvider{err: &models.DataSourceError{Source: "stub-series", Op: "fetch", Err: errors.New("boom")}})

	before := testutil.ToFloat64(ProviderErrors.WithLabelValues("stub-series", "fetch"))
	_, err := p.FetchSeries(context.Background(), "k", models.DateRange{StartYear: 2020, EndYear: 2021})
	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderErrors.WithLabelValues("stub-series", "fetch")))
}

func TestInstrumentedProviderPassesThrough(t *testing.T) {
	want := models.NewSeries("stub-ok", []models.Observation{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1},
	})
	p := Instrument(stubProvider{series: want})

	got, err := p.FetchSeries(context.Background(), "k", models.DateRange{StartYear: 2021, EndYear: 2021})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 0.0, testutil.ToFloat64(ProviderErrors.WithLabelValues("stub-ok", "fetch")))
}

package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cpireg",
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Latency of index provider fetches",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"series", "outcome"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cpireg",
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Index provider errors by failing step",
		},
		[]string{"series", "op"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ProviderLatency, ProviderErrors)
	})
}

// InstrumentedProvider records latency and failures of the wrapped provider.
type InstrumentedProvider struct {
	next drepo.IndexProvider
}

// Instrument wraps p and registers the provider collectors.
func Instrument(p drepo.IndexProvider) *InstrumentedProvider {
	Register()
	return &InstrumentedProvider{next: p}
}

func (p *InstrumentedProvider) FetchSeries(ctx context.Context, apiKey string, r models.DateRange) (models.Series, error) {
	start := time.Now()
	s, err := p.next.FetchSeries(ctx, apiKey, r)
	series := s.Name
	outcome := "ok"
	if err != nil {
		outcome = "error"
		op := "unknown"
		var dse *models.DataSourceError
		if errors.As(err, &dse) {
			series = dse.Source
			op = dse.Op
		}
		if series == "" {
			series = "unknown"
		}
		ProviderErrors.WithLabelValues(series, op).Inc()
	}
	ProviderLatency.WithLabelValues(series, outcome).Observe(time.Since(start).Seconds())
	return s, err
}

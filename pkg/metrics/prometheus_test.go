package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordRun("sample", "ok")
	r.RecordRun("sample", "ok")
	r.RecordRun("live", "error")
	r.RecordError("data_source")
	r.RecordFit(12, 0.87)
	r.RecordLatency("run", 0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("sample", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("live", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("data_source")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.lastRows))
	assert.Equal(t, 0.87, testutil.ToFloat64(r.lastRSq))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

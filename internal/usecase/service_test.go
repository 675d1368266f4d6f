package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store drepo.ReportStore, archive drepo.RunArchive, events drepo.EventPublisher, metrics drepo.Metrics) *RegressionService {
	svc := NewRegressionService(NewPipeline(scenarioConfig(), nil), store, archive, events, metrics, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "run-1" }
	return svc
}

var syntheticInput = Input{Index: models.SampleIndex(), Performance: models.SyntheticSource()}

func TestServiceRunSuccess(t *testing.T) {
	store := &fakeStore{}
	archive := &fakeArchive{}
	events := &fakeEvents{}
	metrics := newFakeMetrics()
	svc := newTestService(store, archive, events, metrics)

	rep, err := svc.Run(context.Background(), syntheticInput)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rep.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), rep.CreatedAt)

	stored, err := svc.Report(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Same(t, rep, stored)
	assert.Equal(t, []string{"run-1"}, archive.archived)

	require.Len(t, events.events, 1)
	assert.Equal(t, "completed", events.events[0].Status)
	assert.Equal(t, 4, events.events[0].Rows)

	assert.Equal(t, 1, metrics.runs["sample/ok"])
	assert.Equal(t, 4, metrics.fitRows)
	assert.Equal(t, 1, metrics.latency)
}

func TestServiceRunFailure(t *testing.T) {
	store := &fakeStore{}
	events := &fakeEvents{}
	metrics := newFakeMetrics()
	svc := newTestService(store, nil, events, metrics)

	_, err := svc.Run(context.Background(), Input{
		Index:       models.SampleIndex(),
		Performance: models.UploadSource("perf.csv", []byte("date,value\n1999-01,1\n")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	assert.Equal(t, 1, metrics.runs["sample/error"])
	assert.Equal(t, 1, metrics.errors["insufficient_data"])
	require.Len(t, events.events, 1)
	assert.Equal(t, "failed", events.events[0].Status)
	assert.Equal(t, models.KindInsufficientData, events.events[0].Kind)
	assert.Empty(t, store.reports)
}

func TestServiceStoreFailureDoesNotFailRun(t *testing.T) {
	metrics := newFakeMetrics()
	svc := newTestService(&fakeStore{err: errors.New("redis down")}, &fakeArchive{err: errors.New("ch down")}, nil, metrics)

	rep, err := svc.Run(context.Background(), syntheticInput)
	require.NoError(t, err)
	assert.NotNil(t, rep)
	assert.Equal(t, 1, metrics.errors["store"])
	assert.Equal(t, 1, metrics.errors["archive"])
}

func TestServiceWithoutCollaborators(t *testing.T) {
	svc := NewRegressionService(NewPipeline(scenarioConfig(), nil), nil, nil, nil, nil, nil)

	rep, err := svc.Run(context.Background(), syntheticInput)
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)

	_, err = svc.Report(context.Background(), rep.ID)
	assert.ErrorIs(t, err, drepo.ErrReportNotFound)
	assert.NoError(t, svc.Close())
}

func TestServiceClose(t *testing.T) {
	archive := &fakeArchive{}
	events := &fakeEvents{closeErr: errors.New("flush failed")}
	svc := newTestService(nil, archive, events, nil)

	err := svc.Close()
	assert.True(t, archive.closed)
	assert.EqualError(t, err, "flush failed")
}

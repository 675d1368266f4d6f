package usecase

import (
	"context"
	"sync"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
)

type fakeProvider struct {
	mu     sync.Mutex
	calls  int
	key    string
	rng    models.DateRange
	series models.Series
	err    error
}

func (f *fakeProvider) FetchSeries(_ context.Context, key string, r models.DateRange) (models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.key = key
	f.rng = r
	if f.err != nil {
		return models.Series{}, f.err
	}
	return f.series.Clone(), nil
}

type fakeStore struct {
	reports map[string]*models.Report
	err     error
}

func (s *fakeStore) Save(_ context.Context, r *models.Report) error {
	if s.err != nil {
		return s.err
	}
	if s.reports == nil {
		s.reports = map[string]*models.Report{}
	}
	s.reports[r.ID] = r
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, drepo.ErrReportNotFound
	}
	return r, nil
}

type fakeArchive struct {
	archived []string
	closed   bool
	err      error
}

func (a *fakeArchive) Archive(_ context.Context, r *models.Report) error {
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, r.ID)
	return nil
}

func (a *fakeArchive) Close() error {
	a.closed = true
	return nil
}

type fakeEvents struct {
	events   []*models.RunEvent
	closeErr error
}

func (e *fakeEvents) PublishRun(_ context.Context, ev *models.RunEvent) error {
	e.events = append(e.events, ev)
	return nil
}

func (e *fakeEvents) Close() error { return e.closeErr }

type fakeMetrics struct {
	runs    map[string]int
	errors  map[string]int
	fitRows int
	r2      float64
	latency int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordRun(source, result string) { m.runs[source+"/"+result]++ }
func (m *fakeMetrics) RecordError(kind string)         { m.errors[kind]++ }
func (m *fakeMetrics) RecordFit(rows int, r2 float64)  { m.fitRows, m.r2 = rows, r2 }
func (m *fakeMetrics) RecordLatency(string, float64)   { m.latency++ }

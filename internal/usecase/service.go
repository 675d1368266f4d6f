package usecase

import (
	"context"
	"errors"
	"time"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	"CPIReg/pkg/logger"

	"github.com/google/uuid"
)

const (
	resultOK    = "ok"
	resultError = "error"

	statusCompleted = "completed"
	statusFailed    = "failed"
)

// RegressionService wraps Pipeline with run identity, metrics, storage,
// archiving and events. Every collaborator except the pipeline is optional.
type RegressionService struct {
	pipeline *Pipeline
	store    drepo.ReportStore
	archive  drepo.RunArchive
	events   drepo.EventPublisher
	metrics  drepo.Metrics
	log      *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewRegressionService creates a RegressionService.
func NewRegressionService(
	pipeline *Pipeline,
	store drepo.ReportStore,
	archive drepo.RunArchive,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
) *RegressionService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RegressionService{
		pipeline: pipeline,
		store:    store,
		archive:  archive,
		events:   events,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Run executes the pipeline once and records the outcome.
func (s *RegressionService) Run(ctx context.Context, in Input) (*models.Report, error) {
	start := s.now()
	id := s.newID()
	log := s.log.With(logger.String("run_id", id))

	rep, err := s.pipeline.Run(ctx, in)
	s.metrics.RecordLatency("run", s.now().Sub(start).Seconds())

	if err != nil {
		kind := models.KindOf(err)
		s.metrics.RecordRun(string(in.Index.Kind), resultError)
		s.metrics.RecordError(string(kind))

		fields := []logger.Field{
			logger.String("kind", string(kind)),
			logger.String("index_source", in.Index.String()),
			logger.String("performance_source", in.Performance.String()),
			logger.Error(err),
		}
		if kind == models.KindDataSource || kind == models.KindInternal {
			log.Error("run failed", fields...)
		} else {
			log.Warn("run rejected", fields...)
		}

		s.publish(ctx, log, &models.RunEvent{
			RunID:             id,
			Status:            statusFailed,
			Kind:              kind,
			Message:           err.Error(),
			IndexSource:       in.Index.String(),
			PerformanceSource: in.Performance.String(),
			At:                start,
		})
		return nil, err
	}

	rep.ID = id
	rep.CreatedAt = start.UTC()
	s.metrics.RecordRun(string(in.Index.Kind), resultOK)
	s.metrics.RecordFit(rep.Fit.N, rep.Fit.RSquared)

	if s.store != nil {
		if err := s.store.Save(ctx, rep); err != nil {
			s.metrics.RecordError("store")
			log.Warn("report not stored", logger.Error(err))
		}
	}
	if s.archive != nil {
		if err := s.archive.Archive(ctx, rep); err != nil {
			s.metrics.RecordError("archive")
			log.Warn("report not archived", logger.Error(err))
		}
	}

	s.publish(ctx, log, &models.RunEvent{
		RunID:             id,
		Status:            statusCompleted,
		IndexSource:       rep.IndexSource,
		PerformanceSource: rep.PerformanceSource,
		Rows:              rep.Fit.N,
		Slope:             rep.Fit.Slope,
		Intercept:         rep.Fit.Intercept,
		RSquared:          rep.Fit.RSquared,
		At:                start,
	})

	log.Info("run completed",
		logger.String("index_source", rep.IndexSource),
		logger.String("performance_source", rep.PerformanceSource),
		logger.Int("rows", rep.Fit.N),
		logger.Float64("slope", rep.Fit.Slope),
		logger.Float64("intercept", rep.Fit.Intercept),
		logger.Float64("r_squared", rep.Fit.RSquared),
	)
	return rep, nil
}

// Report returns a stored report by id.
func (s *RegressionService) Report(ctx context.Context, id string) (*models.Report, error) {
	if s.store == nil {
		return nil, drepo.ErrReportNotFound
	}
	return s.store.Get(ctx, id)
}

// Close releases the archive and event publisher.
func (s *RegressionService) Close() error {
	var errs []error
	if s.archive != nil {
		errs = append(errs, s.archive.Close())
	}
	if s.events != nil {
		errs = append(errs, s.events.Close())
	}
	return errors.Join(errs...)
}

func (s *RegressionService) publish(ctx context.Context, log *logger.Logger, ev *models.RunEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRun(ctx, ev); err != nil {
		s.metrics.RecordError("events")
		log.Warn("run event not published", logger.Error(err))
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string, string)      {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordFit(int, float64)        {}
func (nopMetrics) RecordLatency(string, float64) {}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	"CPIReg/pkg/cache"
)

// CacheReportStore keeps reports in a cache.Service under report:<id>.
type CacheReportStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheReportStore creates a report store backed by c.
func NewCacheReportStore(c cache.Service, ttl time.Duration) *CacheReportStore {
	return &CacheReportStore{cache: c, ttl: ttl}
}

var _ drepo.ReportStore = (*CacheReportStore)(nil)

func (s *CacheReportStore) Save(ctx context.Context, r *models.Report) error {
	if r == nil || r.ID == "" {
		return errors.New("report id is required")
	}
	if err := s.cache.Set(ctx, reportKey(r.ID), r, s.ttl); err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	return nil
}

func (s *CacheReportStore) Get(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	if err := s.cache.Get(ctx, reportKey(id), &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, drepo.ErrReportNotFound
		}
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	return &r, nil
}

func reportKey(id string) string {
	return cache.GenerateKey("report", id)
}

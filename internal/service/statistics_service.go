package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/statistics"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/jobs"
)

const (
	statisticsCacheKey     = "stats:summary"
	statisticsCachePattern = "stats:*"

	// RefreshJobType identifies statistics refresh jobs on the queue.
	RefreshJobType = "statistics.refresh"
	// RefreshJobKey coalesces refresh jobs waiting on the queue.
	RefreshJobKey = "stats"
)

type studentSnapshotSource interface {
	ListAll(ctx context.Context) ([]models.StudentRecord, error)
}

type waitingListSource interface {
	List(ctx context.Context, search string) ([]models.WaitingListEntry, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// StatisticsService computes the dashboard statistics from the stored
// collections and keeps the last result in the cache.
type StatisticsService struct {
	students studentSnapshotSource
	waiting  waitingListSource
	cache    *CacheService
	metrics  *MetricsService
	queue    jobEnqueuer
	logger   *zap.Logger
}

// NewStatisticsService constructs the service. cache and metrics may be nil.
func NewStatisticsService(students studentSnapshotSource, waiting waitingListSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{students: students, waiting: waiting, cache: cache, metrics: metrics, logger: logger}
}

// UseQueue routes ScheduleRefresh through a background queue instead of
// recomputing inline.
func (s *StatisticsService) UseQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Summary returns the statistics bundle and whether it was served from cache.
func (s *StatisticsService) Summary(ctx context.Context) (*models.Statistics, bool, error) {
	var cached models.Statistics
	if hit, err := s.cache.Get(ctx, statisticsCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, statisticsCacheKey, stats, 0)
	return stats, false, nil
}

// Refresh drops cached statistics and recomputes them.
func (s *StatisticsService) Refresh(ctx context.Context) (*models.Statistics, error) {
	_ = s.cache.Invalidate(ctx, statisticsCachePattern)
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, statisticsCacheKey, stats, 0)
	return stats, nil
}

// ScheduleRefresh invalidates the cached statistics immediately and warms the
// cache again in the background.
func (s *StatisticsService) ScheduleRefresh(ctx context.Context, reason string) {
	_ = s.cache.Invalidate(ctx, statisticsCachePattern)
	if s.queue == nil {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: RefreshJobType, Key: RefreshJobKey, Payload: reason}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("statistics refresh not scheduled", zap.String("reason", reason), zap.Error(err))
	}
}

// HandleJob is the queue handler for refresh jobs.
func (s *StatisticsService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != RefreshJobType {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	stats, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("statistics refreshed",
		zap.String("job_id", job.ID),
		zap.Any("reason", job.Payload),
		zap.Int("students", stats.TotalRegistered),
	)
	return nil
}

func (s *StatisticsService) compute(ctx context.Context) (*models.Statistics, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	waiting, err := s.waiting.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waiting list")
	}
	start := time.Now()
	stats := statistics.Compute(students, waiting)
	s.metrics.ObserveStatistics(len(students), time.Since(start))
	return &stats, nil
}

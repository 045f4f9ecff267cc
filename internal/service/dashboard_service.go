package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

// DashboardStore aggregates the counters behind the dashboard.
type DashboardStore interface {
	ApplicationCounts(ctx context.Context) (int, map[models.ApplicationStatus]int, error)
	StudentCounts(ctx context.Context) (int, map[models.Standard]int, error)
	AttendanceToday(ctx context.Context, date string) (map[models.AttendanceStatus]int, error)
	FeesCollected(ctx context.Context) (int, error)
	RecentApplications(ctx context.Context, limit int) ([]models.Application, error)
}

// DashboardService computes the admin dashboard payload, cached in
// Redis with a short TTL.
type DashboardService struct {
	store   DashboardStore
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(store DashboardStore, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		ttl:     ttl,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Stats returns the dashboard aggregate, serving from cache when fresh.
// The boolean reports whether the payload came from cache.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, bool, error) {
	var cached dto.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn("cache dashboard stats", zap.Error(err))
	}
	return stats, false, nil
}

// Invalidate drops the cached payload; called after admissions and
// status changes that move the counters.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("invalidate dashboard cache", zap.Error(err))
	}
}

// SystemMetrics returns the instrumentation snapshot.
func (s *DashboardService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *DashboardService) compute(ctx context.Context) (*dto.DashboardStats, error) {
	start := time.Now()
	totalApps, byStatus, err := s.store.ApplicationCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "application counts")
	}
	activeStudents, byClass, err := s.store.StudentCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "student counts")
	}
	today := s.now().Format("2006-01-02")
	attendance, err := s.store.AttendanceToday(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance counts")
	}
	fees, err := s.store.FeesCollected(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "fee totals")
	}
	recent, err := s.store.RecentApplications(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "recent applications")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("dashboard_stats", time.Since(start))
	}

	recentViews := make([]models.PublicApplicationView, len(recent))
	for i := range recent {
		recentViews[i] = recent[i].PublicView()
	}

	pending := byStatus[models.StatusEnquiryNew] +
		byStatus[models.StatusEnquiryHot] +
		byStatus[models.StatusEnquiryWarm] +
		byStatus[models.StatusDocumentsPending]

	return &dto.DashboardStats{
		TotalApplications:   totalApps,
		ApplicationsByState: byStatus,
		PendingApplications: pending,
		ActiveStudents:      activeStudents,
		StudentsByClass:     byClass,
		AttendanceToday:     attendance,
		FeesCollected:       fees,
		RecentApplications:  recentViews,
		GeneratedAt:         s.now().Format(time.RFC3339),
	}, nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type dashboardProgressReader interface {
	StudentSummary(ctx context.Context, studentID string) (*models.DashboardSummary, error)
	RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error)
}

type inspirationRepository interface {
	EnsureForDate(ctx context.Context, date string) error
	FindByDate(ctx context.Context, date string) (*models.DailyInspiration, error)
}

// DashboardConfig tunes the dashboard assembly.
type DashboardConfig struct {
	RecentFeedLimit    int
	CacheTTL           time.Duration
	InspirationEnabled bool
	InspirationTTL     time.Duration
}

// DashboardService assembles the student dashboard: headline counters, the
// recent progress feed and the daily inspiration. Display aggregates are
// cached; the underlying progress and point rows never are.
type DashboardService struct {
	progress    dashboardProgressReader
	inspiration inspirationRepository
	cache       *CacheService
	cfg         DashboardConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(progress dashboardProgressReader, inspiration inspirationRepository, cache *CacheService, cfg DashboardConfig, logger *zap.Logger) *DashboardService {
	if cfg.RecentFeedLimit <= 0 {
		cfg.RecentFeedLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		progress:    progress,
		inspiration: inspiration,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StudentDashboard builds the full dashboard payload for a student.
func (s *DashboardService) StudentDashboard(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", studentID)
	var cached models.StudentDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	summary, err := s.progress.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard summary")
	}
	recent, err := s.progress.RecentByStudent(ctx, studentID, s.cfg.RecentFeedLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent progress")
	}

	dashboard := &models.StudentDashboard{
		StudentID: studentID,
		Summary:   *summary,
		Recent:    recent,
	}

	if s.cfg.InspirationEnabled {
		inspiration, err := s.DailyInspiration(ctx)
		if err != nil {
			// The dashboard degrades without its inspiration block rather
			// than failing the whole request.
			s.logger.Warn("daily inspiration unavailable", zap.Error(err))
		} else {
			dashboard.Inspiration = inspiration
		}
	}

	if err := s.cache.Set(ctx, cacheKey, dashboard, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return dashboard, nil
}

// DailyInspiration returns today's rotated quote, verse and message,
// creating the row on first request of the day.
func (s *DashboardService) DailyInspiration(ctx context.Context) (*models.DailyInspiration, error) {
	date := s.now().Format("2006-01-02")
	cacheKey := fmt.Sprintf("inspiration:%s", date)
	var cached models.DailyInspiration
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if err := s.inspiration.EnsureForDate(ctx, date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate daily inspiration")
	}
	inspiration, err := s.inspiration.FindByDate(ctx, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no inspiration content available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily inspiration")
	}

	if err := s.cache.Set(ctx, cacheKey, inspiration, s.cfg.InspirationTTL); err != nil {
		s.logger.Warn("inspiration cache write failed", zap.Error(err))
	}
	return inspiration, nil
}

// InvalidateStudent drops the cached dashboard of one student.
func (s *DashboardService) InvalidateStudent(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s", studentID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

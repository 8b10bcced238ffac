package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
)

type fakeDashboardProgressReader struct {
	summary models.DashboardSummary
	recent  []models.ProgressEvent
}

func (f *fakeDashboardProgressReader) StudentSummary(ctx context.Context, studentID string) (*models.DashboardSummary, error) {
	copied := f.summary
	return &copied, nil
}

func (f *fakeDashboardProgressReader) RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeInspirationRepo struct {
	ensured []string
	row     *models.DailyInspiration
}

func (f *fakeInspirationRepo) EnsureForDate(ctx context.Context, date string) error {
	f.ensured = append(f.ensured, date)
	return nil
}

func (f *fakeInspirationRepo) FindByDate(ctx context.Context, date string) (*models.DailyInspiration, error) {
	copied := *f.row
	copied.Date = date
	return &copied, nil
}

func TestStudentDashboardAssemblesSummaryFeedAndInspiration(t *testing.T) {
	quote := "Keep going"
	progress := &fakeDashboardProgressReader{
		summary: models.DashboardSummary{TotalClasses: 3, LessonsCompleted: 7},
		recent: []models.ProgressEvent{
			{LessonID: "lesson-1", Status: models.ProgressStatusCompleted},
			{LessonID: "lesson-2", Status: models.ProgressStatusInProgress},
		},
	}
	inspiration := &fakeInspirationRepo{row: &models.DailyInspiration{ID: "insp-1", Quote: &quote}}
	svc := NewDashboardService(progress, inspiration, nil, DashboardConfig{
		RecentFeedLimit:    5,
		InspirationEnabled: true,
	}, zap.NewNop())

	dashboard, err := svc.StudentDashboard(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, "stu-1", dashboard.StudentID)
	require.Equal(t, 3, dashboard.Summary.TotalClasses)
	require.Len(t, dashboard.Recent, 2)
	require.NotNil(t, dashboard.Inspiration)
	require.Equal(t, "Keep going", *dashboard.Inspiration.Quote)
	require.Len(t, inspiration.ensured, 1)
}

func TestStudentDashboardSkipsInspirationWhenDisabled(t *testing.T) {
	progress := &fakeDashboardProgressReader{}
	inspiration := &fakeInspirationRepo{row: &models.DailyInspiration{ID: "insp-1"}}
	svc := NewDashboardService(progress, inspiration, nil, DashboardConfig{}, zap.NewNop())

	dashboard, err := svc.StudentDashboard(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Nil(t, dashboard.Inspiration)
	require.Empty(t, inspiration.ensured)
}

func TestDailyInspirationEnsuresRowOncePerDate(t *testing.T) {
	inspiration := &fakeInspirationRepo{row: &models.DailyInspiration{ID: "insp-1"}}
	svc := NewDashboardService(&fakeDashboardProgressReader{}, inspiration, nil, DashboardConfig{InspirationEnabled: true}, zap.NewNop())

	first, err := svc.DailyInspiration(context.Background())
	require.NoError(t, err)
	second, err := svc.DailyInspiration(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Date, second.Date)
	// Without a cache each request re-runs the idempotent ensure.
	require.Len(t, inspiration.ensured, 2)
}

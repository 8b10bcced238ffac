package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type stubLessonReader struct {
	lessons map[string]*models.Lesson
}

func (s *stubLessonReader) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := s.lessons[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

type stubClassReader struct {
	classes map[string]*models.Class
}

func (s *stubClassReader) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := s.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type fakeProgressRepo struct {
	rows map[string]*models.Progress
}

func progressKey(lessonID, studentID string) string {
	return lessonID + "|" + studentID
}

func (f *fakeProgressRepo) FindByLessonAndStudent(ctx context.Context, exec sqlx.ExtContext, lessonID, studentID string) (*models.Progress, error) {
	if p, ok := f.rows[progressKey(lessonID, studentID)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProgressRepo) Insert(ctx context.Context, exec sqlx.ExtContext, progress *models.Progress) error {
	if f.rows == nil {
		f.rows = make(map[string]*models.Progress)
	}
	if progress.ID == "" {
		progress.ID = "prog-" + progress.LessonID + "-" + progress.StudentID
	}
	key := progressKey(progress.LessonID, progress.StudentID)
	if _, exists := f.rows[key]; exists {
		return nil
	}
	copied := *progress
	f.rows[key] = &copied
	return nil
}

func (f *fakeProgressRepo) MarkInProgress(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	for _, p := range f.rows {
		if p.ID == id {
			p.Status = models.ProgressStatusInProgress
			p.StartedAt = &at
		}
	}
	return nil
}

func (f *fakeProgressRepo) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	for _, p := range f.rows {
		if p.ID == id {
			p.Status = models.ProgressStatusCompleted
			p.CompletedAt = &at
		}
	}
	return nil
}

func (f *fakeProgressRepo) ClassSummary(ctx context.Context, classID, studentID string) (*models.ClassProgressSummary, error) {
	return &models.ClassProgressSummary{ClassID: classID}, nil
}

func (f *fakeProgressRepo) RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error) {
	return nil, nil
}

type fakePointsAwarder struct {
	awards map[string]int
}

func (f *fakePointsAwarder) IncrementPoints(ctx context.Context, exec sqlx.ExtContext, studentID string, delta int) error {
	if f.awards == nil {
		f.awards = make(map[string]int)
	}
	f.awards[studentID] += delta
	return nil
}

func newProgressFixture(t *testing.T, classStatus models.ClassStatus) (*ProgressService, *fakeProgressRepo, *fakePointsAwarder, sqlmock.Sqlmock) {
	tx, mock := newTxProviderMock(t)
	repo := &fakeProgressRepo{rows: map[string]*models.Progress{
		progressKey("lesson-1", "stu-1"): {
			ID:        "prog-1",
			ClassID:   "class-1",
			LessonID:  "lesson-1",
			StudentID: "stu-1",
			Status:    models.ProgressStatusNotStarted,
		},
	}}
	awarder := &fakePointsAwarder{}
	lessons := &stubLessonReader{lessons: map[string]*models.Lesson{
		"lesson-1": {ID: "lesson-1", ClassID: "class-1", Title: "Counting"},
	}}
	classes := &stubClassReader{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Status: classStatus},
	}}
	svc := NewProgressService(repo, lessons, classes, awarder, tx, 1, zap.NewNop())
	return svc, repo, awarder, mock
}

func TestProgressAdvanceFullLifecycleAwardsOnePoint(t *testing.T) {
	svc, repo, awarder, mock := newProgressFixture(t, models.ClassStatusActive)

	// Three advances: start, complete, then nothing more.
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	first, err := svc.Advance(context.Background(), "lesson-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusInProgress, first.Status)
	require.NotNil(t, first.StartedAt)
	require.Zero(t, awarder.awards["stu-1"])

	second, err := svc.Advance(context.Background(), "lesson-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusCompleted, second.Status)
	require.NotNil(t, second.CompletedAt)
	require.Equal(t, 1, awarder.awards["stu-1"])

	third, err := svc.Advance(context.Background(), "lesson-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusCompleted, third.Status)
	require.Equal(t, 1, awarder.awards["stu-1"])

	stored := repo.rows[progressKey("lesson-1", "stu-1")]
	require.Equal(t, models.ProgressStatusCompleted, stored.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressAdvanceRejectedWhenClassClosed(t *testing.T) {
	for _, status := range []models.ClassStatus{models.ClassStatusCompleted, models.ClassStatusCancelled} {
		svc, repo, awarder, mock := newProgressFixture(t, status)

		_, err := svc.Advance(context.Background(), "lesson-1", "stu-1")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		require.Equal(t, appErrors.ErrClassClosed.Code, appErr.Code)

		// Nothing mutated: no transaction, no state change, no points.
		require.Equal(t, models.ProgressStatusNotStarted, repo.rows[progressKey("lesson-1", "stu-1")].Status)
		require.Zero(t, awarder.awards["stu-1"])
		require.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestProgressAdvanceUnknownLesson(t *testing.T) {
	svc, _, _, _ := newProgressFixture(t, models.ClassStatusActive)

	_, err := svc.Advance(context.Background(), "lesson-missing", "stu-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgressAdvanceCreatesRowWhenBackfillMissing(t *testing.T) {
	svc, repo, _, mock := newProgressFixture(t, models.ClassStatusActive)
	delete(repo.rows, progressKey("lesson-1", "stu-1"))

	mock.ExpectBegin()
	mock.ExpectCommit()

	progress, err := svc.Advance(context.Background(), "lesson-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusInProgress, progress.Status)
	require.NotNil(t, progress.StartedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

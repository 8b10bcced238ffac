package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/lms-api/internal/models"
)

func TestProgressRepositoryBackfillForLesson(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status)")).
		WithArgs("lesson-1", "class-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.BackfillForLesson(context.Background(), nil, "class-1", "lesson-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryBackfillForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status)")).
		WithArgs("stu-1", "class-1").
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.BackfillForStudent(context.Background(), nil, "class-1", "stu-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryBackfillRunsInsideTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status)")).
		WithArgs("lesson-1", "class-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.BackfillForLesson(context.Background(), tx, "class-1", "lesson-1"))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryMarkCompleted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_progress SET status = $2, completed_at = $3 WHERE id = $1")).
		WithArgs("prog-1", models.ProgressStatusCompleted, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkCompleted(context.Background(), nil, "prog-1", at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryClassSummaryComputesPercent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	rows := sqlmock.NewRows([]string{"class_id", "not_started", "in_progress", "completed", "total_lessons"}).
		AddRow("class-1", 1, 1, 2, 4)
	mock.ExpectQuery("SELECT").
		WithArgs("class-1", "stu-1").
		WillReturnRows(rows)

	summary, err := repo.ClassSummary(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Completed)
	require.InDelta(t, 50.0, summary.PercentComplete, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryRecentByStudentOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"lesson_id", "lesson_title", "class_id", "status", "started_at", "completed_at"}).
		AddRow("lesson-2", "Fractions", "class-1", models.ProgressStatusCompleted, earlier, now).
		AddRow("lesson-1", "Counting", "class-1", models.ProgressStatusInProgress, earlier, nil)
	mock.ExpectQuery("ORDER BY GREATEST").
		WithArgs("stu-1", 5).
		WillReturnRows(rows)

	events, err := repo.RecentByStudent(context.Background(), "stu-1", 5)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "lesson-2", events[0].LessonID)
	require.NoError(t, mock.ExpectationsWereMet())
}

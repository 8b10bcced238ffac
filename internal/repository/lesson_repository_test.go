package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/lms-api/internal/models"
)

func TestLessonRepositoryNextSequenceNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM lessons WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(4))

	seq, err := repo.NextSequenceNumber(context.Background(), nil, "class-1")
	require.NoError(t, err)
	require.Equal(t, 4, seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).
		WithArgs(sqlmock.AnyArg(), "class-1", 1, "Counting", "Numbers 1-10", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	lesson := &models.Lesson{ClassID: "class-1", SequenceNumber: 1, Title: "Counting", Description: "Numbers 1-10"}
	require.NoError(t, repo.Create(context.Background(), nil, lesson))
	require.NotEmpty(t, lesson.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = $1")).
		WithArgs("lesson-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), nil, "lesson-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/lms-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryInsertIgnoresDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments (id, class_id, student_id, status, enrolled_at)")).
		WithArgs(sqlmock.AnyArg(), "class-1", "stu-1", models.EnrollmentStatusActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	enrollment := &models.Enrollment{ClassID: "class-1", StudentID: "stu-1"}
	require.NoError(t, repo.Insert(context.Background(), nil, enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByClassAndStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "enrolled_at"}).
		AddRow("enr-1", "class-1", "stu-1", models.EnrollmentStatusActive, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, student_id, status, enrolled_at FROM enrollments WHERE class_id = $1 AND student_id = $2")).
		WithArgs("class-1", "stu-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByClassAndStudent(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByClassIncludesAllStatuses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "enrolled_at"}).
		AddRow("enr-1", "class-1", "stu-1", models.EnrollmentStatusActive, time.Now()).
		AddRow("enr-2", "class-1", "stu-2", models.EnrollmentStatusDropped, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, student_id, status, enrolled_at FROM enrollments WHERE class_id = $1 ORDER BY enrolled_at ASC")).
		WithArgs("class-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Equal(t, models.EnrollmentStatusDropped, enrollments[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE class_id = $1 AND student_id = $2")).
		WithArgs("class-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), nil, "class-1", "stu-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

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

type fakeEnrollmentRepo struct {
	rows    map[string]*models.Enrollment
	deleted []string
}

func enrollKey(classID, studentID string) string {
	return classID + "|" + studentID
}

func (f *fakeEnrollmentRepo) Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if f.rows == nil {
		f.rows = make(map[string]*models.Enrollment)
	}
	key := enrollKey(enrollment.ClassID, enrollment.StudentID)
	if _, exists := f.rows[key]; exists {
		return nil
	}
	if enrollment.ID == "" {
		enrollment.ID = "enr-" + enrollment.StudentID
	}
	enrollment.Status = models.EnrollmentStatusActive
	enrollment.EnrolledAt = time.Now().UTC()
	copied := *enrollment
	f.rows[key] = &copied
	return nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	for _, e := range f.rows {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) FindByClassAndStudent(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	if e, ok := f.rows[enrollKey(classID, studentID)]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	var list []models.Enrollment
	for _, e := range f.rows {
		if e.ClassID == classID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	for _, e := range f.rows {
		if e.ID == id {
			e.Status = status
		}
	}
	return nil
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	f.deleted = append(f.deleted, enrollKey(classID, studentID))
	delete(f.rows, enrollKey(classID, studentID))
	return nil
}

type fakeProgressPurger struct {
	backfilled []string
	purged     []string
}

func (f *fakeProgressPurger) BackfillForStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	f.backfilled = append(f.backfilled, enrollKey(classID, studentID))
	return nil
}

func (f *fakeProgressPurger) DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	f.purged = append(f.purged, enrollKey(classID, studentID))
	return nil
}

type fakeSubmissionPurger struct {
	purged []string
}

func (f *fakeSubmissionPurger) DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	f.purged = append(f.purged, enrollKey(classID, studentID))
	return nil
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func newEnrollmentFixture(t *testing.T) (*EnrollmentService, *fakeEnrollmentRepo, *fakeProgressPurger, *fakeSubmissionPurger, sqlmock.Sqlmock) {
	tx, mock := newTxProviderMock(t)
	repo := &fakeEnrollmentRepo{rows: make(map[string]*models.Enrollment)}
	progress := &fakeProgressPurger{}
	submissions := &fakeSubmissionPurger{}
	classes := &stubClassReader{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Status: models.ClassStatusActive},
	}}
	svc := NewEnrollmentService(repo, progress, submissions, classes, tx, zap.NewNop())
	return svc, repo, progress, submissions, mock
}

func TestEnrollBackfillsProgressForExistingLessons(t *testing.T) {
	svc, _, progress, _, mock := newEnrollmentFixture(t)

	expectTx(mock)
	enrollment, err := svc.Enroll(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.Equal(t, []string{"class-1|stu-1"}, progress.backfilled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollUnknownClass(t *testing.T) {
	svc, _, _, _, _ := newEnrollmentFixture(t)

	_, err := svc.Enroll(context.Background(), "class-missing", "stu-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollDuplicateReturnsExistingUnchanged(t *testing.T) {
	svc, repo, progress, _, mock := newEnrollmentFixture(t)

	expectTx(mock)
	first, err := svc.Enroll(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)

	// Drop the student, then enroll again: the stored row wins, status intact.
	repo.rows[enrollKey("class-1", "stu-1")].Status = models.EnrollmentStatusDropped

	expectTx(mock)
	second, err := svc.Enroll(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.EnrollmentStatusDropped, second.Status)
	// The backfill runs both times; ON CONFLICT makes the second a no-op in SQL.
	require.Len(t, progress.backfilled, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePurgesProgressAndSubmissions(t *testing.T) {
	svc, repo, progress, submissions, mock := newEnrollmentFixture(t)

	expectTx(mock)
	_, err := svc.Enroll(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)

	expectTx(mock)
	require.NoError(t, svc.Remove(context.Background(), "class-1", "stu-1"))

	require.Equal(t, []string{"class-1|stu-1"}, progress.purged)
	require.Equal(t, []string{"class-1|stu-1"}, submissions.purged)
	require.Empty(t, repo.rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveAbsentEnrollmentIsNoOp(t *testing.T) {
	svc, _, _, _, mock := newEnrollmentFixture(t)

	expectTx(mock)
	require.NoError(t, svc.Remove(context.Background(), "class-1", "stu-unknown"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetEnrollmentStatusRejectsUnknownLiteral(t *testing.T) {
	svc, _, _, _, _ := newEnrollmentFixture(t)

	_, err := svc.SetStatus(context.Background(), "enr-1", models.EnrollmentStatus("paused"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestSetEnrollmentStatusHasNoTerminalState(t *testing.T) {
	svc, _, _, _, mock := newEnrollmentFixture(t)

	expectTx(mock)
	enrollment, err := svc.Enroll(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)

	// completed -> active is legal; the roster models correction.
	updated, err := svc.SetStatus(context.Background(), enrollment.ID, models.EnrollmentStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusCompleted, updated.Status)

	reverted, err := svc.SetStatus(context.Background(), enrollment.ID, models.EnrollmentStatusActive)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, reverted.Status)
}

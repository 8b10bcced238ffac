package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type enrollmentRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByClassAndStudent(ctx context.Context, classID, studentID string) (*models.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error
}

type enrollmentProgressRepository interface {
	BackfillForStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error
	DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error
}

type enrollmentSubmissionRepository interface {
	DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error
}

// EnrollmentService manages the roster of a class and the progress cascade
// attached to it. Points already awarded are never clawed back by removal.
type EnrollmentService struct {
	repo        enrollmentRepository
	progress    enrollmentProgressRepository
	submissions enrollmentSubmissionRepository
	classes     lessonClassReader
	tx          txProvider
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, progress enrollmentProgressRepository, submissions enrollmentSubmissionRepository, classes lessonClassReader, tx txProvider, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, progress: progress, submissions: submissions, classes: classes, tx: tx, logger: logger}
}

// Enroll adds a student to a class and backfills a not_started progress row
// for every existing lesson. Enrolling twice returns the existing enrollment
// unchanged.
func (s *EnrollmentService) Enroll(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	enrollment := &models.Enrollment{ClassID: classID, StudentID: studentID}
	if err = s.repo.Insert(ctx, tx, enrollment); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
		return nil, err
	}
	if err = s.progress.BackfillForStudent(ctx, tx, classID, studentID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to backfill enrollment progress")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
		return nil, err
	}

	// On a duplicate the insert was a no-op; return the row that actually
	// exists, status included.
	stored, err := s.repo.FindByClassAndStudent(ctx, classID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	s.logger.Info("student enrolled",
		zap.String("class_id", classID),
		zap.String("student_id", studentID))
	return stored, nil
}

// Remove purges the enrollment together with the student's progress rows and
// submissions in that class. Removing an absent enrollment is a no-op.
func (s *EnrollmentService) Remove(ctx context.Context, classID, studentID string) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.submissions.DeleteByClassAndStudent(ctx, tx, classID, studentID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submissions")
		return err
	}
	if err = s.progress.DeleteByClassAndStudent(ctx, tx, classID, studentID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete progress")
		return err
	}
	if err = s.repo.Delete(ctx, tx, classID, studentID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit removal")
		return err
	}

	s.logger.Info("student removed from class",
		zap.String("class_id", classID),
		zap.String("student_id", studentID))
	return nil
}

// SetStatus moves an enrollment between active, dropped and completed. Any
// transition between valid statuses is allowed.
func (s *EnrollmentService) SetStatus(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) (*models.Enrollment, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "unrecognised enrollment status")
	}
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.UpdateStatus(ctx, enrollment.ID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	enrollment.Status = status
	return enrollment, nil
}

// ListByClass returns every enrollment of a class regardless of status.
func (s *EnrollmentService) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

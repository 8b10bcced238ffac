package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert persists a new enrollment. The unique (class_id, student_id) pair
// makes the call idempotent; a duplicate is silently ignored.
func (r *EnrollmentRepository) Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, class_id, student_id, status, enrolled_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (class_id, student_id) DO NOTHING`
	if _, err := r.exec(exec).ExecContext(ctx, query,
		enrollment.ID, enrollment.ClassID, enrollment.StudentID, enrollment.Status, enrollment.EnrolledAt); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, status, enrolled_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByClassAndStudent returns the enrollment for the unique pair.
func (r *EnrollmentRepository) FindByClassAndStudent(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, status, enrolled_at FROM enrollments WHERE class_id = $1 AND student_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, classID, studentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByClass returns every enrollment in a class regardless of status.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, status, enrolled_at FROM enrollments WHERE class_id = $1 ORDER BY enrolled_at ASC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list class enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateStatus writes a new lifecycle status for an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes the enrollment row for the pair, if present.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	const query = `DELETE FROM enrollments WHERE class_id = $1 AND student_id = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, classID, studentID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// SubmissionRepository handles persistence of activity submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert creates the submission or refreshes answer, file and submitted_at on
// the unique (activity_id, student_id) pair. Score and feedback survive a
// re-submission; only an explicit regrade touches them.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, activity_id, student_id, text_answer, file_path, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (activity_id, student_id) DO UPDATE SET
            text_answer = EXCLUDED.text_answer,
            file_path = EXCLUDED.file_path,
            submitted_at = EXCLUDED.submitted_at`
	if _, err := r.db.ExecContext(ctx, query,
		submission.ID, submission.ActivityID, submission.StudentID, submission.TextAnswer, submission.FilePath, submission.SubmittedAt); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by its ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT id, activity_id, student_id, text_answer, file_path, submitted_at, score, feedback FROM submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByActivityAndStudent returns the submission for the unique pair.
func (r *SubmissionRepository) FindByActivityAndStudent(ctx context.Context, activityID, studentID string) (*models.Submission, error) {
	const query = `SELECT id, activity_id, student_id, text_answer, file_path, submitted_at, score, feedback FROM submissions WHERE activity_id = $1 AND student_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, activityID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateScore records a grade and feedback for a submission.
func (r *SubmissionRepository) UpdateScore(ctx context.Context, id string, score float64, feedback string) error {
	const query = `UPDATE submissions SET score = $2, feedback = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score, feedback); err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	return nil
}

// DeleteByClassAndStudent removes all submissions a student made against
// activities of one class.
func (r *SubmissionRepository) DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	const query = `DELETE FROM submissions s USING activities a
        WHERE s.activity_id = a.id AND a.class_id = $1 AND s.student_id = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, classID, studentID); err != nil {
		return fmt.Errorf("delete submissions by class and student: %w", err)
	}
	return nil
}

// Roster enumerates every enrolled student of the activity's class together
// with their submission, if any.
func (r *SubmissionRepository) Roster(ctx context.Context, activityID string) ([]models.RosterRow, error) {
	const query = `SELECT e.student_id, e.status AS enrollment_status,
            s.id AS submission_id, s.submitted_at, s.score, s.feedback
        FROM activities a
        JOIN enrollments e ON e.class_id = a.class_id
        LEFT JOIN submissions s ON s.activity_id = a.id AND s.student_id = e.student_id
        WHERE a.id = $1
        ORDER BY e.student_id ASC`
	var rows []models.RosterRow
	if err := r.db.SelectContext(ctx, &rows, query, activityID); err != nil {
		return nil, fmt.Errorf("activity roster: %w", err)
	}
	return rows, nil
}

// ClassScore sums a student's scores and the class's max scores. Activities
// without a submission contribute zero to the numerator and their max score
// to the denominator.
func (r *SubmissionRepository) ClassScore(ctx context.Context, classID, studentID string) (*models.StudentClassScore, error) {
	const query = `SELECT $1 AS class_id, $2 AS student_id,
            COALESCE(SUM(s.score), 0) AS total_score,
            COALESCE(SUM(a.max_score), 0) AS max_score
        FROM activities a
        LEFT JOIN submissions s ON s.activity_id = a.id AND s.student_id = $2
        WHERE a.class_id = $1`
	var score models.StudentClassScore
	if err := r.db.GetContext(ctx, &score, query, classID, studentID); err != nil {
		return nil, fmt.Errorf("class score: %w", err)
	}
	if score.MaxScore > 0 {
		score.Percent = score.TotalScore / score.MaxScore * 100
	}
	return &score, nil
}

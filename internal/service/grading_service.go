package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type activityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	ListByClass(ctx context.Context, classID string) ([]models.Activity, error)
	UpdateMetadata(ctx context.Context, activity *models.Activity) error
}

type submissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByActivityAndStudent(ctx context.Context, activityID, studentID string) (*models.Submission, error)
	UpdateScore(ctx context.Context, id string, score float64, feedback string) error
	Roster(ctx context.Context, activityID string) ([]models.RosterRow, error)
	ClassScore(ctx context.Context, classID, studentID string) (*models.StudentClassScore, error)
}

// CreateActivityRequest describes activity creation payload.
type CreateActivityRequest struct {
	LessonID     *string    `json:"lesson_id"`
	Title        string     `json:"title" validate:"required"`
	Instructions string     `json:"instructions"`
	DueDate      *time.Time `json:"due_date"`
	MaxScore     float64    `json:"max_score" validate:"gt=0"`
	FilePath     *string    `json:"file_path"`
}

// SubmitRequest carries a student's answer to an activity.
type SubmitRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	TextAnswer *string `json:"text_answer"`
	FilePath   *string `json:"file_path"`
}

// GradeRequest carries a teacher's score and feedback for a submission.
type GradeRequest struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// GradingService manages activities, submissions and grade aggregation.
type GradingService struct {
	activities  activityRepository
	submissions submissionRepository
	classes     lessonClassReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradingService constructs GradingService.
func NewGradingService(activities activityRepository, submissions submissionRepository, classes lessonClassReader, validate *validator.Validate, logger *zap.Logger) *GradingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{
		activities:  activities,
		submissions: submissions,
		classes:     classes,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateActivity attaches a gradable activity to a class.
func (s *GradingService) CreateActivity(ctx context.Context, classID string, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	activity := &models.Activity{
		ClassID:      classID,
		LessonID:     req.LessonID,
		Title:        req.Title,
		Instructions: req.Instructions,
		DueDate:      req.DueDate,
		MaxScore:     req.MaxScore,
		FilePath:     req.FilePath,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

// ListActivities returns the activities of a class.
func (s *GradingService) ListActivities(ctx context.Context, classID string) ([]models.Activity, error) {
	activities, err := s.activities.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// Submit records or replaces the student's answer to an activity. An earlier
// grade survives a re-submission untouched. Closed classes reject the call.
func (s *GradingService) Submit(ctx context.Context, activityID string, req SubmitRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	class, err := s.classes.FindByID(ctx, activity.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status.Closed() {
		return nil, appErrors.Clone(appErrors.ErrClassClosed, "class is closed for submissions")
	}

	submission := &models.Submission{
		ActivityID:  activityID,
		StudentID:   req.StudentID,
		TextAnswer:  req.TextAnswer,
		FilePath:    req.FilePath,
		SubmittedAt: s.now(),
	}
	if err := s.submissions.Upsert(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}

	// On re-submission the upsert keeps the stored row's identity and any
	// existing grade; read it back so the caller sees the real state.
	stored, err := s.submissions.FindByActivityAndStudent(ctx, activityID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return stored, nil
}

// GetSubmission returns a submission by its ID.
func (s *GradingService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// Grade records a score and feedback on a submission. Scores are bounded by
// the activity's max score; regrading overwrites the earlier grade.
func (s *GradingService) Grade(ctx context.Context, submissionID string, req GradeRequest) (*models.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	activity, err := s.activities.FindByID(ctx, submission.ActivityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if req.Score < 0 || req.Score > activity.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrInvalidScore, "score must be between 0 and the activity max score")
	}
	if err := s.submissions.UpdateScore(ctx, submissionID, req.Score, req.Feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}
	submission.Score = &req.Score
	submission.Feedback = &req.Feedback
	s.logger.Info("submission graded",
		zap.String("submission_id", submissionID),
		zap.Float64("score", req.Score))
	return submission, nil
}

// Roster lists every enrolled student of the activity's class with their
// submission state, including derived lateness.
func (s *GradingService) Roster(ctx context.Context, activityID string) ([]models.RosterRow, error) {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	rows, err := s.submissions.Roster(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	for i := range rows {
		rows[i].Submitted = rows[i].SubmissionID != nil
		// Lateness is derived at read time, never stored: a submission is
		// late when it landed after the due date. No due date, never late.
		if rows[i].SubmittedAt != nil && activity.DueDate != nil {
			rows[i].IsLate = rows[i].SubmittedAt.After(*activity.DueDate)
		}
	}
	return rows, nil
}

// StudentClassScore aggregates a student's grade across all activities of a
// class. Ungraded and missing submissions count zero while every activity's
// max score weighs the denominator.
func (s *GradingService) StudentClassScore(ctx context.Context, classID, studentID string) (*models.StudentClassScore, error) {
	score, err := s.submissions.ClassScore(ctx, classID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate class score")
	}
	return score, nil
}

package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type progressRepository interface {
	FindByLessonAndStudent(ctx context.Context, exec sqlx.ExtContext, lessonID, studentID string) (*models.Progress, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, progress *models.Progress) error
	MarkInProgress(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error
	MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error
	ClassSummary(ctx context.Context, classID, studentID string) (*models.ClassProgressSummary, error)
	RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error)
}

type progressLessonReader interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

type pointsAwarder interface {
	IncrementPoints(ctx context.Context, exec sqlx.ExtContext, studentID string, delta int) error
}

// ProgressService drives the per-lesson progress state machine. A lesson
// moves not_started -> in_progress -> completed, never backwards, and the
// completion point is awarded exactly once, in the same transaction as the
// status change.
type ProgressService struct {
	repo            progressRepository
	lessons         progressLessonReader
	classes         lessonClassReader
	rewards         pointsAwarder
	tx              txProvider
	pointsPerLesson int
	logger          *zap.Logger
	now             func() time.Time
}

// NewProgressService constructs ProgressService.
func NewProgressService(repo progressRepository, lessons progressLessonReader, classes lessonClassReader, rewards pointsAwarder, tx txProvider, pointsPerLesson int, logger *zap.Logger) *ProgressService {
	if pointsPerLesson <= 0 {
		pointsPerLesson = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		repo:            repo,
		lessons:         lessons,
		classes:         classes,
		rewards:         rewards,
		tx:              tx,
		pointsPerLesson: pointsPerLesson,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Advance moves the student's progress for a lesson one step forward. A
// first click starts the lesson, a second completes it and awards the point,
// any further click is a silent no-op. Closed classes reject the call
// without mutating anything.
func (s *ProgressService) Advance(ctx context.Context, lessonID, studentID string) (*models.Progress, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	class, err := s.classes.FindByID(ctx, lesson.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status.Closed() {
		return nil, appErrors.Clone(appErrors.ErrClassClosed, "class is closed for progress updates")
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

	at := s.now()
	progress, err := s.repo.FindByLessonAndStudent(ctx, tx, lessonID, studentID)
	if err != nil {
		if err != sql.ErrNoRows {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
			return nil, err
		}
		// Enrollment predates the backfill cascades only in legacy data;
		// create the row on the fly, already started.
		progress = &models.Progress{
			ClassID:   lesson.ClassID,
			LessonID:  lessonID,
			StudentID: studentID,
			Status:    models.ProgressStatusInProgress,
			StartedAt: &at,
		}
		if err = s.repo.Insert(ctx, tx, progress); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create progress")
			return nil, err
		}
	} else {
		switch progress.Status {
		case models.ProgressStatusNotStarted:
			if err = s.repo.MarkInProgress(ctx, tx, progress.ID, at); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start lesson")
				return nil, err
			}
			progress.Status = models.ProgressStatusInProgress
			progress.StartedAt = &at
		case models.ProgressStatusInProgress:
			if err = s.repo.MarkCompleted(ctx, tx, progress.ID, at); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete lesson")
				return nil, err
			}
			if err = s.rewards.IncrementPoints(ctx, tx, studentID, s.pointsPerLesson); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to award points")
				return nil, err
			}
			progress.Status = models.ProgressStatusCompleted
			progress.CompletedAt = &at
		case models.ProgressStatusCompleted:
			// Already done; nothing to advance and no extra point.
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit progress")
		return nil, err
	}

	s.logger.Info("progress advanced",
		zap.String("lesson_id", lessonID),
		zap.String("student_id", studentID),
		zap.String("status", string(progress.Status)))
	return progress, nil
}

// Get returns the student's progress row for a lesson.
func (s *ProgressService) Get(ctx context.Context, lessonID, studentID string) (*models.Progress, error) {
	progress, err := s.repo.FindByLessonAndStudent(ctx, nil, lessonID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "progress not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return progress, nil
}

// ClassSummary aggregates the progress rows of a class. A non-empty
// studentID scopes the summary to that student.
func (s *ProgressService) ClassSummary(ctx context.Context, classID, studentID string) (*models.ClassProgressSummary, error) {
	summary, err := s.repo.ClassSummary(ctx, classID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise progress")
	}
	return summary, nil
}

// RecentForStudent returns the student's latest progress events.
func (s *ProgressService) RecentForStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error) {
	events, err := s.repo.RecentByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent progress")
	}
	return events, nil
}

package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type lessonRepository interface {
	NextSequenceNumber(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListByClass(ctx context.Context, classID string) ([]models.Lesson, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	Reorder(ctx context.Context, exec sqlx.ExtContext, classID string, lessonIDs []string) error
}

type progressBackfiller interface {
	BackfillForLesson(ctx context.Context, exec sqlx.ExtContext, classID, lessonID string) error
	DeleteByLesson(ctx context.Context, exec sqlx.ExtContext, lessonID string) error
}

type lessonClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CreateLessonRequest describes lesson creation payload.
type CreateLessonRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	FilePath    *string `json:"file_path"`
}

// ReorderLessonsRequest carries the desired lesson ID order.
type ReorderLessonsRequest struct {
	LessonIDs []string `json:"lesson_ids" validate:"required,min=1,dive,required"`
}

// LessonService manages lessons and the progress backfill cascade that keeps
// every enrollment's progress rows in step with the lesson list.
type LessonService struct {
	repo      lessonRepository
	progress  progressBackfiller
	classes   lessonClassReader
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs LessonService.
func NewLessonService(repo lessonRepository, progress progressBackfiller, classes lessonClassReader, tx txProvider, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, progress: progress, classes: classes, tx: tx, validator: validate, logger: logger}
}

// Create adds a lesson to a class and backfills a not_started progress row
// for every enrollment, whatever its status, in one transaction.
func (s *LessonService) Create(ctx context.Context, classID string, req CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
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

	seq, err := s.repo.NextSequenceNumber(ctx, tx, classID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign lesson sequence")
		return nil, err
	}

	lesson := &models.Lesson{
		ClassID:        classID,
		SequenceNumber: seq,
		Title:          req.Title,
		Description:    req.Description,
		FilePath:       req.FilePath,
	}
	if err = s.repo.Create(ctx, tx, lesson); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
		return nil, err
	}

	if err = s.progress.BackfillForLesson(ctx, tx, classID, lesson.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to backfill lesson progress")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lesson creation")
		return nil, err
	}

	s.logger.Info("lesson created",
		zap.String("lesson_id", lesson.ID),
		zap.String("class_id", classID),
		zap.Int("sequence", lesson.SequenceNumber))
	return lesson, nil
}

// ListByClass returns a class's lessons in sequence order.
func (s *LessonService) ListByClass(ctx context.Context, classID string) ([]models.Lesson, error) {
	lessons, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

// Delete removes a lesson together with all of its progress rows.
func (s *LessonService) Delete(ctx context.Context, lessonID string) error {
	if _, err := s.repo.FindByID(ctx, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.progress.DeleteByLesson(ctx, tx, lessonID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson progress")
		return err
	}
	if err = s.repo.Delete(ctx, tx, lessonID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lesson deletion")
		return err
	}
	return nil
}

// Reorder rewrites the sequence numbers of a class's lessons.
func (s *LessonService) Reorder(ctx context.Context, classID string, req ReorderLessonsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.Reorder(ctx, tx, classID, req.LessonIDs); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder lessons")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lesson reorder")
		return err
	}
	return nil
}

package models

import "time"

// ProgressStatus represents a student's completion state for one lesson.
type ProgressStatus string

// Progress advances not_started -> in_progress -> completed and never regresses.
const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

// Progress is a student's completion record for one lesson. Unique per
// (class_id, lesson_id, student_id); rows are created by the backfill
// cascades, never by direct user action.
type Progress struct {
	ID          string         `db:"id" json:"id"`
	ClassID     string         `db:"class_id" json:"class_id"`
	LessonID    string         `db:"lesson_id" json:"lesson_id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	Status      ProgressStatus `db:"status" json:"status"`
	StartedAt   *time.Time     `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

// ClassProgressSummary aggregates progress rows for a class, optionally
// scoped to a single student.
type ClassProgressSummary struct {
	ClassID         string  `db:"class_id" json:"class_id"`
	NotStarted      int     `db:"not_started" json:"not_started"`
	InProgress      int     `db:"in_progress" json:"in_progress"`
	Completed       int     `db:"completed" json:"completed"`
	TotalLessons    int     `db:"total_lessons" json:"total_lessons"`
	PercentComplete float64 `json:"percent_complete"`
}

// ProgressEvent is one entry of the recent-progress feed, ordered by the
// later of started_at and completed_at.
type ProgressEvent struct {
	LessonID    string         `db:"lesson_id" json:"lesson_id"`
	LessonTitle string         `db:"lesson_title" json:"lesson_title"`
	ClassID     string         `db:"class_id" json:"class_id"`
	Status      ProgressStatus `db:"status" json:"status"`
	StartedAt   *time.Time     `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

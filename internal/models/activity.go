package models

import "time"

// Activity is a gradable assignment attached to a class, optionally to a
// specific lesson.
type Activity struct {
	ID           string     `db:"id" json:"id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	LessonID     *string    `db:"lesson_id" json:"lesson_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Instructions string     `db:"instructions" json:"instructions"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	MaxScore     float64    `db:"max_score" json:"max_score"`
	FilePath     *string    `db:"file_path" json:"file_path,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

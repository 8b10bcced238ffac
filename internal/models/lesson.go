package models

import "time"

// Lesson is one unit of material inside a class, ordered by sequence number.
type Lesson struct {
	ID             string    `db:"id" json:"id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	SequenceNumber int       `db:"sequence_number" json:"sequence_number"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	FilePath       *string   `db:"file_path" json:"file_path,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

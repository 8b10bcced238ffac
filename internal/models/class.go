package models

import "time"

// ClassStatus represents the lifecycle of a class.
type ClassStatus string

// Possible class statuses. A class is archived by status, never deleted.
const (
	ClassStatusActive    ClassStatus = "active"
	ClassStatusCompleted ClassStatus = "completed"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Valid reports whether the status is a recognised literal.
func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusActive, ClassStatusCompleted, ClassStatusCancelled:
		return true
	}
	return false
}

// Closed reports whether the class no longer accepts progress or submission mutations.
func (s ClassStatus) Closed() bool {
	return s == ClassStatusCompleted || s == ClassStatusCancelled
}

// Class binds a teacher, subject and section for one course offering.
type Class struct {
	ID        string      `db:"id" json:"id"`
	TeacherID string      `db:"teacher_id" json:"teacher_id"`
	SubjectID string      `db:"subject_id" json:"subject_id"`
	SectionID string      `db:"section_id" json:"section_id"`
	Status    ClassStatus `db:"status" json:"status"`
	Color     string      `db:"color" json:"color"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

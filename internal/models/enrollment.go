package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. No state is terminal; the roster models
// correction, not a strict workflow.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Valid reports whether the status is a recognised literal.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusDropped, EnrollmentStatusCompleted:
		return true
	}
	return false
}

// Enrollment captures a student's membership in a class. Unique per
// (class_id, student_id).
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

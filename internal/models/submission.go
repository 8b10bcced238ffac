package models

import "time"

// Submission is a student's response to an activity. Unique per
// (activity_id, student_id); re-submission updates the row in place.
type Submission struct {
	ID          string    `db:"id" json:"id"`
	ActivityID  string    `db:"activity_id" json:"activity_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	TextAnswer  *string   `db:"text_answer" json:"text_answer,omitempty"`
	FilePath    *string   `db:"file_path" json:"file_path,omitempty"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Score       *float64  `db:"score" json:"score,omitempty"`
	Feedback    *string   `db:"feedback" json:"feedback,omitempty"`
}

// Graded reports whether a score has been recorded.
func (s Submission) Graded() bool {
	return s.Score != nil
}

// RosterRow pairs an enrolled student with their submission, if any. Every
// enrolled student appears, including those who never submitted.
type RosterRow struct {
	StudentID        string           `db:"student_id" json:"student_id"`
	EnrollmentStatus EnrollmentStatus `db:"enrollment_status" json:"enrollment_status"`
	SubmissionID     *string          `db:"submission_id" json:"submission_id,omitempty"`
	SubmittedAt      *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	Score            *float64         `db:"score" json:"score,omitempty"`
	Feedback         *string          `db:"feedback" json:"feedback,omitempty"`
	IsLate           bool             `json:"is_late"`
	Submitted        bool             `json:"submitted"`
}

// StudentClassScore is the aggregate grade of one student across all
// activities of one class. Missing submissions count 0 toward the numerator
// while their activity's max score still weighs the denominator.
type StudentClassScore struct {
	ClassID    string  `db:"class_id" json:"class_id"`
	StudentID  string  `db:"student_id" json:"student_id"`
	TotalScore float64 `db:"total_score" json:"total_score"`
	MaxScore   float64 `db:"max_score" json:"max_score"`
	Percent    float64 `json:"percent"`
}

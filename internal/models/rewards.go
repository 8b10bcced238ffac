package models

import "time"

// StudentPoints is the single accumulating counter per student, incremented
// once per completed lesson.
type StudentPoints struct {
	StudentID string    `db:"student_id" json:"student_id"`
	Points    int       `db:"points" json:"points"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TrophyThreshold maps a point floor to a trophy label.
type TrophyThreshold struct {
	ID             string `db:"id" json:"id"`
	Label          string `db:"label" json:"label"`
	RequiredPoints int    `db:"required_points" json:"required_points"`
}

// StudentRewards combines the point total with the derived trophy tier.
type StudentRewards struct {
	StudentID string  `json:"student_id"`
	Points    int     `json:"points"`
	Trophy    *string `json:"trophy,omitempty"`
}

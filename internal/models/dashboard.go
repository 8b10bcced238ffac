package models

// DashboardSummary holds the headline counters of the student dashboard.
type DashboardSummary struct {
	TotalClasses      int `db:"total_classes" json:"total_classes"`
	ClassesActive     int `db:"classes_active" json:"classes_active"`
	ClassesCompleted  int `db:"classes_completed" json:"classes_completed"`
	LessonsCompleted  int `db:"lessons_completed" json:"lessons_completed"`
	LessonsInProgress int `db:"lessons_in_progress" json:"lessons_in_progress"`
}

// StudentDashboard is the full dashboard payload.
type StudentDashboard struct {
	StudentID   string            `json:"student_id"`
	Summary     DashboardSummary  `json:"summary"`
	Recent      []ProgressEvent   `json:"recent"`
	Inspiration *DailyInspiration `json:"inspiration,omitempty"`
}

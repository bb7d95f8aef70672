package models

// StudentStats bundles the figures the student dashboard shows.
type StudentStats struct {
	StudentID       string          `json:"student_id"`
	MonthlyReports  int             `json:"monthly_reports"`
	MonthlyVerses   int             `json:"monthly_verses"`
	LifetimeReports int             `json:"lifetime_reports"`
	Attendance      AttendanceStats `json:"attendance"`
}

// CenterStats summarises attendance across all active students.
type CenterStats struct {
	AttendanceRatePercent float64 `json:"attendance_rate_percent"`
	StudentsCounted       int     `json:"students_counted"`
}

// StatusCount is one row of the weekly attendance breakdown.
type StatusCount struct {
	Status AttendanceStatus `db:"status" json:"status"`
	Count  int              `db:"count" json:"count"`
}

// DashboardSummary is the landing page aggregate.
type DashboardSummary struct {
	TotalStudents  int           `json:"total_students"`
	TotalCircles   int           `json:"total_circles"`
	TotalReports   int           `json:"total_reports"`
	WeeklyStatuses []StatusCount `json:"weekly_statuses"`
	CenterRate     CenterStats   `json:"center_rate"`
}

package models

import "time"

// AchievementID identifies one badge rule.
type AchievementID string

const (
	AchievementExcellentReciter AchievementID = "excellent_reciter"
	AchievementYearVerses       AchievementID = "year_verses"
	AchievementSteadyAttendance AchievementID = "steady_attendance"
	AchievementCourseCompleted  AchievementID = "course_completed"
	AchievementTestDistinction  AchievementID = "test_distinction"
)

// AwardedAchievement is a badge a student has already earned. Awards are
// monotonic; this engine never revokes them.
type AwardedAchievement struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	AchievementID AchievementID `db:"achievement_id" json:"achievement_id"`
	AwardedAt     time.Time     `db:"awarded_at" json:"awarded_at"`
}

// TestScore is one exam result in a student's history.
type TestScore struct {
	Score    float64 `db:"score" json:"score"`
	MaxScore float64 `db:"max_score" json:"max_score"`
}

// StudentHistory is the snapshot the achievement engine evaluates. The
// service layer assembles it from persistence; the engine never reads state.
type StudentHistory struct {
	StudentID            string      `json:"student_id"`
	ExcellentGrades      int         `json:"excellent_grades"`
	VersesSinceYearStart int         `json:"verses_since_year_start"`
	PresentDaysInWindow  int         `json:"present_days_in_window"`
	CompletedEnrollments int         `json:"completed_enrollments"`
	TestScores           []TestScore `json:"test_scores"`
}

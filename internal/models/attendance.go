package models

import "time"

// AttendanceStatus enumerates the attendance outcomes a teacher can record.
// The collective report parser only ever emits the exception statuses;
// "present" is the implicit default a caller materializes separately.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceExcused   AttendanceStatus = "excused_absent"
	AttendanceUnexcused AttendanceStatus = "unexcused_absent"
	AttendanceFled      AttendanceStatus = "fled"
	AttendanceNotHeard  AttendanceStatus = "not_heard"
	AttendanceLate      AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceExcused, AttendanceUnexcused, AttendanceFled, AttendanceNotHeard, AttendanceLate:
		return true
	default:
		return false
	}
}

// AttendanceEvent is one attendance mark for a student on a date.
type AttendanceEvent struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceStats aggregates attendance over a date range. TotalValidDays
// excludes records on the configured rest weekday.
type AttendanceStats struct {
	Present        int     `json:"present"`
	Excused        int     `json:"excused"`
	Unexcused      int     `json:"unexcused"`
	Fled           int     `json:"fled"`
	NotHeard       int     `json:"not_heard"`
	Late           int     `json:"late"`
	TotalValidDays int     `json:"total_valid_days"`
	RatePercent    float64 `json:"rate_percent"`
}

package models

import "time"

// Student is an enrolled member of a memorization circle.
type Student struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Age          *int      `db:"age" json:"age,omitempty"`
	StudentPhone *string   `db:"student_phone" json:"student_phone,omitempty"`
	ParentPhone  *string   `db:"parent_phone" json:"parent_phone,omitempty"`
	CircleID     string    `db:"circle_id" json:"circle_id"`
	Active       bool      `db:"active" json:"active"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RosterEntry is the slice of a student the collective report parser needs.
type RosterEntry struct {
	ID          string `db:"id" json:"id"`
	DisplayName string `db:"full_name" json:"display_name"`
	CircleID    string `db:"circle_id" json:"circle_id"`
}

// Circle is a cohort of students taught together.
type Circle struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter scopes roster queries.
type StudentFilter struct {
	CircleID string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

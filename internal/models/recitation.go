package models

import "time"

// RepeatType says whether a recitation entry is new memorization or review.
type RepeatType string

const (
	RepeatNewMemorization RepeatType = "new_memorization"
	RepeatReview          RepeatType = "review"
)

// Valid returns true when the repeat type is a supported value.
func (t RepeatType) Valid() bool {
	return t == RepeatNewMemorization || t == RepeatReview
}

// Grade is the teacher's assessment of a recitation.
type Grade string

const (
	GradeExcellent  Grade = "excellent"
	GradeVeryGood   Grade = "very_good"
	GradeGood       Grade = "good"
	GradeAcceptable Grade = "acceptable"
)

// Valid returns true when the grade is a supported value.
func (g Grade) Valid() bool {
	switch g {
	case GradeExcellent, GradeVeryGood, GradeGood, GradeAcceptable:
		return true
	default:
		return false
	}
}

// RecitationReport records one recitation session entry for a student.
type RecitationReport struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"student_id"`
	TeacherID string     `db:"teacher_id" json:"teacher_id"`
	CircleID  string     `db:"circle_id" json:"circle_id"`
	Date      time.Time  `db:"date" json:"date"`
	Surah     string     `db:"surah" json:"surah"`
	FromVerse int        `db:"from_verse" json:"from_verse"`
	ToVerse   int        `db:"to_verse" json:"to_verse"`
	Repeat    RepeatType `db:"repeat_type" json:"repeat_type"`
	Grade     Grade      `db:"grade" json:"grade"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// VerseCount returns the inclusive number of verses the report covers.
func (r RecitationReport) VerseCount() int {
	return r.ToVerse - r.FromVerse + 1
}

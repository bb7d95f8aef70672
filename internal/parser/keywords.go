package parser

import (
	"strings"

	"github.com/hafs-center/markaz-api/internal/models"
)

// KeywordTable holds the signal vocabularies the parser matches against.
// The sets are data, not literals, so a deployment can swap the language or
// tests can inject a tiny table.
type KeywordTable struct {
	Excused   []string
	Unexcused []string
	Fled      []string
	NotHeard  []string
	Late      []string

	Review     []string
	Excellent  []string
	VeryGood   []string
	Acceptable []string
}

// DefaultKeywords returns the Arabic vocabulary of the source deployment.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		Excused:   []string{"✖️", "غائب بعذر", "مستأذن", "غياب", "غائب"},
		Unexcused: []string{"❌", "غائب بلا عذر"},
		Fled:      []string{"هروب", "🏃"},
		NotHeard:  []string{"لم يسمع"},
		Late:      []string{"⏰", "متأخر", "تأخر"},

		Review:     []string{"مراجعة"},
		Excellent:  []string{"ممتاز"},
		VeryGood:   []string{"جيد جدا", "جيد جداً"},
		Acceptable: []string{"مقبول"},
	}
}

// StatusOf classifies a raw line against the attendance keyword sets.
// Priority is fixed: excused > unexcused > fled > not-heard > late.
func (t KeywordTable) StatusOf(line string) (models.AttendanceStatus, bool) {
	switch {
	case containsAny(line, t.Excused):
		return models.AttendanceExcused, true
	case containsAny(line, t.Unexcused):
		return models.AttendanceUnexcused, true
	case containsAny(line, t.Fled):
		return models.AttendanceFled, true
	case containsAny(line, t.NotHeard):
		return models.AttendanceNotHeard, true
	case containsAny(line, t.Late):
		return models.AttendanceLate, true
	default:
		return "", false
	}
}

// HasAttendanceSignal reports whether any attendance keyword occurs in s.
func (t KeywordTable) HasAttendanceSignal(s string) bool {
	return containsAny(s, t.Excused) ||
		containsAny(s, t.Unexcused) ||
		containsAny(s, t.Fled) ||
		containsAny(s, t.NotHeard) ||
		containsAny(s, t.Late)
}

// GradeOf resolves the grade for a recitation remainder. Keyword priority is
// fixed (excellent > very good > acceptable), not first-in-line.
func (t KeywordTable) GradeOf(s string) models.Grade {
	switch {
	case containsAny(s, t.Excellent):
		return models.GradeExcellent
	case containsAny(s, t.VeryGood):
		return models.GradeVeryGood
	case containsAny(s, t.Acceptable):
		return models.GradeAcceptable
	default:
		return models.GradeGood
	}
}

// IsReview reports whether a review keyword occurs in s.
func (t KeywordTable) IsReview(s string) bool {
	return containsAny(s, t.Review)
}

func (t KeywordTable) isZero() bool {
	return t.Excused == nil && t.Unexcused == nil && t.Fled == nil &&
		t.NotHeard == nil && t.Late == nil && t.Review == nil &&
		t.Excellent == nil && t.VeryGood == nil && t.Acceptable == nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

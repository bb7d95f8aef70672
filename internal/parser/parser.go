package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/hafs-center/markaz-api/internal/models"
)

// DateLayout is the calendar format collective reports carry.
const DateLayout = "2006-01-02"

// SkipReason explains why a line produced no records.
type SkipReason string

const (
	SkipNoColon           SkipReason = "no_colon"
	SkipUnresolvedStudent SkipReason = "unresolved_student"
	SkipNoPattern         SkipReason = "no_pattern"
	SkipEmptyRecitation   SkipReason = "empty_recitation"
)

// SkippedLine records a dropped input line. Other than blank lines, every
// line that yields no record shows up here, so callers can observe and
// surface the drops.
type SkippedLine struct {
	LineNumber int        `json:"line_number"`
	Line       string     `json:"line"`
	Reason     SkipReason `json:"reason"`
}

// Result is the structured output of one parse call. Record order follows
// input line order; parsing the same text twice yields identical results.
type Result struct {
	Reports []models.RecitationReport `json:"reports"`
	Events  []models.AttendanceEvent  `json:"events"`
	Skipped []SkippedLine             `json:"skipped"`
}

// ImportNote marks records created through the collective importer.
const ImportNote = "تم الإضافة من التقرير الجماعي"

// Parser turns a teacher's free-form collective report message into
// recitation reports and attendance events. It holds only the roster
// snapshot and the keyword tables; it performs no I/O and keeps no state
// between calls.
type Parser struct {
	roster   Roster
	keywords KeywordTable
}

// New builds a parser over a roster snapshot. A zero KeywordTable is
// replaced with the default Arabic vocabulary.
func New(roster Roster, keywords KeywordTable) *Parser {
	if keywords.isZero() {
		keywords = DefaultKeywords()
	}
	return &Parser{roster: roster, keywords: keywords}
}

// Parse processes the whole message. A malformed date fails the entire
// call before any line is read; everything else is best effort, with
// dropped lines reported in Result.Skipped.
func (p *Parser) Parse(text, date string) (*Result, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse report date %q: %w", date, err)
	}

	result := &Result{}
	for i, raw := range strings.Split(text, "\n") {
		c, ok := Classify(raw, p.keywords)
		if !ok {
			continue
		}
		p.parseLine(i+1, c, day, result)
	}
	return result, nil
}

func (p *Parser) parseLine(lineNo int, c Classification, day time.Time, result *Result) {
	idx := strings.Index(c.Remainder, ":")
	if idx < 0 {
		result.Skipped = append(result.Skipped, SkippedLine{LineNumber: lineNo, Line: c.Remainder, Reason: SkipNoColon})
		return
	}

	namePart := strings.TrimSpace(c.Remainder[:idx])
	recitationPart := strings.TrimSpace(c.Remainder[idx+1:])

	student, ok := p.roster.Resolve(namePart)
	if !ok {
		result.Skipped = append(result.Skipped, SkippedLine{LineNumber: lineNo, Line: c.Remainder, Reason: SkipUnresolvedStudent})
		return
	}

	if c.HasStatus {
		note := ImportNote
		result.Events = append(result.Events, models.AttendanceEvent{
			StudentID: student.ID,
			Date:      day,
			Status:    c.Status,
			Notes:     &note,
		})
	}

	// An attendance keyword inside the recitation part suppresses the
	// report; the line-level event above still stands. A line that emits
	// no record at all is still reported, not swallowed.
	if recitationPart == "" || p.keywords.HasAttendanceSignal(recitationPart) {
		if !c.HasStatus {
			result.Skipped = append(result.Skipped, SkippedLine{LineNumber: lineNo, Line: c.Remainder, Reason: SkipEmptyRecitation})
		}
		return
	}

	rec, ok := ExtractRecitation(recitationPart, p.keywords)
	if !ok {
		result.Skipped = append(result.Skipped, SkippedLine{LineNumber: lineNo, Line: c.Remainder, Reason: SkipNoPattern})
		return
	}

	result.Reports = append(result.Reports, models.RecitationReport{
		StudentID: student.ID,
		Date:      day,
		Surah:     rec.Surah,
		FromVerse: rec.FromVerse,
		ToVerse:   rec.ToVerse,
		Repeat:    rec.Repeat,
		Grade:     rec.Grade,
	})
}

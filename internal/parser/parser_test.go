package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafs-center/markaz-api/internal/models"
)

func testRoster() Roster {
	return Roster{
		{ID: "s1", DisplayName: "أحمد علي", CircleID: "c1"},
		{ID: "s2", DisplayName: "محمد صالح", CircleID: "c1"},
		{ID: "s3", DisplayName: "خالد عمر", CircleID: "c1"},
	}
}

func TestClassifyBlankLines(t *testing.T) {
	kw := DefaultKeywords()

	_, ok := Classify("", kw)
	assert.False(t, ok)
	_, ok = Classify("   \t ", kw)
	assert.False(t, ok)
}

func TestClassifyStatusPriority(t *testing.T) {
	kw := DefaultKeywords()

	cases := []struct {
		line   string
		status models.AttendanceStatus
	}{
		{"أحمد: غائب بعذر", models.AttendanceExcused},
		{"أحمد: مستأذن اليوم", models.AttendanceExcused},
		{"أحمد ✖️", models.AttendanceExcused},
		{"أحمد: غائب بلا عذر", models.AttendanceExcused}, // "غائب" hits the excused set first
		{"أحمد ❌", models.AttendanceUnexcused},
		{"أحمد: هروب", models.AttendanceFled},
		{"أحمد 🏃", models.AttendanceFled},
		{"أحمد: لم يسمع", models.AttendanceNotHeard},
		{"أحمد: متأخر", models.AttendanceLate},
	}
	for _, tc := range cases {
		c, ok := Classify(tc.line, kw)
		require.True(t, ok, tc.line)
		require.True(t, c.HasStatus, tc.line)
		assert.Equal(t, tc.status, c.Status, tc.line)
	}

	c, ok := Classify("أحمد: البقرة 1-5", kw)
	require.True(t, ok)
	assert.False(t, c.HasStatus)
}

func TestClassifyStripsLeadingDecoration(t *testing.T) {
	kw := DefaultKeywords()

	c, ok := Classify("1. أحمد: البقرة 1-5", kw)
	require.True(t, ok)
	assert.Equal(t, "أحمد: البقرة 1-5", c.Remainder)

	c, ok = Classify("🔹- #2 محمد: الملك 10-20", kw)
	require.True(t, ok)
	assert.Equal(t, "محمد: الملك 10-20", c.Remainder)
}

func TestExtractRecitationReviewMarker(t *testing.T) {
	kw := DefaultKeywords()

	rec, ok := ExtractRecitation("سورة البقرة 1-5+", kw)
	require.True(t, ok)
	assert.Equal(t, "سورة البقرة", rec.Surah)
	assert.Equal(t, 1, rec.FromVerse)
	assert.Equal(t, 5, rec.ToVerse)
	assert.Equal(t, models.RepeatReview, rec.Repeat)
	assert.Equal(t, models.GradeGood, rec.Grade)
}

func TestExtractRecitationGradeKeywords(t *testing.T) {
	kw := DefaultKeywords()

	rec, ok := ExtractRecitation("النبأ 10-12 ممتاز", kw)
	require.True(t, ok)
	assert.Equal(t, models.GradeExcellent, rec.Grade)
	assert.Equal(t, models.RepeatNewMemorization, rec.Repeat)

	rec, ok = ExtractRecitation("النبأ 10-12 جيد جدا", kw)
	require.True(t, ok)
	assert.Equal(t, models.GradeVeryGood, rec.Grade)

	rec, ok = ExtractRecitation("النبأ 10-12 مقبول", kw)
	require.True(t, ok)
	assert.Equal(t, models.GradeAcceptable, rec.Grade)

	// Fixed priority, not first-in-line: excellent wins over acceptable.
	rec, ok = ExtractRecitation("النبأ 10-12 مقبول ممتاز", kw)
	require.True(t, ok)
	assert.Equal(t, models.GradeExcellent, rec.Grade)
}

func TestExtractRecitationConnectors(t *testing.T) {
	kw := DefaultKeywords()

	for _, text := range []string{"الملك 3-7", "الملك 3 ـ 7", "الملك 3 – 7"} {
		rec, ok := ExtractRecitation(text, kw)
		require.True(t, ok, text)
		assert.Equal(t, 3, rec.FromVerse, text)
		assert.Equal(t, 7, rec.ToVerse, text)
	}
}

func TestExtractRecitationReviewKeyword(t *testing.T) {
	kw := DefaultKeywords()

	rec, ok := ExtractRecitation("مراجعة الكهف 1-10", kw)
	require.True(t, ok)
	assert.Equal(t, models.RepeatReview, rec.Repeat)
}

func TestExtractRecitationNoPattern(t *testing.T) {
	kw := DefaultKeywords()

	_, ok := ExtractRecitation("حفظ ممتاز بدون أرقام", kw)
	assert.False(t, ok)

	_, ok = ExtractRecitation("", kw)
	assert.False(t, ok)
}

func TestExtractRecitationRejectsInvalidRange(t *testing.T) {
	kw := DefaultKeywords()

	// Reversed range.
	_, ok := ExtractRecitation("البقرة 5-1", kw)
	assert.False(t, ok)

	// Verse numbering starts at 1.
	_, ok = ExtractRecitation("البقرة 0-5", kw)
	assert.False(t, ok)

	// A single verse is still a valid range.
	rec, ok := ExtractRecitation("البقرة 7-7", kw)
	require.True(t, ok)
	assert.Equal(t, 7, rec.FromVerse)
	assert.Equal(t, 7, rec.ToVerse)
}

func TestParseDropsInvalidVerseRange(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	result, err := p.Parse("أحمد: البقرة 5-1", "2025-03-14")
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipNoPattern, result.Skipped[0].Reason)
}

func TestParseCollectiveReport(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	text := "1. أحمد: البقرة 1-5+\n" +
		"2. محمد: النبأ 10-12 ممتاز\n" +
		"\n" +
		"3. خالد: غائب بعذر ✖️\n" +
		"ملاحظة عامة بدون فاصلة\n" +
		"4. مجهول: الملك 1-3\n"

	result, err := p.Parse(text, "2025-03-14")
	require.NoError(t, err)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, "s1", result.Reports[0].StudentID)
	assert.Equal(t, models.RepeatReview, result.Reports[0].Repeat)
	assert.Equal(t, 1, result.Reports[0].FromVerse)
	assert.Equal(t, 5, result.Reports[0].ToVerse)
	assert.Equal(t, "s2", result.Reports[1].StudentID)
	assert.Equal(t, models.GradeExcellent, result.Reports[1].Grade)
	assert.Equal(t, models.RepeatNewMemorization, result.Reports[1].Repeat)

	// The excused line yields an attendance event and no report.
	require.Len(t, result.Events, 1)
	assert.Equal(t, "s3", result.Events[0].StudentID)
	assert.Equal(t, models.AttendanceExcused, result.Events[0].Status)
	require.NotNil(t, result.Events[0].Notes)
	assert.Equal(t, ImportNote, *result.Events[0].Notes)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, SkipNoColon, result.Skipped[0].Reason)
	assert.Equal(t, SkipUnresolvedStudent, result.Skipped[1].Reason)

	// All records carry the report date.
	for _, rep := range result.Reports {
		assert.Equal(t, "2025-03-14", rep.Date.Format(DateLayout))
	}
	assert.Equal(t, "2025-03-14", result.Events[0].Date.Format(DateLayout))
}

func TestParseIsDeterministic(t *testing.T) {
	p := New(testRoster(), KeywordTable{})
	text := "أحمد: البقرة 1-5\nمحمد: غائب\nخالد: الملك 2-4 مقبول"

	first, err := p.Parse(text, "2025-01-01")
	require.NoError(t, err)
	second, err := p.Parse(text, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseMalformedDateIsFatal(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	result, err := p.Parse("أحمد: البقرة 1-5", "14-03-2025")
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestParseAttendanceKeywordSuppressesReport(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	// The recitation part carries the keyword: the event stands, the
	// digits are not misread as a recitation.
	result, err := p.Parse("أحمد: هروب 1-5", "2025-03-14")
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.AttendanceFled, result.Events[0].Status)
}

func TestParseStatusKeywordWithoutColon(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	// A bare keyword line never becomes an anonymous event; without a
	// colon there is no student to attach it to.
	result, err := p.Parse("غائب أحمد", "2025-03-14")
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Empty(t, result.Reports)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipNoColon, result.Skipped[0].Reason)
}

func TestParseEmptyRecitationIsRecorded(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	result, err := p.Parse("أحمد:", "2025-03-14")
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Events)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipEmptyRecitation, result.Skipped[0].Reason)
}

func TestParseEmptyInput(t *testing.T) {
	p := New(testRoster(), KeywordTable{})

	result, err := p.Parse("", "2025-03-14")
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Events)
	assert.Empty(t, result.Skipped)
}

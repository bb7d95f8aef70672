package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hafs-center/markaz-api/internal/models"
)

// recitationPattern captures "<label> <from>-<to>[+]" anywhere in the text.
// The connector class covers ASCII hyphen, the Arabic tatweel and dashes,
// all of which teachers use interchangeably.
var recitationPattern = regexp.MustCompile(`([^\d+]+?)\s*(\d+)\s*[-ـ–—]\s*(\d+)\s*(\+?)`)

// Recitation is the structured content extracted from one line's remainder.
type Recitation struct {
	Surah     string
	FromVerse int
	ToVerse   int
	Repeat    models.RepeatType
	Grade     models.Grade
}

// ExtractRecitation parses the text after the name colon. It returns
// ok=false when the numeric pattern does not match or the verse range is
// invalid; the caller records the line as dropped in that case.
func ExtractRecitation(text string, keywords KeywordTable) (Recitation, bool) {
	m := recitationPattern.FindStringSubmatch(text)
	if m == nil {
		return Recitation{}, false
	}

	from, err := strconv.Atoi(m[2])
	if err != nil {
		return Recitation{}, false
	}
	to, err := strconv.Atoi(m[3])
	if err != nil {
		return Recitation{}, false
	}
	// Verse numbers start at 1 and ranges never run backwards; anything
	// else is a typo and the line is dropped like any unmatched pattern.
	if from <= 0 || to < from {
		return Recitation{}, false
	}

	rec := Recitation{
		Surah:     strings.TrimSpace(m[1]),
		FromVerse: from,
		ToVerse:   to,
		Repeat:    models.RepeatNewMemorization,
		Grade:     keywords.GradeOf(text),
	}
	if m[4] == "+" || keywords.IsReview(text) || containsPlus(text) {
		rec.Repeat = models.RepeatReview
	}
	return rec, true
}

func containsPlus(s string) bool {
	return strings.ContainsRune(s, '+')
}

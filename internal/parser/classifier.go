package parser

import (
	"regexp"
	"strings"

	"github.com/hafs-center/markaz-api/internal/models"
)

// Leading bullet/numbering decoration teachers habitually prefix lines with.
var leadingDecoration = regexp.MustCompile(`^[\d*🔹•\-#\s.]+`)

// Classification is the outcome of inspecting one raw line.
type Classification struct {
	Status    models.AttendanceStatus
	HasStatus bool
	Remainder string
}

// Classify inspects one raw line for an attendance-exception signal and
// returns the cleaned remainder used downstream. Blank lines yield
// ok=false and are skipped entirely. The status keywords are matched
// against the full raw line, before decoration stripping, so a signal in
// a bullet prefix still counts.
func Classify(line string, keywords KeywordTable) (Classification, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Classification{}, false
	}

	c := Classification{Remainder: leadingDecoration.ReplaceAllString(line, "")}
	c.Status, c.HasStatus = keywords.StatusOf(line)
	return c, true
}

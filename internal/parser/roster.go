package parser

import (
	"strings"

	"github.com/hafs-center/markaz-api/internal/models"
)

// Roster is the set of active students in one circle, in a stable order.
// Resolution is first-match wins over that order.
type Roster []models.RosterEntry

// Resolve finds the student a free-text name fragment refers to. A match is
// normalized equality or substring containment in either direction. The
// first entry in roster order satisfying any condition wins; an exact match
// later in the roster does not displace an earlier containment match.
// Empty fragments never match.
func (r Roster) Resolve(fragment string) (models.RosterEntry, bool) {
	needle := Normalize(fragment)
	if needle == "" {
		return models.RosterEntry{}, false
	}
	for _, entry := range r {
		name := Normalize(entry.DisplayName)
		if name == "" {
			continue
		}
		if name == needle || strings.Contains(name, needle) || strings.Contains(needle, name) {
			return entry, true
		}
	}
	return models.RosterEntry{}, false
}

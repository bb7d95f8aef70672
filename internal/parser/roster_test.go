package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafs-center/markaz-api/internal/models"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Ahmed Ali  ", "ahmed ali"},
		{"أحمد!!", "أحمد"},
		{"محمد - الصالح.", "محمد  الصالح"},
		{"🔹 خالد 🔹", "خالد"},
		{"", ""},
		{"؟!.,", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestRosterResolveExactAndContainment(t *testing.T) {
	roster := Roster{
		{ID: "s1", DisplayName: "أحمد علي الصالح", CircleID: "c1"},
		{ID: "s2", DisplayName: "محمد أحمد", CircleID: "c1"},
	}

	entry, ok := roster.Resolve("أحمد علي الصالح")
	require.True(t, ok)
	assert.Equal(t, "s1", entry.ID)

	// Fragment contained in a display name.
	entry, ok = roster.Resolve("محمد")
	require.True(t, ok)
	assert.Equal(t, "s2", entry.ID)

	// Display name contained in the fragment.
	entry, ok = roster.Resolve("الطالب محمد أحمد")
	require.True(t, ok)
	assert.Equal(t, "s2", entry.ID)
}

// The tie-break is first-in-roster-order across all three match conditions.
// "أحمد" is contained in both names; the first entry wins even though it is
// not an exact match.
func TestRosterResolveTieBreakRosterOrder(t *testing.T) {
	roster := Roster{
		{ID: "s1", DisplayName: "Ahmed Ali", CircleID: "c1"},
		{ID: "s2", DisplayName: "Mohammed Ahmed", CircleID: "c1"},
	}

	entry, ok := roster.Resolve("Ahmed")
	require.True(t, ok)
	assert.Equal(t, "s1", entry.ID)

	// Reversed roster order flips the winner for the same fragment.
	reversed := Roster{roster[1], roster[0]}
	entry, ok = reversed.Resolve("Ahmed")
	require.True(t, ok)
	assert.Equal(t, "s2", entry.ID)
}

func TestRosterResolveNoMatch(t *testing.T) {
	roster := Roster{{ID: "s1", DisplayName: "خالد", CircleID: "c1"}}

	_, ok := roster.Resolve("عمر")
	assert.False(t, ok)

	// Empty fragments never match, even though the empty string is a
	// substring of every name.
	_, ok = roster.Resolve("  !! ")
	assert.False(t, ok)

	_, ok = Roster(nil).Resolve("خالد")
	assert.False(t, ok)
}

func TestRosterResolveIgnoresPunctuationAndCase(t *testing.T) {
	roster := Roster{{ID: "s1", DisplayName: "Omar Farouk", CircleID: "c1"}}

	entry, ok := roster.Resolve("  OMAR farouk! ")
	require.True(t, ok)
	assert.Equal(t, models.RosterEntry{ID: "s1", DisplayName: "Omar Farouk", CircleID: "c1"}, entry)
}

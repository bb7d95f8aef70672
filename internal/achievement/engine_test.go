package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

func testThresholds() config.AchievementsConfig {
	return config.AchievementsConfig{
		ExcellentGrades:   10,
		YearVerses:        300,
		PresentDays:       20,
		PresentWindowDays: 30,
		TestScorePercent:  90,
	}
}

func TestNewEngineRejectsBadThresholds(t *testing.T) {
	bad := []config.AchievementsConfig{
		{},
		{ExcellentGrades: -1, YearVerses: 300, PresentDays: 20, PresentWindowDays: 30, TestScorePercent: 90},
		{ExcellentGrades: 10, YearVerses: 0, PresentDays: 20, PresentWindowDays: 30, TestScorePercent: 90},
		{ExcellentGrades: 10, YearVerses: 300, PresentDays: 20, PresentWindowDays: 30, TestScorePercent: 120},
	}
	for _, cfg := range bad {
		_, err := NewEngine(cfg)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidThresholds.Code, appErrors.FromError(err).Code)
	}
}

func TestEvaluateThresholds(t *testing.T) {
	engine, err := NewEngine(testThresholds())
	require.NoError(t, err)

	// Just under every threshold earns nothing.
	under := models.StudentHistory{
		ExcellentGrades:      9,
		VersesSinceYearStart: 299,
		PresentDaysInWindow:  19,
		TestScores:           []models.TestScore{{Score: 89, MaxScore: 100}},
	}
	assert.Empty(t, engine.Evaluate(under, nil))

	// At the thresholds every rule fires, in fixed order.
	at := models.StudentHistory{
		ExcellentGrades:      10,
		VersesSinceYearStart: 300,
		PresentDaysInWindow:  20,
		CompletedEnrollments: 1,
		TestScores:           []models.TestScore{{Score: 45, MaxScore: 50}},
	}
	assert.Equal(t, []models.AchievementID{
		models.AchievementExcellentReciter,
		models.AchievementYearVerses,
		models.AchievementSteadyAttendance,
		models.AchievementCourseCompleted,
		models.AchievementTestDistinction,
	}, engine.Evaluate(at, nil))
}

func TestEvaluateNeverReAwards(t *testing.T) {
	engine, err := NewEngine(testThresholds())
	require.NoError(t, err)

	history := models.StudentHistory{ExcellentGrades: 25, VersesSinceYearStart: 500}
	first := engine.Evaluate(history, nil)
	require.Equal(t, []models.AchievementID{
		models.AchievementExcellentReciter,
		models.AchievementYearVerses,
	}, first)

	awarded := make([]models.AwardedAchievement, 0, len(first))
	for _, id := range first {
		awarded = append(awarded, models.AwardedAchievement{StudentID: "s1", AchievementID: id})
	}
	assert.Empty(t, engine.Evaluate(history, awarded))
}

func TestEvaluateTestDistinction(t *testing.T) {
	engine, err := NewEngine(testThresholds())
	require.NoError(t, err)

	// Percentage is relative to the exam's own maximum.
	h := models.StudentHistory{TestScores: []models.TestScore{{Score: 27, MaxScore: 30}}}
	assert.Equal(t, []models.AchievementID{models.AchievementTestDistinction}, engine.Evaluate(h, nil))

	// A zero maximum never divides; the score is ignored.
	h = models.StudentHistory{TestScores: []models.TestScore{{Score: 10, MaxScore: 0}}}
	assert.Empty(t, engine.Evaluate(h, nil))
}

// Package achievement evaluates badge rules over a student's history
// snapshot. The engine is pure: the service layer assembles the snapshot,
// the engine decides which badges are newly earned.
package achievement

import (
	"fmt"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type rule struct {
	id   models.AchievementID
	meet func(models.StudentHistory) bool
}

// Engine holds the validated thresholds and the fixed rule order.
type Engine struct {
	cfg   config.AchievementsConfig
	rules []rule
}

// NewEngine validates the thresholds up front. A zero or negative threshold
// is a deployment mistake that must surface at startup, not as silently
// skipped awards.
func NewEngine(cfg config.AchievementsConfig) (*Engine, error) {
	if cfg.ExcellentGrades <= 0 || cfg.YearVerses <= 0 || cfg.PresentDays <= 0 || cfg.PresentWindowDays <= 0 {
		return nil, appErrors.Wrap(
			fmt.Errorf("thresholds must be positive: %+v", cfg),
			appErrors.ErrInvalidThresholds.Code,
			appErrors.ErrInvalidThresholds.Status,
			appErrors.ErrInvalidThresholds.Message,
		)
	}
	if cfg.TestScorePercent <= 0 || cfg.TestScorePercent > 100 {
		return nil, appErrors.Wrap(
			fmt.Errorf("test score percent out of range: %v", cfg.TestScorePercent),
			appErrors.ErrInvalidThresholds.Code,
			appErrors.ErrInvalidThresholds.Status,
			appErrors.ErrInvalidThresholds.Message,
		)
	}

	e := &Engine{cfg: cfg}
	e.rules = []rule{
		{models.AchievementExcellentReciter, func(h models.StudentHistory) bool {
			return h.ExcellentGrades >= cfg.ExcellentGrades
		}},
		{models.AchievementYearVerses, func(h models.StudentHistory) bool {
			return h.VersesSinceYearStart >= cfg.YearVerses
		}},
		{models.AchievementSteadyAttendance, func(h models.StudentHistory) bool {
			return h.PresentDaysInWindow >= cfg.PresentDays
		}},
		{models.AchievementCourseCompleted, func(h models.StudentHistory) bool {
			return h.CompletedEnrollments >= 1
		}},
		{models.AchievementTestDistinction, func(h models.StudentHistory) bool {
			return hasDistinction(h.TestScores, cfg.TestScorePercent)
		}},
	}
	return e, nil
}

// Evaluate returns the badges the history now satisfies that are not in the
// awarded set. Order matches the fixed rule order, so repeated evaluation of
// the same snapshot is deterministic. Already-awarded badges are never
// returned again, whatever the current history says.
func (e *Engine) Evaluate(history models.StudentHistory, awarded []models.AwardedAchievement) []models.AchievementID {
	have := make(map[models.AchievementID]bool, len(awarded))
	for _, a := range awarded {
		have[a.AchievementID] = true
	}

	var earned []models.AchievementID
	for _, r := range e.rules {
		if have[r.id] {
			continue
		}
		if r.meet(history) {
			earned = append(earned, r.id)
		}
	}
	return earned
}

func hasDistinction(scores []models.TestScore, percent float64) bool {
	for _, s := range scores {
		if s.MaxScore <= 0 {
			continue
		}
		if s.Score/s.MaxScore*100 >= percent {
			return true
		}
	}
	return false
}

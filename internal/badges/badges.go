// Package badges holds the achievement catalog and the evaluator that
// decides which catalog entries a user has newly qualified for.
package badges

import (
	"fmt"
	"os"

	"github.com/claude/hybridtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// CriteriaType selects the predicate used to test a badge against the
// user's stats and workout history.
type CriteriaType string

const (
	CriteriaFirstRun     CriteriaType = "first-run"
	CriteriaFirstLift    CriteriaType = "first-lift"
	CriteriaRunDistance  CriteriaType = "run-distance"
	CriteriaLiftWeight   CriteriaType = "lift-weight"
	CriteriaStreak       CriteriaType = "streak"
	CriteriaWorkoutCount CriteriaType = "workout-count"
)

// Badge is a static catalog entry. The catalog is immutable at runtime.
type Badge struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Description   string       `json:"description" yaml:"description"`
	Icon          string       `json:"icon" yaml:"icon"`
	CriteriaType  CriteriaType `json:"criteria_type" yaml:"criteria_type"`
	CriteriaValue float64      `json:"criteria_value" yaml:"criteria_value"`
}

// DefaultCatalog returns the built-in badge catalog in award-evaluation
// order.
func DefaultCatalog() []Badge {
	return []Badge{
		{ID: "first_run", Name: "First Steps", Description: "Complete your first run", Icon: "🏃", CriteriaType: CriteriaFirstRun, CriteriaValue: 1},
		{ID: "first_lift", Name: "Iron Rookie", Description: "Complete your first lift session", Icon: "🏋️", CriteriaType: CriteriaFirstLift, CriteriaValue: 1},
		{ID: "5k_runner", Name: "5K Runner", Description: "Complete a 5K run", Icon: "🎽", CriteriaType: CriteriaRunDistance, CriteriaValue: 5},
		{ID: "10k_runner", Name: "10K Runner", Description: "Complete a 10K run", Icon: "🏅", CriteriaType: CriteriaRunDistance, CriteriaValue: 10},
		{ID: "half_marathon", Name: "Half Marathon", Description: "Complete a half marathon (21.1km)", Icon: "🏆", CriteriaType: CriteriaRunDistance, CriteriaValue: 21.1},
		{ID: "week_streak", Name: "Week Warrior", Description: "Maintain a 7-day workout streak", Icon: "🔥", CriteriaType: CriteriaStreak, CriteriaValue: 7},
		{ID: "month_streak", Name: "Monthly Master", Description: "Maintain a 30-day workout streak", Icon: "💪", CriteriaType: CriteriaStreak, CriteriaValue: 30},
		{ID: "100kg_squat", Name: "100kg Squat Club", Description: "Squat 100kg or more", Icon: "🦵", CriteriaType: CriteriaLiftWeight, CriteriaValue: 100},
		{ID: "workout_10", Name: "Getting Started", Description: "Complete 10 workouts", Icon: "⭐", CriteriaType: CriteriaWorkoutCount, CriteriaValue: 10},
		{ID: "workout_50", Name: "Dedicated", Description: "Complete 50 workouts", Icon: "🌟", CriteriaType: CriteriaWorkoutCount, CriteriaValue: 50},
		{ID: "workout_100", Name: "Century Club", Description: "Complete 100 workouts", Icon: "💯", CriteriaType: CriteriaWorkoutCount, CriteriaValue: 100},
	}
}

// LoadCatalog reads a badge catalog from a YAML file. Used to override the
// built-in catalog and for fixture catalogs in tests.
func LoadCatalog(path string) ([]Badge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading badge catalog: %w", err)
	}
	var catalog []Badge
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing badge catalog: %w", err)
	}
	for i, b := range catalog {
		if b.ID == "" {
			return nil, fmt.Errorf("badge catalog entry %d: id is required", i)
		}
	}
	return catalog, nil
}

// Evaluator tests catalog badges against user state. The catalog is fixed
// at construction.
type Evaluator struct {
	catalog []Badge
}

// NewEvaluator creates an Evaluator over the given catalog.
func NewEvaluator(catalog []Badge) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Catalog returns the catalog in evaluation order.
func (e *Evaluator) Catalog() []Badge {
	return e.catalog
}

// Evaluate returns the badges the user newly qualifies for, in catalog
// order, skipping ids already in earnedIDs. Predicates run against the full
// workout history, not just the latest workout: a 10 km run logged weeks ago
// still satisfies "10K Runner" today. Repeated evaluation with the same
// earned set and history returns nothing new.
func (e *Evaluator) Evaluate(user models.User, workouts []models.Workout, earnedIDs []string) []Badge {
	earned := make(map[string]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	var newBadges []Badge
	for _, b := range e.catalog {
		if earned[b.ID] {
			continue
		}
		if qualifies(b, user, workouts) {
			newBadges = append(newBadges, b)
		}
	}
	return newBadges
}

func qualifies(b Badge, user models.User, workouts []models.Workout) bool {
	switch b.CriteriaType {
	case CriteriaFirstRun:
		return anyWorkout(workouts, func(w models.Workout) bool {
			return w.Type == models.WorkoutRun
		})
	case CriteriaFirstLift:
		return anyWorkout(workouts, func(w models.Workout) bool {
			return w.Type == models.WorkoutLift
		})
	case CriteriaRunDistance:
		return anyWorkout(workouts, func(w models.Workout) bool {
			return w.Type == models.WorkoutRun && w.RunLog != nil && w.RunLog.DistanceKm >= b.CriteriaValue
		})
	case CriteriaLiftWeight:
		return anyWorkout(workouts, func(w models.Workout) bool {
			if w.Type != models.WorkoutLift || w.LiftLog == nil {
				return false
			}
			for _, ex := range w.LiftLog.Exercises {
				for _, set := range ex.Sets {
					if set.WeightKg >= b.CriteriaValue {
						return true
					}
				}
			}
			return false
		})
	case CriteriaStreak:
		threshold := int(b.CriteriaValue)
		return user.CurrentStreak >= threshold || user.LongestStreak >= threshold
	case CriteriaWorkoutCount:
		return len(workouts) >= int(b.CriteriaValue)
	}
	return false
}

func anyWorkout(workouts []models.Workout, pred func(models.Workout) bool) bool {
	for _, w := range workouts {
		if pred(w) {
			return true
		}
	}
	return false
}

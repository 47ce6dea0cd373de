// Package xp computes experience points and the level curve. All functions
// are pure; the tracker owns sequencing and persistence.
package xp

import (
	"math"

	"github.com/claude/hybridtrack/internal/models"
)

const (
	baseXP          = 50
	xpPerKm         = 10
	xpPerExercise   = 10
	programBonus    = 25
	streakMult      = 1.5
	streakThreshold = 7
)

// ForRun returns the base XP for a run of the given distance.
func ForRun(distanceKm float64) int {
	return baseXP + int(math.Round(distanceKm*xpPerKm))
}

// ForLift returns the base XP for a lift session with the given number of
// exercises.
func ForLift(exerciseCount int) int {
	return baseXP + exerciseCount*xpPerExercise
}

// ForWorkout computes the total XP award for a workout. The program bonus is
// added before the streak multiplier, so an active program's bonus is itself
// amplified by a 7-day streak. currentStreak is the streak value before the
// workout being scored is applied to it.
func ForWorkout(wtype models.WorkoutType, run *models.RunLog, lift *models.LiftLog, isProgram bool, currentStreak int) int {
	var total int
	switch {
	case wtype == models.WorkoutRun && run != nil:
		total = ForRun(run.DistanceKm)
	case wtype == models.WorkoutLift && lift != nil:
		total = ForLift(len(lift.Exercises))
	default:
		// Contract violation: the payload for the declared type is missing.
		// The store's validation prevents this; award nothing.
		return 0
	}

	if isProgram {
		total += programBonus
	}

	if currentStreak >= streakThreshold {
		total = int(math.Round(float64(total) * streakMult))
	}

	return total
}

// LevelForXP maps cumulative XP to a level via a square-root curve:
// level n requires n²×100 XP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(totalXP) / 100))
}

// XPForLevel returns the cumulative XP required to reach the given level.
func XPForLevel(level int) int {
	return level * level * 100
}

// Progress describes position within the current level.
type Progress struct {
	Current  int     `json:"current"`
	Required int     `json:"required"`
	Fraction float64 `json:"fraction"`
}

// ProgressToNextLevel reports how far into the current level totalXP sits.
// Required is never zero: the level 0 → 1 span is 100 XP.
func ProgressToNextLevel(totalXP int) Progress {
	level := LevelForXP(totalXP)
	floor := XPForLevel(level)
	ceil := XPForLevel(level + 1)

	p := Progress{
		Current:  totalXP - floor,
		Required: ceil - floor,
	}
	p.Fraction = float64(p.Current) / float64(p.Required)
	return p
}

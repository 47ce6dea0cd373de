package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutType discriminates the two workout payload variants.
type WorkoutType string

const (
	WorkoutRun  WorkoutType = "run"
	WorkoutLift WorkoutType = "lift"
)

// User holds the profile and progression summary. Level is a cached
// derivation of XP and must always equal xp.LevelForXP(user.XP).
type User struct {
	ID              uuid.UUID  `json:"id"`
	DisplayName     string     `json:"display_name"`
	CreatedAt       time.Time  `json:"created_at"`
	XP              int        `json:"xp"`
	Level           int        `json:"level"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastWorkoutDate *time.Time `json:"last_workout_date"`
}

// NewUser returns a fresh zero-progress user.
func NewUser(now time.Time) User {
	return User{
		ID:          uuid.New(),
		DisplayName: "Athlete",
		CreatedAt:   now,
	}
}

// ExerciseSet is one set within a lift exercise.
type ExerciseSet struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// Complete reports whether the set has both a rep count and a weight.
// Incomplete sets are dropped before a lift workout is recorded.
func (s ExerciseSet) Complete() bool {
	return s.Reps > 0 && s.WeightKg >= 0
}

// Exercise is a named, ordered group of sets within a lift workout.
type Exercise struct {
	Name string        `json:"name"`
	Sets []ExerciseSet `json:"sets"`
}

// RunLog is the run-specific workout payload. PacePerKm is derived from
// duration/distance at creation time and stored for display.
type RunLog struct {
	DistanceKm float64 `json:"distance_km"`
	PacePerKm  float64 `json:"pace_per_km"`
}

// LiftLog is the lift-specific workout payload.
type LiftLog struct {
	Exercises []Exercise `json:"exercises"`
}

// Workout is an immutable historical record. Exactly one of RunLog/LiftLog
// is set, matching Type. XPEarned is frozen at creation and never
// recalculated, even if the XP rules change later.
type Workout struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Type            WorkoutType `json:"type"`
	Date            time.Time   `json:"date"`
	DurationMinutes int         `json:"duration_minutes"`
	Notes           string      `json:"notes,omitempty"`
	XPEarned        int         `json:"xp_earned"`
	CreatedAt       time.Time   `json:"created_at"`
	RunLog          *RunLog     `json:"run_log,omitempty"`
	LiftLog         *LiftLog    `json:"lift_log,omitempty"`
}

// UserBadge records that a user earned a catalog badge. At most one record
// exists per (user, badge id) pair.
type UserBadge struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// ProgramProgress is the (week, day) cursor into the active program.
// Both are 1-based.
type ProgramProgress struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// Snapshot is the full persisted application state. It is written as one
// document after every mutating operation and loaded once at startup.
type Snapshot struct {
	User            User             `json:"user"`
	Workouts        []Workout        `json:"workouts"`
	UserBadges      []UserBadge      `json:"user_badges"`
	ActiveProgramID string           `json:"active_program_id,omitempty"`
	ProgramProgress *ProgramProgress `json:"program_progress,omitempty"`
}

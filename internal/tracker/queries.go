package tracker

import (
	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/xp"
	"github.com/google/uuid"
)

// Profile is the user with the derived level-progress view the UI renders.
type Profile struct {
	User          models.User `json:"user"`
	LevelProgress xp.Progress `json:"level_progress"`
	TotalWorkouts int         `json:"total_workouts"`
}

// Profile returns the current user and level progress.
func (s *Store) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Profile{
		User:          s.snap.User,
		LevelProgress: xp.ProgressToNextLevel(s.snap.User.XP),
		TotalWorkouts: len(s.snap.Workouts),
	}
}

// Workouts returns the workout history, newest first.
func (s *Store) Workouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Workout, len(s.snap.Workouts))
	for i, w := range s.snap.Workouts {
		out[len(out)-1-i] = w
	}
	return out
}

// WorkoutByID looks up a single workout.
func (s *Store) WorkoutByID(id uuid.UUID) (models.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.snap.Workouts {
		if w.ID == id {
			return w, true
		}
	}
	return models.Workout{}, false
}

// EarnedBadge pairs a UserBadge record with its catalog entry.
type EarnedBadge struct {
	models.UserBadge
	Badge badges.Badge `json:"badge"`
}

// EarnedBadges returns the user's badges in the order they were earned,
// joined with their catalog entries.
func (s *Store) EarnedBadges() []EarnedBadge {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]badges.Badge)
	for _, b := range s.badges.Catalog() {
		byID[b.ID] = b
	}

	out := make([]EarnedBadge, 0, len(s.snap.UserBadges))
	for _, ub := range s.snap.UserBadges {
		out = append(out, EarnedBadge{UserBadge: ub, Badge: byID[ub.BadgeID]})
	}
	return out
}

// BadgeCatalog returns the full badge catalog.
func (s *Store) BadgeCatalog() []badges.Badge {
	return s.badges.Catalog()
}

// Programs returns the program catalog.
func (s *Store) Programs() []program.Program {
	return s.programs.Programs()
}

// ProgramStatus describes the active program and cursor, plus the
// prescription for the current day.
type ProgramStatus struct {
	Program  *program.Program        `json:"program,omitempty"`
	Progress *models.ProgramProgress `json:"progress,omitempty"`
	Today    *program.Day            `json:"today,omitempty"`
}

// ActiveProgram returns the active program status; all fields are nil when
// no program is active.
func (s *Store) ActiveProgram() ProgramStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.ActiveProgramID == "" || s.snap.ProgramProgress == nil {
		return ProgramStatus{}
	}
	p, ok := s.programs.Get(s.snap.ActiveProgramID)
	if !ok {
		return ProgramStatus{}
	}

	cur := *s.snap.ProgramProgress
	st := ProgramStatus{Program: p, Progress: &cur}
	if day, ok := program.DayAt(p, cur); ok {
		st.Today = day
	}
	return st
}

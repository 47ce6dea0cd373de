// Package tracker is the application state store: it owns the user profile,
// workout history, earned badges, and the active program cursor, and it
// sequences the progression rules for every mutating operation.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/storage"
	"github.com/claude/hybridtrack/internal/streak"
	"github.com/claude/hybridtrack/internal/xp"
	"github.com/google/uuid"
)

// Sentinel errors callers branch on.
var (
	// ErrInvalidWorkout marks a workout request rejected at the store
	// boundary before any state changed.
	ErrInvalidWorkout = errors.New("invalid workout input")
	// ErrUnknownProgram marks a program id not present in the catalog.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrNoActiveProgram marks a progress operation with no program active.
	ErrNoActiveProgram = errors.New("no active program")
	// ErrPersistence marks a failed snapshot write. The in-memory update has
	// already been applied and stands; the caller may retry the write by
	// repeating any mutating operation, or report the failure.
	ErrPersistence = errors.New("persisting state")
)

// LogResult is what a successful logging operation hands back for display:
// the created workout (with its frozen XP award) and any badges it unlocked.
type LogResult struct {
	Workout   models.Workout `json:"workout"`
	NewBadges []badges.Badge `json:"new_badges,omitempty"`
}

// Store orchestrates the XP, streak, badge, and program rules over one
// persisted state snapshot. All operations are safe for concurrent use; the
// snapshot is written once per operation, after all in-memory updates, so
// the workout, streak, and badge effects of a single logging action reach
// durable storage together or not at all.
type Store struct {
	mu       sync.Mutex
	snap     models.Snapshot
	persist  storage.SnapshotStore
	badges   *badges.Evaluator
	programs *program.Catalog
	now      func() time.Time
	log      *slog.Logger
}

// New restores state from persist (initializing a fresh user on first run)
// and returns a ready Store. now supplies timestamps; pass time.Now outside
// tests.
func New(ctx context.Context, persist storage.SnapshotStore, evaluator *badges.Evaluator, programs *program.Catalog, now func() time.Time, log *slog.Logger) (*Store, error) {
	s := &Store{
		persist:  persist,
		badges:   evaluator,
		programs: programs,
		now:      now,
		log:      log,
	}

	snap, err := persist.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("restoring state: %w", err)
	}
	if snap == nil {
		s.snap = models.Snapshot{User: models.NewUser(now())}
		s.log.Info("initialized fresh user", "user_id", s.snap.User.ID)
	} else {
		s.snap = *snap
		if snap.ActiveProgramID != "" {
			if _, ok := programs.Get(snap.ActiveProgramID); !ok {
				s.log.Warn("active program missing from catalog, clearing",
					"program_id", snap.ActiveProgramID)
				s.snap.ActiveProgramID = ""
				s.snap.ProgramProgress = nil
			}
		}
	}
	return s, nil
}

// AddRunWorkout validates and records a run, awards XP (computed with the
// streak as it stood before this workout), updates the streak, evaluates
// badges, and persists the snapshot.
func (s *Store) AddRunWorkout(ctx context.Context, distanceKm float64, durationMinutes int, notes string) (*LogResult, error) {
	if distanceKm <= 0 {
		return nil, fmt.Errorf("%w: distance must be positive, got %g", ErrInvalidWorkout, distanceKm)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidWorkout, durationMinutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runLog := &models.RunLog{
		DistanceKm: distanceKm,
		PacePerKm:  float64(durationMinutes) / distanceKm,
	}
	earned := xp.ForWorkout(models.WorkoutRun, runLog, nil, s.programActive(), s.snap.User.CurrentStreak)

	return s.recordWorkout(ctx, models.Workout{
		Type:            models.WorkoutRun,
		DurationMinutes: durationMinutes,
		Notes:           notes,
		XPEarned:        earned,
		RunLog:          runLog,
	})
}

// AddLiftWorkout validates and records a lift session. Sets without a rep
// count or with a negative weight are dropped before the record is built;
// only complete sets count toward history and the heaviest-lift badge.
func (s *Store) AddLiftWorkout(ctx context.Context, exercises []models.Exercise, durationMinutes int, notes string) (*LogResult, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: at least one exercise is required", ErrInvalidWorkout)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidWorkout, durationMinutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	liftLog := &models.LiftLog{Exercises: filterIncompleteSets(exercises)}
	earned := xp.ForWorkout(models.WorkoutLift, nil, liftLog, s.programActive(), s.snap.User.CurrentStreak)

	return s.recordWorkout(ctx, models.Workout{
		Type:            models.WorkoutLift,
		DurationMinutes: durationMinutes,
		Notes:           notes,
		XPEarned:        earned,
		LiftLog:         liftLog,
	})
}

// recordWorkout applies the shared tail of both logging operations: append
// the workout, roll XP/level forward, update the streak, award badges, and
// persist. Caller holds s.mu and has already computed XPEarned from the
// pre-update streak.
func (s *Store) recordWorkout(ctx context.Context, w models.Workout) (*LogResult, error) {
	now := s.now()
	w.ID = uuid.New()
	w.UserID = s.snap.User.ID
	w.Date = now
	w.CreatedAt = now

	s.snap.Workouts = append(s.snap.Workouts, w)
	s.snap.User.XP += w.XPEarned
	s.snap.User.Level = xp.LevelForXP(s.snap.User.XP)
	s.snap.User = streak.Update(s.snap.User, now)

	newBadges := s.awardBadges(now)

	res := &LogResult{Workout: w, NewBadges: newBadges}
	s.log.Info("workout logged",
		"type", w.Type,
		"workout_id", w.ID,
		"xp_earned", w.XPEarned,
		"level", s.snap.User.Level,
		"streak", s.snap.User.CurrentStreak,
		"new_badges", len(newBadges),
	)
	return res, s.save(ctx)
}

// awardBadges converts newly qualifying catalog badges into UserBadge
// records. The earned-id set guarantees at most one award per badge id.
func (s *Store) awardBadges(now time.Time) []badges.Badge {
	earnedIDs := make([]string, len(s.snap.UserBadges))
	for i, ub := range s.snap.UserBadges {
		earnedIDs[i] = ub.BadgeID
	}

	newBadges := s.badges.Evaluate(s.snap.User, s.snap.Workouts, earnedIDs)
	for _, b := range newBadges {
		s.snap.UserBadges = append(s.snap.UserBadges, models.UserBadge{
			ID:       uuid.New(),
			UserID:   s.snap.User.ID,
			BadgeID:  b.ID,
			EarnedAt: now,
		})
	}
	return newBadges
}

// SetActiveProgram selects a program by id, resetting the cursor to week 1
// day 1. An empty id ends the active program. Switching programs discards
// the old cursor; confirming that with the user is the caller's concern.
func (s *Store) SetActiveProgram(ctx context.Context, programID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if programID == "" {
		s.snap.ActiveProgramID = ""
		s.snap.ProgramProgress = nil
		return s.save(ctx)
	}

	if _, ok := s.programs.Get(programID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	s.snap.ActiveProgramID = programID
	s.snap.ProgramProgress = program.Start()
	return s.save(ctx)
}

// AdvanceProgramProgress moves the cursor one day forward. Advancing past
// the final day of the final week completes the program and clears it.
// Returns the new cursor, or nil if the program just completed.
func (s *Store) AdvanceProgramProgress(ctx context.Context) (*models.ProgramProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.ActiveProgramID == "" || s.snap.ProgramProgress == nil {
		return nil, ErrNoActiveProgram
	}
	p, ok := s.programs.Get(s.snap.ActiveProgramID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, s.snap.ActiveProgramID)
	}

	next := program.Advance(p, *s.snap.ProgramProgress)
	if next == nil {
		s.log.Info("program completed", "program_id", s.snap.ActiveProgramID)
		s.snap.ActiveProgramID = ""
		s.snap.ProgramProgress = nil
	} else {
		s.snap.ProgramProgress = next
	}
	return next, s.save(ctx)
}

// ClearData destructively reinitializes everything: a fresh user id, zero
// XP and streaks, empty history and badges, no active program. Callers must
// confirm intent before invoking it.
func (s *Store) ClearData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = models.Snapshot{User: models.NewUser(s.now())}
	s.log.Info("all data cleared", "user_id", s.snap.User.ID)
	return s.save(ctx)
}

// save mirrors the in-memory snapshot to durable storage. On failure the
// in-memory state is kept and the error wraps ErrPersistence.
func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, &s.snap); err != nil {
		s.log.Error("snapshot write failed", "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) programActive() bool {
	return s.snap.ActiveProgramID != ""
}

func filterIncompleteSets(exercises []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, len(exercises))
	for i, ex := range exercises {
		kept := make([]models.ExerciseSet, 0, len(ex.Sets))
		for _, set := range ex.Sets {
			if set.Complete() {
				kept = append(kept, set)
			}
		}
		out[i] = models.Exercise{Name: ex.Name, Sets: kept}
	}
	return out
}

package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/xp"
)

// memStore is an in-memory SnapshotStore that round-trips through JSON the
// way the real backends do, counts writes, and can be told to fail.
type memStore struct {
	data     []byte
	saves    int
	failNext bool
}

func (m *memStore) Load(context.Context) (*models.Snapshot, error) {
	if m.data == nil {
		return nil, nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal(m.data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *memStore) Save(_ context.Context, snap *models.Snapshot) error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("disk full")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T, mem *memStore, clk *clock) *Store {
	t.Helper()
	catalog, err := program.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(context.Background(), mem, badges.NewEvaluator(badges.DefaultCatalog()), catalog, clk.now, log)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func baseTime() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
}

// TestFirstRunEver verifies the canonical first-workout scenario: a fresh
// user logs a 5 km run in 30 minutes with no active program. XP is exactly
// 100 — no program bonus, and no streak bonus because the streak is read
// before this workout's own increment.
func TestFirstRunEver(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)

	res, err := s.AddRunWorkout(context.Background(), 5, 30, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Workout.XPEarned != 100 {
		t.Errorf("XPEarned = %d, want 100", res.Workout.XPEarned)
	}
	if res.Workout.RunLog == nil || res.Workout.RunLog.PacePerKm != 6 {
		t.Errorf("PacePerKm = %+v, want 6", res.Workout.RunLog)
	}

	p := s.Profile()
	if p.User.XP != 100 {
		t.Errorf("user XP = %d, want 100", p.User.XP)
	}
	if p.User.Level != 1 {
		t.Errorf("level = %d, want 1", p.User.Level)
	}
	if p.User.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", p.User.CurrentStreak)
	}
}

// TestFirstRunAwardsBadges verifies the first run unlocks first_run and
// 5k_runner in one evaluation, and returns them for display.
func TestFirstRunAwardsBadges(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)

	res, err := s.AddRunWorkout(context.Background(), 5, 30, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.NewBadges) != 2 {
		t.Fatalf("new badges = %d, want 2", len(res.NewBadges))
	}
	if res.NewBadges[0].ID != "first_run" || res.NewBadges[1].ID != "5k_runner" {
		t.Errorf("badges = %s, %s; want first_run, 5k_runner", res.NewBadges[0].ID, res.NewBadges[1].ID)
	}

	earned := s.EarnedBadges()
	if len(earned) != 2 {
		t.Fatalf("persisted badges = %d, want 2", len(earned))
	}
	if earned[0].Badge.Name != "First Steps" {
		t.Errorf("catalog join: name = %q, want %q", earned[0].Badge.Name, "First Steps")
	}
}

// TestBadgeAwardedOnce verifies a badge id is never re-awarded on later
// workouts.
func TestBadgeAwardedOnce(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if _, err := s.AddRunWorkout(ctx, 5, 30, ""); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.AddDate(0, 0, 1)
	res, err := s.AddRunWorkout(ctx, 6, 35, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range res.NewBadges {
		if b.ID == "first_run" || b.ID == "5k_runner" {
			t.Errorf("badge %s awarded twice", b.ID)
		}
	}
}

// TestProgramBonus verifies an active program adds the flat +25.
func TestProgramBonus(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if err := s.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}
	res, err := s.AddRunWorkout(ctx, 5, 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Workout.XPEarned != 125 {
		t.Errorf("XPEarned = %d, want 125", res.Workout.XPEarned)
	}
}

// TestStreakBonusUsesPreUpdateStreak verifies the multiplier keys off the
// streak as it stood before the logged workout: on the day the streak
// would become 7, the bonus does not yet apply.
func TestStreakBonusUsesPreUpdateStreak(t *testing.T) {
	clk := &clock{t: baseTime()}
	mem := &memStore{}
	s := newTestStore(t, mem, clk)
	ctx := context.Background()

	var last *LogResult
	for i := 0; i < 7; i++ {
		res, err := s.AddRunWorkout(ctx, 5, 30, "")
		if err != nil {
			t.Fatal(err)
		}
		last = res
		clk.t = clk.t.AddDate(0, 0, 1)
	}
	// Seventh consecutive day: streak was 6 going in, so still 100 XP.
	if last.Workout.XPEarned != 100 {
		t.Errorf("day 7 XPEarned = %d, want 100", last.Workout.XPEarned)
	}
	if s.Profile().User.CurrentStreak != 7 {
		t.Fatalf("streak = %d, want 7", s.Profile().User.CurrentStreak)
	}

	// Eighth day: streak 7 going in, multiplier applies. 100 × 1.5 = 150.
	res, err := s.AddRunWorkout(ctx, 5, 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Workout.XPEarned != 150 {
		t.Errorf("day 8 XPEarned = %d, want 150", res.Workout.XPEarned)
	}
}

// TestProgramAndStreakOrdering reproduces the pinned 188 figure through
// the full store path: program active, streak at 7, 5 km run.
func TestProgramAndStreakOrdering(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := s.AddRunWorkout(ctx, 1, 10, ""); err != nil {
			t.Fatal(err)
		}
		clk.t = clk.t.AddDate(0, 0, 1)
	}
	if err := s.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}

	res, err := s.AddRunWorkout(ctx, 5, 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Workout.XPEarned != 188 {
		t.Errorf("XPEarned = %d, want 188", res.Workout.XPEarned)
	}
}

// TestLiftFiltersIncompleteSets verifies sets without reps or with negative
// weight are dropped while complete sets and the exercise shape survive.
func TestLiftFiltersIncompleteSets(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)

	exercises := []models.Exercise{
		{Name: "Squat", Sets: []models.ExerciseSet{
			{Reps: 5, WeightKg: 100},
			{Reps: 0, WeightKg: 100},
			{Reps: 5, WeightKg: -1},
		}},
		{Name: "Bench Press", Sets: []models.ExerciseSet{
			{Reps: 5, WeightKg: 0}, // bodyweight counts: zero weight is valid
		}},
	}

	res, err := s.AddLiftWorkout(context.Background(), exercises, 45, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 50 base + 2 exercises × 10 = 70.
	if res.Workout.XPEarned != 70 {
		t.Errorf("XPEarned = %d, want 70", res.Workout.XPEarned)
	}
	got := res.Workout.LiftLog.Exercises
	if len(got) != 2 {
		t.Fatalf("exercises = %d, want 2", len(got))
	}
	if len(got[0].Sets) != 1 {
		t.Errorf("squat sets = %d, want 1 (incomplete sets dropped)", len(got[0].Sets))
	}
	if len(got[1].Sets) != 1 {
		t.Errorf("bench sets = %d, want 1", len(got[1].Sets))
	}
}

// TestInvalidInputRejected verifies the store-boundary validation fires
// before any state changes.
func TestInvalidInputRejected(t *testing.T) {
	clk := &clock{t: baseTime()}
	mem := &memStore{}
	s := newTestStore(t, mem, clk)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
	}{
		{"zero distance", func() error { _, err := s.AddRunWorkout(ctx, 0, 30, ""); return err }},
		{"negative distance", func() error { _, err := s.AddRunWorkout(ctx, -2, 30, ""); return err }},
		{"zero duration run", func() error { _, err := s.AddRunWorkout(ctx, 5, 0, ""); return err }},
		{"no exercises", func() error { _, err := s.AddLiftWorkout(ctx, nil, 45, ""); return err }},
		{"zero duration lift", func() error {
			_, err := s.AddLiftWorkout(ctx, []models.Exercise{{Name: "Squat"}}, 0, "")
			return err
		}},
	}
	for _, tc := range cases {
		err := tc.call()
		if !errors.Is(err, ErrInvalidWorkout) {
			t.Errorf("%s: error = %v, want ErrInvalidWorkout", tc.name, err)
		}
	}

	if len(s.Workouts()) != 0 {
		t.Errorf("workouts recorded despite invalid input: %d", len(s.Workouts()))
	}
	if mem.saves != 0 {
		t.Errorf("snapshot written despite invalid input: %d saves", mem.saves)
	}
}

// TestPersistenceFailureKeepsState verifies a failed snapshot write
// surfaces ErrPersistence alongside the created record, with the in-memory
// update applied.
func TestPersistenceFailureKeepsState(t *testing.T) {
	clk := &clock{t: baseTime()}
	mem := &memStore{failNext: true}
	s := newTestStore(t, mem, clk)

	res, err := s.AddRunWorkout(context.Background(), 5, 30, "")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if res == nil || res.Workout.XPEarned != 100 {
		t.Fatalf("result = %+v, want the created workout", res)
	}
	if got := s.Profile().User.XP; got != 100 {
		t.Errorf("in-memory XP = %d, want 100 (optimistic update kept)", got)
	}
}

// TestOneSavePerOperation verifies the workout, streak, and badge effects
// of one logging action reach storage in a single write.
func TestOneSavePerOperation(t *testing.T) {
	clk := &clock{t: baseTime()}
	mem := &memStore{}
	s := newTestStore(t, mem, clk)

	if _, err := s.AddRunWorkout(context.Background(), 5, 30, ""); err != nil {
		t.Fatal(err)
	}
	if mem.saves != 1 {
		t.Errorf("saves = %d, want 1", mem.saves)
	}
}

// TestRestoreFromSnapshot verifies a second store instance picks up where
// the first left off.
func TestRestoreFromSnapshot(t *testing.T) {
	clk := &clock{t: baseTime()}
	mem := &memStore{}
	s1 := newTestStore(t, mem, clk)
	ctx := context.Background()

	if _, err := s1.AddRunWorkout(ctx, 5, 30, "morning run"); err != nil {
		t.Fatal(err)
	}
	if err := s1.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}

	s2 := newTestStore(t, mem, clk)
	p := s2.Profile()
	if p.User.XP != 100 || p.User.CurrentStreak != 1 {
		t.Errorf("restored user = %+v, want XP 100 streak 1", p.User)
	}
	if p.TotalWorkouts != 1 {
		t.Errorf("restored workouts = %d, want 1", p.TotalWorkouts)
	}
	status := s2.ActiveProgram()
	if status.Program == nil || status.Program.ID != "stronglifts-5x5" {
		t.Errorf("restored program = %+v, want stronglifts-5x5", status.Program)
	}
	if status.Progress == nil || status.Progress.Week != 1 || status.Progress.Day != 1 {
		t.Errorf("restored progress = %+v, want week 1 day 1", status.Progress)
	}
}

// TestProgramLifecycle drives a full program through the store: select,
// advance to completion, then verify further advances fail.
func TestProgramLifecycle(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if err := s.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}

	// 4 weeks × 3 days = 12 cursor positions; 11 advances stay active.
	for i := 0; i < 11; i++ {
		next, err := s.AdvanceProgramProgress(ctx)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if next == nil {
			t.Fatalf("advance %d completed early", i)
		}
	}

	next, err := s.AdvanceProgramProgress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("final advance = %+v, want nil (completed)", next)
	}
	if s.ActiveProgram().Program != nil {
		t.Error("program still active after completion")
	}

	if _, err := s.AdvanceProgramProgress(ctx); !errors.Is(err, ErrNoActiveProgram) {
		t.Errorf("advance with no program: error = %v, want ErrNoActiveProgram", err)
	}
}

// TestSetActiveProgramUnknown verifies selection validates against the
// catalog.
func TestSetActiveProgramUnknown(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)

	err := s.SetActiveProgram(context.Background(), "couch-to-5k")
	if !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("error = %v, want ErrUnknownProgram", err)
	}
}

// TestEndProgramClearsCursor verifies an empty id ends the active program.
func TestEndProgramClearsCursor(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if err := s.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActiveProgram(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if s.ActiveProgram().Program != nil {
		t.Error("program still active after ending")
	}
}

// TestClearData verifies the destructive reset: new user id, zeroed
// progression, empty history and badges, no program.
func TestClearData(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if _, err := s.AddRunWorkout(ctx, 5, 30, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActiveProgram(ctx, "stronglifts-5x5"); err != nil {
		t.Fatal(err)
	}
	oldID := s.Profile().User.ID

	if err := s.ClearData(ctx); err != nil {
		t.Fatal(err)
	}

	p := s.Profile()
	if p.User.ID == oldID {
		t.Error("user id not regenerated")
	}
	if p.User.XP != 0 || p.User.Level != 0 || p.User.CurrentStreak != 0 || p.User.LongestStreak != 0 {
		t.Errorf("user not zeroed: %+v", p.User)
	}
	if p.TotalWorkouts != 0 {
		t.Errorf("workouts = %d, want 0", p.TotalWorkouts)
	}
	if len(s.EarnedBadges()) != 0 {
		t.Error("badges survived clear")
	}
	if s.ActiveProgram().Program != nil {
		t.Error("program survived clear")
	}
}

// TestLevelCacheInvariant verifies the cached level always equals its
// recomputation from XP after a series of operations.
func TestLevelCacheInvariant(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := s.AddRunWorkout(ctx, float64(i+1), 30, ""); err != nil {
			t.Fatal(err)
		}
		u := s.Profile().User
		if u.Level != xp.LevelForXP(u.XP) {
			t.Fatalf("after workout %d: level = %d, recomputed = %d (xp %d)",
				i, u.Level, xp.LevelForXP(u.XP), u.XP)
		}
		clk.t = clk.t.AddDate(0, 0, 1)
	}
}

// TestSameDayWorkoutsDoNotInflateStreak verifies two workouts on one
// calendar day net a single streak increment.
func TestSameDayWorkoutsDoNotInflateStreak(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if _, err := s.AddRunWorkout(ctx, 5, 30, ""); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(8 * time.Hour)
	if _, err := s.AddLiftWorkout(ctx, []models.Exercise{{Name: "Squat", Sets: []models.ExerciseSet{{Reps: 5, WeightKg: 60}}}}, 45, ""); err != nil {
		t.Fatal(err)
	}

	if got := s.Profile().User.CurrentStreak; got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

// TestWorkoutsNewestFirst verifies the query ordering.
func TestWorkoutsNewestFirst(t *testing.T) {
	clk := &clock{t: baseTime()}
	s := newTestStore(t, &memStore{}, clk)
	ctx := context.Background()

	if _, err := s.AddRunWorkout(ctx, 5, 30, "first"); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.AddDate(0, 0, 1)
	if _, err := s.AddRunWorkout(ctx, 6, 35, "second"); err != nil {
		t.Fatal(err)
	}

	got := s.Workouts()
	if len(got) != 2 {
		t.Fatalf("workouts = %d, want 2", len(got))
	}
	if got[0].Notes != "second" || got[1].Notes != "first" {
		t.Errorf("order = [%s, %s], want [second, first]", got[0].Notes, got[1].Notes)
	}
}

package mcp

import (
	"context"

	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/tracker"
)

// DataSource abstracts the tracker for MCP tools. Local (direct store
// access) and HTTPClient (remote via REST API) both satisfy this interface.
type DataSource interface {
	Profile(ctx context.Context) (tracker.Profile, error)
	Workouts(ctx context.Context) ([]models.Workout, error)
	EarnedBadges(ctx context.Context) ([]tracker.EarnedBadge, error)
	BadgeCatalog(ctx context.Context) ([]badges.Badge, error)
	Programs(ctx context.Context) ([]program.Program, error)
	ActiveProgram(ctx context.Context) (tracker.ProgramStatus, error)

	LogRun(ctx context.Context, distanceKm float64, durationMinutes int, notes string) (*tracker.LogResult, error)
	LogLift(ctx context.Context, exercises []models.Exercise, durationMinutes int, notes string) (*tracker.LogResult, error)
	SetActiveProgram(ctx context.Context, programID string) (tracker.ProgramStatus, error)
	AdvanceProgram(ctx context.Context) (*models.ProgramProgress, error)
}

// Local adapts a *tracker.Store to the DataSource interface for the
// in-process MCP mode.
type Local struct {
	Store *tracker.Store
}

// Compile-time checks: both implementations satisfy DataSource.
var (
	_ DataSource = Local{}
	_ DataSource = (*HTTPClient)(nil)
)

func (l Local) Profile(context.Context) (tracker.Profile, error) {
	return l.Store.Profile(), nil
}

func (l Local) Workouts(context.Context) ([]models.Workout, error) {
	return l.Store.Workouts(), nil
}

func (l Local) EarnedBadges(context.Context) ([]tracker.EarnedBadge, error) {
	return l.Store.EarnedBadges(), nil
}

func (l Local) BadgeCatalog(context.Context) ([]badges.Badge, error) {
	return l.Store.BadgeCatalog(), nil
}

func (l Local) Programs(context.Context) ([]program.Program, error) {
	return l.Store.Programs(), nil
}

func (l Local) ActiveProgram(context.Context) (tracker.ProgramStatus, error) {
	return l.Store.ActiveProgram(), nil
}

func (l Local) LogRun(ctx context.Context, distanceKm float64, durationMinutes int, notes string) (*tracker.LogResult, error) {
	return l.Store.AddRunWorkout(ctx, distanceKm, durationMinutes, notes)
}

func (l Local) LogLift(ctx context.Context, exercises []models.Exercise, durationMinutes int, notes string) (*tracker.LogResult, error) {
	return l.Store.AddLiftWorkout(ctx, exercises, durationMinutes, notes)
}

func (l Local) SetActiveProgram(ctx context.Context, programID string) (tracker.ProgramStatus, error) {
	if err := l.Store.SetActiveProgram(ctx, programID); err != nil {
		return tracker.ProgramStatus{}, err
	}
	return l.Store.ActiveProgram(), nil
}

func (l Local) AdvanceProgram(ctx context.Context) (*models.ProgramProgress, error) {
	return l.Store.AdvanceProgramProgress(ctx)
}

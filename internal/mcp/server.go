// Package mcp exposes the tracker to AI assistants over the Model Context
// Protocol, either against a local snapshot store or a remote server's
// REST API.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/claude/hybridtrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
// clear_data is intentionally not exposed: destructive operations stay on
// the HTTP surface where the API key gates them.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("HybridTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("HybridTrack fitness progression server. Log runs and lift sessions, inspect XP/level/streak progress, earned badges, and training program position."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolLogRun, Handler: h.logRun},
		server.ServerTool{Tool: toolLogLift, Handler: h.logLift},
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetBadges, Handler: h.getBadges},
		server.ServerTool{Tool: toolGetProgramProgress, Handler: h.getProgramProgress},
		server.ServerTool{Tool: toolSetActiveProgram, Handler: h.setActiveProgram},
		server.ServerTool{Tool: toolAdvanceProgram, Handler: h.advanceProgram},
	)

	s.AddResources(
		server.ServerResource{Resource: resProfile, Handler: h.profileResource},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkoutsResource},
		server.ServerResource{Resource: resBadgeCatalog, Handler: h.badgeCatalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Tool definitions ---

var toolLogRun = mcp.NewTool("log_run",
	mcp.WithDescription("Log a run workout. Returns the created workout with its XP award and any newly unlocked badges."),
	mcp.WithNumber("distance_km", mcp.Required(), mcp.Description("Distance in kilometers (must be positive)")),
	mcp.WithNumber("duration_minutes", mcp.Required(), mcp.Description("Duration in minutes (must be positive)")),
	mcp.WithString("notes", mcp.Description("Optional free-form notes")),
)

var toolLogLift = mcp.NewTool("log_lift",
	mcp.WithDescription("Log a lift session. Returns the created workout with its XP award and any newly unlocked badges."),
	mcp.WithString("exercises", mcp.Required(), mcp.Description(`JSON array of exercises, e.g. [{"name":"Squat","sets":[{"reps":5,"weight_kg":100}]}]. Sets without reps are dropped.`)),
	mcp.WithNumber("duration_minutes", mcp.Required(), mcp.Description("Duration in minutes (must be positive)")),
	mcp.WithString("notes", mcp.Description("Optional free-form notes")),
)

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get the user profile: XP, level, progress to the next level, current and longest streaks, total workouts."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List logged workouts, newest first. Runs carry distance/pace; lifts carry exercises and sets."),
)

var toolGetBadges = mcp.NewTool("get_badges",
	mcp.WithDescription("List earned badges (with earn timestamps) and the full badge catalog."),
)

var toolGetProgramProgress = mcp.NewTool("get_program_progress",
	mcp.WithDescription("Get the active training program, the (week, day) cursor, and today's prescribed exercises. Empty when no program is active."),
)

var toolSetActiveProgram = mcp.NewTool("set_active_program",
	mcp.WithDescription("Select a training program by id, resetting progress to week 1 day 1. Pass an empty id to end the active program. Selecting over an active program discards its progress."),
	mcp.WithString("program_id", mcp.Description("Program id from the catalog (e.g. 'stronglifts-5x5'), or empty to end")),
)

var toolAdvanceProgram = mcp.NewTool("advance_program",
	mcp.WithDescription("Advance the active program cursor one day. Advancing past the final day completes the program."),
)

// --- Tool handlers ---

func (h *handlers) logRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	distance, err := req.RequireFloat("distance_km")
	if err != nil {
		return mcp.NewToolResultError("distance_km parameter is required"), nil
	}
	duration, err := req.RequireInt("duration_minutes")
	if err != nil {
		return mcp.NewToolResultError("duration_minutes parameter is required"), nil
	}

	res, err := h.ds.LogRun(ctx, distance, duration, req.GetString("notes", ""))
	if err != nil {
		h.log.Error("mcp log_run", "error", err)
		return mcp.NewToolResultError("logging run failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) logLift(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercises")
	if err != nil {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}
	var exercises []models.Exercise
	if err := json.Unmarshal([]byte(raw), &exercises); err != nil {
		return mcp.NewToolResultError("exercises must be a JSON array: " + err.Error()), nil
	}
	duration, err := req.RequireInt("duration_minutes")
	if err != nil {
		return mcp.NewToolResultError("duration_minutes parameter is required"), nil
	}

	res, err := h.ds.LogLift(ctx, exercises, duration, req.GetString("notes", ""))
	if err != nil {
		h.log.Error("mcp log_lift", "error", err)
		return mcp.NewToolResultError("logging lift failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) getProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := h.ds.Profile(ctx)
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(profile)
}

func (h *handlers) getWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workouts)
}

func (h *handlers) getBadges(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	earned, err := h.ds.EarnedBadges(ctx)
	if err != nil {
		h.log.Error("mcp get_badges", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	catalog, err := h.ds.BadgeCatalog(ctx)
	if err != nil {
		h.log.Error("mcp get_badges catalog", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"earned": earned, "catalog": catalog})
}

func (h *handlers) getProgramProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.ds.ActiveProgram(ctx)
	if err != nil {
		h.log.Error("mcp get_program_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(status)
}

func (h *handlers) setActiveProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.ds.SetActiveProgram(ctx, req.GetString("program_id", ""))
	if err != nil {
		h.log.Error("mcp set_active_program", "error", err)
		return mcp.NewToolResultError("setting program failed: " + err.Error()), nil
	}
	return jsonResult(status)
}

func (h *handlers) advanceProgram(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	next, err := h.ds.AdvanceProgram(ctx)
	if err != nil {
		h.log.Error("mcp advance_program", "error", err)
		return mcp.NewToolResultError("advancing program failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"progress": next, "completed": next == nil})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

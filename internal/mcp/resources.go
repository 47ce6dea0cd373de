package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resProfile = mcp.NewResource(
	"hybridtrack://profile",
	"Profile",
	mcp.WithResourceDescription("User profile with XP, level progress, streaks, and workout totals"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"hybridtrack://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 20 most recently logged workouts"),
	mcp.WithMIMEType("application/json"),
)

var resBadgeCatalog = mcp.NewResource(
	"hybridtrack://badge_catalog",
	"Badge Catalog",
	mcp.WithResourceDescription("All badges with criteria, plus the ones already earned"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) profileResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	profile, err := h.ds.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, profile)
}

func (h *handlers) recentWorkoutsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	if len(workouts) > 20 {
		workouts = workouts[:20]
	}
	return textContents(req.Params.URI, workouts)
}

func (h *handlers) badgeCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog, err := h.ds.BadgeCatalog(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := h.ds.EarnedBadges(ctx)
	if err != nil {
		return nil, err
	}
	return textContents(req.Params.URI, map[string]any{"catalog": catalog, "earned": earned})
}

func textContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

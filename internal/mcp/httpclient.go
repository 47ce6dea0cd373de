package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/models"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/tracker"
)

// HTTPClient implements DataSource by calling the HybridTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but state
// lives on the remote server (typically reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is sent on mutating requests.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("httpclient: decode %s: %w", path, err)
		}
	}
	return nil
}

func (c *HTTPClient) Profile(ctx context.Context) (tracker.Profile, error) {
	var p tracker.Profile
	err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p)
	return p, err
}

func (c *HTTPClient) Workouts(ctx context.Context) ([]models.Workout, error) {
	var workouts []models.Workout
	err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, &workouts)
	return workouts, err
}

// badgesResponse mirrors the /api/v1/badges payload.
type badgesResponse struct {
	Earned  []tracker.EarnedBadge `json:"earned"`
	Catalog []badges.Badge        `json:"catalog"`
}

func (c *HTTPClient) EarnedBadges(ctx context.Context) ([]tracker.EarnedBadge, error) {
	var resp badgesResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/badges", nil, &resp)
	return resp.Earned, err
}

func (c *HTTPClient) BadgeCatalog(ctx context.Context) ([]badges.Badge, error) {
	var resp badgesResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/badges", nil, &resp)
	return resp.Catalog, err
}

func (c *HTTPClient) Programs(ctx context.Context) ([]program.Program, error) {
	var programs []program.Program
	err := c.do(ctx, http.MethodGet, "/api/v1/programs", nil, &programs)
	return programs, err
}

func (c *HTTPClient) ActiveProgram(ctx context.Context) (tracker.ProgramStatus, error) {
	var status tracker.ProgramStatus
	err := c.do(ctx, http.MethodGet, "/api/v1/programs/progress", nil, &status)
	return status, err
}

func (c *HTTPClient) LogRun(ctx context.Context, distanceKm float64, durationMinutes int, notes string) (*tracker.LogResult, error) {
	body := map[string]any{
		"distance_km":      distanceKm,
		"duration_minutes": durationMinutes,
		"notes":            notes,
	}
	var res tracker.LogResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts/run", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) LogLift(ctx context.Context, exercises []models.Exercise, durationMinutes int, notes string) (*tracker.LogResult, error) {
	body := map[string]any{
		"exercises":        exercises,
		"duration_minutes": durationMinutes,
		"notes":            notes,
	}
	var res tracker.LogResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts/lift", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SetActiveProgram(ctx context.Context, programID string) (tracker.ProgramStatus, error) {
	var status tracker.ProgramStatus
	err := c.do(ctx, http.MethodPost, "/api/v1/programs/active", map[string]string{"program_id": programID}, &status)
	return status, err
}

// advanceResponse mirrors the /api/v1/programs/advance payload.
type advanceResponse struct {
	Progress  *models.ProgramProgress `json:"progress"`
	Completed bool                    `json:"completed"`
}

func (c *HTTPClient) AdvanceProgram(ctx context.Context) (*models.ProgramProgress, error) {
	var resp advanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/programs/advance", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Progress, nil
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHTTPClientProfile verifies GET decoding and that reads carry no key.
func TestHTTPClientProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/profile" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if key := r.Header.Get("X-API-Key"); key != "" {
			t.Errorf("read request sent API key %q", key)
		}
		_, _ = w.Write([]byte(`{"user":{"xp":250,"level":1},"total_workouts":3}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	p, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.User.XP != 250 || p.TotalWorkouts != 3 {
		t.Errorf("profile = %+v, want XP 250 and 3 workouts", p)
	}
}

// TestHTTPClientLogRun verifies the request body, the API key header on
// mutating calls, and that 201 is accepted.
func TestHTTPClientLogRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/run" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.Header.Get("X-API-Key"); key != "secret" {
			t.Errorf("X-API-Key = %q, want secret", key)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["distance_km"] != 5.0 {
			t.Errorf("distance_km = %v, want 5", body["distance_km"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"workout":{"xp_earned":100},"new_badges":[]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	res, err := client.LogRun(context.Background(), 5, 30, "")
	if err != nil {
		t.Fatalf("LogRun: %v", err)
	}
	if res.Workout.XPEarned != 100 {
		t.Errorf("xp_earned = %d, want 100", res.Workout.XPEarned)
	}
}

// TestHTTPClientErrorStatus verifies non-2xx responses surface the body.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"distance must be positive"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	if _, err := client.LogRun(context.Background(), 0, 30, ""); err == nil {
		t.Fatal("LogRun with 400 response: want error, got nil")
	}
}

// TestHTTPClientAdvanceProgram verifies the completed payload maps to a
// nil cursor.
func TestHTTPClientAdvanceProgram(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"progress":null,"completed":true}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	next, err := client.AdvanceProgram(context.Background())
	if err != nil {
		t.Fatalf("AdvanceProgram: %v", err)
	}
	if next != nil {
		t.Errorf("progress = %+v, want nil on completion", next)
	}
}

// TestHTTPClientBadges verifies the earned/catalog envelope splits.
func TestHTTPClientBadges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"earned":[{"badge_id":"first_run","badge":{"id":"first_run","name":"First Steps"}}],
			"catalog":[{"id":"first_run"},{"id":"first_lift"}]
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	earned, err := client.EarnedBadges(context.Background())
	if err != nil {
		t.Fatalf("EarnedBadges: %v", err)
	}
	if len(earned) != 1 || earned[0].BadgeID != "first_run" {
		t.Errorf("earned = %+v, want one first_run", earned)
	}
	catalog, err := client.BadgeCatalog(context.Background())
	if err != nil {
		t.Fatalf("BadgeCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Errorf("catalog = %d entries, want 2", len(catalog))
	}
}

// TestHTTPClientBaseURLTrim verifies a trailing slash does not double up.
func TestHTTPClientBaseURLTrim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts" {
			t.Errorf("path = %s, want /api/v1/workouts", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "secret")
	if _, err := client.Workouts(context.Background()); err != nil {
		t.Fatalf("Workouts: %v", err)
	}
}

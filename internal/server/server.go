package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/hybridtrack/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  *tracker.Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store *tracker.Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints
	s.router.Get("/api/v1/profile", s.handleProfile)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/badges", s.handleBadges)
	s.router.Get("/api/v1/programs", s.handlePrograms)
	s.router.Get("/api/v1/programs/progress", s.handleProgramProgress)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts/run", s.handleLogRun)
		r.Post("/api/v1/workouts/lift", s.handleLogLift)
		r.Post("/api/v1/programs/active", s.handleSetActiveProgram)
		r.Post("/api/v1/programs/advance", s.handleAdvanceProgram)
		r.Delete("/api/v1/data", s.handleClearData)
	})
}

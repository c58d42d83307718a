package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Coach is the service surface the HTTP handlers use. *service.Service
// satisfies it.
type Coach interface {
	AnalyzeProfile(in coach.ProfileInput) coach.ProfileAnalysis
	GenerateRoutine(ctx context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error)
	FindExercises(ctx context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error)

	SaveProfile(ctx context.Context, p models.ProfileRow) (*models.ProfileRow, error)
	GetProfile(ctx context.Context, userID int) (*models.ProfileRow, error)
	AnalyzeUser(ctx context.Context, userID int) (*coach.ProfileAnalysis, error)
	GenerateForUser(ctx context.Context, userID int, req service.PlanRequest) (*service.Plan, error)
	ActivePlan(ctx context.Context, userID int) (*service.Plan, error)
	ReviewExercise(ctx context.Context, userID int, exercise string) (*service.ExerciseReview, error)
	ReviewAdaptation(ctx context.Context, userID int, previousEquipment []string) (*coach.AdaptationPlan, error)
	AdaptationReviews(ctx context.Context, userID, limit int) ([]models.AdaptationReviewRow, error)
	LogWeight(ctx context.Context, userID int, date time.Time, weightKg float64, source string) error
	ExerciseHistory(ctx context.Context, userID int, exercise string, days int) (*models.ExerciseHistory, error)
	ImportAlpha(ctx context.Context, userID int, r io.Reader) (*ingest.Result, error)
	ImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error)
}

// Compile-time check: *service.Service satisfies Coach.
var _ Coach = (*service.Service)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	coach     Coach
	users     UserStore
	tailscale WhoIser
	log       *slog.Logger
	apiKey    string
	validate  *validator.Validate
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(c Coach, users UserStore, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		coach:    c,
		users:    users,
		log:      log,
		apiKey:   apiKey,
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the dev user to the tailnet
// login of each peer.
func (s *Server) SetTailscale(who WhoIser) {
	s.tailscale = who
}

// SetMCP mounts a streamable MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		// Stateless calculators
		r.Post("/analyze/profile", s.handleAnalyzeProfile)
		r.Get("/volume", s.handleVolume)
		r.Get("/split", s.handleSplit)
		r.Get("/intensity", s.handleIntensity)
		r.Post("/progression", s.handleProgression)
		r.Post("/adaptation", s.handleAdaptation)
		r.Post("/routines", s.handleGenerateRoutine)
		r.Get("/exercises", s.handleFindExercises)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/profile", s.handleGetProfile)
			r.Get("/analysis", s.handleUserAnalysis)
			r.Get("/routines/active", s.handleActivePlan)
			r.Get("/progression", s.handleUserProgression)
			r.Get("/adaptation", s.handleUserAdaptation)
			r.Get("/adaptation/reviews", s.handleAdaptationReviews)
			r.Get("/exercises/history", s.handleExerciseHistory)
			r.Get("/imports", s.handleImportLogs)

			// Writes (API key required)
			r.Group(func(r chi.Router) {
				r.Use(APIKeyAuth(s.apiKey))
				r.Put("/profile", s.handlePutProfile)
				r.Post("/routines", s.handleGenerateForUser)
				r.Post("/weights", s.handleLogWeight)
				r.Post("/sets/alpha", s.handleAlphaImport)
			})
		})
	})
}

func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.users, s.log)(next).ServeHTTP(w, r)
	})
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCoach strength coaching server. Analyze the lifter's profile, build weekly routines, prescribe load changes from logged sets and adapt the plan to body-weight trends. User data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolAnalyzeProfile, Handler: h.analyzeProfile},
		server.ServerTool{Tool: toolGetVolume, Handler: h.getVolume},
		server.ServerTool{Tool: toolRecommendSplit, Handler: h.recommendSplit},
		server.ServerTool{Tool: toolGetIntensity, Handler: h.getIntensity},
		server.ServerTool{Tool: toolGenerateRoutine, Handler: h.generateRoutine},
		server.ServerTool{Tool: toolCreatePlan, Handler: h.createPlan},
		server.ServerTool{Tool: toolGetActivePlan, Handler: h.getActivePlan},
		server.ServerTool{Tool: toolReviewExercise, Handler: h.reviewExercise},
		server.ServerTool{Tool: toolReviewAdaptation, Handler: h.reviewAdaptation},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolLogWeight, Handler: h.logWeight},
		server.ServerTool{Tool: toolFindExercises, Handler: h.findExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActivePlan, Handler: h.activePlan},
		server.ServerResource{Resource: resProfileAnalysis, Handler: h.profileAnalysis},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resActivePlan = mcp.NewResource(
	"repcoach://active_plan",
	"Active Plan",
	mcp.WithResourceDescription("The user's current weekly routine with per-exercise sets, reps, rest and RIR"),
	mcp.WithMIMEType("application/json"),
)

var resProfileAnalysis = mcp.NewResource(
	"repcoach://profile_analysis",
	"Profile Analysis",
	mcp.WithResourceDescription("BMI category, recommended goal, cardio protocol and warnings for the stored profile"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repcoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises the routine generator can pick from, with body part, pattern and equipment"),
	mcp.WithMIMEType("application/json"),
)

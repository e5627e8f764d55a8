package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the Telegram user ID injected by the transport
// layer. Returns 0 when no user is bound to the session.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// WithUserID returns a context with the given Telegram user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepBot", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepBot workout data server. Query logged workouts, sets, personal records, training volume summaries, and per-exercise progress. All data is scoped to the bound user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetRecords, Handler: h.getRecords},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resRecords, Handler: h.records},
		server.ServerResource{Resource: resDataStats, Handler: h.dataStats},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"repbot://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days with full exercise and set detail"),
	mcp.WithMIMEType("application/json"),
)

var resRecords = mcp.NewResource(
	"repbot://records",
	"Personal Records",
	mcp.WithResourceDescription("All personal records (max weight, session volume, estimated 1RM) per exercise"),
	mcp.WithMIMEType("application/json"),
)

var resDataStats = mcp.NewResource(
	"repbot://data_stats",
	"Data Statistics",
	mcp.WithResourceDescription("Row counts and date coverage of the workout database"),
	mcp.WithMIMEType("application/json"),
)

// Package mcp exposes session generation to MCP clients over stdio or
// streamable HTTP.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(b Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrainDay", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrainDay kettlebell and bodyweight session generator. "+
			"Call generate_session with today's check-in to get a workout, swap_exercise or reroll_session "+
			"to vary it, and complete_session with feedback afterwards so the rotation and cooldown advance."),
	)

	h := &handlers{b: b, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGenerateSession, Handler: h.generateSession},
		server.ServerTool{Tool: toolRerollSession, Handler: h.rerollSession},
		server.ServerTool{Tool: toolSwapExercise, Handler: h.swapExercise},
		server.ServerTool{Tool: toolCompleteSession, Handler: h.completeSession},
		server.ServerTool{Tool: toolGetState, Handler: h.getState},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resState, Handler: h.state},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resProtocolCatalog, Handler: h.protocolCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	b   Backend
	log *slog.Logger
}

// --- Resource definitions ---

var resState = mcp.NewResource(
	"trainday://state",
	"Training State",
	mcp.WithResourceDescription("Next priority bucket, week mode, cooldown and power gating state"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"trainday://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise with category, equipment tags and prescription type"),
	mcp.WithMIMEType("application/json"),
)

var resProtocolCatalog = mcp.NewResource(
	"trainday://protocol_catalog",
	"Protocol Catalog",
	mcp.WithResourceDescription("Every sets/reps/rest protocol grouped by prescription type"),
	mcp.WithMIMEType("application/json"),
)

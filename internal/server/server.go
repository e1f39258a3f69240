package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/trainday/internal/training"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *training.Service
	log      *slog.Logger
	apiKey   string
	version  string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *training.Service, apiKey, version string, log *slog.Logger) *Server {
	s := &Server{
		svc:      svc,
		log:      log,
		apiKey:   apiKey,
		version:  version,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves callers through the tailnet instead of the local
// dev identity. Call before serving.
func (s *Server) SetTailscale(lc WhoIser) {
	s.identity = TailscaleIdentity(lc, s.log)
}

// SetMCP mounts an MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.identity(next).ServeHTTP(w, r)
		})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleHealth)
		r.Get("/me", s.handleMe)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{category}", s.handleListExercises)
		r.Get("/exercise/{id}", s.handleGetExercise)
		r.Get("/protocols", s.handleListProtocols)
		r.Get("/protocols/{id}", s.handleGetProtocol)

		r.Get("/state", s.handleState)
		r.Put("/settings", s.handleUpdateSettings)
		r.Get("/benchmarks", s.handleBenchmarks)
		r.Put("/benchmarks", s.handleUpdateBenchmarks)

		r.Post("/generate", s.handleGenerate)
		r.Post("/reroll", s.handleReroll)
		r.Post("/swap", s.handleSwap)
		r.Post("/complete", s.handleComplete)
		r.Get("/history", s.handleHistory)
		r.Get("/sessions/{id}", s.handleGetSession)

		// Destructive endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/reset", s.handleReset)
		})
	})
}

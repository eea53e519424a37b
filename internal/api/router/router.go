// Package router assembles the HTTP surface of the dialogue API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shopguide/shopguide-ai-platform/internal/dialogue"
	httpmiddleware "github.com/shopguide/shopguide-ai-platform/internal/http/middleware"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// Config carries the handlers and settings the router mounts.
type Config struct {
	Logger             *logging.Logger
	DialogueHandler    *dialogue.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New builds the chi router with the full middleware chain and routes.
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(logger))

	r.Get("/health", cfg.DialogueHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/start", cfg.DialogueHandler.Start)
		r.Post("/message", cfg.DialogueHandler.Message)
		r.Post("/{sessionID}/reset", cfg.DialogueHandler.Reset)
		r.Delete("/{sessionID}", cfg.DialogueHandler.End)
		r.Get("/{sessionID}/transcript", cfg.DialogueHandler.Transcript)
	})

	return r
}

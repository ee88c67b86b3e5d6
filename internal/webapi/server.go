package webapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/render"
	"uniform-prompt-studio/internal/store"
)

type Options struct {
	Catalog catalog.Loaded
	Engine  *promptgen.Engine
	Store   *store.Store
	// Renderer is optional; render routes answer 501 without it.
	Renderer       render.Renderer
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

type Server struct {
	catalog        catalog.Loaded
	engine         *promptgen.Engine
	store          *store.Store
	renderer       render.Renderer
	requestTimeout time.Duration
	logger         zerolog.Logger
}

func New(opts Options) *Server {
	engine := opts.Engine
	if engine == nil {
		engine = promptgen.New(promptgen.Config{Logger: opts.Logger})
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Server{
		catalog:        opts.Catalog,
		engine:         engine,
		store:          opts.Store,
		renderer:       opts.Renderer,
		requestTimeout: timeout,
		logger:         opts.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, accessLog(s.logger))
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/v1/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(clientID)

		r.Get("/catalog", s.getCatalog)
		r.Get("/catalog/facets", s.getFacets)

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Get("/settings/options", s.getSettingsOptions)

		r.Get("/history", s.getHistory)
		r.Get("/favorites", s.getFavorites)
		r.Delete("/data", s.clearData)

		r.Route("/prompts", func(r chi.Router) {
			r.Post("/generate", s.generate)
			r.Get("/export", s.export)
			r.Post("/{id}/favorite", s.toggleFavorite)
			r.Put("/{id}/rating", s.setRating)
			r.Put("/{id}/result", s.attachResult)
			r.Post("/{id}/render", s.renderPrompt)
		})
	})

	return r
}

func (s *Server) library(r *http.Request) *store.Library {
	return s.store.Library(clientIDFromContext(r.Context()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// Package app wires the components shared by the web and bot binaries.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/config"
	"uniform-prompt-studio/internal/httpclient"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/render"
	"uniform-prompt-studio/internal/store"
)

type Deps struct {
	Catalog    catalog.Loaded
	Engine     *promptgen.Engine
	Store      *store.Store
	HTTPClient *http.Client
	// Renderer is nil when GEMINI_API_KEY is unset.
	Renderer render.Renderer
}

func Bootstrap(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Deps, error) {
	loaded, err := catalog.LoadDir(ctx, cfg.CatalogDir, catalog.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info().
		Str("source", string(loaded.Source)).
		Int("uniform_types", len(loaded.Catalog.Uniforms)).
		Msg("catalog loaded")

	kv, err := store.Open(ctx, store.OpenOptions{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})

	deps := &Deps{
		Catalog:    loaded,
		Engine:     promptgen.New(promptgen.Config{Logger: logger}),
		Store:      store.New(kv, store.Options{HistoryLimit: cfg.HistoryLimit, Logger: logger}),
		HTTPClient: httpClient,
	}
	if cfg.RenderEnabled() {
		deps.Renderer = render.New(render.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	} else {
		logger.Info().Msg("rendering disabled, GEMINI_API_KEY not set")
	}
	return deps, nil
}

func (d *Deps) Close() error {
	return d.Store.Close()
}

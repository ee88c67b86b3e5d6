package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"uniform-prompt-studio/internal/app"
	"uniform-prompt-studio/internal/config"
	"uniform-prompt-studio/internal/handlers"
	"uniform-prompt-studio/internal/logging"
	"uniform-prompt-studio/internal/session"
	"uniform-prompt-studio/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		panic(err)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: deps.HTTPClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}

	sessions := session.NewStore(session.Options{})
	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Catalog:  deps.Catalog,
		Engine:   deps.Engine,
		Store:    deps.Store,
		Sessions: sessions,
		Renderer: deps.Renderer,
		Logger:   logger,
	})

	go sweepSessions(ctx, sessions)

	logger.Info().Str("username", tg.Username()).Int("max_concurrent", cfg.MaxConcurrent).Msg("bot started")

	updates := tg.Updates(telegram.UpdatesOptions{Timeout: 30 * time.Second})
	defer tg.StopUpdates()

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrent)
	defer g.Wait()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info().Msg("updates channel closed")
				return
			}

			// Go blocks while MAX_CONCURRENT updates are in flight.
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Int("update_id", update.UpdateID).Msg("handle update failed")
				}
				return nil
			})
		}
	}
}

func sweepSessions(ctx context.Context, sessions *session.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep()
		}
	}
}

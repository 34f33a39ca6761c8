package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/config"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/gateway"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/studio"
	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/web"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	gw := gateway.New(client, gateway.Options{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		EditModel:    cfg.EditModel,
		ImageModel:   cfg.ImageModel,
		VideoModel:   cfg.VideoModel,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
		Logger:       logger,
	})

	var prefStore studio.PrefStore
	if cfg.PrefsFile != "" {
		prefStore = &studio.FilePrefStore{Path: cfg.PrefsFile}
	}

	coord := studio.New(studio.Options{
		Generator: gw,
		PrefStore: prefStore,
		Logger:    logger,
	})

	server := web.NewServer(coord, logger, cfg.MaxBodySize)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/export"
	"github.com/docstruct/docstruct/internal/extract"
	"github.com/docstruct/docstruct/internal/repository"
	"github.com/docstruct/docstruct/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("GROQ_API_KEY not set; extraction stays disabled until a key is supplied in the session")
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		// Ephemeral secret: sessions do not survive a restart.
		secret = uuid.New().String()
		logger.Warn("SESSION_SECRET not set; using an ephemeral session secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.History.DBPath)
	if err != nil {
		logger.Error("failed to open run history", "error", err, "path", cfg.History.DBPath)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close run history", "error", cerr)
		}
	}()
	runs := repository.NewRunRepository(db, logger)

	extractor := extract.NewPDFExtractor(logger)
	exporter := export.NewService(logger)
	svc := server.NewService(cfg, extractor, exporter, runs, logger)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = server.NewTemplates()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))
	svc.Register(e)

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr, "model", cfg.LLM.Model)
		if err := e.Start(cfg.Server.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes together.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"codeberg.org/mkoepke/accountd/internal/config"
	"codeberg.org/mkoepke/accountd/internal/database"
	"codeberg.org/mkoepke/accountd/internal/handlers"
	appmw "codeberg.org/mkoepke/accountd/internal/middleware"
	"codeberg.org/mkoepke/accountd/internal/repository"
	"codeberg.org/mkoepke/accountd/internal/services/account"
	"codeberg.org/mkoepke/accountd/internal/services/activation"
	"codeberg.org/mkoepke/accountd/internal/services/email"
	"codeberg.org/mkoepke/accountd/internal/services/session"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository and services
	repo := repository.New(db)
	activations := activation.NewService(repo)

	var mailer email.Sender
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to create email service: %w", err)
		}
	} else {
		slog.Warn("no SMTP host configured, verification mails are logged only")
		mailer = email.NewLogSender(cfg.Server.BaseURL)
	}

	accounts := account.NewService(repo, activations, mailer)

	sessions, err := session.NewManager(&cfg.Session, cfg.Secure())
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	// Leftover expired codes from previous runs
	if err := activations.PurgeExpired(ctx); err != nil {
		slog.Warn("failed to purge expired activation codes", "error", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = handlers.NewRenderer()

	setupMiddleware(e, cfg, sessions, repo)
	setupRoutes(e, accounts, sessions)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, accounts *account.Service, sessions *session.Manager) {
	h := handlers.New(accounts)
	authHandler := handlers.NewAuth(accounts, sessions)

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/activate/:code", h.Activate)

	a := e.Group("/auth")
	a.GET("/register", authHandler.RegisterPage)
	a.POST("/register", authHandler.Register)
	a.GET("/login", authHandler.LoginPage)
	a.POST("/login", authHandler.Login)
	a.POST("/logout", authHandler.Logout)

	p := e.Group("/profile", appmw.RequireAuth)
	p.GET("", h.ProfilePage)
	p.POST("", h.ProfileUpdate)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

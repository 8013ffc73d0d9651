package main

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

	"github.com/mtlprog/tasktrack/internal/config"
	"github.com/mtlprog/tasktrack/internal/database"
	"github.com/mtlprog/tasktrack/internal/handler"
	"github.com/mtlprog/tasktrack/internal/middleware"
	"github.com/mtlprog/tasktrack/internal/repository"
	"github.com/urfave/cli/v2"
)

func connect(c *cli.Context) (*database.DB, error) {
	opts := database.DefaultPoolOptions
	if c.IsSet("db-max-conns") {
		opts.MaxConns = int32(c.Int("db-max-conns"))
	}

	db, err := database.New(c.Context, c.String("database-url"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	verifier, err := middleware.NewJWTVerifier(c.String("jwt-secret"))
	if err != nil {
		return fmt.Errorf("invalid jwt secret: %w", err)
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.New(db.Pool(), verifier)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func runCreateUser(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	user, err := repository.NewUserRepository(db.Pool()).Create(c.Context, c.String("username"))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username)
	fmt.Fprintln(c.App.Writer, user.ID)
	return nil
}

func runIssueToken(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repository.NewUserRepository(db.Pool()).GetByID(c.Context, c.String("user-id"))
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := middleware.IssueToken(c.String("jwt-secret"), user.ID, c.Duration("ttl"), time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(c.App.Writer, token)
	return nil
}

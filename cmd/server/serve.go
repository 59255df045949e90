package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-app/internal/config"
	"notes-app/internal/handler"
	"notes-app/internal/logging"
	"notes-app/internal/middleware"
	"notes-app/internal/repository"
	"notes-app/internal/router"
	"notes-app/internal/service"
	"notes-app/internal/view"
	"notes-app/internal/websession"
	"notes-app/pkg/hash"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(os.Stdout, cfg.Logging.Level, cfg.Server.Env)

	store, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	authService, err := service.NewAuthService(store.Users, hash.New(hash.DefaultCost), cfg.Auth.PasswordMinLength)
	if err != nil {
		return err
	}
	sessionService := service.NewSessionService(store.Sessions, cfg.Session.MaxAge, cfg.Session.TouchAfter, log)
	noteService := service.NewNoteService(store.Notes)

	renderer, err := view.New()
	if err != nil {
		return err
	}
	cookies := websession.New(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.MaxAge, cfg.Session.SecureCookie)

	pages := handler.NewPages(renderer, cookies, log)
	noteHandler := handler.NewNoteHandler(pages, noteService, cfg.Notes.ShowRequiresOwner)
	authHandler := handler.NewAuthHandler(pages, authService, sessionService)
	guard := middleware.NewSessionGuard(sessionService, cookies, pages.Error, log)

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: router.New(router.Deps{
			Pages:  pages,
			Notes:  noteHandler,
			Auth:   authHandler,
			Guard:  guard,
			DB:     store,
			Logger: log,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting notes server", "addr", srv.Addr, "env", cfg.Server.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

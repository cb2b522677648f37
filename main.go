package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/task-tracker/internal/config"
	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/email"
	"github.com/msomdec/task-tracker/internal/handler"
	"github.com/msomdec/task-tracker/internal/repository/firebase"
	"github.com/msomdec/task-tracker/internal/repository/memory"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
	"github.com/msomdec/task-tracker/internal/service"
	"github.com/msomdec/task-tracker/internal/view"
)

const sessionIdleTimeout = 24 * time.Hour

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open backend", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}

	if err := backend.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		backend.Close()
		os.Exit(1)
	}
	slog.Info("backend ready", "backend", cfg.Backend)

	var mailer domain.Mailer = email.NewNoopSender()
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	}

	authService := service.NewAuthService(backend.Identities(), backend.Users(), cfg.JWTSecret)
	taskService := service.NewTaskService(backend.Tasks(), cfg.TaskPolicy,
		service.NewAssignmentNotifier(mailer, view.AssignmentMail))
	sessions := service.NewSessionRegistry()
	// Five attempts, refilled one every twelve seconds.
	limiter := service.NewAttemptLimiter(ctx, 1.0/12, 5)

	go pruneSessions(ctx, sessions)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:         authService,
		Tasks:        taskService,
		Sessions:     sessions,
		Limiter:      limiter,
		CookieSecure: cfg.CookieSecure,
	})

	var root http.Handler = mux
	if cfg.CSRFKey != "" {
		root = handler.CSRF([]byte(cfg.CSRFKey), cfg.CookieSecure)(root)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(root),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "policy", cfg.TaskPolicy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Ending the subscriptions lets open board streams return, so Shutdown
	// only waits for in-flight writes. The store closes last.
	sessions.ReleaseAll()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		slog.Error("server shutdown error", "error", shutdownErr)
	}
	if err := backend.Close(); err != nil {
		slog.Error("close backend", "error", err)
	}
	if shutdownErr != nil {
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config) (domain.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory backend; data is lost on restart")
		return memory.New(cfg.BcryptCost), nil
	case config.BackendFirestore:
		b, err := firebase.New(ctx, firebase.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			APIKey:          cfg.FirebaseAPIKey,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		db, err := sqlite.New(cfg.DatabasePath, sqlite.WithBcryptCost(cfg.BcryptCost))
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

func pruneSessions(ctx context.Context, sessions *service.SessionRegistry) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(sessionIdleTimeout); n > 0 {
				slog.Info("pruned idle sessions", "count", n)
			}
		}
	}
}

// tutord - Tutoring Orchestration Server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/eduagents/tutord/internal/api"
	"github.com/eduagents/tutord/internal/assessment"
	"github.com/eduagents/tutord/internal/config"
	"github.com/eduagents/tutord/internal/domain"
	"github.com/eduagents/tutord/internal/identity"
	"github.com/eduagents/tutord/internal/knowledge"
	"github.com/eduagents/tutord/internal/messaging"
	"github.com/eduagents/tutord/internal/middleware"
	"github.com/eduagents/tutord/internal/push"
	"github.com/eduagents/tutord/internal/store"
	"github.com/eduagents/tutord/internal/transcript"
	"github.com/eduagents/tutord/internal/tutor"
	"github.com/eduagents/tutord/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	transcriptLog, err := transcript.NewLogger(transcript.Config{
		Enabled:       cfg.Transcript.Enabled,
		Dir:           cfg.Transcript.Dir,
		QueueSize:     cfg.Transcript.QueueSize,
		GlobalEnabled: cfg.Transcript.GlobalEnabled,
		GlobalPath:    cfg.Transcript.GlobalPath,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcriptLog.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	// Assemble the message bus and services. Registration order does not
	// matter; each service registers its own address.
	bus := messaging.NewBus()

	catalog := knowledge.Catalog()
	fallback := domain.CurriculumKey{Subject: cfg.DefaultSubject, Level: cfg.DefaultLevel}
	if !catalog.Contains(fallback) {
		slog.Error("Default subject/level pair is not in the catalog",
			"subject", cfg.DefaultSubject, "level", cfg.DefaultLevel)
		os.Exit(1)
	}

	engine := tutor.NewEngine(tutor.Config{
		Bus:                 bus,
		Catalog:             catalog,
		Fallback:            fallback,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		SweepInterval:       cfg.SweepInterval,
		History:             repo,
	})

	knowledgeSvc := knowledge.NewService(bus)

	var analyzer assessment.Analyzer
	if cfg.AssessmentAPIKey != "" {
		llm, err := assessment.NewLLMAnalyzer(cfg.AssessmentAPIKey, cfg.AssessmentModel)
		if err != nil {
			slog.Error("Failed to initialize assessment analyzer", "error", err)
			os.Exit(1)
		}
		analyzer = llm
		slog.Info("Assessment analyzer using external model")
	} else {
		slog.Info("ANTHROPIC_API_KEY not set, assessment uses local keyword analysis")
	}
	assessmentSvc := assessment.NewService(bus, analyzer)

	feed := push.NewFeed(50)
	conns := push.NewConnManager()
	relay := push.NewRelay(bus, feed, conns, transcriptLog)

	// Initialize handlers.
	sessionHandler := api.NewSessionHandler(bus, feed, repo, transcriptLog)
	healthHandler := api.NewHealthHandler(repo, cfg.HealthCheckTimeout)
	wsHandler := push.NewWebSocketHandler(conns, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	// Liveness is the heartbeat above; this also checks the database.
	r.Get("/api/health", healthHandler.ServeHTTP)

	r.Route("/api/session", func(r chi.Router) {
		r.Post("/start", sessionHandler.Start)
		r.Post("/input", sessionHandler.Input)
		r.Get("/outputs", sessionHandler.Outputs)
		r.Get("/history", sessionHandler.History)
	})

	// WebSocket endpoint.
	r.Get("/ws/session", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background services.
	go engine.Run(ctx)
	go knowledgeSvc.Run(ctx)
	go assessmentSvc.Run(ctx)
	go relay.Run(ctx)
	store.StartPruneWorker(ctx, repo, cfg.HistoryRetention)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conns.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auditflow/auditflow/internal/aiclient"
	"github.com/auditflow/auditflow/internal/config"
	"github.com/auditflow/auditflow/internal/db"
	"github.com/auditflow/auditflow/internal/middleware"
	"github.com/auditflow/auditflow/internal/pipeline"
	"github.com/auditflow/auditflow/internal/repository"
	"github.com/auditflow/auditflow/internal/upload"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Run migrations before opening the pool
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	ticketRepo := repository.NewTicketRepository(conn.Pool)

	// The AI tiers are optional: with ai.enabled=false the pipeline runs
	// on the local lexicons only.
	var classifier pipeline.BatchClassifier
	var suggester pipeline.DepartmentSuggester
	if cfg.AI.Enabled {
		client := aiclient.New(aiclient.Config{
			BaseURL:      cfg.AI.BaseURL,
			BatchTimeout: cfg.AI.BatchTimeout,
			RowTimeout:   cfg.AI.RowTimeout,
		}, logger)
		classifier = client
		suggester = client
	}

	pipe := pipeline.New(classifier, suggester, pipeline.Options{
		Statuses:               cfg.Pipeline.Statuses,
		MaxSuggestionsInFlight: cfg.AI.MaxConcurrent,
	}, logger)

	uploadHandler := upload.NewHTTPHandler(pipe, ticketRepo, logger)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/api/uploads", corsHandler.Handler(middleware.LoggingMiddleware(logger, uploadHandler)))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting upload server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"emergency-dispatch-backend/config"
	"emergency-dispatch-backend/internal/api"
	"emergency-dispatch-backend/internal/db"
	"emergency-dispatch-backend/internal/fleet"
	"emergency-dispatch-backend/internal/llm"
	"emergency-dispatch-backend/internal/notification"
	"emergency-dispatch-backend/internal/orchestrator"
	"emergency-dispatch-backend/internal/session"
	"emergency-dispatch-backend/internal/tools"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "dispatch-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Operator push alerts are optional; the API works without them.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; operator push alerts disabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the notification worker pool
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
	pool.Start(ctx)

	// Wire the dispatch pipeline: fleet registry, tool executor,
	// LLM-driven orchestrator, session store.
	registry := fleet.NewRegistry(gormDB)
	executor := tools.NewExecutor(registry, func(dispatchID int64) {
		pool.Notify(notification.Job{DispatchID: dispatchID, Event: notification.EventDispatched})
	})
	client := llm.NewClient(&cfg.LLM)
	orch := orchestrator.New(client, executor, cfg.LLM.MaxToolIterations)
	sessions := session.NewManager(cfg.Session.IdleTTL, cfg.Session.CleanupInterval)

	// Initialize router
	handler := api.NewHandler(gormDB, registry, sessions, orch, pool, webpushOptions)
	router := api.NewRouter(&cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

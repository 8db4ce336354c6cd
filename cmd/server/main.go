package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/database"
	"github.com/nicozh/lesson-scheduler/internal/handlers"
	"github.com/nicozh/lesson-scheduler/internal/middleware"
	"github.com/nicozh/lesson-scheduler/internal/observability"
	"github.com/nicozh/lesson-scheduler/internal/repository"
	"github.com/nicozh/lesson-scheduler/internal/services"

	_ "time/tzdata"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Run migrations
	if err := database.Migrate(db, cfg.Database.Driver, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db, cfg.Database.Driver)

	// Scheduling metrics, exposed at /metrics
	metrics := observability.NewSchedulingMetrics()

	// Initialize services
	svc := services.New(cfg, repos, metrics)

	// Revoked-token set: Redis when configured, in-process map otherwise
	// (AuthService already falls back on its own if this is never called).
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.Auth.NewRedisRevocationStore(redisClient)
	}

	// Initialize handlers
	h := handlers.New(cfg, svc, repos)

	// Set up router
	mux := http.NewServeMux()

	// Login issues the bearer token consumed by everything under /api/schedules/
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// Scheduling API, bearer-JWT protected
	schedule := http.NewServeMux()
	schedule.HandleFunc("POST /api/schedules/{id}/generate", h.Schedule.Generate)
	schedule.HandleFunc("POST /api/schedules/{id}/finalize", h.Schedule.Finalize)
	schedule.HandleFunc("GET /api/schedules/{id}/finalized", h.Schedule.Finalized)
	mux.Handle("/api/schedules/", middleware.RequireBearerAuth(svc.Auth)(schedule))

	// Metrics
	mux.Handle("GET /metrics", metrics.Handler())

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Error writing health check response: %v", err)
		}
	})

	// Apply global middleware
	handler := middleware.Chain(
		mux,
		middleware.Logger,
		middleware.Recover,
		middleware.RequestID,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

package main

import (
	"context"
	"errors"
	"fitcoach/platform/internal/api"
	"fitcoach/platform/internal/client"
	"fitcoach/platform/internal/config"
	"fitcoach/platform/internal/metrics"
	"fitcoach/platform/internal/repository/postgres"
	"fitcoach/platform/internal/service"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting workout service...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	db, err := postgres.ConnectDB(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer func() {
		log.Println("Closing database connection...")
		if err := postgres.DisconnectDB(db); err != nil {
			log.Printf("ERROR: Failed to close database connection: %v", err)
		}
	}()
	log.Println("Database connection established.")

	// --- Schema Migration ---
	if err := postgres.MigrateWorkoutSchema(db); err != nil {
		log.Fatalf("FATAL: Schema migration failed: %v", err)
	}
	log.Println("Schema migration completed.")

	// --- Initialize Repositories ---
	sessionRepo := postgres.NewSessionRepository(db)
	questRepo := postgres.NewQuestRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)

	// --- Peer Clients ---
	userClient := client.NewUserClient(cfg.Peers.UserServiceURL)

	// --- Initialize Services ---
	workoutService := service.NewWorkoutService(sessionRepo, questRepo, catalogRepo, userClient)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	log.Println("Setting up API routes...")
	m := metrics.New("workoutservice")
	api.SetupWorkoutRoutes(router, cfg.JWT.Secret, m, workoutService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Workout service starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

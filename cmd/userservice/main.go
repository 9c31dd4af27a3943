package main

import (
	"context"
	"errors"
	"fitcoach/platform/internal/api"
	"fitcoach/platform/internal/config"
	"fitcoach/platform/internal/metrics"
	"fitcoach/platform/internal/repository/postgres"
	"fitcoach/platform/internal/service"
	"fitcoach/platform/internal/worker/expiry"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting user service...")

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
	if err := postgres.MigrateUserSchema(db); err != nil {
		log.Fatalf("FATAL: Schema migration failed: %v", err)
	}
	log.Println("Schema migration completed.")

	// --- Initialize Repositories ---
	userRepo := postgres.NewUserRepository(db)
	mappingRepo := postgres.NewMappingRepository(db)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo)
	mappingService := service.NewMappingService(userRepo, mappingRepo, cfg.Mapping.ExpiryGrace)

	// --- Mapping Expiry Sweeper ---
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sweeper := expiry.NewSweeper(mappingRepo, cfg.Mapping.SweepInterval)
	go sweeper.Run(sweeperCtx)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	log.Println("Setting up API routes...")
	m := metrics.New("userservice")
	api.SetupUserRoutes(router, cfg.JWT.Secret, m, authService, userService, mappingService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("User service starting on %s", cfg.Server.Address)

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

	stopSweeper()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

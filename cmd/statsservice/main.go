package main

import (
	"context"
	"errors"
	"fitcoach/platform/internal/api"
	"fitcoach/platform/internal/client"
	"fitcoach/platform/internal/config"
	"fitcoach/platform/internal/metrics"
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
	log.Println("Starting stats service...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Peer Clients ---
	// The stats service keeps no store of its own; everything it serves
	// comes from the sibling services.
	userClient := client.NewUserClient(cfg.Peers.UserServiceURL)
	workoutClient := client.NewWorkoutClient(cfg.Peers.WorkoutServiceURL)

	// --- Initialize Services ---
	statsService := service.NewStatsService(userClient, workoutClient)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	log.Println("Setting up API routes...")
	m := metrics.New("statsservice")
	api.SetupStatsRoutes(router, cfg.JWT.Secret, m, statsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Stats service starting on %s", cfg.Server.Address)

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

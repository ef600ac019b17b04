package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/api"
	"github.com/fafnerzhang/codetrekking/internal/config"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/planstore"
	"github.com/fafnerzhang/codetrekking/internal/prompt"
	"github.com/fafnerzhang/codetrekking/internal/repository/mongo"
	"github.com/fafnerzhang/codetrekking/internal/service"
	"github.com/fafnerzhang/codetrekking/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting training-plan generation service...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureRunIndexes(ctx, appDB.Collection("planning_runs"))
	}()

	// --- Transcript Archive ---
	var archive storage.TranscriptArchive = storage.NopArchive{}
	if cfg.S3.BucketName != "" {
		archive, err = storage.NewS3Archive(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize transcript archive: %v", err)
		}
	} else {
		log.Println("No transcript bucket configured; transcripts will be discarded.")
	}

	// --- Generation Backend ---
	genClient, err := generation.NewOpenAIClient(cfg.Generation)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize generation client: %v", err)
	}

	// --- Persistence Side-Channel ---
	store := planstore.NewHTTPStore(cfg.PlanStore)
	if cfg.PlanStore.Token == "" {
		log.Println("No planstore credential configured; generated artifacts will not be persisted.")
	}

	// --- Initialize Repositories ---
	runRepo := mongo.NewMongoRunRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	composer := &prompt.Composer{Methodology: cfg.Planner.Methodology}
	tokenService := service.NewTokenService(cfg.Server.ServiceKey, cfg.JWT.Secret, cfg.JWT.Expiration)
	phaseService := service.NewPhaseService(genClient, composer, store, runRepo, archive)
	weekService := service.NewWeekService(genClient, composer, archive)
	workoutService := service.NewWorkoutService(genClient, composer, store, runRepo, archive, service.WorkoutServiceOptions{
		FanoutConcurrency: cfg.Planner.FanoutConcurrency,
		RetryAttempts:     cfg.Planner.RetryAttempts,
		BackoffBase:       cfg.Planner.BackoffBase,
	})

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, tokenService, phaseService, weekService, workoutService, runRepo)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls are slow
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

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

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendpulse/backend/internal/api"
	"github.com/trendpulse/backend/internal/api/handlers"
	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/lifecycle"
	"github.com/trendpulse/backend/pkg/config"
	"github.com/trendpulse/backend/pkg/database"
	"github.com/trendpulse/backend/pkg/logger"
	"github.com/trendpulse/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                                        - Health check
  POST /api/trends/{trendID}/decline-signals          - Evaluate a trend
  GET  /api/trends/{trendID}/decline-signals          - Signal history
  GET  /api/trends/{trendID}/decline-signals/latest   - Latest evaluation

Example:
  go run ./cmd/trendpulse api
  go run ./cmd/trendpulse api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "trendpulse")

	// 5. Build the engine from deployment config
	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	// 6. Create repository and lifecycle client
	repo := decline.NewRepository(db.Pool)
	lifecycleClient := lifecycle.New(cfg, log)

	// 7. Create handler, router, server
	declineHandler := handlers.NewDeclineHandler(engine, repo, lifecycleClient, cache, log)
	router := api.NewRouter(declineHandler, log)
	server := api.New(cfg, log, router)

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendpulse/backend/internal/contracts"
	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/lifecycle"
	"github.com/trendpulse/backend/pkg/config"
	"github.com/trendpulse/backend/pkg/database"
	"github.com/trendpulse/backend/pkg/logger"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [trend_id]",
	Short: "Evaluate decline signals for one trend",
	Long: `Evaluate decline signals for a single trend from stored metric
history and print the response as JSON.

Example:
  go run ./cmd/trendpulse evaluate dance-challenge-2026
  go run ./cmd/trendpulse evaluate dance-challenge-2026 --days 14`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

var evaluateDays int

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().IntVar(&evaluateDays, "days", 30, "metric history window in days")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	trendID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	repo := decline.NewRepository(db.Pool)
	lifecycleClient := lifecycle.New(cfg, log)

	ctx := context.Background()

	to := time.Now()
	from := to.AddDate(0, 0, -evaluateDays)
	metrics, err := repo.GetDailyMetrics(ctx, trendID, from, to)
	if err != nil {
		return fmt.Errorf("get daily metrics: %w", err)
	}

	info, err := lifecycleClient.GetLifecycle(ctx, trendID)
	if err != nil {
		log.WithError(err).Warn("Lifecycle classifier unavailable, evaluating degraded")
		info = nil
	}

	resp, err := engine.Evaluate(ctx, contracts.DeclineSignalRequest{
		TrendID:      trendID,
		Lifecycle:    info,
		DailyMetrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if _, err := repo.SaveResponse(ctx, *resp); err != nil {
		log.WithError(err).Error("Failed to append signal history")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/lifecycle"
	"github.com/trendpulse/backend/internal/scheduler"
	"github.com/trendpulse/backend/internal/scheduler/jobs"
	"github.com/trendpulse/backend/pkg/config"
	"github.com/trendpulse/backend/pkg/database"
	"github.com/trendpulse/backend/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the periodic evaluation scheduler",
	Long: `Start the scheduler daemon.

Registered jobs:
- trend_evaluation: re-scores every tracked trend (EVALUATE_SCHEDULE,
  hourly by default) and appends results to the signal history.

Stop with Ctrl+C.

Example:
  go run ./cmd/trendpulse scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
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

	sched := scheduler.New(log)

	evaluateJob := jobs.NewEvaluateJob(engine, repo, lifecycleClient, cfg.EvaluateSchedule, log)
	if err := sched.AddJob(evaluateJob); err != nil {
		return fmt.Errorf("add evaluation job: %w", err)
	}

	sched.Start()
	log.Info("Scheduler running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

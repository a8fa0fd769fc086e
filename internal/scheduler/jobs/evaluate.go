package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/trendpulse/backend/internal/contracts"
	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/lifecycle"
	"github.com/trendpulse/backend/pkg/logger"
)

const evaluateWindowDays = 30

// EvaluateJob re-scores every tracked trend on a schedule so the signal
// history accumulates without API traffic.
type EvaluateJob struct {
	engine    *decline.Engine
	repo      *decline.Repository
	lifecycle *lifecycle.Client
	schedule  string
	logger    *logger.Logger
}

// NewEvaluateJob creates the periodic evaluation job.
func NewEvaluateJob(
	engine *decline.Engine,
	repo *decline.Repository,
	lifecycleClient *lifecycle.Client,
	schedule string,
	log *logger.Logger,
) *EvaluateJob {
	return &EvaluateJob{
		engine:    engine,
		repo:      repo,
		lifecycle: lifecycleClient,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name.
func (j *EvaluateJob) Name() string {
	return "trend_evaluation"
}

// Schedule returns the cron expression.
func (j *EvaluateJob) Schedule() string {
	return j.schedule
}

// Run evaluates all tracked trends. A single trend failing (too little
// history, store error) is logged and skipped; the batch continues.
func (j *EvaluateJob) Run(ctx context.Context) error {
	trendIDs, err := j.repo.ListTrackedTrends(ctx)
	if err != nil {
		return fmt.Errorf("list tracked trends: %w", err)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -evaluateWindowDays)

	var evaluated, skipped int
	for _, trendID := range trendIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.evaluateOne(ctx, trendID, from, to); err != nil {
			j.logger.WithError(err).WithFields(map[string]interface{}{
				"trend_id": trendID,
			}).Warn("Trend evaluation skipped")
			skipped++
			continue
		}
		evaluated++
	}

	j.logger.WithFields(map[string]interface{}{
		"evaluated": evaluated,
		"skipped":   skipped,
	}).Info("Tracked trends evaluated")

	return nil
}

func (j *EvaluateJob) evaluateOne(ctx context.Context, trendID string, from, to time.Time) error {
	metrics, err := j.repo.GetDailyMetrics(ctx, trendID, from, to)
	if err != nil {
		return fmt.Errorf("get daily metrics: %w", err)
	}

	var info *contracts.LifecycleInfo
	if j.lifecycle != nil {
		info, err = j.lifecycle.GetLifecycle(ctx, trendID)
		if err != nil {
			// Degraded hint; the engine scores with UNKNOWN.
			info = nil
		}
	}

	resp, err := j.engine.Evaluate(ctx, contracts.DeclineSignalRequest{
		TrendID:      trendID,
		Lifecycle:    info,
		DailyMetrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if _, err := j.repo.SaveResponse(ctx, *resp); err != nil {
		return fmt.Errorf("append signal history: %w", err)
	}

	return nil
}

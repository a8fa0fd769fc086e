package decline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trendpulse/backend/internal/contracts"
)

// Repository persists engine output and reads metric history. The signal
// history is append-only: every evaluation adds a row keyed by trend_id,
// nothing is ever updated in place.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a decline signal repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveResponse appends one evaluation to the trend's signal history.
func (r *Repository) SaveResponse(ctx context.Context, resp contracts.DeclineSignalResponse) (int64, error) {
	breakdown, err := json.Marshal(resp.SignalBreakdown)
	if err != nil {
		return 0, fmt.Errorf("marshal signal breakdown: %w", err)
	}

	query := `
		INSERT INTO analytics.decline_signals
			(trend_id, trend_name, evaluated_at, overall_risk_score, alert_level,
			 stage_used, confidence, predicted_days_to_critical, signal_breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		resp.TrendID, resp.TrendName, resp.Timestamp,
		resp.OverallRiskScore, resp.AlertLevel, resp.StageUsed,
		resp.Confidence, resp.PredictedDaysToCritical, breakdown,
	).Scan(&id)

	return id, err
}

// GetHistory returns a trend's signal history, newest first.
func (r *Repository) GetHistory(ctx context.Context, trendID string, limit int) ([]contracts.DeclineSignalResponse, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT trend_id, trend_name, evaluated_at, overall_risk_score, alert_level,
			   stage_used, confidence, predicted_days_to_critical, signal_breakdown
		FROM analytics.decline_signals
		WHERE trend_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, trendID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []contracts.DeclineSignalResponse
	for rows.Next() {
		var resp contracts.DeclineSignalResponse
		var breakdown []byte
		if err := rows.Scan(
			&resp.TrendID, &resp.TrendName, &resp.Timestamp,
			&resp.OverallRiskScore, &resp.AlertLevel, &resp.StageUsed,
			&resp.Confidence, &resp.PredictedDaysToCritical, &breakdown,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(breakdown, &resp.SignalBreakdown); err != nil {
			return nil, fmt.Errorf("unmarshal signal breakdown: %w", err)
		}
		history = append(history, resp)
	}

	return history, rows.Err()
}

// GetDailyMetrics returns a trend's metric history in chronological order.
func (r *Repository) GetDailyMetrics(ctx context.Context, trendID string, from, to time.Time) ([]contracts.DailyMetric, error) {
	query := `
		SELECT metric_date, total_engagement, views, posts_count, creators_count,
			   avg_creator_followers, avg_comments_per_post, avg_engagement_per_post
		FROM analytics.trend_daily_metrics
		WHERE trend_id = $1 AND metric_date BETWEEN $2 AND $3
		ORDER BY metric_date ASC`

	rows, err := r.pool.Query(ctx, query, trendID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []contracts.DailyMetric
	for rows.Next() {
		var m contracts.DailyMetric
		if err := rows.Scan(
			&m.Date, &m.TotalEngagement, &m.Views, &m.PostsCount, &m.CreatorsCount,
			&m.AvgCreatorFollowers, &m.AvgCommentsPerPost, &m.AvgEngagementPerPost,
		); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// ListTrackedTrends returns the trend ids the scheduler re-evaluates.
func (r *Repository) ListTrackedTrends(ctx context.Context) ([]string, error) {
	query := `
		SELECT trend_id
		FROM analytics.tracked_trends
		WHERE enabled = true
		ORDER BY trend_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

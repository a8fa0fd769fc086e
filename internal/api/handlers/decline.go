package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/trendpulse/backend/internal/contracts"
	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/lifecycle"
	"github.com/trendpulse/backend/pkg/logger"
	"github.com/trendpulse/backend/pkg/redis"
)

const latestCacheTTL = 15 * time.Minute

// DeclineHandler handles decline signal API endpoints.
type DeclineHandler struct {
	engine    *decline.Engine
	repo      *decline.Repository
	lifecycle *lifecycle.Client
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewDeclineHandler creates a decline signal handler.
func NewDeclineHandler(
	engine *decline.Engine,
	repo *decline.Repository,
	lifecycleClient *lifecycle.Client,
	cache *redis.Cache,
	log *logger.Logger,
) *DeclineHandler {
	return &DeclineHandler{
		engine:    engine,
		repo:      repo,
		lifecycle: lifecycleClient,
		cache:     cache,
		logger:    log,
	}
}

// evaluateRequest is the POST body. Daily metrics and the lifecycle hint are
// both optional: missing metrics are loaded from the store, a missing hint
// is fetched from the classifier (and absence of both sources degrades to
// UNKNOWN-stage scoring).
type evaluateRequest struct {
	TrendName    string                   `json:"trend_name"`
	Lifecycle    *contracts.LifecycleInfo `json:"lifecycle_info,omitempty"`
	DailyMetrics []contracts.DailyMetric  `json:"daily_metrics,omitempty"`
	WindowDays   int                      `json:"window_days,omitempty"`
}

// Evaluate scores one trend and appends the result to its history.
// POST /api/trends/{trendID}/decline-signals
func (h *DeclineHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trendID := mux.Vars(r)["trendID"]

	var body evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	metrics := body.DailyMetrics
	if len(metrics) == 0 {
		windowDays := body.WindowDays
		if windowDays <= 0 {
			windowDays = 30
		}
		to := time.Now()
		from := to.AddDate(0, 0, -windowDays)

		var err error
		metrics, err = h.repo.GetDailyMetrics(ctx, trendID, from, to)
		if err != nil {
			h.logger.WithError(err).WithFields(map[string]interface{}{
				"trend_id": trendID,
			}).Error("Failed to get daily metrics")
			respondError(w, http.StatusInternalServerError, "Failed to get metric history")
			return
		}
	}

	info := body.Lifecycle
	if info == nil && h.lifecycle != nil {
		fetched, err := h.lifecycle.GetLifecycle(ctx, trendID)
		if err != nil {
			// Classifier down: score degraded rather than fail.
			h.logger.WithError(err).WithFields(map[string]interface{}{
				"trend_id": trendID,
			}).Warn("Lifecycle classifier unavailable")
		} else {
			info = fetched
		}
	}

	resp, err := h.engine.Evaluate(ctx, contracts.DeclineSignalRequest{
		TrendID:      trendID,
		TrendName:    body.TrendName,
		Lifecycle:    info,
		DailyMetrics: metrics,
	})
	if err != nil {
		var verr *contracts.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"trend_id": trendID,
		}).Error("Evaluation failed")
		respondError(w, http.StatusInternalServerError, "Evaluation failed")
		return
	}

	if _, err := h.repo.SaveResponse(ctx, *resp); err != nil {
		// The score is still valid; history append is retried by the next run.
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"trend_id": trendID,
		}).Error("Failed to append decline signal history")
	}

	if err := h.cache.Set(ctx, "latest:"+trendID, resp, latestCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache latest response")
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetHistory returns the append-only signal history, newest first.
// GET /api/trends/{trendID}/decline-signals?limit=30
func (h *DeclineHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trendID := mux.Vars(r)["trendID"]

	limit := 30
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := h.repo.GetHistory(ctx, trendID, limit)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"trend_id": trendID,
		}).Error("Failed to get signal history")
		respondError(w, http.StatusInternalServerError, "Failed to get signal history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trend_id": trendID,
		"history":  history,
	})
}

// GetLatest returns the most recent evaluation, served from cache when
// possible.
// GET /api/trends/{trendID}/decline-signals/latest
func (h *DeclineHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trendID := mux.Vars(r)["trendID"]

	var cached contracts.DeclineSignalResponse
	if hit, err := h.cache.Get(ctx, "latest:"+trendID, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	history, err := h.repo.GetHistory(ctx, trendID, 1)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"trend_id": trendID,
		}).Error("Failed to get latest signal")
		respondError(w, http.StatusInternalServerError, "Failed to get latest signal")
		return
	}
	if len(history) == 0 {
		respondError(w, http.StatusNotFound, "No evaluations for trend")
		return
	}

	respondJSON(w, http.StatusOK, history[0])
}

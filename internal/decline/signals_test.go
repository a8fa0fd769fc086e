package decline

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// testMetrics builds a daily metric window from per-day multipliers applied
// to a fixed realistic base day.
func testMetrics(multipliers ...float64) []contracts.DailyMetric {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	metrics := make([]contracts.DailyMetric, len(multipliers))
	for i, m := range multipliers {
		metrics[i] = contracts.DailyMetric{
			Date:                 start.AddDate(0, 0, i),
			TotalEngagement:      int64(10000 * m),
			Views:                int64(50000 * m),
			PostsCount:           int(100 * m),
			CreatorsCount:        int(50 * m),
			AvgCreatorFollowers:  2000 * m,
			AvgCommentsPerPost:   12 * m,
			AvgEngagementPerPost: 100 * m,
		}
	}
	return metrics
}

func TestDropScore(t *testing.T) {
	tests := []struct {
		name          string
		drop          float64
		threshold     float64
		wantScore     float64
		wantTriggered bool
	}{
		{"below threshold", 0.04, 0.05, 0, false},
		{"growth", -0.20, 0.05, 0, false},
		{"exactly at threshold", 0.05, 0.05, 0, true},
		{"halfway to double", 0.075, 0.05, 50, true},
		{"double the threshold", 0.10, 0.05, 100, true},
		{"beyond double clamps", 0.30, 0.05, 100, true},
		{"zero threshold never fires", 0.50, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, triggered := dropScore(tt.drop, tt.threshold)
			if triggered != tt.wantTriggered {
				t.Errorf("triggered = %v, want %v", triggered, tt.wantTriggered)
			}
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
		})
	}
}

func TestBaselineDrop(t *testing.T) {
	tests := []struct {
		name     string
		series   []float64
		wantDrop float64
		wantOK   bool
	}{
		{"too few points", []float64{100}, 0, false},
		{"zero baseline", []float64{0, 0, 50}, 0, false},
		{"flat series", []float64{100, 100, 100}, 0, true},
		{"ten percent drop", []float64{100, 100, 90}, 0.10, true},
		{"growth is negative drop", []float64{100, 100, 120}, -0.20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drop, ok := baselineDrop(tt.series)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(drop-tt.wantDrop) > 1e-9 {
				t.Errorf("drop = %v, want %v", drop, tt.wantDrop)
			}
		})
	}
}

func TestEngagementDrop_Triggered(t *testing.T) {
	calc := NewEngagementDropCalculator(zerolog.Nop())
	th := contracts.StageThresholds{EngagementDropPct: 0.05}

	// Flat baseline, then a 10% drop on the last day: exactly twice the
	// threshold, so the score saturates.
	score := calc.Calculate(testMetrics(1, 1, 1, 1, 0.9), th)

	if !score.Triggered {
		t.Fatal("expected engagement drop to trigger")
	}
	if math.Abs(score.Value-100) > 1e-6 {
		t.Errorf("score = %v, want 100", score.Value)
	}
	if math.Abs(score.RawDelta-0.10) > 1e-6 {
		t.Errorf("raw delta = %v, want 0.10", score.RawDelta)
	}
}

func TestEngagementDrop_ZeroBaselineIsNoSignal(t *testing.T) {
	calc := NewEngagementDropCalculator(zerolog.Nop())
	th := contracts.StageThresholds{EngagementDropPct: 0.05}

	metrics := testMetrics(0, 0, 0)
	score := calc.Calculate(metrics, th)

	if score.Triggered || score.Value != 0 {
		t.Errorf("zero-baseline score = %+v, want untriggered zero", score)
	}
}

func TestEngagementDrop_InsufficientData(t *testing.T) {
	calc := NewEngagementDropCalculator(zerolog.Nop())
	th := contracts.StageThresholds{EngagementDropPct: 0.05}

	score := calc.Calculate(testMetrics(1), th)

	if score.Triggered || score.Value != 0 {
		t.Errorf("single-point score = %+v, want untriggered zero", score)
	}
}

func TestStageSensitivityOrdering(t *testing.T) {
	// The same 10% drop must score at least as high in a more sensitive
	// stage. In VIRAL_EXPLOSION it saturates; in PLATEAU it stays silent.
	calc := NewEngagementDropCalculator(zerolog.Nop())
	table := DefaultSensitivityTable()
	metrics := testMetrics(1, 1, 1, 1, 0.9)

	viral := calc.Calculate(metrics, table.Thresholds(contracts.StageViralExplosion))
	plateau := calc.Calculate(metrics, table.Thresholds(contracts.StagePlateau))

	if viral.Value < plateau.Value {
		t.Errorf("viral score %v < plateau score %v for identical metrics", viral.Value, plateau.Value)
	}
	if !viral.Triggered {
		t.Error("expected 10%% drop to trigger in VIRAL_EXPLOSION")
	}
	if plateau.Triggered {
		t.Error("10%% drop must not trigger in PLATEAU (threshold 15%%)")
	}
}

func TestCreatorDecline_Triggered(t *testing.T) {
	calc := NewCreatorDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{CreatorDropPct: 0.10}

	score := calc.Calculate(testMetrics(1, 1, 1, 0.7), th)

	if !score.Triggered {
		t.Fatalf("expected creator decline to trigger, got %+v", score)
	}
	if score.Value <= 0 {
		t.Errorf("score = %v, want > 0", score.Value)
	}
}

func TestQualityDecline_NegativeValuesClamped(t *testing.T) {
	calc := NewQualityDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{QualityDropPct: 0.10}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	metrics := []contracts.DailyMetric{
		{Date: start, AvgCommentsPerPost: 10, AvgEngagementPerPost: 100},
		{Date: start.AddDate(0, 0, 1), AvgCommentsPerPost: 10, AvgEngagementPerPost: 100},
		{Date: start.AddDate(0, 0, 2), AvgCommentsPerPost: -5, AvgEngagementPerPost: -50},
	}

	// Negative upstream values read as zero: a total collapse, not a fault.
	score := calc.Calculate(metrics, th)

	if !score.Triggered {
		t.Fatalf("expected quality decline to trigger, got %+v", score)
	}
	if score.Value < 0 || score.Value > 100 {
		t.Errorf("score %v outside [0,100]", score.Value)
	}
}

func TestVelocityDecline_RequiresThreePoints(t *testing.T) {
	calc := NewVelocityDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{VelocityAccel: -0.05}

	score := calc.Calculate(testMetrics(1, 0.5), th)

	if score.Triggered || score.Value != 0 {
		t.Errorf("two-point velocity score = %+v, want untriggered zero", score)
	}
}

func TestVelocityDecline_Deceleration(t *testing.T) {
	calc := NewVelocityDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{VelocityAccel: -0.05}

	// Growth rates 20% -> 8.3% -> 1.5%: still growing, but decelerating
	// hard. This is the early warning the absolute-drop signals miss.
	score := calc.Calculate(testMetrics(1.0, 1.2, 1.3, 1.32), th)

	if !score.Triggered {
		t.Fatalf("expected deceleration to trigger, got %+v", score)
	}
	if score.RawDelta >= th.VelocityAccel {
		t.Errorf("raw acceleration = %v, want <= %v", score.RawDelta, th.VelocityAccel)
	}
}

func TestVelocityDecline_AccelerationDoesNotTrigger(t *testing.T) {
	calc := NewVelocityDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{VelocityAccel: -0.05}

	score := calc.Calculate(testMetrics(1.0, 1.1, 1.25, 1.45), th)

	if score.Triggered {
		t.Errorf("accelerating growth must not trigger, got %+v", score)
	}
	if score.Value != 0 {
		t.Errorf("score = %v, want 0", score.Value)
	}
}

func TestVelocityDecline_ViewsFallback(t *testing.T) {
	calc := NewVelocityDeclineCalculator(zerolog.Nop())
	th := contracts.StageThresholds{VelocityAccel: -0.05}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	views := []int64{50000, 60000, 65000, 66000}
	metrics := make([]contracts.DailyMetric, len(views))
	for i, v := range views {
		metrics[i] = contracts.DailyMetric{Date: start.AddDate(0, 0, i), Views: v}
	}

	score := calc.Calculate(metrics, th)

	if !score.Triggered {
		t.Errorf("expected views fallback to detect deceleration, got %+v", score)
	}
}

func TestSensitivityTable_Validate(t *testing.T) {
	if err := DefaultSensitivityTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	missing := DefaultSensitivityTable()
	delete(missing, contracts.StageFaded)
	if err := missing.Validate(); err == nil {
		t.Error("expected error for table missing a stage")
	}

	badAccel := DefaultSensitivityTable()
	th := badAccel[contracts.StagePlateau]
	th.VelocityAccel = 0.05
	badAccel[contracts.StagePlateau] = th
	if err := badAccel.Validate(); err == nil {
		t.Error("expected error for non-negative acceleration threshold")
	}
}

func TestSensitivityTable_UnknownFallback(t *testing.T) {
	table := DefaultSensitivityTable()

	got := table.Thresholds(contracts.Stage("NOT_A_STAGE"))
	want := table[contracts.StageUnknown]

	if got != want {
		t.Errorf("Thresholds(NOT_A_STAGE) = %+v, want UNKNOWN entry %+v", got, want)
	}
}

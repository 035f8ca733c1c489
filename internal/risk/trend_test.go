package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solvency-labs/sentinel/internal/types"
)

func snapshotsAt(base time.Time, stepMinutes float64, hfs ...float64) []types.HealthSnapshot {
	out := make([]types.HealthSnapshot, len(hfs))
	for i, hf := range hfs {
		out[i] = types.HealthSnapshot{
			HealthFactor: hf,
			Timestamp:    base.Add(time.Duration(float64(i) * stepMinutes * float64(time.Minute))),
		}
	}
	return out
}

func TestComputeTrendInsufficientSamples(t *testing.T) {
	base := time.Now()

	trend := computeTrend(snapshotsAt(base, 1, 1.5, 1.4), 3, 1.4)
	assert.Equal(t, trendScoreUnknown, trend.factor.Score)
	assert.Zero(t, trend.minutesToLiquidation)
}

func TestComputeTrendZeroTimeSpan(t *testing.T) {
	base := time.Now()
	samples := []types.HealthSnapshot{
		{HealthFactor: 1.5, Timestamp: base},
		{HealthFactor: 1.4, Timestamp: base},
		{HealthFactor: 1.3, Timestamp: base},
	}

	trend := computeTrend(samples, 3, 1.3)
	assert.Equal(t, trendScoreUnknown, trend.factor.Score)
}

func TestComputeTrendStable(t *testing.T) {
	base := time.Now()

	trend := computeTrend(snapshotsAt(base, 5, 1.50, 1.50, 1.49), 3, 1.49)
	assert.Equal(t, trendScoreStable, trend.factor.Score)
	assert.Zero(t, trend.minutesToLiquidation)
}

func TestComputeTrendImproving(t *testing.T) {
	base := time.Now()

	trend := computeTrend(snapshotsAt(base, 5, 1.30, 1.45, 1.60), 3, 1.60)
	assert.Positive(t, trend.velocity)
	assert.LessOrEqual(t, trend.factor.Score, 15.0)
	assert.GreaterOrEqual(t, trend.factor.Score, 0.0)
}

func TestComputeTrendSlowDecline(t *testing.T) {
	base := time.Now()

	// -0.01 HF/min over 10 minutes
	trend := computeTrend(snapshotsAt(base, 5, 1.60, 1.55, 1.50), 3, 1.50)
	assert.Equal(t, trendScoreSlow, trend.factor.Score)
}

func TestComputeTrendRapidDecline(t *testing.T) {
	base := time.Now()

	// -0.04 HF/min over 10 minutes
	trend := computeTrend(snapshotsAt(base, 5, 1.70, 1.50, 1.30), 3, 1.30)
	assert.Equal(t, trendScoreRapid, trend.factor.Score)
}

func TestComputeTrendFreeFall(t *testing.T) {
	base := time.Now()

	// HF 1.50 -> 1.18 in 5 minutes: -0.064 HF/min, deep in free fall.
	trend := computeTrend(snapshotsAt(base, 2.5, 1.50, 1.34, 1.18), 3, 1.18)
	assert.Equal(t, trendScoreFall, trend.factor.Score)
	assert.InDelta(t, -0.064, trend.velocity, 1e-6)

	// (1.18 - 1.0) / 0.064 = 2.8125 minutes to liquidation.
	assert.InDelta(t, 2.8125, trend.minutesToLiquidation, 1e-3)
}

func TestComputeTrendFreeFallBelowLiquidation(t *testing.T) {
	base := time.Now()

	// Already under water: no estimate, 95 score still applies.
	trend := computeTrend(snapshotsAt(base, 2.5, 1.30, 1.10, 0.95), 3, 0.95)
	assert.Equal(t, trendScoreFall, trend.factor.Score)
	assert.Zero(t, trend.minutesToLiquidation)
}

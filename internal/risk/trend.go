/*

This file contains the trend factor: the velocity of health factor change
over the recent history window, and the free-fall time-to-liquidation
estimate.

*/

package risk

import (
	"fmt"
	"math"

	"github.com/solvency-labs/sentinel/internal/types"
)

// Velocity classification breakpoints, in HF change per minute.
const (
	velocityImproving   = 0.01
	velocityStableFloor = -0.005
	velocitySlowFloor   = -0.02
	velocityRapidFloor  = -0.05
)

// Fixed trend scores per classification band.
const (
	trendScoreUnknown = 25.0
	trendScoreStable  = 25.0
	trendScoreSlow    = 50.0
	trendScoreRapid   = 75.0
	trendScoreFall    = 95.0
)

// trendResult carries the trend factor plus the free-fall liquidation
// estimate when one applies.
type trendResult struct {
	factor types.RiskFactor
	// velocity is the HF change per minute over the window.
	velocity float64
	// minutesToLiquidation is >0 only during a free fall on a position
	// still above HF 1.0.
	minutesToLiquidation float64
}

// computeTrend derives the trend factor from the key's recorded snapshots.
// Fewer than minSamples usable samples yields the fixed "unknown" score
// rather than a guess.
func computeTrend(snapshots []types.HealthSnapshot, minSamples int, currentHF float64) trendResult {
	unknown := trendResult{factor: types.RiskFactor{
		Name:   "trend",
		Score:  trendScoreUnknown,
		Weight: WeightTrend,
		Detail: "insufficient history for trend detection",
	}}

	if minSamples < 2 {
		minSamples = 2
	}
	if len(snapshots) < minSamples {
		return unknown
	}

	first := snapshots[0]
	last := snapshots[len(snapshots)-1]
	minutes := last.Timestamp.Sub(first.Timestamp).Minutes()
	if minutes <= 0 {
		return unknown
	}

	velocity := (last.HealthFactor - first.HealthFactor) / minutes
	if math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		return unknown
	}

	result := trendResult{velocity: velocity}
	switch {
	case velocity > velocityImproving:
		// Improving positions score low, and lower the faster they improve.
		score := math.Max(0, 15-velocity*100)
		result.factor = types.RiskFactor{
			Name:   "trend",
			Score:  score,
			Weight: WeightTrend,
			Detail: fmt.Sprintf("improving at %+.4f HF/min", velocity),
		}
	case velocity >= velocityStableFloor:
		result.factor = types.RiskFactor{
			Name:   "trend",
			Score:  trendScoreStable,
			Weight: WeightTrend,
			Detail: fmt.Sprintf("stable (%+.4f HF/min)", velocity),
		}
	case velocity >= velocitySlowFloor:
		result.factor = types.RiskFactor{
			Name:   "trend",
			Score:  trendScoreSlow,
			Weight: WeightTrend,
			Detail: fmt.Sprintf("slow decline at %+.4f HF/min", velocity),
		}
	case velocity >= velocityRapidFloor:
		result.factor = types.RiskFactor{
			Name:   "trend",
			Score:  trendScoreRapid,
			Weight: WeightTrend,
			Detail: fmt.Sprintf("rapid decline at %+.4f HF/min", velocity),
		}
	default:
		result.factor = types.RiskFactor{
			Name:   "trend",
			Score:  trendScoreFall,
			Weight: WeightTrend,
			Detail: fmt.Sprintf("FREE FALL at %+.4f HF/min", velocity),
		}
		if currentHF > 1.0 {
			result.minutesToLiquidation = (currentHF - 1.0) / math.Abs(velocity)
		}
	}

	return result
}

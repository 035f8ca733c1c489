/*

This file contains the risk engine: the composite scoring of a single
position, the floor overrides that keep near-liquidation positions graded
honestly, and the recommendation generation per risk level.

*/

package risk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/types"
)

// Engine converts lending positions into graded risk assessments. It owns
// the per-key health history exclusively; everything else is a pure function
// of the snapshot.
type Engine struct {
	logger  zerolog.Logger
	params  types.RiskParameters
	history *HistoryStore
}

// NewEngine creates a risk engine with the given parameters, normalizing
// out-of-range values to usable defaults.
func NewEngine(params types.RiskParameters) *Engine {
	params = normalizeRiskParameters(params)
	return &Engine{
		logger:  logger.GetForComponent("risk_engine"),
		params:  params,
		history: NewHistoryStore(params.TrendWindowSize),
	}
}

func normalizeRiskParameters(params types.RiskParameters) types.RiskParameters {
	if params.TrendWindowSize < 2 {
		params.TrendWindowSize = 20
	}
	if params.TrendMinSamples < 2 {
		params.TrendMinSamples = 3
	}
	if params.Thresholds.High <= 1.0 {
		params.Thresholds = types.RiskThresholds{Safe: 2.0, Low: 1.6, Medium: 1.3, High: 1.1}
	}
	return params
}

// Parameters returns the engine's active parameters.
func (e *Engine) Parameters() types.RiskParameters {
	return e.params
}

// UpdateParameters swaps the engine's active parameters with the same
// normalization as NewEngine. Recorded history is preserved; a smaller
// trend window takes effect on the next overflow trim. Must not be called
// concurrently with assessments; the caller schedules both on the same
// sequential tick.
func (e *Engine) UpdateParameters(params types.RiskParameters) {
	params = normalizeRiskParameters(params)
	e.params = params
	e.history.SetWindow(params.TrendWindowSize)
}

// History returns the recorded health snapshots for a position key, oldest
// first.
func (e *Engine) History(key types.PositionKey) []types.HealthSnapshot {
	return e.history.Snapshots(key)
}

// RecordHealthSample appends an externally observed health factor to the
// position's trend history. Used by the orchestrator to feed an executed
// protection's resulting health factor back into trend detection without
// waiting for the next assessment.
func (e *Engine) RecordHealthSample(wallet string, protocol types.Protocol, healthFactor float64) {
	key := types.PositionKey{Wallet: wallet, Protocol: protocol}
	e.history.Record(key, types.HealthSnapshot{HealthFactor: healthFactor, Timestamp: time.Now()})
}

// ClearHistory drops recorded snapshots, wallet-scoped when wallet is
// non-empty, globally otherwise.
func (e *Engine) ClearHistory(wallet string) {
	if wallet == "" {
		e.history.ClearAll()
		return
	}
	e.history.ClearWallet(wallet)
}

// AssessPosition scores one position. The health factor used for scoring is
// recomputed from collateral, debt and threshold; the snapshot's own field
// is only a fallback when the position carries no asset breakdown.
//
// Side effect: a health snapshot is recorded for the position's key before
// scoring, growing the trend history.
func (e *Engine) AssessPosition(position types.LendingPosition) types.RiskAssessment {
	collateralUSD := position.TotalCollateralUSD()
	debtUSD := position.TotalDebtUSD()

	hf := position.HealthFactor
	if len(position.Collateral) > 0 || len(position.Debt) > 0 {
		hf = types.ComputeHealthFactor(collateralUSD, debtUSD, position.LiquidationThreshold)
	}

	key := position.Key()
	e.history.Record(key, types.HealthSnapshot{HealthFactor: hf, Timestamp: time.Now()})

	factors := make([]types.RiskFactor, 0, 5)
	factors = append(factors,
		healthFactorFactor(hf, collateralUSD, e.params),
		utilizationFactor(collateralUSD, debtUSD),
		concentrationFactor(position.Collateral),
	)

	window := e.history.Window(key, e.params.TrendWindowSize)
	trend := computeTrend(window, e.params.TrendMinSamples, hf)
	factors = append(factors, trend.factor)

	if protocolFactor, present := protocolRiskFactor(position.Protocol); present {
		factors = append(factors, protocolFactor)
	}

	score := applyScoreFloors(compositeScore(factors), hf)
	level := types.RiskLevelForScore(score)

	assessment := types.RiskAssessment{
		Wallet:                        position.Wallet,
		Protocol:                      position.Protocol,
		Level:                         level,
		Score:                         score,
		Factors:                       factors,
		EstimatedMinutesToLiquidation: trend.minutesToLiquidation,
		Timestamp:                     time.Now(),
	}
	assessment.Recommendations = e.recommend(position, assessment, collateralUSD, debtUSD, trend.factor.Score)

	e.logger.Debug().
		Str("wallet", position.Wallet).
		Str("protocol", string(position.Protocol)).
		Float64("healthFactor", hf).
		Float64("score", score).
		Str("level", level.String()).
		Int("factors", len(factors)).
		Msg("Position assessed")

	if trend.minutesToLiquidation > 0 {
		e.logger.Warn().
			Str("wallet", position.Wallet).
			Str("protocol", string(position.Protocol)).
			Float64("velocityPerMin", trend.velocity).
			Float64("estimatedMinutes", trend.minutesToLiquidation).
			Msg("Health factor in free fall, liquidation imminent")
	}

	return assessment
}

// recommend generates advisory actions as a function of the risk level. High
// and critical levels get exact repay / add-collateral sizing toward the
// default restoration target.
func (e *Engine) recommend(position types.LendingPosition, assessment types.RiskAssessment, collateralUSD, debtUSD, trendScore float64) []types.ProtectionRecommendation {
	const restoreTarget = 1.5

	switch assessment.Level {
	case types.RiskSafe, types.RiskLow:
		return []types.ProtectionRecommendation{{
			Action:  types.ActionNone,
			Urgency: types.UrgencyNone,
			Reason:  "position healthy, continue monitoring",
		}}

	case types.RiskMedium:
		if trendScore > 50 {
			return []types.ProtectionRecommendation{{
				Action:  types.ActionRepay,
				Urgency: types.UrgencyMedium,
				Reason:  "health factor declining, consider a partial repay before the trend worsens",
			}}
		}
		return []types.ProtectionRecommendation{{
			Action:  types.ActionNone,
			Urgency: types.UrgencyLow,
			Reason:  "elevated but stable, continue monitoring",
		}}

	default:
		repayAmount := repayToTarget(collateralUSD, debtUSD, position.LiquidationThreshold, restoreTarget)
		addAmount := collateralToTarget(collateralUSD, debtUSD, position.LiquidationThreshold, restoreTarget)

		if assessment.Level == types.RiskCritical {
			recs := make([]types.ProtectionRecommendation, 0, 2)
			if repayAmount > 0 {
				recs = append(recs, types.ProtectionRecommendation{
					Action:    types.ActionRepay,
					Urgency:   types.UrgencyImmediate,
					AmountUSD: repayAmount,
					Reason:    fmt.Sprintf("repay $%.2f to restore health factor to %.1f", repayAmount, restoreTarget),
				})
			}
			if addAmount > 0 {
				recs = append(recs, types.ProtectionRecommendation{
					Action:    types.ActionAddCollateral,
					Urgency:   types.UrgencyImmediate,
					AmountUSD: addAmount,
					Reason:    fmt.Sprintf("alternatively add $%.2f collateral to restore health factor to %.1f", addAmount, restoreTarget),
				})
			}
			return recs
		}

		if repayAmount > 0 {
			return []types.ProtectionRecommendation{{
				Action:    types.ActionRepay,
				Urgency:   types.UrgencyHigh,
				AmountUSD: repayAmount,
				Reason:    fmt.Sprintf("repay $%.2f to restore health factor to %.1f", repayAmount, restoreTarget),
			}}
		}
		return nil
	}
}

// repayToTarget is the exact debt repayment that brings the position to the
// target health factor: debt - (collateral x threshold) / target.
func repayToTarget(collateralUSD, debtUSD, threshold, target float64) float64 {
	if target <= 0 || debtUSD <= 0 {
		return 0
	}
	amount := debtUSD - collateralUSD*threshold/target
	if amount < 0 {
		return 0
	}
	return amount
}

// collateralToTarget is the exact collateral addition that brings the
// position to the target health factor: (debt x target) / threshold - collateral.
func collateralToTarget(collateralUSD, debtUSD, threshold, target float64) float64 {
	if threshold <= 0 || debtUSD <= 0 {
		return 0
	}
	amount := debtUSD*target/threshold - collateralUSD
	if amount < 0 {
		return 0
	}
	return amount
}

/*

This file contains the individual risk factor calculations. Each factor maps
one aspect of a position onto a 0-100 score with a fixed weight; the engine
combines them into the composite score.

Factors never return errors: computation degeneracy (zero collateral, zero
debt, missing data) is handled by dedicated fallback branches so a bad input
degrades to a well-defined score instead of a fault.

*/

package risk

import (
	"fmt"
	"math"

	"github.com/solvency-labs/sentinel/internal/config"
	"github.com/solvency-labs/sentinel/internal/types"
)

// Factor weights. protocol_risk is only present for protocols with strictly
// worse liquidation mechanics, and the composite normalizes over the weights
// actually present.
const (
	WeightHealthFactor = 0.45
	WeightUtilization  = 0.15
	WeightTrend        = 0.20
	WeightConcentration = 0.10
	WeightProtocolRisk = 0.10
)

// Position size bands and the threshold multipliers applied to them. Bigger
// positions must keep a larger safety margin before scoring equally safe.
const (
	sizeBandLargeUSD  = 1_000_000.0
	sizeBandMediumUSD = 100_000.0
	sizeBandSmallUSD  = 10_000.0

	sizeScaleLarge  = 1.15
	sizeScaleMedium = 1.08
	sizeScaleSmall  = 1.03
)

// sizeScale returns the threshold multiplier for a position's collateral size.
func sizeScale(collateralUSD float64, scalingEnabled bool) float64 {
	if !scalingEnabled {
		return 1.0
	}
	switch {
	case collateralUSD > sizeBandLargeUSD:
		return sizeScaleLarge
	case collateralUSD > sizeBandMediumUSD:
		return sizeScaleMedium
	case collateralUSD > sizeBandSmallUSD:
		return sizeScaleSmall
	default:
		return 1.0
	}
}

// effectiveThresholds scales the configured HF breakpoints for the position's
// size band.
func effectiveThresholds(base types.RiskThresholds, collateralUSD float64, scalingEnabled bool) types.RiskThresholds {
	scale := sizeScale(collateralUSD, scalingEnabled)
	return types.RiskThresholds{
		Safe:   base.Safe * scale,
		Low:    base.Low * scale,
		Medium: base.Medium * scale,
		High:   base.High * scale,
	}
}

// healthFactorFactor scores the health factor through a piecewise-linear
// curve over the size-scaled thresholds. The curve is continuous and strictly
// decreasing in HF: 100 at HF<=1.0, 90 at the high threshold, 60 at medium,
// 30 at low, 10 at safe, then decaying toward 0 above safe.
func healthFactorFactor(hf, collateralUSD float64, params types.RiskParameters) types.RiskFactor {
	t := effectiveThresholds(params.Thresholds, collateralUSD, params.PositionSizeScaling)

	var score float64
	switch {
	case hf <= 1.0:
		score = 100
	case hf <= t.High:
		score = 90 + 10*(t.High-hf)/(t.High-1.0)
	case hf <= t.Medium:
		score = 60 + 30*(t.Medium-hf)/(t.Medium-t.High)
	case hf <= t.Low:
		score = 30 + 30*(t.Low-hf)/(t.Low-t.Medium)
	case hf <= t.Safe:
		score = 10 + 20*(t.Safe-hf)/(t.Safe-t.Low)
	default:
		// Gentle decay toward zero above the safe threshold.
		score = 10 * t.Safe / hf
	}
	score = clampScore(score)

	return types.RiskFactor{
		Name:   "health_factor",
		Score:  score,
		Weight: WeightHealthFactor,
		Detail: fmt.Sprintf("HF %.3f against size-scaled thresholds (safe %.2f, high %.2f)", hf, t.Safe, t.High),
	}
}

// utilizationFactor scores the debt/collateral ratio through fixed
// breakpoints. Zero collateral with outstanding debt is fully utilized.
func utilizationFactor(collateralUSD, debtUSD float64) types.RiskFactor {
	var utilization float64
	switch {
	case debtUSD <= 0:
		utilization = 0
	case collateralUSD <= 0:
		utilization = 100
	default:
		utilization = debtUSD / collateralUSD * 100
	}

	var score float64
	switch {
	case utilization <= 30:
		score = utilization * (15.0 / 30.0)
	case utilization <= 50:
		score = 15 + (utilization-30)*(20.0/20.0)
	case utilization <= 70:
		score = 35 + (utilization-50)*(30.0/20.0)
	case utilization <= 85:
		score = 65 + (utilization-70)*(25.0/15.0)
	default:
		score = 90 + (utilization-85)*(10.0/15.0)
	}
	score = clampScore(score)

	return types.RiskFactor{
		Name:   "utilization",
		Score:  score,
		Weight: WeightUtilization,
		Detail: fmt.Sprintf("debt is %.1f%% of collateral value", utilization),
	}
}

// concentrationFactor scores collateral diversification using the
// Herfindahl-Hirschman index of value shares. A single-asset position scores
// a flat 40; no collateral at all scores 0.
func concentrationFactor(collateral []types.CollateralAsset) types.RiskFactor {
	factor := types.RiskFactor{
		Name:   "concentration",
		Weight: WeightConcentration,
	}

	total := 0.0
	for _, c := range collateral {
		total += c.ValueUSD
	}

	switch {
	case len(collateral) == 0 || total <= 0:
		factor.Score = 0
		factor.Detail = "no collateral held"
	case len(collateral) == 1:
		factor.Score = 40
		factor.Detail = fmt.Sprintf("all collateral in %s", collateral[0].Symbol)
	default:
		hhi := 0.0
		for _, c := range collateral {
			share := c.ValueUSD / total
			hhi += share * share
		}
		factor.Score = clampScore(hhi * 60)
		factor.Detail = fmt.Sprintf("HHI %.3f across %d assets", hhi, len(collateral))
	}

	return factor
}

// protocolRiskFactor applies a fixed penalty for protocols whose liquidation
// mechanics are strictly worse: a full close factor adds 20, a penalty above
// 5% adds 15. When neither applies the factor is omitted entirely, not
// reported as zero.
func protocolRiskFactor(protocol types.Protocol) (types.RiskFactor, bool) {
	mechanics, known := config.ProtocolMechanicsTable[protocol]
	if !known {
		return types.RiskFactor{}, false
	}

	score := 0.0
	detail := ""
	if mechanics.CloseFactor >= 1.0 {
		score += 20
		detail = "full close factor allows one-shot liquidation"
	}
	if mechanics.LiquidationPenalty > 0.05 {
		score += 15
		if detail != "" {
			detail += "; "
		}
		detail += fmt.Sprintf("liquidation penalty %.1f%% above 5%%", mechanics.LiquidationPenalty*100)
	}
	if score == 0 {
		return types.RiskFactor{}, false
	}

	return types.RiskFactor{
		Name:   "protocol_risk",
		Score:  score,
		Weight: WeightProtocolRisk,
		Detail: detail,
	}, true
}

// compositeScore is the weight-normalized sum of the present factors.
func compositeScore(factors []types.RiskFactor) float64 {
	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += f.Score * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return clampScore(weighted / totalWeight)
}

// applyScoreFloors forces the composite score upward for positions close to
// liquidation, regardless of factor mix. A position one step from
// liquidation is never diluted into a moderate rating by a good trend or
// concentration score.
func applyScoreFloors(score, hf float64) float64 {
	switch {
	case hf <= 1.0:
		return 100
	case hf < 1.05:
		return math.Max(score, 85)
	case hf < 1.10:
		return math.Max(score, 70)
	default:
		return score
	}
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

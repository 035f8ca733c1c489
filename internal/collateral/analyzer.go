/*

This file contains the collateral analyzer: for every held collateral asset
it hunts the protocol's accepted-collateral table for strictly
higher-yielding substitutes, projects the health factor the swap would leave
behind, and discards anything that would dip below the safety floor.

*/

package collateral

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/solvency-labs/sentinel/internal/config"
	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/types"
)

// Analyzer finds safe, higher-yield collateral substitutions. It is a pure
// function of the position snapshot and the injected collateral tables.
type Analyzer struct {
	logger zerolog.Logger

	// safetyFloor is the minimum projected health factor a recommendation
	// must keep. This is a hard invariant: candidates below it are
	// discarded, never surfaced with a warning.
	safetyFloor float64

	// accepted is the per-protocol accepted-collateral table.
	accepted map[types.Protocol][]config.CollateralAssetInfo
}

// NewAnalyzer creates a collateral analyzer using the given safety floor and
// the default accepted-collateral tables. A non-positive floor falls back to
// the default.
func NewAnalyzer(safetyFloor float64) *Analyzer {
	if safetyFloor <= 0 {
		safetyFloor = config.DefaultCollateralSafetyFloor
	}
	return &Analyzer{
		logger:      logger.GetForComponent("collateral_analyzer"),
		safetyFloor: safetyFloor,
		accepted:    config.AcceptedCollateral,
	}
}

// SafetyFloor returns the analyzer's minimum projected health factor.
func (a *Analyzer) SafetyFloor() float64 {
	return a.safetyFloor
}

// AnalyzePosition evaluates every held collateral asset against the
// protocol's accepted alternatives and returns the surviving
// recommendations sorted by projected annual USD gain, best first.
func (a *Analyzer) AnalyzePosition(position types.LendingPosition) types.CollateralAnalysis {
	analysis := types.CollateralAnalysis{
		Wallet:    position.Wallet,
		Protocol:  position.Protocol,
		Timestamp: time.Now(),
	}

	totalCollateral := position.TotalCollateralUSD()
	debtUSD := position.TotalDebtUSD()
	if len(position.Collateral) == 0 || totalCollateral <= 0 {
		return analysis
	}

	currentHF := types.ComputeHealthFactor(totalCollateral, debtUSD, position.LiquidationThreshold)

	// Per-asset best APYs feed the position-level summary.
	bestAPYBySymbol := make(map[string]float64, len(position.Collateral))

	var weightedCurrent float64
	for _, held := range position.Collateral {
		heldInfo, known := config.FindAcceptedCollateral(position.Protocol, held.Symbol)
		if !known {
			a.logger.Debug().
				Str("wallet", position.Wallet).
				Str("protocol", string(position.Protocol)).
				Str("asset", held.Symbol).
				Msg("Held collateral not in protocol table, skipping")
			continue
		}
		heldAPY := heldInfo.EffectiveAPY()
		weightedCurrent += held.ValueUSD / totalCollateral * heldAPY
		bestAPYBySymbol[held.Symbol] = heldAPY

		for _, candidate := range a.accepted[position.Protocol] {
			if candidate.Symbol == held.Symbol {
				continue
			}
			candidateAPY := candidate.EffectiveAPY()
			if candidateAPY <= heldAPY {
				continue
			}

			projectedHF := a.projectSwapHF(position, held, heldInfo, candidate, totalCollateral, debtUSD)
			if projectedHF < a.safetyFloor {
				a.logger.Debug().
					Str("wallet", position.Wallet).
					Str("from", held.Symbol).
					Str("to", candidate.Symbol).
					Float64("projectedHF", projectedHF).
					Float64("safetyFloor", a.safetyFloor).
					Msg("Swap candidate discarded: projected HF below safety floor")
				continue
			}

			rec := types.CollateralRecommendation{
				FromAsset:          held.Symbol,
				ToAsset:            candidate.Symbol,
				FromAPY:            heldAPY,
				ToAPY:              candidateAPY,
				YieldBoostAbsolute: candidateAPY - heldAPY,
				AnnualGainUSD:      held.ValueUSD * (candidateAPY - heldAPY),
				Health: types.HealthImpact{
					CurrentHF:   currentHF,
					ProjectedHF: projectedHF,
					Safe:        true,
				},
			}
			if heldAPY > 0 {
				rec.YieldBoostPercent = (candidateAPY - heldAPY) / heldAPY * 100
			}
			if candidate.LiquidationThreshold < heldInfo.LiquidationThreshold {
				rec.RiskNote = fmt.Sprintf(
					"%s has a lower liquidation threshold than %s (%.2f vs %.2f); the swap trades safety margin for yield",
					candidate.Symbol, held.Symbol, candidate.LiquidationThreshold, heldInfo.LiquidationThreshold)
			}

			analysis.Recommendations = append(analysis.Recommendations, rec)
			if candidateAPY > bestAPYBySymbol[held.Symbol] {
				bestAPYBySymbol[held.Symbol] = candidateAPY
			}
		}
	}

	sort.SliceStable(analysis.Recommendations, func(i, j int) bool {
		return analysis.Recommendations[i].AnnualGainUSD > analysis.Recommendations[j].AnnualGainUSD
	})

	var weightedBest float64
	for _, held := range position.Collateral {
		if apy, ok := bestAPYBySymbol[held.Symbol]; ok {
			weightedBest += held.ValueUSD / totalCollateral * apy
		}
	}
	analysis.CurrentWeightedAPY = weightedCurrent
	analysis.BestWeightedAPY = weightedBest

	a.logger.Debug().
		Str("wallet", position.Wallet).
		Str("protocol", string(position.Protocol)).
		Int("recommendations", len(analysis.Recommendations)).
		Float64("currentWeightedAPY", weightedCurrent).
		Float64("bestWeightedAPY", weightedBest).
		Msg("Collateral analysis complete")

	return analysis
}

// projectSwapHF recomputes the position's health factor as if the one held
// asset were swapped into the candidate: the swap keeps USD value constant
// but moves that value's liquidation threshold from the old asset's to the
// new one's, shifting the value-weighted average across all collateral.
func (a *Analyzer) projectSwapHF(
	position types.LendingPosition,
	held types.CollateralAsset,
	heldInfo config.CollateralAssetInfo,
	candidate config.CollateralAssetInfo,
	totalCollateral, debtUSD float64,
) float64 {
	var weightedThreshold float64
	for _, c := range position.Collateral {
		threshold := position.LiquidationThreshold
		if info, ok := config.FindAcceptedCollateral(position.Protocol, c.Symbol); ok {
			threshold = info.LiquidationThreshold
		}
		if c.Symbol == held.Symbol {
			threshold = candidate.LiquidationThreshold
		}
		weightedThreshold += c.ValueUSD / totalCollateral * threshold
	}
	return types.ComputeHealthFactor(totalCollateral, debtUSD, weightedThreshold)
}

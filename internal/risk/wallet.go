/*

This file contains wallet-level risk aggregation across protocols. A single
bad position dominates the overall grade; debt spread over several protocols
adds a correlated-crash factor on top.

*/

package risk

import (
	"math"
	"sort"
	"time"

	"github.com/solvency-labs/sentinel/internal/types"
)

// Weighting of the worst position against the mean across positions.
const (
	walletWorstWeight = 0.7
	walletMeanWeight  = 0.3
)

// AssessWallet aggregates risk across all of one wallet's positions. An
// empty or nil position list returns a fixed safe, score-zero assessment
// rather than an error.
func (e *Engine) AssessWallet(wallet string, positions []types.LendingPosition) types.WalletRiskAssessment {
	if len(positions) == 0 {
		return types.WalletRiskAssessment{
			Wallet:    wallet,
			Level:     types.RiskSafe,
			Score:     0,
			Timestamp: time.Now(),
		}
	}

	assessments := make([]types.RiskAssessment, 0, len(positions))
	worst := 0.0
	sum := 0.0
	protocolsWithDebt := make(map[types.Protocol]struct{})

	for _, position := range positions {
		assessment := e.AssessPosition(position)
		assessments = append(assessments, assessment)
		sum += assessment.Score
		if assessment.Score > worst {
			worst = assessment.Score
		}
		if position.TotalDebtUSD() > 0 {
			protocolsWithDebt[position.Protocol] = struct{}{}
		}
	}

	overall := walletWorstWeight*worst + walletMeanWeight*(sum/float64(len(assessments)))

	var walletFactors []types.RiskFactor
	levelBasis := overall
	if len(protocolsWithDebt) >= 2 {
		crossScore := math.Min(60, 20*float64(len(protocolsWithDebt)))
		walletFactors = append(walletFactors, types.RiskFactor{
			Name:   "cross_protocol",
			Score:  crossScore,
			Weight: 0.10,
			Detail: "debt outstanding on multiple protocols amplifies correlated-crash exposure",
		})
		// The factor moves the level, not the reported numeric score.
		levelBasis = math.Max(overall, 0.9*overall+0.1*crossScore)
	}

	result := types.WalletRiskAssessment{
		Wallet:          wallet,
		Level:           types.RiskLevelForScore(levelBasis),
		Score:           overall,
		Positions:       assessments,
		Factors:         walletFactors,
		Recommendations: mergeRecommendations(assessments),
		Timestamp:       time.Now(),
	}

	e.logger.Info().
		Str("wallet", wallet).
		Int("positions", len(assessments)).
		Float64("worstScore", worst).
		Float64("overallScore", overall).
		Str("level", result.Level.String()).
		Msg("Wallet assessed")

	return result
}

// mergeRecommendations deduplicates recommendations across positions by
// action, keeping the most urgent instance of each, sorted most urgent
// first.
func mergeRecommendations(assessments []types.RiskAssessment) []types.ProtectionRecommendation {
	byAction := make(map[types.ProtectionAction]types.ProtectionRecommendation)
	for _, assessment := range assessments {
		for _, rec := range assessment.Recommendations {
			existing, seen := byAction[rec.Action]
			if !seen || rec.Urgency > existing.Urgency {
				byAction[rec.Action] = rec
			}
		}
	}

	merged := make([]types.ProtectionRecommendation, 0, len(byAction))
	for _, rec := range byAction {
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Urgency > merged[j].Urgency
	})
	return merged
}

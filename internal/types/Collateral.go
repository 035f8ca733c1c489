/*

This file contains the types produced by the collateral analyzer: proposed
collateral swaps with their yield gain and safety projection.

*/

package types

import (
	"time"
)

// HealthImpact is the safety projection for a proposed collateral swap.
// Safe is a hard gate: recommendations with Safe == false are discarded,
// never surfaced.
type HealthImpact struct {
	CurrentHF   float64 `json:"current_hf"`
	ProjectedHF float64 `json:"projected_hf"`
	Safe        bool    `json:"safe"`
}

// CollateralRecommendation proposes swapping one held collateral asset for a
// higher-yielding alternative accepted by the same protocol.
type CollateralRecommendation struct {
	FromAsset          string       `json:"from_asset"`
	ToAsset            string       `json:"to_asset"`
	FromAPY            float64      `json:"from_apy"`
	ToAPY              float64      `json:"to_apy"`
	YieldBoostPercent  float64      `json:"yield_boost_percent"`  // Relative improvement
	YieldBoostAbsolute float64      `json:"yield_boost_absolute"` // APY delta as a decimal
	AnnualGainUSD      float64      `json:"annual_gain_usd"`
	Health             HealthImpact `json:"health_impact"`
	// RiskNote is set when the replacement asset has a lower liquidation
	// threshold than the asset it replaces.
	RiskNote string `json:"risk_note,omitempty"`
}

// CollateralAnalysis is the full analyzer output for one position.
type CollateralAnalysis struct {
	Wallet          string                     `json:"wallet"`
	Protocol        Protocol                   `json:"protocol"`
	Recommendations []CollateralRecommendation `json:"recommendations"`
	// CurrentWeightedAPY is the value-weighted effective yield of the
	// collateral as held; BestWeightedAPY is the best achievable by taking
	// the top surviving recommendation for each asset.
	CurrentWeightedAPY float64   `json:"current_weighted_apy"`
	BestWeightedAPY    float64   `json:"best_weighted_apy"`
	Timestamp          time.Time `json:"timestamp"`
}

/*

This file contains the tunable parameters for the risk and protection
engines. Different sets of these parameters can be persisted and activated
for different market regimes.

*/

package types

// RiskThresholds are the base health factor breakpoints for the piecewise
// health factor scoring curve. They are scaled up for larger positions when
// PositionSizeScaling is enabled so bigger positions must keep a larger
// safety margin before being scored equally "safe".
type RiskThresholds struct {
	Safe   float64 `json:"safe"`
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// RiskParameters holds the tunable configuration for the risk engine.
type RiskParameters struct {
	Thresholds RiskThresholds `json:"thresholds"`

	// PositionSizeScaling enables the per-size-band threshold multipliers
	// (>$1M x1.15, >$100K x1.08, >$10K x1.03).
	PositionSizeScaling bool `json:"position_size_scaling"`

	// TrendWindowSize is the number of health snapshots the trend factor
	// looks back over. The history buffer keeps at most twice this many
	// samples per key.
	TrendWindowSize int `json:"trend_window_size"`

	// TrendMinSamples is the minimum number of samples required before the
	// trend factor produces a velocity; below it the factor reports the
	// fixed "unknown" score.
	TrendMinSamples int `json:"trend_min_samples"`
}

// ProtectionParameters holds the tunable configuration for the protection
// engine.
type ProtectionParameters struct {
	// TargetHealthFactor is the health factor repay and add-collateral
	// options restore the position to.
	TargetHealthFactor float64 `json:"target_health_factor"`

	// MaxProtectionUSD caps the size of any single protection action.
	MaxProtectionUSD float64 `json:"max_protection_usd"`

	// DryRun suppresses all external execution; Protect records what it
	// would have done instead.
	DryRun bool `json:"dry_run"`

	// PreferredStrategy orders viable options before selection.
	PreferredStrategy RankingStrategy `json:"preferred_strategy"`

	// YieldRates are the prevailing supply/borrow APYs per protocol used for
	// yield impact accounting.
	YieldRates map[Protocol]YieldRates `json:"yield_rates"`
}

/*

This file contains the types produced and consumed by the protection engine:
priced remediation options, their yield accounting, and execution results.

*/

package types

import (
	"time"
)

// RankingStrategy selects how viable protection options are ordered before
// the best one is picked.
type RankingStrategy string

const (
	// StrategyYieldOptimized ranks by ascending annualized yield cost,
	// minimizing ongoing earnings loss. This is the default.
	StrategyYieldOptimized RankingStrategy = "yield-optimized"
	// StrategyCostOptimized ranks by ascending immediate capital outlay.
	StrategyCostOptimized RankingStrategy = "cost-optimized"
	// StrategySpeedOptimized ranks by descending resulting health factor,
	// safety first, cost ignored.
	StrategySpeedOptimized RankingStrategy = "speed-optimized"
)

// YieldImpact captures what a protection option does to the position's
// ongoing earnings. AnnualizedCostUSD is negative when the option is a net
// gain (e.g. interest saved exceeds opportunity cost).
type YieldImpact struct {
	CurrentAPY        float64 `json:"current_apy"`
	ProjectedAPY      float64 `json:"projected_apy"`
	YieldDeltaPercent float64 `json:"yield_delta_percent"`
	AnnualizedCostUSD float64 `json:"annualized_cost_usd"`
}

// ProtectionOption is a priced, concrete remediation candidate. Options are
// pure computations over a position snapshot; they carry no side effects
// until executed.
type ProtectionOption struct {
	Action              ProtectionAction `json:"action"`
	AmountUSD           float64          `json:"amount_usd"`
	Asset               string           `json:"asset"`
	ResultingHF         float64          `json:"resulting_hf"`
	ResultingDebtUSD    float64          `json:"resulting_debt_usd"`
	ResultingCollateral float64          `json:"resulting_collateral_usd"`
	Yield               YieldImpact      `json:"yield_impact"`
	// CapitalCostUSD is the immediate outlay required to execute.
	CapitalCostUSD float64 `json:"capital_cost_usd"`
	// YieldCostAnnualUSD is the ongoing cost per year; negative means a gain.
	YieldCostAnnualUSD float64 `json:"yield_cost_annual_usd"`
	// TotalScoreUSD combines capital and yield cost for default ranking.
	TotalScoreUSD float64 `json:"total_score_usd"`
	Description   string  `json:"description"`
}

// ProtectionResult is the outcome of attempting to realize an option. One
// entry is appended to the execution log per attempt.
type ProtectionResult struct {
	Wallet           string            `json:"wallet"`
	Protocol         Protocol          `json:"protocol"`
	Success          bool              `json:"success"`
	Option           *ProtectionOption `json:"option,omitempty"`
	TxSignature      string            `json:"tx_signature,omitempty"`
	PreviousHF       float64           `json:"previous_hf"`
	NewHF            float64           `json:"new_hf"`
	DryRun           bool              `json:"dry_run"`
	Error            string            `json:"error,omitempty"`
	ExecutionTimeMs  int64             `json:"execution_time_ms"`
	Timestamp        time.Time         `json:"timestamp"`
}

// YieldRates holds a protocol's prevailing supply and borrow APYs as
// decimals (0.05 = 5%). These are static configuration tables, injected into
// the protection engine at construction.
type YieldRates struct {
	SupplyAPY float64 `json:"supply_apy"`
	BorrowAPY float64 `json:"borrow_apy"`
}

/*

This file contains the types for lending positions which carry all the state
needed for risk assessment and protection planning.

*/

package types

import (
	"time"
)

// Protocol identifies a supported lending protocol. The set is closed:
// positions on unrecognized protocols are rejected by the position provider.
type Protocol string

const (
	ProtocolSolend   Protocol = "solend"
	ProtocolMarginfi Protocol = "marginfi"
	ProtocolKamino   Protocol = "kamino"
	ProtocolDrift    Protocol = "drift"
)

// KnownProtocols lists every protocol the sentinel understands.
var KnownProtocols = []Protocol{ProtocolSolend, ProtocolMarginfi, ProtocolKamino, ProtocolDrift}

// CollateralAsset is a single asset supplied as collateral.
type CollateralAsset struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	ValueUSD float64 `json:"value_usd"`
}

// DebtAsset is a single borrowed asset.
type DebtAsset struct {
	Symbol       string  `json:"symbol"`
	Amount       float64 `json:"amount"`
	ValueUSD     float64 `json:"value_usd"`
	InterestRate float64 `json:"interest_rate"` // Annual borrow rate as a decimal (0.08 = 8%)
}

// LendingPosition is a point-in-time snapshot of one borrower position on one
// protocol. The HealthFactor field is derived state as reported by the
// provider; the engines always recompute health factors from collateral, debt
// and threshold when projecting hypothetical changes and never trust this
// field for projections.
type LendingPosition struct {
	Wallet               string            `json:"wallet"`
	Protocol             Protocol          `json:"protocol"`
	Collateral           []CollateralAsset `json:"collateral"`
	Debt                 []DebtAsset       `json:"debt"`
	HealthFactor         float64           `json:"health_factor"`
	LiquidationThreshold float64           `json:"liquidation_threshold"` // 0..1 protocol parameter
	LastUpdated          time.Time         `json:"last_updated"`
}

// TotalCollateralUSD sums the USD value of all collateral assets.
func (p LendingPosition) TotalCollateralUSD() float64 {
	total := 0.0
	for _, c := range p.Collateral {
		total += c.ValueUSD
	}
	return total
}

// TotalDebtUSD sums the USD value of all debt assets.
func (p LendingPosition) TotalDebtUSD() float64 {
	total := 0.0
	for _, d := range p.Debt {
		total += d.ValueUSD
	}
	return total
}

// ComputeHealthFactor derives the health factor from first principles:
// collateral value x liquidation threshold / debt value. A position with no
// debt cannot be liquidated and reports the MaxHealthFactor sentinel.
func ComputeHealthFactor(collateralUSD, debtUSD, liquidationThreshold float64) float64 {
	if debtUSD <= 0 {
		return MaxHealthFactor
	}
	return collateralUSD * liquidationThreshold / debtUSD
}

// MaxHealthFactor is the sentinel health factor for debt-free positions.
// Large enough to clear every scoring threshold, small enough to stay finite.
const MaxHealthFactor = 1000.0

// HealthSnapshot is one observed health factor sample for a (wallet, protocol)
// key. Snapshots are append-only and trimmed by the history buffer.
type HealthSnapshot struct {
	HealthFactor float64   `json:"health_factor"`
	Timestamp    time.Time `json:"timestamp"`
}

// PositionKey identifies the history buffer for one (wallet, protocol) pair.
type PositionKey struct {
	Wallet   string
	Protocol Protocol
}

// Key builds the position key for a snapshot's owning position.
func (p LendingPosition) Key() PositionKey {
	return PositionKey{Wallet: p.Wallet, Protocol: p.Protocol}
}

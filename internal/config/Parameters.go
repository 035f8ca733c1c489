/*

This file contains the default parameters for the sentinel engines.

These values are calibrated for protecting real borrower capital: they favor
acting early over squeezing out the last basis point of yield. Each value has
a documented rationale so parameter reviews do not have to reverse-engineer
intent from numbers.

*/

package config

import (
	"github.com/solvency-labs/sentinel/internal/types"
)

// DefaultRiskParameters provides the baseline risk engine configuration.
// These values are used if no active parameters are found in the database
// during initialization.
var DefaultRiskParameters = types.RiskParameters{
	Thresholds: types.RiskThresholds{
		Safe:   2.0, // Above HF 2.0 a position can absorb a 50% collateral drawdown.
		Low:    1.6, // Comfortable margin; routine monitoring only.
		Medium: 1.3, // A 20-25% market move puts the position in danger.
		High:   1.1, // One bad candle from liquidation territory.
	},
	// Rationale: these breakpoints track the liquidation mechanics of the
	// supported protocols, where liquidators begin queuing positions well
	// before HF 1.0 is printed on-chain.

	PositionSizeScaling: true,
	// Rationale: a $2M position at HF 1.4 is a materially worse situation
	// than a $2k position at the same HF. Liquidating size moves the market
	// against the borrower, so large positions need wider margins.

	TrendWindowSize: 20,
	// Rationale: at the default 30s cycle this is a 10 minute lookback,
	// long enough to smooth oracle noise, short enough to catch a crash.

	TrendMinSamples: 3,
	// Rationale: two samples cannot distinguish noise from direction.
	// Below three the trend factor reports the fixed "unknown" score.
}

// DefaultProtectionParameters provides the baseline protection engine
// configuration.
var DefaultProtectionParameters = types.ProtectionParameters{
	TargetHealthFactor: 1.5,
	// Rationale: restoring to 1.5 leaves room for a further 25% adverse
	// move before the position re-enters the high band, so one protection
	// action buys meaningful time rather than triggering again next cycle.

	MaxProtectionUSD: 10000,
	// Rationale: caps the blast radius of any single automated action.
	// Larger interventions should be split across cycles or done by hand.

	DryRun: true,
	// Rationale: the sentinel must never broadcast by default. Real
	// execution requires an explicit opt-in plus a live executor.

	PreferredStrategy: types.StrategyYieldOptimized,
	// Rationale: the point of yield-aware protection is selecting the
	// action with the lowest ongoing earnings loss, not the smallest
	// immediate transfer.

	YieldRates: DefaultYieldRates,
}

// DefaultCollateralSafetyFloor is the minimum projected health factor a
// collateral swap recommendation must keep. This is a hard invariant of the
// collateral analyzer, never a soft preference.
const DefaultCollateralSafetyFloor = 1.25

/*

This file contains the static lookup tables for the supported lending
protocols: liquidation mechanics, prevailing yield rates, and the collateral
assets each protocol accepts.

The close factors and liquidation penalties here are illustrative operating
assumptions, not verified on-chain parameters. Treat them as configuration:
if a protocol governance vote changes its mechanics, update this table.

*/

package config

import (
	"github.com/solvency-labs/sentinel/internal/types"
)

// ProtocolMechanics describes how harshly a protocol liquidates.
type ProtocolMechanics struct {
	// CloseFactor is the fraction of debt a liquidator may repay in one
	// liquidation. 1.0 means the whole position can be closed at once.
	CloseFactor float64
	// LiquidationPenalty is the bonus collateral discount handed to the
	// liquidator, as a decimal.
	LiquidationPenalty float64
}

// ProtocolMechanicsTable holds per-protocol liquidation mechanics used by
// the protocol_risk factor.
var ProtocolMechanicsTable = map[types.Protocol]ProtocolMechanics{
	types.ProtocolSolend:   {CloseFactor: 0.5, LiquidationPenalty: 0.05},
	types.ProtocolMarginfi: {CloseFactor: 0.5, LiquidationPenalty: 0.04},
	types.ProtocolKamino:   {CloseFactor: 0.5, LiquidationPenalty: 0.05},
	types.ProtocolDrift:    {CloseFactor: 1.0, LiquidationPenalty: 0.08},
}

// DefaultYieldRates holds the prevailing supply/borrow APYs per protocol.
// Used by the protection engine for yield impact accounting.
var DefaultYieldRates = map[types.Protocol]types.YieldRates{
	types.ProtocolSolend:   {SupplyAPY: 0.042, BorrowAPY: 0.078},
	types.ProtocolMarginfi: {SupplyAPY: 0.051, BorrowAPY: 0.085},
	types.ProtocolKamino:   {SupplyAPY: 0.047, BorrowAPY: 0.082},
	types.ProtocolDrift:    {SupplyAPY: 0.055, BorrowAPY: 0.095},
}

// CollateralAssetInfo describes one asset a protocol accepts as collateral.
type CollateralAssetInfo struct {
	Symbol string
	// LiquidationThreshold is the per-asset 0..1 threshold applied when this
	// asset collateralizes a loan.
	LiquidationThreshold float64
	// SupplyAPY is the protocol's supply rate for the asset.
	SupplyAPY float64
	// StakingAPY is the extra staking yield carried by liquid staking
	// tokens, zero for everything else.
	StakingAPY float64
}

// EffectiveAPY is the total yield the asset earns as collateral.
func (a CollateralAssetInfo) EffectiveAPY() float64 {
	return a.SupplyAPY + a.StakingAPY
}

// AcceptedCollateral lists, per protocol, every asset the protocol accepts
// as collateral. The collateral analyzer compares held assets against this
// table when hunting for higher-yield substitutions.
var AcceptedCollateral = map[types.Protocol][]CollateralAssetInfo{
	types.ProtocolSolend: {
		{Symbol: "SOL", LiquidationThreshold: 0.85, SupplyAPY: 0.012},
		{Symbol: "mSOL", LiquidationThreshold: 0.80, SupplyAPY: 0.009, StakingAPY: 0.067},
		{Symbol: "jitoSOL", LiquidationThreshold: 0.80, SupplyAPY: 0.008, StakingAPY: 0.072},
		{Symbol: "USDC", LiquidationThreshold: 0.90, SupplyAPY: 0.042},
		{Symbol: "USDT", LiquidationThreshold: 0.88, SupplyAPY: 0.039},
	},
	types.ProtocolMarginfi: {
		{Symbol: "SOL", LiquidationThreshold: 0.85, SupplyAPY: 0.015},
		{Symbol: "mSOL", LiquidationThreshold: 0.82, SupplyAPY: 0.010, StakingAPY: 0.067},
		{Symbol: "jitoSOL", LiquidationThreshold: 0.82, SupplyAPY: 0.011, StakingAPY: 0.072},
		{Symbol: "bSOL", LiquidationThreshold: 0.78, SupplyAPY: 0.009, StakingAPY: 0.069},
		{Symbol: "USDC", LiquidationThreshold: 0.92, SupplyAPY: 0.051},
	},
	types.ProtocolKamino: {
		{Symbol: "SOL", LiquidationThreshold: 0.84, SupplyAPY: 0.014},
		{Symbol: "jitoSOL", LiquidationThreshold: 0.79, SupplyAPY: 0.010, StakingAPY: 0.072},
		{Symbol: "USDC", LiquidationThreshold: 0.90, SupplyAPY: 0.047},
	},
	types.ProtocolDrift: {
		{Symbol: "SOL", LiquidationThreshold: 0.80, SupplyAPY: 0.018},
		{Symbol: "mSOL", LiquidationThreshold: 0.75, SupplyAPY: 0.012, StakingAPY: 0.067},
		{Symbol: "USDC", LiquidationThreshold: 0.88, SupplyAPY: 0.055},
	},
}

// FindAcceptedCollateral returns the collateral table entry for an asset on
// a protocol, if the protocol accepts it.
func FindAcceptedCollateral(protocol types.Protocol, symbol string) (CollateralAssetInfo, bool) {
	for _, info := range AcceptedCollateral[protocol] {
		if info.Symbol == symbol {
			return info, true
		}
	}
	return CollateralAssetInfo{}, false
}

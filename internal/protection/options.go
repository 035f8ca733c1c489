/*

This file contains the protection option math: the exact repay,
add-collateral and unwind sizing toward the target health factor, and the
yield impact accounting for each.

All projections recompute the resulting health factor from collateral, debt
and threshold. The snapshot's own health factor field is never trusted for a
hypothetical state.

*/

package protection

import (
	"fmt"
	"math"

	"github.com/solvency-labs/sentinel/internal/types"
)

// Unwind sizing heuristics. The unwind repays a fraction of the full repay
// amount while withdrawing only part of that repaid value in collateral, so
// the health factor improves with zero new capital. These are tunable
// operating constants, not derived quantities.
const (
	// UnwindRepayFraction is the share of the full repay-to-target amount an
	// unwind repays.
	UnwindRepayFraction = 0.6
	// UnwindWithdrawFraction is the share of the repaid amount withdrawn
	// from collateral to fund the repay.
	UnwindWithdrawFraction = 0.8
	// unwindMinTargetFraction rejects unwinds that do not reach at least
	// this share of the target health factor.
	unwindMinTargetFraction = 0.9
)

// buildRepayOption sizes the exact debt repayment that restores the target
// health factor. Repaying debt saves its borrow interest but forfeits the
// supply yield the capital could have earned; the net is usually a saving,
// carried as a negative annualized cost.
func buildRepayOption(position types.LendingPosition, rates types.YieldRates, params types.ProtectionParameters) (types.ProtectionOption, bool) {
	collateralUSD := position.TotalCollateralUSD()
	debtUSD := position.TotalDebtUSD()

	amount := debtUSD - collateralUSD*position.LiquidationThreshold/params.TargetHealthFactor
	if !viableAmount(amount, params.MaxProtectionUSD) {
		return types.ProtectionOption{}, false
	}

	newDebt := debtUSD - amount
	resultingHF := types.ComputeHealthFactor(collateralUSD, newDebt, position.LiquidationThreshold)

	interestSaved := amount * rates.BorrowAPY
	opportunityCost := amount * rates.SupplyAPY
	annualCost := opportunityCost - interestSaved

	option := types.ProtectionOption{
		Action:              types.ActionRepay,
		AmountUSD:           amount,
		Asset:               primaryDebtAsset(position),
		ResultingHF:         resultingHF,
		ResultingDebtUSD:    newDebt,
		ResultingCollateral: collateralUSD,
		Yield: types.YieldImpact{
			CurrentAPY:        rates.BorrowAPY,
			ProjectedAPY:      rates.SupplyAPY,
			YieldDeltaPercent: (rates.SupplyAPY - rates.BorrowAPY) * 100,
			AnnualizedCostUSD: annualCost,
		},
		CapitalCostUSD:     amount,
		YieldCostAnnualUSD: annualCost,
		Description:        fmt.Sprintf("repay $%.2f of %s debt", amount, primaryDebtAsset(position)),
	}
	option.TotalScoreUSD = totalScore(option)
	return option, true
}

// buildAddCollateralOption sizes the exact collateral addition that restores
// the target health factor. The added capital earns supply yield, a gain
// carried as a negative annualized cost.
func buildAddCollateralOption(position types.LendingPosition, rates types.YieldRates, params types.ProtectionParameters) (types.ProtectionOption, bool) {
	collateralUSD := position.TotalCollateralUSD()
	debtUSD := position.TotalDebtUSD()

	if position.LiquidationThreshold <= 0 {
		return types.ProtectionOption{}, false
	}
	amount := debtUSD*params.TargetHealthFactor/position.LiquidationThreshold - collateralUSD
	if !viableAmount(amount, params.MaxProtectionUSD) {
		return types.ProtectionOption{}, false
	}

	newCollateral := collateralUSD + amount
	resultingHF := types.ComputeHealthFactor(newCollateral, debtUSD, position.LiquidationThreshold)

	yieldGain := amount * rates.SupplyAPY

	option := types.ProtectionOption{
		Action:              types.ActionAddCollateral,
		AmountUSD:           amount,
		Asset:               primaryCollateralAsset(position),
		ResultingHF:         resultingHF,
		ResultingDebtUSD:    debtUSD,
		ResultingCollateral: newCollateral,
		Yield: types.YieldImpact{
			CurrentAPY:        0,
			ProjectedAPY:      rates.SupplyAPY,
			YieldDeltaPercent: rates.SupplyAPY * 100,
			AnnualizedCostUSD: -yieldGain,
		},
		CapitalCostUSD:     amount,
		YieldCostAnnualUSD: -yieldGain,
		Description:        fmt.Sprintf("add $%.2f of %s collateral", amount, primaryCollateralAsset(position)),
	}
	option.TotalScoreUSD = totalScore(option)
	return option, true
}

// buildUnwindOption deleverages using only the position's own value: repay a
// fraction of the full repay amount, funded by withdrawing a smaller
// fraction of collateral, zero new capital. Kept only when the resulting
// health factor reaches at least 90% of target.
func buildUnwindOption(position types.LendingPosition, rates types.YieldRates, params types.ProtectionParameters) (types.ProtectionOption, bool) {
	collateralUSD := position.TotalCollateralUSD()
	debtUSD := position.TotalDebtUSD()

	fullRepay := debtUSD - collateralUSD*position.LiquidationThreshold/params.TargetHealthFactor
	repayAmount := fullRepay * UnwindRepayFraction
	if !viableAmount(repayAmount, params.MaxProtectionUSD) {
		return types.ProtectionOption{}, false
	}

	withdrawAmount := repayAmount * UnwindWithdrawFraction
	if withdrawAmount >= collateralUSD || repayAmount >= debtUSD {
		return types.ProtectionOption{}, false
	}

	newCollateral := collateralUSD - withdrawAmount
	newDebt := debtUSD - repayAmount
	resultingHF := types.ComputeHealthFactor(newCollateral, newDebt, position.LiquidationThreshold)
	if resultingHF < unwindMinTargetFraction*params.TargetHealthFactor {
		return types.ProtectionOption{}, false
	}

	interestSaved := repayAmount * rates.BorrowAPY
	supplyLost := withdrawAmount * rates.SupplyAPY
	annualCost := supplyLost - interestSaved

	option := types.ProtectionOption{
		Action:              types.ActionUnwind,
		AmountUSD:           repayAmount,
		Asset:               primaryCollateralAsset(position),
		ResultingHF:         resultingHF,
		ResultingDebtUSD:    newDebt,
		ResultingCollateral: newCollateral,
		Yield: types.YieldImpact{
			CurrentAPY:        rates.SupplyAPY,
			ProjectedAPY:      rates.BorrowAPY,
			YieldDeltaPercent: (rates.BorrowAPY - rates.SupplyAPY) * 100,
			AnnualizedCostUSD: annualCost,
		},
		CapitalCostUSD:     0,
		YieldCostAnnualUSD: annualCost,
		Description:        fmt.Sprintf("unwind: repay $%.2f funded by withdrawing $%.2f collateral", repayAmount, withdrawAmount),
	}
	option.TotalScoreUSD = totalScore(option)
	return option, true
}

// viableAmount requires a strictly positive, finite, budget-bounded amount.
func viableAmount(amount, budget float64) bool {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	return amount > 0 && amount <= budget
}

// totalScore combines immediate capital outlay and ongoing yield cost into
// the default ranking composite.
func totalScore(option types.ProtectionOption) float64 {
	return option.CapitalCostUSD + option.YieldCostAnnualUSD
}

// primaryDebtAsset names the largest debt asset by USD value.
func primaryDebtAsset(position types.LendingPosition) string {
	best := ""
	bestValue := -1.0
	for _, d := range position.Debt {
		if d.ValueUSD > bestValue {
			best = d.Symbol
			bestValue = d.ValueUSD
		}
	}
	if best == "" {
		return "USDC"
	}
	return best
}

// primaryCollateralAsset names the largest collateral asset by USD value.
func primaryCollateralAsset(position types.LendingPosition) string {
	best := ""
	bestValue := -1.0
	for _, c := range position.Collateral {
		if c.ValueUSD > bestValue {
			best = c.Symbol
			bestValue = c.ValueUSD
		}
	}
	if best == "" {
		return "SOL"
	}
	return best
}

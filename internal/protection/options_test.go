package protection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvency-labs/sentinel/internal/types"
)

func testParams() types.ProtectionParameters {
	return types.ProtectionParameters{
		TargetHealthFactor: 1.5,
		MaxProtectionUSD:   10_000,
		DryRun:             true,
		PreferredStrategy:  types.StrategyYieldOptimized,
		YieldRates: map[types.Protocol]types.YieldRates{
			types.ProtocolSolend: {SupplyAPY: 0.042, BorrowAPY: 0.078},
		},
	}
}

func riskyPosition() types.LendingPosition {
	return types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 13_800},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDC", ValueUSD: 10_000, InterestRate: 0.078},
		},
		LiquidationThreshold: 0.85,
	}
}

func solendRates() types.YieldRates {
	return types.YieldRates{SupplyAPY: 0.042, BorrowAPY: 0.078}
}

func TestBuildRepayOption(t *testing.T) {
	option, ok := buildRepayOption(riskyPosition(), solendRates(), testParams())
	require.True(t, ok)

	// 10000 - 13800*0.85/1.5 = 2180
	assert.InDelta(t, 2180, option.AmountUSD, 0.01)
	assert.Equal(t, types.ActionRepay, option.Action)
	assert.Equal(t, "USDC", option.Asset)
	assert.InDelta(t, 1.5, option.ResultingHF, 1e-9)
	assert.Equal(t, option.AmountUSD, option.CapitalCostUSD)

	// Borrow APY above supply APY: repaying is a net annual gain.
	assert.InDelta(t, 2180*(0.042-0.078), option.YieldCostAnnualUSD, 0.01)
	assert.Negative(t, option.YieldCostAnnualUSD)
}

func TestBuildRepayOptionNotNeeded(t *testing.T) {
	position := riskyPosition()
	position.Collateral[0].ValueUSD = 40_000 // HF well above target

	_, ok := buildRepayOption(position, solendRates(), testParams())
	assert.False(t, ok)
}

func TestBuildRepayOptionBudgetCap(t *testing.T) {
	params := testParams()
	params.MaxProtectionUSD = 100

	_, ok := buildRepayOption(riskyPosition(), solendRates(), params)
	assert.False(t, ok)
}

func TestBuildAddCollateralOption(t *testing.T) {
	option, ok := buildAddCollateralOption(riskyPosition(), solendRates(), testParams())
	require.True(t, ok)

	// 10000*1.5/0.85 - 13800 = 3847.06
	assert.InDelta(t, 3847.06, option.AmountUSD, 0.01)
	assert.Equal(t, types.ActionAddCollateral, option.Action)
	assert.InDelta(t, 1.5, option.ResultingHF, 1e-9)

	// Added collateral earns supply yield: a negative annual cost.
	assert.InDelta(t, -3847.06*0.042, option.YieldCostAnnualUSD, 0.01)
}

func TestBuildAddCollateralOptionZeroThreshold(t *testing.T) {
	position := riskyPosition()
	position.LiquidationThreshold = 0

	_, ok := buildAddCollateralOption(position, solendRates(), testParams())
	assert.False(t, ok)
}

func TestBuildUnwindOptionViable(t *testing.T) {
	position := types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 15_000},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDC", ValueUSD: 10_000},
		},
		LiquidationThreshold: 0.9,
	}

	option, ok := buildUnwindOption(position, solendRates(), testParams())
	require.True(t, ok)

	// Full repay 1000, unwind repays 600 funded by withdrawing 480.
	assert.InDelta(t, 600, option.AmountUSD, 0.01)
	assert.Equal(t, types.ActionUnwind, option.Action)
	assert.Zero(t, option.CapitalCostUSD)
	assert.InDelta(t, 14_520*0.9/9_400, option.ResultingHF, 1e-9)
	assert.GreaterOrEqual(t, option.ResultingHF, 0.9*1.5)
}

func TestBuildUnwindOptionRejectedBelowTargetFraction(t *testing.T) {
	// Deep underwater position: a partial unwind cannot reach 90% of target.
	_, ok := buildUnwindOption(riskyPosition(), solendRates(), testParams())
	assert.False(t, ok)
}

func TestViableAmount(t *testing.T) {
	assert.True(t, viableAmount(50, 100))
	assert.True(t, viableAmount(100, 100))
	assert.False(t, viableAmount(0, 100))
	assert.False(t, viableAmount(-10, 100))
	assert.False(t, viableAmount(101, 100))
}

func TestPrimaryAssets(t *testing.T) {
	position := types.LendingPosition{
		Collateral: []types.CollateralAsset{
			{Symbol: "mSOL", ValueUSD: 2_000},
			{Symbol: "SOL", ValueUSD: 8_000},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDT", ValueUSD: 1_000},
			{Symbol: "USDC", ValueUSD: 4_000},
		},
	}

	assert.Equal(t, "SOL", primaryCollateralAsset(position))
	assert.Equal(t, "USDC", primaryDebtAsset(position))

	empty := types.LendingPosition{}
	assert.Equal(t, "SOL", primaryCollateralAsset(empty))
	assert.Equal(t, "USDC", primaryDebtAsset(empty))
}

package collateral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvency-labs/sentinel/internal/types"
)

func TestNewAnalyzerDefaultFloor(t *testing.T) {
	assert.Equal(t, 1.25, NewAnalyzer(0).SafetyFloor())
	assert.Equal(t, 1.4, NewAnalyzer(1.4).SafetyFloor())
}

func TestAnalyzePositionNoCollateral(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
	})
	assert.Empty(t, analysis.Recommendations)
}

func TestAnalyzePositionDebtFreeSuggestsStakingYield(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	// No debt: HF is unconstrained, every higher-yield substitute is safe.
	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", Amount: 50, ValueUSD: 10_000},
		},
		LiquidationThreshold: 0.85,
	})

	require.NotEmpty(t, analysis.Recommendations)
	best := analysis.Recommendations[0]

	// jitoSOL carries the highest effective APY on solend (0.008 + 0.072).
	assert.Equal(t, "SOL", best.FromAsset)
	assert.Equal(t, "jitoSOL", best.ToAsset)
	assert.InDelta(t, 10_000*(0.080-0.012), best.AnnualGainUSD, 0.01)

	// Swapping into an asset with a lower liquidation threshold carries a note.
	assert.NotEmpty(t, best.RiskNote)

	for _, rec := range analysis.Recommendations {
		assert.True(t, rec.Health.Safe)
		assert.GreaterOrEqual(t, rec.Health.ProjectedHF, analyzer.SafetyFloor())
	}
}

func TestAnalyzePositionSafetyFloorBlocksRiskySwaps(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	// HF = 10000*0.85/6540 = 1.30. Moving to a 0.80-threshold LST would
	// leave 1.22, below the floor; those swaps must vanish without a trace.
	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", Amount: 50, ValueUSD: 10_000},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDC", ValueUSD: 6_540},
		},
		LiquidationThreshold: 0.85,
	})

	for _, rec := range analysis.Recommendations {
		assert.NotEqual(t, "jitoSOL", rec.ToAsset)
		assert.NotEqual(t, "mSOL", rec.ToAsset)
		assert.True(t, rec.Health.Safe)
		assert.GreaterOrEqual(t, rec.Health.ProjectedHF, analyzer.SafetyFloor())
	}

	// The higher-threshold stablecoin swap survives the floor.
	var sawUSDC bool
	for _, rec := range analysis.Recommendations {
		if rec.ToAsset == "USDC" {
			sawUSDC = true
			assert.Empty(t, rec.RiskNote)
		}
	}
	assert.True(t, sawUSDC)
}

func TestAnalyzePositionRecommendationsSortedByGain(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolMarginfi,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 8_000},
			{Symbol: "USDC", ValueUSD: 4_000},
		},
		LiquidationThreshold: 0.85,
	})

	require.Greater(t, len(analysis.Recommendations), 1)
	for i := 1; i < len(analysis.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			analysis.Recommendations[i-1].AnnualGainUSD,
			analysis.Recommendations[i].AnnualGainUSD)
	}
}

func TestAnalyzePositionWeightedAPYSummary(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 10_000},
		},
		LiquidationThreshold: 0.85,
	})

	assert.InDelta(t, 0.012, analysis.CurrentWeightedAPY, 1e-9)
	// Best achievable is jitoSOL's 8.0% effective.
	assert.InDelta(t, 0.080, analysis.BestWeightedAPY, 1e-9)
	assert.Greater(t, analysis.BestWeightedAPY, analysis.CurrentWeightedAPY)
}

func TestAnalyzePositionUnknownAssetSkipped(t *testing.T) {
	analyzer := NewAnalyzer(1.25)

	analysis := analyzer.AnalyzePosition(types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "BONK", ValueUSD: 10_000},
		},
		LiquidationThreshold: 0.5,
	})

	assert.Empty(t, analysis.Recommendations)
	assert.Zero(t, analysis.CurrentWeightedAPY)
}

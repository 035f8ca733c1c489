package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvency-labs/sentinel/internal/types"
)

func TestAssessWalletEmpty(t *testing.T) {
	engine := NewEngine(defaultTestParams())

	assessment := engine.AssessWallet("walletA", nil)
	assert.Equal(t, types.RiskSafe, assessment.Level)
	assert.Zero(t, assessment.Score)
	assert.Empty(t, assessment.Positions)
}

func TestAssessWalletSinglePosition(t *testing.T) {
	engine := NewEngine(defaultTestParams())
	position := leveragedPosition()

	walletAssessment := engine.AssessWallet("walletA", []types.LendingPosition{position})

	require.Len(t, walletAssessment.Positions, 1)
	// One position: worst == mean, so the overall equals the position score.
	assert.InDelta(t, walletAssessment.Positions[0].Score, walletAssessment.Score, 1e-9)
	// Single protocol in debt: no cross-protocol factor.
	assert.Empty(t, walletAssessment.Factors)
}

func TestAssessWalletWorstPositionDominates(t *testing.T) {
	engine := NewEngine(defaultTestParams())

	risky := leveragedPosition()
	safe := types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolKamino,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 50_000},
		},
		LiquidationThreshold: 0.84,
	}

	walletAssessment := engine.AssessWallet("walletA", []types.LendingPosition{risky, safe})
	require.Len(t, walletAssessment.Positions, 2)

	worst := walletAssessment.Positions[0].Score
	if walletAssessment.Positions[1].Score > worst {
		worst = walletAssessment.Positions[1].Score
	}
	mean := (walletAssessment.Positions[0].Score + walletAssessment.Positions[1].Score) / 2

	assert.InDelta(t, 0.7*worst+0.3*mean, walletAssessment.Score, 1e-9)
	// A safe second position cannot average the wallet into comfort.
	assert.GreaterOrEqual(t, walletAssessment.Score, 0.7*worst)
}

func TestAssessWalletCrossProtocolFactor(t *testing.T) {
	engine := NewEngine(defaultTestParams())

	posA := leveragedPosition()
	posB := leveragedPosition()
	posB.Protocol = types.ProtocolMarginfi

	walletAssessment := engine.AssessWallet("walletA", []types.LendingPosition{posA, posB})

	require.Len(t, walletAssessment.Factors, 1)
	factor := walletAssessment.Factors[0]
	assert.Equal(t, "cross_protocol", factor.Name)
	// Two protocols with debt: 20 each, capped at 60.
	assert.Equal(t, 40.0, factor.Score)

	// The factor influences the level, never the reported score.
	mean := (walletAssessment.Positions[0].Score + walletAssessment.Positions[1].Score) / 2
	worst := walletAssessment.Positions[0].Score
	if walletAssessment.Positions[1].Score > worst {
		worst = walletAssessment.Positions[1].Score
	}
	assert.InDelta(t, 0.7*worst+0.3*mean, walletAssessment.Score, 1e-9)
}

func TestAssessWalletNoCrossProtocolWithoutDebt(t *testing.T) {
	engine := NewEngine(defaultTestParams())

	posA := leveragedPosition()
	posB := types.LendingPosition{
		Wallet:   "walletA",
		Protocol: types.ProtocolDrift,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", ValueUSD: 5_000},
		},
		LiquidationThreshold: 0.80,
	}

	walletAssessment := engine.AssessWallet("walletA", []types.LendingPosition{posA, posB})
	// Only one protocol carries debt.
	assert.Empty(t, walletAssessment.Factors)
}

func TestMergeRecommendations(t *testing.T) {
	assessments := []types.RiskAssessment{
		{
			Recommendations: []types.ProtectionRecommendation{
				{Action: types.ActionRepay, Urgency: types.UrgencyMedium, AmountUSD: 100},
				{Action: types.ActionNone, Urgency: types.UrgencyNone},
			},
		},
		{
			Recommendations: []types.ProtectionRecommendation{
				{Action: types.ActionRepay, Urgency: types.UrgencyImmediate, AmountUSD: 900},
				{Action: types.ActionAddCollateral, Urgency: types.UrgencyHigh, AmountUSD: 500},
			},
		},
	}

	merged := mergeRecommendations(assessments)
	require.Len(t, merged, 3)

	// Sorted most urgent first, one entry per action.
	assert.Equal(t, types.ActionRepay, merged[0].Action)
	assert.Equal(t, types.UrgencyImmediate, merged[0].Urgency)
	assert.Equal(t, 900.0, merged[0].AmountUSD)
	assert.Equal(t, types.ActionAddCollateral, merged[1].Action)
	assert.Equal(t, types.ActionNone, merged[2].Action)
}

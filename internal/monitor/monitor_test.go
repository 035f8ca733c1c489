package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvency-labs/sentinel/internal/collateral"
	"github.com/solvency-labs/sentinel/internal/config"
	"github.com/solvency-labs/sentinel/internal/executor"
	"github.com/solvency-labs/sentinel/internal/positions"
	"github.com/solvency-labs/sentinel/internal/protection"
	"github.com/solvency-labs/sentinel/internal/risk"
	"github.com/solvency-labs/sentinel/internal/types"
)

// stubProvider serves canned positions per wallet, with optional per-wallet
// failures to exercise the cycle's degradation path.
type stubProvider struct {
	positions map[string][]types.LendingPosition
	failing   map[string]error
}

func (s *stubProvider) FetchPosition(_ context.Context, wallet string, protocol types.Protocol) (*types.LendingPosition, error) {
	for _, p := range s.positions[wallet] {
		if p.Protocol == protocol {
			position := p
			return &position, nil
		}
	}
	return nil, positions.ErrNoPosition
}

func (s *stubProvider) FetchWalletPositions(_ context.Context, wallet string) ([]types.LendingPosition, error) {
	if err, ok := s.failing[wallet]; ok {
		return nil, err
	}
	return s.positions[wallet], nil
}

func riskyPosition(wallet string) types.LendingPosition {
	return types.LendingPosition{
		Wallet:   wallet,
		Protocol: types.ProtocolSolend,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", Amount: 66.7, ValueUSD: 10000},
			{Symbol: "mSOL", Amount: 24.0, ValueUSD: 3800},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDC", Amount: 10000, ValueUSD: 10000, InterestRate: 0.078},
		},
		LiquidationThreshold: 0.85,
		LastUpdated:          time.Now(),
	}
}

func safePosition(wallet string) types.LendingPosition {
	return types.LendingPosition{
		Wallet:   wallet,
		Protocol: types.ProtocolMarginfi,
		Collateral: []types.CollateralAsset{
			{Symbol: "SOL", Amount: 100, ValueUSD: 15000},
		},
		Debt: []types.DebtAsset{
			{Symbol: "USDC", Amount: 2000, ValueUSD: 2000, InterestRate: 0.085},
		},
		LiquidationThreshold: 0.85,
		LastUpdated:          time.Now(),
	}
}

func testMonitorConfig(provider positions.Provider, wallets []string, protectionEngine *protection.Engine) Config {
	return Config{
		Provider:         provider,
		RiskEngine:       risk.NewEngine(config.DefaultRiskParameters),
		ProtectionEngine: protectionEngine,
		Analyzer:         collateral.NewAnalyzer(config.DefaultCollateralSafetyFloor),
		Executor:         executor.Noop{},
		Wallets:          wallets,
		PersistState:     false,
	}
}

func TestValidateMonitorConfig(t *testing.T) {
	provider := &stubProvider{}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	valid := testMonitorConfig(provider, []string{"walletA"}, protectionEngine)
	require.NoError(t, validateMonitorConfig(valid))

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"nil provider", func(cfg *Config) { cfg.Provider = nil }},
		{"nil risk engine", func(cfg *Config) { cfg.RiskEngine = nil }},
		{"nil protection engine", func(cfg *Config) { cfg.ProtectionEngine = nil }},
		{"nil analyzer", func(cfg *Config) { cfg.Analyzer = nil }},
		{"nil executor", func(cfg *Config) { cfg.Executor = nil }},
		{"no wallets", func(cfg *Config) { cfg.Wallets = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testMonitorConfig(provider, []string{"walletA"}, protectionEngine)
			tc.mutate(&cfg)
			assert.Error(t, validateMonitorConfig(cfg))
		})
	}
}

func TestNewMonitorRejectsInvalidConfig(t *testing.T) {
	_, err := NewMonitor(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestRunCycleProtectsRiskyPosition(t *testing.T) {
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletA": {riskyPosition("walletA")},
		},
	}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	m, err := NewMonitor(testMonitorConfig(provider, []string{"walletA"}, protectionEngine))
	require.NoError(t, err)

	m.RunCycle(context.Background())

	execLog := protectionEngine.ExecutionLog()
	require.Len(t, execLog, 1)
	assert.True(t, execLog[0].DryRun)
	assert.True(t, execLog[0].Success)
	require.NotNil(t, execLog[0].Option)
	assert.Greater(t, execLog[0].NewHF, execLog[0].PreviousHF)
}

func TestRunCycleSkipsSafePositions(t *testing.T) {
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletA": {safePosition("walletA")},
		},
	}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	m, err := NewMonitor(testMonitorConfig(provider, []string{"walletA"}, protectionEngine))
	require.NoError(t, err)

	m.RunCycle(context.Background())

	assert.Empty(t, protectionEngine.ExecutionLog())
}

func TestRunCycleWalletFailureDoesNotAbortOthers(t *testing.T) {
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletB": {riskyPosition("walletB")},
		},
		failing: map[string]error{
			"walletA": errors.New("rpc node unreachable"),
		},
	}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	m, err := NewMonitor(testMonitorConfig(provider, []string{"walletA", "walletB"}, protectionEngine))
	require.NoError(t, err)

	m.RunCycle(context.Background())

	execLog := protectionEngine.ExecutionLog()
	require.Len(t, execLog, 1)
	assert.Equal(t, "walletB", execLog[0].Wallet)
}

func TestRunCycleFeedsExecutedOutcomeIntoHistory(t *testing.T) {
	position := riskyPosition("walletA")
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletA": {position},
		},
	}
	liveParams := config.DefaultProtectionParameters
	liveParams.DryRun = false
	protectionEngine := protection.NewEngine(liveParams)

	cfg := testMonitorConfig(provider, []string{"walletA"}, protectionEngine)
	m, err := NewMonitor(cfg)
	require.NoError(t, err)

	m.RunCycle(context.Background())

	execLog := protectionEngine.ExecutionLog()
	require.Len(t, execLog, 1)
	require.True(t, execLog[0].Success)
	require.False(t, execLog[0].DryRun)

	// One snapshot from the assessment plus the executed outcome fed back.
	history := cfg.RiskEngine.History(position.Key())
	require.Len(t, history, 2)
	assert.InDelta(t, execLog[0].NewHF, history[1].HealthFactor, 1e-9)
}

func TestRunCycleStopsOnContextCancellation(t *testing.T) {
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletA": {riskyPosition("walletA")},
			"walletB": {riskyPosition("walletB")},
		},
	}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	m, err := NewMonitor(testMonitorConfig(provider, []string{"walletA", "walletB"}, protectionEngine))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.RunCycle(ctx)

	assert.Empty(t, protectionEngine.ExecutionLog())
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	provider := &stubProvider{
		positions: map[string][]types.LendingPosition{
			"walletA": {safePosition("walletA")},
		},
	}
	protectionEngine := protection.NewEngine(config.DefaultProtectionParameters)

	m, err := NewMonitor(testMonitorConfig(provider, []string{"walletA"}, protectionEngine))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunLoop did not return after context cancellation")
	}
}

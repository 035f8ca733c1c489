package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solvency-labs/sentinel/internal/collateral"
	"github.com/solvency-labs/sentinel/internal/executor"
	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/positions"
	"github.com/solvency-labs/sentinel/internal/protection"
	"github.com/solvency-labs/sentinel/internal/risk"
	"github.com/solvency-labs/sentinel/internal/state"
	"github.com/solvency-labs/sentinel/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMS_CONFIG_NAME    = "default_sentinel_strategy"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// Monitor drives the recurring protection cycle: fetch positions for every
// watched wallet, assess risk, evaluate and execute protection, and persist
// the outcomes.
type Monitor struct {
	logger zerolog.Logger

	provider         positions.Provider
	riskEngine       *risk.Engine
	protectionEngine *protection.Engine
	analyzer         *collateral.Analyzer
	executor         executor.Executor

	wallets      []string
	persistState bool

	cycleCount int
}

// Config holds the configuration for creating a new Monitor instance.
type Config struct {
	Provider         positions.Provider
	RiskEngine       *risk.Engine
	ProtectionEngine *protection.Engine
	Analyzer         *collateral.Analyzer
	Executor         executor.Executor
	Wallets          []string
	// PersistState controls whether cycle outputs are written to Postgres.
	// Disabled when the process runs without a database.
	PersistState bool
}

// NewMonitor creates a new Monitor instance with dependency injection.
func NewMonitor(cfg Config) (*Monitor, error) {
	if err := validateMonitorConfig(cfg); err != nil {
		return nil, fmt.Errorf("monitor configuration validation failed: %w", err)
	}

	m := &Monitor{
		logger:           logger.GetForComponent("monitor_core"),
		provider:         cfg.Provider,
		riskEngine:       cfg.RiskEngine,
		protectionEngine: cfg.ProtectionEngine,
		analyzer:         cfg.Analyzer,
		executor:         cfg.Executor,
		wallets:          cfg.Wallets,
		persistState:     cfg.PersistState,
		cycleCount:       0,
	}

	m.logger.Info().
		Int("wallets", len(m.wallets)).
		Bool("persistState", m.persistState).
		Msg("Monitor instance created successfully with dependency injection")

	return m, nil
}

// validateMonitorConfig validates the Monitor configuration.
func validateMonitorConfig(cfg Config) error {
	if cfg.Provider == nil {
		return fmt.Errorf("position provider cannot be nil")
	}
	if cfg.RiskEngine == nil {
		return fmt.Errorf("risk engine cannot be nil")
	}
	if cfg.ProtectionEngine == nil {
		return fmt.Errorf("protection engine cannot be nil")
	}
	if cfg.Analyzer == nil {
		return fmt.Errorf("collateral analyzer cannot be nil")
	}
	if cfg.Executor == nil {
		return fmt.Errorf("executor cannot be nil")
	}
	if len(cfg.Wallets) == 0 {
		return fmt.Errorf("at least one wallet must be watched")
	}
	return nil
}

// RunLoop starts the main monitoring loop with the specified interval.
func (m *Monitor) RunLoop(ctx context.Context, interval time.Duration) {
	m.logger.Info().
		Dur("interval", interval).
		Msg("Starting monitoring main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	m.cycleCount++
	m.logger.Info().Int("cycle", m.cycleCount).Msg("Initiating monitoring cycle")
	m.RunCycle(ctx)
	m.logger.Info().Int("cycle", m.cycleCount).Msg("Monitoring cycle completed")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Monitoring loop stopped due to context cancellation")
			return
		case <-ticker.C:
			m.cycleCount++
			m.logger.Info().Int("cycle", m.cycleCount).Msg("Initiating monitoring cycle")
			m.RunCycle(ctx)
			m.logger.Info().Int("cycle", m.cycleCount).Msg("Monitoring cycle completed")
		}
	}
}

// RunCycle executes a complete monitoring cycle across all watched wallets.
// A failure in one wallet never aborts the others.
func (m *Monitor) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Unique cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := m.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting Monitoring Cycle ---")

	cycleNumber := m.getCycleNumber()
	cycleLogger.Info().
		Int("cycleNumber", cycleNumber).
		Time("timestamp", cycleStartTime).
		Int("wallets", len(m.wallets)).
		Msg("Cycle initialized")

	for _, wallet := range m.wallets {
		if ctx.Err() != nil {
			cycleLogger.Warn().Msg("Cycle interrupted by context cancellation")
			return
		}
		m.runWalletCycle(ctx, wallet, cycleNumber, cycleLogger)
	}

	CyclesTotal.Inc()
	CycleDuration.Observe(time.Since(cycleStartTime).Seconds())

	cycleLogger.Info().
		Str("cycleDuration", time.Since(cycleStartTime).String()).
		Msg("--- Monitoring Cycle Completed ---")
}

// runWalletCycle runs the full assess/protect/analyze pipeline for one wallet.
func (m *Monitor) runWalletCycle(ctx context.Context, wallet string, cycleNumber int, cycleLogger zerolog.Logger) {
	walletLogger := cycleLogger.With().Str("wallet", wallet).Logger()

	// --- Step 1: Position Fetching ---
	walletLogger.Info().Msg("Step 1: Fetching lending positions...")
	walletPositions, err := m.provider.FetchWalletPositions(ctx, wallet)
	if err != nil {
		walletLogger.Error().Err(err).Msg("Wallet skipped: Failed to fetch positions.")
		return
	}
	walletLogger.Info().Int("positions", len(walletPositions)).Msg("Step 1: Position fetching complete.")

	// --- Step 2: Risk Assessment ---
	walletLogger.Info().Msg("Step 2: Assessing wallet risk...")
	walletAssessment := m.riskEngine.AssessWallet(wallet, walletPositions)
	for _, positionAssessment := range walletAssessment.Positions {
		AssessmentsTotal.WithLabelValues(positionAssessment.Level.String()).Inc()
	}
	WalletRiskScore.WithLabelValues(wallet).Set(walletAssessment.Score)

	walletLogger.Info().
		Float64("score", walletAssessment.Score).
		Str("level", walletAssessment.Level.String()).
		Int("positions", len(walletAssessment.Positions)).
		Msg("Step 2: Wallet risk assessed.")

	m.saveWalletAssessment(walletAssessment, cycleNumber, walletLogger)

	// --- Step 3: Protection ---
	walletLogger.Info().Msg("Step 3: Evaluating protection for at-risk positions...")
	protectedCount := 0
	for i, positionAssessment := range walletAssessment.Positions {
		if positionAssessment.Level <= types.RiskLow {
			continue
		}
		if i >= len(walletPositions) {
			break
		}
		position := walletPositions[i]

		result := m.protectionEngine.Protect(ctx, position, positionAssessment, m.executor)
		m.recordProtectionOutcome(position, result, cycleNumber, walletLogger)
		if result.Option != nil {
			protectedCount++
		}
	}
	walletLogger.Info().Int("protectedPositions", protectedCount).Msg("Step 3: Protection evaluation complete.")

	// --- Step 4: Collateral Yield Analysis ---
	// Only advisory, and only worth surfacing on positions that are not in
	// danger: a swap on a stressed position is never recommended here.
	walletLogger.Info().Msg("Step 4: Analyzing collateral yield...")
	for i, positionAssessment := range walletAssessment.Positions {
		if positionAssessment.Level > types.RiskLow || i >= len(walletPositions) {
			continue
		}
		analysis := m.analyzer.AnalyzePosition(walletPositions[i])
		if len(analysis.Recommendations) == 0 {
			continue
		}
		best := analysis.Recommendations[0]
		walletLogger.Info().
			Str("protocol", string(analysis.Protocol)).
			Str("fromAsset", best.FromAsset).
			Str("toAsset", best.ToAsset).
			Float64("annualGainUSD", best.AnnualGainUSD).
			Float64("currentWeightedAPY", analysis.CurrentWeightedAPY).
			Float64("bestWeightedAPY", analysis.BestWeightedAPY).
			Msg("Collateral yield improvement available")
	}
	walletLogger.Info().Msg("Step 4: Collateral yield analysis complete.")
}

// recordProtectionOutcome logs, counts and persists one protection result.
func (m *Monitor) recordProtectionOutcome(position types.LendingPosition, result types.ProtectionResult, cycleNumber int, walletLogger zerolog.Logger) {
	switch {
	case result.Option == nil:
		// No viable option existed; nothing was attempted.
		return
	case result.DryRun:
		ProtectionAttemptsTotal.WithLabelValues("dry_run").Inc()
	case result.Success:
		ProtectionAttemptsTotal.WithLabelValues("success").Inc()
	default:
		ProtectionAttemptsTotal.WithLabelValues("failure").Inc()
	}

	logEvent := walletLogger.Info()
	if !result.Success {
		logEvent = walletLogger.Error()
	}
	logEvent.
		Str("protocol", string(position.Protocol)).
		Str("action", string(result.Option.Action)).
		Float64("amountUSD", result.Option.AmountUSD).
		Float64("previousHF", result.PreviousHF).
		Float64("newHF", result.NewHF).
		Bool("dryRun", result.DryRun).
		Bool("success", result.Success).
		Str("error", result.Error).
		Int64("executionTimeMs", result.ExecutionTimeMs).
		Msg("Protection attempt recorded")

	// An executed protection changed the position; feed the resulting health
	// factor back into trend history so the next assessment sees the jump
	// rather than inferring continued decay. Dry runs change nothing and
	// must not pollute the trend.
	if result.Success && !result.DryRun {
		m.riskEngine.RecordHealthSample(position.Wallet, position.Protocol, result.NewHF)
	}

	if !m.persistState {
		return
	}
	if _, err := state.SaveProtectionResult(result, cycleNumber); err != nil {
		walletLogger.Error().Err(err).Msg("Failed to save protection result to database")
	}
}

// saveWalletAssessment persists the wallet assessment, best effort.
func (m *Monitor) saveWalletAssessment(assessment types.WalletRiskAssessment, cycleNumber int, walletLogger zerolog.Logger) {
	if !m.persistState {
		return
	}
	assessmentID, err := state.SaveWalletAssessment(assessment, cycleNumber)
	if err != nil {
		walletLogger.Error().Err(err).Msg("Failed to save wallet assessment to database")
		return
	}
	walletLogger.Debug().Int64("assessment_id", assessmentID).Msg("Wallet assessment saved")
}

// getCycleNumber increments and returns the persistent cycle counter from
// the database, with a timestamp fallback when persistence is unavailable.
func (m *Monitor) getCycleNumber() int {
	if !m.persistState {
		return m.cycleCount
	}
	cycleNumber, err := state.IncrementCycleNumber()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to increment cycle number, using fallback")
		return int(time.Now().Unix() % 1000000)
	}
	return cycleNumber
}

/*

This file contains the protection engine: option generation and ranking over
a position snapshot, best-option selection, and the single state-mutating
surface that realizes an option through the external executor.

*/

package protection

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/solvency-labs/sentinel/internal/executor"
	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/types"
)

// Engine generates, ranks and optionally executes protection options.
// Option evaluation is a pure function of its inputs; the only engine state
// is the append-only execution log.
type Engine struct {
	logger zerolog.Logger

	mu     sync.RWMutex
	params types.ProtectionParameters
	log    []types.ProtectionResult
}

// NewEngine creates a protection engine, normalizing out-of-range
// parameters to usable defaults.
func NewEngine(params types.ProtectionParameters) *Engine {
	if params.TargetHealthFactor <= 1.0 {
		params.TargetHealthFactor = 1.5
	}
	if params.MaxProtectionUSD <= 0 {
		params.MaxProtectionUSD = 10000
	}
	if params.PreferredStrategy == "" {
		params.PreferredStrategy = types.StrategyYieldOptimized
	}

	return &Engine{
		logger: logger.GetForComponent("protection_engine"),
		params: params,
	}
}

// Parameters returns the engine's active parameters.
func (e *Engine) Parameters() types.ProtectionParameters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// UpdateParameters swaps the active parameter set. The execution log is
// unaffected.
func (e *Engine) UpdateParameters(params types.ProtectionParameters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = params
}

// ExecutionLog returns a copy of the append-only execution log, oldest
// first.
func (e *Engine) ExecutionLog() []types.ProtectionResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.ProtectionResult, len(e.log))
	copy(out, e.log)
	return out
}

// EvaluateOptions computes the viable protection options for a position
// given its assessment. Safe and low risk levels need no protection and
// return an empty list. The call is pure: evaluating twice on the same
// inputs yields identical lists.
func (e *Engine) EvaluateOptions(position types.LendingPosition, assessment types.RiskAssessment) []types.ProtectionOption {
	if assessment.Level <= types.RiskLow {
		return nil
	}

	params := e.Parameters()
	rates := params.YieldRates[position.Protocol]

	options := make([]types.ProtectionOption, 0, 3)
	if option, ok := buildRepayOption(position, rates, params); ok {
		options = append(options, option)
	}
	if option, ok := buildAddCollateralOption(position, rates, params); ok {
		options = append(options, option)
	}
	if option, ok := buildUnwindOption(position, rates, params); ok {
		options = append(options, option)
	}

	e.logger.Debug().
		Str("wallet", position.Wallet).
		Str("protocol", string(position.Protocol)).
		Str("level", assessment.Level.String()).
		Int("options", len(options)).
		Msg("Protection options evaluated")

	return options
}

// SelectBestOption ranks the options by the preferred strategy and returns
// the first, or nil when no option is viable.
func (e *Engine) SelectBestOption(options []types.ProtectionOption) *types.ProtectionOption {
	if len(options) == 0 {
		return nil
	}
	ranked := rankOptions(options, e.Parameters().PreferredStrategy)
	best := ranked[0]
	return &best
}

// Protect evaluates, selects and realizes the best protection option for
// the position. It is the engine's only state-mutating surface.
//
// When configured for dry-run, or when exec is nil, the selected option is
// recorded without external effect. A real execution failure is converted
// into a failed result, never propagated: protection failures are local,
// reported events and the caller decides whether to retry next cycle.
func (e *Engine) Protect(ctx context.Context, position types.LendingPosition, assessment types.RiskAssessment, exec executor.Executor) types.ProtectionResult {
	previousHF := types.ComputeHealthFactor(position.TotalCollateralUSD(), position.TotalDebtUSD(), position.LiquidationThreshold)

	result := types.ProtectionResult{
		Wallet:     position.Wallet,
		Protocol:   position.Protocol,
		PreviousHF: previousHF,
		NewHF:      previousHF,
		Timestamp:  time.Now(),
	}

	options := e.EvaluateOptions(position, assessment)
	best := e.SelectBestOption(options)
	if best == nil {
		// Nothing to do is a success, not a failure, and not an attempt:
		// it is reported but kept out of the execution log.
		result.Success = true
		result.DryRun = true
		return result
	}

	result.Option = best
	result.NewHF = best.ResultingHF

	params := e.Parameters()
	if params.DryRun || exec == nil {
		result.Success = true
		result.DryRun = true
		e.logger.Info().
			Str("wallet", position.Wallet).
			Str("protocol", string(position.Protocol)).
			Str("action", string(best.Action)).
			Float64("amountUSD", best.AmountUSD).
			Float64("resultingHF", best.ResultingHF).
			Msg("Dry run: protection option selected but not executed")
		e.appendResult(result)
		return result
	}

	started := time.Now()
	signature, err := exec.Execute(ctx, position, *best)
	result.ExecutionTimeMs = time.Since(started).Milliseconds()

	if err != nil {
		result.Success = false
		result.NewHF = previousHF
		result.Error = err.Error()
		e.logger.Error().
			Err(err).
			Str("wallet", position.Wallet).
			Str("protocol", string(position.Protocol)).
			Str("action", string(best.Action)).
			Msg("Protection execution failed")
	} else {
		result.Success = true
		result.TxSignature = signature
		e.logger.Info().
			Str("wallet", position.Wallet).
			Str("protocol", string(position.Protocol)).
			Str("action", string(best.Action)).
			Str("txSignature", signature).
			Float64("previousHF", previousHF).
			Float64("newHF", best.ResultingHF).
			Int64("executionTimeMs", result.ExecutionTimeMs).
			Msg("Protection executed")
	}

	e.appendResult(result)
	return result
}

func (e *Engine) appendResult(result types.ProtectionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, result)
}

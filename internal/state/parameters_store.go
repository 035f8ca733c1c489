// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solvency-labs/sentinel/internal/types"
)

// SaveEngineParameters saves a new version of the combined risk and
// protection parameter set.
func SaveEngineParameters(riskParams types.RiskParameters, protectionParams types.ProtectionParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	yieldRatesJSON, err := json.Marshal(protectionParams.YieldRates)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal yield_rates: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO engine_parameters (
            version, config_name, is_active, activated_at, created_at,
            threshold_safe, threshold_low, threshold_medium, threshold_high,
            position_size_scaling, trend_window_size, trend_min_samples,
            target_health_factor, max_protection_usd, dry_run, preferred_strategy,
            yield_rates
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9,
            $10, $11, $12,
            $13, $14, $15, $16,
            $17
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		riskParams.Thresholds.Safe, riskParams.Thresholds.Low, riskParams.Thresholds.Medium, riskParams.Thresholds.High,
		riskParams.PositionSizeScaling, riskParams.TrendWindowSize, riskParams.TrendMinSamples,
		protectionParams.TargetHealthFactor, protectionParams.MaxProtectionUSD, protectionParams.DryRun, string(protectionParams.PreferredStrategy),
		yieldRatesJSON,
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved engine parameters")
	return paramsID, nil
}

// LoadActiveEngineParameters loads the currently active parameter set.
func LoadActiveEngineParameters(configName string) (*types.RiskParameters, *types.ProtectionParameters, error) {
	if DB == nil {
		return nil, nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            threshold_safe, threshold_low, threshold_medium, threshold_high,
            position_size_scaling, trend_window_size, trend_min_samples,
            target_health_factor, max_protection_usd, dry_run, preferred_strategy,
            yield_rates
        FROM engine_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	riskParams := &types.RiskParameters{}
	protectionParams := &types.ProtectionParameters{}
	var preferredStrategy string
	var yieldRatesJSON []byte

	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&riskParams.Thresholds.Safe, &riskParams.Thresholds.Low, &riskParams.Thresholds.Medium, &riskParams.Thresholds.High,
		&riskParams.PositionSizeScaling, &riskParams.TrendWindowSize, &riskParams.TrendMinSamples,
		&protectionParams.TargetHealthFactor, &protectionParams.MaxProtectionUSD, &protectionParams.DryRun, &preferredStrategy,
		&yieldRatesJSON,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("no active engine parameters found for config '%s'", configName)
		}
		return nil, nil, fmt.Errorf("failed to scan active engine parameters for config '%s': %w", configName, err)
	}

	protectionParams.PreferredStrategy = types.RankingStrategy(preferredStrategy)
	if len(yieldRatesJSON) > 0 {
		if err := json.Unmarshal(yieldRatesJSON, &protectionParams.YieldRates); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal yield_rates for config '%s': %w", configName, err)
		}
	}

	log.Info().Str("config", configName).Msg("Loaded active engine parameters")
	return riskParams, protectionParams, nil
}

// GetActiveEngineParametersID returns the params_id of the currently active
// parameter set, or nil when none is active.
func GetActiveEngineParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM engine_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			// No active parameters found - this is valid, return nil
			log.Debug().Str("config", configName).Msg("No active engine parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active engine parameters ID for config '%s': %w", configName, err)
	}

	log.Debug().
		Str("config", configName).
		Int64("params_id", paramsID).
		Msg("Retrieved active engine parameters ID")

	return &paramsID, nil
}

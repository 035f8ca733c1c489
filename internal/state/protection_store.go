// ./internal/state/protection_store.go
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solvency-labs/sentinel/internal/types"
)

// SaveProtectionResult appends one protection attempt to the audit log.
func SaveProtectionResult(result types.ProtectionResult, cycleNumber int) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var optionJSON []byte
	var action string
	var amountUSD float64
	if result.Option != nil {
		var err error
		optionJSON, err = json.Marshal(result.Option)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal option: %w", err)
		}
		action = string(result.Option.Action)
		amountUSD = result.Option.AmountUSD
	} else {
		action = string(types.ActionNone)
	}

	query := `
		INSERT INTO protection_results (
			cycle_number, result_timestamp, wallet, protocol, action,
			success, dry_run, amount_usd, previous_hf, new_hf,
			tx_signature, error_message, execution_time_ms, option_detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING result_id;
	`

	var resultID int64
	err := DB.QueryRow(
		query,
		cycleNumber, result.Timestamp, result.Wallet, string(result.Protocol), action,
		result.Success, result.DryRun, amountUSD, result.PreviousHF, result.NewHF,
		result.TxSignature, result.Error, result.ExecutionTimeMs, optionJSON,
	).Scan(&resultID)

	if err != nil {
		return 0, fmt.Errorf("failed to save protection result: %w", err)
	}

	log.Debug().
		Int64("result_id", resultID).
		Str("wallet", result.Wallet).
		Str("action", action).
		Bool("success", result.Success).
		Msg("Protection result saved to database")

	return resultID, nil
}

// StoredProtectionResult is one persisted protection attempt row.
type StoredProtectionResult struct {
	ResultID        int64
	CycleNumber     int
	Timestamp       time.Time
	Wallet          string
	Protocol        string
	Action          string
	Success         bool
	DryRun          bool
	AmountUSD       float64
	PreviousHF      float64
	NewHF           float64
	TxSignature     string
	ErrorMessage    string
	ExecutionTimeMs int64
}

// GetRecentProtectionResults returns up to limit protection attempts for a
// wallet, newest first. An empty wallet returns attempts across all wallets.
func GetRecentProtectionResults(wallet string, limit int) ([]StoredProtectionResult, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT result_id, cycle_number, result_timestamp, wallet, protocol, action,
		       success, dry_run, amount_usd, previous_hf, new_hf,
		       tx_signature, error_message, execution_time_ms
		FROM protection_results
		WHERE ($1 = '' OR wallet = $1)
		ORDER BY result_timestamp DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query protection results: %w", err)
	}
	defer rows.Close()

	var results []StoredProtectionResult
	for rows.Next() {
		var r StoredProtectionResult
		if err := rows.Scan(
			&r.ResultID, &r.CycleNumber, &r.Timestamp, &r.Wallet, &r.Protocol, &r.Action,
			&r.Success, &r.DryRun, &r.AmountUSD, &r.PreviousHF, &r.NewHF,
			&r.TxSignature, &r.ErrorMessage, &r.ExecutionTimeMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan protection result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating protection result rows: %w", err)
	}

	return results, nil
}

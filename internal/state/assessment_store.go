// ./internal/state/assessment_store.go
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solvency-labs/sentinel/internal/types"
)

// SaveWalletAssessment persists one wallet-level risk assessment, including
// the per-position breakdown as JSONB.
func SaveWalletAssessment(assessment types.WalletRiskAssessment, cycleNumber int) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	positionsJSON, err := json.Marshal(assessment.Positions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal positions: %w", err)
	}

	factorsJSON, err := json.Marshal(assessment.Factors)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal factors: %w", err)
	}

	recommendationsJSON, err := json.Marshal(assessment.Recommendations)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO wallet_assessments (
			cycle_number, assessment_timestamp, wallet, risk_level, risk_score,
			positions, factors, recommendations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING assessment_id;
	`

	var assessmentID int64
	err = DB.QueryRow(
		query,
		cycleNumber, assessment.Timestamp, assessment.Wallet, assessment.Level.String(), assessment.Score,
		positionsJSON, factorsJSON, recommendationsJSON,
	).Scan(&assessmentID)

	if err != nil {
		return 0, fmt.Errorf("failed to save wallet assessment: %w", err)
	}

	log.Debug().
		Int64("assessment_id", assessmentID).
		Str("wallet", assessment.Wallet).
		Float64("score", assessment.Score).
		Msg("Wallet assessment saved to database")

	return assessmentID, nil
}

// StoredAssessment is one persisted wallet assessment row, with the JSONB
// breakdown left unmarshalled for callers that only need the headline.
type StoredAssessment struct {
	AssessmentID int64
	CycleNumber  int
	Timestamp    time.Time
	Wallet       string
	Level        string
	Score        float64
}

// GetRecentWalletAssessments returns up to limit assessments for a wallet,
// newest first.
func GetRecentWalletAssessments(wallet string, limit int) ([]StoredAssessment, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT assessment_id, cycle_number, assessment_timestamp, wallet, risk_level, risk_score
		FROM wallet_assessments
		WHERE wallet = $1
		ORDER BY assessment_timestamp DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet assessments: %w", err)
	}
	defer rows.Close()

	var results []StoredAssessment
	for rows.Next() {
		var a StoredAssessment
		if err := rows.Scan(&a.AssessmentID, &a.CycleNumber, &a.Timestamp, &a.Wallet, &a.Level, &a.Score); err != nil {
			return nil, fmt.Errorf("failed to scan wallet assessment row: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet assessment rows: %w", err)
	}

	return results, nil
}

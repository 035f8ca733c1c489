package state

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/solvency-labs/sentinel/internal/types"
)

func sampleWalletAssessment() types.WalletRiskAssessment {
	return types.WalletRiskAssessment{
		Wallet: "walletA",
		Level:  types.RiskHigh,
		Score:  63.2,
		Positions: []types.RiskAssessment{
			{
				Wallet:   "walletA",
				Protocol: types.ProtocolSolend,
				Level:    types.RiskHigh,
				Score:    63.2,
				Factors: []types.RiskFactor{
					{Name: "health_factor", Score: 84.2, Weight: 0.45},
				},
			},
		},
		Recommendations: []types.ProtectionRecommendation{
			{Action: types.ActionRepay, Urgency: types.UrgencyHigh, AmountUSD: 2180},
		},
		Timestamp: time.Now(),
	}
}

func TestSaveWalletAssessment(t *testing.T) {
	mock := useMockDB(t)

	mock.ExpectQuery("INSERT INTO wallet_assessments").
		WillReturnRows(sqlmock.NewRows([]string{"assessment_id"}).AddRow(int64(21)))

	id, err := SaveWalletAssessment(sampleWalletAssessment(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 21 {
		t.Errorf("expected assessment_id 21, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveWalletAssessmentNilDB(t *testing.T) {
	previous := DB
	DB = nil
	defer func() { DB = previous }()

	if _, err := SaveWalletAssessment(sampleWalletAssessment(), 1); err == nil {
		t.Fatal("expected error with nil DB")
	}
}

func TestGetRecentWalletAssessments(t *testing.T) {
	mock := useMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"assessment_id", "cycle_number", "assessment_timestamp", "wallet", "risk_level", "risk_score",
	}).
		AddRow(int64(2), 5, now, "walletA", "high", 63.2).
		AddRow(int64(1), 4, now.Add(-time.Minute), "walletA", "medium", 45.0)

	mock.ExpectQuery("SELECT (.+) FROM wallet_assessments").
		WithArgs("walletA", 10).
		WillReturnRows(rows)

	assessments, err := GetRecentWalletAssessments("walletA", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assessments) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(assessments))
	}
	if assessments[0].Level != "high" {
		t.Errorf("expected newest level high, got %s", assessments[0].Level)
	}
	if assessments[1].Score != 45.0 {
		t.Errorf("expected score 45.0, got %f", assessments[1].Score)
	}
}

/*

This file contains the types produced by the risk engine: graded risk levels,
weighted factors, and the assessment values handed to the protection engine.

*/

package types

import (
	"time"
)

// RiskLevel is the ordinal risk grade of a position or wallet.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the lowercase name used in logs and persisted rows.
func (l RiskLevel) String() string {
	switch l {
	case RiskSafe:
		return "safe"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// RiskLevelForScore maps a composite 0-100 score onto the ordinal level.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	case score >= 20:
		return RiskLow
	default:
		return RiskSafe
	}
}

// RiskFactor is one independent contributor to the composite score.
// Score is 0-100, Weight is 0-1; the composite is the weight-normalized sum
// of all present factors.
type RiskFactor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// ProtectionAction is the kind of remediation an option or recommendation
// describes.
type ProtectionAction string

const (
	ActionNone          ProtectionAction = "none"
	ActionRepay         ProtectionAction = "repay"
	ActionAddCollateral ProtectionAction = "add_collateral"
	ActionUnwind        ProtectionAction = "unwind"
)

// Urgency grades how soon a recommendation should be acted on.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyLow
	UrgencyMedium
	UrgencyHigh
	UrgencyImmediate
)

// String returns the lowercase name used in logs and persisted rows.
func (u Urgency) String() string {
	switch u {
	case UrgencyNone:
		return "none"
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ProtectionRecommendation is an advisory action emitted by the risk engine.
// AmountUSD is zero when the engine suggests an action without sizing it.
type ProtectionRecommendation struct {
	Action    ProtectionAction `json:"action"`
	Urgency   Urgency          `json:"urgency"`
	AmountUSD float64          `json:"amount_usd,omitempty"`
	Reason    string           `json:"reason"`
}

// RiskAssessment is the result of evaluating one position. Assessments are
// immutable once produced; a re-evaluation yields a new value.
type RiskAssessment struct {
	Wallet          string                     `json:"wallet"`
	Protocol        Protocol                   `json:"protocol"`
	Level           RiskLevel                  `json:"level"`
	Score           float64                    `json:"score"`
	Factors         []RiskFactor               `json:"factors"`
	Recommendations []ProtectionRecommendation `json:"recommendations"`
	// EstimatedMinutesToLiquidation is set only when the trend factor
	// detects a free fall on a position still above HF 1.0.
	EstimatedMinutesToLiquidation float64   `json:"estimated_minutes_to_liquidation,omitempty"`
	Timestamp                     time.Time `json:"timestamp"`
}

// WalletRiskAssessment aggregates all of one wallet's positions across
// protocols. A single bad position dominates the overall score.
type WalletRiskAssessment struct {
	Wallet          string                     `json:"wallet"`
	Level           RiskLevel                  `json:"level"`
	Score           float64                    `json:"score"`
	Positions       []RiskAssessment           `json:"positions"`
	Factors         []RiskFactor               `json:"factors,omitempty"`
	Recommendations []ProtectionRecommendation `json:"recommendations"`
	Timestamp       time.Time                  `json:"timestamp"`
}

package executor

import (
	"context"

	"github.com/solvency-labs/sentinel/internal/types"
)

// Executor realizes a selected protection option as an on-chain action.
// This interface abstracts away the transaction construction and submission
// details, allowing for different implementations (live chain adapter,
// no-op, test doubles).
//
// Implementations own their own timeout/retry policy; Execute must honor
// ctx cancellation and return rather than block indefinitely.
type Executor interface {
	// Execute submits the option for the position and returns a transaction
	// signature on success. Any failure is returned as an error; the
	// protection engine converts it into a failed ProtectionResult.
	Execute(ctx context.Context, position types.LendingPosition, option types.ProtectionOption) (string, error)
}

// Noop is an executor that confirms without doing anything. Useful for
// wiring dry-run deployments where no live adapter is configured.
type Noop struct{}

// Execute reports a synthetic signature and never fails.
func (Noop) Execute(_ context.Context, _ types.LendingPosition, _ types.ProtectionOption) (string, error) {
	return "noop", nil
}

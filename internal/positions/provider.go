package positions

import (
	"context"
	"errors"

	"github.com/solvency-labs/sentinel/internal/types"
)

// ErrNoPosition is returned when a wallet has no position on the requested
// protocol. Callers treat it as a normal outcome, not a failure.
var ErrNoPosition = errors.New("no position found")

// Provider supplies lending position snapshots. This interface abstracts
// away on-chain account retrieval; implementations may read from a chain
// adapter, a cache, or a fixture file.
type Provider interface {
	// FetchPosition returns the wallet's position on the protocol, or
	// ErrNoPosition when there is none.
	FetchPosition(ctx context.Context, wallet string, protocol types.Protocol) (*types.LendingPosition, error)

	// FetchWalletPositions returns every position the wallet holds across
	// the protocols this provider knows about. An empty slice is a normal
	// outcome.
	FetchWalletPositions(ctx context.Context, wallet string) ([]types.LendingPosition, error)
}

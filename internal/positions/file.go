package positions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/solvency-labs/sentinel/internal/logger"
	"github.com/solvency-labs/sentinel/internal/types"
)

// FileProvider serves position snapshots from a JSON watchlist file. It
// exists for dry-run operation and local testing; a live deployment swaps
// in a chain-backed provider behind the same interface.
type FileProvider struct {
	logger zerolog.Logger
	path   string

	mu        sync.Mutex
	positions []types.LendingPosition
}

// NewFileProvider creates a provider reading from the given JSON file. The
// file holds an array of LendingPosition objects and is re-read lazily via
// Reload.
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{
		logger: logger.GetForComponent("file_provider"),
		path:   path,
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the watchlist file.
func (p *FileProvider) Reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read watchlist %s: %w", p.path, err)
	}

	var positions []types.LendingPosition
	if err := json.Unmarshal(data, &positions); err != nil {
		return fmt.Errorf("failed to parse watchlist %s: %w", p.path, err)
	}

	p.mu.Lock()
	p.positions = positions
	p.mu.Unlock()

	p.logger.Info().Int("positions", len(positions)).Str("path", p.path).Msg("Watchlist loaded")
	return nil
}

// Wallets returns the distinct wallets present in the watchlist.
func (p *FileProvider) Wallets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{})
	wallets := make([]string, 0)
	for _, pos := range p.positions {
		if _, dup := seen[pos.Wallet]; dup {
			continue
		}
		seen[pos.Wallet] = struct{}{}
		wallets = append(wallets, pos.Wallet)
	}
	return wallets
}

// FetchPosition returns the wallet's position on the protocol, or
// ErrNoPosition when the watchlist holds none.
func (p *FileProvider) FetchPosition(_ context.Context, wallet string, protocol types.Protocol) (*types.LendingPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pos := range p.positions {
		if pos.Wallet == wallet && pos.Protocol == protocol {
			found := pos
			return &found, nil
		}
	}
	return nil, ErrNoPosition
}

// FetchWalletPositions returns every watchlist position owned by the wallet.
func (p *FileProvider) FetchWalletPositions(_ context.Context, wallet string) ([]types.LendingPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]types.LendingPosition, 0)
	for _, pos := range p.positions {
		if pos.Wallet == wallet {
			out = append(out, pos)
		}
	}
	return out, nil
}

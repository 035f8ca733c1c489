package risk

import (
	"sync"

	"github.com/solvency-labs/sentinel/internal/types"
)

// HistoryStore owns the per-(wallet, protocol) health snapshot buffers. Each
// key has an independent bounded buffer guarded by its own lock, so parallel
// evaluation of different wallets never contends; concurrent evaluation of
// the same key serializes on the key's buffer.
//
// The buffer keeps at most 2x the configured window and trims back to
// exactly the window on overflow.
type HistoryStore struct {
	mu      sync.RWMutex
	window  int
	buffers map[types.PositionKey]*historyBuffer
}

type historyBuffer struct {
	mu        sync.Mutex
	snapshots []types.HealthSnapshot
}

// NewHistoryStore creates a history store keeping windowSize samples per key.
func NewHistoryStore(windowSize int) *HistoryStore {
	if windowSize < 1 {
		windowSize = 1
	}
	return &HistoryStore{
		window:  windowSize,
		buffers: make(map[types.PositionKey]*historyBuffer),
	}
}

// SetWindow updates the per-key sample window. Existing snapshots are kept;
// an oversized buffer shrinks on its next overflow trim.
func (h *HistoryStore) SetWindow(windowSize int) {
	if windowSize < 1 {
		windowSize = 1
	}
	h.mu.Lock()
	h.window = windowSize
	h.mu.Unlock()
}

// Record appends a snapshot for the key, trimming the buffer to the window
// when it exceeds twice the window.
func (h *HistoryStore) Record(key types.PositionKey, snapshot types.HealthSnapshot) {
	buf := h.buffer(key)

	h.mu.RLock()
	window := h.window
	h.mu.RUnlock()

	buf.mu.Lock()
	defer buf.mu.Unlock()

	buf.snapshots = append(buf.snapshots, snapshot)
	if len(buf.snapshots) > 2*window {
		trimmed := make([]types.HealthSnapshot, window)
		copy(trimmed, buf.snapshots[len(buf.snapshots)-window:])
		buf.snapshots = trimmed
	}
}

// Snapshots returns a copy of the key's recorded snapshots, oldest first.
func (h *HistoryStore) Snapshots(key types.PositionKey) []types.HealthSnapshot {
	h.mu.RLock()
	buf, ok := h.buffers[key]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	buf.mu.Lock()
	defer buf.mu.Unlock()

	out := make([]types.HealthSnapshot, len(buf.snapshots))
	copy(out, buf.snapshots)
	return out
}

// Window returns up to n of the key's most recent snapshots, oldest first.
func (h *HistoryStore) Window(key types.PositionKey, n int) []types.HealthSnapshot {
	all := h.Snapshots(key)
	if n <= 0 || len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// ClearWallet removes every buffer belonging to the wallet.
func (h *HistoryStore) ClearWallet(wallet string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.buffers {
		if key.Wallet == wallet {
			delete(h.buffers, key)
		}
	}
}

// ClearAll removes all buffers.
func (h *HistoryStore) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffers = make(map[types.PositionKey]*historyBuffer)
}

func (h *HistoryStore) buffer(key types.PositionKey) *historyBuffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, ok := h.buffers[key]
	if !ok {
		buf = &historyBuffer{}
		h.buffers[key] = buf
	}
	return buf
}

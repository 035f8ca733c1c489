package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solvency-labs/sentinel/internal/types"
)

func TestHistoryStoreRecordAndWindow(t *testing.T) {
	store := NewHistoryStore(5)
	key := types.PositionKey{Wallet: "walletA", Protocol: types.ProtocolSolend}
	base := time.Now()

	for i := 0; i < 4; i++ {
		store.Record(key, types.HealthSnapshot{HealthFactor: 1.5 - float64(i)*0.1, Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	all := store.Snapshots(key)
	assert.Len(t, all, 4)
	assert.Equal(t, 1.5, all[0].HealthFactor)
	assert.InDelta(t, 1.2, all[3].HealthFactor, 1e-9)

	window := store.Window(key, 2)
	assert.Len(t, window, 2)
	assert.InDelta(t, 1.3, window[0].HealthFactor, 1e-9)
	assert.InDelta(t, 1.2, window[1].HealthFactor, 1e-9)
}

func TestHistoryStoreTrimsAtDoubleWindow(t *testing.T) {
	store := NewHistoryStore(3)
	key := types.PositionKey{Wallet: "walletA", Protocol: types.ProtocolSolend}

	for i := 0; i < 7; i++ {
		store.Record(key, types.HealthSnapshot{HealthFactor: float64(i)})
	}

	// 7th insert exceeds 2x window and trims back to the newest 3.
	all := store.Snapshots(key)
	assert.Len(t, all, 3)
	assert.Equal(t, 4.0, all[0].HealthFactor)
	assert.Equal(t, 6.0, all[2].HealthFactor)
}

func TestHistoryStoreUnknownKey(t *testing.T) {
	store := NewHistoryStore(5)
	assert.Empty(t, store.Snapshots(types.PositionKey{Wallet: "nobody", Protocol: types.ProtocolDrift}))
}

func TestHistoryStoreClearWallet(t *testing.T) {
	store := NewHistoryStore(5)
	keyA := types.PositionKey{Wallet: "walletA", Protocol: types.ProtocolSolend}
	keyA2 := types.PositionKey{Wallet: "walletA", Protocol: types.ProtocolDrift}
	keyB := types.PositionKey{Wallet: "walletB", Protocol: types.ProtocolSolend}

	store.Record(keyA, types.HealthSnapshot{HealthFactor: 1.5})
	store.Record(keyA2, types.HealthSnapshot{HealthFactor: 1.4})
	store.Record(keyB, types.HealthSnapshot{HealthFactor: 1.3})

	store.ClearWallet("walletA")

	assert.Empty(t, store.Snapshots(keyA))
	assert.Empty(t, store.Snapshots(keyA2))
	assert.Len(t, store.Snapshots(keyB), 1)
}

func TestHistoryStoreClearAll(t *testing.T) {
	store := NewHistoryStore(5)
	keyA := types.PositionKey{Wallet: "walletA", Protocol: types.ProtocolSolend}
	keyB := types.PositionKey{Wallet: "walletB", Protocol: types.ProtocolSolend}

	store.Record(keyA, types.HealthSnapshot{HealthFactor: 1.5})
	store.Record(keyB, types.HealthSnapshot{HealthFactor: 1.3})

	store.ClearAll()

	assert.Empty(t, store.Snapshots(keyA))
	assert.Empty(t, store.Snapshots(keyB))
}

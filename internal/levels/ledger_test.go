package levels

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory PointsStore recording every save. onSave, when
// set, runs at the start of SavePoints so tests can interleave writes with
// an in-flight save.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string]map[string]int64
	saves   int
	saveErr error
	loadErr error
	onSave  func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]map[string]int64)}
}

func (f *fakeStore) LoadPoints(_ context.Context, guildID string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}

	points := make(map[string]int64, len(f.data[guildID]))
	for id, pts := range f.data[guildID] {
		points[id] = pts
	}
	return points, nil
}

func (f *fakeStore) SavePoints(_ context.Context, guildID string, points map[string]int64) error {
	if f.onSave != nil {
		f.onSave()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}

	saved := make(map[string]int64, len(points))
	for id, pts := range points {
		saved[id] = pts
	}
	f.data[guildID] = saved
	f.saves++
	return nil
}

func (f *fakeStore) saved(guildID, userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[guildID][userID]
}

func TestLedgerIncrement(t *testing.T) {
	tests := []struct {
		name          string
		deltas        []int64
		wantTotal     int64
		wantLeveledUp bool
	}{
		{"single grant below threshold", []int64{5}, 5, false},
		{"crossing the first threshold", []int64{25, 5}, 30, true},
		{"zero delta changes nothing", []int64{0}, 0, false},
		{"decrement goes negative", []int64{-10}, -10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(newFakeStore())

			var total int64
			var leveledUp bool
			for _, d := range tt.deltas {
				total, leveledUp = ledger.Increment("g1", "u1", Fixed(d), 0)
			}

			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantLeveledUp, leveledUp)
			assert.Equal(t, tt.wantTotal, ledger.Points("g1", "u1"))
		})
	}
}

func TestLedgerLoadGuildDoesNotClobber(t *testing.T) {
	store := newFakeStore()
	store.data["g1"] = map[string]int64{"u1": 40}

	ledger := NewLedger(store)
	require.NoError(t, ledger.LoadGuild(context.Background(), "g1"))
	assert.Equal(t, int64(40), ledger.Points("g1", "u1"))

	ledger.Increment("g1", "u1", Fixed(5), 0)

	// A second load must keep the in-memory total, not reread storage.
	require.NoError(t, ledger.LoadGuild(context.Background(), "g1"))
	assert.Equal(t, int64(45), ledger.Points("g1", "u1"))
}

func TestLedgerSetPersistsImmediately(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store)

	total, leveledUp, err := ledger.Set(context.Background(), "g1", "u1", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
	assert.True(t, leveledUp)
	assert.Equal(t, int64(50), store.saved("g1", "u1"))

	// Lowering the total is not a level-up.
	_, leveledUp, err = ledger.Set(context.Background(), "g1", "u1", 10, 0)
	require.NoError(t, err)
	assert.False(t, leveledUp)
}

func TestLedgerSetKeepsMemoryOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("connection refused")
	ledger := NewLedger(store)

	_, _, err := ledger.Set(context.Background(), "g1", "u1", 50, 0)
	require.Error(t, err)
	assert.Equal(t, int64(50), ledger.Points("g1", "u1"))

	// The guild stays dirty, so the next flush retries the write.
	store.saveErr = nil
	ledger.Flush(context.Background())
	assert.Equal(t, int64(50), store.saved("g1", "u1"))
}

func TestLedgerFlushOnlyDirtyGuilds(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store)

	ledger.Increment("g1", "u1", Fixed(5), 0)
	ledger.Flush(context.Background())
	assert.Equal(t, int64(5), store.saved("g1", "u1"))
	assert.Equal(t, 1, store.saves)

	// Nothing changed, so a second flush writes nothing.
	ledger.Flush(context.Background())
	assert.Equal(t, 1, store.saves)

	ledger.Increment("g1", "u1", Fixed(3), 0)
	ledger.Flush(context.Background())
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, int64(8), store.saved("g1", "u1"))
}

func TestLedgerFlushKeepsWritesDuringSave(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store)
	ledger.Increment("g1", "u1", Fixed(5), 0)

	// A grant landing while the save is in flight must survive to the
	// next flush.
	store.onSave = func() {
		store.onSave = nil
		ledger.Increment("g1", "u2", Fixed(7), 0)
	}
	ledger.Flush(context.Background())
	assert.Equal(t, int64(5), store.saved("g1", "u1"))
	assert.Equal(t, int64(0), store.saved("g1", "u2"))

	ledger.Flush(context.Background())
	assert.Equal(t, int64(5), store.saved("g1", "u1"))
	assert.Equal(t, int64(7), store.saved("g1", "u2"))
}

func TestLedgerAddPersistsImmediately(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store)

	total, leveledUp, err := ledger.Add(context.Background(), "g1", "u1", Fixed(25), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.False(t, leveledUp)
	assert.Equal(t, int64(25), store.saved("g1", "u1"))

	total, leveledUp, err = ledger.Add(context.Background(), "g1", "u1", Fixed(5), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.True(t, leveledUp)
	assert.Equal(t, int64(30), store.saved("g1", "u1"))
}

func TestLedgerAddKeepsInterleavedGrants(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store)

	// A grant racing the Add's save must not be overwritten or dropped.
	store.onSave = func() {
		store.onSave = nil
		ledger.Increment("g1", "u1", Fixed(3), 0)
	}
	total, _, err := ledger.Add(context.Background(), "g1", "u1", Fixed(10), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	assert.Equal(t, int64(13), ledger.Points("g1", "u1"))

	ledger.Flush(context.Background())
	assert.Equal(t, int64(13), store.saved("g1", "u1"))
}

func TestLedgerAddKeepsMemoryOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("connection refused")
	ledger := NewLedger(store)

	_, _, err := ledger.Add(context.Background(), "g1", "u1", Fixed(50), 0)
	require.Error(t, err)
	assert.Equal(t, int64(50), ledger.Points("g1", "u1"))

	store.saveErr = nil
	ledger.Flush(context.Background())
	assert.Equal(t, int64(50), store.saved("g1", "u1"))
}

func TestLedgerFlushMergesUnloadedGuild(t *testing.T) {
	store := newFakeStore()
	store.data["g1"] = map[string]int64{"u1": 100}
	ledger := NewLedger(store)

	// The guild was never loaded; flushing must fold the stored totals in
	// rather than overwrite the blob with the lone in-memory entry.
	ledger.Increment("g1", "u2", Fixed(7), 0)
	ledger.Flush(context.Background())
	assert.Equal(t, int64(100), store.saved("g1", "u1"))
	assert.Equal(t, int64(7), store.saved("g1", "u2"))
}

func TestLedgerFlushRetriesLoadFailure(t *testing.T) {
	store := newFakeStore()
	store.data["g1"] = map[string]int64{"u1": 100}
	store.loadErr = errors.New("connection refused")
	ledger := NewLedger(store)

	require.Error(t, ledger.LoadGuild(context.Background(), "g1"))
	ledger.Increment("g1", "u2", Fixed(7), 0)

	// While the blob is unreadable nothing may be written over it.
	ledger.Flush(context.Background())
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, int64(100), store.saved("g1", "u1"))

	store.loadErr = nil
	ledger.Flush(context.Background())
	assert.Equal(t, int64(100), store.saved("g1", "u1"))
	assert.Equal(t, int64(7), store.saved("g1", "u2"))
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	ledger := NewLedger(newFakeStore())
	ledger.Increment("g1", "u1", Fixed(5), 0)

	snap := ledger.Snapshot("g1")
	snap["u1"] = 999
	assert.Equal(t, int64(5), ledger.Points("g1", "u1"))
}

func TestAmountRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  int64
		wantErr error
	}{
		{"ascending range", 1, 5, nil},
		{"single-value range", 3, 3, nil},
		{"descending range", 5, 1, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Range(tt.lo, tt.hi)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAmountResolve(t *testing.T) {
	// Fixed amounts never consult the roll.
	got := Fixed(7).resolve(func(lo, hi int64) int64 {
		t.Fatal("fixed amount rolled")
		return 0
	})
	assert.Equal(t, int64(7), got)

	amount, err := Range(1, 5)
	require.NoError(t, err)
	got = amount.resolve(func(lo, hi int64) int64 {
		assert.Equal(t, int64(1), lo)
		assert.Equal(t, int64(5), hi)
		return 4
	})
	assert.Equal(t, int64(4), got)
}

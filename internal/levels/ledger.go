package levels

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Errors for ledger operations.
var (
	// ErrInvalidAmount is returned for a descending roll range.
	ErrInvalidAmount = errors.New("amount range must be ascending")
)

// PointsStore is the durable storage the ledger mirrors itself into.
type PointsStore interface {
	LoadPoints(ctx context.Context, guildID string) (map[string]int64, error)
	SavePoints(ctx context.Context, guildID string, points map[string]int64) error
}

// Amount is either a fixed point delta or an inclusive [Lo, Hi] range that
// resolves to a uniformly random integer when applied.
type Amount struct {
	lo, hi int64
}

// Fixed returns an Amount that always resolves to n.
func Fixed(n int64) Amount {
	return Amount{lo: n, hi: n}
}

// Range returns an Amount resolving to a uniform random integer in [lo, hi].
// A descending range is rejected with ErrInvalidAmount.
func Range(lo, hi int64) (Amount, error) {
	if lo > hi {
		return Amount{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidAmount, lo, hi)
	}
	return Amount{lo: lo, hi: hi}, nil
}

// resolve picks the concrete delta for this application.
func (a Amount) resolve(roll func(lo, hi int64) int64) int64 {
	if a.lo == a.hi {
		return a.lo
	}
	return roll(a.lo, a.hi)
}

// rollRange is the default uniform roll over an inclusive range.
func rollRange(lo, hi int64) int64 {
	return lo + rand.Int63n(hi-lo+1)
}

// guildShard holds one guild's points under its own lock so guilds never
// contend with each other and the flusher never blocks writers for long.
// loaded records whether the stored blob has ever been folded in; an
// unloaded shard must not be written out wholesale or it would wipe totals
// the process never saw.
type guildShard struct {
	mu     sync.RWMutex
	points map[string]int64
	dirty  bool
	loaded bool
}

// Ledger is the in-memory guild → user → points mapping. It is owned
// exclusively by the running process and mirrored to durable storage on a
// fixed interval, plus immediately on administrative Set and Add calls.
type Ledger struct {
	store  PointsStore
	shards sync.Map // map[string]*guildShard
	roll   func(lo, hi int64) int64
}

// NewLedger creates a new Ledger backed by the given store.
func NewLedger(store PointsStore) *Ledger {
	return &Ledger{
		store: store,
		roll:  rollRange,
	}
}

// shard returns the guild's shard, creating an empty one if needed.
func (l *Ledger) shard(guildID string) *guildShard {
	if v, ok := l.shards.Load(guildID); ok {
		return v.(*guildShard)
	}
	v, _ := l.shards.LoadOrStore(guildID, &guildShard{points: make(map[string]int64)})
	return v.(*guildShard)
}

// LoadGuild populates a guild's shard from durable storage. Called when the
// bot becomes aware of a guild; an already-loaded guild is left alone so
// in-memory increments are never clobbered.
func (l *Ledger) LoadGuild(ctx context.Context, guildID string) error {
	s := l.shard(guildID)
	if err := l.ensureLoaded(ctx, guildID, s); err != nil {
		return fmt.Errorf("failed to load points for guild %s: %w", guildID, err)
	}

	s.mu.RLock()
	entries := len(s.points)
	s.mu.RUnlock()
	log.Info().Str("guild_id", guildID).Int("entries", entries).Msg("loaded guild ledger")
	return nil
}

// ensureLoaded folds the stored blob into a shard that has never loaded it,
// keeping any totals already accumulated in memory. Every write-out path
// goes through this first, so a failed startup load can never cause a flush
// to overwrite the durable blob with a partial ledger.
func (l *Ledger) ensureLoaded(ctx context.Context, guildID string, s *guildShard) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	stored, err := l.store.LoadPoints(ctx, guildID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.loaded {
		for id, pts := range stored {
			if _, ok := s.points[id]; !ok {
				s.points[id] = pts
			}
		}
		s.loaded = true
	}
	s.mu.Unlock()
	return nil
}

// Points returns a user's current total. Absent entries are zero.
func (l *Ledger) Points(guildID, userID string) int64 {
	s := l.shard(guildID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[userID]
}

// Snapshot returns a copy of a guild's points mapping.
func (l *Ledger) Snapshot(guildID string) map[string]int64 {
	s := l.shard(guildID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]int64, len(s.points))
	for id, pts := range s.points {
		snap[id] = pts
	}
	return snap
}

// Increment applies an amount to a user's total and reports the new total
// and whether the user's level strictly increased under the guild's curve
// constant k. Decrements and negative levels work symmetrically.
func (l *Ledger) Increment(guildID, userID string, amount Amount, k float64) (newTotal int64, leveledUp bool) {
	delta := amount.resolve(l.roll)

	s := l.shard(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.points[userID]
	after := before + delta
	s.points[userID] = after
	if delta != 0 {
		s.dirty = true
	}

	levelBefore, _ := PointsToLevel(before, k)
	levelAfter, _ := PointsToLevel(after, k)

	log.Debug().
		Str("guild_id", guildID).
		Str("user_id", userID).
		Int64("delta", delta).
		Int64("total", after).
		Msg("incremented points")

	return after, levelAfter > levelBefore
}

// Set replaces a user's total with an absolute value and persists the guild
// immediately through the same path used at startup. Level-up semantics
// match Increment. A persistence failure is returned but the in-memory
// total is already updated and will be retried by the flusher.
func (l *Ledger) Set(ctx context.Context, guildID, userID string, total int64, k float64) (newTotal int64, leveledUp bool, err error) {
	s := l.shard(guildID)

	s.mu.Lock()
	before := s.points[userID]
	s.points[userID] = total
	s.dirty = true
	s.mu.Unlock()

	levelBefore, _ := PointsToLevel(before, k)
	levelAfter, _ := PointsToLevel(total, k)

	if err := l.persist(ctx, guildID, s); err != nil {
		return total, levelAfter > levelBefore, fmt.Errorf("failed to persist points for guild %s: %w", guildID, err)
	}

	return total, levelAfter > levelBefore, nil
}

// Add applies a delta like Increment but persists the guild immediately,
// for administrative adjustments that must be durable. The read-modify-write
// happens under the shard lock, so interleaved grants are never lost.
func (l *Ledger) Add(ctx context.Context, guildID, userID string, amount Amount, k float64) (newTotal int64, leveledUp bool, err error) {
	delta := amount.resolve(l.roll)

	s := l.shard(guildID)

	s.mu.Lock()
	before := s.points[userID]
	after := before + delta
	s.points[userID] = after
	s.dirty = true
	s.mu.Unlock()

	levelBefore, _ := PointsToLevel(before, k)
	levelAfter, _ := PointsToLevel(after, k)

	if err := l.persist(ctx, guildID, s); err != nil {
		return after, levelAfter > levelBefore, fmt.Errorf("failed to persist points for guild %s: %w", guildID, err)
	}

	return after, levelAfter > levelBefore, nil
}

// persist writes a shard through to durable storage. The dirty flag is
// cleared under the write lock before the snapshot is taken, so a write
// landing during the save re-dirties the shard and survives to the next
// flush tick; a failed save re-marks it.
func (l *Ledger) persist(ctx context.Context, guildID string, s *guildShard) error {
	if err := l.ensureLoaded(ctx, guildID, s); err != nil {
		return err
	}

	s.mu.Lock()
	s.dirty = false
	snap := make(map[string]int64, len(s.points))
	for id, pts := range s.points {
		snap[id] = pts
	}
	s.mu.Unlock()

	if err := l.store.SavePoints(ctx, guildID, snap); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Flush writes every dirty guild to durable storage. Failures are logged
// and the guild stays dirty for the next tick; a flush failure is never
// fatal to the process.
func (l *Ledger) Flush(ctx context.Context) {
	l.shards.Range(func(key, value any) bool {
		guildID := key.(string)
		s := value.(*guildShard)

		s.mu.RLock()
		skip := !s.dirty || len(s.points) == 0
		s.mu.RUnlock()
		if skip {
			return true
		}

		if err := l.persist(ctx, guildID, s); err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Msg("failed to flush guild ledger, will retry")
		}
		return true
	})
}

// RunFlusher flushes dirty guilds on the given interval until the context
// is cancelled, then performs one final flush.
func (l *Ledger) RunFlusher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			l.Flush(ctx)
		}
	}
}

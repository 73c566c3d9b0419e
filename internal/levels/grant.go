package levels

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/pkg/lock"
)

const (
	// longMessageBlock is the character block size earning bonus rolls.
	longMessageBlock = 120
	// attachmentBonusMultiplier scales the attachment bonus roll.
	attachmentBonusMultiplier = 1.5
)

// Message is the slice of a platform message event the grant policy needs.
type Message struct {
	GuildID       string
	ChannelID     string
	UserID        string
	Length        int
	HasAttachment bool
}

// GrantResult reports the outcome of one qualifying message.
type GrantResult struct {
	// Granted is the delta actually applied, possibly zero inside a
	// cooldown window.
	Granted  int64
	NewTotal int64
	// LeveledUp is true iff the user's level strictly increased.
	LeveledUp bool
	NewLevel  int
}

// cooldownEntry tracks one user's active cooldown window. Entries are
// process-local and never persisted; absence means no active window.
type cooldownEntry struct {
	last    time.Time
	granted int64
}

// GrantPolicy decides how many points a qualifying message earns: a base
// roll from the guild's range, a bonus roll per full 120-character block
// beyond the first, a 1.5x roll for attachments, all gated by a per-user
// cooldown window.
type GrantPolicy struct {
	ledger *Ledger
	locks  *lock.KeyLock

	mu     sync.Mutex
	recent map[string]cooldownEntry

	now  func() time.Time
	roll func(lo, hi int64) int64
}

// NewGrantPolicy creates a new GrantPolicy over the given ledger.
func NewGrantPolicy(ledger *Ledger, locks *lock.KeyLock) *GrantPolicy {
	return &GrantPolicy{
		ledger: ledger,
		locks:  locks,
		recent: make(map[string]cooldownEntry),
		now:    time.Now,
		roll:   rollRange,
	}
}

// Grant processes one qualifying message under the guild's leveling
// configuration. The read-modify-write on the cooldown entry and the ledger
// is serialized per (guild, user) key, so interleaved events from the same
// user cannot double-grant.
func (p *GrantPolicy) Grant(msg Message, cfg *guildconfig.LevelingConfig) GrantResult {
	if !cfg.Enabled || cfg.ChannelDisabled(msg.ChannelID) {
		return GrantResult{NewTotal: p.ledger.Points(msg.GuildID, msg.UserID)}
	}

	lo, hi := cfg.Range()

	amount := p.roll(lo, hi)

	// One extra roll per full block beyond the first.
	if msg.Length > longMessageBlock {
		for i := 0; i < msg.Length/longMessageBlock-1; i++ {
			amount += p.roll(lo, hi)
		}
	}

	if msg.HasAttachment {
		amount += int64(math.Round(float64(p.roll(lo, hi)) * attachmentBonusMultiplier))
	}

	var res GrantResult
	key := msg.GuildID + ":" + msg.UserID
	p.locks.WithLock(key, func() error {
		grant, ok := p.applyCooldown(key, amount, cfg.Cooldown())
		if !ok {
			res = GrantResult{NewTotal: p.ledger.Points(msg.GuildID, msg.UserID)}
			lvl, _ := PointsToLevel(res.NewTotal, cfg.K)
			res.NewLevel = lvl
			return nil
		}

		newTotal, leveledUp := p.ledger.Increment(msg.GuildID, msg.UserID, Fixed(grant), cfg.K)
		newLevel, _ := PointsToLevel(newTotal, cfg.K)
		res = GrantResult{
			Granted:   grant,
			NewTotal:  newTotal,
			LeveledUp: leveledUp,
			NewLevel:  newLevel,
		}
		return nil
	})

	if res.Granted > 0 {
		log.Debug().
			Str("guild_id", msg.GuildID).
			Str("user_id", msg.UserID).
			Int64("granted", res.Granted).
			Msg("granted message xp")
	}

	return res
}

// applyCooldown reconciles a computed amount against the user's cooldown
// window. Inside the window, a larger amount grants only the positive
// difference and raises the window's recorded grant; an equal or smaller
// amount grants nothing. Outside the window the full amount is granted and
// a new window starts.
func (p *GrantPolicy) applyCooldown(key string, amount int64, cooldown time.Duration) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()

	entry, ok := p.recent[key]
	if ok && now.Sub(entry.last) < cooldown {
		if entry.granted >= amount {
			return 0, false
		}
		diff := amount - entry.granted
		p.recent[key] = cooldownEntry{last: entry.last, granted: entry.granted + diff}
		return diff, true
	}

	p.recent[key] = cooldownEntry{last: now, granted: amount}
	return amount, true
}

// PruneCooldowns drops expired cooldown entries. The map otherwise grows
// with every speaker seen since boot.
func (p *GrantPolicy) PruneCooldowns(maxAge time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-maxAge)
	for key, entry := range p.recent {
		if entry.last.Before(cutoff) {
			delete(p.recent, key)
		}
	}
}

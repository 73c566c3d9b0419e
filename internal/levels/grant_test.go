package levels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/pkg/lock"
)

// newTestPolicy returns a policy with a deterministic clock and roll. The
// returned setters adjust both for the cooldown scenarios.
func newTestPolicy() (p *GrantPolicy, advance func(d time.Duration), setRoll func(n int64)) {
	p = NewGrantPolicy(NewLedger(newFakeStore()), lock.NewKeyLock())

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return current }

	rolled := int64(1)
	p.roll = func(lo, hi int64) int64 { return rolled }

	return p, func(d time.Duration) { current = current.Add(d) }, func(n int64) { rolled = n }
}

func message(length int, attachment bool) Message {
	return Message{
		GuildID:       "g1",
		ChannelID:     "c1",
		UserID:        "u1",
		Length:        length,
		HasAttachment: attachment,
	}
}

func TestGrantMessageLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
		roll   int64
		want   int64
	}{
		{"short message is one roll", 50, 5, 5},
		{"one full block is still one roll", 120, 5, 5},
		{"just past one block earns nothing extra", 121, 5, 5},
		{"two full blocks earn one bonus roll", 240, 5, 10},
		{"five full blocks earn four bonus rolls", 600, 3, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, setRoll := newTestPolicy()
			setRoll(tt.roll)

			res := p.Grant(message(tt.length, false), guildconfig.DefaultLeveling())
			assert.Equal(t, tt.want, res.Granted)
			assert.Equal(t, tt.want, res.NewTotal)
		})
	}
}

func TestGrantAttachmentBonus(t *testing.T) {
	tests := []struct {
		name string
		roll int64
		want int64
	}{
		{"even roll", 4, 10},          // 4 + round(4*1.5)
		{"odd roll rounds up", 5, 13}, // 5 + round(7.5)
		{"roll of one", 1, 3},         // 1 + round(1.5)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, setRoll := newTestPolicy()
			setRoll(tt.roll)

			res := p.Grant(message(50, true), guildconfig.DefaultLeveling())
			assert.Equal(t, tt.want, res.Granted)
		})
	}
}

func TestGrantCooldown(t *testing.T) {
	p, advance, setRoll := newTestPolicy()
	cfg := guildconfig.DefaultLeveling()

	setRoll(5)
	res := p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(5), res.Granted)

	// Inside the window an equal amount grants nothing.
	advance(10 * time.Second)
	res = p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(0), res.Granted)
	assert.Equal(t, int64(5), res.NewTotal)

	// A larger amount grants only the difference.
	setRoll(8)
	res = p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(3), res.Granted)
	assert.Equal(t, int64(8), res.NewTotal)

	// The recorded grant was raised, so repeating grants nothing.
	res = p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(0), res.Granted)

	// A smaller amount inside the window also grants nothing.
	setRoll(2)
	res = p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(0), res.Granted)

	// Past the window the full amount applies and a new window starts.
	advance(21 * time.Second)
	setRoll(4)
	res = p.Grant(message(50, false), cfg)
	assert.Equal(t, int64(4), res.Granted)
	assert.Equal(t, int64(12), res.NewTotal)
}

func TestGrantDisabled(t *testing.T) {
	p, _, setRoll := newTestPolicy()
	setRoll(5)

	t.Run("feature disabled", func(t *testing.T) {
		cfg := guildconfig.DefaultLeveling()
		cfg.Enabled = false
		res := p.Grant(message(50, false), cfg)
		assert.Equal(t, int64(0), res.Granted)
	})

	t.Run("channel disabled", func(t *testing.T) {
		cfg := guildconfig.DefaultLeveling()
		cfg.DisabledChannels = []string{"c1"}
		res := p.Grant(message(50, false), cfg)
		assert.Equal(t, int64(0), res.Granted)
	})
}

func TestGrantLevelUp(t *testing.T) {
	p, advance, setRoll := newTestPolicy()
	cfg := guildconfig.DefaultLeveling()

	setRoll(28)
	res := p.Grant(message(50, false), cfg)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 0, res.NewLevel)

	// The next point crosses the first threshold.
	advance(31 * time.Second)
	setRoll(1)
	res = p.Grant(message(50, false), cfg)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.NewLevel)
}

func TestPruneCooldowns(t *testing.T) {
	p, advance, setRoll := newTestPolicy()
	cfg := guildconfig.DefaultLeveling()

	setRoll(5)
	p.Grant(message(50, false), cfg)
	assert.Len(t, p.recent, 1)

	// Young entries survive.
	p.PruneCooldowns(time.Hour)
	assert.Len(t, p.recent, 1)

	advance(2 * time.Hour)
	p.PruneCooldowns(time.Hour)
	assert.Empty(t, p.recent)
}

package guildconfig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelingConfigRange(t *testing.T) {
	tests := []struct {
		name   string
		stored [2]int64
		wantLo int64
		wantHi int64
	}{
		{"configured range", [2]int64{2, 8}, 2, 8},
		{"unset range falls back", [2]int64{0, 0}, 1, 5},
		{"descending range falls back", [2]int64{9, 3}, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLeveling()
			cfg.PointsRange = tt.stored
			lo, hi := cfg.Range()
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}
}

func TestLevelingConfigCooldown(t *testing.T) {
	cfg := DefaultLeveling()
	assert.Equal(t, 30*time.Second, cfg.Cooldown())

	cfg.MessageCooldownSecs = 5
	assert.Equal(t, 5*time.Second, cfg.Cooldown())

	cfg.MessageCooldownSecs = -1
	assert.Equal(t, 30*time.Second, cfg.Cooldown())
}

func TestLevelingConfigChannelDisabled(t *testing.T) {
	cfg := DefaultLeveling()
	assert.False(t, cfg.ChannelDisabled("c1"))

	cfg.DisabledChannels = []string{"c1", "c2"}
	assert.True(t, cfg.ChannelDisabled("c1"))
	assert.False(t, cfg.ChannelDisabled("c3"))
}

// The stored JSON keys are the persistence contract; existing guild rows
// must keep loading if struct fields are renamed.
func TestLevelingConfigStoredKeys(t *testing.T) {
	data, err := json.Marshal(DefaultLeveling())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"enabled", "k", "points_range", "message_cooldown", "levels", "servershutup", "keys"} {
		assert.Contains(t, raw, key)
	}
}

func TestWelcomeConfigStoredKeys(t *testing.T) {
	data, err := json.Marshal(&WelcomeConfig{
		ChannelID:    "c1",
		JoinMessage:  "hi {mention}",
		LeaveMessage: "bye {username}",
	})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"notifchannel", "joinmsg", "leavemsg"} {
		assert.Contains(t, raw, key)
	}
}

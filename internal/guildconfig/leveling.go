// Package guildconfig provides typed per-guild feature configuration.
// Each feature has a record with named fields and documented defaults,
// persisted as one JSONB guild attribute per feature label.
package guildconfig

import (
	"time"

	"discord-levels-bot/internal/model"
)

// Feature labels, used as the guild attribute keys the records persist under.
const (
	LevelingLabel   = "levels_config"
	WelcomeLabel    = "welcome_config"
	ModerationLabel = "moderation_config"
)

// LevelingConfig configures the XP/leveling feature for one guild.
type LevelingConfig struct {
	// Enabled gates the whole feature. Default true.
	Enabled bool `json:"enabled"`
	// K controls level curve steepness. Zero or negative reads as the
	// default, 5.34.
	K float64 `json:"k"`
	// PointsRange is the inclusive [lo, hi] range one message roll draws
	// from. Default [1, 5].
	PointsRange [2]int64 `json:"points_range"`
	// MessageCooldownSecs is the per-user cooldown window. Default 30.
	MessageCooldownSecs int `json:"message_cooldown"`
	// DisabledChannels lists channel ids where messages never earn XP.
	DisabledChannels []string `json:"disabled_channels"`
	// LevelRoles maps level (>= 2) to the role id rewarded at that level.
	LevelRoles map[int]string `json:"levels"`
	// Colour is the guild's leaderboard theme base. Nil means a random
	// preset is rolled on every render.
	Colour *model.RGB `json:"colour"`
	// ServerShutUp suppresses level-up messages guild-wide. Default false.
	ServerShutUp bool `json:"servershutup"`
	// AlertChannel receives level-up messages. Empty means DM the user.
	AlertChannel string `json:"alert_channel,omitempty"`
	// Messages are the level-up notification templates. Placeholders:
	// {user}, {level}, {guild}, {role}.
	Messages LevelingMessages `json:"keys"`
}

// LevelingMessages holds the notification templates for each situation.
type LevelingMessages struct {
	LevelUp   string `json:"levelup_message"`
	LevelUpDM string `json:"levelup_message_dm"`
	RoleUp    string `json:"roleup_message"`
	RoleUpDM  string `json:"roleup_message_dm"`
}

// DefaultLeveling returns the leveling defaults applied to guilds with no
// stored configuration.
func DefaultLeveling() *LevelingConfig {
	return &LevelingConfig{
		Enabled:             true,
		K:                   0, // curve falls back to its own default
		PointsRange:         [2]int64{1, 5},
		MessageCooldownSecs: 30,
		LevelRoles:          map[int]string{},
		Messages: LevelingMessages{
			LevelUp:   "you reached level {level} in {guild}!",
			LevelUpDM: "you reached level {level} in {guild}!",
			RoleUp:    "you reached level {level} in {guild} and earned the {role} role!",
			RoleUpDM:  "you reached level {level} in {guild} and earned the {role} role!",
		},
	}
}

// Cooldown returns the message cooldown as a duration.
func (c *LevelingConfig) Cooldown() time.Duration {
	if c.MessageCooldownSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.MessageCooldownSecs) * time.Second
}

// Range returns the inclusive roll range, falling back to the default when
// the stored range is degenerate.
func (c *LevelingConfig) Range() (lo, hi int64) {
	lo, hi = c.PointsRange[0], c.PointsRange[1]
	if lo > hi || (lo == 0 && hi == 0) {
		return 1, 5
	}
	return lo, hi
}

// ChannelDisabled reports whether XP gain is disabled in a channel.
func (c *LevelingConfig) ChannelDisabled(channelID string) bool {
	for _, id := range c.DisabledChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

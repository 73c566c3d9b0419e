// Package model defines the shared data records for the leveling bot.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RGB is a colour triple with each channel in [0, 255].
// It marshals as a 3-element JSON array so stored guild attributes stay
// interchangeable with the colour tuples older deployments wrote.
type RGB struct {
	R, G, B int
}

// MarshalJSON encodes the colour as [r, g, b].
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{c.R, c.G, c.B})
}

// UnmarshalJSON decodes a [r, g, b] array.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var arr [3]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("colour must be a 3-element array: %w", err)
	}
	c.R, c.G, c.B = arr[0], arr[1], arr[2]
	return nil
}

// LeaderboardEntry is one user's row in a guild leaderboard projection.
// Entries are recomputed on every request and never cached.
type LeaderboardEntry struct {
	DisplayName  string
	UserName     string
	UserID       string
	Level        int
	TotalPoints  int64
	PointsToNext int64
	// Progress is the fraction of the way from the current level's
	// threshold to the next, in [0, 1].
	Progress float64
	// Theme is the user's personal theme override, nil when unset.
	Theme *RGB
}

// ModerationCase is one recorded moderation action against a guild member.
type ModerationCase struct {
	ID          int64     `db:"id"`
	GuildID     string    `db:"guild_id"`
	UserID      string    `db:"user_id"`
	ModeratorID string    `db:"moderator_id"`
	Action      string    `db:"action"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}

// Moderation actions recorded as cases.
const (
	CaseActionInfraction = "infraction"
	CaseActionWarn       = "warn"
	CaseActionNote       = "note"
)

package levels

import (
	"context"
	"sort"

	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/model"
)

// MaxLeaderboardRows caps the per-column row count of a rendered page.
const MaxLeaderboardRows = 15

// Member is a resolved guild member, as surfaced by the member directory.
type Member struct {
	DisplayName string
	UserName    string
}

// MemberDirectory resolves user ids to live guild members. Users that fail
// to resolve are silently dropped from leaderboards.
type MemberDirectory interface {
	Member(guildID, userID string) (Member, bool)
}

// ThemeSource yields a member's personal theme colour, nil when unset.
type ThemeSource interface {
	MemberColour(ctx context.Context, guildID, userID string) *model.RGB
}

// Builder produces display-ready leaderboard projections of the ledger.
type Builder struct {
	ledger *Ledger
	dir    MemberDirectory
	themes ThemeSource
}

// NewBuilder creates a new leaderboard Builder.
func NewBuilder(ledger *Ledger, dir MemberDirectory, themes ThemeSource) *Builder {
	return &Builder{ledger: ledger, dir: dir, themes: themes}
}

// Build returns the guild's leaderboard sorted by total points descending,
// ties broken by user id ascending. Entries whose user cannot be resolved
// to a live member are skipped. The projection is recomputed from the
// ledger on every call.
func (b *Builder) Build(ctx context.Context, guildID string, cfg *guildconfig.LevelingConfig) []model.LeaderboardEntry {
	points := b.ledger.Snapshot(guildID)

	type row struct {
		userID string
		points int64
	}
	rows := make([]row, 0, len(points))
	for userID, pts := range points {
		rows = append(rows, row{userID: userID, points: pts})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].points != rows[j].points {
			return rows[i].points > rows[j].points
		}
		return rows[i].userID < rows[j].userID
	})

	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		member, ok := b.dir.Member(guildID, r.userID)
		if !ok {
			continue
		}

		level, toNext := PointsToLevel(r.points, cfg.K)

		entries = append(entries, model.LeaderboardEntry{
			DisplayName:  member.DisplayName,
			UserName:     member.UserName,
			UserID:       r.userID,
			Level:        level,
			TotalPoints:  r.points,
			PointsToNext: toNext,
			Progress:     Progress(level, r.points, toNext, cfg.K),
			Theme:        b.themes.MemberColour(ctx, guildID, r.userID),
		})
	}

	return entries
}

// Position returns a user's 1-based rank in the guild leaderboard, or -1
// when the user is absent.
func Position(entries []model.LeaderboardEntry, userID string) int {
	for i, e := range entries {
		if e.UserID == userID {
			return i + 1
		}
	}
	return -1
}

// Paginate slices the leaderboard into a two-column page of up to
// 2*maxRows entries. It returns the page's entries, their absolute indices
// into the full leaderboard, and the total page count. A leaderboard
// shorter than one page is returned whole as page 1 of 1 regardless of the
// requested page; a page past the end yields an empty tail, not an error.
func Paginate(entries []model.LeaderboardEntry, maxRows, page int) ([]model.LeaderboardEntry, []int, int) {
	if maxRows < 1 {
		maxRows = 1
	}
	if maxRows > MaxLeaderboardRows {
		maxRows = MaxLeaderboardRows
	}
	if page < 1 {
		page = 1
	}

	pageSize := maxRows * 2

	if len(entries) < pageSize {
		indices := make([]int, len(entries))
		for i := range indices {
			indices[i] = i
		}
		return entries, indices, 1
	}

	totalPages := (len(entries) + pageSize - 1) / pageSize

	lower := pageSize * (page - 1)
	upper := lower + pageSize
	if lower > len(entries) {
		lower = len(entries)
	}
	if upper > len(entries) {
		upper = len(entries)
	}

	indices := make([]int, 0, upper-lower)
	for i := lower; i < upper; i++ {
		indices = append(indices, i)
	}

	return entries[lower:upper], indices, totalPages
}

package bot

import (
	"github.com/bwmarrin/discordgo"

	"discord-levels-bot/internal/levels"
)

// MemberDirectory resolves guild members through the session's state cache,
// falling back to the REST API on a miss. Implements levels.MemberDirectory.
type MemberDirectory struct {
	session *discordgo.Session
}

// NewMemberDirectory creates a directory over the given session.
func NewMemberDirectory(session *discordgo.Session) *MemberDirectory {
	return &MemberDirectory{session: session}
}

// Member resolves a user id to a live guild member. A user that cannot be
// resolved reports false; leaderboard building skips them silently.
func (d *MemberDirectory) Member(guildID, userID string) (levels.Member, bool) {
	m, err := d.session.State.Member(guildID, userID)
	if err != nil {
		m, err = d.session.GuildMember(guildID, userID)
		if err != nil {
			return levels.Member{}, false
		}
	}

	display := m.Nick
	if display == "" && m.User != nil {
		display = m.User.GlobalName
	}
	username := ""
	if m.User != nil {
		username = m.User.Username
		if display == "" {
			display = username
		}
	}

	return levels.Member{DisplayName: display, UserName: username}, true
}

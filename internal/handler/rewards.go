package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/guildconfig"
)

// Rewards dispatches level-up side effects: role grants and the level-up
// notification, honouring the member and guild suppression flags.
type Rewards struct {
	store *guildconfig.Store
}

// NewRewards creates a new Rewards dispatcher.
func NewRewards(store *guildconfig.Store) *Rewards {
	return &Rewards{store: store}
}

// Dispatch handles one level-up. Every configured level role at or below
// the new level that the member still lacks is granted, then the configured
// message goes to the alert channel or, when none is set, to the user's DMs.
func (r *Rewards) Dispatch(ctx context.Context, s *discordgo.Session, guildID, userID string, level int, cfg *guildconfig.LevelingConfig) {
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
		if err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("level-up for unresolvable member")
			return
		}
	}

	type reward struct {
		level  int
		roleID string
	}
	var toGive []reward
	for lvl := 1; lvl <= level; lvl++ {
		roleID, ok := cfg.LevelRoles[lvl]
		if !ok || hasRole(member, roleID) {
			continue
		}
		toGive = append(toGive, reward{level: lvl, roleID: roleID})
	}
	roleUp := len(toGive) > 0

	gName := guildName(s, guildID)

	var highestRoleName string
	ownerNotified := false
	for _, rw := range toGive {
		if err := s.GuildMemberRoleAdd(guildID, userID, rw.roleID); err != nil {
			log.Warn().Err(err).
				Str("guild_id", guildID).
				Str("user_id", userID).
				Str("role_id", rw.roleID).
				Msg("failed to add level role")
			if !ownerNotified {
				r.notifyOwner(s, guildID, gName)
				ownerNotified = true
			}
			continue
		}
		highestRoleName = roleName(s, guildID, rw.roleID)
		log.Info().Str("guild_id", guildID).Str("user_id", userID).Str("role_id", rw.roleID).Msg("added level role")
	}

	if cfg.ServerShutUp || r.store.MemberShutUp(ctx, guildID, userID) {
		return
	}

	dm := cfg.AlertChannel == ""
	msg := alertMessage(cfg, dm, roleUp, AlertVars{
		UserMention: "<@" + userID + ">",
		Level:       strconv.Itoa(level),
		GuildName:   gName,
		RoleName:    highestRoleName,
	})

	if dm {
		channel, err := s.UserChannelCreate(userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("could not open DM for level-up message")
			return
		}
		if _, err := s.ChannelMessageSend(channel.ID, msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("could not DM level-up message")
		}
		return
	}

	if _, err := s.ChannelMessageSend(cfg.AlertChannel, msg); err != nil {
		log.Warn().Err(err).Str("channel_id", cfg.AlertChannel).Msg("could not send level-up message")
	}
}

// alertMessage assembles the level-up notification text. Channel alerts are
// prefixed with the user's mention so they actually get pinged; DMs already
// land in front of the right person.
func alertMessage(cfg *guildconfig.LevelingConfig, dm, roleUp bool, vars AlertVars) string {
	var template string
	switch {
	case dm && roleUp:
		template = cfg.Messages.RoleUpDM
	case dm:
		template = cfg.Messages.LevelUpDM
	case roleUp:
		template = cfg.Messages.RoleUp
	default:
		template = cfg.Messages.LevelUp
	}

	msg := FormatAlertMessage(template, vars)
	if !dm {
		msg = vars.UserMention + " " + msg
	}
	msg += fmt.Sprintf("\n-# you can toggle these messages with /shut_up in %s", vars.GuildName)
	return msg
}

// notifyOwner tells the guild owner the bot lacks role permissions. Best
// effort; owners with closed DMs just miss it.
func (r *Rewards) notifyOwner(s *discordgo.Session, guildID, gName string) {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild.OwnerID == "" {
		return
	}

	channel, err := s.UserChannelCreate(guild.OwnerID)
	if err != nil {
		return
	}
	msg := fmt.Sprintf(
		"hello! i tried to give a user their level-up role in %s, but i couldn't. "+
			"please check that i have the 'manage roles' permission and that my highest "+
			"role is above the level-up role in the role list.", gName)
	if _, err := s.ChannelMessageSend(channel.ID, msg); err != nil {
		log.Debug().Err(err).Str("guild_id", guildID).Msg("could not notify guild owner")
	}
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func roleName(s *discordgo.Session, guildID, roleID string) string {
	if role, err := s.State.Role(guildID, roleID); err == nil {
		return role.Name
	}
	return roleID
}

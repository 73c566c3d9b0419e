package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/model"
	"discord-levels-bot/internal/repository"
)

// ModerationHandler records moderation cases and owns the moderation
// commands.
type ModerationHandler struct {
	store *guildconfig.Store
	repo  *repository.ModerationRepository
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(store *guildconfig.Store, repo *repository.ModerationRepository) *ModerationHandler {
	return &ModerationHandler{store: store, repo: repo}
}

// Commands returns the moderation slash commands.
func (h *ModerationHandler) Commands() []Command {
	return []Command{
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "infraction",
				Description:              "Record an infraction against a member",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Member the infraction is against",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "What happened",
						Required:    true,
					},
				},
			},
			Handler: h.handleInfraction,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "cases",
				Description:              "List a member's moderation cases",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Member to look up",
						Required:    true,
					},
				},
			},
			Handler: h.handleCases,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_case_log_channel",
				Description:              "Send moderation case notices to a channel",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel for case notices, leave out to disable",
					},
				},
			},
			Handler: h.handleSetLogChannel,
		},
	}
}

func (h *ModerationHandler) handleInfraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options(i)
	user := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	c, err := h.repo.InsertCase(ctx, model.ModerationCase{
		GuildID:     i.GuildID,
		UserID:      user.ID,
		ModeratorID: invokerID(i),
		Action:      model.CaseActionInfraction,
		Reason:      reason,
	})
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", user.ID).Msg("failed to record infraction")
		respondEphemeral(s, i, "something went wrong recording the infraction.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("recorded case #%d against <@%s>.", c.ID, user.ID))

	cfg := h.store.Moderation(ctx, i.GuildID)
	if cfg.LogChannel == "" {
		return
	}
	notice := fmt.Sprintf("case #%d: infraction against <@%s> by <@%s>\nreason: %s",
		c.ID, c.UserID, c.ModeratorID, c.Reason)
	if _, err := s.ChannelMessageSend(cfg.LogChannel, notice); err != nil {
		log.Warn().Err(err).Str("guild_id", i.GuildID).Str("channel_id", cfg.LogChannel).Msg("failed to post case notice")
	}
}

func (h *ModerationHandler) handleCases(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := options(i)["user"].UserValue(s)

	cases, err := h.repo.ListCases(ctx, i.GuildID, user.ID)
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", user.ID).Msg("failed to list cases")
		respondEphemeral(s, i, "something went wrong looking up the cases.")
		return
	}
	if len(cases) == 0 {
		respondEphemeral(s, i, fmt.Sprintf("<@%s> has no recorded cases.", user.ID))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cases for <@%s>:", user.ID)
	for _, c := range cases {
		fmt.Fprintf(&b, "\n#%d [%s] %s: %s", c.ID, c.CreatedAt.Format("2006-01-02"), c.Action, c.Reason)
	}
	respondEphemeral(s, i, b.String())
}

func (h *ModerationHandler) handleSetLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Moderation(ctx, i.GuildID)
	if opt, ok := options(i)["channel"]; ok {
		cfg.LogChannel = opt.ChannelValue(s).ID
	} else {
		cfg.LogChannel = ""
	}

	if err := h.store.SaveModeration(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save case log channel")
		respondEphemeral(s, i, "something went wrong saving the channel.")
		return
	}

	if cfg.LogChannel == "" {
		respond(s, i, "case notices are off.")
	} else {
		respond(s, i, fmt.Sprintf("case notices now go to <#%s>.", cfg.LogChannel))
	}
}

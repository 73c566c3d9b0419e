package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/guildconfig"
)

// WelcomeHandler posts join/leave messages and owns the welcome commands.
type WelcomeHandler struct {
	store *guildconfig.Store
}

// NewWelcomeHandler creates a new WelcomeHandler.
func NewWelcomeHandler(store *guildconfig.Store) *WelcomeHandler {
	return &WelcomeHandler{store: store}
}

// OnMemberAdd posts the guild's join message, if a welcome channel is set.
func (h *WelcomeHandler) OnMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	h.post(s, m.GuildID, m.User, func(cfg *guildconfig.WelcomeConfig) string { return cfg.JoinMessage })
}

// OnMemberRemove posts the guild's leave message, if a welcome channel is
// set.
func (h *WelcomeHandler) OnMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}
	h.post(s, m.GuildID, m.User, func(cfg *guildconfig.WelcomeConfig) string { return cfg.LeaveMessage })
}

func (h *WelcomeHandler) post(s *discordgo.Session, guildID string, user *discordgo.User, pick func(*guildconfig.WelcomeConfig) string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Welcome(ctx, guildID)
	if cfg.ChannelID == "" {
		return
	}
	template := pick(cfg)
	if template == "" {
		return
	}

	display := user.GlobalName
	if display == "" {
		display = user.Username
	}
	msg := FormatMemberMessage(template, MemberVars{
		Mention:     user.Mention(),
		Username:    user.Username,
		DisplayName: display,
		GuildName:   guildName(s, guildID),
	})

	if _, err := s.ChannelMessageSend(cfg.ChannelID, msg); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Str("channel_id", cfg.ChannelID).Msg("failed to send welcome message")
	}
}

// Commands returns the welcome slash commands.
func (h *WelcomeHandler) Commands() []Command {
	return []Command{
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_welcome_channel",
				Description:              "Send join/leave messages to a channel",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel for join/leave messages",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetChannel,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "disable_welcome_channel",
				Description:              "Stop sending join/leave messages",
				DefaultMemberPermissions: &manageChannelsPerm,
			},
			Handler: h.handleDisableChannel,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_join_message",
				Description:              "Set the message posted when a member joins",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "Template, placeholders: {mention} {username} {displayname} {guildname} {br}",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetJoinMessage,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_leave_message",
				Description:              "Set the message posted when a member leaves",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "Template, placeholders: {mention} {username} {displayname} {guildname} {br}",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetLeaveMessage,
		},
	}
}

func (h *WelcomeHandler) handleSetChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel := options(i)["channel"].ChannelValue(s)

	cfg := h.store.Welcome(ctx, i.GuildID)
	cfg.ChannelID = channel.ID
	if err := h.store.SaveWelcome(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save welcome channel")
		respondEphemeral(s, i, "something went wrong saving the channel.")
		return
	}

	respond(s, i, fmt.Sprintf("join/leave messages now go to <#%s>.", channel.ID))
}

func (h *WelcomeHandler) handleDisableChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Welcome(ctx, i.GuildID)
	cfg.ChannelID = ""
	if err := h.store.SaveWelcome(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to disable welcome channel")
		respondEphemeral(s, i, "something went wrong saving the change.")
		return
	}

	respond(s, i, "join/leave messages are off.")
}

func (h *WelcomeHandler) handleSetJoinMessage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Welcome(ctx, i.GuildID)
	cfg.JoinMessage = options(i)["message"].StringValue()
	if err := h.store.SaveWelcome(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save join message")
		respondEphemeral(s, i, "something went wrong saving the message.")
		return
	}

	respond(s, i, "join message updated.")
}

func (h *WelcomeHandler) handleSetLeaveMessage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Welcome(ctx, i.GuildID)
	cfg.LeaveMessage = options(i)["message"].StringValue()
	if err := h.store.SaveWelcome(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save leave message")
		respondEphemeral(s, i, "something went wrong saving the message.")
		return
	}

	respond(s, i, "leave message updated.")
}

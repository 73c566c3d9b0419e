package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/levels"
	"discord-levels-bot/internal/model"
	"discord-levels-bot/internal/render"
)

var (
	manageRolesPerm    int64 = discordgo.PermissionManageRoles
	manageChannelsPerm int64 = discordgo.PermissionManageChannels
)

// leaderboardPageRows is how many entries fit on one rendered leaderboard
// page.
const leaderboardPageRows = 6

// LevelsHandler owns the message-XP pipeline and every leveling slash
// command.
type LevelsHandler struct {
	store    *guildconfig.Store
	ledger   *levels.Ledger
	grant    *levels.GrantPolicy
	builder  *levels.Builder
	renderer *render.Renderer
	rewards  *Rewards
}

// NewLevelsHandler creates a new LevelsHandler.
func NewLevelsHandler(
	store *guildconfig.Store,
	ledger *levels.Ledger,
	grant *levels.GrantPolicy,
	builder *levels.Builder,
	renderer *render.Renderer,
	rewards *Rewards,
) *LevelsHandler {
	return &LevelsHandler{
		store:    store,
		ledger:   ledger,
		grant:    grant,
		builder:  builder,
		renderer: renderer,
		rewards:  rewards,
	}
}

// OnMessage grants XP for qualifying guild messages and dispatches level-up
// rewards.
func (h *LevelsHandler) OnMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Leveling(ctx, m.GuildID)
	res := h.grant.Grant(levels.Message{
		GuildID:       m.GuildID,
		ChannelID:     m.ChannelID,
		UserID:        m.Author.ID,
		Length:        utf8.RuneCountInString(m.Content),
		HasAttachment: len(m.Attachments) > 0,
	}, cfg)

	if res.LeveledUp {
		h.rewards.Dispatch(ctx, s, m.GuildID, m.Author.ID, res.NewLevel, cfg)
	}
}

// Commands returns the leveling slash commands.
func (h *LevelsHandler) Commands() []Command {
	return []Command{
		{
			Command: &discordgo.ApplicationCommand{
				Name:        "leaderboard",
				Description: "Show the server leaderboard",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "page",
						Description: "Leaderboard page to show",
						MinValue:    float64Ptr(1),
					},
				},
			},
			Handler: h.handleLeaderboard,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:        "rank",
				Description: "Show a member's rank card",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Member to look up, defaults to you",
					},
				},
			},
			Handler: h.handleRank,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "add_points",
				Description:              "Add points to a member",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Member to adjust",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "Points to add, may be negative",
						Required:    true,
					},
				},
			},
			Handler: h.handleAddPoints,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_points",
				Description:              "Set a member's points total",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Member to adjust",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "New points total",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetPoints,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_xp_range",
				Description:              "Set the points range rolled per message",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "min",
						Description: "Lower bound of the roll",
						Required:    true,
						MinValue:    float64Ptr(0),
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "max",
						Description: "Upper bound of the roll",
						Required:    true,
						MinValue:    float64Ptr(0),
					},
				},
			},
			Handler: h.handleSetXPRange,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "toggle_xp",
				Description:              "Toggle XP grants in a channel",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to toggle, defaults to this one",
					},
				},
			},
			Handler: h.handleToggleXP,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_level_role",
				Description:              "Grant a role when members reach a level",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "level",
						Description: "Level that earns the role, 2 or higher",
						Required:    true,
						MinValue:    float64Ptr(2),
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role to grant",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetLevelRole,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "unset_level_role",
				Description:              "Stop granting a role for a level",
				DefaultMemberPermissions: &manageRolesPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "level",
						Description: "Level to clear",
						Required:    true,
						MinValue:    float64Ptr(1),
					},
				},
			},
			Handler: h.handleUnsetLevelRole,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:        "roles",
				Description: "List the configured level roles",
			},
			Handler: h.handleRoles,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_levelup_channel",
				Description:              "Send level-up messages to a channel instead of DMs",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Alert channel, pick the current one again to go back to DMs",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetLevelUpChannel,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "set_server_theme",
				Description:              "Set the server's leaderboard colour",
				DefaultMemberPermissions: &manageChannelsPerm,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "colour",
						Description: "Hex colour like #7289da, or 'reset' for random",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetServerTheme,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:        "set_user_theme",
				Description: "Set your personal rank card colour",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "colour",
						Description: "Hex colour like #7289da, or 'reset' to clear",
						Required:    true,
					},
				},
			},
			Handler: h.handleSetUserTheme,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:        "shut_up",
				Description: "Toggle your own level-up messages",
			},
			Handler: h.handleShutUp,
		},
		{
			Command: &discordgo.ApplicationCommand{
				Name:                     "server_shut_up",
				Description:              "Toggle level-up messages for the whole server",
				DefaultMemberPermissions: &manageChannelsPerm,
			},
			Handler: h.handleServerShutUp,
		},
	}
}

func (h *LevelsHandler) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := h.store.Leveling(ctx, i.GuildID)
	entries := h.builder.Build(ctx, i.GuildID, cfg)
	if len(entries) == 0 {
		respondEphemeral(s, i, "no one has earned any points here yet.")
		return
	}

	page := 1
	if opt, ok := options(i)["page"]; ok {
		page = int(opt.IntValue())
	}

	if err := deferResponse(s, i); err != nil {
		log.Warn().Err(err).Msg("failed to defer leaderboard response")
		return
	}

	path, err := h.renderer.Leaderboard(ctx, h.guildInfo(s, i.GuildID), entries, leaderboardPageRows, page, cfg.Colour)
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to render leaderboard")
		followUp(s, i, "something went wrong rendering the leaderboard.")
		return
	}
	defer os.Remove(path)

	if err := followUpFile(s, i, path, "leaderboard.png"); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to upload leaderboard")
	}
}

func (h *LevelsHandler) handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	targetID := invokerID(i)
	if opt, ok := options(i)["user"]; ok {
		targetID = opt.UserValue(s).ID
	}

	cfg := h.store.Leveling(ctx, i.GuildID)
	entries := h.builder.Build(ctx, i.GuildID, cfg)
	if levels.Position(entries, targetID) == -1 {
		respondEphemeral(s, i, fmt.Sprintf("<@%s> is not on the leaderboard yet.", targetID))
		return
	}

	if err := deferResponse(s, i); err != nil {
		log.Warn().Err(err).Msg("failed to defer rank response")
		return
	}

	path, err := h.renderer.RankCard(ctx, h.guildInfo(s, i.GuildID), entries, targetID, cfg.Colour)
	if err != nil {
		if errors.Is(err, render.ErrUserNotRanked) {
			followUp(s, i, fmt.Sprintf("<@%s> is not on the leaderboard yet.", targetID))
			return
		}
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", targetID).Msg("failed to render rank card")
		followUp(s, i, "something went wrong rendering the rank card.")
		return
	}
	defer os.Remove(path)

	if err := followUpFile(s, i, path, "rank_card.png"); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to upload rank card")
	}
}

func (h *LevelsHandler) handleAddPoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options(i)
	user := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	cfg := h.store.Leveling(ctx, i.GuildID)
	newTotal, leveledUp, err := h.ledger.Add(ctx, i.GuildID, user.ID, levels.Fixed(amount), cfg.K)
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", user.ID).Msg("failed to add points")
		respondEphemeral(s, i, "something went wrong saving the points.")
		return
	}

	respond(s, i, fmt.Sprintf("<@%s> now has %d points.", user.ID, newTotal))

	if leveledUp {
		newLevel, _ := levels.PointsToLevel(newTotal, cfg.K)
		h.rewards.Dispatch(ctx, s, i.GuildID, user.ID, newLevel, cfg)
	}
}

func (h *LevelsHandler) handleSetPoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options(i)
	user := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	cfg := h.store.Leveling(ctx, i.GuildID)
	newTotal, leveledUp, err := h.ledger.Set(ctx, i.GuildID, user.ID, amount, cfg.K)
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", user.ID).Msg("failed to set points")
		respondEphemeral(s, i, "something went wrong saving the points.")
		return
	}

	respond(s, i, fmt.Sprintf("<@%s> now has %d points.", user.ID, newTotal))

	if leveledUp {
		newLevel, _ := levels.PointsToLevel(newTotal, cfg.K)
		h.rewards.Dispatch(ctx, s, i.GuildID, user.ID, newLevel, cfg)
	}
}

func (h *LevelsHandler) handleSetXPRange(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options(i)
	lo := opts["min"].IntValue()
	hi := opts["max"].IntValue()
	if lo < 0 || lo > hi {
		respondEphemeral(s, i, "the range must satisfy 0 <= min <= max.")
		return
	}

	cfg := h.store.Leveling(ctx, i.GuildID)
	cfg.PointsRange = [2]int64{lo, hi}
	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save xp range")
		respondEphemeral(s, i, "something went wrong saving the range.")
		return
	}

	respond(s, i, fmt.Sprintf("messages now earn between %d and %d points.", lo, hi))
}

func (h *LevelsHandler) handleToggleXP(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID := i.ChannelID
	if opt, ok := options(i)["channel"]; ok {
		channelID = opt.ChannelValue(s).ID
	}

	cfg := h.store.Leveling(ctx, i.GuildID)
	if cfg.ChannelDisabled(channelID) {
		kept := cfg.DisabledChannels[:0]
		for _, id := range cfg.DisabledChannels {
			if id != channelID {
				kept = append(kept, id)
			}
		}
		cfg.DisabledChannels = kept
	} else {
		cfg.DisabledChannels = append(cfg.DisabledChannels, channelID)
	}

	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save channel toggle")
		respondEphemeral(s, i, "something went wrong saving the toggle.")
		return
	}

	if cfg.ChannelDisabled(channelID) {
		respond(s, i, fmt.Sprintf("messages in <#%s> no longer earn points.", channelID))
	} else {
		respond(s, i, fmt.Sprintf("messages in <#%s> earn points again.", channelID))
	}
}

func (h *LevelsHandler) handleSetLevelRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options(i)
	level := int(opts["level"].IntValue())
	role := opts["role"].RoleValue(s, i.GuildID)
	if level < 2 {
		respondEphemeral(s, i, "level roles start at level 2.")
		return
	}

	cfg := h.store.Leveling(ctx, i.GuildID)
	for lvl, roleID := range cfg.LevelRoles {
		if roleID == role.ID && lvl != level {
			respondEphemeral(s, i, fmt.Sprintf("that role is already granted at level %d.", lvl))
			return
		}
	}

	if cfg.LevelRoles == nil {
		cfg.LevelRoles = make(map[int]string)
	}
	cfg.LevelRoles[level] = role.ID

	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save level role")
		respondEphemeral(s, i, "something went wrong saving the role.")
		return
	}

	respond(s, i, fmt.Sprintf("members reaching level %d now get <@&%s>.", level, role.ID))
}

func (h *LevelsHandler) handleUnsetLevelRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	level := int(options(i)["level"].IntValue())

	cfg := h.store.Leveling(ctx, i.GuildID)
	if _, ok := cfg.LevelRoles[level]; !ok {
		respondEphemeral(s, i, fmt.Sprintf("level %d has no role configured.", level))
		return
	}
	delete(cfg.LevelRoles, level)

	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to remove level role")
		respondEphemeral(s, i, "something went wrong saving the change.")
		return
	}

	respond(s, i, fmt.Sprintf("level %d no longer grants a role.", level))
}

func (h *LevelsHandler) handleRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Leveling(ctx, i.GuildID)
	if len(cfg.LevelRoles) == 0 {
		respondEphemeral(s, i, "no level roles are configured. an admin can add one with /set_level_role.")
		return
	}

	lvls := make([]int, 0, len(cfg.LevelRoles))
	for lvl := range cfg.LevelRoles {
		lvls = append(lvls, lvl)
	}
	sort.Ints(lvls)

	msg := "level roles:"
	for _, lvl := range lvls {
		msg += fmt.Sprintf("\nlevel %d: <@&%s>", lvl, cfg.LevelRoles[lvl])
	}
	respond(s, i, msg)
}

func (h *LevelsHandler) handleSetLevelUpChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel := options(i)["channel"].ChannelValue(s)

	cfg := h.store.Leveling(ctx, i.GuildID)
	if cfg.AlertChannel == channel.ID {
		// Picking the active channel again switches back to DMs.
		cfg.AlertChannel = ""
	} else {
		cfg.AlertChannel = channel.ID
	}

	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save alert channel")
		respondEphemeral(s, i, "something went wrong saving the channel.")
		return
	}

	if cfg.AlertChannel == "" {
		respond(s, i, "level-up messages go to DMs again.")
	} else {
		respond(s, i, fmt.Sprintf("level-up messages now go to <#%s>.", cfg.AlertChannel))
	}
}

func (h *LevelsHandler) handleSetServerTheme(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	colour, reset, err := parseColourOption(options(i)["colour"].StringValue())
	if err != nil {
		respondEphemeral(s, i, "that doesn't look like a colour. use a hex code like #7289da, or 'reset'.")
		return
	}

	cfg := h.store.Leveling(ctx, i.GuildID)
	if reset {
		cfg.Colour = nil
	} else {
		cfg.Colour = colour
	}

	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save server theme")
		respondEphemeral(s, i, "something went wrong saving the theme.")
		return
	}

	if reset {
		respond(s, i, "server theme reset, each leaderboard gets a random colour.")
	} else {
		respond(s, i, fmt.Sprintf("server theme set to rgb(%d, %d, %d).", colour.R, colour.G, colour.B))
	}
}

func (h *LevelsHandler) handleSetUserTheme(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	colour, reset, err := parseColourOption(options(i)["colour"].StringValue())
	if err != nil {
		respondEphemeral(s, i, "that doesn't look like a colour. use a hex code like #7289da, or 'reset'.")
		return
	}

	if reset {
		colour = nil
	}
	if err := h.store.SetMemberColour(ctx, i.GuildID, invokerID(i), colour); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save user theme")
		respondEphemeral(s, i, "something went wrong saving your theme.")
		return
	}

	if reset {
		respondEphemeral(s, i, "your theme is cleared, your rank card follows the server theme.")
	} else {
		respondEphemeral(s, i, fmt.Sprintf("your theme is now rgb(%d, %d, %d).", colour.R, colour.G, colour.B))
	}
}

func (h *LevelsHandler) handleShutUp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID := invokerID(i)
	muted := !h.store.MemberShutUp(ctx, i.GuildID, userID)
	if err := h.store.SetMemberShutUp(ctx, i.GuildID, userID, muted); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Str("user_id", userID).Msg("failed to toggle shut up")
		respondEphemeral(s, i, "something went wrong saving the toggle.")
		return
	}

	if muted {
		respondEphemeral(s, i, "okay, no more level-up messages for you here.")
	} else {
		respondEphemeral(s, i, "level-up messages are back on for you.")
	}
}

func (h *LevelsHandler) handleServerShutUp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := h.store.Leveling(ctx, i.GuildID)
	cfg.ServerShutUp = !cfg.ServerShutUp
	if err := h.store.SaveLeveling(ctx, i.GuildID, cfg); err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to toggle server shut up")
		respondEphemeral(s, i, "something went wrong saving the toggle.")
		return
	}

	if cfg.ServerShutUp {
		respond(s, i, "level-up messages are off for the whole server.")
	} else {
		respond(s, i, "level-up messages are back on for the server.")
	}
}

// guildInfo assembles the rendering header for a guild: name plus icon
// bytes. A missing or unfetchable icon just renders without one.
func (h *LevelsHandler) guildInfo(s *discordgo.Session, guildID string) render.Guild {
	info := render.Guild{ID: guildID, Name: guildName(s, guildID)}

	guild, err := s.State.Guild(guildID)
	if err != nil || guild.Icon == "" {
		return info
	}

	resp, err := http.Get(discordgo.EndpointGuildIcon(guildID, guild.Icon))
	if err != nil {
		log.Debug().Err(err).Str("guild_id", guildID).Msg("failed to fetch guild icon")
		return info
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return info
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return info
	}
	info.Icon = data
	return info
}

// parseColourOption interprets a colour argument, with "reset" clearing the
// stored value.
func parseColourOption(raw string) (*model.RGB, bool, error) {
	if raw == "reset" {
		return nil, true, nil
	}
	rgb, err := render.ParseHex(raw)
	if err != nil {
		return nil, false, err
	}
	return &rgb, false, nil
}

func float64Ptr(v float64) *float64 {
	return &v
}

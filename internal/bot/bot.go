// Package bot wires the Discord session to the leveling, welcome and
// moderation handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/config"
	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/handler"
	"discord-levels-bot/internal/levels"
	"discord-levels-bot/internal/render"
	"discord-levels-bot/internal/repository"
)

// Dependencies holds the services the bot handlers need.
type Dependencies struct {
	Config     *config.Config
	Store      *guildconfig.Store
	Ledger     *levels.Ledger
	Grant      *levels.GrantPolicy
	Renderer   *render.Renderer
	Moderation *repository.ModerationRepository
}

// Bot wraps the discordgo session with application dependencies.
type Bot struct {
	session  *discordgo.Session
	cfg      *config.Config
	registry *CommandRegistry

	ledger *levels.Ledger
	store  *guildconfig.Store

	levelsHandler     *handler.LevelsHandler
	welcomeHandler    *handler.WelcomeHandler
	moderationHandler *handler.ModerationHandler
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	session, err := discordgo.New("Bot " + deps.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	session.StateEnabled = true

	builder := levels.NewBuilder(deps.Ledger, NewMemberDirectory(session), deps.Store)
	rewards := handler.NewRewards(deps.Store)

	b := &Bot{
		session:  session,
		cfg:      deps.Config,
		registry: NewCommandRegistry(),
		ledger:   deps.Ledger,
		store:    deps.Store,

		levelsHandler:     handler.NewLevelsHandler(deps.Store, deps.Ledger, deps.Grant, builder, deps.Renderer, rewards),
		welcomeHandler:    handler.NewWelcomeHandler(deps.Store),
		moderationHandler: handler.NewModerationHandler(deps.Store, deps.Moderation),
	}

	b.registerCommands()
	b.registerEvents()

	return b, nil
}

// registerCommands binds every slash command to its handler.
func (b *Bot) registerCommands() {
	for _, c := range b.levelsHandler.Commands() {
		b.registry.Register(c.Command, c.Handler)
	}
	for _, c := range b.welcomeHandler.Commands() {
		b.registry.Register(c.Command, c.Handler)
	}
	for _, c := range b.moderationHandler.Commands() {
		b.registry.Register(c.Command, c.Handler)
	}
}

// registerEvents attaches the gateway event handlers. discordgo dispatches
// each event on its own goroutine, so handlers only need to be safe for
// concurrent use, not fast.
func (b *Bot) registerEvents() {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("gateway ready")
	})

	b.session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if err := b.ledger.LoadGuild(context.Background(), g.ID); err != nil {
			log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to load guild ledger")
		}
	})

	b.session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		b.store.Forget(g.ID)
	})

	b.session.AddHandler(b.levelsHandler.OnMessage)
	b.session.AddHandler(b.welcomeHandler.OnMemberAdd)
	b.session.AddHandler(b.welcomeHandler.OnMemberRemove)

	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand {
			b.registry.Handle(s, i)
		}
	})
}

// Start opens the gateway connection and syncs slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	appID := b.cfg.Bot.AppID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	if err := b.registry.Sync(b.session, appID, b.cfg.Bot.GuildID); err != nil {
		return fmt.Errorf("failed to sync commands: %w", err)
	}

	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing gateway connection")
	}
}

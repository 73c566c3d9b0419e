package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// CommandHandler handles one slash-command interaction.
type CommandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// CommandRegistry holds the registered slash commands and their handlers.
type CommandRegistry struct {
	Commands map[string]*discordgo.ApplicationCommand
	Handlers map[string]CommandHandler
}

// NewCommandRegistry creates a new registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		Commands: make(map[string]*discordgo.ApplicationCommand),
		Handlers: make(map[string]CommandHandler),
	}
}

// Register adds a command to the registry.
func (r *CommandRegistry) Register(cmd *discordgo.ApplicationCommand, handler CommandHandler) {
	r.Commands[cmd.Name] = cmd
	r.Handlers[cmd.Name] = handler
}

// Handle dispatches an interaction to its registered handler. Unknown
// commands are logged and dropped; a failed handler must not take the
// process down with it.
func (r *CommandRegistry) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	h, ok := r.Handlers[name]
	if !ok {
		log.Warn().Str("command", name).Msg("no handler registered for command")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("command", name).Msg("command handler panicked")
		}
	}()

	h(s, i)
}

// Sync pushes the registered command set to Discord. With a guild id the
// commands are scoped to that guild (instant propagation, useful in
// development); otherwise they register globally.
func (r *CommandRegistry) Sync(s *discordgo.Session, appID, guildID string) error {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(r.Commands))
	for _, cmd := range r.Commands {
		cmds = append(cmds, cmd)
	}

	_, err := s.ApplicationCommandBulkOverwrite(appID, guildID, cmds)
	if err != nil {
		return err
	}

	log.Info().Int("count", len(cmds)).Str("guild_id", guildID).Msg("slash commands synced")
	return nil
}

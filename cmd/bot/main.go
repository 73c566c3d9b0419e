// Package main is the entry point for the Discord leveling bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/bot"
	"discord-levels-bot/internal/config"
	"discord-levels-bot/internal/guildconfig"
	"discord-levels-bot/internal/levels"
	"discord-levels-bot/internal/pkg/db"
	"discord-levels-bot/internal/pkg/lock"
	"discord-levels-bot/internal/render"
	"discord-levels-bot/internal/repository"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	attrRepo := repository.NewAttributeRepository(dbPool.Pool)
	moderationRepo := repository.NewModerationRepository(dbPool.Pool)

	// Initialize guild configuration store and points ledger
	store := guildconfig.NewStore(attrRepo)
	ledger := levels.NewLedger(attrRepo)
	grant := levels.NewGrantPolicy(ledger, lock.NewKeyLock())

	// Initialize the image renderer. Missing fonts are a deployment
	// error, not something to limp along without.
	fonts, err := render.LoadFonts(cfg.Render.FontPath, cfg.Render.LightFontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load fonts")
	}

	if err := os.MkdirAll(cfg.Render.ScratchDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Render.ScratchDir).Msg("Failed to create scratch directory")
	}

	renderer := render.NewRenderer(fonts, cfg.Render.ScratchDir, cfg.Bot.Version, cfg.Render.MaxConcurrent)

	// Background loops: ledger flushing, scratch sweeping, cooldown pruning
	go ledger.RunFlusher(ctx, cfg.Ledger.FlushInterval)
	go renderer.RunSweeper(ctx, cfg.Render.SweepInterval, cfg.Render.ScratchTTL)
	go pruneCooldowns(ctx, grant)

	// Create bot dependencies
	deps := &bot.Dependencies{
		Config:     cfg,
		Store:      store,
		Ledger:     ledger,
		Grant:      grant,
		Renderer:   renderer,
		Moderation: moderationRepo,
	}

	// Initialize bot
	discordBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Bot is starting...")
	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: close the gateway, stop the loops, write out
	// whatever the flusher still holds.
	discordBot.Stop()
	cancel()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	ledger.Flush(flushCtx)

	log.Info().Msg("Bot stopped gracefully")
}

// pruneCooldowns periodically drops expired cooldown entries.
func pruneCooldowns(ctx context.Context, grant *levels.GrantPolicy) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			grant.PruneCooldowns(time.Hour)
		}
	}
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create guild attributes table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guild_attributes (
			guild_id VARCHAR(32) NOT NULL,
			attr VARCHAR(64) NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (guild_id, attr)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: guild_attributes table created")

	// Migration 2: Create guild member attributes table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guild_member_attributes (
			guild_id VARCHAR(32) NOT NULL,
			user_id VARCHAR(32) NOT NULL,
			attr VARCHAR(64) NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (guild_id, user_id, attr)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: guild_member_attributes table created")

	// Migration 3: Create moderation cases table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS moderation_cases (
			id BIGSERIAL PRIMARY KEY,
			guild_id VARCHAR(32) NOT NULL,
			user_id VARCHAR(32) NOT NULL,
			moderator_id VARCHAR(32) NOT NULL,
			action VARCHAR(32) NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_moderation_cases_member ON moderation_cases(guild_id, user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: moderation_cases table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}

package guildconfig

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"discord-levels-bot/internal/model"
	"discord-levels-bot/internal/repository"
)

// MemberColourAttr is the member attribute holding a personal theme colour.
const MemberColourAttr = "colour"

// MemberShutUpAttr is the member attribute suppressing level-up messages.
const MemberShutUpAttr = "shutup"

// Store loads and saves typed per-guild feature configuration through the
// attribute repository, caching records per guild. Writes go through the
// cache to storage; a storage failure keeps the cached value so the guild
// keeps working and the next write retries.
type Store struct {
	repo *repository.AttributeRepository

	mu         sync.RWMutex
	leveling   map[string]*LevelingConfig
	welcome    map[string]*WelcomeConfig
	moderation map[string]*ModerationConfig
}

// NewStore creates a new Store instance.
func NewStore(repo *repository.AttributeRepository) *Store {
	return &Store{
		repo:       repo,
		leveling:   make(map[string]*LevelingConfig),
		welcome:    make(map[string]*WelcomeConfig),
		moderation: make(map[string]*ModerationConfig),
	}
}

// Leveling returns the guild's leveling configuration, loading it on first
// use and falling back to defaults when nothing is stored.
func (s *Store) Leveling(ctx context.Context, guildID string) *LevelingConfig {
	s.mu.RLock()
	cfg, ok := s.leveling[guildID]
	s.mu.RUnlock()
	if ok {
		return cfg
	}

	cfg = DefaultLeveling()
	if err := s.load(ctx, guildID, LevelingLabel, cfg); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("failed to load leveling config, using defaults")
		cfg = DefaultLeveling()
	}

	s.mu.Lock()
	s.leveling[guildID] = cfg
	s.mu.Unlock()
	return cfg
}

// SaveLeveling persists the guild's leveling configuration and updates the
// cache.
func (s *Store) SaveLeveling(ctx context.Context, guildID string, cfg *LevelingConfig) error {
	s.mu.Lock()
	s.leveling[guildID] = cfg
	s.mu.Unlock()
	return s.repo.SetGuildAttribute(ctx, guildID, LevelingLabel, cfg)
}

// Welcome returns the guild's welcome configuration.
func (s *Store) Welcome(ctx context.Context, guildID string) *WelcomeConfig {
	s.mu.RLock()
	cfg, ok := s.welcome[guildID]
	s.mu.RUnlock()
	if ok {
		return cfg
	}

	cfg = DefaultWelcome()
	if err := s.load(ctx, guildID, WelcomeLabel, cfg); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("failed to load welcome config, using defaults")
		cfg = DefaultWelcome()
	}

	s.mu.Lock()
	s.welcome[guildID] = cfg
	s.mu.Unlock()
	return cfg
}

// SaveWelcome persists the guild's welcome configuration.
func (s *Store) SaveWelcome(ctx context.Context, guildID string, cfg *WelcomeConfig) error {
	s.mu.Lock()
	s.welcome[guildID] = cfg
	s.mu.Unlock()
	return s.repo.SetGuildAttribute(ctx, guildID, WelcomeLabel, cfg)
}

// Moderation returns the guild's moderation configuration.
func (s *Store) Moderation(ctx context.Context, guildID string) *ModerationConfig {
	s.mu.RLock()
	cfg, ok := s.moderation[guildID]
	s.mu.RUnlock()
	if ok {
		return cfg
	}

	cfg = DefaultModeration()
	if err := s.load(ctx, guildID, ModerationLabel, cfg); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("failed to load moderation config, using defaults")
		cfg = DefaultModeration()
	}

	s.mu.Lock()
	s.moderation[guildID] = cfg
	s.mu.Unlock()
	return cfg
}

// SaveModeration persists the guild's moderation configuration.
func (s *Store) SaveModeration(ctx context.Context, guildID string, cfg *ModerationConfig) error {
	s.mu.Lock()
	s.moderation[guildID] = cfg
	s.mu.Unlock()
	return s.repo.SetGuildAttribute(ctx, guildID, ModerationLabel, cfg)
}

// Forget drops a guild's cached records, forcing a reload on next access.
// Called when the bot leaves a guild.
func (s *Store) Forget(guildID string) {
	s.mu.Lock()
	delete(s.leveling, guildID)
	delete(s.welcome, guildID)
	delete(s.moderation, guildID)
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context, guildID, label string, dest any) error {
	err := s.repo.GetGuildAttribute(ctx, guildID, label, dest)
	if errors.Is(err, repository.ErrAttributeNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", label, err)
	}
	return nil
}

// MemberColour returns a member's personal theme colour, or nil when unset.
// Storage errors read as unset; the leaderboard must not fail because one
// member's attribute could not be fetched.
func (s *Store) MemberColour(ctx context.Context, guildID, userID string) *model.RGB {
	var colour *model.RGB
	err := s.repo.GetMemberAttribute(ctx, guildID, userID, MemberColourAttr, &colour)
	if err != nil {
		if !errors.Is(err, repository.ErrAttributeNotFound) {
			log.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to load member colour")
		}
		return nil
	}
	return colour
}

// SetMemberColour stores a member's personal theme colour; nil clears it.
func (s *Store) SetMemberColour(ctx context.Context, guildID, userID string, colour *model.RGB) error {
	return s.repo.SetMemberAttribute(ctx, guildID, userID, MemberColourAttr, colour)
}

// MemberShutUp reports whether a member has suppressed level-up messages.
func (s *Store) MemberShutUp(ctx context.Context, guildID, userID string) bool {
	var shutup bool
	err := s.repo.GetMemberAttribute(ctx, guildID, userID, MemberShutUpAttr, &shutup)
	if err != nil {
		return false
	}
	return shutup
}

// SetMemberShutUp stores a member's level-up message suppression flag.
func (s *Store) SetMemberShutUp(ctx context.Context, guildID, userID string, shutup bool) error {
	return s.repo.SetMemberAttribute(ctx, guildID, userID, MemberShutUpAttr, shutup)
}

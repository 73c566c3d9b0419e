package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"discord-levels-bot/internal/model"
)

// ModerationRepository handles moderation case persistence.
type ModerationRepository struct {
	pool *pgxpool.Pool
}

// NewModerationRepository creates a new ModerationRepository instance.
func NewModerationRepository(pool *pgxpool.Pool) *ModerationRepository {
	return &ModerationRepository{pool: pool}
}

// InsertCase records a moderation case and returns it with id and timestamp
// filled in.
func (r *ModerationRepository) InsertCase(ctx context.Context, c model.ModerationCase) (*model.ModerationCase, error) {
	const query = `
		INSERT INTO moderation_cases (guild_id, user_id, moderator_id, action, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, c.GuildID, c.UserID, c.ModeratorID, c.Action, c.Reason).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert moderation case: %w", err)
	}

	return &c, nil
}

// ListCases returns a member's moderation cases, newest first.
func (r *ModerationRepository) ListCases(ctx context.Context, guildID, userID string) ([]*model.ModerationCase, error) {
	const query = `
		SELECT id, guild_id, user_id, moderator_id, action, reason, created_at
		FROM moderation_cases
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation cases: %w", err)
	}
	defer rows.Close()

	var cases []*model.ModerationCase
	for rows.Next() {
		var c model.ModerationCase
		err := rows.Scan(&c.ID, &c.GuildID, &c.UserID, &c.ModeratorID, &c.Action, &c.Reason, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation case: %w", err)
		}
		cases = append(cases, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation cases: %w", err)
	}

	return cases, nil
}

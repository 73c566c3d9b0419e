// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors for repository operations.
var (
	ErrAttributeNotFound = errors.New("attribute not found")
)

// PointsDataAttr is the guild attribute key holding the serialized ledger.
const PointsDataAttr = "points_data"

// AttributeRepository persists arbitrary per-guild and per-member attributes
// as JSONB blobs keyed by (guild, attr) or (guild, user, attr).
type AttributeRepository struct {
	pool *pgxpool.Pool
}

// NewAttributeRepository creates a new AttributeRepository instance.
func NewAttributeRepository(pool *pgxpool.Pool) *AttributeRepository {
	return &AttributeRepository{pool: pool}
}

// GetGuildAttribute loads a guild attribute into dest, which must be a
// pointer suitable for json.Unmarshal. Returns ErrAttributeNotFound when the
// guild has no such attribute.
func (r *AttributeRepository) GetGuildAttribute(ctx context.Context, guildID, attr string, dest any) error {
	const query = `
		SELECT value
		FROM guild_attributes
		WHERE guild_id = $1 AND attr = $2
	`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, guildID, attr).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttributeNotFound
		}
		return fmt.Errorf("failed to get guild attribute %q: %w", attr, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode guild attribute %q: %w", attr, err)
	}
	return nil
}

// SetGuildAttribute stores a guild attribute, replacing any previous value.
func (r *AttributeRepository) SetGuildAttribute(ctx context.Context, guildID, attr string, value any) error {
	const query = `
		INSERT INTO guild_attributes (guild_id, attr, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (guild_id, attr)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode guild attribute %q: %w", attr, err)
	}

	if _, err := r.pool.Exec(ctx, query, guildID, attr, raw); err != nil {
		return fmt.Errorf("failed to set guild attribute %q: %w", attr, err)
	}
	return nil
}

// GetMemberAttribute loads a per-member attribute into dest.
// Returns ErrAttributeNotFound when the member has no such attribute.
func (r *AttributeRepository) GetMemberAttribute(ctx context.Context, guildID, userID, attr string, dest any) error {
	const query = `
		SELECT value
		FROM guild_member_attributes
		WHERE guild_id = $1 AND user_id = $2 AND attr = $3
	`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, guildID, userID, attr).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttributeNotFound
		}
		return fmt.Errorf("failed to get member attribute %q: %w", attr, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode member attribute %q: %w", attr, err)
	}
	return nil
}

// SetMemberAttribute stores a per-member attribute, replacing any previous
// value. A nil value is stored as JSON null, which reads back as "unset" for
// pointer destinations.
func (r *AttributeRepository) SetMemberAttribute(ctx context.Context, guildID, userID, attr string, value any) error {
	const query = `
		INSERT INTO guild_member_attributes (guild_id, user_id, attr, value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (guild_id, user_id, attr)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode member attribute %q: %w", attr, err)
	}

	if _, err := r.pool.Exec(ctx, query, guildID, userID, attr, raw); err != nil {
		return fmt.Errorf("failed to set member attribute %q: %w", attr, err)
	}
	return nil
}

// LoadPoints loads a guild's persisted points ledger. A guild that has never
// flushed gets an empty map, not an error.
func (r *AttributeRepository) LoadPoints(ctx context.Context, guildID string) (map[string]int64, error) {
	points := make(map[string]int64)
	err := r.GetGuildAttribute(ctx, guildID, PointsDataAttr, &points)
	if err != nil {
		if errors.Is(err, ErrAttributeNotFound) {
			return map[string]int64{}, nil
		}
		return nil, err
	}
	return points, nil
}

// SavePoints persists a guild's points ledger.
func (r *AttributeRepository) SavePoints(ctx context.Context, guildID string, points map[string]int64) error {
	return r.SetGuildAttribute(ctx, guildID, PointsDataAttr, points)
}

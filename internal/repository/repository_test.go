// Package repository provides data access layer implementations.
// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"discord-levels-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	// Create PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Run migrations
	err = runMigrations(ctx, pool)
	require.NoError(t, err)

	// Return cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// runMigrations applies the database schema
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Create guild attributes table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guild_attributes (
			guild_id VARCHAR(32) NOT NULL,
			attr VARCHAR(64) NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (guild_id, attr)
		)
	`)
	if err != nil {
		return err
	}

	// Create guild member attributes table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guild_member_attributes (
			guild_id VARCHAR(32) NOT NULL,
			user_id VARCHAR(32) NOT NULL,
			attr VARCHAR(64) NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (guild_id, user_id, attr)
		)
	`)
	if err != nil {
		return err
	}

	// Create moderation cases table
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
		CREATE INDEX IF NOT EXISTS idx_moderation_cases_member ON moderation_cases(guild_id, user_id, created_at DESC)
	`)
	return err
}

// ============================================================================
// AttributeRepository Tests
// ============================================================================

func TestAttributeRepository_GuildAttribute(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	// Test getting a missing attribute
	var missing map[string]any
	err := repo.GetGuildAttribute(ctx, "g1", "leveling", &missing)
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	// Test set and get round-trip
	err = repo.SetGuildAttribute(ctx, "g1", "leveling", map[string]int{"k": 1})
	require.NoError(t, err)

	var got map[string]int
	err = repo.GetGuildAttribute(ctx, "g1", "leveling", &got)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"k": 1}, got)

	// Test overwriting an existing attribute
	err = repo.SetGuildAttribute(ctx, "g1", "leveling", map[string]int{"k": 2})
	require.NoError(t, err)

	err = repo.GetGuildAttribute(ctx, "g1", "leveling", &got)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"k": 2}, got)

	// Attributes are scoped per guild
	err = repo.GetGuildAttribute(ctx, "g2", "leveling", &got)
	assert.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestAttributeRepository_MemberAttribute(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	// Test getting a missing attribute
	var missing bool
	err := repo.GetMemberAttribute(ctx, "g1", "u1", "shut_up", &missing)
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	// Test set and get round-trip
	err = repo.SetMemberAttribute(ctx, "g1", "u1", "shut_up", true)
	require.NoError(t, err)

	var got bool
	err = repo.GetMemberAttribute(ctx, "g1", "u1", "shut_up", &got)
	require.NoError(t, err)
	assert.True(t, got)

	// Test overwriting an existing attribute
	err = repo.SetMemberAttribute(ctx, "g1", "u1", "shut_up", false)
	require.NoError(t, err)

	err = repo.GetMemberAttribute(ctx, "g1", "u1", "shut_up", &got)
	require.NoError(t, err)
	assert.False(t, got)

	// Attributes are scoped per member
	err = repo.GetMemberAttribute(ctx, "g1", "u2", "shut_up", &missing)
	assert.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestAttributeRepository_Points(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	// A guild that has never flushed gets an empty ledger, not an error
	points, err := repo.LoadPoints(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, points)

	// Test save and load round-trip
	err = repo.SavePoints(ctx, "g1", map[string]int64{"u1": 100, "u2": 7})
	require.NoError(t, err)

	points, err = repo.LoadPoints(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"u1": 100, "u2": 7}, points)

	// Test overwriting the ledger
	err = repo.SavePoints(ctx, "g1", map[string]int64{"u1": 105})
	require.NoError(t, err)

	points, err = repo.LoadPoints(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"u1": 105}, points)
}

// ============================================================================
// ModerationRepository Tests
// ============================================================================

func TestModerationRepository_InsertCase(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewModerationRepository(pool)
	ctx := context.Background()

	inserted, err := repo.InsertCase(ctx, model.ModerationCase{
		GuildID:     "g1",
		UserID:      "u1",
		ModeratorID: "m1",
		Action:      model.CaseActionInfraction,
		Reason:      "spamming",
	})
	require.NoError(t, err)
	assert.NotZero(t, inserted.ID)
	assert.False(t, inserted.CreatedAt.IsZero())
	assert.Equal(t, "g1", inserted.GuildID)
	assert.Equal(t, "spamming", inserted.Reason)
}

func TestModerationRepository_ListCases(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewModerationRepository(pool)
	ctx := context.Background()

	// Test listing a member with no cases
	cases, err := repo.ListCases(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Empty(t, cases)

	// Insert two cases for the member and one for someone else
	first, err := repo.InsertCase(ctx, model.ModerationCase{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1",
		Action: model.CaseActionInfraction, Reason: "first",
	})
	require.NoError(t, err)

	second, err := repo.InsertCase(ctx, model.ModerationCase{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1",
		Action: model.CaseActionInfraction, Reason: "second",
	})
	require.NoError(t, err)

	_, err = repo.InsertCase(ctx, model.ModerationCase{
		GuildID: "g1", UserID: "u2", ModeratorID: "m1",
		Action: model.CaseActionInfraction, Reason: "other member",
	})
	require.NoError(t, err)

	// Test listing returns only the member's cases, newest first
	cases, err = repo.ListCases(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, second.ID, cases[0].ID)
	assert.Equal(t, first.ID, cases[1].ID)
}

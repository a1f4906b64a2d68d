package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDatabase_ReusesHealthyInstance(t *testing.T) {
	t.Cleanup(func() { _ = CloseDatabase() })
	ctx := context.Background()

	cfg := DatabaseConfig{SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())}
	first, err := GetDatabase(ctx, cfg)
	require.NoError(t, err)
	second, err := GetDatabase(ctx, cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)

	stats := GetConnectionStats()
	assert.Equal(t, "connected", stats["status"])
	assert.Equal(t, "sqlite", stats["backend"])

	other := DatabaseConfig{SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())}
	third, err := GetDatabase(ctx, other)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "a config change opens a new store")

	require.NoError(t, CloseDatabase())
	assert.Equal(t, "no_connection", GetConnectionStats()["status"])
}

func TestNewDatabase_RequiresBackend(t *testing.T) {
	_, err := NewDatabase(DatabaseConfig{})
	assert.Error(t, err)

	assert.Equal(t, "postgres", DatabaseConfig{PostgresDSN: "postgres://x", SQLitePath: "a.db"}.Kind())
	assert.Equal(t, "", DatabaseConfig{SupabaseURL: "https://x.supabase.co"}.Kind(), "supabase needs a key")
}

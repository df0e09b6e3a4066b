package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/feeworks/internal/config"
	"github.com/Simplici0/feeworks/internal/store"
)

func TestOpenDatabaseMigratesFreshDatabaseOutsideDev(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		Env:          "production",
		DBPath:       filepath.Join(t.TempDir(), "fresh.db"),
		SeedDefaults: true,
	}
	require.False(t, cfg.IsDev())

	database, version, err := openDatabase(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, int64(2), version)

	catalog, err := store.New(database).LoadCatalog(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Referral)
	assert.NotEmpty(t, catalog.Shipping)
}

func TestOpenDatabaseWithoutSeedLeavesTablesEmpty(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{Env: "production", DBPath: filepath.Join(t.TempDir(), "empty.db")}

	database, _, err := openDatabase(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer database.Close()

	items, err := store.New(database).ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	catalog, err := store.New(database).LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog.Referral)
}

// Package testutil builds migrated SQLite stores for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pizza-nz/hotel-service/internal/config"
	"github.com/pizza-nz/hotel-service/internal/db"
	"github.com/pizza-nz/hotel-service/internal/logger"
)

// NewStore opens a fresh SQLite database under t.TempDir, applies every
// migration and closes it when the test ends.
func NewStore(t *testing.T) *db.Store {
	t.Helper()

	cfg := config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "hotel.db"),
	}

	log := logger.Discard()

	store, err := db.Open(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(log))

	return store
}

package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{StoreDriver: config.DriverMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := Open(ctx, &config.Config{
			StoreDriver: config.DriverSQLite,
			DBPath:      filepath.Join(t.TempDir(), "nested", "ledger.db"),
		})
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		assert.IsType(t, &sqlite.SQLiteStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{StoreDriver: "mongo"})
		assert.ErrorContains(t, err, "unknown store driver")
	})
}

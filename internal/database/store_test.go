package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/config"
	"inventory/internal/logger"
	"inventory/internal/models"
)

func TestStatus(t *testing.T) {
	s := NewStatus(false)
	assert.False(t, s.Available())
	assert.Equal(t, "offline", s.Label())

	s.SetAvailable(true)
	assert.True(t, s.Available())
	assert.Equal(t, "connected", s.Label())
}

func TestOpen_MemoryIsAvailable(t *testing.T) {
	store := Open(context.Background(), config.Config{StoreDriver: config.DriverMemory, StoreConnectTimeout: time.Second}, logger.Discard())
	assert.True(t, store.Status.Available())
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	cfg := config.Config{
		StoreDriver:         config.DriverSQLite,
		DatabaseDSN:         "file:" + models.NewID() + "?mode=memory&cache=shared",
		StoreConnectTimeout: 5 * time.Second,
	}
	store := Open(context.Background(), cfg, logger.Discard())
	require.True(t, store.Status.Available())
	defer store.Close(context.Background())

	user := &models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Users.Create(context.Background(), user))
}

func TestOpen_UnreachableStoreRunsOffline(t *testing.T) {
	cfg := config.Config{
		StoreDriver:         config.DriverMongo,
		MongoURI:            "mongodb://127.0.0.1:1",
		MongoDatabase:       "inventory_test",
		StoreConnectTimeout: 300 * time.Millisecond,
	}
	start := time.Now()
	store := Open(context.Background(), cfg, logger.Discard())

	assert.False(t, store.Status.Available())
	assert.NotNil(t, store.Products)
	assert.Less(t, time.Since(start), 5*time.Second, "a single bounded attempt, no retry loop")
}

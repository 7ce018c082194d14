package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/services"
)

func TestRunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	log := logger.Discard()
	auth := services.NewAuthService(store.Users, "secret", time.Hour, log)
	products := services.NewProductService(store.Products, store.Users, log)

	first, err := Run(ctx, auth, products, log)
	require.NoError(t, err)
	assert.Equal(t, len(demoProducts), first.ProductsCreated)
	assert.Zero(t, first.ProductsSkipped)

	second, err := Run(ctx, auth, products, log)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Zero(t, second.ProductsCreated)
	assert.Equal(t, len(demoProducts), second.ProductsSkipped)

	stats, err := products.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoProducts)), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.LowStock)
}

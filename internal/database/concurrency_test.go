package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"storebot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, err = db.AddProduct(ctx, &models.Product{Name: "Kolbasa", Price: 45000, Category: "Go'sht", Stock: int64Ptr(1)})
	require.NoError(t, err)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			results <- db.CreateOrder(ctx, testOrder(int64(id+1), models.OrderItems{"Kolbasa": 1}))
		}(i)
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
			continue
		}
		assert.ErrorIs(t, err, models.ErrOutOfStock)
	}
	assert.Equal(t, 1, successCount, "only one order may take the last unit")

	product, err := db.GetProductByName(ctx, "Kolbasa")
	require.NoError(t, err)
	require.NotNil(t, product.Stock)
	assert.Equal(t, int64(0), *product.Stock)

	orders, err := db.GetOrders(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

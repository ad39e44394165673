package service

import (
	"context"
	"testing"

	"storebot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(products []*models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogService_Listing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, err := env.catalog.GetProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolbasa", "Non", "Sut"}, names(all))

	food, err := env.catalog.GetProducts(ctx, models.ProductFilter{Category: "Oziq-ovqat", SortBy: models.SortByPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sut", "Non"}, names(food))

	cheap, err := env.catalog.GetProducts(ctx, models.ProductFilter{SortBy: models.SortByPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Non", "Sut", "Kolbasa"}, names(cheap))

	categories, err := env.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go'sht", "Oziq-ovqat"}, categories)
}

func TestCatalogService_Lookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.GetProduct(ctx, " NON ")
	require.NoError(t, err)
	assert.Equal(t, "Non", p.Name)

	byID, err := env.catalog.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Non", byID.Name)

	_, err = env.catalog.GetProductByID(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	_, err = env.catalog.GetProduct(ctx, "Olma")
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	snapshot, err := env.catalog.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 3)
	assert.Equal(t, int64(4500), snapshot["Non"].DiscountedPrice())
}

func TestCatalogService_CacheIsACopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.GetProduct(ctx, "Non")
	require.NoError(t, err)
	p.Price = 1

	again, err := env.catalog.GetProduct(ctx, "Non")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), again.Price)
}

func TestCatalogService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	found, err := env.catalog.Search(ctx, "SUT")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sut"}, names(found))

	found, err = env.catalog.Search(ctx, "tandir")
	require.NoError(t, err)
	assert.Equal(t, []string{"Non"}, names(found))

	found, err = env.catalog.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = env.catalog.Search(ctx, "olma")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCatalogService_RefreshAfterChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	replaced, err := env.catalog.AddProduct(ctx, &models.Product{Name: "Tuz", Price: 3000, Category: "Ziravor"})
	require.NoError(t, err)
	assert.False(t, replaced)

	categories, err := env.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "Ziravor")

	require.NoError(t, env.catalog.DeleteProduct(ctx, "Tuz"))
	categories, err = env.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.NotContains(t, categories, "Ziravor")

	assert.ErrorIs(t, env.catalog.DeleteProduct(ctx, "Tuz"), models.ErrProductNotFound)
}

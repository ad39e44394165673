package database

import (
	"context"
	"testing"

	"storebot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := &models.Product{Name: "Non", Price: 5000, Category: "Oziq-ovqat", Discount: 10}
	replaced, err := db.AddProduct(ctx, p)
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.NotZero(t, p.ID)

	found, err := db.GetProductByName(ctx, "Non")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), found.Price)
	assert.Equal(t, 10, found.Discount)
	assert.Nil(t, found.Stock)

	err = db.DeleteProduct(ctx, "Non")
	require.NoError(t, err)

	_, err = db.GetProductByName(ctx, "Non")
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	err = db.DeleteProduct(ctx, "Non")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestAddProduct_ReplacesByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.AddProduct(ctx, &models.Product{Name: "Sut", Price: 12000, Category: "Oziq-ovqat"})
	require.NoError(t, err)

	replaced, err := db.AddProduct(ctx, &models.Product{Name: "Sut", Price: 13000, Category: "Ichimliklar", Stock: int64Ptr(4)})
	require.NoError(t, err)
	assert.True(t, replaced)

	products, err := db.GetProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(13000), products[0].Price)
	assert.Equal(t, "Ichimliklar", products[0].Category)
	require.NotNil(t, products[0].Stock)
	assert.Equal(t, int64(4), *products[0].Stock)
}

func TestAddProduct_ReplaceKeepsStoredName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.AddProduct(ctx, &models.Product{Name: "Non", Price: 5000, Category: "Oziq-ovqat"})
	require.NoError(t, err)

	product := &models.Product{Name: "NON", Price: 5500, Category: "Oziq-ovqat"}
	replaced, err := db.AddProduct(ctx, product)
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "Non", product.Name)

	products, err := db.GetProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Non", products[0].Name)
	assert.Equal(t, int64(5500), products[0].Price)
}

func TestAddProduct_RejectsInvalid(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.AddProduct(context.Background(), &models.Product{Name: "Tuz", Price: 0})
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestGetProducts_FilterAndSort(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, p := range []models.Product{
		{Name: "Tuz", Price: 3000, Category: "Oziq-ovqat"},
		{Name: "Kolbasa", Price: 45000, Category: "Go'sht", Discount: 5},
		{Name: "Non", Price: 5000, Category: "Oziq-ovqat", Discount: 10},
	} {
		p := p
		_, err := db.AddProduct(ctx, &p)
		require.NoError(t, err)
	}

	byName, err := db.GetProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolbasa", "Non", "Tuz"}, productNames(byName))

	byPrice, err := db.GetProducts(ctx, models.ProductFilter{SortBy: models.SortByPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolbasa", "Non", "Tuz"}, productNames(byPrice))

	cheapFirst, err := db.GetProducts(ctx, models.ProductFilter{Category: "Oziq-ovqat", SortBy: models.SortByPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tuz", "Non"}, productNames(cheapFirst))

	byDiscount, err := db.GetProducts(ctx, models.ProductFilter{SortBy: models.SortByDiscount})
	require.NoError(t, err)
	assert.Equal(t, []string{"Non", "Kolbasa", "Tuz"}, productNames(byDiscount))
}

func TestGetCategories_DropsEmptyCategory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.AddProduct(ctx, &models.Product{Name: "Non", Price: 5000, Category: "Oziq-ovqat"})
	require.NoError(t, err)
	_, err = db.AddProduct(ctx, &models.Product{Name: "Sovun", Price: 7000, Category: "Gigiyena"})
	require.NoError(t, err)

	categories, err := db.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gigiyena", "Oziq-ovqat"}, categories)

	require.NoError(t, db.DeleteProduct(ctx, "Sovun"))

	categories, err = db.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oziq-ovqat"}, categories)
}

func TestSeedProducts_KeepsExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.AddProduct(ctx, &models.Product{Name: "Non", Price: 6000})
	require.NoError(t, err)

	added, err := db.SeedProducts(ctx, []models.Product{
		{Name: "Non", Price: 5000},
		{Name: "Tuxum", Price: 12000},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	non, err := db.GetProductByName(ctx, "Non")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), non.Price)
}

func TestPromoCodes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddPromoCode(ctx, &models.PromoCode{Code: " sale10 ", Discount: 10, Active: true}))

	pc, err := db.GetPromoCode(ctx, "Sale10")
	require.NoError(t, err)
	assert.Equal(t, "SALE10", pc.Code)
	assert.Equal(t, 10, pc.Discount)
	assert.True(t, pc.Active)

	require.NoError(t, db.AddPromoCode(ctx, &models.PromoCode{Code: "SALE10", Discount: 15, Active: false}))
	pc, err = db.GetPromoCode(ctx, "sale10")
	require.NoError(t, err)
	assert.Equal(t, 15, pc.Discount)
	assert.False(t, pc.Active)

	_, err = db.GetPromoCode(ctx, "NOPE")
	assert.ErrorIs(t, err, models.ErrInvalidPromoCode)

	assert.ErrorIs(t, db.AddPromoCode(ctx, &models.PromoCode{Code: "  "}), models.ErrInvalidPromoCode)
}

func productNames(products []*models.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

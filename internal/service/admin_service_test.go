package service

import (
	"context"
	"testing"

	"storebot/internal/events"
	"storebot/internal/flow"
	"storebot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_AddProductDialogue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.admin.BeginAdd(ctx, testAdmin))

	steps := []struct {
		input string
		next  flow.Step
	}{
		{"Tuxum", flow.StepAdminAddPrice},
		{"12 000", flow.StepAdminAddDescription},
		{"10 dona", flow.StepAdminAddImage},
		{"none", flow.StepAdminAddCategory},
	}
	for _, step := range steps {
		out, err := env.admin.HandleInput(ctx, testAdmin, step.input)
		require.NoError(t, err, step.input)
		require.Equal(t, step.next, out.Step, step.input)
	}

	out, err := env.admin.HandleInput(ctx, testAdmin, "Oziq-ovqat")
	require.NoError(t, err)
	require.True(t, out.Finished())
	require.NotNil(t, out.Product)

	product, err := env.catalog.GetProduct(ctx, "tuxum")
	require.NoError(t, err)
	assert.Equal(t, "Tuxum", product.Name)
	assert.Equal(t, int64(12000), product.Price)
	assert.Equal(t, "10 dona", product.Description)
	assert.Empty(t, product.ImageURL)
	assert.Equal(t, "Oziq-ovqat", product.Category)

	state, err := env.state.GetState(ctx, testAdmin)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.Equal(t, []string{events.EventProductAdded}, env.events.types())
}

func TestAdminService_InvalidPriceKeepsStep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.admin.BeginAdd(ctx, testAdmin))
	_, err := env.admin.HandleInput(ctx, testAdmin, "Tuxum")
	require.NoError(t, err)

	for _, bad := range []string{"abc", "-5", "0", "12.5"} {
		_, err = env.admin.HandleInput(ctx, testAdmin, bad)
		assert.ErrorIs(t, err, models.ErrInvalidPrice, bad)
	}

	state, err := env.state.GetState(ctx, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, flow.StepAdminAddPrice, state.Step)
	assert.Equal(t, "Tuxum", state.GetString(models.ScratchAdminName))
}

func TestAdminService_ReplaceExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.admin.AddProduct(ctx, testAdmin, &models.Product{Name: "non", Price: 6000, Category: "Oziq-ovqat"}))

	product, err := env.catalog.GetProduct(ctx, "Non")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), product.Price)

	products, err := env.catalog.GetProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, len(testCatalog()))

	var payload events.ProductEventPayload
	require.Len(t, env.events.events, 1)
	require.NoError(t, env.events.events[0].Decode(&payload))
	assert.True(t, payload.Replaced)
	assert.Equal(t, testAdmin, payload.AdminID)
}

func TestAdminService_ReplaceKeepsCartPriced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.AddToCart(ctx, testUser, "Non", 3)
	require.NoError(t, err)

	require.NoError(t, env.admin.AddProduct(ctx, testAdmin, &models.Product{Name: "NON", Price: 6000, Category: "Oziq-ovqat"}))

	product, err := env.catalog.GetProduct(ctx, "Non")
	require.NoError(t, err)
	assert.Equal(t, "Non", product.Name)

	total, err := env.carts.Total(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(18000), total)

	order, err := checkout(t, env, testUser)
	require.NoError(t, err)
	assert.Equal(t, models.OrderItems{"Non": 3}, order.Items)
	assert.Equal(t, int64(18000), order.TotalPrice)
}

func TestAdminService_DeleteDialogue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	categories, err := env.catalog.Categories(ctx)
	require.NoError(t, err)
	require.Contains(t, categories, "Go'sht")

	require.NoError(t, env.admin.BeginDelete(ctx, testAdmin))
	out, err := env.admin.HandleInput(ctx, testAdmin, "Kolbasa")
	require.NoError(t, err)
	assert.True(t, out.Finished())
	assert.Equal(t, "Kolbasa", out.Deleted)

	_, err = env.catalog.GetProduct(ctx, "Kolbasa")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	categories, err = env.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oziq-ovqat"}, categories)
	assert.Equal(t, []string{events.EventProductDeleted}, env.events.types())

	require.NoError(t, env.admin.BeginDelete(ctx, testAdmin))
	_, err = env.admin.HandleInput(ctx, testAdmin, "Kolbasa")
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	state, err := env.state.GetState(ctx, testAdmin)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestAdminService_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.admin.BeginAdd(ctx, testUser), models.ErrForbidden)
	assert.ErrorIs(t, env.admin.BeginDelete(ctx, testUser), models.ErrForbidden)
	_, err := env.admin.HandleInput(ctx, testUser, "Non")
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.ErrorIs(t, env.admin.DeleteProduct(ctx, testUser, "Non"), models.ErrForbidden)
	_, err = env.admin.AddPromoCode(ctx, testUser, "FREE", 100)
	assert.ErrorIs(t, err, models.ErrForbidden)

	state, err := env.state.GetState(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, state)

	_, err = env.catalog.GetProduct(ctx, "Non")
	assert.NoError(t, err)
	assert.Empty(t, env.events.types())
}

func TestAdminService_NoActiveFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.admin.HandleInput(ctx, testAdmin, "Non")
	assert.ErrorIs(t, err, models.ErrNoActiveFlow)

	require.NoError(t, env.state.SetState(ctx, testAdmin, flow.StepSearch))
	_, err = env.admin.HandleInput(ctx, testAdmin, "Non")
	assert.ErrorIs(t, err, models.ErrNoActiveFlow)
}

func TestAdminService_AddPromoCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, discount := range []int{0, -1, 101} {
		_, err := env.admin.AddPromoCode(ctx, testAdmin, "BAD", discount)
		assert.ErrorIs(t, err, models.ErrInvalidPromoCode)
	}
	_, err := env.admin.AddPromoCode(ctx, testAdmin, "  ", 10)
	assert.ErrorIs(t, err, models.ErrInvalidPromoCode)

	promo, err := env.admin.AddPromoCode(ctx, testAdmin, "bahor", 15)
	require.NoError(t, err)
	assert.True(t, promo.Active)

	stored, err := env.db.GetPromoCode(ctx, "BAHOR")
	require.NoError(t, err)
	assert.Equal(t, 15, stored.Discount)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 5000, false},
		{" 12 000 ", 12000, false},
		{"1_500", 1500, false},
		{"0", 0, true},
		{"-10", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

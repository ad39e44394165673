package models

import (
	"testing"
	"time"

	"storebot/internal/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_DiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount int
		want     int64
	}{
		{"no discount", 5000, 0, 5000},
		{"ten percent", 5000, 10, 4500},
		{"floors fractions", 999, 15, 849},
		{"full discount", 1200, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Name: "x", Price: tt.price, Discount: tt.discount}
			assert.Equal(t, tt.want, p.DiscountedPrice())
		})
	}
}

func TestProduct_Validate(t *testing.T) {
	negative := int64(-1)
	assert.NoError(t, Product{Name: "Non", Price: 5000, Discount: 10}.Validate())
	assert.ErrorIs(t, Product{Name: "Non", Price: 0}.Validate(), ErrInvalidPrice)
	assert.ErrorIs(t, Product{Name: "Non", Price: 10, Discount: 101}.Validate(), ErrInvalidProduct)
	assert.ErrorIs(t, Product{Name: " ", Price: 10}.Validate(), ErrInvalidProduct)
	assert.ErrorIs(t, Product{Name: "Non", Price: 10, Stock: &negative}.Validate(), ErrInvalidProduct)
}

func TestCart_NeverHoldsNonPositiveQuantities(t *testing.T) {
	c := NewCart(1)

	require.NoError(t, c.Add("Non", 2))
	require.NoError(t, c.Add("Non", 1))
	assert.Equal(t, 3, c.Quantity("Non"))

	assert.ErrorIs(t, c.Add("Sut", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("Sut", -4), ErrInvalidQuantity)

	c.UpdateQuantity("Non", 0)
	c.UpdateQuantity("Tuz", -2)
	c.UpdateQuantity("Un", 5)
	c.Remove("missing")

	for name, qty := range c.Items {
		assert.Greater(t, qty, 0, "entry %s", name)
	}
	assert.Equal(t, map[string]int{"Un": 5}, c.Items)

	c.Clear()
	assert.True(t, c.IsEmpty())
}

func TestCart_TotalPrice(t *testing.T) {
	catalog := map[string]Product{
		"P":   {Name: "P", Price: 5000, Discount: 10},
		"Sut": {Name: "Sut", Price: 12000},
	}

	c := NewCart(1)
	require.NoError(t, c.Add("P", 3))
	assert.Equal(t, int64(13500), c.TotalPrice(catalog))

	require.NoError(t, c.Add("Sut", 1))
	require.NoError(t, c.Add("Removed", 7))
	assert.Equal(t, int64(25500), c.TotalPrice(catalog))
}

func TestCart_ZeroValueIsUsable(t *testing.T) {
	var c Cart
	assert.True(t, c.IsEmpty())
	require.NoError(t, c.Add("Non", 1))
	c.UpdateQuantity("Sut", 2)
	assert.Equal(t, 2, len(c.Items))
}

func TestApplyPromo(t *testing.T) {
	assert.Equal(t, int64(12150), ApplyPromo(13500, 10))
	assert.Equal(t, int64(13500), ApplyPromo(13500, 0))
	assert.Equal(t, int64(0), ApplyPromo(13500, 150))
	assert.Equal(t, int64(66), ApplyPromo(99, 33))
}

func TestOrderItems_ValueScan(t *testing.T) {
	items := OrderItems{"Non": 2}
	v, err := items.Value()
	require.NoError(t, err)

	var back OrderItems
	require.NoError(t, back.Scan(v))
	assert.Equal(t, items, back)

	require.NoError(t, back.Scan([]byte(`{"Sut":1}`)))
	assert.Equal(t, OrderItems{"Sut": 1}, back)

	assert.Error(t, back.Scan(42))
}

func TestDeliveryInfo_Missing(t *testing.T) {
	info := DeliveryInfo{Name: "Aziz"}
	assert.Equal(t, []string{"phone", "location", "external_id"}, info.Missing())

	info.Phone = "+998901234567"
	info.Address = "Chilonzor 12"
	info.ExternalID = "aziz"
	assert.Empty(t, info.Missing())
	assert.Equal(t, "Chilonzor 12", info.Destination())

	info.Address = ""
	info.Location = "41.3,69.2"
	assert.Empty(t, info.Missing())
	assert.Equal(t, "41.3,69.2", info.Destination())
}

func TestUserState_Helpers(t *testing.T) {
	var nilState *UserState
	assert.Equal(t, "", nilState.GetString("any"))
	assert.Equal(t, 0, nilState.GetInt("any"))

	s := &UserState{}
	s.Set(ScratchPromoDiscount, "15")
	s.Set(ScratchName, "Aziz")
	assert.Equal(t, 15, s.GetInt(ScratchPromoDiscount))
	assert.Equal(t, 0, s.GetInt(ScratchName))
	assert.True(t, s.Has(ScratchName))
	assert.False(t, s.Has(ScratchPhone))
}

func TestUserState_AfterBrowse(t *testing.T) {
	s := &UserState{Step: flow.StepPromoCode, Target: string(flow.StepAwaitingSubmit)}
	step, ok := s.ResumeStep()
	assert.True(t, ok)
	assert.Equal(t, flow.StepAwaitingSubmit, step)
	assert.Equal(t, flow.StepAwaitingSubmit, s.AfterBrowse())

	// у edit_qty в Target лежит товар, а не шаг
	s = &UserState{Step: flow.StepEditQty, Target: "Non"}
	_, ok = s.ResumeStep()
	assert.False(t, ok)
	assert.Equal(t, flow.StepIdle, s.AfterBrowse())

	s = &UserState{Step: flow.StepOrderName, Target: string(flow.StepOrderPhone)}
	_, ok = s.ResumeStep()
	assert.False(t, ok)
}

func TestUserState_Expired(t *testing.T) {
	now := time.Now()
	s := &UserState{UpdatedAt: now.Add(-2 * time.Hour)}
	assert.True(t, s.Expired(now, time.Hour))
	assert.False(t, s.Expired(now, 3*time.Hour))
	assert.False(t, s.Expired(now, 0))
	assert.False(t, (&UserState{}).Expired(now, time.Hour))
}

func TestPromoCode(t *testing.T) {
	assert.Equal(t, "SALE10", NormalizePromoCode("  sale10 "))
	assert.True(t, PromoCode{Code: "A", Discount: 10, Active: true}.Usable())
	assert.False(t, PromoCode{Code: "A", Discount: 10}.Usable())
	assert.False(t, PromoCode{Code: "A", Active: true}.Usable())
}

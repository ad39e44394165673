package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"storebot/internal/database"
	"storebot/internal/events"
	"storebot/internal/models"
	"storebot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testUser  int64 = 1001
	testAdmin int64 = 42
)

func int64Ptr(v int64) *int64 { return &v }

func testCatalog() []models.Product {
	return []models.Product{
		{Name: "Non", Price: 5000, Discount: 10, Category: "Oziq-ovqat", Description: "Tandir noni"},
		{Name: "Sut", Price: 12000, Category: "Oziq-ovqat", Description: "Sigir suti"},
		{Name: "Kolbasa", Price: 45000, Category: "Go'sht", Stock: int64Ptr(2)},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) handle(e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db      *database.DB
	state   *StateService
	catalog *CatalogService
	carts   *CartService
	users   *UserService
	orders  *OrderService
	admin   *AdminService
	events  *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.SeedProducts(ctx, testCatalog())
	require.NoError(t, err)
	require.NoError(t, db.AddPromoCode(ctx, &models.PromoCode{Code: "SALE10", Discount: 10, Active: true}))
	require.NoError(t, db.AddPromoCode(ctx, &models.PromoCode{Code: "OLD", Discount: 20, Active: false}))

	rec := &recorder{}
	bus := events.NewEventBus()
	for _, eventType := range []string{events.EventOrderCreated, events.EventProductAdded, events.EventProductDeleted} {
		bus.Subscribe(eventType, rec.handle)
	}

	state := NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
	catalog := NewCatalogService(db, &logger)
	carts := NewCartService(repository.NewMemoryCartRepository(time.Hour), catalog, &logger)
	users := NewUserService(db, testConfig(), &logger)

	return &testEnv{
		db:      db,
		state:   state,
		catalog: catalog,
		carts:   carts,
		users:   users,
		orders: NewOrderService(OrderServiceDeps{
			State:    state,
			Carts:    carts,
			Catalog:  catalog,
			Orders:   db,
			Promos:   db,
			Users:    users,
			EventBus: bus,
		}, &logger),
		admin:  NewAdminService([]int64{testAdmin}, state, catalog, db, bus, &logger),
		events: rec,
	}
}

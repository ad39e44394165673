package repository

import (
	"context"
	"sync"
	"time"

	"storebot/internal/models"
)

// MemoryStateRepository держит сессии в памяти процесса. Сессия, не
// обновлявшаяся дольше ttl, считается отсутствующей.
type MemoryStateRepository struct {
	states     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func cloneState(s *models.UserState) *models.UserState {
	c := *s
	if s.Scratch != nil {
		c.Scratch = make(map[string]string, len(s.Scratch))
		for k, v := range s.Scratch {
			c.Scratch[k] = v
		}
	}
	return &c
}

func (r *MemoryStateRepository) GetState(_ context.Context, userID int64) (*models.UserState, error) {
	val, ok := r.states.Load(userID)
	if !ok {
		return nil, nil
	}
	state := val.(*models.UserState)
	if state.Expired(r.now(), r.ttl) {
		r.states.CompareAndDelete(userID, val)
		return nil, nil
	}
	return cloneState(state), nil
}

func (r *MemoryStateRepository) SetState(_ context.Context, state *models.UserState) error {
	stored := cloneState(state)
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = r.now()
	}
	r.states.Store(state.UserID, stored)
	return nil
}

func (r *MemoryStateRepository) ClearState(_ context.Context, userID int64) error {
	r.states.Delete(userID)
	return nil
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := r.now()
	val, _ := r.rateLimits.LoadOrStore(userID, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.count == 0 || now.After(entry.expiresAt) {
		entry.count = 0
		entry.expiresAt = now.Add(window)
	}
	entry.count++
	return entry.count <= limit, nil
}

type cartEntry struct {
	items     map[string]int
	updatedAt time.Time
}

// MemoryCartRepository хранит корзины в памяти; используется без Redis и как запасной вариант
type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[int64]cartEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCartRepository(ttl time.Duration) *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[int64]cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *MemoryCartRepository) GetCart(_ context.Context, userID int64) (*models.Cart, error) {
	r.mu.RLock()
	entry, ok := r.carts[userID]
	r.mu.RUnlock()

	cart := models.NewCart(userID)
	if !ok {
		return cart, nil
	}
	if r.ttl > 0 && r.now().Sub(entry.updatedAt) > r.ttl {
		r.mu.Lock()
		delete(r.carts, userID)
		r.mu.Unlock()
		return cart, nil
	}
	for name, qty := range entry.items {
		cart.Items[name] = qty
	}
	return cart, nil
}

func (r *MemoryCartRepository) SaveCart(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart.IsEmpty() {
		delete(r.carts, cart.UserID)
		return nil
	}
	items := make(map[string]int, len(cart.Items))
	for name, qty := range cart.Items {
		items[name] = qty
	}
	r.carts[cart.UserID] = cartEntry{items: items, updatedAt: r.now()}
	return nil
}

func (r *MemoryCartRepository) ClearCart(_ context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
	return nil
}

package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"storebot/internal/domain"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

const recheckInterval = time.Minute

// breaker помнит, что основное хранилище недоступно, и раз в recheckInterval
// пробует вернуться к нему.
type breaker struct {
	name      string
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	// resync переносит в основное хранилище то, что было записано в память
	// во время сбоя. Вызывается перед первым обращением после восстановления.
	resync func() error
}

func (b *breaker) markDown(err error) {
	if !b.isDown.Swap(true) {
		b.logger.Error().Err(err).Str("store", b.name).Msg("Primary repository failed, falling back to memory")
	}
	b.lastCheck.Store(time.Now().UnixNano())
}

func (b *breaker) shouldRecheck() bool {
	return time.Since(time.Unix(0, b.lastCheck.Load())) > recheckInterval
}

func run[T any](b *breaker, primary, fallback func() (T, error)) (T, error) {
	if down := b.isDown.Load(); !down || b.shouldRecheck() {
		var err error
		if down && b.resync != nil {
			err = b.resync()
		}
		if err == nil {
			var v T
			if v, err = primary(); err == nil {
				if b.isDown.Swap(false) {
					b.logger.Info().Str("store", b.name).Msg("Primary repository recovered")
				}
				return v, nil
			}
		}
		b.markDown(err)
	}
	return fallback()
}

func exec(b *breaker, primary, fallback func() error) error {
	_, err := run(b,
		func() (struct{}, error) { return struct{}{}, primary() },
		func() (struct{}, error) { return struct{}{}, fallback() },
	)
	return err
}

type FailoverStateRepository struct {
	breaker
	primary  domain.StateRepository
	fallback domain.StateRepository
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		breaker:  breaker{name: "state", logger: logger},
		primary:  primary,
		fallback: fallback,
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	return run(&r.breaker,
		func() (*models.UserState, error) { return r.primary.GetState(ctx, userID) },
		func() (*models.UserState, error) { return r.fallback.GetState(ctx, userID) },
	)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	return exec(&r.breaker,
		func() error { return r.primary.SetState(ctx, state) },
		func() error { return r.fallback.SetState(ctx, state) },
	)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, userID int64) error {
	return exec(&r.breaker,
		func() error { return r.primary.ClearState(ctx, userID) },
		func() error { return r.fallback.ClearState(ctx, userID) },
	)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return run(&r.breaker,
		func() (bool, error) { return r.primary.CheckRateLimit(ctx, userID, limit, window) },
		func() (bool, error) { return r.fallback.CheckRateLimit(ctx, userID, limit, window) },
	)
}

// FailoverCartRepository remembers which carts changed while Redis was down
// and writes them back before Redis is read again, so a cart cleared by a
// confirmed order cannot reappear after recovery.
type FailoverCartRepository struct {
	breaker
	primary  domain.CartRepository
	fallback domain.CartRepository

	mu    sync.Mutex
	dirty map[int64]struct{}
}

func NewFailoverCartRepository(primary, fallback domain.CartRepository, logger *zerolog.Logger) *FailoverCartRepository {
	r := &FailoverCartRepository{
		breaker:  breaker{name: "cart", logger: logger},
		primary:  primary,
		fallback: fallback,
		dirty:    make(map[int64]struct{}),
	}
	r.resync = r.flushDirty
	return r
}

func (r *FailoverCartRepository) markDirty(userID int64) {
	r.mu.Lock()
	r.dirty[userID] = struct{}{}
	r.mu.Unlock()
}

// flushDirty копирует корзины из памяти в Redis: пустая корзина удаляет ключ.
// При ошибке оставшиеся записи остаются в очереди до следующей попытки.
func (r *FailoverCartRepository) flushDirty() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.dirty) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for userID := range r.dirty {
		cart, err := r.fallback.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			err = r.primary.ClearCart(ctx, userID)
		} else {
			err = r.primary.SaveCart(ctx, cart)
		}
		if err != nil {
			return err
		}
		_ = r.fallback.ClearCart(ctx, userID)
		delete(r.dirty, userID)
	}
	r.logger.Info().Str("store", r.name).Msg("Carts written during outage restored to primary")
	return nil
}

func (r *FailoverCartRepository) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	return run(&r.breaker,
		func() (*models.Cart, error) { return r.primary.GetCart(ctx, userID) },
		func() (*models.Cart, error) { return r.fallback.GetCart(ctx, userID) },
	)
}

func (r *FailoverCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	return exec(&r.breaker,
		func() error { return r.primary.SaveCart(ctx, cart) },
		func() error {
			if err := r.fallback.SaveCart(ctx, cart); err != nil {
				return err
			}
			r.markDirty(cart.UserID)
			return nil
		},
	)
}

func (r *FailoverCartRepository) ClearCart(ctx context.Context, userID int64) error {
	return exec(&r.breaker,
		func() error { return r.primary.ClearCart(ctx, userID) },
		func() error {
			if err := r.fallback.ClearCart(ctx, userID); err != nil {
				return err
			}
			r.markDirty(userID)
			return nil
		},
	)
}

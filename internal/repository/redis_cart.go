package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storebot/internal/models"

	"github.com/redis/go-redis/v9"
)

var errNilClient = errors.New("redis client is nil")

func cartKey(userID int64) string { return fmt.Sprintf("%scart:%d", keyPrefix, userID) }

// RedisCartRepository хранит корзину как hash "товар -> количество"
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	if r.client == nil {
		return nil, errNilClient
	}
	raw, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart from redis: %w", err)
	}

	cart := models.NewCart(userID)
	for name, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("cart %d: bad quantity for %s: %w", userID, name, err)
		}
		cart.UpdateQuantity(name, qty)
	}
	return cart, nil
}

// SaveCart перезаписывает корзину целиком в одной транзакции MULTI/EXEC
func (r *RedisCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	if r.client == nil {
		return errNilClient
	}
	key := cartKey(cart.UserID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if cart.IsEmpty() {
			return nil
		}
		fields := make(map[string]interface{}, len(cart.Items))
		for name, qty := range cart.Items {
			fields[name] = qty
		}
		pipe.HSet(ctx, key, fields)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) ClearCart(ctx context.Context, userID int64) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart from redis: %w", err)
	}
	return nil
}

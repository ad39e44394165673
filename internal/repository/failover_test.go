package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"storebot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStateRepo struct {
	mock.Mock
}

func (m *mockStateRepo) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *mockStateRepo) SetState(ctx context.Context, state *models.UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateRepo) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockStateRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *mockCartRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockCartRepo) ClearCart(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func TestFailoverStateRepository(t *testing.T) {
	primary := new(mockStateRepo)
	fallback := new(mockStateRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		state := &models.UserState{UserID: 1}
		primary.On("GetState", ctx, int64(1)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		state := &models.UserState{UserID: 2}
		primary.On("GetState", ctx, int64(2)).Return(nil, errors.New("fail")).Once()
		fallback.On("GetState", ctx, int64(2)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		state := &models.UserState{UserID: 44}
		fallback.On("SetState", ctx, state).Return(nil).Once()

		assert.NoError(t, repo.SetState(ctx, state))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "SetState", ctx, state)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		primary.On("ClearState", ctx, int64(3)).Return(nil).Once()

		assert.NoError(t, repo.ClearState(ctx, 3))
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		primary.On("GetState", ctx, int64(33)).Return(nil, errors.New("still fail")).Once()
		fallback.On("GetState", ctx, int64(33)).Return(nil, nil).Once()

		_, err := repo.GetState(ctx, 33)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		assert.False(t, repo.shouldRecheck())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, int64(6), 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, int64(6), 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 6, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
	})

	t.Run("FallbackErrorSurfaces", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck.Store(time.Now().UnixNano())
		fallback.On("ClearState", ctx, int64(9)).Return(errors.New("boom")).Once()

		assert.Error(t, repo.ClearState(ctx, 9))
	})
}

func TestFailoverCartRepository(t *testing.T) {
	primary := new(mockCartRepo)
	fallback := NewMemoryCartRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverCartRepository(primary, fallback, &logger)
	ctx := context.Background()

	cart := models.NewCart(5)
	assert.NoError(t, cart.Add("Non", 1))

	primary.On("SaveCart", ctx, cart).Return(errors.New("redis down")).Once()
	assert.NoError(t, repo.SaveCart(ctx, cart))
	assert.True(t, repo.isDown.Load())

	got, err := repo.GetCart(ctx, 5)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.Quantity("Non"))

	assert.NoError(t, repo.ClearCart(ctx, 5))
	got, err = repo.GetCart(ctx, 5)
	assert.NoError(t, err)
	assert.True(t, got.IsEmpty())
	primary.AssertExpectations(t)
}

func TestFailoverCartRepository_OutageWritesSurviveRecovery(t *testing.T) {
	mr, client := newTestRedis(t)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverCartRepository(
		NewRedisCartRepository(client, time.Hour),
		NewMemoryCartRepository(time.Hour),
		&logger,
	)
	ctx := context.Background()

	forceRecheck := func() {
		repo.lastCheck.Store(time.Now().Add(-2 * recheckInterval).UnixNano())
	}

	ordered := models.NewCart(1)
	require.NoError(t, ordered.Add("Non", 3))
	require.NoError(t, repo.SaveCart(ctx, ordered))

	kept := models.NewCart(2)
	require.NoError(t, kept.Add("Sut", 1))
	require.NoError(t, repo.SaveCart(ctx, kept))

	mr.Close()

	// заказ подтверждён во время сбоя: корзина очищена только в памяти
	require.NoError(t, repo.ClearCart(ctx, 1))
	assert.True(t, repo.isDown.Load())
	require.NoError(t, kept.Add("Sut", 1))
	require.NoError(t, repo.SaveCart(ctx, kept))

	got, err := repo.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	require.NoError(t, mr.Restart())
	forceRecheck()

	got, err = repo.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "cleared cart must not come back from redis")
	assert.False(t, repo.isDown.Load())
	assert.False(t, mr.Exists(cartKey(1)))

	got, err = repo.GetCart(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity("Sut"))
}

func TestFailoverCartRepository_ResyncFailureKeepsFallback(t *testing.T) {
	primary := new(mockCartRepo)
	fallback := NewMemoryCartRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverCartRepository(primary, fallback, &logger)
	ctx := context.Background()

	repo.isDown.Store(true)
	repo.lastCheck.Store(time.Now().UnixNano())
	assert.NoError(t, repo.ClearCart(ctx, 7))

	repo.lastCheck.Store(time.Now().Add(-2 * recheckInterval).UnixNano())
	primary.On("ClearCart", mock.Anything, int64(7)).Return(errors.New("still down")).Once()

	got, err := repo.GetCart(ctx, 7)
	assert.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.True(t, repo.isDown.Load())
	primary.AssertNotCalled(t, "GetCart", mock.Anything, int64(7))
	primary.AssertExpectations(t)
}

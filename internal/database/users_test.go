package database

import (
	"context"
	"testing"
	"time"

	"storebot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		TelegramID: 12345,
		Username:   "ali",
		FirstName:  "Ali",
		IsAdmin:    true,
	}
	require.NoError(t, db.CreateOrUpdateUser(ctx, user))

	found, err := db.GetUserByTelegramID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "ali", found.Username)
	assert.True(t, found.IsAdmin)
	assert.Empty(t, found.Phone)

	require.NoError(t, db.UpdateUserPhone(ctx, 12345, "+998901234567"))

	user.FirstName = "Alijon"
	require.NoError(t, db.CreateOrUpdateUser(ctx, user))

	found, err = db.GetUserByTelegramID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "Alijon", found.FirstName)
	assert.Equal(t, "+998901234567", found.Phone)
}

func TestGetActiveUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateOrUpdateUser(ctx, &models.User{TelegramID: 1, FirstName: "Fresh"}))
	require.NoError(t, db.CreateOrUpdateUser(ctx, &models.User{
		TelegramID:   2,
		FirstName:    "Stale",
		LastActivity: time.Now().AddDate(0, 0, -30),
	}))

	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := db.GetActiveUsers(ctx, 7)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Fresh", active[0].FirstName)

	require.NoError(t, db.UpdateUserActivity(ctx, 2))
	active, err = db.GetActiveUsers(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

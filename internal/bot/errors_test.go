package bot

import (
	"errors"
	"fmt"
	"testing"

	"storebot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorMessage(t *testing.T) {
	b := &Bot{}

	assert.Empty(t, b.getErrorMessage(nil))
	assert.Contains(t, b.getErrorMessage(fmt.Errorf("wrap: %w", models.ErrEmptyCart)), "Savatingiz bo'sh")
	assert.Contains(t, b.getErrorMessage(fmt.Errorf("%w: Non", models.ErrOutOfStock)), "omborda")
	assert.Equal(t, msgUnknown, b.getErrorMessage(models.ErrNoActiveFlow))
	assert.Contains(t, b.getErrorMessage(errors.New("disk full")), "Xatolik yuz berdi")
}

func TestIsUserError(t *testing.T) {
	assert.True(t, isUserError(fmt.Errorf("%w: SALE", models.ErrInvalidPromoCode)))
	assert.True(t, isUserError(models.ErrForbidden))
	assert.False(t, isUserError(errors.New("redis: connection refused")))
}

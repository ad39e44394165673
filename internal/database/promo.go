package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storebot/internal/models"
)

// GetPromoCode ищет промокод без учёта регистра
func (db *DB) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var pc models.PromoCode
	err := db.QueryRowContext(ctx, `SELECT code, discount, active FROM promo_codes WHERE code = ?`,
		models.NormalizePromoCode(code)).Scan(&pc.Code, &pc.Discount, &pc.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPromoCode, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &pc, nil
}

func (db *DB) AddPromoCode(ctx context.Context, promo *models.PromoCode) error {
	promo.Code = models.NormalizePromoCode(promo.Code)
	if promo.Code == "" || promo.Discount < 0 || promo.Discount > 100 {
		return fmt.Errorf("%w: %q", models.ErrInvalidPromoCode, promo.Code)
	}
	_, err := db.ExecContext(ctx, `INSERT INTO promo_codes (code, discount, active) VALUES (?, ?, ?)
              ON CONFLICT(code) DO UPDATE SET discount = excluded.discount, active = excluded.active`,
		promo.Code, promo.Discount, promo.Active)
	if err != nil {
		return fmt.Errorf("failed to save promo code: %w", err)
	}
	return nil
}

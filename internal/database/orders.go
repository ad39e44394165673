package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"storebot/internal/models"
)

const orderColumns = `id, user_id, items, total_price, promo_code, promo_discount,
        name, phone, location, address, external_id, status, created_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Items, &o.TotalPrice, &o.PromoCode, &o.PromoDiscount,
		&o.Info.Name, &o.Info.Phone, &o.Info.Location, &o.Info.Address, &o.Info.ExternalID,
		&o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder записывает заказ и списывает остатки в одной транзакции.
// Если остатка не хватает, ничего не записывается.
func (db *DB) CreateOrder(ctx context.Context, order *models.Order) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = reserveStock(ctx, tx, order.Items); err != nil {
		return err
	}

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO orders
            (user_id, items, total_price, promo_code, promo_discount,
             name, phone, location, address, external_id, status, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.Items, order.TotalPrice, order.PromoCode, order.PromoDiscount,
		order.Info.Name, order.Info.Phone, order.Info.Location, order.Info.Address, order.Info.ExternalID,
		order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if order.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func reserveStock(ctx context.Context, tx *sql.Tx, items models.OrderItems) error {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		qty := items[name]
		var stock sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE name = ?`, name).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			// товар удалён после добавления в корзину, в сумму он не входит
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read stock for %s: %w", name, err)
		}
		if !stock.Valid {
			continue
		}
		if stock.Int64 < int64(qty) {
			return fmt.Errorf("%w: %s (left %d, requested %d)", models.ErrOutOfStock, name, stock.Int64, qty)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ?, updated_at = ? WHERE name = ?`, qty, time.Now(), name); err != nil {
			return fmt.Errorf("failed to decrement stock for %s: %w", name, err)
		}
	}
	return nil
}

func (db *DB) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return o, nil
}

// GetOrders возвращает заказы пользователя от старых к новым; userID = 0 означает все заказы
func (db *DB) GetOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if userID != 0 {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

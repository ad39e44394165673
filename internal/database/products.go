package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storebot/internal/models"
)

const productColumns = `id, name, price, description, image_url, category, discount, stock, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p     models.Product
		stock sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.ImageURL, &p.Category,
		&p.Discount, &stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if stock.Valid {
		v := stock.Int64
		p.Stock = &v
	}
	return &p, nil
}

func productOrder(sortBy string) string {
	switch sortBy {
	case models.SortByPriceAsc:
		return "price * (100 - discount) ASC, name ASC"
	case models.SortByPriceDesc:
		return "price * (100 - discount) DESC, name ASC"
	case models.SortByDiscount:
		return "discount DESC, name ASC"
	default:
		return "name ASC"
	}
}

// GetProducts возвращает товары каталога, опционально только одной категории
func (db *DB) GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY ` + productOrder(filter.SortBy)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (db *DB) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	row := db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE name = ?`, name)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by name: %w", err)
	}
	return p, nil
}

// GetCategories возвращает непустые категории в алфавитном порядке
func (db *DB) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// AddProduct вставляет товар или перезаписывает существующий с тем же именем.
// replaced сообщает, была ли перезапись.
func (db *DB) AddProduct(ctx context.Context, product *models.Product) (replaced bool, err error) {
	if err := product.Validate(); err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		existingID   int64
		existingName string
	)
	err = tx.QueryRowContext(ctx, `SELECT id, name FROM products WHERE name = ?`, product.Name).Scan(&existingID, &existingName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return false, fmt.Errorf("failed to look up product: %w", err)
	default:
		replaced = true
	}

	now := time.Now()
	var stock any
	if product.Stock != nil {
		stock = *product.Stock
	}

	if replaced {
		// Имя не переписываем: корзины и заказы ссылаются на товар по исходному написанию
		_, err = tx.ExecContext(ctx, `UPDATE products SET price = ?, description = ?, image_url = ?,
                category = ?, discount = ?, stock = ?, updated_at = ? WHERE id = ?`,
			product.Price, product.Description, product.ImageURL,
			product.Category, product.Discount, stock, now, existingID)
		if err != nil {
			return false, fmt.Errorf("failed to replace product: %w", err)
		}
		product.ID = existingID
		product.Name = existingName
	} else {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT INTO products
                (name, price, description, image_url, category, discount, stock, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			product.Name, product.Price, product.Description, product.ImageURL,
			product.Category, product.Discount, stock, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to create product: %w", err)
		}
		if product.ID, err = res.LastInsertId(); err != nil {
			return false, fmt.Errorf("failed to get last insert id: %w", err)
		}
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit product: %w", err)
	}
	return replaced, nil
}

func (db *DB) DeleteProduct(ctx context.Context, name string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrProductNotFound, name)
	}
	return nil
}

// SeedProducts добавляет товары, которых ещё нет в каталоге. Существующие не трогает.
func (db *DB) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	added := 0
	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return added, err
		}
		var stock any
		if p.Stock != nil {
			stock = *p.Stock
		}
		now := time.Now()
		res, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO products
                (name, price, description, image_url, category, discount, stock, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Price, p.Description, p.ImageURL, p.Category, p.Discount, stock, now, now)
		if err != nil {
			return added, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

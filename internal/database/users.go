package database

import (
	"context"
	"fmt"
	"time"

	"storebot/internal/models"
)

const userColumns = `id, telegram_id, COALESCE(username, ''), first_name, COALESCE(last_name, ''),
        COALESCE(phone, ''), is_admin, is_blacklisted, COALESCE(language_code, ''),
        last_activity, created_at, updated_at`

func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				telegram_id, username, first_name, last_name, phone,
				is_admin, is_blacklisted, language_code,
				last_activity, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(telegram_id) DO UPDATE SET
                username = excluded.username,
                first_name = excluded.first_name,
                last_name = excluded.last_name,
                is_admin = excluded.is_admin,
                is_blacklisted = excluded.is_blacklisted,
                language_code = excluded.language_code,
                last_activity = excluded.last_activity,
                updated_at = excluded.updated_at`
	lastActivity := user.LastActivity
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.IsAdmin,
		user.IsBlacklisted,
		user.LanguageCode,
		lastActivity,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsAdmin, &u.IsBlacklisted, &u.LanguageCode, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPhone сохраняет телефон, указанный в последнем заказе
func (db *DB) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	query := `UPDATE users SET phone = ?, updated_at = ? WHERE telegram_id = ?`
	_, err := db.ExecContext(ctx, query, phone, time.Now(), telegramID)
	return err
}

func (db *DB) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	query := `UPDATE users SET last_activity = ?, updated_at = ? WHERE telegram_id = ?`
	now := time.Now()
	_, err := db.ExecContext(ctx, query, now, now, telegramID)
	return err
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return db.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY last_activity DESC`)
}

func (db *DB) GetActiveUsers(ctx context.Context, days int) ([]*models.User, error) {
	since := time.Now().AddDate(0, 0, -days)
	return db.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE last_activity >= ? ORDER BY last_activity DESC`, since)
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.Phone,
			&u.IsAdmin, &u.IsBlacklisted, &u.LanguageCode, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

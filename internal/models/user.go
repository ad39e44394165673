package models

import "time"

// User is a Telegram customer seen by the bot.
type User struct {
	ID            int64     `json:"id"`
	TelegramID    int64     `json:"telegram_id"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone"`
	IsAdmin       bool      `json:"is_admin"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	LanguageCode  string    `json:"language_code"`
	LastActivity  time.Time `json:"last_activity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

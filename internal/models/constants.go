package models

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DefaultSessionTTL время жизни сессии пользователя (секунды)
	DefaultSessionTTL = 24 * 60 * 60

	// DefaultCartTTL время жизни корзины (секунды)
	DefaultCartTTL = 7 * 24 * 60 * 60

	// DefaultTopProducts размер рейтинга популярных товаров
	DefaultTopProducts = 5

	// DefaultPaginationSize размер страницы каталога
	DefaultPaginationSize = 8

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений (секунды)
	RateLimitWindow = 60

	// ImageNone значение, которое администратор вводит вместо ссылки на изображение
	ImageNone = "none"
)

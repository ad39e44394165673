package domain

import (
	"context"
	"time"

	"storebot/internal/flow"
	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type CatalogRepository interface {
	GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
	AddProduct(ctx context.Context, product *models.Product) (replaced bool, err error)
	DeleteProduct(ctx context.Context, name string) error
	PromoRepository
}

type PromoRepository interface {
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
	AddPromoCode(ctx context.Context, promo *models.PromoCode) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrders(ctx context.Context, userID int64) ([]*models.Order, error)
}

type UserRepository interface {
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetActiveUsers(ctx context.Context, days int) ([]*models.User, error)
}

type SyncQueueRepository interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, userID int64) error
}

type StateManager interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, userID int64, step flow.Step) error
	SetTarget(ctx context.Context, userID int64, step flow.Step, target string) error
	BeginBrowse(ctx context.Context, userID int64, step flow.Step) error
	FinishBrowse(ctx context.Context, userID int64) (flow.Step, error)
	SaveState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	PutScratch(ctx context.Context, userID int64, key, value string) error
	GetScratch(ctx context.Context, userID int64) (map[string]string, error)
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type CartManager interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddToCart(ctx context.Context, userID int64, name string, qty int) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, userID int64, name string) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID int64, name string, qty int) (*models.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
	Total(ctx context.Context, userID int64) (int64, error)
}

type CatalogService interface {
	GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
	GetProduct(ctx context.Context, name string) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context) (map[string]models.Product, error)
	AddProduct(ctx context.Context, product *models.Product) (replaced bool, err error)
	DeleteProduct(ctx context.Context, name string) error
	Refresh(ctx context.Context) error
}

type OrderService interface {
	StartOrder(ctx context.Context, userID int64, externalID string) error
	HandleInput(ctx context.Context, userID int64, in models.Input) (*models.Outcome, error)
	Submit(ctx context.Context, userID int64) (*models.Outcome, error)
	Confirm(ctx context.Context, userID int64, yes bool) (*models.Outcome, error)
	ConfirmOrder(ctx context.Context, userID int64) (*models.Order, error)
	ApplyPromoCode(ctx context.Context, userID int64, code string) (*models.PromoCode, error)
	Cancel(ctx context.Context, userID int64) error
	GetUserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	TopProducts(ctx context.Context, n int) ([]models.ProductCount, error)
}

type AdminService interface {
	IsAdmin(userID int64) bool
	BeginAdd(ctx context.Context, userID int64) error
	BeginDelete(ctx context.Context, userID int64) error
	HandleInput(ctx context.Context, userID int64, text string) (*models.Outcome, error)
	AddProduct(ctx context.Context, userID int64, product *models.Product) error
	DeleteProduct(ctx context.Context, userID int64, name string) error
	AddPromoCode(ctx context.Context, userID int64, code string, discount int) (*models.PromoCode, error)
}

type UserService interface {
	IsAdmin(userID int64) bool
	IsBlacklisted(userID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetActiveUsers(ctx context.Context, days int) ([]*models.User, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendPhoto(chatID int64, photoURL, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type OrderSheetsWriter interface {
	AppendOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

type SyncWorker interface {
	EnqueueOrder(ctx context.Context, order *models.Order) error
}

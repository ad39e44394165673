package bot

import (
	"context"
	"os"
	"time"

	"storebot/internal/config"
	"storebot/internal/domain"
	"storebot/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const updateTimeout = 30 * time.Second

type Bot struct {
	tgService      domain.TelegramService
	config         *config.Config
	stateService   domain.StateManager
	cartService    domain.CartManager
	catalogService domain.CatalogService
	orderService   domain.OrderService
	adminService   domain.AdminService
	userService    domain.UserService
	commands       map[CommandKind]commandHandler
	metrics        *Metrics
	logger         *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	stateService domain.StateManager,
	cartService domain.CartManager,
	catalogService domain.CatalogService,
	orderService domain.OrderService,
	adminService domain.AdminService,
	userService domain.UserService,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	b := &Bot{
		tgService:      tgService,
		config:         config,
		stateService:   stateService,
		cartService:    cartService,
		catalogService: catalogService,
		orderService:   orderService,
		adminService:   adminService,
		userService:    userService,
		metrics:        metrics,
		logger:         logger,
	}
	b.commands = b.commandTable()
	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func updateUser(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	}
	return nil
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	from := updateUser(update)
	if from == nil || from.ID == 0 {
		return
	}
	userID := from.ID

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()
	updateCtx, l := logging.WithRequest(updateCtx, b.logger, userID)

	b.withRecovery(l, func() {
		if b.userService.IsBlacklisted(userID) {
			return
		}

		b.trackActivity(userID)

		if !b.adminService.IsAdmin(userID) && !b.allowRate(updateCtx, update, userID) {
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
			return
		}
		if update.Message != nil {
			if b.metrics != nil {
				b.metrics.MessagesProcessed.Inc()
			}
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func (b *Bot) allowRate(ctx context.Context, update tgbotapi.Update, userID int64) bool {
	window := time.Duration(b.config.Bot.RateLimitWindow) * time.Second
	allowed, err := b.stateService.CheckRateLimit(ctx, userID, b.config.Bot.RateLimitMessages, window)
	if err != nil {
		// лимит не должен блокировать пользователя, если хранилище недоступно
		zerolog.Ctx(ctx).Error().Err(err).Msg("Rate limit check failed")
		return true
	}
	if allowed {
		return true
	}

	zerolog.Ctx(ctx).Warn().Msg("Rate limit exceeded")
	if b.metrics != nil {
		b.metrics.RateLimited.Inc()
	}
	if update.Message != nil {
		b.sendMessage(update.Message.Chat.ID, msgRateLimited)
	}
	return false
}

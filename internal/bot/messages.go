package bot

import (
	"context"
	"fmt"
	"strings"

	"storebot/internal/flow"
	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	zerolog.Ctx(ctx).Debug().
		Str("username", msg.From.UserName).
		Str("text", text).
		Bool("contact", msg.Contact != nil).
		Bool("location", msg.Location != nil).
		Msg("Handling message")

	if msg.Contact != nil || msg.Location != nil {
		b.handleShared(ctx, msg)
		return
	}

	if b.handleCommand(ctx, msg, text) {
		return
	}

	state, err := b.stateService.GetState(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if state == nil {
		b.sendWithMainMenu(chatID, userID, msgUnknown)
		return
	}

	switch state.Step.Kind() {
	case flow.KindOrder:
		b.handleOrderText(ctx, chatID, userID, state.Step, text)
	case flow.KindAdmin:
		b.handleAdminText(ctx, chatID, userID, text)
	case flow.KindBrowse:
		b.handleBrowseText(ctx, chatID, userID, state, text)
	default:
		b.sendWithMainMenu(chatID, userID, msgUnknown)
	}
}

// handleCommand reacts to slash commands and menu buttons. They work at any
// step; only back and cancel touch the active workflow.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	command, args := splitCommand(text)

	switch command {
	case "/start":
		b.handleStart(ctx, msg)
	case "/cancel", btnBack:
		b.cancelFlow(ctx, chatID, userID)
	case "/catalog", btnCatalog:
		b.showCategories(ctx, chatID, 0)
	case "/cart", btnCart:
		b.showCart(ctx, chatID, 0, userID)
	case "/search", btnSearch:
		b.beginBrowse(ctx, chatID, userID, flow.StepSearch, msgAskSearch)
	case "/promo", btnPromo:
		b.beginBrowse(ctx, chatID, userID, flow.StepPromoCode, msgAskPromo)
	case "/orders", btnOrders:
		b.showUserOrders(ctx, chatID, userID)
	case "/top", btnTop:
		b.showTopProducts(ctx, chatID, 0)
	case "/checkout":
		b.startCheckout(ctx, chatID, userID, msg.From.UserName)
	case "/add_product", btnAdminAdd:
		b.beginAdmin(ctx, chatID, userID, b.adminService.BeginAdd, msgAdminAskName)
	case "/delete_product", btnAdminDelete:
		b.beginAdmin(ctx, chatID, userID, b.adminService.BeginDelete, msgAdminAskDelete)
	case "/add_promo":
		b.handleAddPromo(ctx, chatID, userID, args)
	case "/export_orders", btnAdminExport:
		b.handleExportOrders(ctx, chatID, userID)
	case "/export_users":
		b.handleExportUsers(ctx, chatID, userID)
	case "/stats":
		b.handleStats(ctx, chatID, userID)
	default:
		if strings.HasPrefix(command, "/") {
			b.sendWithMainMenu(chatID, userID, msgUnknown)
			return true
		}
		return false
	}
	return true
}

// splitCommand separates "/cmd@bot args" into "/cmd" and "args". Other
// text is returned unchanged.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return text, ""
	}
	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return strings.ToLower(command), strings.TrimSpace(args)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := &models.User{
		TelegramID:   msg.From.ID,
		Username:     msg.From.UserName,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}
	if err := b.userService.SaveUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to save user")
	}

	if err := b.stateService.ClearState(ctx, msg.From.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to clear state on start")
	}

	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	b.sendWithMainMenu(msg.Chat.ID, msg.From.ID, fmt.Sprintf(msgWelcome, name))
}

// cancelFlow is the Back event: whatever the user was doing is abandoned,
// staged data included.
func (b *Bot) cancelFlow(ctx context.Context, chatID, userID int64) {
	state, err := b.stateService.GetState(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if _, ok := state.ResumeStep(); ok {
		// назад из промокода или поиска возвращает в оформление
		step := b.finishBrowse(ctx, userID)
		b.renderOrderOutcome(ctx, chatID, userID, &models.Outcome{Step: step}, nil)
		return
	}
	if state != nil && state.Step.Kind() == flow.KindOrder {
		_, err = b.orderService.HandleInput(ctx, userID, models.Input{Event: flow.EventBack})
	} else {
		err = b.orderService.Cancel(ctx, userID)
	}
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendWithMainMenu(chatID, userID, msgCancelled)
}

// handleShared routes a shared contact or location into the checkout.
func (b *Bot) handleShared(ctx context.Context, msg *tgbotapi.Message) {
	in := models.Input{}
	switch {
	case msg.Contact != nil:
		in.Event = flow.EventContact
		in.Phone = msg.Contact.PhoneNumber
		if n := normalizePhone(in.Phone); n != "" {
			in.Phone = "+" + n
		}
	case msg.Location != nil:
		in.Event = flow.EventLocation
		in.Latitude = msg.Location.Latitude
		in.Longitude = msg.Location.Longitude
	}

	out, err := b.orderService.HandleInput(ctx, msg.From.ID, in)
	b.renderOrderOutcome(ctx, msg.Chat.ID, msg.From.ID, out, err)
}

func (b *Bot) handleBrowseText(ctx context.Context, chatID, userID int64, state *models.UserState, text string) {
	switch state.Step {
	case flow.StepSearch:
		b.handleSearchText(ctx, chatID, userID, text)
	case flow.StepPromoCode:
		b.handlePromoText(ctx, chatID, userID, text)
	case flow.StepEditQty:
		b.handleEditQtyText(ctx, chatID, userID, state.Target, text)
	}
}

// beginBrowse opens a one-message browse step (search, promo code).
func (b *Bot) beginBrowse(ctx context.Context, chatID, userID int64, step flow.Step, prompt string) {
	if err := b.stateService.BeginBrowse(ctx, userID, step); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendWithKeyboard(chatID, prompt, backKeyboard())
}

// finishBrowse leaves a browse step. Staged scratch (a promo code) survives;
// an interrupted checkout continues from its step.
func (b *Bot) finishBrowse(ctx context.Context, userID int64) flow.Step {
	step, err := b.stateService.FinishBrowse(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to leave browse step")
	}
	return step
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	if _, err := b.tgService.SendWithKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendInline(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendWithMainMenu(chatID, userID int64, text string) {
	b.sendWithKeyboard(chatID, text, mainMenuKeyboard(b.adminService.IsAdmin(userID)))
}

// replyError logs err and sends the user the matching message.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	l := zerolog.Ctx(ctx)
	if isUserError(err) {
		l.Info().Err(err).Msg("Request rejected")
	} else {
		l.Error().Err(err).Msg("Request failed")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
	}
	b.sendMessage(chatID, b.getErrorMessage(err))
}

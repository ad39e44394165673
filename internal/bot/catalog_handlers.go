package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) showCategories(ctx context.Context, chatID int64, messageID int) {
	categories, err := b.catalogService.Categories(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(categories) == 0 {
		b.sendMessage(chatID, msgNoCategories)
		return
	}
	b.sendOrEdit(chatID, messageID, msgChooseCat, categoriesKeyboard(categories))
}

func (b *Bot) onCategories(ctx context.Context, req callbackRequest, _ Command) {
	b.showCategories(ctx, req.chatID, req.messageID)
}

func (b *Bot) onList(ctx context.Context, req callbackRequest, cmd Command) {
	b.renderPaginatedProducts(ctx, req.chatID, req.messageID, parseListArgs(cmd.Arg))
}

func (b *Bot) onProduct(ctx context.Context, req callbackRequest, cmd Command) {
	id, err := cmd.ID()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Bad product callback")
		return
	}
	product, err := b.catalogService.GetProductByID(ctx, id)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}

	keyboard := productKeyboard(product)
	caption := b.productCaption(product)
	if product.ImageURL != "" {
		if _, err := b.tgService.SendPhoto(req.chatID, product.ImageURL, caption, &keyboard); err == nil {
			return
		}
		// битая ссылка на картинку: показываем карточку текстом
		zerolog.Ctx(ctx).Warn().Str("image_url", product.ImageURL).Msg("Failed to send product photo")
	}

	msg := tgbotapi.NewMessage(req.chatID, caption)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", req.chatID).Msg("Failed to send product card")
	}
}

func (b *Bot) onAdd(ctx context.Context, req callbackRequest, cmd Command) {
	id, err := cmd.ID()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Bad add callback")
		return
	}
	product, err := b.catalogService.GetProductByID(ctx, id)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	cart, err := b.cartService.AddToCart(ctx, req.userID, product.Name, 1)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	if b.metrics != nil {
		b.metrics.CartAdds.WithLabelValues(product.Name).Inc()
	}

	text := fmt.Sprintf("✅ %s savatga qo'shildi (savatda: %d ta)", product.Name, cart.Quantity(product.Name))
	b.sendInline(req.chatID, text, tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCart, Command{Kind: CmdCart}.String()),
			tgbotapi.NewInlineKeyboardButtonData("✅ Buyurtma berish", Command{Kind: CmdCheckout}.String()),
		),
	))
}

func (b *Bot) handleSearchText(ctx context.Context, chatID, userID int64, query string) {
	defer b.finishBrowse(ctx, userID)

	if query == "" {
		b.sendWithMainMenu(chatID, userID, msgNothingFound)
		return
	}
	products, err := b.catalogService.Search(ctx, query)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(products) == 0 {
		b.sendWithMainMenu(chatID, userID, msgNothingFound)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 \"%s\" bo'yicha natijalar:\n\n", query))
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for i, p := range products {
		sb.WriteString(b.productLine(i+1, p) + "\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, productCommand(CmdProduct, p.ID)),
		))
	}
	b.sendInline(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.sendWithMainMenu(chatID, userID, msgMainMenu)
}

func (b *Bot) showTopProducts(ctx context.Context, chatID int64, n int) {
	if n <= 0 && b.config != nil {
		n = b.config.Bot.TopProductsLimit
	}
	top, err := b.orderService.TopProducts(ctx, n)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(top) == 0 {
		b.sendMessage(chatID, msgNoTop)
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 Eng ko'p sotilgan mahsulotlar:\n\n")
	for i, pc := range top {
		sb.WriteString(fmt.Sprintf("%d. %s - %d ta\n", i+1, pc.Name, pc.Quantity))
	}
	b.sendMessage(chatID, sb.String())
}

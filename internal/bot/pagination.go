package bot

import (
	"context"
	"fmt"
	"strings"

	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PaginationParams struct {
	ChatID       int64
	MessageID    int // 0 if new message
	Page         int
	Title        string
	PageData     func(page int) string
	HeaderRows   [][]tgbotapi.InlineKeyboardButton
	BackCallback string
}

// renderPaginatedList - универсальная функция для отрисовки пагинированного списка
func (b *Bot) renderPaginatedList(params PaginationParams, totalCount int, itemsPerPage int, renderer func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton)) {
	if itemsPerPage <= 0 && b.config != nil {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPaginationSize
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if params.Page >= totalPages && totalPages > 0 {
		params.Page = totalPages - 1
	}
	if params.Page < 0 {
		params.Page = 0
	}
	startIdx := params.Page * itemsPerPage
	endIdx := min(startIdx+itemsPerPage, totalCount)

	content, keyboard := renderer(startIdx, endIdx)
	keyboard = append(params.HeaderRows, keyboard...)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Sahifa %d / %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	// Добавляем навигационные кнопки
	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️", params.PageData(params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("➡️", params.PageData(params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnBack, params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	b.sendOrEdit(params.ChatID, params.MessageID, message.String(), markup)
}

// sendOrEdit edits the message the button was pressed on, or sends a new one.
func (b *Bot) sendOrEdit(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	var err error
	if messageID != 0 {
		_, err = b.tgService.EditMessage(chatID, messageID, text, &markup)
	} else {
		_, err = b.tgService.SendWithInlineKeyboard(chatID, text, markup)
	}
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send list")
	}
}

// renderPaginatedProducts - обертка для списка товаров каталога
func (b *Bot) renderPaginatedProducts(ctx context.Context, chatID int64, messageID int, args listArgs) {
	products, err := b.catalogService.GetProducts(ctx, models.ProductFilter{Category: args.Category, SortBy: args.SortBy})
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	title := msgAllProducts
	if args.Category != "" {
		title = "📂 " + args.Category
	}
	if len(products) == 0 {
		title += "\n\n" + msgNoCategories
	}

	params := PaginationParams{
		ChatID:    chatID,
		MessageID: messageID,
		Page:      args.Page,
		Title:     title,
		PageData: func(page int) string {
			return listArgs{Category: args.Category, SortBy: args.SortBy, Page: page}.String()
		},
		HeaderRows:   [][]tgbotapi.InlineKeyboardButton{sortRow(args)},
		BackCallback: Command{Kind: CmdCategories}.String(),
	}

	b.renderPaginatedList(params, len(products), 0, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var sb strings.Builder
		var rows [][]tgbotapi.InlineKeyboardButton
		for i := startIdx; i < endIdx; i++ {
			p := products[i]
			sb.WriteString(b.productLine(i+1, p) + "\n")
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(p.Name, productCommand(CmdProduct, p.ID)),
			))
		}
		return sb.String(), rows
	})
}

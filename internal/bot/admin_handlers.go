package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"storebot/internal/flow"
	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var adminPrompts = map[flow.Step]string{
	flow.StepAdminAddName:        msgAdminAskName,
	flow.StepAdminAddPrice:       msgAdminAskPrice,
	flow.StepAdminAddDescription: msgAdminAskDescription,
	flow.StepAdminAddImage:       msgAdminAskImage,
	flow.StepAdminAddCategory:    msgAdminAskCategory,
	flow.StepAdminDeleteName:     msgAdminAskDelete,
}

func (b *Bot) beginAdmin(ctx context.Context, chatID, userID int64, begin func(context.Context, int64) error, prompt string) {
	if err := begin(ctx, userID); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendWithKeyboard(chatID, prompt, backKeyboard())
}

func (b *Bot) handleAdminText(ctx context.Context, chatID, userID int64, text string) {
	out, err := b.adminService.HandleInput(ctx, userID, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		if errors.Is(err, models.ErrInvalidPrice) {
			b.sendWithKeyboard(chatID, msgAdminAskPrice, backKeyboard())
		}
		return
	}

	switch {
	case out.Product != nil:
		zerolog.Ctx(ctx).Info().Str("product", out.Product.Name).Msg("Product added by admin")
		b.sendWithMainMenu(chatID, userID, fmt.Sprintf(msgAdminAdded, out.Product.Name, formatPrice(out.Product.Price, b.currency())))
	case out.Deleted != "":
		zerolog.Ctx(ctx).Info().Str("product", out.Deleted).Msg("Product deleted by admin")
		b.sendWithMainMenu(chatID, userID, fmt.Sprintf(msgAdminDeleted, out.Deleted))
	default:
		if prompt, ok := adminPrompts[out.Step]; ok {
			b.sendWithKeyboard(chatID, prompt, backKeyboard())
		}
	}
}

// handleAddPromo parses "/add_promo CODE PERCENT".
func (b *Bot) handleAddPromo(ctx context.Context, chatID, userID int64, args string) {
	if !b.adminService.IsAdmin(userID) {
		b.replyError(ctx, chatID, models.ErrForbidden)
		return
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.sendMessage(chatID, msgAdminPromoUsage)
		return
	}
	discount, err := strconv.Atoi(strings.TrimSuffix(fields[1], "%"))
	if err != nil {
		b.sendMessage(chatID, msgAdminPromoUsage)
		return
	}

	promo, err := b.adminService.AddPromoCode(ctx, userID, fields[0], discount)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(msgAdminPromoAdded, promo.Code, promo.Discount))
}

func (b *Bot) handleExportOrders(ctx context.Context, chatID, userID int64) {
	if !b.adminService.IsAdmin(userID) {
		b.replyError(ctx, chatID, models.ErrForbidden)
		return
	}

	orders, err := b.orderService.GetAllOrders(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(orders) == 0 {
		b.sendMessage(chatID, msgAdminExportEmpty)
		return
	}

	path, err := b.exportOrdersToExcel(ctx, orders)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendExport(ctx, chatID, path, fmt.Sprintf("📊 Buyurtmalar: %d ta", len(orders)))
}

func (b *Bot) handleExportUsers(ctx context.Context, chatID, userID int64) {
	if !b.adminService.IsAdmin(userID) {
		b.replyError(ctx, chatID, models.ErrForbidden)
		return
	}

	users, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	path, err := b.exportUsersToExcel(ctx, users)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendExport(ctx, chatID, path, fmt.Sprintf("👥 Foydalanuvchilar: %d ta", len(users)))
}

// handleStats показывает администратору сводку по покупателям и заказам
func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	if !b.adminService.IsAdmin(userID) {
		b.replyError(ctx, chatID, models.ErrForbidden)
		return
	}

	users, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	active, err := b.userService.GetActiveUsers(ctx, 7)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	orders, err := b.orderService.GetAllOrders(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	blacklisted := 0
	for _, u := range users {
		if u.IsBlacklisted {
			blacklisted++
		}
	}

	var sb strings.Builder
	sb.WriteString(msgAdminStatsTitle + "\n\n")
	sb.WriteString(fmt.Sprintf("👥 Foydalanuvchilar: %d\n", len(users)))
	sb.WriteString(fmt.Sprintf("Faol (7 kun): %d\n", len(active)))
	sb.WriteString(fmt.Sprintf("Qora ro'yxatda: %d\n\n", blacklisted))

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	periods := []struct {
		label string
		since time.Time
	}{
		{"Bugun", today},
		{"7 kun", today.AddDate(0, 0, -6)},
		{"Jami", time.Time{}},
	}
	sb.WriteString("📦 Buyurtmalar\n")
	for _, p := range periods {
		count, revenue := orderSummary(orders, p.since)
		sb.WriteString(fmt.Sprintf("%s: %d ta, %s\n", p.label, count, formatPrice(revenue, b.currency())))
	}

	if top, err := b.orderService.TopProducts(ctx, 3); err == nil && len(top) > 0 {
		sb.WriteString("\n🔥 Top mahsulotlar\n")
		for i, pc := range top {
			sb.WriteString(fmt.Sprintf("%d. %s × %d\n", i+1, pc.Name, pc.Quantity))
		}
	}

	b.sendMessage(chatID, sb.String())
}

func orderSummary(orders []*models.Order, since time.Time) (int, int64) {
	count := 0
	var revenue int64
	for _, o := range orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		count++
		revenue += o.TotalPrice
	}
	return count, revenue
}

// sendExport uploads the file and removes it from disk afterwards.
func (b *Bot) sendExport(ctx context.Context, chatID int64, path, caption string) {
	defer func() {
		if err := os.Remove(path); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("Failed to remove export file")
		}
	}()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.tgService.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to send export file")
		b.sendMessage(chatID, b.getErrorMessage(err))
	}
}

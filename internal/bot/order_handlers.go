package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storebot/internal/flow"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

const maxOrdersShown = 10

func (b *Bot) startCheckout(ctx context.Context, chatID, userID int64, username string) {
	if err := b.orderService.StartOrder(ctx, userID, externalID(username, userID)); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if b.metrics != nil {
		b.metrics.CheckoutsStarted.Inc()
	}
	b.renderOrderOutcome(ctx, chatID, userID, &models.Outcome{Step: flow.StepOrderName}, nil)
}

func (b *Bot) onCheckout(ctx context.Context, req callbackRequest, _ Command) {
	b.startCheckout(ctx, req.chatID, req.userID, req.username)
}

func (b *Bot) handleOrderText(ctx context.Context, chatID, userID int64, step flow.Step, text string) {
	if !flow.Accepts(step, flow.EventText) {
		// здесь ждём кнопку: шаг не меняем и показываем её снова
		b.sendWithMainMenu(chatID, userID, msgUnknown)
		b.renderOrderOutcome(ctx, chatID, userID, &models.Outcome{Step: step}, nil)
		return
	}
	if step == flow.StepOrderPhone {
		if n := normalizePhone(text); n != "" {
			text = "+" + n
		}
	}
	out, err := b.orderService.HandleInput(ctx, userID, models.Input{Event: flow.EventText, Text: text})
	b.renderOrderOutcome(ctx, chatID, userID, out, err)
}

func (b *Bot) onSubmit(ctx context.Context, req callbackRequest, _ Command) {
	out, err := b.orderService.Submit(ctx, req.userID)
	b.renderOrderOutcome(ctx, req.chatID, req.userID, out, err)
}

func (b *Bot) onConfirm(ctx context.Context, req callbackRequest, cmd Command) {
	out, err := b.orderService.Confirm(ctx, req.userID, cmd.Arg == "yes")
	b.renderOrderOutcome(ctx, req.chatID, req.userID, out, err)
}

func (b *Bot) onBack(ctx context.Context, req callbackRequest, _ Command) {
	b.cancelFlow(ctx, req.chatID, req.userID)
}

// renderOrderOutcome shows the prompt for the step the checkout moved to.
func (b *Bot) renderOrderOutcome(ctx context.Context, chatID, userID int64, out *models.Outcome, err error) {
	if err != nil {
		b.replyError(ctx, chatID, err)
		switch {
		case errors.Is(err, models.ErrIncompleteDelivery):
			// сессия уже возвращена на шаг адреса
			b.sendWithKeyboard(chatID, msgAskLocation, locationKeyboard())
		case errors.Is(err, models.ErrEmptyCart), errors.Is(err, models.ErrNoActiveFlow):
			b.sendWithMainMenu(chatID, userID, msgMainMenu)
		}
		return
	}
	if out == nil {
		return
	}

	switch out.Step {
	case flow.StepOrderName:
		b.sendWithKeyboard(chatID, msgAskName, backKeyboard())
	case flow.StepOrderPhone:
		b.sendWithKeyboard(chatID, msgAskPhone, contactKeyboard())
	case flow.StepOrderLocation:
		b.sendWithKeyboard(chatID, msgAskLocation, locationKeyboard())
	case flow.StepAwaitingSubmit:
		text := msgAskSubmit
		if len(out.Missing) > 0 {
			text += "\n\n" + missingText(out.Missing)
		}
		b.sendWithMainMenu(chatID, userID, text)
		b.sendInline(chatID, "👇", submitKeyboard())
	case flow.StepConfirmation:
		b.sendInline(chatID, b.confirmationText(ctx, userID), confirmKeyboard())
	case flow.StepIdle:
		if out.Order == nil {
			b.sendWithMainMenu(chatID, userID, msgCancelled)
			return
		}
		if b.metrics != nil {
			b.metrics.OrdersConfirmed.Inc()
		}
		zerolog.Ctx(ctx).Info().Int64("order_id", out.Order.ID).Int64("total", out.Order.TotalPrice).Msg("Order confirmed")
		b.sendWithMainMenu(chatID, userID, fmt.Sprintf(msgOrderAccepted, out.Order.ID, formatPrice(out.Order.TotalPrice, b.currency())))
	}
}

// confirmationText summarizes the cart and delivery info before the final yes.
func (b *Bot) confirmationText(ctx context.Context, userID int64) string {
	var sb strings.Builder
	sb.WriteString("🧾 Buyurtmangiz:\n\n")

	cart, err := b.cartService.GetCart(ctx, userID)
	if err == nil {
		snapshot, snapErr := b.catalogService.Snapshot(ctx)
		scratch, _ := b.stateService.GetScratch(ctx, userID)
		if snapErr == nil {
			state := &models.UserState{Scratch: scratch}
			sb.WriteString(b.cartText(cart, snapshot, state.GetString(models.ScratchPromoCode), state.GetInt(models.ScratchPromoDiscount)))
			sb.WriteString("\n\n")
			if name := state.GetString(models.ScratchName); name != "" {
				sb.WriteString(fmt.Sprintf("👤 %s\n", name))
			}
			if phone := state.GetString(models.ScratchPhone); phone != "" {
				sb.WriteString(fmt.Sprintf("📱 %s\n", formatPhoneForDisplay(phone)))
			}
			info := models.DeliveryInfo{
				Location: state.GetString(models.ScratchLocation),
				Address:  state.GetString(models.ScratchAddress),
			}
			if dest := info.Destination(); dest != "" {
				sb.WriteString(fmt.Sprintf("📍 %s\n", dest))
			}
			sb.WriteString("\n")
		}
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to build confirmation summary")
	}

	sb.WriteString(msgConfirmOrder)
	return sb.String()
}

func (b *Bot) showUserOrders(ctx context.Context, chatID, userID int64) {
	orders, err := b.orderService.GetUserOrders(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(orders) == 0 {
		b.sendMessage(chatID, msgNoOrders)
		return
	}

	// последние заказы в конце списка
	if len(orders) > maxOrdersShown {
		orders = orders[len(orders)-maxOrdersShown:]
	}
	var sb strings.Builder
	for _, o := range orders {
		sb.WriteString(b.orderText(o))
		sb.WriteString("\n")
	}
	b.sendMessage(chatID, sb.String())
}

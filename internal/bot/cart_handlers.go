package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"storebot/internal/flow"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

func (b *Bot) showCart(ctx context.Context, chatID int64, messageID int, userID int64) {
	cart, err := b.cartService.GetCart(ctx, userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if cart.IsEmpty() {
		if messageID != 0 {
			b.sendOrEdit(chatID, messageID, msgEmptyCart, categoriesKeyboard(nil))
			return
		}
		b.sendMessage(chatID, msgEmptyCart)
		return
	}

	snapshot, err := b.catalogService.Snapshot(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	scratch, err := b.stateService.GetScratch(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to read staged promo")
	}
	discount, _ := strconv.Atoi(scratch[models.ScratchPromoDiscount])

	lines, _ := cartLines(cart, snapshot)
	text := b.cartText(cart, snapshot, scratch[models.ScratchPromoCode], discount)
	b.sendOrEdit(chatID, messageID, text, cartKeyboard(lines))
}

func (b *Bot) onCart(ctx context.Context, req callbackRequest, _ Command) {
	b.showCart(ctx, req.chatID, 0, req.userID)
}

// changeQuantity applies fn to the current quantity of the product in cmd and
// redraws the cart in place.
func (b *Bot) changeQuantity(ctx context.Context, req callbackRequest, cmd Command, fn func(qty int) int) {
	id, err := cmd.ID()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Bad cart callback")
		return
	}
	product, err := b.catalogService.GetProductByID(ctx, id)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	cart, err := b.cartService.GetCart(ctx, req.userID)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	if _, err := b.cartService.UpdateQuantity(ctx, req.userID, product.Name, fn(cart.Quantity(product.Name))); err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	b.showCart(ctx, req.chatID, req.messageID, req.userID)
}

func (b *Bot) onInc(ctx context.Context, req callbackRequest, cmd Command) {
	b.changeQuantity(ctx, req, cmd, func(qty int) int { return qty + 1 })
}

func (b *Bot) onDec(ctx context.Context, req callbackRequest, cmd Command) {
	b.changeQuantity(ctx, req, cmd, func(qty int) int { return qty - 1 })
}

func (b *Bot) onRemove(ctx context.Context, req callbackRequest, cmd Command) {
	b.changeQuantity(ctx, req, cmd, func(int) int { return 0 })
}

func (b *Bot) onClearCart(ctx context.Context, req callbackRequest, _ Command) {
	if err := b.cartService.ClearCart(ctx, req.userID); err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	b.showCart(ctx, req.chatID, req.messageID, req.userID)
}

// onEditQty opens the edit_qty step for one product.
func (b *Bot) onEditQty(ctx context.Context, req callbackRequest, cmd Command) {
	id, err := cmd.ID()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Bad edit callback")
		return
	}
	product, err := b.catalogService.GetProductByID(ctx, id)
	if err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	if err := b.stateService.SetTarget(ctx, req.userID, flow.StepEditQty, product.Name); err != nil {
		b.replyError(ctx, req.chatID, err)
		return
	}
	b.sendWithKeyboard(req.chatID, fmt.Sprintf(msgAskQty, product.Name), backKeyboard())
}

// handleEditQtyText sets the quantity typed at edit_qty. A value that is not
// a non-negative integer re-prompts and keeps the step.
func (b *Bot) handleEditQtyText(ctx context.Context, chatID, userID int64, target, text string) {
	qty, err := strconv.Atoi(text)
	if err != nil || qty < 0 {
		b.replyError(ctx, chatID, fmt.Errorf("%w: %q", models.ErrInvalidQuantity, text))
		return
	}

	b.finishBrowse(ctx, userID)
	if target == "" {
		b.sendWithMainMenu(chatID, userID, msgUnknown)
		return
	}
	if _, err := b.cartService.UpdateQuantity(ctx, userID, target, qty); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendWithMainMenu(chatID, userID, msgMainMenu)
	b.showCart(ctx, chatID, 0, userID)
}

func (b *Bot) onPromo(ctx context.Context, req callbackRequest, _ Command) {
	b.beginBrowse(ctx, req.chatID, req.userID, flow.StepPromoCode, msgAskPromo)
}

// handlePromoText applies the code typed at promo_code. An invalid code
// keeps the step so the user can retry or go back.
func (b *Bot) handlePromoText(ctx context.Context, chatID, userID int64, code string) {
	promo, err := b.orderService.ApplyPromoCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCart) {
			step := b.finishBrowse(ctx, userID)
			b.replyError(ctx, chatID, err)
			if step.Kind() == flow.KindOrder {
				b.renderOrderOutcome(ctx, chatID, userID, &models.Outcome{Step: step}, nil)
				return
			}
			b.sendWithMainMenu(chatID, userID, msgMainMenu)
			return
		}
		b.replyError(ctx, chatID, err)
		return
	}

	accepted := fmt.Sprintf("🎟 Promokod %s qabul qilindi: -%d%%", promo.Code, promo.Discount)
	state, err := b.stateService.GetState(ctx, userID)
	if err == nil && state != nil && state.Step.Kind() == flow.KindOrder {
		b.sendMessage(chatID, accepted)
		b.renderOrderOutcome(ctx, chatID, userID, &models.Outcome{Step: state.Step}, nil)
		return
	}
	b.sendWithMainMenu(chatID, userID, accepted)
	b.showCart(ctx, chatID, 0, userID)
}

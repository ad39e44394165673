package bot

import (
	"errors"

	"storebot/internal/models"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, models.ErrEmptyCart):
		return "🛒 Savatingiz bo'sh! Avval mahsulot qo'shing."
	case errors.Is(err, models.ErrProductNotFound):
		return "⚠️ Mahsulot topilmadi. Katalog yangilangan bo'lishi mumkin."
	case errors.Is(err, models.ErrInvalidPromoCode):
		return "⚠️ Promokod noto'g'ri yoki faol emas."
	case errors.Is(err, models.ErrIncompleteDelivery):
		return "⚠️ Yetkazib berish ma'lumotlari to'liq emas. Manzilni yozing yoki lokatsiyani yuboring."
	case errors.Is(err, models.ErrForbidden):
		return "⛔ Bu amal siz uchun mavjud emas."
	case errors.Is(err, models.ErrInvalidPrice):
		return "⚠️ Narx musbat butun son bo'lishi kerak. Qaytadan kiriting:"
	case errors.Is(err, models.ErrInvalidQuantity):
		return "⚠️ Miqdor musbat butun son bo'lishi kerak."
	case errors.Is(err, models.ErrOutOfStock):
		return "⚠️ Kechirasiz, omborda yetarli mahsulot yo'q. Savatni tahrirlang."
	case errors.Is(err, models.ErrInvalidProduct):
		return "⚠️ Mahsulot ma'lumotlari noto'g'ri."
	case errors.Is(err, models.ErrNoActiveFlow), errors.Is(err, models.ErrUnexpectedInput):
		return "🤔 Buyruq tushunarsiz. Menyudan tanlang."
	}

	// Default error message
	return "❌ Xatolik yuz berdi. Iltimos, keyinroq qayta urinib ko'ring."
}

// isUserError reports whether err is a refusal the user can act on rather
// than a failure of the bot.
func isUserError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyCart,
		models.ErrProductNotFound,
		models.ErrInvalidPromoCode,
		models.ErrIncompleteDelivery,
		models.ErrForbidden,
		models.ErrInvalidPrice,
		models.ErrInvalidQuantity,
		models.ErrOutOfStock,
		models.ErrInvalidProduct,
		models.ErrNoActiveFlow,
		models.ErrUnexpectedInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) currency() string {
	if b.config == nil || b.config.Bot.Currency == "" {
		return "so'm"
	}
	return b.config.Bot.Currency
}

// formatPrice groups thousands with spaces: 13500 -> "13 500 so'm".
func formatPrice(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(fmt.Sprintf("%s%s %s", sign, sb.String(), currency))
}

func md(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

func (b *Bot) productCaption(p *models.Product) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", md(p.Name)))
	if p.Category != "" {
		sb.WriteString(fmt.Sprintf("📂 %s\n", md(p.Category)))
	}
	if p.Discount > 0 {
		sb.WriteString(fmt.Sprintf("💰 *%s* (-%d%%, avval %s)\n",
			md(formatPrice(p.DiscountedPrice(), b.currency())), p.Discount, md(formatPrice(p.Price, b.currency()))))
	} else {
		sb.WriteString(fmt.Sprintf("💰 *%s*\n", md(formatPrice(p.Price, b.currency()))))
	}
	if p.TracksStock() {
		sb.WriteString(fmt.Sprintf("📦 Omborda: %d ta\n", *p.Stock))
	}
	if p.Description != "" {
		sb.WriteString("\n" + md(p.Description))
	}
	return sb.String()
}

func (b *Bot) productLine(i int, p *models.Product) string {
	price := formatPrice(p.DiscountedPrice(), b.currency())
	if p.Discount > 0 {
		return fmt.Sprintf("%d. %s - %s (-%d%%)", i, p.Name, price, p.Discount)
	}
	return fmt.Sprintf("%d. %s - %s", i, p.Name, price)
}

// cartLine is one priced row of the cart view.
type cartLine struct {
	Product  models.Product
	Quantity int
}

// cartLines splits the cart into lines that can still be priced and names
// that disappeared from the catalog, both sorted by name.
func cartLines(cart *models.Cart, snapshot map[string]models.Product) ([]cartLine, []string) {
	var lines []cartLine
	var missing []string
	for name, qty := range cart.Items {
		p, ok := snapshot[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		lines = append(lines, cartLine{Product: p, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return strings.ToLower(lines[i].Product.Name) < strings.ToLower(lines[j].Product.Name)
	})
	sort.Strings(missing)
	return lines, missing
}

func (b *Bot) cartText(cart *models.Cart, snapshot map[string]models.Product, promoCode string, promoDiscount int) string {
	lines, missing := cartLines(cart, snapshot)

	var sb strings.Builder
	sb.WriteString("🛒 Savatingiz:\n\n")
	for i, l := range lines {
		sum := l.Product.DiscountedPrice() * int64(l.Quantity)
		sb.WriteString(fmt.Sprintf("%d. %s × %d = %s\n", i+1, l.Product.Name, l.Quantity, formatPrice(sum, b.currency())))
	}
	for _, name := range missing {
		sb.WriteString(fmt.Sprintf("⚠️ %s - sotuvda yo'q\n", name))
	}

	total := cart.TotalPrice(snapshot)
	sb.WriteString(fmt.Sprintf("\nJami: %s", formatPrice(total, b.currency())))
	if promoCode != "" && promoDiscount > 0 {
		sb.WriteString(fmt.Sprintf("\n🎟 %s (-%d%%): %s", promoCode, promoDiscount,
			formatPrice(models.ApplyPromo(total, promoDiscount), b.currency())))
	}
	return sb.String()
}

func (b *Bot) orderText(order *models.Order) string {
	names := make([]string, 0, len(order.Items))
	for name := range order.Items {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📦 Buyurtma #%d (%s)\n", order.ID, order.CreatedAt.Format("02.01.2006 15:04")))
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("• %s × %d\n", name, order.Items[name]))
	}
	if order.PromoCode != "" {
		sb.WriteString(fmt.Sprintf("🎟 %s (-%d%%)\n", order.PromoCode, order.PromoDiscount))
	}
	sb.WriteString(fmt.Sprintf("Jami: %s\n", formatPrice(order.TotalPrice, b.currency())))
	if dest := order.Info.Destination(); dest != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", dest))
	}
	return sb.String()
}

var missingFieldNames = map[string]string{
	"name":        "ism",
	"phone":       "telefon",
	"location":    "manzil yoki lokatsiya",
	"external_id": "Telegram foydalanuvchi",
}

func missingText(missing []string) string {
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		if label, ok := missingFieldNames[m]; ok {
			out = append(out, label)
			continue
		}
		out = append(out, m)
	}
	return fmt.Sprintf(msgMissingFields, strings.Join(out, ", "))
}

// normalizePhone приводит узбекский номер к виду 998XXXXXXXXX.
// Неверный формат возвращает пустую строку.
func normalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	cleaned := sb.String()

	switch {
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "998"):
		return cleaned
	case len(cleaned) == 9:
		return "998" + cleaned // 90XXXXXXX -> 99890XXXXXXX
	}
	return ""
}

// formatPhoneForDisplay: 998901234567 -> +998 (90) 123-45-67.
func formatPhoneForDisplay(phone string) string {
	n := normalizePhone(phone)
	if n == "" {
		return phone
	}
	return fmt.Sprintf("+%s (%s) %s-%s-%s", n[:3], n[3:5], n[5:8], n[8:10], n[10:])
}

// externalID is how the shop reaches the customer outside the bot.
func externalID(username string, userID int64) string {
	if username != "" {
		return "@" + username
	}
	return strconv.FormatInt(userID, 10)
}

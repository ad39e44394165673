package bot

import (
	"fmt"

	"storebot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCatalog),
			tgbotapi.NewKeyboardButton(btnCart),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSearch),
			tgbotapi.NewKeyboardButton(btnPromo),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnOrders),
			tgbotapi.NewKeyboardButton(btnTop),
		),
	}
	if isAdmin {
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnAdminAdd),
				tgbotapi.NewKeyboardButton(btnAdminDelete),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnAdminExport),
			),
		)
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(btnContact)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	return keyboard
}

func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(btnLocation)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	return keyboard
}

func categoriesKeyboard(categories []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msgAllProducts, listArgs{}.String()),
		),
	}
	for _, c := range categories {
		data := listArgs{Category: c}.String()
		if !fitsCallback(data) {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📂 "+c, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func sortRow(args listArgs) []tgbotapi.InlineKeyboardButton {
	option := func(label, key string) tgbotapi.InlineKeyboardButton {
		if args.SortBy == key || (args.SortBy == "" && key == models.SortByName) {
			label = "• " + label
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, listArgs{Category: args.Category, SortBy: key}.String())
	}
	return tgbotapi.NewInlineKeyboardRow(
		option("A-Z", models.SortByName),
		option("💲↑", models.SortByPriceAsc),
		option("💲↓", models.SortByPriceDesc),
		option("%", models.SortByDiscount),
	)
}

func productKeyboard(p *models.Product) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Savatga qo'shish", productCommand(CmdAdd, p.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCart, Command{Kind: CmdCart}.String()),
			tgbotapi.NewInlineKeyboardButtonData("📂 Kategoriyalar", Command{Kind: CmdCategories}.String()),
		),
	)
}

func cartKeyboard(lines []cartLine) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lines)+3)
	for _, l := range lines {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", productCommand(CmdDec, l.Product.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s × %d ✏️", l.Product.Name, l.Quantity), productCommand(CmdEditQty, l.Product.ID)),
			tgbotapi.NewInlineKeyboardButtonData("➕", productCommand(CmdInc, l.Product.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌", productCommand(CmdRemove, l.Product.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnPromo, Command{Kind: CmdPromo}.String()),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Tozalash", Command{Kind: CmdClearCart}.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Buyurtma berish", Command{Kind: CmdCheckout}.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCatalog, Command{Kind: CmdCategories}.String()),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func submitKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Yuborish", Command{Kind: CmdSubmit}.String()),
			tgbotapi.NewInlineKeyboardButtonData(btnBack, Command{Kind: CmdBack}.String()),
		),
	)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Ha", Command{Kind: CmdConfirm, Arg: "yes"}.String()),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Yo'q", Command{Kind: CmdConfirm, Arg: "no"}.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Bekor qilish", Command{Kind: CmdBack}.String()),
		),
	)
}

package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storebot/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet = "Buyurtmalar"
	usersSheet  = "Foydalanuvchilar"
)

var orderHeaders = []string{
	"ID", "User ID", "Ism", "Telefon", "Telegram", "Manzil",
	"Mahsulotlar", "Promokod", "Jami", "Holat", "Sana",
}

var userHeaders = []string{
	"ID", "Telegram ID", "Username", "Ism", "Familiya", "Telefon",
	"Admin", "Qora ro'yxat", "Til", "Oxirgi faollik", "Ro'yxatdan o'tgan",
}

func (b *Bot) exportDir() string {
	if b.config == nil || b.config.Exports.Path == "" {
		return "./exports"
	}
	return b.config.Exports.Path
}

// newWorkbook создает файл с одним листом и жирной строкой заголовков
func newWorkbook(sheet string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	return f, nil
}

func (b *Bot) saveWorkbook(f *excelize.File, prefix string) (string, error) {
	dir := b.exportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}
	fileName := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

// exportOrdersToExcel пишет все заказы, по одной строке на заказ
func (b *Bot) exportOrdersToExcel(_ context.Context, orders []*models.Order) (string, error) {
	f, err := newWorkbook(ordersSheet, orderHeaders)
	if err != nil {
		return "", err
	}
	defer f.Close()

	wrap, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	for i, order := range orders {
		row := i + 2
		values := []any{
			order.ID,
			order.UserID,
			order.Info.Name,
			order.Info.Phone,
			order.Info.ExternalID,
			order.Info.Destination(),
			itemsCell(order.Items),
			promoCell(order),
			order.TotalPrice,
			order.Status,
			order.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(ordersSheet, cell, v)
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		_ = f.SetCellStyle(ordersSheet, first, last, wrap)
	}

	_ = f.SetColWidth(ordersSheet, "A", "B", 12)
	_ = f.SetColWidth(ordersSheet, "C", "E", 18)
	_ = f.SetColWidth(ordersSheet, "F", "G", 30)
	_ = f.SetColWidth(ordersSheet, "H", "K", 15)

	return b.saveWorkbook(f, "orders_export")
}

func itemsCell(items models.OrderItems) string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s × %d", name, items[name]))
	}
	return strings.Join(lines, "\n")
}

func promoCell(order *models.Order) string {
	if order.PromoCode == "" {
		return ""
	}
	return fmt.Sprintf("%s (-%d%%)", order.PromoCode, order.PromoDiscount)
}

// exportUsersToExcel создает Excel файл с данными пользователей
func (b *Bot) exportUsersToExcel(_ context.Context, users []*models.User) (string, error) {
	f, err := newWorkbook(usersSheet, userHeaders)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for i, user := range users {
		row := i + 2
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("A%d", row), user.ID)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("B%d", row), user.TelegramID)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("C%d", row), user.Username)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("D%d", row), user.FirstName)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("E%d", row), user.LastName)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("F%d", row), user.Phone)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("G%d", row), boolToYesNo(b.adminService.IsAdmin(user.TelegramID)))
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("H%d", row), boolToYesNo(user.IsBlacklisted))
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("I%d", row), user.LanguageCode)
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("J%d", row), user.LastActivity.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(usersSheet, fmt.Sprintf("K%d", row), user.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(usersSheet, "A", "A", 10)
	_ = f.SetColWidth(usersSheet, "B", "F", 16)
	_ = f.SetColWidth(usersSheet, "G", "I", 12)
	_ = f.SetColWidth(usersSheet, "J", "K", 20)

	return b.saveWorkbook(f, "users_export")
}

func boolToYesNo(v bool) string {
	if v {
		return "Ha"
	}
	return "Yo'q"
}

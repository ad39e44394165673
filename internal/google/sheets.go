package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"storebot/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const timeLayout = "2006-01-02 15:04:05"

var orderHeaders = []interface{}{
	"ID", "User ID", "Name", "Phone", "Contact", "Destination", "Items", "Promo", "Total", "Status", "Created At",
}

// ErrRowNotFound is returned when an order has no row in the sheet yet.
var ErrRowNotFound = errors.New("order row not found")

// SheetsService mirrors confirmed orders into one sheet of a spreadsheet.
// Column A holds the order id; rowCache maps ids to 1-based row numbers.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsService(srv, spreadsheetID, sheetName), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID, sheetName string) *SheetsService {
	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[int64]int),
	}
}

func (s *SheetsService) rangeOf(cells string) string {
	return s.sheetName + "!" + cells
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail возвращает email сервисного аккаунта, которому нужно
// выдать доступ к таблице.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A:A")).Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id
	}
	return 0
}

// AppendOrder добавляет заказ в конец листа
func (s *SheetsService) AppendOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{orderRowValues(order)},
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeOf("A:A"), valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	if resp.Updates != nil {
		if row := firstRow(resp.Updates.UpdatedRange); row > 0 {
			s.setCachedRow(order.ID, row)
		}
	}
	return nil
}

// firstRow extracts the starting row from a range like "Orders!A10:K10".
func firstRow(updatedRange string) int {
	if i := strings.LastIndex(updatedRange, "!"); i >= 0 {
		updatedRange = updatedRange[i+1:]
	}
	if i := strings.Index(updatedRange, ":"); i >= 0 {
		updatedRange = updatedRange[:i]
	}
	digits := strings.TrimLeft(updatedRange, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	row, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return row
}

// UpsertOrder rewrites the order row, appending it when missing. Retried
// sync tasks use it so that a repeat never duplicates a row.
func (s *SheetsService) UpsertOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	rowIdx, err := s.FindOrderRow(ctx, order.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.AppendOrder(ctx, order)
		}
		return err
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{orderRowValues(order)},
	}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeOf(fmt.Sprintf("A%d:K%d", rowIdx, rowIdx)), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// UpdateOrderStatus меняет статус заказа в колонке J
func (s *SheetsService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	rowIdx, err := s.FindOrderRow(ctx, orderID)
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeOf(fmt.Sprintf("J%d:J%d", rowIdx, rowIdx)), &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// FindOrderRow locates the row (1-based) for orderID in column A with cache.
func (s *SheetsService) FindOrderRow(ctx context.Context, orderID int64) (int, error) {
	if orderID == 0 {
		return 0, fmt.Errorf("order id is required")
	}
	if row, ok := s.getCachedRow(orderID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if cellID(row) == orderID {
			rowIdx := i + 1
			s.setCachedRow(orderID, rowIdx)
			return rowIdx, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrRowNotFound, orderID)
}

// ReplaceOrders полностью перезаписывает лист заказов
func (s *SheetsService) ReplaceOrders(ctx context.Context, orders []*models.Order) error {
	values := [][]interface{}{orderHeaders}
	for _, o := range orders {
		values = append(values, orderRowValues(o))
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.rangeOf("A:K"), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to clear sheet: %w", err)
	}
	s.ClearCache()

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeOf(fmt.Sprintf("A1:K%d", len(values))), &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for i, o := range orders {
		s.rowCache[o.ID] = i + 2
	}
	return nil
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

// FormatItems renders order items as "Name x qty" pairs in name order.
func FormatItems(items models.OrderItems) string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s x%d", name, items[name]))
	}
	return strings.Join(parts, ", ")
}

func orderRowValues(order *models.Order) []interface{} {
	return []interface{}{
		order.ID,
		order.UserID,
		order.Info.Name,
		order.Info.Phone,
		order.Info.ExternalID,
		order.Info.Destination(),
		FormatItems(order.Items),
		order.PromoCode,
		order.TotalPrice,
		order.Status,
		order.CreatedAt.Format(timeLayout),
	}
}

package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storebot/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(ctx context.Context, t *testing.T) (*http.ServeMux, *SheetsService) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("sheets.NewService: %v", err)
	}
	return mux, newSheetsService(srv, "orders_tid", "Orders")
}

func testOrder(id int64) *models.Order {
	return &models.Order{
		ID:         id,
		UserID:     1001,
		Items:      models.OrderItems{"Sut": 1, "Non": 3},
		TotalPrice: 25500,
		PromoCode:  "SALE10",
		Info:       models.DeliveryInfo{Name: "Ali", Phone: "+998901234567", Address: "Chilonzor 9", ExternalID: "@ali"},
		Status:     models.OrderStatusPending,
		CreatedAt:  time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestSheetsService_TestConnection(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	if err := s.TestConnection(ctx); err != nil {
		t.Errorf("TestConnection failed: %v", err)
	}
}

func TestSheetsService_WarmUpCache(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"ID"}, {"123"}, {}, {456}},
		})
	})
	if err := s.WarmUpCache(ctx); err != nil {
		t.Fatalf("WarmUpCache failed: %v", err)
	}
	if row, ok := s.getCachedRow(123); !ok || row != 2 {
		t.Errorf("Expected row 2 for ID 123, got %d", row)
	}
	if row, ok := s.getCachedRow(456); !ok || row != 4 {
		t.Errorf("Expected row 4 for ID 456, got %d", row)
	}
}

func TestSheetsService_AppendOrder(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	var got sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
			Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Orders!A10:K10"},
		})
	})

	if err := s.AppendOrder(ctx, testOrder(789)); err != nil {
		t.Fatalf("AppendOrder failed: %v", err)
	}
	if row, _ := s.getCachedRow(789); row != 10 {
		t.Errorf("Expected cached row 10, got %d", row)
	}
	if len(got.Values) != 1 || len(got.Values[0]) != len(orderHeaders) {
		t.Fatalf("unexpected appended values: %v", got.Values)
	}
	if items := got.Values[0][6]; items != "Non x3, Sut x1" {
		t.Errorf("unexpected items cell %v", items)
	}
}

func TestSheetsService_UpsertOrder(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	updated := false
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}, {"5"}}})
	})
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A2:K2", func(w http.ResponseWriter, r *http.Request) {
		updated = true
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	if err := s.UpsertOrder(ctx, testOrder(5)); err != nil {
		t.Fatalf("UpsertOrder failed: %v", err)
	}
	if !updated {
		t.Error("expected existing row to be rewritten")
	}
}

func TestSheetsService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	s.setCachedRow(123, 2)

	var got sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!J2:J2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	if err := s.UpdateOrderStatus(ctx, 123, "delivered"); err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if len(got.Values) != 1 || got.Values[0][0] != "delivered" {
		t.Errorf("unexpected status payload %v", got.Values)
	}
}

func TestSheetsService_FindOrderRowMissing(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})

	_, err := s.FindOrderRow(ctx, 42)
	if !errors.Is(err, ErrRowNotFound) {
		t.Errorf("expected ErrRowNotFound, got %v", err)
	}
	if _, err := s.FindOrderRow(ctx, 0); err == nil {
		t.Error("expected error for zero id")
	}
}

func TestSheetsService_ReplaceOrders(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	s.setCachedRow(999, 7)

	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A:K:clear", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
	})
	mux.HandleFunc("/v4/spreadsheets/orders_tid/values/Orders!A1:K3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	if err := s.ReplaceOrders(ctx, []*models.Order{testOrder(1), testOrder(2)}); err != nil {
		t.Fatalf("ReplaceOrders failed: %v", err)
	}
	if row, _ := s.getCachedRow(2); row != 3 {
		t.Errorf("Expected row 3 for order 2, got %d", row)
	}
	if _, ok := s.getCachedRow(999); ok {
		t.Error("stale cache entry survived replace")
	}
}

func TestFirstRow(t *testing.T) {
	tests := map[string]int{
		"Orders!A10:K10": 10,
		"A2":             2,
		"Orders!A:A":     0,
		"":               0,
	}
	for in, want := range tests {
		if got := firstRow(in); got != want {
			t.Errorf("firstRow(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestServiceAccountEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(`{"client_email":"bot@project.iam.gserviceaccount.com"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	email, err := ServiceAccountEmail(path)
	if err != nil {
		t.Fatalf("ServiceAccountEmail failed: %v", err)
	}
	if email != "bot@project.iam.gserviceaccount.com" {
		t.Errorf("unexpected email %q", email)
	}

	if _, err := ServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	OrderStatusPending = "pending"
)

// OrderItems is the frozen copy of a cart: product name to quantity.
type OrderItems map[string]int

func (i OrderItems) Value() (driver.Value, error) {
	if i == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]int(i))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (i *OrderItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*i = OrderItems{}
		return nil
	default:
		return fmt.Errorf("order items: unsupported type %T", src)
	}
	m := make(map[string]int)
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("order items: %w", err)
	}
	*i = m
	return nil
}

// DeliveryInfo is what the customer supplied during checkout.
type DeliveryInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Location   string `json:"location,omitempty"`
	Address    string `json:"address,omitempty"`
	ExternalID string `json:"external_id"`
}

// Missing lists required delivery fields that are still empty.
func (d DeliveryInfo) Missing() []string {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.Location == "" && d.Address == "" {
		missing = append(missing, "location")
	}
	if d.ExternalID == "" {
		missing = append(missing, "external_id")
	}
	return missing
}

// Destination returns the address when given, the shared location otherwise.
func (d DeliveryInfo) Destination() string {
	if d.Address != "" {
		return d.Address
	}
	return d.Location
}

// Order is written once at confirmation and never updated.
type Order struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	Items         OrderItems   `json:"items"`
	TotalPrice    int64        `json:"total_price"`
	PromoCode     string       `json:"promo_code,omitempty"`
	PromoDiscount int          `json:"promo_discount,omitempty"`
	Info          DeliveryInfo `json:"user_info"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ApplyPromo reduces total by a cart-wide percentage, rounding down.
func ApplyPromo(total int64, discount int) int64 {
	if discount <= 0 {
		return total
	}
	if discount > 100 {
		discount = 100
	}
	return total * int64(100-discount) / 100
}

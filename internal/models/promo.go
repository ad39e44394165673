package models

import "strings"

// PromoCode grants a cart-wide percentage discount at checkout.
type PromoCode struct {
	Code     string `yaml:"code" json:"code"`
	Discount int    `yaml:"discount" json:"discount"`
	Active   bool   `yaml:"active" json:"active"`
}

// NormalizePromoCode makes codes case-insensitive.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports whether the code can be applied to a cart.
func (p PromoCode) Usable() bool {
	return p.Active && p.Discount > 0 && p.Discount <= 100
}

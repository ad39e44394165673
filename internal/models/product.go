package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Product is a catalog entry. Name is the unique key used by carts and orders.
type Product struct {
	ID          int64     `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Price       int64     `yaml:"price" json:"price"`
	Description string    `yaml:"description" json:"description"`
	ImageURL    string    `yaml:"image_url" json:"image_url"`
	Category    string    `yaml:"category" json:"category"`
	Discount    int       `yaml:"discount" json:"discount"`
	Stock       *int64    `yaml:"stock,omitempty" json:"stock,omitempty"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

// DiscountedPrice applies the per-product discount, rounding down.
func (p Product) DiscountedPrice() int64 {
	return p.Price * int64(100-p.Discount) / 100
}

// TracksStock reports whether checkout has to decrement stock for this product.
func (p Product) TracksStock() bool {
	return p.Stock != nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProduct)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: %q has non-positive price %d", ErrInvalidPrice, p.Name, p.Price)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: %q has discount %d outside 0..100", ErrInvalidProduct, p.Name, p.Discount)
	}
	if p.Stock != nil && *p.Stock < 0 {
		return fmt.Errorf("%w: %q has negative stock", ErrInvalidProduct, p.Name)
	}
	return nil
}

// Sort keys accepted by catalog listings.
const (
	SortByName      = "name"
	SortByPriceAsc  = "price_asc"
	SortByPriceDesc = "price_desc"
	SortByDiscount  = "discount"
)

// ProductFilter narrows a catalog listing. Zero value lists everything by name.
type ProductFilter struct {
	Category string
	SortBy   string
}

// SortProducts orders products in place by one of the sort keys. Unknown
// keys fall back to name order. Ties are broken by name.
func SortProducts(products []*Product, sortBy string) {
	byName := func(a, b *Product) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	var less func(a, b *Product) bool
	switch sortBy {
	case SortByPriceAsc:
		less = func(a, b *Product) bool {
			if a.DiscountedPrice() != b.DiscountedPrice() {
				return a.DiscountedPrice() < b.DiscountedPrice()
			}
			return byName(a, b)
		}
	case SortByPriceDesc:
		less = func(a, b *Product) bool {
			if a.DiscountedPrice() != b.DiscountedPrice() {
				return a.DiscountedPrice() > b.DiscountedPrice()
			}
			return byName(a, b)
		}
	case SortByDiscount:
		less = func(a, b *Product) bool {
			if a.Discount != b.Discount {
				return a.Discount > b.Discount
			}
			return byName(a, b)
		}
	default:
		less = byName
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

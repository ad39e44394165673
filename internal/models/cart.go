package models

import "fmt"

// Cart maps product names to positive quantities for a single user.
type Cart struct {
	UserID int64          `json:"user_id"`
	Items  map[string]int `json:"items"`
}

func NewCart(userID int64) *Cart {
	return &Cart{UserID: userID, Items: make(map[string]int)}
}

func (c *Cart) ensure() {
	if c.Items == nil {
		c.Items = make(map[string]int)
	}
}

// Add increments the quantity of name, inserting it when missing.
func (c *Cart) Add(name string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	c.ensure()
	c.Items[name] += qty
	return nil
}

// Remove drops name from the cart. Missing names are ignored.
func (c *Cart) Remove(name string) {
	delete(c.Items, name)
}

// UpdateQuantity sets the quantity of name; qty <= 0 removes the entry.
func (c *Cart) UpdateQuantity(name string, qty int) {
	if qty <= 0 {
		c.Remove(name)
		return
	}
	c.ensure()
	c.Items[name] = qty
}

func (c *Cart) Clear() {
	c.Items = make(map[string]int)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Quantity returns the quantity held for name, zero when absent.
func (c *Cart) Quantity(name string) int {
	return c.Items[name]
}

// TotalPrice sums discounted prices over entries still present in catalog.
// Entries whose product disappeared are skipped.
func (c *Cart) TotalPrice(catalog map[string]Product) int64 {
	var total int64
	for name, qty := range c.Items {
		p, ok := catalog[name]
		if !ok {
			continue
		}
		total += p.DiscountedPrice() * int64(qty)
	}
	return total
}

// Snapshot copies the cart contents for an order record.
func (c *Cart) Snapshot() OrderItems {
	items := make(OrderItems, len(c.Items))
	for name, qty := range c.Items {
		items[name] = qty
	}
	return items
}

package service

import (
	"sort"

	"storebot/internal/models"
)

// TopProducts ranks product names by total ordered quantity. Orders are
// expected oldest first; ties keep the order in which names were first
// seen, and names inside one order are visited alphabetically.
func TopProducts(orders []*models.Order, n int) []models.ProductCount {
	if n <= 0 {
		n = models.DefaultTopProducts
	}

	index := make(map[string]int)
	var counts []models.ProductCount
	for _, o := range orders {
		names := make([]string, 0, len(o.Items))
		for name := range o.Items {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			i, ok := index[name]
			if !ok {
				i = len(counts)
				index[name] = i
				counts = append(counts, models.ProductCount{Name: name})
			}
			counts[i].Quantity += o.Items[name]
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Quantity > counts[j].Quantity
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

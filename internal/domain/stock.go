package domain

import "fmt"

// NewStock creates the full item stock in bulk: perCategory items for every
// category, with stable ids like "solar-3". Items are never mutated after
// creation; they only move between the two board collections.
func NewStock(perCategory int) []Item {
	stock := make([]Item, 0, perCategory*len(Categories))
	for _, cat := range Categories {
		for i := 1; i <= perCategory; i++ {
			stock = append(stock, Item{ID: fmt.Sprintf("%s-%d", cat, i), Category: cat})
		}
	}
	return stock
}

// CountByCategory tallies items per category.
func CountByCategory(items []Item) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, it := range items {
		counts[it.Category]++
	}
	return counts
}

// ContainsItem reports whether the collection holds an item with the given id.
func ContainsItem(items []Item, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

package domain

import (
	"strings"
	"unicode/utf8"
)

type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"` // Leaf label from the category tree
	Archived    bool    `json:"archived,omitempty"`
}

// ProductRef is the subset of a product captured when it is put in the cart.
type ProductRef struct {
	ID       int64
	Title    string
	Price    float64
	ImageURL string
}

func (p Product) Ref() ProductRef {
	return ProductRef{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// Blurb shortens the description to at most limit runes, cutting on a word
// boundary and appending an ellipsis when anything was dropped.
func (p Product) Blurb(limit int) string {
	text := strings.TrimSpace(p.Description)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n,.;:") + "…"
}

// Available drops archived products, keeping the received order.
func Available(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !p.Archived {
			out = append(out, p)
		}
	}
	return out
}

package cart

import (
	"encoding/json"
	"fmt"

	"furnistore/storefront/internal/domain"
)

// Encode renders the persisted form of the cart: a JSON array of lines.
func Encode(items []domain.CartItem) (string, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted cart and rejects values that break the cart's
// invariants (non-positive quantity, repeated product).
func Decode(raw string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("cart line for product %d has quantity %d", item.ProductID, item.Quantity)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("cart line for product %d has negative price", item.ProductID)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("cart has more than one line for product %d", item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}

	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

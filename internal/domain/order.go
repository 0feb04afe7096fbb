package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ShippingInfo is the address block collected at checkout.
type ShippingInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type OrderRequest struct {
	Items        []OrderLine  `json:"items"`
	ShippingInfo ShippingInfo `json:"shippingInfo"`
}

type OrderItem struct {
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price,omitempty"`
	Product   *Product `json:"product,omitempty"`
}

type Order struct {
	ID        int64       `json:"id"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderItem `json:"items,omitempty"`
}

// OrderLines converts cart contents to the payload the orders endpoint expects.
func OrderLines(items []CartItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// Missing returns the JSON names of required fields left blank. Address2 and
// State are optional.
func (s ShippingInfo) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address1", s.Address1},
		{"city", s.City},
		{"postalCode", s.PostalCode},
		{"country", s.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

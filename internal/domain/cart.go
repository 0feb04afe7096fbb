package domain

type CartItem struct {
	ProductID int64   `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"` // Unit price snapshot taken when the item was added
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

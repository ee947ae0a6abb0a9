package domain

import "time"

// CartLine is one product-quantity pairing in the guest cart. The product
// fields are a snapshot captured at add time so the cart survives product
// changes on the server side.
type CartLine struct {
	ProductID        int64     `json:"product_id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	Currency         string    `json:"currency"`
	PriceUnit        string    `json:"price_unit"`
	Category         string    `json:"category"`
	Image            string    `json:"image"`
	MinOrderQuantity int       `json:"min_order_quantity"`
	Quantity         int       `json:"quantity"`
	AddedAt          time.Time `json:"added_at"`
}

// RemoteCartItem is a cart row owned by the server. Product fields are
// resolved server-side on fetch and never stored locally.
type RemoteCartItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	PriceUnit string  `json:"price_unit"`
	Category  string  `json:"category"`
	Image     string  `json:"main_image_url"`
}

// WishlistItem wraps a product reference with a server-assigned id.
// Membership only, no quantity.
type WishlistItem struct {
	ID      int64           `json:"id"`
	AddedAt string          `json:"added_at"`
	Product WishlistProduct `json:"product"`
}

type WishlistProduct struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	PriceUnit string  `json:"price_unit"`
	Category  string  `json:"category"`
	Image     string  `json:"main_image_url"`
}

const (
	DefaultCurrency  = "NGN"
	DefaultPriceUnit = "unit"
)

package order

import "time"

// StatusProcessing is the status every order starts in. Later transitions
// happen outside this service.
const StatusProcessing = "Processing"

// Line mirrors a cart line frozen at checkout time.
type Line struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Order is an immutable snapshot of a cart at the moment of checkout.
type Order struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Items           []Line    `json:"items"`
	Total           string    `json:"total"`
	Status          string    `json:"status"`
	ShippingAddress string    `json:"shipping_address,omitempty"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

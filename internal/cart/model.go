package cart

import "time"

// Line is one (item, quantity) entry. Item references are weak: the item may
// have been deleted from the catalog since it was added.
type Line struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Cart is the single open cart of a user. Total is a cache over current
// catalog prices, refreshed on every mutation; the lines are the source of
// truth for what is in the cart, never for what it costs.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Line    `json:"items"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ZeroTotal is the two-decimal rendering every total uses, matching the
// NUMERIC(14,2) column a persisted total reads back as.
const ZeroTotal = "0.00"

// Empty is the value returned when a user has no cart yet.
func Empty(userID string) *Cart {
	return &Cart{UserID: userID, Items: []Line{}, Total: ZeroTotal}
}

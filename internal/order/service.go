// Package order implements the checkout engine: a non-empty cart becomes an
// immutable order and the cart goes away, both inside one transaction.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmcampos/shopcart/internal/cart"
)

var ErrCartEmpty = errors.New("cart is empty")

// CartSource reads the cart being checked out. Implemented by cart.PGRepo.
type CartSource interface {
	GetByUser(ctx context.Context, userID string) (*cart.Cart, error)
}

// CheckoutInput carries the optional fulfillment details for the order.
type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
}

type Service struct {
	carts  CartSource
	orders Repository
}

func NewService(carts CartSource, orders Repository) *Service {
	return &Service{carts: carts, orders: orders}
}

// Checkout snapshots the user's cart into a new Processing order. The items
// and the cached total are taken as-is; prices are not re-resolved at
// checkout time.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*Order, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, ErrCartEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]Line, 0, len(c.Items))
	for _, ln := range c.Items {
		lines = append(lines, Line{ItemID: ln.ItemID, Quantity: ln.Quantity})
	}
	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           lines,
		Total:           c.Total,
		Status:          StatusProcessing,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

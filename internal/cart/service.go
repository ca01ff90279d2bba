// Package cart implements the cart engine: per-user add/update/remove of
// item lines with the cached total recomputed from catalog prices on every
// mutation.
package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidLine   = errors.New("invalid item or quantity")
	ErrItemNotInCart = errors.New("item not in cart")
)

// MaxLineQuantity bounds a single line so quantity arithmetic stays far from
// integer overflow.
const MaxLineQuantity = 1_000_000

// PriceSource resolves current catalog prices. Implemented by item.PGRepo.
type PriceSource interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type Service struct {
	carts  Repository
	prices PriceSource
}

func NewService(carts Repository, prices PriceSource) *Service {
	return &Service{carts: carts, prices: prices}
}

// Get returns the user's cart, or the empty-cart value if none exists.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Empty(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem increments the line for itemID by qty, creating the cart and/or the
// line as needed. The item is not required to exist in the catalog; unknown
// ids just price as zero.
func (s *Service) AddItem(ctx context.Context, userID, itemID string, qty int) (*Cart, error) {
	if itemID == "" || qty <= 0 || qty > MaxLineQuantity {
		return nil, ErrInvalidLine
	}
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		c = Empty(userID)
		c.ID = uuid.NewString()
	} else if err != nil {
		return nil, err
	}

	found := false
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, Line{ItemID: itemID, Quantity: qty})
	}

	if err := s.recomputeTotal(ctx, c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateItem sets the line for itemID to qty outright; qty <= 0 removes the
// line. Unlike AddItem it never creates anything: both the cart and the line
// must already exist.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, qty int) (*Cart, error) {
	if itemID == "" || qty > MaxLineQuantity {
		return nil, ErrInvalidLine
	}
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrItemNotInCart
	}

	if qty <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = qty
	}

	if err := s.recomputeTotal(ctx, c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear deletes the cart row wholesale. Idempotent: clearing an absent cart
// succeeds.
func (s *Service) Clear(ctx context.Context, userID string) error {
	_, err := s.carts.DeleteByUser(ctx, userID)
	return err
}

// recomputeTotal refreshes the cached total from current catalog prices.
// Lines whose item no longer exists contribute zero rather than failing the
// mutation.
func (s *Service) recomputeTotal(ctx context.Context, c *Cart) error {
	if len(c.Items) == 0 {
		c.Total = ZeroTotal
		return nil
	}
	ids := make([]string, 0, len(c.Items))
	for _, ln := range c.Items {
		ids = append(ids, ln.ItemID)
	}
	prices, err := s.prices.PricesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, ln := range c.Items {
		p, ok := prices[ln.ItemID]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		total = total.Add(d.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	c.Total = total.StringFixed(2)
	return nil
}

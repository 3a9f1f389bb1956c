// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptforge/storefront/internal/catalog"
	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/session"
)

type Service struct {
	sessions *session.Store
	catalog  *catalog.Service
}

func NewService(sessions *session.Store, catalogSvc *catalog.Service) *Service {
	return &Service{
		sessions: sessions,
		catalog:  catalogSvc,
	}
}

func (s *Service) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return err
	}

	return s.mutate(ctx, userID, func(c *Cart) {
		c.Add(productID)
	})
}

func (s *Service) RemoveOne(ctx context.Context, userID, productID string) error {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.RemoveOne(productID)
	})
}

func (s *Service) RemoveAll(ctx context.Context, userID, productID string) error {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.RemoveAll(productID)
	})
}

func (s *Service) RemoveAt(ctx context.Context, userID string, index int) error {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.RemoveAt(index)
	})
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.Clear()
	})
}

// Items returns the raw cart sequence, including ids of products that may
// have been deleted since they were added.
func (s *Service) Items(ctx context.Context, userID string) ([]string, error) {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return state.Cart, nil
}

type ViewItem struct {
	Product  catalog.ProductResponse `json:"product"`
	Quantity int                     `json:"quantity"`
	Subtotal int64                   `json:"subtotal"`
}

type View struct {
	Items []ViewItem `json:"items"`
	Total int64      `json:"total"`
}

// Render resolves the cart against the catalog. Ids of since-deleted
// products are dropped from the view, not from the stored sequence.
func (s *Service) Render(ctx context.Context, userID string) (*View, error) {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := New(state.Cart)
	view := &View{Items: []ViewItem{}}

	seen := make(map[string]bool)
	for _, pid := range c.Items() {
		if seen[pid] {
			continue
		}
		seen[pid] = true

		product, getErr := s.catalog.Get(ctx, pid)
		if getErr != nil {
			if errors.Is(getErr, core.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("render cart: %w", getErr)
		}

		qty := c.Contents()[pid]
		view.Items = append(view.Items, ViewItem{
			Product:  catalog.ToProductResponse(product),
			Quantity: qty,
			Subtotal: product.Price * int64(qty),
		})
		view.Total += product.Price * int64(qty)
	}

	return view, nil
}

// Restore loads a persisted cart snapshot into the session at login.
func (s *Service) Restore(ctx context.Context, userID string, snapshot []string) error {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	state.Cart = snapshot
	return s.sessions.Save(ctx, userID, state)
}

// Snapshot reads the current session cart for persistence at logout.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]string, error) {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return state.Cart, nil
}

// End drops the session state entirely (logout boundary).
func (s *Service) End(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, userID)
}

func (s *Service) mutate(
	ctx context.Context,
	userID string,
	fn func(c *Cart),
) error {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}

	c := New(state.Cart)
	fn(c)
	state.Cart = c.Items()

	return s.sessions.Save(ctx, userID, state)
}

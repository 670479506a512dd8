// Package wishlist owns saved-for-later products. Guest wishlists are
// session snapshots like the cart; authenticated wishlists are rows in
// the hosted wishlist table keyed by (profile, product). The two are
// never reconciled automatically.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kiranakart/storefront/internal/cart"
	"github.com/kiranakart/storefront/internal/state"
	"github.com/kiranakart/storefront/pkg/backend"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// RowStore is the hosted-table surface the service needs for
// authenticated wishlists.
type RowStore interface {
	ListWishlistRows(ctx context.Context, token, profileID string) ([]backend.WishlistRow, error)
	InsertWishlistRow(ctx context.Context, token string, row backend.WishlistRow) error
	DeleteWishlistRow(ctx context.Context, token, profileID, productID string) error
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Persister state.Persister
	Locks     *state.SessionLocks
	Rows      RowStore
	Cart      cart.Service
}

// Service exposes wishlist reads and mutations for guests and
// authenticated users.
type Service interface {
	List(ctx context.Context, actor Actor) (WishlistDTO, error)
	AddItem(ctx context.Context, actor Actor, input ItemInput) error
	RemoveItem(ctx context.Context, actor Actor, productID string) error
	Contains(ctx context.Context, actor Actor, productID string) (bool, error)
	Clear(ctx context.Context, actor Actor) error
	MoveToCart(ctx context.Context, actor Actor, productID string) (cart.CartDTO, error)
}

type service struct {
	persister state.Persister
	locks     *state.SessionLocks
	rows      RowStore
	cart      cart.Service
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persister is required")
	}
	if params.Locks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session locks are required")
	}
	if params.Rows == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "row store is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	return &service{
		persister: params.Persister,
		locks:     params.Locks,
		rows:      params.Rows,
		cart:      params.Cart,
	}, nil
}

// List returns the actor's wishlist.
func (s *service) List(ctx context.Context, actor Actor) (WishlistDTO, error) {
	if err := requireActor(actor); err != nil {
		return WishlistDTO{}, err
	}
	items, err := s.items(ctx, actor)
	if err != nil {
		return WishlistDTO{}, err
	}
	return toDTO(items), nil
}

// AddItem stores the product in the wishlist. Adding an already-present
// product is a no-op.
func (s *service) AddItem(ctx context.Context, actor Actor, input ItemInput) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	if actor.authenticated() {
		present, err := s.rowPresent(ctx, actor, input.ProductID)
		if err != nil {
			return err
		}
		if present {
			return nil
		}
		row := backend.WishlistRow{
			ProfileID:   actor.ProfileID,
			ProductID:   input.ProductID,
			Name:        input.Name,
			PriceString: input.PriceString,
		}
		if input.ImageURL != "" {
			row.ImageURL = &input.ImageURL
		}
		return s.rows.InsertWishlistRow(ctx, actor.Token, row)
	}

	return s.mutate(ctx, actor.SessionID, func(snapshot *Snapshot) {
		if snapshot.indexOf(input.ProductID) >= 0 {
			return
		}
		snapshot.Items = append(snapshot.Items, Item{
			ProductID:   input.ProductID,
			Name:        input.Name,
			PriceString: input.PriceString,
			ImageURL:    input.ImageURL,
		})
	})
}

// RemoveItem drops the entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, actor Actor, productID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if actor.authenticated() {
		return s.rows.DeleteWishlistRow(ctx, actor.Token, actor.ProfileID, productID)
	}

	return s.mutate(ctx, actor.SessionID, func(snapshot *Snapshot) {
		if i := snapshot.indexOf(productID); i >= 0 {
			snapshot.Items = append(snapshot.Items[:i], snapshot.Items[i+1:]...)
		}
	})
}

// Contains reports whether the product is wishlisted.
func (s *service) Contains(ctx context.Context, actor Actor, productID string) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	items, err := s.items(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// Clear empties the actor's wishlist.
func (s *service) Clear(ctx context.Context, actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	if actor.authenticated() {
		rows, err := s.rows.ListWishlistRows(ctx, actor.Token, actor.ProfileID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := s.rows.DeleteWishlistRow(ctx, actor.Token, actor.ProfileID, row.ProductID); err != nil {
				return err
			}
		}
		return nil
	}

	release := s.locks.Acquire(actor.SessionID)
	defer release()
	if err := s.persister.Delete(ctx, StoreName, actor.SessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear wishlist snapshot")
	}
	return nil
}

// MoveToCart adds the wishlisted product to the cart, then removes it
// from the wishlist. A failed cart add leaves the wishlist untouched.
func (s *service) MoveToCart(ctx context.Context, actor Actor, productID string) (cart.CartDTO, error) {
	if err := requireActor(actor); err != nil {
		return cart.CartDTO{}, err
	}
	items, err := s.items(ctx, actor)
	if err != nil {
		return cart.CartDTO{}, err
	}
	var found *Item
	for i := range items {
		if items[i].ProductID == productID {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return cart.CartDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the wishlist")
	}

	dto, err := s.cart.AddItem(ctx, actor.SessionID, cart.AddItemInput{
		ProductID:   found.ProductID,
		Name:        found.Name,
		PriceString: found.PriceString,
		ImageURL:    found.ImageURL,
		Quantity:    1,
	})
	if err != nil {
		return cart.CartDTO{}, err
	}
	if err := s.RemoveItem(ctx, actor, productID); err != nil {
		return cart.CartDTO{}, err
	}
	return dto, nil
}

func (s *service) items(ctx context.Context, actor Actor) ([]Item, error) {
	if actor.authenticated() {
		rows, err := s.rows.ListWishlistRows(ctx, actor.Token, actor.ProfileID)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(rows))
		for _, row := range rows {
			item := Item{
				ProductID:   row.ProductID,
				Name:        row.Name,
				PriceString: row.PriceString,
			}
			if row.ImageURL != nil {
				item.ImageURL = *row.ImageURL
			}
			items = append(items, item)
		}
		return items, nil
	}

	snapshot, err := s.load(ctx, actor.SessionID)
	if err != nil {
		return nil, err
	}
	return snapshot.Items, nil
}

func (s *service) rowPresent(ctx context.Context, actor Actor, productID string) (bool, error) {
	rows, err := s.rows.ListWishlistRows(ctx, actor.Token, actor.ProfileID)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) mutate(ctx context.Context, sessionID string, apply func(*Snapshot)) error {
	release := s.locks.Acquire(sessionID)
	defer release()

	snapshot, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	apply(&snapshot)
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wishlist snapshot")
	}
	if err := s.persister.Save(ctx, StoreName, sessionID, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist snapshot")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := s.persister.Load(ctx, StoreName, sessionID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist snapshot")
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return Snapshot{}, nil
	}
	return snapshot, nil
}

func requireActor(actor Actor) error {
	if strings.TrimSpace(actor.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

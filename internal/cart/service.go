// Package cart owns the per-session shopping cart: one snapshot per
// session, merged line quantities, and decimal subtotals derived from
// display price strings.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kiranakart/storefront/internal/state"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Persister state.Persister
	Locks     *state.SessionLocks
}

// Service exposes cart mutations and reads for one session at a time.
type Service interface {
	Get(ctx context.Context, sessionID string) (CartDTO, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (CartDTO, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (CartDTO, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (Snapshot, error)
}

type service struct {
	persister state.Persister
	locks     *state.SessionLocks
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persister is required")
	}
	if params.Locks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session locks are required")
	}
	return &service{persister: params.Persister, locks: params.Locks}, nil
}

// Get returns the current cart, restoring the persisted snapshot if present.
func (s *service) Get(ctx context.Context, sessionID string) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	snapshot, err := s.load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	return toDTO(snapshot), nil
}

// Snapshot returns the raw cart state for checkout submission.
func (s *service) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}
	return s.load(ctx, sessionID)
}

// AddItem merges the product into the cart. An existing line for the same
// product id gains the added quantity; there is never more than one line
// per product.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return s.mutate(ctx, sessionID, func(snapshot *Snapshot) {
		if i := snapshot.indexOf(input.ProductID); i >= 0 {
			snapshot.Items[i].Quantity += quantity
			return
		}
		snapshot.Items = append(snapshot.Items, Item{
			ProductID:   input.ProductID,
			Name:        input.Name,
			PriceString: input.PriceString,
			ImageURL:    input.ImageURL,
			Quantity:    quantity,
		})
	})
}

// UpdateQuantity sets a line's quantity exactly. Zero or negative removes
// the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	return s.mutate(ctx, sessionID, func(snapshot *Snapshot) {
		if i := snapshot.indexOf(productID); i >= 0 {
			snapshot.Items[i].Quantity = quantity
		}
	})
}

// RemoveItem drops the line for the product id; absent lines are a no-op.
func (s *service) RemoveItem(ctx context.Context, sessionID, productID string) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, sessionID, func(snapshot *Snapshot) {
		if i := snapshot.indexOf(productID); i >= 0 {
			snapshot.Items = append(snapshot.Items[:i], snapshot.Items[i+1:]...)
		}
	})
}

// Clear empties the cart and removes the persisted snapshot.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	release := s.locks.Acquire(sessionID)
	defer release()
	if err := s.persister.Delete(ctx, StoreName, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}

func (s *service) mutate(ctx context.Context, sessionID string, apply func(*Snapshot)) (CartDTO, error) {
	release := s.locks.Acquire(sessionID)
	defer release()

	snapshot, err := s.load(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}
	apply(&snapshot)
	if err := s.save(ctx, sessionID, snapshot); err != nil {
		return CartDTO{}, err
	}
	return toDTO(snapshot), nil
}

func (s *service) load(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := s.persister.Load(ctx, StoreName, sessionID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A snapshot that no longer parses is treated as absent rather
		// than wedging the session.
		return Snapshot{}, nil
	}
	return snapshot, nil
}

func (s *service) save(ctx context.Context, sessionID string, snapshot Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	if err := s.persister.Save(ctx, StoreName, sessionID, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

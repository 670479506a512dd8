// Package location owns the single active delivery location per session.
// A nil latitude means no location has been chosen yet.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kiranakart/storefront/internal/state"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// StoreName keys the persisted delivery-location snapshot.
const StoreName = "delivery_location"

// Snapshot is the persisted delivery location. All three fields are set
// together by Set and reset together by Clear.
type Snapshot struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	Name      string   `json:"name"`
}

// IsSet reports whether a delivery location has been chosen.
func (s Snapshot) IsSet() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// SetInput is a full location assignment.
type SetInput struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Name      string  `json:"name" validate:"required"`
}

// ServiceParams groups dependencies for the location service.
type ServiceParams struct {
	Persister state.Persister
	Locks     *state.SessionLocks
}

// Service exposes the delivery-location store.
type Service interface {
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	Set(ctx context.Context, sessionID string, input SetInput) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	persister state.Persister
	locks     *state.SessionLocks
}

// NewService builds a location service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persister is required")
	}
	if params.Locks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session locks are required")
	}
	return &service{persister: params.Persister, locks: params.Locks}, nil
}

// Get returns the current delivery location; the zero Snapshot means unset.
func (s *service) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}
	return s.load(ctx, sessionID)
}

// Set overwrites the active location with the provided coordinate and name.
func (s *service) Set(ctx context.Context, sessionID string, input SetInput) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	release := s.locks.Acquire(sessionID)
	defer release()

	lat, lng := input.Latitude, input.Longitude
	snapshot := Snapshot{Latitude: &lat, Longitude: &lng, Name: input.Name}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode location snapshot")
	}
	if err := s.persister.Save(ctx, StoreName, sessionID, raw); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save location snapshot")
	}
	return snapshot, nil
}

// Clear resets the location to unset.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	release := s.locks.Acquire(sessionID)
	defer release()
	if err := s.persister.Delete(ctx, StoreName, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear location snapshot")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := s.persister.Load(ctx, StoreName, sessionID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location snapshot")
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return Snapshot{}, nil
	}
	return snapshot, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

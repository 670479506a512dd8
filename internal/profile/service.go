// Package profile owns the authenticated user's profile and saved
// address book. Addresses live in hosted tables; choosing one writes
// the session's delivery-location store.
package profile

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/pkg/backend"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// Backend is the hosted-table surface the profile service needs.
type Backend interface {
	GetProfileRow(ctx context.Context, token, profileID string) (*backend.ProfileRow, error)
	UpdateProfileRow(ctx context.Context, token, profileID string, input backend.ProfileInput) (*backend.ProfileRow, error)
	ListAddresses(ctx context.Context, token, profileID string) ([]backend.AddressRow, error)
	InsertAddress(ctx context.Context, token string, input backend.AddressInput) (*backend.AddressRow, error)
	UpdateAddress(ctx context.Context, token, addressID string, input backend.AddressInput) (*backend.AddressRow, error)
	ClearDefaultAddress(ctx context.Context, token, profileID string) error
	DeleteAddress(ctx context.Context, token, addressID string) error
}

// Actor is the authenticated caller.
type Actor struct {
	SessionID string
	Token     string
	ProfileID string
}

// ProfileDTO is the API projection of a profile.
type ProfileDTO struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfileInput is the editable profile subset.
type UpdateProfileInput struct {
	FullName    string `json:"full_name" validate:"required,min=2"`
	PhoneNumber string `json:"phone_number" validate:"required,len=10,numeric"`
}

// AddressDTO is the API projection of a saved address.
type AddressDTO struct {
	ID           string  `json:"id"`
	Nickname     string  `json:"nickname"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	LocationName string  `json:"location_name"`
	IsDefault    bool    `json:"is_default"`
}

// AddressInput describes a saved address being created or edited.
type AddressInput struct {
	Nickname     string  `json:"nickname" validate:"required,min=1,max=40"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	LocationName string  `json:"location_name" validate:"required"`
	IsDefault    bool    `json:"is_default"`
}

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	Backend   Backend
	Locations location.Service
}

// Service exposes profile and address-book operations.
type Service interface {
	GetProfile(ctx context.Context, actor Actor) (ProfileDTO, error)
	UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (ProfileDTO, error)
	ListAddresses(ctx context.Context, actor Actor) ([]AddressDTO, error)
	CreateAddress(ctx context.Context, actor Actor, input AddressInput) (AddressDTO, error)
	UpdateAddress(ctx context.Context, actor Actor, addressID string, input AddressInput) (AddressDTO, error)
	DeleteAddress(ctx context.Context, actor Actor, addressID string) error
	UseAddress(ctx context.Context, actor Actor, addressID string) (location.Snapshot, error)
}

type service struct {
	backend   Backend
	locations location.Service
	validate  *validator.Validate
}

// NewService builds a profile service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend client is required")
	}
	if params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location service is required")
	}
	return &service{
		backend:   params.Backend,
		locations: params.Locations,
		validate:  validator.New(),
	}, nil
}

// GetProfile returns the caller's profile.
func (s *service) GetProfile(ctx context.Context, actor Actor) (ProfileDTO, error) {
	if err := requireAuth(actor); err != nil {
		return ProfileDTO{}, err
	}
	row, err := s.backend.GetProfileRow(ctx, actor.Token, actor.ProfileID)
	if err != nil {
		return ProfileDTO{}, err
	}
	return toProfileDTO(*row), nil
}

// UpdateProfile patches name and phone after validation.
func (s *service) UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (ProfileDTO, error) {
	if err := requireAuth(actor); err != nil {
		return ProfileDTO{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile details")
	}
	row, err := s.backend.UpdateProfileRow(ctx, actor.Token, actor.ProfileID, backend.ProfileInput{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return ProfileDTO{}, err
	}
	return toProfileDTO(*row), nil
}

// ListAddresses returns the caller's saved addresses, default first.
func (s *service) ListAddresses(ctx context.Context, actor Actor) ([]AddressDTO, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	rows, err := s.backend.ListAddresses(ctx, actor.Token, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	addresses := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, toAddressDTO(row))
	}
	return addresses, nil
}

// CreateAddress saves a new address. Marking it default unsets the
// previous default first.
func (s *service) CreateAddress(ctx context.Context, actor Actor, input AddressInput) (AddressDTO, error) {
	if err := requireAuth(actor); err != nil {
		return AddressDTO{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	}
	if input.IsDefault {
		if err := s.backend.ClearDefaultAddress(ctx, actor.Token, actor.ProfileID); err != nil {
			return AddressDTO{}, err
		}
	}
	row, err := s.backend.InsertAddress(ctx, actor.Token, backend.AddressInput{
		ProfileID:    actor.ProfileID,
		Nickname:     input.Nickname,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		LocationName: input.LocationName,
		IsDefault:    input.IsDefault,
	})
	if err != nil {
		return AddressDTO{}, err
	}
	return toAddressDTO(*row), nil
}

// UpdateAddress edits a saved address the caller owns.
func (s *service) UpdateAddress(ctx context.Context, actor Actor, addressID string, input AddressInput) (AddressDTO, error) {
	if err := requireAuth(actor); err != nil {
		return AddressDTO{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	}
	if _, err := s.ownedAddress(ctx, actor, addressID); err != nil {
		return AddressDTO{}, err
	}
	if input.IsDefault {
		if err := s.backend.ClearDefaultAddress(ctx, actor.Token, actor.ProfileID); err != nil {
			return AddressDTO{}, err
		}
	}
	row, err := s.backend.UpdateAddress(ctx, actor.Token, addressID, backend.AddressInput{
		ProfileID:    actor.ProfileID,
		Nickname:     input.Nickname,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		LocationName: input.LocationName,
		IsDefault:    input.IsDefault,
	})
	if err != nil {
		return AddressDTO{}, err
	}
	return toAddressDTO(*row), nil
}

// DeleteAddress removes a saved address the caller owns.
func (s *service) DeleteAddress(ctx context.Context, actor Actor, addressID string) error {
	if err := requireAuth(actor); err != nil {
		return err
	}
	if _, err := s.ownedAddress(ctx, actor, addressID); err != nil {
		return err
	}
	return s.backend.DeleteAddress(ctx, actor.Token, addressID)
}

// UseAddress writes a saved address into the session's delivery-location
// store.
func (s *service) UseAddress(ctx context.Context, actor Actor, addressID string) (location.Snapshot, error) {
	if err := requireAuth(actor); err != nil {
		return location.Snapshot{}, err
	}
	row, err := s.ownedAddress(ctx, actor, addressID)
	if err != nil {
		return location.Snapshot{}, err
	}
	return s.locations.Set(ctx, actor.SessionID, location.SetInput{
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Name:      row.LocationName,
	})
}

func (s *service) ownedAddress(ctx context.Context, actor Actor, addressID string) (*backend.AddressRow, error) {
	if strings.TrimSpace(addressID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	rows, err := s.backend.ListAddresses(ctx, actor.Token, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == addressID {
			return &rows[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
}

func requireAuth(actor Actor) error {
	if strings.TrimSpace(actor.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if actor.Token == "" || actor.ProfileID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to manage your profile")
	}
	return nil
}

func toProfileDTO(row backend.ProfileRow) ProfileDTO {
	return ProfileDTO{ID: row.ID, FullName: row.FullName, PhoneNumber: row.PhoneNumber}
}

func toAddressDTO(row backend.AddressRow) AddressDTO {
	return AddressDTO{
		ID:           row.ID,
		Nickname:     row.Nickname,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		LocationName: row.LocationName,
		IsDefault:    row.IsDefault,
	}
}

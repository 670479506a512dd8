// Package checkout orchestrates order placement: precondition checks
// against the cart and location stores, contact validation, minimum
// order enforcement, delivery pricing, and the single order-creation
// call to the backend.
package checkout

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/kiranakart/storefront/internal/cart"
	"github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/pkg/backend"
	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/logger"
	"github.com/kiranakart/storefront/pkg/metrics"
	"github.com/kiranakart/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// Backend is the hosted-platform surface checkout needs.
type Backend interface {
	GetShopSettings(ctx context.Context) (*backend.ShopSettingsRow, error)
	ListDeliveryOptions(ctx context.Context) ([]backend.DeliveryOption, error)
	ComputeDeliveryCharge(ctx context.Context, lat, lng float64, optionCode string) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, token string, req backend.CreateOrderRequest) (*backend.CreateOrderResult, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart      cart.Service
	Locations location.Service
	Backend   Backend
	Metrics   *metrics.StorefrontMetrics
	Logger    *logger.Logger
	Config    config.CheckoutConfig
}

// Service exposes the checkout review and submission operations.
type Service interface {
	Summary(ctx context.Context, actor Actor) (SummaryDTO, error)
	Submit(ctx context.Context, actor Actor, input SubmitInput) (ConfirmationDTO, error)
}

type service struct {
	cart      cart.Service
	locations location.Service
	backend   Backend
	metrics   *metrics.StorefrontMetrics
	logg      *logger.Logger
	validate  *validator.Validate
	cfg       config.CheckoutConfig
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location service is required")
	}
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend client is required")
	}
	return &service{
		cart:      params.Cart,
		locations: params.Locations,
		backend:   params.Backend,
		metrics:   params.Metrics,
		logg:      params.Logger,
		validate:  validator.New(),
		cfg:       params.Config,
	}, nil
}

// Summary verifies the checkout preconditions and returns the review
// payload: priced cart lines, minimum order status, and delivery options.
func (s *service) Summary(ctx context.Context, actor Actor) (SummaryDTO, error) {
	snapshot, loc, err := s.preconditions(ctx, actor)
	if err != nil {
		return SummaryDTO{}, err
	}

	subtotal := snapshot.Subtotal()
	minOrder := s.minOrderValue(ctx)

	dto := SummaryDTO{
		Items:           snapshot.Items,
		Subtotal:        subtotal.StringFixed(2),
		MinOrderValue:   minOrder.StringFixed(2),
		DeliveryOptions: s.deliveryOptions(ctx),
		Location: LocationSummary{
			Latitude:  *loc.Latitude,
			Longitude: *loc.Longitude,
			Name:      loc.Name,
		},
	}
	if subtotal.LessThan(minOrder) {
		dto.Shortfall = minOrder.Sub(subtotal).StringFixed(2)
	}
	return dto, nil
}

// Submit validates the input, re-prices the cart from its display price
// strings, enforces the minimum order, prices delivery, and places the
// order. Success clears the cart; failure leaves cart and location intact.
func (s *service) Submit(ctx context.Context, actor Actor, input SubmitInput) (ConfirmationDTO, error) {
	if err := s.validate.Struct(input); err != nil {
		return ConfirmationDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout details")
	}

	snapshot, loc, err := s.preconditions(ctx, actor)
	if err != nil {
		return ConfirmationDTO{}, err
	}

	subtotal := snapshot.Subtotal()
	minOrder := s.minOrderValue(ctx)
	if subtotal.LessThan(minOrder) {
		needed := minOrder.Sub(subtotal)
		return ConfirmationDTO{}, pkgerrors.New(pkgerrors.CodePrecondition,
			"add items worth "+money.Format(s.cfg.FallbackCurrencySymbol, needed)+" more to place your order")
	}

	charge := s.deliveryCharge(ctx, *loc.Latitude, *loc.Longitude, input.DeliveryOptionCode)

	items := make([]backend.OrderLineItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		item := backend.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: money.ParsePrice(line.PriceString),
		}
		if line.ImageURL != "" {
			url := line.ImageURL
			item.ImageURL = &url
		}
		items = append(items, item)
	}

	req := backend.CreateOrderRequest{
		CustomerName:       input.CustomerName,
		PhoneNumber:        input.PhoneNumber,
		Latitude:           *loc.Latitude,
		Longitude:          *loc.Longitude,
		LocationName:       loc.Name,
		DeliveryOptionCode: input.DeliveryOptionCode,
		DeliveryCharge:     charge,
		Notes:              input.Notes,
		Items:              items,
	}
	kind := "guest"
	token := ""
	if actor.authenticated() {
		profileID := actor.ProfileID
		req.ProfileID = &profileID
		token = actor.Token
		kind = "profile"
	} else {
		guestID := actor.SessionID
		req.GuestID = &guestID
	}

	result, err := s.backend.CreateOrder(ctx, token, req)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "order creation failed", err)
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			return ConfirmationDTO{}, err
		}
		return ConfirmationDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not place the order")
	}

	// Order is accepted: the cart empties, the location stays for next time.
	if err := s.cart.Clear(ctx, actor.SessionID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "clear cart after order", err)
	}
	s.metrics.IncOrdersPlaced(kind)

	return ConfirmationDTO{
		OrderID:         result.OrderID,
		Total:           result.Total.StringFixed(2),
		ConfirmationURL: "/order-confirmation/" + result.OrderID,
	}, nil
}

// preconditions loads the cart and location stores and converts their
// empty states into redirecting precondition errors.
func (s *service) preconditions(ctx context.Context, actor Actor) (cart.Snapshot, location.Snapshot, error) {
	snapshot, err := s.cart.Snapshot(ctx, actor.SessionID)
	if err != nil {
		return cart.Snapshot{}, location.Snapshot{}, err
	}
	if len(snapshot.Items) == 0 {
		return cart.Snapshot{}, location.Snapshot{}, pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty").
			WithRedirect(routeHome)
	}

	loc, err := s.locations.Get(ctx, actor.SessionID)
	if err != nil {
		return cart.Snapshot{}, location.Snapshot{}, err
	}
	if !loc.IsSet() {
		return cart.Snapshot{}, location.Snapshot{}, pkgerrors.New(pkgerrors.CodePrecondition, "delivery location is not set").
			WithRedirect(routeDeliveryLocation)
	}
	return snapshot, loc, nil
}

// minOrderValue reads shop settings, falling back to the configured
// default when the backend is unavailable.
func (s *service) minOrderValue(ctx context.Context) decimal.Decimal {
	settings, err := s.backend.GetShopSettings(ctx)
	if err == nil && settings.MinOrderValue.IsPositive() {
		return settings.MinOrderValue
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(ctx, "shop settings unavailable, using fallback minimum")
	}
	fallback, parseErr := decimal.NewFromString(s.cfg.FallbackMinOrderValue)
	if parseErr != nil {
		return decimal.Zero
	}
	return fallback
}

// deliveryOptions lists tiers from the backend with a hardcoded fallback.
func (s *service) deliveryOptions(ctx context.Context) []backend.DeliveryOption {
	options, err := s.backend.ListDeliveryOptions(ctx)
	if err == nil && len(options) > 0 {
		return options
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(ctx, "delivery options unavailable, using fallback set")
	}
	charge, _ := decimal.NewFromString(s.cfg.FallbackDeliveryCharge)
	return []backend.DeliveryOption{
		{Code: "standard", Label: "Standard delivery", Charge: decimal.Zero, EstimateMin: 60},
		{Code: s.cfg.InstantDeliveryOptionCode, Label: "Instant delivery", Charge: charge, EstimateMin: 15},
	}
}

// deliveryCharge recomputes the instant tier's charge at submission time.
// Other tiers and any compute failure use the configured fallback.
func (s *service) deliveryCharge(ctx context.Context, lat, lng float64, optionCode string) decimal.Decimal {
	if optionCode != s.cfg.InstantDeliveryOptionCode {
		return decimal.Zero
	}
	charge, err := s.backend.ComputeDeliveryCharge(ctx, lat, lng, optionCode)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "delivery charge compute failed, using fallback")
		}
		fallback, parseErr := decimal.NewFromString(s.cfg.FallbackDeliveryCharge)
		if parseErr != nil {
			return decimal.Zero
		}
		return fallback
	}
	return charge
}

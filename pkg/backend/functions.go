package backend

import (
	"context"
	"strings"

	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// ResolveLocationName calls the server function that turns a coordinate into
// a human-readable address.
func (c *Client) ResolveLocationName(ctx context.Context, lat, lng float64) (string, error) {
	payload := map[string]float64{"latitude": lat, "longitude": lng}

	var result struct {
		LocationName string `json:"location_name"`
	}
	if err := c.invoke(ctx, "resolve-location-name", "", payload, &result); err != nil {
		return "", err
	}
	if strings.TrimSpace(result.LocationName) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "resolver returned empty location name")
	}
	return result.LocationName, nil
}

// ListDeliveryOptions calls the server function that lists delivery tiers.
func (c *Client) ListDeliveryOptions(ctx context.Context) ([]DeliveryOption, error) {
	var result struct {
		Options []DeliveryOption `json:"options"`
	}
	if err := c.invoke(ctx, "list-delivery-options", "", struct{}{}, &result); err != nil {
		return nil, err
	}
	return result.Options, nil
}

// ComputeDeliveryCharge calls the server function that prices delivery to a
// coordinate for a given option.
func (c *Client) ComputeDeliveryCharge(ctx context.Context, lat, lng float64, optionCode string) (decimal.Decimal, error) {
	payload := map[string]any{
		"latitude":    lat,
		"longitude":   lng,
		"option_code": optionCode,
	}

	var result struct {
		Charge decimal.Decimal `json:"charge"`
	}
	if err := c.invoke(ctx, "compute-delivery-charge", "", payload, &result); err != nil {
		return decimal.Zero, err
	}
	if result.Charge.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, "negative delivery charge from backend")
	}
	return result.Charge, nil
}

// CreateOrder calls the order-creation function as an authenticated profile
// (token set) or as a guest (token empty, GuestID set).
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if req.ProfileID == nil && req.GuestID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs a profile or guest identity")
	}

	var result CreateOrderResult
	if err := c.invoke(ctx, "create-order", token, req, &result); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order creation returned no order id")
	}
	return &result, nil
}

package checkout

import (
	"github.com/kiranakart/storefront/internal/cart"
	"github.com/kiranakart/storefront/pkg/backend"
)

// Browser routes used as redirect hints when a checkout precondition fails.
const (
	routeHome             = "/"
	routeDeliveryLocation = "/delivery-location"
)

// Actor identifies who is checking out. Authenticated users carry a
// token and profile id; everyone else orders as a guest keyed by session.
type Actor struct {
	SessionID string
	Token     string
	ProfileID string
}

func (a Actor) authenticated() bool {
	return a.ProfileID != "" && a.Token != ""
}

// SubmitInput is the contact and delivery selection for an order.
type SubmitInput struct {
	CustomerName       string `json:"customer_name" validate:"required,min=2"`
	PhoneNumber        string `json:"phone_number" validate:"required,len=10,numeric"`
	DeliveryOptionCode string `json:"delivery_option_code" validate:"required"`
	Notes              string `json:"notes" validate:"max=500"`
}

// SummaryDTO is the checkout review screen: cart lines, totals, and the
// selectable delivery options.
type SummaryDTO struct {
	Items           []cart.Item              `json:"items"`
	Subtotal        string                   `json:"subtotal"`
	MinOrderValue   string                   `json:"min_order_value"`
	Shortfall       string                   `json:"shortfall,omitempty"`
	DeliveryOptions []backend.DeliveryOption `json:"delivery_options"`
	Location        LocationSummary          `json:"location"`
}

// LocationSummary echoes the confirmed delivery location.
type LocationSummary struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Name      string  `json:"name"`
}

// ConfirmationDTO is returned after a successful order placement.
type ConfirmationDTO struct {
	OrderID         string `json:"order_id"`
	Total           string `json:"total"`
	ConfirmationURL string `json:"confirmation_url"`
}

package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kiranakart/storefront/api/middleware"
	"github.com/kiranakart/storefront/api/responses"
	"github.com/kiranakart/storefront/pkg/backend"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/logger"
)

// OrdersBackend is the slice of the data platform the order history
// screens read from.
type OrdersBackend interface {
	ListOrders(ctx context.Context, token, profileID string) ([]backend.OrderRow, error)
	GetOrder(ctx context.Context, token, orderID string) (*backend.OrderRow, error)
	ListOrderItems(ctx context.Context, token, orderID string) ([]backend.OrderItemRow, error)
}

// OrderSummaryDTO is one row of the order history list.
type OrderSummaryDTO struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	Total              string `json:"total"`
	DeliveryOptionCode string `json:"delivery_option_code"`
	LocationName       string `json:"location_name"`
	CreatedAt          string `json:"created_at"`
}

// OrderItemDTO is one line of a placed order.
type OrderItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice string  `json:"unit_price"`
	ImageURL  *string `json:"image_url,omitempty"`
}

// OrderDetailDTO is the order confirmation / detail view.
type OrderDetailDTO struct {
	ID                 string         `json:"id"`
	Status             string         `json:"status"`
	CustomerName       string         `json:"customer_name"`
	PhoneNumber        string         `json:"phone_number"`
	LocationName       string         `json:"location_name"`
	DeliveryOptionCode string         `json:"delivery_option_code"`
	DeliveryCharge     string         `json:"delivery_charge"`
	Subtotal           string         `json:"subtotal"`
	Total              string         `json:"total"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          string         `json:"created_at"`
	Items              []OrderItemDTO `json:"items"`
}

// OrderList returns the authenticated profile's order history.
func OrderList(be OrdersBackend, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if be == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders backend unavailable"))
			return
		}

		profileID := middleware.ProfileIDFromContext(ctx)
		if profileID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your orders"))
			return
		}

		rows, err := be.ListOrders(ctx, middleware.TokenFromContext(ctx), profileID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]OrderSummaryDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, OrderSummaryDTO{
				ID:                 row.ID,
				Status:             row.Status,
				Total:              row.Total.StringFixed(2),
				DeliveryOptionCode: row.DeliveryOptionCode,
				LocationName:       row.LocationName,
				CreatedAt:          row.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderGet returns one order with its lines. Guest orders carry no
// profile and are reachable by order id alone; profile orders are only
// visible to their owner.
func OrderGet(be OrdersBackend, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if be == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders backend unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		token := middleware.TokenFromContext(ctx)
		row, err := be.GetOrder(ctx, token, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if row.ProfileID != nil && *row.ProfileID != middleware.ProfileIDFromContext(ctx) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}

		items, err := be.ListOrderItems(ctx, token, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto := OrderDetailDTO{
			ID:                 row.ID,
			Status:             row.Status,
			CustomerName:       row.CustomerName,
			PhoneNumber:        row.PhoneNumber,
			LocationName:       row.LocationName,
			DeliveryOptionCode: row.DeliveryOptionCode,
			DeliveryCharge:     row.DeliveryCharge.StringFixed(2),
			Subtotal:           row.Subtotal.StringFixed(2),
			Total:              row.Total.StringFixed(2),
			Notes:              row.Notes,
			CreatedAt:          row.CreatedAt,
			Items:              make([]OrderItemDTO, 0, len(items)),
		}
		for _, item := range items {
			dto.Items = append(dto.Items, OrderItemDTO{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice.StringFixed(2),
				ImageURL:  item.ImageURL,
			})
		}
		responses.WriteSuccess(w, dto)
	}
}

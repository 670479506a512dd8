package cart

import (
	"github.com/kiranakart/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// StoreName keys the persisted cart snapshot.
const StoreName = "cart"

// Item is one cart line. PriceString keeps the display price verbatim;
// totals are always re-derived from it.
type Item struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	PriceString string `json:"price_string"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Snapshot is the full persisted cart state for one session.
type Snapshot struct {
	Items []Item `json:"items"`
}

// ItemCount sums quantities across all lines.
func (s Snapshot) ItemCount() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums parsed price times quantity with decimal arithmetic.
// Lines whose price string does not parse contribute zero.
func (s Snapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		price := money.ParsePrice(item.PriceString)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (s Snapshot) indexOf(productID string) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItemInput describes a product being added to the cart.
type AddItemInput struct {
	ProductID   string `json:"product_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	PriceString string `json:"price_string"`
	ImageURL    string `json:"image_url"`
	Quantity    int    `json:"quantity"`
}

// CartDTO is the API projection of the cart.
type CartDTO struct {
	Items     []Item `json:"items"`
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
}

func toDTO(snapshot Snapshot) CartDTO {
	items := snapshot.Items
	if items == nil {
		items = []Item{}
	}
	return CartDTO{
		Items:     items,
		ItemCount: snapshot.ItemCount(),
		Subtotal:  snapshot.Subtotal().StringFixed(2),
	}
}

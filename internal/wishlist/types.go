package wishlist

// StoreName keys the persisted guest wishlist snapshot.
const StoreName = "wishlist"

// Item is one wishlisted product.
type Item struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	PriceString string `json:"price_string"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Snapshot is the full persisted guest wishlist for one session.
type Snapshot struct {
	Items []Item `json:"items"`
}

func (s Snapshot) indexOf(productID string) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Actor identifies who owns the wishlist being read or mutated. Guests
// are keyed by session; authenticated users by profile, with rows living
// server-side.
type Actor struct {
	SessionID string
	Token     string
	ProfileID string
}

func (a Actor) authenticated() bool {
	return a.ProfileID != "" && a.Token != ""
}

// ItemInput describes a product being wishlisted.
type ItemInput struct {
	ProductID   string `json:"product_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	PriceString string `json:"price_string"`
	ImageURL    string `json:"image_url"`
}

// WishlistDTO is the API projection of a wishlist.
type WishlistDTO struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

func toDTO(items []Item) WishlistDTO {
	if items == nil {
		items = []Item{}
	}
	return WishlistDTO{Items: items, Count: len(items)}
}

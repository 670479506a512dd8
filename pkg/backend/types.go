package backend

import "github.com/shopspring/decimal"

// ProductRow mirrors one row of the hosted products table.
type ProductRow struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PriceString  string          `json:"price_string"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	ImageURL     *string         `json:"image_url"`
	CategoryID   string          `json:"category_id"`
	IsActive     bool            `json:"is_active"`
	Availability string          `json:"availability"`
}

// CategoryRow mirrors one row of the categories table.
type CategoryRow struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
	Position int     `json:"position"`
}

// AddressRow mirrors one saved address owned by a profile.
type AddressRow struct {
	ID           string  `json:"id"`
	ProfileID    string  `json:"profile_id"`
	Nickname     string  `json:"nickname"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
	IsDefault    bool    `json:"is_default"`
}

// AddressInput is the writable subset of an address row.
type AddressInput struct {
	ProfileID    string  `json:"profile_id"`
	Nickname     string  `json:"nickname"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
	IsDefault    bool    `json:"is_default"`
}

// WishlistRow mirrors one row of the server-side wishlist table.
type WishlistRow struct {
	ProfileID   string  `json:"profile_id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	PriceString string  `json:"price_string"`
	ImageURL    *string `json:"image_url"`
}

// ShopSettingsRow mirrors the single-row shop_settings table.
type ShopSettingsRow struct {
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	ShopOpen        bool            `json:"shop_open"`
	DeliveryRadius  float64         `json:"delivery_radius_km"`
	SupportPhone    string          `json:"support_phone"`
	AnnouncementMsg string          `json:"announcement_message"`
}

// ProfileRow mirrors the profile row bound to an authenticated user.
type ProfileRow struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// ProfileInput is the writable subset of a profile row.
type ProfileInput struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// OrderRow mirrors one row of the orders table.
type OrderRow struct {
	ID                 string          `json:"id"`
	ProfileID          *string         `json:"profile_id"`
	CustomerName       string          `json:"customer_name"`
	PhoneNumber        string          `json:"phone_number"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	LocationName       string          `json:"location_name"`
	DeliveryOptionCode string          `json:"delivery_option_code"`
	DeliveryCharge     decimal.Decimal `json:"delivery_charge"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Total              decimal.Decimal `json:"total"`
	Status             string          `json:"status"`
	Notes              string          `json:"notes"`
	CreatedAt          string          `json:"created_at"`
}

// OrderItemRow mirrors one row of the order_items table.
type OrderItemRow struct {
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  *string         `json:"image_url"`
}

// DeliveryOption is one selectable delivery tier.
type DeliveryOption struct {
	Code        string          `json:"code"`
	Label       string          `json:"label"`
	Charge      decimal.Decimal `json:"charge"`
	EstimateMin int             `json:"estimate_minutes"`
}

// OrderLineItem is one cart line submitted to order creation.
type OrderLineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// CreateOrderRequest is the payload for the order-creation function.
type CreateOrderRequest struct {
	ProfileID          *string         `json:"profile_id,omitempty"`
	GuestID            *string         `json:"guest_id,omitempty"`
	CustomerName       string          `json:"customer_name"`
	PhoneNumber        string          `json:"phone_number"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	LocationName       string          `json:"location_name"`
	DeliveryOptionCode string          `json:"delivery_option_code"`
	DeliveryCharge     decimal.Decimal `json:"delivery_charge"`
	Notes              string          `json:"notes"`
	Items              []OrderLineItem `json:"items"`
}

// CreateOrderResult is the success payload of the order-creation function.
type CreateOrderResult struct {
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

// AuthSession is the token bundle issued by the auth service.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// User is the identity attached to an auth session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// ProductQuery narrows a product listing.
type ProductQuery struct {
	CategoryID string
	Search     string
	OnlyActive bool
	Limit      int
}

// ListProducts fetches product rows matching the query.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]ProductRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "name.asc")
	if q.CategoryID != "" {
		params.Set("category_id", "eq."+q.CategoryID)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("name", "ilike.*"+search+"*")
	}
	if q.OnlyActive {
		params.Set("is_active", "eq.true")
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.Limit))
	}

	var rows []ProductRow
	if err := c.queryRows(ctx, "products", "", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetProduct fetches a single product row by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*ProductRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)
	params.Set("limit", "1")

	var rows []ProductRow
	if err := c.queryRows(ctx, "products", "", params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &rows[0], nil
}

// ListCategories fetches all categories in display order.
func (c *Client) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "position.asc")

	var rows []CategoryRow
	if err := c.queryRows(ctx, "categories", "", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetShopSettings fetches the single shop configuration row.
func (c *Client) GetShopSettings(ctx context.Context) (*ShopSettingsRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("limit", "1")

	var rows []ShopSettingsRow
	if err := c.queryRows(ctx, "shop_settings", "", params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop settings not configured")
	}
	return &rows[0], nil
}

// ListAddresses fetches the saved addresses owned by a profile.
func (c *Client) ListAddresses(ctx context.Context, token, profileID string) ([]AddressRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("profile_id", "eq."+profileID)
	params.Set("order", "is_default.desc,nickname.asc")

	var rows []AddressRow
	if err := c.queryRows(ctx, "addresses", token, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertAddress creates a saved address and returns the stored row.
func (c *Client) InsertAddress(ctx context.Context, token string, input AddressInput) (*AddressRow, error) {
	var rows []AddressRow
	if err := c.mutateRows(ctx, "POST", "addresses", token, url.Values{}, input, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address insert returned no row")
	}
	return &rows[0], nil
}

// UpdateAddress patches a saved address by id.
func (c *Client) UpdateAddress(ctx context.Context, token, addressID string, input AddressInput) (*AddressRow, error) {
	params := url.Values{}
	params.Set("id", "eq."+addressID)

	var rows []AddressRow
	if err := c.mutateRows(ctx, "PATCH", "addresses", token, params, input, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return &rows[0], nil
}

// ClearDefaultAddress unsets the default flag on every address of a profile.
func (c *Client) ClearDefaultAddress(ctx context.Context, token, profileID string) error {
	params := url.Values{}
	params.Set("profile_id", "eq."+profileID)
	params.Set("is_default", "eq.true")

	payload := map[string]bool{"is_default": false}
	return c.mutateRows(ctx, "PATCH", "addresses", token, params, payload, nil)
}

// DeleteAddress removes a saved address by id.
func (c *Client) DeleteAddress(ctx context.Context, token, addressID string) error {
	params := url.Values{}
	params.Set("id", "eq."+addressID)
	return c.mutateRows(ctx, "DELETE", "addresses", token, params, nil, nil)
}

// ListWishlistRows fetches the server-side wishlist of a profile.
func (c *Client) ListWishlistRows(ctx context.Context, token, profileID string) ([]WishlistRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("profile_id", "eq."+profileID)

	var rows []WishlistRow
	if err := c.queryRows(ctx, "wishlist_items", token, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertWishlistRow stores a wishlist entry for a profile.
func (c *Client) InsertWishlistRow(ctx context.Context, token string, row WishlistRow) error {
	return c.mutateRows(ctx, "POST", "wishlist_items", token, url.Values{}, row, nil)
}

// DeleteWishlistRow removes a wishlist entry keyed by (profile, product).
func (c *Client) DeleteWishlistRow(ctx context.Context, token, profileID, productID string) error {
	params := url.Values{}
	params.Set("profile_id", "eq."+profileID)
	params.Set("product_id", "eq."+productID)
	return c.mutateRows(ctx, "DELETE", "wishlist_items", token, params, nil, nil)
}

// ListOrders fetches order history for a profile, newest first.
func (c *Client) ListOrders(ctx context.Context, token, profileID string) ([]OrderRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("profile_id", "eq."+profileID)
	params.Set("order", "created_at.desc")

	var rows []OrderRow
	if err := c.queryRows(ctx, "orders", token, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetOrder fetches one order row by id.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*OrderRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+orderID)
	params.Set("limit", "1")

	var rows []OrderRow
	if err := c.queryRows(ctx, "orders", token, params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return &rows[0], nil
}

// ListOrderItems fetches the line items for an order.
func (c *Client) ListOrderItems(ctx context.Context, token, orderID string) ([]OrderItemRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order_id", "eq."+orderID)

	var rows []OrderItemRow
	if err := c.queryRows(ctx, "order_items", token, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetProfileRow fetches the profile row for an authenticated user.
func (c *Client) GetProfileRow(ctx context.Context, token, profileID string) (*ProfileRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+profileID)
	params.Set("limit", "1")

	var rows []ProfileRow
	if err := c.queryRows(ctx, "profiles", token, params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return &rows[0], nil
}

// UpdateProfileRow patches the profile row for an authenticated user.
func (c *Client) UpdateProfileRow(ctx context.Context, token, profileID string, input ProfileInput) (*ProfileRow, error) {
	params := url.Values{}
	params.Set("id", "eq."+profileID)

	var rows []ProfileRow
	if err := c.mutateRows(ctx, "PATCH", "profiles", token, params, input, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return &rows[0], nil
}

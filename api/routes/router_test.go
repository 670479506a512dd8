package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	cartsvc "github.com/kiranakart/storefront/internal/cart"
	catalogsvc "github.com/kiranakart/storefront/internal/catalog"
	checkoutsvc "github.com/kiranakart/storefront/internal/checkout"
	locationsvc "github.com/kiranakart/storefront/internal/location"
	"github.com/kiranakart/storefront/internal/locationflow"
	"github.com/kiranakart/storefront/internal/navigation"
	profilesvc "github.com/kiranakart/storefront/internal/profile"
	sessionsvc "github.com/kiranakart/storefront/internal/session"
	"github.com/kiranakart/storefront/internal/state"
	wishlistsvc "github.com/kiranakart/storefront/internal/wishlist"
	"github.com/kiranakart/storefront/pkg/backend"
	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/maps"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubRowStore struct{}

func (stubRowStore) ListWishlistRows(context.Context, string, string) ([]backend.WishlistRow, error) {
	return nil, nil
}
func (stubRowStore) InsertWishlistRow(context.Context, string, backend.WishlistRow) error { return nil }
func (stubRowStore) DeleteWishlistRow(context.Context, string, string, string) error      { return nil }

type stubCheckoutBackend struct{}

func (stubCheckoutBackend) GetShopSettings(context.Context) (*backend.ShopSettingsRow, error) {
	return &backend.ShopSettingsRow{MinOrderValue: decimal.RequireFromString("200.00"), ShopOpen: true}, nil
}

func (stubCheckoutBackend) ListDeliveryOptions(context.Context) ([]backend.DeliveryOption, error) {
	return []backend.DeliveryOption{{Code: "instant", Label: "Instant", Charge: decimal.RequireFromString("40.00")}}, nil
}

func (stubCheckoutBackend) ComputeDeliveryCharge(context.Context, float64, float64, string) (decimal.Decimal, error) {
	return decimal.RequireFromString("40.00"), nil
}

func (stubCheckoutBackend) CreateOrder(context.Context, string, backend.CreateOrderRequest) (*backend.CreateOrderResult, error) {
	return &backend.CreateOrderResult{OrderID: "o1", Total: decimal.RequireFromString("381.00")}, nil
}

type stubCatalogBackend struct{}

func (stubCatalogBackend) ListProducts(context.Context, backend.ProductQuery) ([]backend.ProductRow, error) {
	return []backend.ProductRow{{ID: "p1", Name: "Milk", PriceString: "₹45.50", IsActive: true}}, nil
}

func (stubCatalogBackend) GetProduct(_ context.Context, id string) (*backend.ProductRow, error) {
	return &backend.ProductRow{ID: id, Name: "Milk", PriceString: "₹45.50", IsActive: true}, nil
}

func (stubCatalogBackend) ListCategories(context.Context) ([]backend.CategoryRow, error) {
	return []backend.CategoryRow{{ID: "c1", Name: "Dairy"}}, nil
}

type stubProfileBackend struct{}

func (stubProfileBackend) GetProfileRow(context.Context, string, string) (*backend.ProfileRow, error) {
	return &backend.ProfileRow{ID: "prof-1", FullName: "Asha"}, nil
}

func (stubProfileBackend) UpdateProfileRow(context.Context, string, string, backend.ProfileInput) (*backend.ProfileRow, error) {
	return &backend.ProfileRow{ID: "prof-1"}, nil
}

func (stubProfileBackend) ListAddresses(context.Context, string, string) ([]backend.AddressRow, error) {
	return nil, nil
}

func (stubProfileBackend) InsertAddress(context.Context, string, backend.AddressInput) (*backend.AddressRow, error) {
	return &backend.AddressRow{ID: "a1"}, nil
}

func (stubProfileBackend) UpdateAddress(context.Context, string, string, backend.AddressInput) (*backend.AddressRow, error) {
	return &backend.AddressRow{ID: "a1"}, nil
}

func (stubProfileBackend) ClearDefaultAddress(context.Context, string, string) error { return nil }

func (stubProfileBackend) DeleteAddress(context.Context, string, string) error { return nil }

type stubAuthBackend struct{}

func (stubAuthBackend) SignIn(context.Context, string, string) (*backend.AuthSession, error) {
	return &backend.AuthSession{AccessToken: "tok", User: backend.User{ID: "prof-1"}}, nil
}

func (stubAuthBackend) SignUp(context.Context, string, string) (*backend.AuthSession, error) {
	return &backend.AuthSession{AccessToken: "tok", User: backend.User{ID: "prof-1"}}, nil
}

func (stubAuthBackend) SignOut(context.Context, string) error { return nil }

func (stubAuthBackend) GetUser(context.Context, string) (*backend.User, error) {
	return &backend.User{ID: "prof-1"}, nil
}

type stubOrders struct{}

func (stubOrders) ListOrders(context.Context, string, string) ([]backend.OrderRow, error) {
	return nil, nil
}

func (stubOrders) GetOrder(context.Context, string, string) (*backend.OrderRow, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrders) ListOrderItems(context.Context, string, string) ([]backend.OrderItemRow, error) {
	return nil, nil
}

type stubProvider struct{}

func (stubProvider) Autocomplete(context.Context, maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error) {
	return nil, nil
}

func (stubProvider) ResolvePlace(context.Context, string) (*maps.PlaceDetails, error) {
	return &maps.PlaceDetails{}, nil
}

func (stubProvider) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "HSR Layout", nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test"},
		Session: config.SessionConfig{JWTSecret: "secret", CookieTTL: time.Hour},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Checkout: config.CheckoutConfig{
			FallbackMinOrderValue:     "200.00",
			FallbackDeliveryCharge:    "40.00",
			FallbackCurrencySymbol:    "₹",
			InstantDeliveryOptionCode: "instant",
		},
		LocationFlow: config.LocationFlowConfig{
			DebounceInterval: 10 * time.Millisecond,
			CenterEpsilon:    1e-6,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	persister := state.NewMemoryPersister()
	locks := state.NewSessionLocks()

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{Persister: persister, Locks: locks})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	wishlistService, err := wishlistsvc.NewService(wishlistsvc.ServiceParams{
		Persister: persister, Locks: locks, Rows: stubRowStore{}, Cart: cartService,
	})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	locationService, err := locationsvc.NewService(locationsvc.ServiceParams{Persister: persister, Locks: locks})
	if err != nil {
		t.Fatalf("location service: %v", err)
	}
	flow, err := locationflow.NewManager(locationflow.ManagerParams{
		Ensure:    func(context.Context) (locationflow.Provider, error) { return stubProvider{}, nil },
		Locations: locationService,
		Config:    cfg.LocationFlow,
	})
	if err != nil {
		t.Fatalf("flow manager: %v", err)
	}
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Cart: cartService, Locations: locationService, Backend: stubCheckoutBackend{}, Config: cfg.Checkout,
	})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	catalogService, err := catalogsvc.NewService(catalogsvc.ServiceParams{Backend: stubCatalogBackend{}})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	profileService, err := profilesvc.NewService(profilesvc.ServiceParams{
		Backend: stubProfileBackend{}, Locations: locationService,
	})
	if err != nil {
		t.Fatalf("profile service: %v", err)
	}
	sessionService, err := sessionsvc.NewService(sessionsvc.ServiceParams{
		Auth: stubAuthBackend{}, Cart: cartService, Wishlist: wishlistService, Config: cfg.Session,
	})
	if err != nil {
		t.Fatalf("session service: %v", err)
	}

	return NewRouter(Deps{
		Config:     cfg,
		Redis:      stubPinger{},
		Registry:   prometheus.NewRegistry(),
		Sessions:   sessionService,
		Cart:       cartService,
		Wishlist:   wishlistService,
		Locations:  locationService,
		Flow:       flow,
		Checkout:   checkoutService,
		Catalog:    catalogService,
		Profile:    profileService,
		Orders:     stubOrders{},
		Navigation: navigation.NewStack(),
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterIssuesSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "kk_session" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
}

func TestRouterCartRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"product_id":"p1","name":"Milk","price_string":"₹45.50","quantity":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	req.AddCookie(&http.Cookie{Name: "kk_session", Value: "s1"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "kk_session", Value: "s1"})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Subtotal != "91.00" {
		t.Fatalf("unexpected subtotal %q", envelope.Data.Subtotal)
	}
}

func TestRouterCheckoutEmptyCartRedirect(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout", nil)
	req.AddCookie(&http.Cookie{Name: "kk_session", Value: "s-empty"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"redirect":"/"`) {
		t.Fatalf("expected redirect hint in %s", resp.Body.String())
	}
}

func TestRouterProfileRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.AddCookie(&http.Cookie{Name: "kk_session", Value: "s1"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterOrderDetailNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/missing", nil)
	req.AddCookie(&http.Cookie{Name: "kk_session", Value: "s1"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(config.BackendConfig{
		BaseURL:        "http://backend.test",
		APIKey:         "anon-key",
		RequestTimeout: time.Second,
	}, WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestListProductsBuildsFilterParams(t *testing.T) {
	var captured *http.Request
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `[{"id":"p1","name":"Tomato","price_string":"₹45.50","price":45.5,"is_active":true}]`), nil
	})

	rows, err := client.ListProducts(context.Background(), ProductQuery{
		CategoryID: "veg",
		Search:     "tom",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Tomato" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	q := captured.URL.Query()
	if q.Get("category_id") != "eq.veg" {
		t.Fatalf("unexpected category filter %q", q.Get("category_id"))
	}
	if q.Get("name") != "ilike.*tom*" {
		t.Fatalf("unexpected search filter %q", q.Get("name"))
	}
	if q.Get("is_active") != "eq.true" {
		t.Fatalf("unexpected active filter %q", q.Get("is_active"))
	}
	if captured.Header.Get("apikey") != "anon-key" {
		t.Fatal("apikey header missing")
	}
	if captured.Header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("unexpected authorization %q", captured.Header.Get("Authorization"))
	}
}

func TestUserTokenOverridesAnonKey(t *testing.T) {
	var captured *http.Request
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	if _, err := client.ListAddresses(context.Background(), "user-token", "profile-1"); err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if captured.Header.Get("Authorization") != "Bearer user-token" {
		t.Fatalf("unexpected authorization %q", captured.Header.Get("Authorization"))
	}
	if captured.URL.Query().Get("profile_id") != "eq.profile-1" {
		t.Fatalf("unexpected profile filter %q", captured.URL.Query().Get("profile_id"))
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	_, err := client.GetProduct(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestResolveLocationName(t *testing.T) {
	var captured map[string]float64
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/functions/v1/resolve-location-name") {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"location_name":"Indiranagar, Bengaluru"}`), nil
	})

	name, err := client.ResolveLocationName(context.Background(), 12.9716, 77.5946)
	if err != nil {
		t.Fatalf("resolve location name: %v", err)
	}
	if name != "Indiranagar, Bengaluru" {
		t.Fatalf("unexpected name %q", name)
	}
	if captured["latitude"] != 12.9716 || captured["longitude"] != 77.5946 {
		t.Fatalf("unexpected payload %+v", captured)
	}
}

func TestResolveLocationNameRejectsEmptyResult(t *testing.T) {
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"location_name":"  "}`), nil
	})

	_, err := client.ResolveLocationName(context.Background(), 12.9716, 77.5946)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	var captured map[string]any
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/functions/v1/create-order") {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		raw, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(raw, &captured); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"order_id":"abc123","total":220}`), nil
	})

	guestID := "guest-7"
	result, err := client.CreateOrder(context.Background(), "", CreateOrderRequest{
		GuestID:            &guestID,
		CustomerName:       "Asha",
		PhoneNumber:        "9876543210",
		Latitude:           12.9716,
		Longitude:          77.5946,
		LocationName:       "MG Road, Bengaluru",
		DeliveryOptionCode: "standard",
		Items: []OrderLineItem{
			{ProductID: "p1", Name: "Tomato", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if result.OrderID != "abc123" {
		t.Fatalf("unexpected order id %q", result.OrderID)
	}
	if captured["guest_id"] != "guest-7" {
		t.Fatalf("expected guest id in payload, got %v", captured["guest_id"])
	}
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request should be sent")
		return nil, nil
	})

	_, err := client.CreateOrder(context.Background(), "", CreateOrderRequest{
		Items: []OrderLineItem{{ProductID: "p1", Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBackendErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		client := testClient(t, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(tc.status, `{}`), nil
		})
		_, err := client.ListCategories(context.Background())
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.code, err)
		}
	}
}

func TestSignInRejectsEmptySession(t *testing.T) {
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.SignIn(context.Background(), "a@example.com", "pw")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTransportErrorsBecomeDependencyErrors(t *testing.T) {
	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.GetShopSettings(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

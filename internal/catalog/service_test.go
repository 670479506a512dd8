package catalog

import (
	"context"
	"testing"

	"github.com/kiranakart/storefront/pkg/backend"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

type fakeBackend struct {
	products  []backend.ProductRow
	lastQuery backend.ProductQuery
	err       error
}

func (f *fakeBackend) ListProducts(_ context.Context, q backend.ProductQuery) ([]backend.ProductRow, error) {
	f.lastQuery = q
	return f.products, f.err
}

func (f *fakeBackend) GetProduct(_ context.Context, id string) (*backend.ProductRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (f *fakeBackend) ListCategories(context.Context) ([]backend.CategoryRow, error) {
	return []backend.CategoryRow{{ID: "veg", Name: "Vegetables"}}, f.err
}

func TestListProductsFiltersActiveOnly(t *testing.T) {
	be := &fakeBackend{products: []backend.ProductRow{
		{ID: "p1", Name: "Tomato", PriceString: "₹45.50", CategoryID: "veg"},
	}}
	svc, err := NewService(ServiceParams{Backend: be})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	products, err := svc.ListProducts(context.Background(), Query{CategoryID: " veg ", Search: " tom "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 || products[0].PriceString != "₹45.50" {
		t.Fatalf("unexpected products %+v", products)
	}
	if !be.lastQuery.OnlyActive {
		t.Fatal("catalog must request active products only")
	}
	if be.lastQuery.CategoryID != "veg" || be.lastQuery.Search != "tom" {
		t.Fatalf("query not trimmed: %+v", be.lastQuery)
	}
}

func TestGetProductRequiresID(t *testing.T) {
	svc, err := NewService(ServiceParams{Backend: &fakeBackend{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBackendErrorsPropagate(t *testing.T) {
	be := &fakeBackend{err: pkgerrors.New(pkgerrors.CodeDependency, "backend down")}
	svc, err := NewService(ServiceParams{Backend: be})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ListProducts(context.Background(), Query{})
	if !pkgerrors.Retryable(err) {
		t.Fatalf("catalog failures should be retryable, got %v", err)
	}
}

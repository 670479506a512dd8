// Package catalog is the read-only product and category surface over
// the hosted tables. Failures surface as retryable dependency errors;
// the client retries manually.
package catalog

import (
	"context"
	"strings"

	"github.com/kiranakart/storefront/pkg/backend"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// Backend is the hosted-table surface the catalog needs.
type Backend interface {
	ListProducts(ctx context.Context, q backend.ProductQuery) ([]backend.ProductRow, error)
	GetProduct(ctx context.Context, id string) (*backend.ProductRow, error)
	ListCategories(ctx context.Context) ([]backend.CategoryRow, error)
}

// ProductDTO is the API projection of a catalog product.
type ProductDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceString  string `json:"price_string"`
	Unit         string `json:"unit,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	CategoryID   string `json:"category_id"`
	Availability string `json:"availability"`
}

// CategoryDTO is the API projection of a category.
type CategoryDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Query narrows a product listing.
type Query struct {
	CategoryID string
	Search     string
	Limit      int
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Backend Backend
}

// Service exposes catalog reads.
type Service interface {
	ListProducts(ctx context.Context, q Query) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id string) (ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type service struct {
	backend Backend
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend client is required")
	}
	return &service{backend: params.Backend}, nil
}

// ListProducts returns active products matching the query.
func (s *service) ListProducts(ctx context.Context, q Query) ([]ProductDTO, error) {
	rows, err := s.backend.ListProducts(ctx, backend.ProductQuery{
		CategoryID: strings.TrimSpace(q.CategoryID),
		Search:     strings.TrimSpace(q.Search),
		OnlyActive: true,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, err
	}
	products := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		products = append(products, toProductDTO(row))
	}
	return products, nil
}

// GetProduct returns one product by id.
func (s *service) GetProduct(ctx context.Context, id string) (ProductDTO, error) {
	if strings.TrimSpace(id) == "" {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	row, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(*row), nil
}

// ListCategories returns the category list in display order.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.backend.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		dto := CategoryDTO{ID: row.ID, Name: row.Name}
		if row.ImageURL != nil {
			dto.ImageURL = *row.ImageURL
		}
		categories = append(categories, dto)
	}
	return categories, nil
}

func toProductDTO(row backend.ProductRow) ProductDTO {
	dto := ProductDTO{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		PriceString:  row.PriceString,
		Unit:         row.Unit,
		CategoryID:   row.CategoryID,
		Availability: row.Availability,
	}
	if row.ImageURL != nil {
		dto.ImageURL = *row.ImageURL
	}
	return dto
}

package service

import (
	"context"

	"github.com/prn-tf/sentinel/internal/domain"
)

// catalog is the fixed product listing served to authorized clients.
var catalog = []domain.Product{
	{ID: 1, Name: "Notebook"},
	{ID: 2, Name: "Mouse sem fio"},
	{ID: 3, Name: "Teclado Mecânico"},
}

// ProductService serves the static product catalog.
type ProductService struct{}

// NewProductService creates a new ProductService.
func NewProductService() *ProductService {
	return &ProductService{}
}

// List returns a copy of the catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(catalog))
	copy(out, catalog)
	return out, nil
}

// Get returns a single product by ID.
func (s *ProductService) Get(ctx context.Context, id int) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range catalog {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"storefront-cart/store"
)

// Service is the catalog and stock layer behind the storefront API.
type Service struct {
	store store.Catalog
}

func NewService(s store.Catalog) *Service {
	return &Service{store: s}
}

func (s *Service) CreateProduct(ctx context.Context, title, image string, price decimal.Decimal, stock int) (int64, error) {
	if title == "" {
		return 0, errors.New("title required")
	}
	if price.IsNegative() {
		return 0, errors.New("price must be >= 0")
	}
	if stock < 0 {
		return 0, errors.New("stock must be >= 0")
	}
	return s.store.CreateProduct(ctx, title, image, price, stock)
}

func (s *Service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDTO(r))
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (ProductDTO, error) {
	if productID <= 0 {
		return ProductDTO{}, store.ErrNotFound
	}
	r, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return ProductDTO{}, err
	}
	return toDTO(r), nil
}

func (s *Service) GetStock(ctx context.Context, productID int64) (StockDTO, error) {
	if productID <= 0 {
		return StockDTO{}, store.ErrNotFound
	}
	n, err := s.store.GetStock(ctx, productID)
	if err != nil {
		return StockDTO{}, err
	}
	return StockDTO{ID: productID, Amount: n}, nil
}

func (s *Service) UpdateStock(ctx context.Context, productID int64, newStock int) error {
	if newStock < 0 {
		return errors.New("stock cannot be negative")
	}
	return s.store.UpdateStock(ctx, productID, newStock)
}

func toDTO(r store.ProductRow) ProductDTO {
	p := ProductDTO{ID: r.ID, Title: r.Title, Price: r.Price}
	if r.Image.Valid {
		p.Image = r.Image.String
	}
	return p
}

// DTOs, shaped like the storefront's /products and /stock payloads.
type ProductDTO struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type StockDTO struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

package service

import (
	"context"

	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	CreateProduct(ctx context.Context, title, image string, price decimal.Decimal, stock int) (int64, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, productID int64) (ProductDTO, error)
	GetStock(ctx context.Context, productID int64) (StockDTO, error)
	UpdateStock(ctx context.Context, productID int64, newStock int) error
}

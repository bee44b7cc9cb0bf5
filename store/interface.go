package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a key, product or stock row does not exist.
var ErrNotFound = errors.New("not found")

// KV is the string key-value storage that holds the persisted cart snapshot.
// Values are always written wholesale.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Catalog is the product and stock data served by the catalog API.
type Catalog interface {
	CreateProduct(ctx context.Context, title, image string, price decimal.Decimal, stock int) (int64, error)
	ListProducts(ctx context.Context) ([]ProductRow, error)
	GetProduct(ctx context.Context, productID int64) (ProductRow, error)

	GetStock(ctx context.Context, productID int64) (int, error)
	UpdateStock(ctx context.Context, productID int64, newStock int) error

	Close() error
}

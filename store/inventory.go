package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ProductRow is a products row joined with its stock.
type ProductRow struct {
	ID    int64
	Title string
	Price decimal.Decimal
	Image sql.NullString
}

// CreateProduct inserts a product with its initial stock and returns its id.
func (s *PostgresStore) CreateProduct(ctx context.Context, title, image string, price decimal.Decimal, stock int) (int64, error) {
	if stock < 0 {
		return 0, errors.New("stock cannot be negative")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO products (title, price, image) VALUES ($1, $2, $3) RETURNING id`,
		title, price, sql.NullString{String: image, Valid: image != ""},
	).Scan(&id); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO stock (product_id, amount) VALUES ($1, $2)`, id, stock); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, price, image FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Image); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns one product or ErrNotFound.
func (s *PostgresStore) GetProduct(ctx context.Context, productID int64) (ProductRow, error) {
	var p ProductRow
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, price, image FROM products WHERE id=$1`, productID,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Image)
	if err == sql.ErrNoRows {
		return ProductRow{}, ErrNotFound
	}
	return p, err
}

// GetStock returns current stock for a product.
func (s *PostgresStore) GetStock(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := s.DB.QueryRowContext(ctx, `SELECT amount FROM stock WHERE product_id=$1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// UpdateStock sets the absolute stock for a product (admin operation).
func (s *PostgresStore) UpdateStock(ctx context.Context, productID int64, newStock int) error {
	if newStock < 0 {
		return errors.New("stock cannot be negative")
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE stock SET amount=$1 WHERE product_id=$2`, newStock, productID)
	if err != nil {
		return err
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return ErrNotFound
	}
	return nil
}

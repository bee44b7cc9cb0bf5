package model

import "github.com/shopspring/decimal"

// Product is a catalog item plus the quantity held in the cart.
type Product struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

// Subtotal is price * amount.
func (p Product) Subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Amount)))
}

// Stock is the available quantity reported by the stock service.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

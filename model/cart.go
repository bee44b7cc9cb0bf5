package model

import "github.com/shopspring/decimal"

// Cart is an ordered list of products, unique by ID.
type Cart []Product

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// IndexOf returns the position of productID or -1.
func (c Cart) IndexOf(productID int64) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Find returns the entry for productID.
func (c Cart) Find(productID int64) (Product, bool) {
	if i := c.IndexOf(productID); i >= 0 {
		return c[i], true
	}
	return Product{}, false
}

// Summary is what the storefront header and cart page show.
type Summary struct {
	Products int             `json:"products"`
	Units    int             `json:"units"`
	Total    decimal.Decimal `json:"total"`
}

func (c Cart) Summary() Summary {
	s := Summary{Products: len(c), Total: decimal.Zero}
	for _, p := range c {
		s.Units += p.Amount
		s.Total = s.Total.Add(p.Subtotal())
	}
	return s
}

// Sanitize drops entries with a non-positive amount or a repeated ID, keeping
// the first occurrence. It returns the cleaned cart and the number of entries
// dropped.
func (c Cart) Sanitize() (Cart, int) {
	out := make(Cart, 0, len(c))
	seen := make(map[int64]struct{}, len(c))
	for _, p := range c {
		if p.Amount < 1 {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, len(c) - len(out)
}

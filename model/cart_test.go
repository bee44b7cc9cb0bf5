package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartSummary(t *testing.T) {
	c := Cart{
		{ID: 1, Price: decimal.RequireFromString("179.90"), Amount: 2},
		{ID: 2, Price: decimal.RequireFromString("139.90"), Amount: 1},
	}
	s := c.Summary()
	if s.Products != 2 || s.Units != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if !s.Total.Equal(decimal.RequireFromString("499.70")) {
		t.Fatalf("expected total 499.70, got %s", s.Total)
	}
}

func TestCartCloneIsIndependent(t *testing.T) {
	c := Cart{{ID: 1, Amount: 1}}
	cl := c.Clone()
	cl[0].Amount = 9
	if c[0].Amount != 1 {
		t.Fatalf("clone shares storage with original")
	}
}

func TestCartFindAndIndexOf(t *testing.T) {
	c := Cart{{ID: 4, Amount: 1}, {ID: 7, Amount: 3}}
	if c.IndexOf(7) != 1 || c.IndexOf(99) != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
	p, ok := c.Find(7)
	if !ok || p.Amount != 3 {
		t.Fatalf("Find(7) = %+v, %v", p, ok)
	}
	if _, ok := c.Find(99); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestCartSanitize(t *testing.T) {
	c := Cart{
		{ID: 1, Amount: 2},
		{ID: 2, Amount: 0},
		{ID: 1, Amount: 5},
		{ID: 3, Amount: 1},
	}
	out, dropped := c.Sanitize()
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}
	if len(out) != 2 || out[0].ID != 1 || out[0].Amount != 2 || out[1].ID != 3 {
		t.Fatalf("unexpected sanitized cart: %+v", out)
	}
}

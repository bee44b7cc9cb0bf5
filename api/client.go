// Package api talks to the storefront backend: the stock service and the
// product catalog.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"storefront-cart/model"
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Client is an HTTP client for GET /stock/{id} and GET /products/{id}.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client rooted at baseURL. A zero timeout means no
// client-side limit beyond the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// stockBody keeps a missing amount apart from an amount of zero.
type stockBody struct {
	ID     int64 `json:"id"`
	Amount *int  `json:"amount"`
}

// GetStock returns the units available for productID. A body without an
// amount is a decode error, not an empty stock.
func (c *Client) GetStock(ctx context.Context, productID int64) (model.Stock, error) {
	var b stockBody
	path := fmt.Sprintf("/stock/%d", productID)
	if err := c.get(ctx, path, &b); err != nil {
		return model.Stock{}, errors.Wrapf(err, "stock for product %d", productID)
	}
	if b.Amount == nil {
		return model.Stock{}, errors.Errorf("decode %s%s: missing amount", c.baseURL, path)
	}
	return model.Stock{ID: b.ID, Amount: *b.Amount}, nil
}

// GetProduct returns the catalog record for productID. Amount is left zero.
func (c *Client) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &p); err != nil {
		return model.Product{}, errors.Wrapf(err, "product %d", productID)
	}
	p.Amount = 0
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", url)
	}
	return nil
}

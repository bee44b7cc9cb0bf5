package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/stock/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["id"] {
		case "1":
			fmt.Fprint(w, `{"id":1,"amount":3}`)
		case "2":
			fmt.Fprint(w, `{"id":2,`)
		case "3":
			fmt.Fprint(w, `{}`)
		case "4":
			fmt.Fprint(w, `null`)
		case "5":
			fmt.Fprint(w, `{"id":5,"amount":0}`)
		default:
			http.NotFound(w, r)
		}
	}).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://img/1.jpg"}`)
	}).Methods(http.MethodGet)
	r.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetStock(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL+"/", time.Second)

	s, err := c.GetStock(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), s.ID)
	require.Equal(t, 3, s.Amount)
}

func TestGetStock_NotFound(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, time.Second)

	_, err := c.GetStock(context.Background(), 42)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.Code)
}

func TestGetStock_MalformedBody(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, time.Second)

	_, err := c.GetStock(context.Background(), 2)
	require.Error(t, err)
}

func TestGetStock_MissingAmount(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.GetStock(ctx, 3)
	require.ErrorContains(t, err, "missing amount")
	_, err = c.GetStock(ctx, 4)
	require.ErrorContains(t, err, "missing amount")

	s, err := c.GetStock(ctx, 5)
	require.NoError(t, err)
	require.Zero(t, s.Amount)
}

func TestGetProduct(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, time.Second)

	p, err := c.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
	require.Equal(t, "Tênis de Caminhada Leve Confortável", p.Title)
	require.True(t, p.Price.Equal(decimal.RequireFromString("179.9")))
	require.Zero(t, p.Amount)

	_, err = c.GetProduct(context.Background(), 5)
	require.Error(t, err)
}

func TestClientTimeout(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, 50*time.Millisecond)

	err := c.get(context.Background(), "/slow", &struct{}{})
	require.Error(t, err)
}

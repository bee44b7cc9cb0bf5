package main

// GET  /products       - list the catalog
// POST /products       - create a product with its initial stock
// GET  /products/{id}  - one product, as the storefront cart fetches it
// GET  /stock/{id}     - units available for a product
// PUT  /stock/{id}     - set the units available (admin)

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"storefront-cart/config"
	"storefront-cart/handler"
	"storefront-cart/logging"
	"storefront-cart/service"
	"storefront-cart/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("Failed running migrations: %v", err)
	}
	log.Info("database migrations executed")

	// --- Service ---
	var svc service.ServiceInterface = service.NewService(st)

	// --- Router ---
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("catalog-api"))
	handler.NewHandler(svc, log).RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.CatalogAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.CatalogAddr).Info("catalog api listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

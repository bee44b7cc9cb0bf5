// Package cart holds the storefront shopping cart: an ordered list of products
// with quantities, checked against the stock service and mirrored to a
// key-value storage after every change.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront-cart/model"
	"storefront-cart/store"
)

// DefaultKey is the storage key the cart snapshot is kept under.
const DefaultKey = "@RocketShoes:cart"

var (
	ErrOutOfStock      = errors.New("requested amount exceeds stock")
	ErrProductNotFound = errors.New("product not in cart")
	ErrInvalidProduct  = errors.New("invalid product id")
)

// StockService reports units available per product.
type StockService interface {
	GetStock(ctx context.Context, productID int64) (model.Stock, error)
}

// CatalogService returns product records.
type CatalogService interface {
	GetProduct(ctx context.Context, productID int64) (model.Product, error)
}

// UpdateProductAmount is the input of Store.UpdateProductAmount.
type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// Store owns the cart. Operations take a snapshot, wait on the network and
// then commit; two overlapping operations resolve last-committed-wins.
type Store struct {
	stock    StockService
	catalog  CatalogService
	storage  store.KV
	key      string
	notifier Notifier
	log      logrus.FieldLogger
	tracer   trace.Tracer

	mu      sync.Mutex
	cart    model.Cart
	subs    map[int]chan model.Cart
	nextSub int
	closed  bool
}

type Option func(*Store)

func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *Store) { s.log = l } }

// WithKey overrides DefaultKey.
func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) { s.tracer = tp.Tracer("storefront-cart/cart") }
}

// New builds a Store and loads the cart persisted under its key. A missing
// key gives an empty cart, and so does a value that cannot be decoded.
func New(ctx context.Context, stock StockService, catalog CatalogService, storage store.KV, opts ...Option) (*Store, error) {
	s := &Store{
		stock:   stock,
		catalog: catalog,
		storage: storage,
		key:     DefaultKey,
		log:     logrus.StandardLogger(),
		tracer:  otel.Tracer("storefront-cart/cart"),
		subs:    make(map[int]chan model.Cart),
	}
	for _, o := range opts {
		o(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Log: s.log}
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		s.cart = model.Cart{}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load cart")
	}

	var c model.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("stored cart is unreadable, starting empty")
		s.cart = model.Cart{}
		return nil
	}
	c, dropped := c.Sanitize()
	if dropped > 0 {
		s.log.WithFields(logrus.Fields{"key": s.key, "dropped": dropped}).Warn("dropped invalid stored cart entries")
	}
	s.cart = c
	return nil
}

// Cart returns the latest committed cart.
func (s *Store) Cart() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Summary() model.Summary {
	return s.Cart().Summary()
}

// AddProduct adds one unit of productID, fetching the catalog record when the
// product is not in the cart yet.
func (s *Store) AddProduct(ctx context.Context, productID int64) error {
	ctx, span := s.tracer.Start(ctx, "cart.AddProduct",
		trace.WithAttributes(attribute.Int64("app.product_id", productID)))
	defer span.End()

	err := s.addProduct(ctx, productID)
	if err != nil {
		kind := KindAddFailed
		if errors.Is(err, ErrOutOfStock) {
			kind = KindAddOutOfStock
		}
		s.fail(ctx, span, kind, err)
	}
	return err
}

func (s *Store) addProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return errors.Wrapf(ErrInvalidProduct, "%d", productID)
	}

	next := s.Cart()
	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return err
	}

	current := 0
	i := next.IndexOf(productID)
	if i >= 0 {
		current = next[i].Amount
	}
	// compare before incrementing so a huge stored amount cannot wrap
	if current >= stock.Amount {
		return errors.Wrapf(ErrOutOfStock, "product %d: have %d, available %d", productID, current, stock.Amount)
	}
	desired := current + 1

	if i >= 0 {
		next[i].Amount = desired
	} else {
		p, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		p.ID = productID
		p.Amount = 1
		next = append(next, p)
	}

	s.commit(ctx, next)
	return nil
}

// RemoveProduct drops productID from the cart. Removing a product that is
// not in the cart is an error.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) error {
	ctx, span := s.tracer.Start(ctx, "cart.RemoveProduct",
		trace.WithAttributes(attribute.Int64("app.product_id", productID)))
	defer span.End()

	next := s.Cart()
	i := next.IndexOf(productID)
	if i < 0 {
		err := errors.Wrapf(ErrProductNotFound, "remove %d", productID)
		s.fail(ctx, span, KindRemoveFailed, err)
		return err
	}

	next = append(next[:i], next[i+1:]...)
	s.commit(ctx, next)
	return nil
}

// UpdateProductAmount sets the amount of a product already in the cart. A
// non-positive amount is ignored without any notification.
func (s *Store) UpdateProductAmount(ctx context.Context, in UpdateProductAmount) error {
	if in.Amount <= 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "cart.UpdateProductAmount",
		trace.WithAttributes(
			attribute.Int64("app.product_id", in.ProductID),
			attribute.Int("app.amount", in.Amount),
		))
	defer span.End()

	err := s.updateProductAmount(ctx, in)
	if err != nil {
		kind := KindUpdateFailed
		if errors.Is(err, ErrOutOfStock) {
			kind = KindUpdateOutOfStock
		}
		s.fail(ctx, span, kind, err)
	}
	return err
}

func (s *Store) updateProductAmount(ctx context.Context, in UpdateProductAmount) error {
	stock, err := s.stock.GetStock(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if in.Amount > stock.Amount {
		return errors.Wrapf(ErrOutOfStock, "product %d: want %d, available %d", in.ProductID, in.Amount, stock.Amount)
	}

	next := s.Cart()
	i := next.IndexOf(in.ProductID)
	if i < 0 {
		return errors.Wrapf(ErrProductNotFound, "update %d", in.ProductID)
	}
	next[i].Amount = in.Amount

	s.commit(ctx, next)
	return nil
}

func (s *Store) fail(ctx context.Context, span trace.Span, kind Kind, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind.String())
	s.log.WithError(err).WithField("kind", kind.String()).Debug("cart operation failed")
	s.notifier.Notify(ctx, notificationFor(kind))
}

// commit publishes next as the current cart, writes it to storage and wakes
// subscribers. A storage failure is logged; the in-memory cart stays committed.
func (s *Store) commit(ctx context.Context, next model.Cart) {
	if next == nil {
		next = model.Cart{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = next
	if err := s.persistLocked(ctx); err != nil {
		s.log.WithError(err).WithField("key", s.key).Error("failed to persist cart")
	}
	s.broadcastLocked()
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	return s.storage.Set(ctx, s.key, string(data))
}

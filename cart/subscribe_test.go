package cart

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"storefront-cart/store"
)

func TestSubscribe_ReceivesLatestSnapshot(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 5, 2: 5})
	ctx := context.Background()

	ch, unsubscribe := f.store.Subscribe()
	initial := <-ch
	require.Empty(t, initial)

	require.NoError(t, f.store.AddProduct(ctx, 1))
	got := <-ch
	require.Equal(t, []int64{1}, ids(got))

	// two commits without reading: only the newest is kept
	require.NoError(t, f.store.AddProduct(ctx, 2))
	require.NoError(t, f.store.AddProduct(ctx, 2))
	got = <-ch
	require.Equal(t, []int64{1, 2}, ids(got))
	require.Equal(t, 2, got[1].Amount)

	select {
	case c := <-ch:
		t.Fatalf("unexpected extra snapshot %+v", c)
	default:
	}

	unsubscribe()
	_, open := <-ch
	require.False(t, open)
	unsubscribe()
}

func TestSubscribe_FailedOperationsDoNotBroadcast(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 0})

	ch, unsubscribe := f.store.Subscribe()
	defer unsubscribe()
	<-ch

	_ = f.store.AddProduct(context.Background(), 1)
	_ = f.store.RemoveProduct(context.Background(), 1)

	select {
	case c := <-ch:
		t.Fatalf("unexpected snapshot %+v", c)
	default:
	}
}

func TestClose_EndsSubscriptions(t *testing.T) {
	f := newFixture(t, map[int64]int{1: 5})

	ch, _ := f.store.Subscribe()
	<-ch
	f.store.Close()

	_, open := <-ch
	require.False(t, open)

	late, _ := f.store.Subscribe()
	_, open = <-late
	require.False(t, open)

	// the store itself keeps working
	require.NoError(t, f.store.AddProduct(context.Background(), 1))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf
	log.Formatter = &logrus.JSONFormatter{}

	LogNotifier{Log: log}.Notify(context.Background(), notificationFor(KindRemoveFailed))
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), `"kind":"remove_failed"`)
	require.Contains(t, buf.String(), "Failed to remove product")

	buf.Reset()
	LogNotifier{Log: log}.Notify(context.Background(), notificationFor(KindUpdateOutOfStock))
	require.Contains(t, buf.String(), `"level":"warning"`)
}

func TestNotifierFunc(t *testing.T) {
	var got []Kind
	n := NotifierFunc(func(ctx context.Context, n Notification) { got = append(got, n.Kind) })

	s, err := New(context.Background(), &fakeStock{err: errors.New("down")}, &fakeCatalog{}, store.NewMemoryStore(),
		WithNotifier(n), WithLogger(quietLogger()))
	require.NoError(t, err)

	_ = s.AddProduct(context.Background(), 1)
	_ = s.UpdateProductAmount(context.Background(), UpdateProductAmount{ProductID: 1, Amount: 1})
	require.Equal(t, []Kind{KindAddFailed, KindUpdateFailed}, got)
}

func TestOperationsAreTraced(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	s, err := New(context.Background(), &fakeStock{amount: map[int64]int{1: 1}}, &fakeCatalog{}, store.NewMemoryStore(),
		WithNotifier(NopNotifier{}), WithLogger(quietLogger()), WithTracerProvider(tp))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.AddProduct(ctx, 1))
	require.ErrorIs(t, s.AddProduct(ctx, 1), ErrOutOfStock)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "cart.AddProduct", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "add_out_of_stock", spans[1].Status().Description)
}

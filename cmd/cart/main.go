// Command cart drives the storefront cart from a terminal:
//
//	cart list
//	cart add <product-id>
//	cart remove <product-id>
//	cart update <product-id> <amount>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront-cart/api"
	"storefront-cart/cart"
	"storefront-cart/config"
	"storefront-cart/logging"
	"storefront-cart/model"
	"storefront-cart/store"
)

const usage = `usage:
  cart list
  cart add <product-id>
  cart remove <product-id>
  cart update <product-id> <amount>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.NewWithOutput(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		log.WithError(err).Error("cart")
		os.Exit(1)
	}
}

// run executes one command. Cart operation failures reach the user through
// the notifier and do not make run fail.
func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger, args []string, out io.Writer) error {
	kv, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	client := api.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	s, err := cart.New(ctx, client, client, kv,
		cart.WithKey(cfg.StorageKey),
		cart.WithLogger(log),
		cart.WithNotifier(cart.LogNotifier{Log: log}))
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "list":
	case "add":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		_ = s.AddProduct(ctx, int64(id))
	case "remove":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		_ = s.RemoveProduct(ctx, int64(id))
	case "update":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		amount, err := intArg(args, 2)
		if err != nil {
			return err
		}
		_ = s.UpdateProductAmount(ctx, cart.UpdateProductAmount{ProductID: int64(id), Amount: amount})
	default:
		return errors.Errorf("unknown command %q\n%s", args[0], usage)
	}

	return printCart(out, s.Cart())
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New(usage)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.Wrapf(err, "argument %q", args[i])
	}
	return n, nil
}

func openStorage(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (store.KV, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.StorageRedis:
		r := store.NewRedisStore(cfg.RedisAddr, log)
		if err := r.Initialize(ctx); err != nil {
			_ = r.Close()
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.StoragePostgres:
		p, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := p.Migrate(ctx); err != nil {
			_ = p.Close()
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return store.NewFileStore(cfg.StoragePath), func() {}, nil
	}
}

func printCart(out io.Writer, c model.Cart) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tAMOUNT\tSUBTOTAL")
	for _, p := range c {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Title, p.Price.StringFixed(2), p.Amount, p.Subtotal().StringFixed(2))
	}
	sum := c.Summary()
	fmt.Fprintf(tw, "\t%d products\t\t%d\t%s\n", sum.Products, sum.Units, sum.Total.StringFixed(2))
	return tw.Flush()
}

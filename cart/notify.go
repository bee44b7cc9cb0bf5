package cart

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Kind identifies which user-facing message a failed operation produced.
type Kind int

const (
	KindAddOutOfStock Kind = iota + 1
	KindUpdateOutOfStock
	KindAddFailed
	KindRemoveFailed
	KindUpdateFailed
)

var kindNames = map[Kind]string{
	KindAddOutOfStock:    "add_out_of_stock",
	KindUpdateOutOfStock: "update_out_of_stock",
	KindAddFailed:        "add_failed",
	KindRemoveFailed:     "remove_failed",
	KindUpdateFailed:     "update_failed",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Level is how loudly the storefront shows a notification.
type Level int

const (
	LevelWarning Level = iota + 1
	LevelError
)

// Notification is a fire-and-forget message for the end user.
type Notification struct {
	Kind    Kind
	Level   Level
	Message string
}

const (
	msgOutOfStock   = "Requested quantity is out of stock"
	msgAddFailed    = "Failed to add product"
	msgRemoveFailed = "Failed to remove product"
	msgUpdateFailed = "Failed to update product amount"
)

func notificationFor(k Kind) Notification {
	switch k {
	case KindAddOutOfStock, KindUpdateOutOfStock:
		return Notification{Kind: k, Level: LevelWarning, Message: msgOutOfStock}
	case KindAddFailed:
		return Notification{Kind: k, Level: LevelError, Message: msgAddFailed}
	case KindRemoveFailed:
		return Notification{Kind: k, Level: LevelError, Message: msgRemoveFailed}
	default:
		return Notification{Kind: k, Level: LevelError, Message: msgUpdateFailed}
	}
}

// Notifier is the user-facing warning/error channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	entry := l.Log.WithField("kind", n.Kind.String())
	if n.Level == LevelWarning {
		entry.Warn(n.Message)
		return
	}
	entry.Error(n.Message)
}

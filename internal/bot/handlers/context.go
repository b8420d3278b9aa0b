package handlers

import (
	"context"
	"errors"
	"sync"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrNoShopContext is returned by a handler invoked without ShopContext.
var ErrNoShopContext = errors.New("no shop id in handler context")

// CommandFunc is a handler that reports failure instead of swallowing it.
type CommandFunc func(ctx context.Context, b *tgbot.Bot, update *models.Update) error

type shopIDKey struct{}

type errorSlotKey struct{}

// WithShopID returns a context carrying shopID.
func WithShopID(ctx context.Context, shopID string) context.Context {
	return context.WithValue(ctx, shopIDKey{}, shopID)
}

// ShopIDFromContext returns the shop id attached by ShopContext.
func ShopIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(shopIDKey{}).(string)
	return id, ok && id != ""
}

// ShopContext attaches shopID to the context of every update before any
// handler runs.
func ShopContext(shopID string) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			next(WithShopID(ctx, shopID), b, update)
		}
	}
}

// ErrorSlot collects the error of the handler run for one update.
type ErrorSlot struct {
	mu  sync.Mutex
	err error
}

// Err returns the first recorded handler error.
func (s *ErrorSlot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ErrorSlot) set(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// WithErrorSlot returns a context in which adapted handlers record their error.
func WithErrorSlot(ctx context.Context) (context.Context, *ErrorSlot) {
	slot := &ErrorSlot{}
	return context.WithValue(ctx, errorSlotKey{}, slot), slot
}

// Adapt turns a CommandFunc into a bot.HandlerFunc. A returned error is
// recorded in the context's ErrorSlot, if any.
func Adapt(fn CommandFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if err := fn(ctx, b, update); err != nil {
			if slot, ok := ctx.Value(errorSlotKey{}).(*ErrorSlot); ok {
				slot.set(err)
			}
		}
	}
}

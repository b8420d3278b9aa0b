// Package dispatch routes one inbound webhook delivery to the right shop's
// session. Only a missing path, an unknown shop and a banned shop are
// rejected; every other outcome, including internal faults, is acknowledged
// so the provider does not retry.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/storebot/internal/database"
	"github.com/edgard/storebot/internal/logger"
	"github.com/edgard/storebot/internal/session"
)

// RecordFetcher is the part of the store the dispatcher reads.
type RecordFetcher interface {
	GetDispatchRecord(ctx context.Context, shopID string) (*database.DispatchRecord, error)
}

// Decrypter turns a stored ciphertext back into a bot token.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// SessionFactory builds a session for a shop from its decrypted token.
type SessionFactory func(shopID, token string) (session.Handler, error)

// Dispatcher is safe for concurrent use. Deliveries for different shops
// never wait on each other.
type Dispatcher struct {
	store    RecordFetcher
	vault    Decrypter
	sessions *session.Cache
	build    SessionFactory
	logger   *slog.Logger
}

// New creates a Dispatcher. A nil cache gets a fresh one.
func New(store RecordFetcher, vault Decrypter, sessions *session.Cache, build SessionFactory, log *slog.Logger) *Dispatcher {
	if sessions == nil {
		sessions = session.NewCache()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Dispatcher{
		store:    store,
		vault:    vault,
		sessions: sessions,
		build:    build,
		logger:   log.With("component", "dispatcher"),
	}
}

// Dispatch handles an already decoded update.
func (d *Dispatcher) Dispatch(ctx context.Context, shopID string, update *models.Update) Result {
	return d.dispatch(ctx, shopID, func() (*models.Update, error) {
		if update == nil {
			return nil, errors.New("nil update")
		}
		return update, nil
	})
}

// DispatchRaw handles a raw request body. The body is only decoded once the
// shop is known to be active, so rejections never depend on its contents.
func (d *Dispatcher) DispatchRaw(ctx context.Context, shopID string, body []byte) Result {
	return d.dispatch(ctx, shopID, func() (*models.Update, error) {
		var update models.Update
		if err := json.Unmarshal(body, &update); err != nil {
			return nil, err
		}
		return &update, nil
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, shopID string, decode func() (*models.Update, error)) (res Result) {
	if shopID == "" {
		d.logger.WarnContext(ctx, "Webhook delivery without shop id")
		return reject(ReasonPathMissing, "shop id is required")
	}
	log := d.logger.With("shop_id", shopID)

	rec, err := d.store.GetDispatchRecord(ctx, shopID)
	switch {
	case errors.Is(err, database.ErrShopNotFound):
		log.WarnContext(ctx, "Webhook delivery for unknown shop")
		return reject(ReasonShopNotFound, "shop not found")
	case err != nil:
		log.ErrorContext(ctx, "Failed to load shop for webhook delivery", "error", err)
		return ack(ReasonStoreFailure, err)
	}

	if rec.IsBanned {
		log.WarnContext(ctx, "Webhook delivery for banned shop")
		return reject(ReasonShopBanned, "shop is banned")
	}
	if !rec.IsActive {
		log.InfoContext(ctx, "Webhook delivery for inactive shop ignored")
		return Result{Kind: Acknowledged, Reason: ReasonShopInactive, Message: "shop is inactive"}
	}

	update, err := decode()
	if err != nil {
		log.ErrorContext(ctx, "Failed to decode webhook update", "error", err)
		return ack(ReasonMalformedUpdate, err)
	}
	log = log.With("update_id", update.ID)

	token, err := d.vault.Decrypt(rec.EncryptedToken)
	if err != nil {
		log.ErrorContext(ctx, "Failed to decrypt bot token", "error", err)
		return ack(ReasonTokenDecryptFailure, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.ErrorContext(ctx, "Recovered panic while handling update", "error", err)
			res = ack(ReasonHandlerPanic, err)
		}
	}()

	h, err := d.sessions.GetOrCreate(shopID, rec.EncryptedToken, func() (session.Handler, error) {
		return d.build(shopID, token)
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to build bot session", "error", err)
		return ack(ReasonSessionFailure, err)
	}

	// Replies finish even if the provider drops the connection.
	if err := h.HandleUpdate(context.WithoutCancel(ctx), update); err != nil {
		log.ErrorContext(ctx, "Handler failed", "error", err)
		return ack(ReasonHandlerFailure, err)
	}

	return ack(ReasonDispatched, nil)
}

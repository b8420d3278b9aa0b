package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/storebot/internal/logger"
)

var (
	// ErrShopNotFound is returned when no shop has the requested id.
	ErrShopNotFound = errors.New("shop not found")
	// ErrBotAlreadyLinked is returned when another shop already holds the bot id.
	ErrBotAlreadyLinked = errors.New("bot is already linked to another shop")
)

// Store defines the interface for shop persistence.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetDispatchRecord returns the fields the webhook dispatcher needs.
	// Returns ErrShopNotFound if the shop does not exist.
	GetDispatchRecord(ctx context.Context, shopID string) (*DispatchRecord, error)

	// GetShop returns the full shop record or ErrShopNotFound.
	GetShop(ctx context.Context, shopID string) (*Shop, error)

	// CreateShop inserts a new shop.
	CreateShop(ctx context.Context, shop *Shop) error

	// SetBotToken stores a new token ciphertext and bot id. It always resets
	// is_bot_active and the cached bot username/name.
	SetBotToken(ctx context.Context, shopID, ciphertext string, botID int64) error

	// SetBotIdentity records the outcome of a webhook registration.
	SetBotIdentity(ctx context.Context, shopID string, active bool, username, name string) error

	// ClearBotToken unlinks the bot: token, bot id and identity are cleared.
	ClearBotToken(ctx context.Context, shopID string) error

	// FindShopIDByBotID returns the id of the shop linked to botID, or ErrShopNotFound.
	FindShopIDByBotID(ctx context.Context, botID int64) (string, error)

	// FindShopIDByOwner returns the id of the shop owned by ownerID, or ErrShopNotFound.
	FindShopIDByOwner(ctx context.Context, ownerID string) (string, error)

	// SetBanned sets the platform-level ban flag.
	SetBanned(ctx context.Context, shopID string, banned bool) error

	// SetActive sets the tenant-level active flag.
	SetActive(ctx context.Context, shopID string, active bool) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
// Queries use '?' placeholders and go through Rebind for the pgx driver.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetDispatchRecord(ctx context.Context, shopID string) (*DispatchRecord, error) {
	var rec DispatchRecord
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(
		`SELECT bot_token, is_active, is_banned FROM shops WHERE id = ?`), shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dispatch record for shop %s: %w", shopID, err)
	}
	return &rec, nil
}

func (s *sqlxStore) GetShop(ctx context.Context, shopID string) (*Shop, error) {
	var shop Shop
	err := s.db.GetContext(ctx, &shop, s.db.Rebind(`
		SELECT id, name, owner_id, bot_token, bot_id, bot_username, bot_name,
		       is_bot_active, is_active, is_banned, notification_chat_id,
		       created_at, updated_at
		FROM shops WHERE id = ?`), shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop %s: %w", shopID, err)
	}
	return &shop, nil
}

func (s *sqlxStore) CreateShop(ctx context.Context, shop *Shop) error {
	if shop == nil {
		return fmt.Errorf("cannot create nil shop")
	}
	if shop.ID == "" {
		return fmt.Errorf("shop must have a non-empty id")
	}

	now := time.Now().UTC()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	query := `
		INSERT INTO shops (
			id, name, owner_id, bot_token, bot_id, bot_username, bot_name,
			is_bot_active, is_active, is_banned, notification_chat_id,
			created_at, updated_at
		) VALUES (
			:id, :name, :owner_id, :bot_token, :bot_id, :bot_username, :bot_name,
			:is_bot_active, :is_active, :is_banned, :notification_chat_id,
			:created_at, :updated_at
		)`
	if _, err := s.db.NamedExecContext(ctx, query, shop); err != nil {
		if isUniqueViolation(err) && shop.BotID.Valid {
			return ErrBotAlreadyLinked
		}
		s.logger.ErrorContext(ctx, "Error creating shop", "shop_id", shop.ID, "error", err)
		return fmt.Errorf("failed to create shop %s: %w", shop.ID, err)
	}

	s.logger.DebugContext(ctx, "Shop created", "shop_id", shop.ID)
	return nil
}

func (s *sqlxStore) SetBotToken(ctx context.Context, shopID, ciphertext string, botID int64) error {
	err := s.execOne(ctx, "set bot token", shopID, `
		UPDATE shops SET
			bot_token = ?,
			bot_id = ?,
			is_bot_active = ?,
			bot_username = NULL,
			bot_name = NULL,
			updated_at = ?
		WHERE id = ?`,
		ciphertext, botID, false, time.Now().UTC(), shopID)
	if err != nil && isUniqueViolation(err) {
		return ErrBotAlreadyLinked
	}
	return err
}

func (s *sqlxStore) SetBotIdentity(ctx context.Context, shopID string, active bool, username, name string) error {
	return s.execOne(ctx, "set bot identity", shopID, `
		UPDATE shops SET
			is_bot_active = ?,
			bot_username = ?,
			bot_name = ?,
			updated_at = ?
		WHERE id = ?`,
		active, nullString(username), nullString(name), time.Now().UTC(), shopID)
}

func (s *sqlxStore) ClearBotToken(ctx context.Context, shopID string) error {
	return s.execOne(ctx, "clear bot token", shopID, `
		UPDATE shops SET
			bot_token = '',
			bot_id = NULL,
			is_bot_active = ?,
			bot_username = NULL,
			bot_name = NULL,
			updated_at = ?
		WHERE id = ?`,
		false, time.Now().UTC(), shopID)
}

func (s *sqlxStore) FindShopIDByBotID(ctx context.Context, botID int64) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`SELECT id FROM shops WHERE bot_id = ?`), botID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrShopNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up shop by bot id %d: %w", botID, err)
	}
	return id, nil
}

func (s *sqlxStore) FindShopIDByOwner(ctx context.Context, ownerID string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`SELECT id FROM shops WHERE owner_id = ? ORDER BY created_at LIMIT 1`), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrShopNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up shop for owner %s: %w", ownerID, err)
	}
	return id, nil
}

func (s *sqlxStore) SetBanned(ctx context.Context, shopID string, banned bool) error {
	return s.execOne(ctx, "set banned", shopID,
		`UPDATE shops SET is_banned = ?, updated_at = ? WHERE id = ?`,
		banned, time.Now().UTC(), shopID)
}

func (s *sqlxStore) SetActive(ctx context.Context, shopID string, active bool) error {
	return s.execOne(ctx, "set active", shopID,
		`UPDATE shops SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), shopID)
}

// RunSQLMaintenance performs database maintenance tasks for the active driver.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	var statements []string
	switch s.db.DriverName() {
	case DriverPostgres:
		statements = []string{"VACUUM (ANALYZE) shops"}
	default:
		statements = []string{"PRAGMA optimize", "VACUUM", "ANALYZE"}
	}

	for _, stmt := range statements {
		start := time.Now()
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.ErrorContext(ctx, "SQL maintenance statement failed", "statement", stmt, "error", err)
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
		s.logger.DebugContext(ctx, "SQL maintenance statement completed", "statement", stmt, "duration", time.Since(start))
	}
	return nil
}

// execOne runs an UPDATE inside a transaction and maps zero affected rows to ErrShopNotFound.
func (s *sqlxStore) execOne(ctx context.Context, op, shopID, query string, args ...any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "op", op, "shop_id", shopID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "op", op, "error", rollbackErr)
			}
		}
	}()

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Store update failed", "op", op, "shop_id", shopID, "error", err)
		return fmt.Errorf("failed to %s for shop %s: %w", op, shopID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", op, err)
	}
	if affected == 0 {
		return ErrShopNotFound
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "op", op, "shop_id", shopID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Shop updated", "op", op, "shop_id", shopID)
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

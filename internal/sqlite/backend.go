// Package sqlite implements the till inventory store on an embedded SQLite
// database. The Store owns one database handle between Attach and Detach
// and is the only writer of the products and sales tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/till/pkg/types"
)

var _ types.Inventory = (*Store)(nil)

// Store implements types.Inventory using SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	version  uint

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp sales and to decide which day
// "today" is for the daily cash total.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a new Store. The store is not attached; call Attach with
// a Config to open the database.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default().With("component", "store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach opens or creates the database described by config, repairs a
// legacy sales table if needed and applies pending migrations.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := config.Path()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One user, one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := repairLegacySales(db, s.logger); err != nil {
		db.Close()
		return fmt.Errorf("repairing schema: %w", err)
	}

	version, err := migrateSchema(db, s.logger)
	if err != nil {
		db.Close()
		return fmt.Errorf("migrating schema: %w", err)
	}

	s.db = db
	s.config = config
	s.version = version
	s.attached = true

	s.logger.Info("store attached", "path", path, "schema_version", version)
	return nil
}

// Detach closes the database. After Detach every operation returns
// ErrStoreDetached. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.db = nil
	s.attached = false

	s.logger.Info("store detached", "path", s.config.Path())
	return nil
}

// SchemaVersion returns the migration version applied at Attach.
func (s *Store) SchemaVersion() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// timestamp returns the current local time truncated to what the sales
// table stores, and its text form.
func (s *Store) timestamp() (time.Time, string) {
	text := s.now().In(time.Local).Format(types.TimestampLayout)
	ts, _ := time.ParseInLocation(types.TimestampLayout, text, time.Local)
	return ts, text
}

// today returns the calendar day of the store clock in local time.
func (s *Store) today() string {
	return s.now().In(time.Local).Format(types.DateLayout)
}

// newReference generates a UUID v7 receipt reference for a sale.
func newReference() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Package sqlite provides the public API for the SQLite inventory store.
// It exposes the factory and its options while keeping the implementation
// internal.
package sqlite

import (
	"log/slog"
	"time"

	"github.com/mesh-intelligence/till/internal/sqlite"
	"github.com/mesh-intelligence/till/pkg/types"
)

// Option configures a store created by NewStore.
type Option = sqlite.Option

// WithLogger sets the structured logger the store writes to.
func WithLogger(logger *slog.Logger) Option {
	return sqlite.WithLogger(logger)
}

// WithClock sets the clock used to stamp sales and pick "today".
func WithClock(now func() time.Time) Option {
	return sqlite.WithClock(now)
}

// NewStore creates a new SQLite inventory store.
// The store is not attached; call Attach with a Config to open it.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    DataDir: ".till-db",
//	    DBFile:  types.DefaultDBFile,
//	})
//	defer store.Detach()
func NewStore(opts ...Option) types.Inventory {
	return sqlite.NewStore(opts...)
}

package sqlite

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/till/pkg/types"
)

// testClock is a settable clock for WithClock.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAttachedStore attaches a store in a fresh temp directory and detaches
// it when the test ends.
func newAttachedStore(t *testing.T, opts ...Option) (*Store, types.Config) {
	t.Helper()

	cfg := types.Config{DataDir: t.TempDir(), DBFile: types.DefaultDBFile}
	s := NewStore(append([]Option{WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, s.Attach(cfg))
	t.Cleanup(func() { s.Detach() })
	return s, cfg
}

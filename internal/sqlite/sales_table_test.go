package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/till/pkg/types"
)

func TestRecordSale(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 10, 19, 14, 5, 9, 123456789, time.Local)}
	s, _ := newAttachedStore(t, WithClock(clock.Now))
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Widget", 2.5, 4)
	require.NoError(t, err)

	sale, err := s.RecordSale(ctx, p.ID, 2, 5.0, types.PaymentCash)
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Equal(t, time.Date(2026, 10, 19, 14, 5, 9, 0, time.Local), sale.Timestamp, "second precision")

	ref, err := uuid.Parse(sale.Reference)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), ref.Version())

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, *sale, sales[0])
}

func TestRecordSale_PassesThroughStock(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Widget", 2.5, 4)
	require.NoError(t, err)

	// More than is on hand: the store records it and leaves stock alone.
	_, err = s.RecordSale(ctx, p.ID, 10, 25.0, types.PaymentDebit)
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Quantity)

	// The product does not even need to exist.
	_, err = s.RecordSale(ctx, p.ID+99, 1, 1.0, types.PaymentCash)
	require.NoError(t, err)
}

func TestRecordSale_TotalIsNotRecomputed(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Widget", 2.5, 4)
	require.NoError(t, err)
	_, err = s.RecordSale(ctx, p.ID, 2, 4.0, types.PaymentCash)
	require.NoError(t, err)

	require.NoError(t, s.UpdateProduct(ctx, p.ID, "Widget", 99, 2))

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, sales[0].Total)
}

func TestRecordSale_RejectsInvalidInput(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		productID int64
		quantity  int64
		total     float64
		method    string
		wantErr   error
	}{
		{"zero quantity", 1, 0, 1, types.PaymentCash, types.ErrInvalidQuantity},
		{"negative total", 1, 1, -1, types.PaymentCash, types.ErrInvalidTotal},
		{"unknown method", 1, 1, 1, "cheque", types.ErrInvalidPaymentMethod},
		{"zero product", 0, 1, 1, types.PaymentCash, types.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RecordSale(ctx, tt.productID, tt.quantity, tt.total, tt.method)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestSell(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Tornillo", 0.10, 500)
	require.NoError(t, err)

	sale, err := s.Sell(ctx, p.ID, 50, types.PaymentDebit)
	require.NoError(t, err)
	assert.Equal(t, 5.0, sale.Total)
	assert.Equal(t, int64(50), sale.Quantity)
	assert.NotEmpty(t, sale.Reference)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), got.Quantity)
}

func TestSell_ExactStockEmptiesShelf(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Gadget", 10, 1)
	require.NoError(t, err)

	_, err = s.Sell(ctx, p.ID, 1, types.PaymentCredit)
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Quantity)
}

func TestSell_InsufficientStockWritesNothing(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Widget", 2.5, 4)
	require.NoError(t, err)

	_, err = s.Sell(ctx, p.ID, 5, types.PaymentCash)
	assert.ErrorIs(t, err, types.ErrInsufficientStock)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Quantity)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestSell_UnknownProduct(t *testing.T) {
	s, _ := newAttachedStore(t)

	_, err := s.Sell(context.Background(), 12345, 1, types.PaymentCash)
	assert.ErrorIs(t, err, types.ErrProductNotFound)
}

func TestSell_RejectsInvalidMethod(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Widget", 2.5, 4)
	require.NoError(t, err)

	_, err = s.Sell(ctx, p.ID, 1, "vales")
	assert.ErrorIs(t, err, types.ErrInvalidPaymentMethod)
}

// The scenario a shop owner walks through at the till, using the two-step
// record-then-update flow.
func TestRecordThenUpdateScenario(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, "Tornillo", 0.10, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Quantity)

	_, err = s.RecordSale(ctx, p.ID, 50, 5.00, types.PaymentDebit)
	require.NoError(t, err)
	require.NoError(t, s.UpdateProduct(ctx, p.ID, p.Name, p.Price, 450))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(450), products[0].Quantity)

	totals, err := s.TotalsByPaymentMethod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.00, totals[types.PaymentDebit])
}

func TestRecordSale_RejectsInfiniteTotal(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	_, err := s.RecordSale(ctx, 1, 1, math.Inf(1), types.PaymentCash)
	assert.ErrorIs(t, err, types.ErrInvalidTotal)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestSell_OverflowingTotalWritesNothing(t *testing.T) {
	s, _ := newAttachedStore(t)
	ctx := context.Background()

	// Only a row written outside the store can hold a price this large
	// together with enough stock to overflow.
	res, err := s.db.Exec(`INSERT INTO products (name, price, quantity) VALUES ('Enorme', 1e308, 10)`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = s.Sell(ctx, id, 10, types.PaymentCash)
	assert.ErrorIs(t, err, types.ErrInvalidTotal)

	got, err := s.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

// rowsResult is an sql.Result with a fixed RowsAffected outcome.
type rowsResult struct {
	n   int64
	err error
}

func (r rowsResult) LastInsertId() (int64, error) { return 0, nil }
func (r rowsResult) RowsAffected() (int64, error) { return r.n, r.err }

var _ sql.Result = rowsResult{}

func TestCheckStockDecrement(t *testing.T) {
	storageErr := errors.New("disk I/O error")

	tests := []struct {
		name      string
		res       rowsResult
		wantErr   error
		wantStock bool
	}{
		{"one row updated", rowsResult{n: 1}, nil, false},
		{"guard matched nothing", rowsResult{n: 0}, types.ErrInsufficientStock, true},
		{"row count unreadable", rowsResult{err: storageErr}, storageErr, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStockDecrement(tt.res, 7)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStock, errors.Is(err, types.ErrInsufficientStock))
		})
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/till/pkg/types"
)

const selectSales = `SELECT id, product_id, quantity, total, payment_method, timestamp, reference FROM sales`

// RecordSale inserts a sale stamped with the store clock. Stock is neither
// checked nor decremented, and the product need not exist; callers that
// follow up with UpdateProduct get two separate writes. Sell does both in
// one transaction.
func (s *Store) RecordSale(ctx context.Context, productID, quantity int64, total float64, method string) (*types.Sale, error) {
	sale := types.Sale{ProductID: productID, Quantity: quantity, Total: total, PaymentMethod: method}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	if err := s.insertSale(ctx, s.db, &sale); err != nil {
		return nil, err
	}

	s.logger.Debug("sale recorded", "id", sale.ID, "product_id", productID, "quantity", quantity, "total", total, "method", method)
	return &sale, nil
}

// Sell records a sale of quantity units of a product and decrements its
// stock in one transaction. The total is the current price times quantity.
// Returns ErrProductNotFound or ErrInsufficientStock without writing
// anything.
func (s *Store) Sell(ctx context.Context, productID, quantity int64, method string) (*types.Sale, error) {
	sale := types.Sale{ProductID: productID, Quantity: quantity, PaymentMethod: method}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning sale: %w", err)
	}
	defer tx.Rollback()

	var price float64
	var stock int64
	err = tx.QueryRowContext(ctx, `SELECT price, quantity FROM products WHERE id = ?`, productID).Scan(&price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading product %d: %w", productID, err)
	}

	if quantity > stock {
		s.logger.Warn("sale refused", "product_id", productID, "requested", quantity, "stock", stock)
		return nil, fmt.Errorf("%w: product %d has %d, requested %d", types.ErrInsufficientStock, productID, stock, quantity)
	}

	sale.Total = types.Amount(price, quantity)
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	if err := s.insertSale(ctx, tx, &sale); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		quantity, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrementing stock of product %d: %w", productID, err)
	}
	if err := checkStockDecrement(res, productID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing sale: %w", err)
	}

	s.logger.Debug("sale completed", "id", sale.ID, "product_id", productID, "quantity", quantity, "total", sale.Total, "method", method)
	return &sale, nil
}

// checkStockDecrement confirms the guarded UPDATE changed exactly one row.
// A failure to read the row count is a storage error, not a stock shortage.
func checkStockDecrement(res sql.Result, productID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading stock update of product %d: %w", productID, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: product %d", types.ErrInsufficientStock, productID)
	}
	return nil
}

// insertSale stamps sale with the current time and a fresh reference and
// inserts it through e.
func (s *Store) insertSale(ctx context.Context, e execer, sale *types.Sale) error {
	ts, text := s.timestamp()
	sale.Timestamp = ts
	sale.Reference = newReference()

	res, err := e.ExecContext(ctx,
		`INSERT INTO sales (product_id, quantity, total, payment_method, timestamp, reference) VALUES (?, ?, ?, ?, ?, ?)`,
		sale.ProductID, sale.Quantity, sale.Total, sale.PaymentMethod, text, sale.Reference)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}
	sale.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading sale id: %w", err)
	}
	return nil
}

// ListSales returns every sale ordered by id. Columns left NULL by earlier
// releases read as zero values.
func (s *Store) ListSales(ctx context.Context) ([]types.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.QueryContext(ctx, selectSales+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()

	sales := []types.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales: %w", err)
	}
	return sales, nil
}

func scanSale(rows *sql.Rows) (types.Sale, error) {
	var (
		sale      types.Sale
		productID sql.NullInt64
		quantity  sql.NullInt64
		total     sql.NullFloat64
		method    sql.NullString
		stamp     sql.NullString
		reference sql.NullString
	)
	if err := rows.Scan(&sale.ID, &productID, &quantity, &total, &method, &stamp, &reference); err != nil {
		return sale, fmt.Errorf("scanning sale: %w", err)
	}
	sale.ProductID = productID.Int64
	sale.Quantity = quantity.Int64
	sale.Total = total.Float64
	sale.PaymentMethod = method.String
	sale.Reference = reference.String
	if stamp.Valid {
		ts, err := time.ParseInLocation(types.TimestampLayout, stamp.String, time.Local)
		if err != nil {
			return sale, fmt.Errorf("parsing sale %d timestamp: %w", sale.ID, err)
		}
		sale.Timestamp = ts
	}
	return sale, nil
}

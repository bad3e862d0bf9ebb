package sqlite

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/till/internal/report"
	"github.com/mesh-intelligence/till/pkg/types"
)

// TotalsByPaymentMethod sums the totals of all sales, of any date, per
// payment method. Sales stored without a method are grouped under "".
func (s *Store) TotalsByPaymentMethod(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(payment_method, ''), COALESCE(SUM(total), 0) FROM sales GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("querying payment totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var method string
		var total float64
		if err := rows.Scan(&method, &total); err != nil {
			return nil, fmt.Errorf("scanning payment total: %w", err)
		}
		if totals[method], err = cents(total); err != nil {
			return nil, fmt.Errorf("payment total for %q: %w", method, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment totals: %w", err)
	}
	return totals, nil
}

// DailyCashTotal sums the totals of the sales whose timestamp falls on the
// current local calendar day. Returns 0 when there are none.
func (s *Store) DailyCashTotal(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return 0, types.ErrStoreDetached
	}

	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM sales WHERE DATE(timestamp) = ?`, s.today()).
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("querying daily total: %w", err)
	}
	total, err = cents(total)
	if err != nil {
		return 0, fmt.Errorf("daily total: %w", err)
	}
	return total, nil
}

// DailyCashCut summarizes today's sales per payment method.
func (s *Store) DailyCashCut(ctx context.Context) (*types.CashCut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	cut := &types.CashCut{
		Date:     s.today(),
		ByMethod: make(map[string]float64),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(payment_method, ''), COUNT(*), COALESCE(SUM(total), 0)
		 FROM sales WHERE DATE(timestamp) = ? GROUP BY 1`, cut.Date)
	if err != nil {
		return nil, fmt.Errorf("querying cash cut: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var method string
		var count int
		var total float64
		if err := rows.Scan(&method, &count, &total); err != nil {
			return nil, fmt.Errorf("scanning cash cut: %w", err)
		}
		if cut.ByMethod[method], err = cents(total); err != nil {
			return nil, fmt.Errorf("cash cut for %q: %w", method, err)
		}
		cut.SaleCount += count
		sum = sum.Add(decimal.NewFromFloat(total))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cash cut: %w", err)
	}
	cut.Total, _ = sum.Round(2).Float64()
	if !isFinite(cut.Total) {
		return nil, fmt.Errorf("cash cut total: %w", types.ErrInvalidTotal)
	}
	return cut, nil
}

// InventoryValue sums price times quantity over every product, rounded to
// cents.
func (s *Store) InventoryValue(ctx context.Context) (float64, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return 0, err
	}

	sum := decimal.Zero
	for _, p := range products {
		if !isFinite(p.Price) {
			return 0, fmt.Errorf("product %d price: %w", p.ID, types.ErrInvalidPrice)
		}
		sum = sum.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(p.Quantity)))
	}
	value, _ := sum.Round(2).Float64()
	if !isFinite(value) {
		return 0, fmt.Errorf("inventory value: %w", types.ErrInvalidTotal)
	}
	return value, nil
}

// ExportInventoryReport writes the inventory valuation CSV to path,
// replacing any existing file.
func (s *Store) ExportInventoryReport(ctx context.Context, path string) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteInventoryCSV(path, products); err != nil {
		return fmt.Errorf("exporting inventory report: %w", err)
	}
	s.logger.Info("inventory report exported", "path", path, "products", len(products))
	return nil
}

// ExportSalesJournal writes every sale to path as JSON lines.
func (s *Store) ExportSalesJournal(ctx context.Context, path string) error {
	sales, err := s.ListSales(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteSalesJSONL(path, sales); err != nil {
		return fmt.Errorf("exporting sales journal: %w", err)
	}
	s.logger.Info("sales journal exported", "path", path, "sales", len(sales))
	return nil
}

// cents rounds a summed amount to two decimals, removing the binary drift
// SUM over REAL accumulates. A sum that overflowed to infinity is an error.
func cents(f float64) (float64, error) {
	if !isFinite(f) {
		return 0, fmt.Errorf("sum %v: %w", f, types.ErrInvalidTotal)
	}
	r, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return r, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/till/pkg/types"
)

// AddProduct validates and inserts a product, returning it with the
// identifier SQLite assigned.
func (s *Store) AddProduct(ctx context.Context, name string, price float64, quantity int64) (*types.Product, error) {
	p := types.Product{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, price, quantity) VALUES (?, ?, ?)`,
		p.Name, p.Price, p.Quantity)
	if err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading product id: %w", err)
	}

	s.logger.Debug("product added", "id", p.ID, "name", p.Name, "quantity", p.Quantity)
	return &p, nil
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	var p types.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, quantity FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	return &p, nil
}

// UpdateProduct overwrites the mutable fields of a product. An id with no
// matching row is not an error and creates nothing.
func (s *Store) UpdateProduct(ctx context.Context, id int64, name string, price float64, quantity int64) error {
	p := types.Product{ID: id, Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrStoreDetached
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, quantity = ? WHERE id = ?`,
		p.Name, p.Price, p.Quantity, p.ID)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", id, err)
	}

	n, _ := res.RowsAffected()
	s.logger.Debug("product updated", "id", id, "rows", n)
	return nil
}

// DeleteProduct removes a product permanently. Sales that reference it are
// kept. Deleting an id that does not exist is not an error.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrStoreDetached
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}

	n, _ := res.RowsAffected()
	s.logger.Debug("product deleted", "id", id, "rows", n)
	return nil
}

// ListProducts returns every product ordered by id. The slice is a copy;
// later writes do not change it.
func (s *Store) ListProducts(ctx context.Context) ([]types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, price, quantity FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []types.Product{}
	for rows.Next() {
		var p types.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// SearchProducts returns the products whose name contains query, ignoring
// case, ordered by id. An empty query matches every product.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]types.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}

	matches := []types.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

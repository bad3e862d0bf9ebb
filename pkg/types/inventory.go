package types

import (
	"context"
	"errors"
)

// Inventory is the whole contract the presentation layer may depend on.
// A backend owns exactly one storage handle between Attach and Detach.
type Inventory interface {
	// Attach opens or creates the store described by config and brings its
	// schema up to date. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases the storage handle. Idempotent.
	Detach() error

	// SchemaVersion returns the schema version applied by Attach.
	SchemaVersion() uint

	// AddProduct inserts a product and returns it with its assigned ID.
	AddProduct(ctx context.Context, name string, price float64, quantity int64) (*Product, error)

	// GetProduct returns the product with the given ID or ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// UpdateProduct overwrites name, price and quantity. Updating an ID that
	// does not exist succeeds and changes nothing.
	UpdateProduct(ctx context.Context, id int64, name string, price float64, quantity int64) error

	// DeleteProduct removes a product. Deleting a missing ID succeeds.
	DeleteProduct(ctx context.Context, id int64) error

	// ListProducts returns a snapshot of all products ordered by ID.
	ListProducts(ctx context.Context) ([]Product, error)

	// SearchProducts returns the products whose name contains query,
	// case-insensitively, ordered by ID.
	SearchProducts(ctx context.Context, query string) ([]Product, error)

	// InventoryValue sums price times quantity over all products.
	InventoryValue(ctx context.Context) (float64, error)

	// RecordSale inserts a sale stamped with the current time. It neither
	// checks nor decrements stock; pair it with UpdateProduct, or use Sell.
	RecordSale(ctx context.Context, productID, quantity int64, total float64, method string) (*Sale, error)

	// Sell records a sale and decrements stock in one transaction.
	Sell(ctx context.Context, productID, quantity int64, method string) (*Sale, error)

	// ListSales returns all sales ordered by ID.
	ListSales(ctx context.Context) ([]Sale, error)

	// TotalsByPaymentMethod sums all sale totals per payment method.
	TotalsByPaymentMethod(ctx context.Context) (map[string]float64, error)

	// DailyCashTotal sums the totals of sales dated today.
	DailyCashTotal(ctx context.Context) (float64, error)

	// DailyCashCut returns today's total, sale count and per-method totals.
	DailyCashCut(ctx context.Context) (*CashCut, error)

	// ExportInventoryReport writes the inventory valuation CSV to path.
	ExportInventoryReport(ctx context.Context, path string) error

	// ExportSalesJournal writes every sale as JSON lines to path.
	ExportSalesJournal(ctx context.Context, path string) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Operation errors.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Validation errors.
var (
	ErrInvalidID            = errors.New("invalid product ID")
	ErrInvalidName          = errors.New("invalid name")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidTotal         = errors.New("total must not be negative")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidData          = errors.New("invalid data")
)

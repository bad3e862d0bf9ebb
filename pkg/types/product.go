package types

import (
	"fmt"
	"math"
	"strings"
)

// Product is a stocked item. ID is assigned by the store on creation.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"finite,gt=0"`
	Quantity int64   `json:"quantity" validate:"gte=0"`
}

// Validate checks the mutable fields: a non-blank name, a finite positive
// price and a non-negative quantity on hand whose value fits a float64.
func (p Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateStruct(p); err != nil {
		return err
	}
	if math.IsInf(p.Value(), 0) {
		return fmt.Errorf("%w: %d units at %v overflow the stock value", ErrInvalidQuantity, p.Quantity, p.Price)
	}
	return nil
}

// Value returns the stock valuation of the product (price times quantity).
func (p Product) Value() float64 {
	return Amount(p.Price, p.Quantity)
}

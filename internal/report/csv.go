package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/till/pkg/types"
)

// InventoryHeader is the header row of the inventory valuation report.
var InventoryHeader = []string{"ID", "Nombre", "Precio", "Cantidad", "Valor Total"}

// WriteInventoryCSV writes one row per product with its stock value
// (price times quantity), overwriting any file at path.
func WriteInventoryCSV(path string, products []types.Product) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return encodeInventory(w, products)
	})
}

func encodeInventory(w io.Writer, products []types.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InventoryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range products {
		if math.IsInf(p.Price, 0) || math.IsNaN(p.Price) {
			return fmt.Errorf("product %d has price %v: %w", p.ID, p.Price, types.ErrInvalidPrice)
		}
		value := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(p.Quantity))
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			formatNumber(decimal.NewFromFloat(p.Price)),
			strconv.FormatInt(p.Quantity, 10),
			formatNumber(value),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing product %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatNumber renders d in its shortest form but always with a decimal
// point, so whole amounts read 10.0 rather than 10.
func formatNumber(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/till/pkg/types"
)

// saleJSON is one line of the sales journal.
type saleJSON struct {
	SaleID        int64   `json:"sale_id"`
	ProductID     int64   `json:"product_id"`
	Quantity      int64   `json:"quantity"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
	Timestamp     string  `json:"timestamp"`
	Reference     *string `json:"reference"`
}

// WriteSalesJSONL writes every sale as one JSON object per line.
func WriteSalesJSONL(path string, sales []types.Sale) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, s := range sales {
			rec := saleJSON{
				SaleID:        s.ID,
				ProductID:     s.ProductID,
				Quantity:      s.Quantity,
				Total:         s.Total,
				PaymentMethod: s.PaymentMethod,
				Timestamp:     s.Timestamp.Format(types.TimestampLayout),
			}
			if s.Reference != "" {
				ref := s.Reference
				rec.Reference = &ref
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("writing sale %d: %w", s.ID, err)
			}
		}
		return nil
	})
}

package types

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the till. The values are the strings stored in
// the sales table and used as keys in payment totals.
const (
	PaymentCash   = "efectivo"
	PaymentDebit  = "debito"
	PaymentCredit = "credito"
)

// paymentMethods lists the accepted methods in display order.
var paymentMethods = []string{PaymentCash, PaymentDebit, PaymentCredit}

// PaymentMethods returns the accepted payment methods in display order.
func PaymentMethods() []string {
	return slices.Clone(paymentMethods)
}

// IsValidPaymentMethod reports whether m is one of the accepted methods.
func IsValidPaymentMethod(m string) bool {
	return slices.Contains(paymentMethods, m)
}

// TimestampLayout is the text layout of sales.timestamp (local time,
// second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the layout of the calendar day used by the daily cash cut.
const DateLayout = "2006-01-02"

// Sale records units of one product sold for a total under a payment method.
// ProductID may point at a product that has since been deleted.
type Sale struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id" validate:"gt=0"`
	Quantity      int64     `json:"quantity" validate:"gt=0"`
	Total         float64   `json:"total" validate:"finite,gte=0"`
	PaymentMethod string    `json:"payment_method" validate:"payment_method"`
	Timestamp     time.Time `json:"timestamp"`
	Reference     string    `json:"reference,omitempty"`
}

// Validate checks the sale fields the caller supplies. It does not look at
// stock; that is the store's job in Sell.
func (s Sale) Validate() error {
	return validateStruct(s)
}

// CashCut summarizes the sales of one calendar day for end-of-day
// reconciliation.
type CashCut struct {
	Date      string             `json:"date"`
	Total     float64            `json:"total"`
	SaleCount int                `json:"sale_count"`
	ByMethod  map[string]float64 `json:"by_method"`
}

// Amount returns price times quantity rounded to cents. The result is +Inf
// when the product overflows a float64; Sale.Validate rejects it.
func Amount(price float64, quantity int64) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity)).Round(2).Float64()
	return f
}

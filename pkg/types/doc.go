// Package types defines the till entities (Product, Sale, CashCut), the
// Inventory interface the presentation layer depends on, store
// configuration, and the standard errors returned by every backend.
//
// Entities carry validation tags; Validate maps each failed field to one
// of the sentinel errors below so callers can branch with errors.Is.
package types

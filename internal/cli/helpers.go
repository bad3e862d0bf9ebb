package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/pkg/types"
)

// printProduct prints one product in the active output mode.
func (a *app) printProduct(cmd *cobra.Command, verb string, p *types.Product) error {
	if a.jsonMode {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	okColor.Fprintf(cmd.OutOrStdout(), "%s product %d: %s, price %s, quantity %d\n",
		verb, p.ID, p.Name, money(p.Price), p.Quantity)
	return nil
}

// printSale prints one sale in the active output mode.
func (a *app) printSale(cmd *cobra.Command, s *types.Sale) error {
	if a.jsonMode {
		return writeJSON(cmd.OutOrStdout(), s)
	}
	okColor.Fprintf(cmd.OutOrStdout(), "Recorded sale %d: product %d x %d, total %s (%s) ref %s\n",
		s.ID, s.ProductID, s.Quantity, money(s.Total), s.PaymentMethod, s.Reference)
	return nil
}

// parseID parses a positional product ID.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("invalid ID %q: %w", arg, types.ErrInvalidID))
	}
	return id, nil
}

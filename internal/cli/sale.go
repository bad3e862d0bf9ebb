package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/pkg/types"
)

func newSaleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record and list sales",
	}
	cmd.AddCommand(newSaleRecordCmd(a))
	cmd.AddCommand(newSaleSellCmd(a))
	cmd.AddCommand(newSaleListCmd(a))
	return cmd
}

var methodUsage = "payment method: " + strings.Join(types.PaymentMethods(), ", ") + " (default from config)"

// method returns the --method flag value, or the configured default.
func (a *app) method(flag string) string {
	if flag != "" {
		return flag
	}
	return a.settings.DefaultPaymentMethod
}

func newSaleRecordCmd(a *app) *cobra.Command {
	var (
		quantity int64
		total    float64
		method   string
	)
	cmd := &cobra.Command{
		Use:   "record <product-id>",
		Short: "Record a sale without touching stock",
		Long: `Record stores a sale with the given quantity and total. Stock is not
checked or changed; follow up with "product update", or use "sale sell".`,
		Example: `  till sale record 1 --quantity 50 --total 5.00 --method debito`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				sale, err := store.RecordSale(ctx, id, quantity, total, a.method(method))
				if err != nil {
					return fmt.Errorf("record sale: %w", err)
				}
				return a.printSale(cmd, sale)
			})
		},
	}
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "units sold")
	cmd.Flags().Float64Var(&total, "total", 0, "amount charged")
	cmd.Flags().StringVar(&method, "method", "", methodUsage)
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newSaleSellCmd(a *app) *cobra.Command {
	var (
		quantity int64
		method   string
	)
	cmd := &cobra.Command{
		Use:   "sell <product-id>",
		Short: "Sell units of a product and take them from stock",
		Long: `Sell charges the current price times quantity, records the sale and
decrements stock in one step. It fails without writing anything if the
product is missing or there is not enough stock.`,
		Example: `  till sale sell 1 --quantity 3 --method credito`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				sale, err := store.Sell(ctx, id, quantity, a.method(method))
				if err != nil {
					return fmt.Errorf("sell: %w", err)
				}
				return a.printSale(cmd, sale)
			})
		},
	}
	cmd.Flags().Int64Var(&quantity, "quantity", 1, "units sold")
	cmd.Flags().StringVar(&method, "method", "", methodUsage)
	return cmd
}

func newSaleListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				sales, err := store.ListSales(ctx)
				if err != nil {
					return fmt.Errorf("list sales: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), sales)
				}
				printSaleTable(cmd, sales)
				return nil
			})
		},
	}
}

func printSaleTable(cmd *cobra.Command, sales []types.Sale) {
	w := cmd.OutOrStdout()
	if len(sales) == 0 {
		fmt.Fprintln(w, "No sales found.")
		return
	}

	rows := make([][]string, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Timestamp.Format(types.TimestampLayout),
			strconv.FormatInt(s.ProductID, 10),
			strconv.FormatInt(s.Quantity, 10),
			money(s.Total),
			s.PaymentMethod,
		})
	}
	writeTable(w, []string{"ID", "TIME", "PRODUCT", "QUANTITY", "TOTAL", "METHOD"}, rows)
	fmt.Fprintf(w, "Total: %d sale(s)\n", len(sales))
}

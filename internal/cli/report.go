package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/pkg/types"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales totals and inventory reports",
	}
	cmd.AddCommand(newReportTotalsCmd(a))
	cmd.AddCommand(newReportDailyCmd(a))
	cmd.AddCommand(newReportInventoryCmd(a))
	cmd.AddCommand(newReportExportCmd(a))
	cmd.AddCommand(newReportJournalCmd(a))
	return cmd
}

func newReportTotalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show all-time sales totals per payment method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				totals, err := store.TotalsByPaymentMethod(ctx)
				if err != nil {
					return fmt.Errorf("payment totals: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), totals)
				}
				printMethodTotals(cmd, "Sales by payment method", totals)
				return nil
			})
		},
	}
}

func newReportDailyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Show today's cash cut",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				cut, err := store.DailyCashCut(ctx)
				if err != nil {
					return fmt.Errorf("daily cash cut: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), cut)
				}
				printMethodTotals(cmd, fmt.Sprintf("Cash cut %s (%d sale(s))", cut.Date, cut.SaleCount), cut.ByMethod)
				return nil
			})
		},
	}
}

func newReportInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show the total value of the stock on hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				value, err := store.InventoryValue(ctx)
				if err != nil {
					return fmt.Errorf("inventory value: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]float64{"inventory_value": value})
				}
				totalColor.Fprintf(cmd.OutOrStdout(), "Inventory value: %s\n", money(value))
				return nil
			})
		},
	}
}

// printMethodTotals prints per-method amounts in a stable order followed by
// their sum.
func printMethodTotals(cmd *cobra.Command, title string, totals map[string]float64) {
	w := cmd.OutOrStdout()
	headingColor.Fprintln(w, title)

	methods := make([]string, 0, len(totals))
	for m := range totals {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	sum := decimal.Zero
	rows := make([][]string, 0, len(methods))
	for _, m := range methods {
		label := m
		if label == "" {
			label = "(none)"
		}
		rows = append(rows, []string{label, money(totals[m])})
		sum = sum.Add(decimal.NewFromFloat(totals[m]))
	}
	if len(rows) > 0 {
		writeTable(w, []string{"METHOD", "TOTAL"}, rows)
	}
	totalColor.Fprintf(w, "Total: %s\n", sum.StringFixed(2))
}

func newReportExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the inventory valuation CSV",
		Long: `Export writes one row per product with ID, name, price, quantity and
value (price times quantity). An existing file is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				path = a.settings.ExportPath
			}
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				if err := store.ExportInventoryReport(ctx, path); err != nil {
					return err
				}
				return a.printExported(cmd, "Inventory report", path)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write (default from config export_path)")
	return cmd
}

func newReportJournalCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Write every sale as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				if err := store.ExportSalesJournal(ctx, output); err != nil {
					return err
				}
				return a.printExported(cmd, "Sales journal", output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "JSONL file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) printExported(cmd *cobra.Command, what, path string) error {
	if a.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"path": path})
	}
	okColor.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", what, path)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/pkg/types"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(newProductAddCmd(a))
	cmd.AddCommand(newProductUpdateCmd(a))
	cmd.AddCommand(newProductDeleteCmd(a))
	cmd.AddCommand(newProductListCmd(a))
	return cmd
}

func newProductAddCmd(a *app) *cobra.Command {
	var (
		name     string
		price    float64
		quantity int64
	)
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a product",
		Example: `  till product add --name Tornillo --price 0.10 --quantity 500`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				p, err := store.AddProduct(ctx, name, price, quantity)
				if err != nil {
					return fmt.Errorf("add product: %w", err)
				}
				return a.printProduct(cmd, "Added", p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "units in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductUpdateCmd(a *app) *cobra.Command {
	var (
		name     string
		price    float64
		quantity int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product's name, price or stock",
		Long: `Update overwrites the product's name, price and quantity. Flags that are
not given keep their current value. Updating an ID that does not exist
changes nothing.`,
		Example: `  till product update 1 --quantity 450`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				if !flags.Changed("name") || !flags.Changed("price") || !flags.Changed("quantity") {
					current, err := store.GetProduct(ctx, id)
					if errors.Is(err, types.ErrProductNotFound) {
						return a.printMissing(cmd, id)
					}
					if err != nil {
						return fmt.Errorf("get product: %w", err)
					}
					if !flags.Changed("name") {
						name = current.Name
					}
					if !flags.Changed("price") {
						price = current.Price
					}
					if !flags.Changed("quantity") {
						quantity = current.Quantity
					}
				}

				if err := store.UpdateProduct(ctx, id, name, price, quantity); err != nil {
					return fmt.Errorf("update product: %w", err)
				}

				p, err := store.GetProduct(ctx, id)
				if errors.Is(err, types.ErrProductNotFound) {
					return a.printMissing(cmd, id)
				}
				if err != nil {
					return fmt.Errorf("get product: %w", err)
				}
				return a.printProduct(cmd, "Updated", p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new product name")
	cmd.Flags().Float64Var(&price, "price", 0, "new unit price")
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "new units in stock")
	return cmd
}

// printMissing reports an update that matched no product.
func (a *app) printMissing(cmd *cobra.Command, id int64) error {
	if a.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "updated": false})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "No product %d; nothing updated\n", id)
	return nil
}

func newProductDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Long:  "Delete removes a product permanently. Its past sales are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				if err := store.DeleteProduct(ctx, id); err != nil {
					return fmt.Errorf("delete product: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "deleted": true})
				}
				okColor.Fprintf(cmd.OutOrStdout(), "Deleted product %d\n", id)
				return nil
			})
		},
	}
}

func newProductListCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products and the inventory value",
		Long: `List prints every product, or those whose name contains --name
(case-insensitive), followed by the value of the whole inventory.`,
		Example: `  till product list --name torn`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				products, err := store.SearchProducts(ctx, name)
				if err != nil {
					return fmt.Errorf("list products: %w", err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), products)
				}
				value, err := store.InventoryValue(ctx)
				if err != nil {
					return fmt.Errorf("inventory value: %w", err)
				}
				printProductTable(cmd, products)
				totalColor.Fprintf(cmd.OutOrStdout(), "Inventory value: %s\n", money(value))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only products whose name contains this text")
	return cmd
}

func printProductTable(cmd *cobra.Command, products []types.Product) {
	w := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			money(p.Price),
			strconv.FormatInt(p.Quantity, 10),
			money(p.Value()),
		})
	}
	writeTable(w, []string{"ID", "NAME", "PRICE", "QUANTITY", "VALUE"}, rows)
	fmt.Fprintf(w, "Total: %d product(s)\n", len(products))
}

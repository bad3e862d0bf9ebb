package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/till/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize till storage",
		Long: `Create the configuration and data directories, write a default
config.yaml if missing, and create or upgrade the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, store types.Inventory) error {
				path := a.settings.storeConfig().Path()
				version := store.SchemaVersion()
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"database": path, "schema_version": version})
				}
				okColor.Fprintf(cmd.OutOrStdout(), "Till initialized: %s (schema version %d)\n", path, version)
				return nil
			})
		},
	}
}

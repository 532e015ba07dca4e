//go:build !test

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/storefront/internal/config"
)

func newReindexCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the shop name index from the shops table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, getConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.index.Rebuild(ctx)
			if err != nil {
				return err
			}
			if err := a.cache.Flush(ctx); err != nil {
				return fmt.Errorf("failed to flush search cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d shops\n", n)
			return nil
		},
	}
}

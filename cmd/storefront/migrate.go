//go:build !test

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/storefront/internal/config"
	"github.com/jbweber/homelab/storefront/internal/migrations"
)

func newMigrateCommand(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := getConfig().OpenDatabase(ctx)
			if err != nil {
				return err
			}
			defer ds.Close()

			m := migrations.NewDefaultMigrator(ds.DB)
			if err := m.RunMigrations(ctx); err != nil {
				return err
			}
			v, err := m.GetCurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := getConfig().OpenDatabase(ctx)
			if err != nil {
				return err
			}
			defer ds.Close()

			m := migrations.NewDefaultMigrator(ds.DB)
			if err := m.Rollback(ctx); err != nil {
				return err
			}
			v, err := m.GetCurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := getConfig().OpenDatabase(ctx)
			if err != nil {
				return err
			}
			defer ds.Close()

			statuses, err := migrations.NewDefaultMigrator(ds.DB).Status(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(out, "%4d  %-24s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}

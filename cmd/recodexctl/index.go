package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the product search index",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the product index if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			created, err := c.EnsureIndex(ctx)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "index created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "index already exists")
			}
			return nil
		},
	}

	var deleteDocs bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop the product index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			if err := c.DropIndex(ctx, deleteDocs); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "index dropped")
			return nil
		},
	}
	drop.Flags().BoolVar(&deleteDocs, "delete-docs", false, "also delete every indexed product")

	cmd.AddCommand(create, drop)
	return cmd
}

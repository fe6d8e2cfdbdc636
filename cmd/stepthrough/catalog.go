package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/stepthrough/internal/config"
	"github.com/jask/stepthrough/internal/source"
)

func catalogCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage locally stored traces",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <name> <file>",
		Short: "Store a trace file under name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), flags, func(ctx context.Context, c *source.Catalog) error {
				t, err := source.Files{}.Fetch(ctx, args[1])
				if err != nil {
					return err
				}
				if err := c.Put(ctx, args[0], t); err != nil {
					return err
				}
				cmd.Printf("imported %s (%d steps)\n", args[0], t.Len())
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored traces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), flags, func(ctx context.Context, c *source.Catalog) error {
				entries, err := c.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					cmd.Println("catalog is empty")
					return nil
				}
				tbl := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("NAME", "ALGORITHM", "STEPS", "PREDICTIONS", "UPDATED")
				for _, e := range entries {
					tbl.Row(e.Name, e.Algorithm, strconv.Itoa(e.Steps), strconv.Itoa(e.PredictionPoints), e.UpdatedAt.Format("2006-01-02 15:04"))
				}
				cmd.Println(tbl.Render())
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a stored trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), flags, func(ctx context.Context, c *source.Catalog) error {
				if err := c.Delete(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("removed %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func withCatalog(ctx context.Context, flags *globalFlags, fn func(context.Context, *source.Catalog) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	c, err := source.OpenCatalog(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := fn(ctx, c); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

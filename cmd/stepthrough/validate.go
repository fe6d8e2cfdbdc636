package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/stepthrough/internal/source"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check trace files for structural errors",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		t, err := source.Files{}.Fetch(context.Background(), path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n", err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d steps, %d prediction points)\n", path, t.Len(), len(t.Metadata.PredictionPoints))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d traces invalid", failed, len(args))
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/wire"
)

// WeightCmd returns the weight command
func WeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Show or change the criticality weights",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List factor weights",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			weights, err := wire.WeightService().ListWeights(ctx)
			if err != nil {
				return fmt.Errorf("failed to list weights: %w", err)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FACTOR\tWEIGHT\tLABEL")
			for _, w := range weights {
				fmt.Fprintf(tw, "%s\t%.2f\t%s\n", w.Factor, w.Weight, w.Label)
			}
			return tw.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [factor=weight]...",
		Short: "Replace all five weights",
		Long: `Replace the five factor weights. They must sum to 1. Every stored
criticality is recomputed with the new weights.

Example:
  auditplus weight set nivel_riesgo=0.4 meses_ultima_auditoria=0.2 \
    hallazgos_ult_auditoria=0.2 hallazgos_solucionados=0.1 ciclo_rotacion=0.1`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			weights, err := parseWeights(args)
			if err != nil {
				return err
			}
			if err := wire.WeightService().UpdateWeights(ctx, weights); err != nil {
				return fmt.Errorf("failed to update weights: %w", err)
			}
			fmt.Println("✓ Weights updated, criticality recomputed")
			return nil
		}),
	})
	return cmd
}

func parseWeights(args []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(args))
	for _, arg := range args {
		factor, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected factor=weight, got %q", arg)
		}
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %s: %w", factor, err)
		}
		weights[factor] = w
	}
	return weights, nil
}

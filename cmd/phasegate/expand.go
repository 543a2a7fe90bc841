// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/phasegate/config"
	"github.com/katalvlaran/phasegate/output"
	"github.com/katalvlaran/phasegate/verify"
)

// newExpandCmd re-expands and re-verifies a saved diagnostic record without
// searching.
func newExpandCmd() *cobra.Command {
	var (
		tablePath string
		epsilon   float64
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "expand <diagnostics>",
		Short: "Expand and verify a saved diagnostic record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := output.LoadTable(args[0])
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			full := tab.Expand()
			canonical := verify.Canonical(tab, epsilon)
			expanded := verify.Expanded(tab, full, epsilon)
			for _, rep := range []verify.Report{canonical, expanded} {
				for _, m := range rep.Mismatches {
					fmt.Fprintf(cmd.ErrOrStderr(), "bucket %d slot %d %q: %s (expected %.6f, actual %.6f, residual %.3g)\n",
						m.Bucket, m.Slot, m.Gates, m.Reason, m.Expected, m.Actual, m.Residual)
				}
			}
			if tablePath != "" {
				if err = output.WriteTable(tablePath, full); err != nil {
					return err
				}
			}
			renderExpandSummary(cmd.OutOrStdout(), tab, canonical, expanded)

			n := len(canonical.Mismatches) + len(expanded.Mismatches)
			if strict && (!tab.Complete() || n > 0) {
				return &exitError{code: exitStrict, err: fmt.Errorf("strict: %d/%d buckets, %d mismatches", tab.Found(), tab.PhaseCount(), n)}
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&tablePath, "table", "", "write the expanded table here (.json, .yaml)")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.Default().Epsilon, "verification tolerance")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero on incomplete coverage or mismatches")

	return cmd
}

// SPDX-License-Identifier: MIT

// Command phasegate synthesizes the Clifford+T phase table.
//
//	phasegate --points 256 --epsilon 0.01 --depth 20 --table table.json
//	phasegate expand phase_table_diagnostics.json --table table.yaml
//	phasegate version
//
// Exit codes: 0 success, 1 runtime failure, 2 invalid configuration,
// 3 incomplete coverage or verification mismatches under --strict.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/phasegate/config"
	"github.com/katalvlaran/phasegate/synth"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitRuntime = 1
	exitConfig  = 2
	exitStrict  = 3
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "phasegate:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(exitRuntime)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:   "phasegate",
		Short: "Synthesize a Clifford+T phase table",
		Long: `phasegate searches sequences of H, T and T† blocks for diagonal unitaries
and records, for every quantized relative phase, the shortest sequence found.
The first eighth of the circle is searched; the rest is derived with exact
phase corrections.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			return runSynthesis(cmd, cfg)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	config.RegisterFlags(root.Flags())
	if err := config.BindFlags(v, root.Flags()); err != nil {
		panic(err)
	}

	root.AddCommand(newExpandCmd(), newVersionCmd())

	return root
}

func runSynthesis(cmd *cobra.Command, cfg config.Config) error {
	runID := uuid.NewString()
	logger, closeLog, err := setupLogger(cfg.LogLevel, cfg.LogFile, cmd.ErrOrStderr())
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	defer closeLog()
	log := logger.WithField("run", runID)

	res, err := synth.Run(cmd.Context(), cfg, log)
	if err != nil {
		log.WithError(err).Error("synthesis failed")
		if errors.Is(err, synth.ErrConfig) {
			return &exitError{code: exitConfig, err: err}
		}
		return err
	}
	renderSummary(cmd.OutOrStdout(), runID, res)

	if cfg.Strict && (!res.Complete() || res.Mismatches() > 0) {
		return &exitError{
			code: exitStrict,
			err:  fmt.Errorf("strict: %d/%d buckets, %d mismatches", res.Table.Found(), res.Table.PhaseCount(), res.Mismatches()),
		}
	}

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "phasegate", version)
		},
	}
}

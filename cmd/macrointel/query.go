package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/conditions"
	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/persistence"
)

func newQueryCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <condition>",
		Short: "Evaluate a condition against a fresh scoring cycle",
		Long: `Query scores the current readings and evaluates a condition
expression against the snapshot, printing "true" or "false".

Examples:
  macrointel query "regime > 70"
  macrointel query "volatility < 40"
  macrointel query "strategy == 'tier 1'"
  macrointel query "asset in [MES, MNQ]"

The exit code is 0 for true and 2 for false, so the command can gate
shell pipelines directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPathFlags(cmd, &cfg)

			p, err := buildPipeline(cfg, metrics.NewRegistry(), persistence.Repository{}, logger)
			if err != nil {
				return err
			}

			snapshot, _, err := p.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			gate := conditions.New(p.Table().Tiers(), logger)
			result := gate.Evaluate(args[0], snapshot)

			fmt.Println(result)
			if !result {
				return errFalseCondition
			}
			return nil
		},
	}

	addPathFlags(cmd)

	return cmd
}

// errFalseCondition maps a false result to exit code 2 without an
// error message; main treats it specially.
var errFalseCondition = fmt.Errorf("condition evaluated to false")

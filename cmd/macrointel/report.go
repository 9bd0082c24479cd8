package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/playbook"
)

func newReportCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"playbook"},
		Short:   "Evaluate the strategy playbook and print the market report",
		Long: `Report runs a scoring cycle, evaluates every playbook strategy
against the current market data and prints which strategies are viable,
which to avoid and why, plus hard disqualifiers and macro notes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyPathFlags(cmd, &cfg)

			p, err := buildPipeline(cfg, metrics.NewRegistry(), persistence.Repository{}, logger)
			if err != nil {
				return err
			}

			_, report, err := p.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(report)
			}
			fmt.Println(renderReport(report))
			return nil
		},
	}

	addPathFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")

	return cmd
}

func renderReport(report *playbook.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Market Regime: %s\n\n", report.MarketRegime)

	b.WriteString("Viable Strategies:\n")
	if len(report.Selected) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range report.Selected {
		fmt.Fprintf(&b, "  %-32s confidence %.2f  instruments %s\n",
			s.Name, s.Confidence, strings.Join(s.Instruments, ", "))
	}

	if len(report.AvoidList) > 0 {
		b.WriteString("\nAvoid:\n")
		for _, line := range report.AvoidList {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	if len(report.Disqualifiers) > 0 {
		b.WriteString("\nDisqualifiers:\n")
		for _, d := range report.Disqualifiers {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}

	if len(report.MacroNotes) > 0 {
		b.WriteString("\nMacro Notes:\n")
		for _, n := range report.MacroNotes {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}

	return b.String()
}

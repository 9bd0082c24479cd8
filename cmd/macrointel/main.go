// Command macrointel scores the macro market regime, evaluates the
// strategy playbook against it and answers condition queries.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macrointel/macrointel/internal/config"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:     "macrointel",
		Short:   "MacroIntel - market regime scoring and strategy playbook",
		Version: version,
		Long: `MacroIntel aggregates macro readings into a 0-100 regime score,
selects a strategy tier from the playbook and gates actions on
condition queries like "regime > 70" or "volatility < 40".`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newScoreCmd(cfg, logger))
	rootCmd.AddCommand(newReportCmd(cfg, logger))
	rootCmd.AddCommand(newQueryCmd(cfg, logger))
	rootCmd.AddCommand(newLatestCmd(cfg, logger))
	rootCmd.AddCommand(newServeCmd(cfg, logger))
	rootCmd.AddCommand(newScheduleCmd(cfg, logger))

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFalseCondition) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(parsed).With().Timestamp().Logger()
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/infrastructure/db"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/scheduler"
)

func newScheduleCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	var schedulePath string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduled scoring and report jobs",
		Long: `Schedule runs the cron jobs from the schedule file: periodic
scoring cycles and condition-gated reports. Blocks until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyPathFlags(cmd, &cfg)
			if schedulePath != "" {
				cfg.SchedulePath = schedulePath
			}

			scheduleCfg, err := scheduler.LoadConfig(cfg.SchedulePath)
			if err != nil {
				return err
			}

			manager, err := db.NewManager(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer manager.Close()

			p, err := buildPipeline(cfg, metrics.NewRegistry(), manager.Repository(), logger)
			if err != nil {
				return err
			}

			sched := scheduler.New(p, logger)
			if err := sched.Register(scheduleCfg.Jobs); err != nil {
				return err
			}

			sched.Start()
			defer sched.Stop()
			logger.Info().Int("jobs", len(scheduleCfg.Jobs)).Msg("scheduler running")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		},
	}

	addPathFlags(cmd)
	cmd.Flags().StringVar(&schedulePath, "file", "", "schedule YAML (overrides MACROINTEL_SCHEDULE_PATH)")

	return cmd
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/httpapi"
	"github.com/macrointel/macrointel/internal/infrastructure/db"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/scheduler"
)

func newServeCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	var addr string
	var withSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, optionally with scheduled scoring jobs",
		Long: `Serve exposes the scoring pipeline over HTTP: latest snapshot,
history, on-demand scoring, condition queries and Prometheus metrics.
With --schedule the cron jobs from the schedule file also run in
process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyPathFlags(cmd, &cfg)
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			manager, err := db.NewManager(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer manager.Close()

			m := metrics.NewRegistry()
			p, err := buildPipeline(cfg, m, manager.Repository(), logger)
			if err != nil {
				return err
			}

			var sched *scheduler.Scheduler
			if withSchedule {
				scheduleCfg, err := scheduler.LoadConfig(cfg.SchedulePath)
				if err != nil {
					return err
				}
				sched = scheduler.New(p, logger)
				if err := sched.Register(scheduleCfg.Jobs); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			server := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(p, m, logger), logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	addPathFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides MACROINTEL_HTTP_ADDR)")
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "run the scheduled scoring jobs in process")

	return cmd
}

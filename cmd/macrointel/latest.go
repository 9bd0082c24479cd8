package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/infrastructure/db"
	"github.com/macrointel/macrointel/internal/regime"
)

func newLatestCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent stored snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cfg.Storage.Postgres.Enabled && !cfg.Storage.Redis.Enabled {
				return fmt.Errorf("no storage backend enabled; set PG_ENABLED or REDIS_ENABLED")
			}

			manager, err := db.NewManager(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer manager.Close()

			repos := manager.Repository()

			var snapshot *regime.Snapshot
			if repos.Cache != nil {
				if snapshot, err = repos.Cache.Get(cmd.Context()); err != nil {
					logger.Warn().Err(err).Msg("cache read failed, falling back to store")
					snapshot = nil
				}
			}
			if snapshot == nil && repos.Snapshots != nil {
				if snapshot, err = repos.Snapshots.Latest(cmd.Context()); err != nil {
					return err
				}
			}
			if snapshot == nil {
				return fmt.Errorf("no snapshot stored yet; run a scoring cycle first")
			}

			if asJSON {
				return printJSON(snapshot)
			}
			fmt.Println(snapshot.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the snapshot as JSON")

	return cmd
}

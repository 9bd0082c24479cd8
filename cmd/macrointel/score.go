package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/persistence"
)

func newScoreCmd(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run one scoring cycle and print the regime snapshot",
		Long: `Score reads indicator values from the configured readings file,
aggregates them into the 0-100 regime score and prints the snapshot.
Missing indicators degrade gracefully toward neutral.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyPathFlags(cmd, &cfg)

			p, err := buildPipeline(cfg, metrics.NewRegistry(), persistence.Repository{}, logger)
			if err != nil {
				return err
			}

			snapshot, _, err := p.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(snapshot)
			}
			fmt.Println(snapshot.Render())
			return nil
		},
	}

	addPathFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the snapshot as JSON")

	return cmd
}

// addPathFlags registers the config-file overrides shared by the
// one-shot commands.
func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("readings", "", "readings JSON file (overrides MACROINTEL_READINGS_PATH)")
	cmd.Flags().String("weights", "", "component weights YAML (overrides MACROINTEL_WEIGHTS_PATH)")
	cmd.Flags().String("playbook", "", "playbook YAML (overrides MACROINTEL_PLAYBOOK_PATH)")
}

func applyPathFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	if v, _ := cmd.Flags().GetString("readings"); v != "" {
		cfg.ReadingsPath = v
	}
	if v, _ := cmd.Flags().GetString("weights"); v != "" {
		cfg.WeightsPath = v
	}
	if v, _ := cmd.Flags().GetString("playbook"); v != "" {
		cfg.PlaybookPath = v
	}
}

func printJSON(payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

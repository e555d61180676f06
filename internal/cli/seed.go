package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/locmetrics/internal/client"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic events and verify the leaderboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := client.DefaultSeedConfig()
		cfg.Developers, _ = cmd.Flags().GetInt("developers")
		cfg.EventsPerDeveloper, _ = cmd.Flags().GetInt("events")
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
		cfg.Days, _ = cmd.Flags().GetInt("days")
		cfg.Features, _ = cmd.Flags().GetStringSlice("features")

		stats, err := newClient(cmd).Seed(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	},
}

func init() {
	defaults := client.DefaultSeedConfig()
	seedCmd.Flags().Int("developers", defaults.Developers, "Number of synthetic developers")
	seedCmd.Flags().Int("events", defaults.EventsPerDeveloper, "Events per developer")
	seedCmd.Flags().Int("workers", defaults.Workers, "Concurrent submitters")
	seedCmd.Flags().Int("days", defaults.Days, "Spread timestamps over this many days")
	seedCmd.Flags().StringSlice("features", defaults.Features, "Feature names to sample from")
}

package cli

import (
	"github.com/spf13/cobra"
)

const (
	defaultTrendDays    = 30
	defaultFeatureLimit = 20
)

var developerCmd = &cobra.Command{
	Use:   "developer <id>",
	Short: "Show the metrics of one developer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := periodFlags(cmd)
		if err != nil {
			return err
		}
		r, err := newClient(cmd).DeveloperReport(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Show team metrics and the leaderboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, end, err := periodFlags(cmd)
		if err != nil {
			return err
		}
		r, err := newClient(cmd).TeamReport(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show daily metrics over the last days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		developer, _ := cmd.Flags().GetString("developer")
		days, _ := cmd.Flags().GetInt("days")
		r, err := newClient(cmd).Trends(cmd.Context(), developer, days)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Show the most recently updated features",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		r, err := newClient(cmd).FeatureReport(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

func init() {
	for _, c := range []*cobra.Command{developerCmd, teamCmd} {
		c.Flags().String("start", "", "Inclusive lower bound (ISO-8601)")
		c.Flags().String("end", "", "Inclusive upper bound (ISO-8601)")
	}
	trendsCmd.Flags().StringP("developer", "d", "", "Restrict to one developer")
	trendsCmd.Flags().Int("days", defaultTrendDays, "Window size in days")
	featuresCmd.Flags().Int("limit", defaultFeatureLimit, "Maximum number of features")
}

// Package cli implements the locctl command line client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/locmetrics/internal/adapters/http/api"
	"github.com/okian/locmetrics/internal/client"
	"github.com/okian/locmetrics/pkg/logger"
)

const (
	defaultServer  = "http://localhost:8000"
	serverEnvVar   = "LOCMETRICS_SERVER"
	defaultTimeout = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "locctl",
	Short: "Track and report AI assisted lines of code",
	Long:  "locctl submits authoring events to a metrics server and prints its reports as JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if err := logger.InitWithFormat(cmd.ErrOrStderr(), logger.FormatText); err != nil {
			return err
		}
		if verbose {
			return logger.SetLevelString("debug")
		}
		return logger.SetLevelString("warn")
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Metrics server URL (overrides "+serverEnvVar+" env var)")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "Per request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and progress")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(developerCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(seedCmd)
}

// resolveServer returns the server URL using --server (highest priority),
// then the env var, then the local default.
func resolveServer(cmd *cobra.Command) string {
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		return s
	}
	if s := os.Getenv(serverEnvVar); s != "" {
		return s
	}
	return defaultServer
}

func newClient(cmd *cobra.Command) *client.Client {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.New(resolveServer(cmd),
		client.WithTimeout(timeout),
		client.WithLogger(logger.Named("client")),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// timeFlag parses an optional date flag with the server's accepted layouts.
func timeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := api.ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}

func periodFlags(cmd *cobra.Command) (start, end *time.Time, err error) {
	if start, err = timeFlag(cmd, "start"); err != nil {
		return nil, nil, err
	}
	if end, err = timeFlag(cmd, "end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

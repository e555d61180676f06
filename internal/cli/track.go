package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/locmetrics/internal/domain/model"
)

var trackCmd = &cobra.Command{
	Use:   "track <code|test|documentation>",
	Short: "Submit one authoring event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := eventFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		ack, err := newClient(cmd).SubmitEvent(cmd.Context(), e)
		if err != nil {
			return err
		}
		return printJSON(cmd, ack)
	},
}

func init() {
	trackCmd.Flags().StringP("developer", "d", "", "Developer id (required)")
	trackCmd.Flags().StringP("source", "s", string(model.SourceManual), "completion, agent or manual")
	trackCmd.Flags().IntP("lines", "n", 0, "Number of lines (required)")
	trackCmd.Flags().StringP("file", "f", "", "File path (required)")
	trackCmd.Flags().String("feature", "", "Feature name recorded in metadata")
	trackCmd.Flags().String("timestamp", "", "Event time, defaults to the server clock")
	trackCmd.Flags().String("language", "", "Programming language of a code event")
	trackCmd.Flags().String("test-framework", "", "Framework of a test event")
	trackCmd.Flags().Float64("coverage", -1, "Coverage percentage of a test event")
	trackCmd.Flags().String("doc-type", "", "Kind of a documentation event")

	_ = trackCmd.MarkFlagRequired("developer")
	_ = trackCmd.MarkFlagRequired("lines")
	_ = trackCmd.MarkFlagRequired("file")
}

func eventFromFlags(cmd *cobra.Command, category string) (model.Event, error) {
	c, err := model.ParseCategory(category)
	if err != nil {
		return model.Event{}, err
	}
	rawSource, _ := cmd.Flags().GetString("source")
	source, err := model.ParseSource(rawSource)
	if err != nil {
		return model.Event{}, err
	}

	e := model.Event{Category: c, Source: source}
	e.DeveloperID, _ = cmd.Flags().GetString("developer")
	e.Lines, _ = cmd.Flags().GetInt("lines")
	e.FilePath, _ = cmd.Flags().GetString("file")
	e.Language, _ = cmd.Flags().GetString("language")
	e.TestFramework, _ = cmd.Flags().GetString("test-framework")
	e.DocType, _ = cmd.Flags().GetString("doc-type")

	if feature, _ := cmd.Flags().GetString("feature"); feature != "" {
		e.Metadata = model.Metadata{"feature_name": feature}
	}
	if cmd.Flags().Changed("coverage") {
		cov, _ := cmd.Flags().GetFloat64("coverage")
		e.Coverage = &cov
	}

	ts, err := timeFlag(cmd, "timestamp")
	if err != nil {
		return model.Event{}, err
	}
	if ts != nil {
		e.Timestamp = *ts
	}

	if err := e.Validate(); err != nil {
		return model.Event{}, fmt.Errorf("invalid event: %w", err)
	}
	return e, nil
}

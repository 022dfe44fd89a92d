package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sprouthq/recording-pipeline/internal/observability"
)

var statusCmd = &cobra.Command{
	Use:   "status <recording-id>",
	Short: "Show a recording's pipeline status and completed stage outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid recording id: %w", err)
		}

		a, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.db.GetRecording(cmd.Context(), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("recording %s not found", id)
		}

		printer := observability.NewPrinter(os.Stdout)
		printer.PrintRecording(rec)
		printer.PrintTagCounts(rec.TagCounts)
		printer.PrintFeedback(rec.Feedback)

		if a.cfg.Verbose {
			utts, err := a.db.Utterances(cmd.Context(), id)
			if err != nil {
				return err
			}
			printer.PrintUtterances(utts)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("config", "", "Path to JSON config file")
	statusCmd.Flags().BoolP("verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(statusCmd)
}

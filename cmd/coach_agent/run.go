package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run <recording-id>",
	Short: "Advance a recording through the analysis pipeline",
	Long:  "Executes every pending stage for the recording. Safe to re-run: completed stages are never re-executed unless --force names a stage to overwrite.",
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

		force, _ := cmd.Flags().GetString("force")

		var status types.Status
		if force != "" {
			status, err = a.orch.Rerun(cmd.Context(), id, force)
		} else {
			status, err = a.orch.Advance(cmd.Context(), id)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Recording %s: %s\n", id, status)
		return nil
	},
}

func init() {
	runCmd.Flags().String("force", "", "Re-run a completed stage (transcription, role_identification, coding, scoring), discarding downstream outputs")
	runCmd.Flags().String("config", "", "Path to JSON config file")
	runCmd.Flags().BoolP("verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(runCmd)
}

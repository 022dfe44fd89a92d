package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprouthq/recording-pipeline/internal/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <audio-file>",
	Short: "Register a recorded session for analysis",
	Long:  "Stores the audio bytes and creates a pending recording. Run `coach_agent run` to start the analysis.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireAgent(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ownerID, _ := cmd.Flags().GetString("owner")
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode := types.Mode(modeFlag)
		if mode != types.ModeChildLed && mode != types.ModeParentLed {
			return fmt.Errorf("invalid mode %q: must be %s or %s", modeFlag, types.ModeChildLed, types.ModeParentLed)
		}

		audio, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read audio file: %w", err)
		}

		path, err := a.store.Put(args[0], audio)
		if err != nil {
			return fmt.Errorf("failed to store audio: %w", err)
		}

		rec, err := a.db.CreateRecording(cmd.Context(), ownerID, mode, path, 0)
		if err != nil {
			return err
		}

		fmt.Printf("Recording %s created (status: %s)\n", rec.ID, rec.Status)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("owner", "", "Owner user id")
	ingestCmd.Flags().String("mode", string(types.ModeChildLed), "Interaction mode: child_led or parent_led")
	ingestCmd.Flags().String("config", "", "Path to JSON config file")
	ingestCmd.Flags().BoolP("verbose", "v", false, "Print detailed debug information")
	_ = ingestCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(ingestCmd)
}

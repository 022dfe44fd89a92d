// Package main provides the entry point for the recording analysis agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coach_agent",
	Short: "Recording analysis pipeline for parent-coaching sessions",
	Long:  "coach_agent ingests recorded parent-child play sessions and runs them through transcription, speaker-role identification, behavioral coding, and scoring.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

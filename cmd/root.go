package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/speakwise/speech-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speech-api",
	Short: "SpeakWise speech analysis API server",
	Long: `SpeakWise Speech Analysis API - upload, transcribe and score spoken video

The API accepts video uploads, hands them to an external media host for
transcoding, and runs an asynchronous analysis pipeline over the speech:
transcription, grammar checking and holistic fluency scoring. Clients poll
for status until the analysis is ready.

Features:
  • Authenticated video upload with async transcoding handoff
  • Signature-verified transcoding webhooks
  • Background analysis workers over a persistent job queue
  • Status polling and per-user analysis dashboard endpoints`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it.
// Called lazily so version/help work without a config file.
func loadConfig() {
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

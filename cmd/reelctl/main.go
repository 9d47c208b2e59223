package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    = "http://localhost:8787"
	output    = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "reelctl",
	Short: "Reelnet CLI - Manage your Reelnet account and backend",
	Long: `Reelnet CLI provides command-line access to a Reelnet backend.
Manage follow requests and run maintenance tasks like counter recounts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if authToken == "" {
			authToken = os.Getenv("REELNET_TOKEN")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to REELNET_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(followRequestsCmd)
	rootCmd.AddCommand(recountCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// requireToken exits when a command needs API credentials and none are set.
func requireToken() error {
	if authToken == "" {
		return fmt.Errorf("REELNET_TOKEN environment variable not set (or pass --token)")
	}
	return nil
}

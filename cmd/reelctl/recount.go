package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/social"
	"github.com/spf13/cobra"
)

// recount connects straight to the database: it is an operator task, not an
// API call.
var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Rebuild follower/following counters from the follows table",
	Long: `Recount scans every user and rewrites the denormalized follower and
following counters from the actual follow edges. Run it after a crash or
suspected drift; it is safe to run at any time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		if err := database.Initialize(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		report, err := social.NewService().Recount(context.Background())
		if err != nil {
			return fmt.Errorf("recount failed: %w", err)
		}

		if output == "json" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Scanned %d users\n", report.UsersScanned)
		fmt.Printf("Fixed %d follower counters, %d following counters\n",
			report.FollowersFixed, report.FollowingFixed)
		if report.MaxDrift > 0 {
			fmt.Printf("Largest drift: %d\n", report.MaxDrift)
		}
		return nil
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportLimit int

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show monitoring stats and recent alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _, err := loadState()
		if err != nil {
			return err
		}

		s := state.Stats
		fmt.Printf("Monitoring enabled: %v\n", state.ParentalModeEnabled)
		fmt.Printf("Notification level: %s\n", state.NotificationLevel)
		fmt.Printf("Total scans:        %d\n", s.TotalScans)
		fmt.Printf("Alerts triggered:   %d\n", s.AlertsTriggered)
		fmt.Printf("AI content:         %d\n", s.AIContentDetected)
		fmt.Printf("Suspicious content: %d\n", s.SuspiciousContentDetected)
		if !s.LastScanTime.IsZero() {
			fmt.Printf("Last scan:          %s\n", s.LastScanTime.Format("2006-01-02 15:04:05"))
		}

		if len(state.AlertHistory) == 0 {
			fmt.Println("\nNo alerts recorded.")
			return nil
		}

		limit := reportLimit
		if limit <= 0 || limit > len(state.AlertHistory) {
			limit = len(state.AlertHistory)
		}

		fmt.Printf("\nRecent alerts (%d of %d):\n\n", limit, len(state.AlertHistory))
		for _, a := range state.AlertHistory[:limit] {
			fmt.Printf("[%s] %s\n", a.Timestamp.Format("2006-01-02 15:04"), a.URL)
			if a.PageTitle != "" {
				fmt.Printf("  Title: %s\n", a.PageTitle)
			}
			if a.FactCheck != nil && a.FactCheck.Flagged {
				fmt.Printf("  Suspicious content: %.0f%% confidence\n", a.FactCheck.Confidence*100)
			}
			if a.AIDetection != nil && a.AIDetection.Flagged {
				fmt.Printf("  AI-generated: %.0f%% confidence\n", a.AIDetection.Confidence*100)
			}
			if a.DeepFactCheck != nil {
				fmt.Printf("  Deep check: %s (%.0f%% confidence)\n",
					a.DeepFactCheck.Verdict, a.DeepFactCheck.Confidence*100)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "max alerts to show (0 = all)")
	rootCmd.AddCommand(reportCmd)
}

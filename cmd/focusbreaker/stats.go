package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session statistics",
	RunE:  runStats,
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show streak counters",
	RunE:  runStreaks,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Trailing window in days")
}

func runStats(cmd *cobra.Command, args []string) error {
	resp, err := apiGet(fmt.Sprintf("/stats?days=%d", statsDays))
	if err != nil {
		return err
	}

	var report struct {
		Sessions struct {
			TotalSessions     int `json:"total_sessions"`
			CompletedSessions int `json:"completed_sessions"`
			AbandonedSessions int `json:"abandoned_sessions"`
			TotalWorkMinutes  int `json:"total_work_minutes"`
			BreaksTaken       int `json:"breaks_taken"`
			BreaksSkipped     int `json:"breaks_skipped"`
			EmergencyExits    int `json:"emergency_exits"`
		} `json:"sessions"`
		BreakCompliance  float64        `json:"break_compliance_percent"`
		ModeDistribution map[string]int `json:"mode_distribution"`
	}
	if err := json.Unmarshal(resp, &report); err != nil {
		return err
	}

	s := report.Sessions
	fmt.Printf("Last %d days\n\n", statsDays)
	fmt.Printf("Sessions:         %d (%d completed, %d abandoned)\n",
		s.TotalSessions, s.CompletedSessions, s.AbandonedSessions)
	fmt.Printf("Focus time:       %dh %dm\n", s.TotalWorkMinutes/60, s.TotalWorkMinutes%60)
	fmt.Printf("Breaks:           %d taken, %d skipped\n", s.BreaksTaken, s.BreaksSkipped)
	fmt.Printf("Break compliance: %.1f%%\n", report.BreakCompliance)
	if s.EmergencyExits > 0 {
		fmt.Printf("Emergency exits:  %d\n", s.EmergencyExits)
	}

	if len(report.ModeDistribution) > 0 {
		fmt.Println("\nBy mode:")
		for mode, count := range report.ModeDistribution {
			fmt.Printf("  %-8s %d\n", mode, count)
		}
	}
	return nil
}

func runStreaks(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/streaks")
	if err != nil {
		return err
	}

	var streaks []map[string]interface{}
	if err := json.Unmarshal(resp, &streaks); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STREAK\tCURRENT\tBEST")
	for _, s := range streaks {
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\n",
			s["type"], s["current_count"].(float64), s["best_count"].(float64))
	}
	w.Flush()
	return nil
}

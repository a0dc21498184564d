package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Control the active work session",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start a work session for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionStart,
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session",
	RunE:  runSessionStatus,
}

var sessionSnoozeCmd = &cobra.Command{
	Use:   "snooze",
	Short: "Postpone the owed break",
	RunE:  breakAction("snooze", "Break snoozed"),
}

var sessionSkipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the owed break",
	RunE:  breakAction("skip", "Break skipped"),
}

var sessionBreakCmd = &cobra.Command{
	Use:   "break",
	Short: "Take the next break immediately",
	RunE:  breakAction("take", "Break started"),
}

var sessionExtendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Extend the active session",
	RunE:  runSessionExtend,
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Finish the active session",
	RunE:  sessionAction("complete", "Session completed"),
}

var sessionAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Give up on the active session",
	RunE:  sessionAction("abandon", "Session abandoned"),
}

var sessionExitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Emergency-exit a strict or focused session",
	RunE:  sessionAction("exit", "Emergency exit recorded"),
}

var sessionEventsCmd = &cobra.Command{
	Use:   "events [session-id]",
	Short: "Show a session's event log",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionEvents,
}

var extendMinutes int

func init() {
	sessionCmd.AddCommand(sessionStartCmd, sessionStatusCmd, sessionSnoozeCmd, sessionSkipCmd,
		sessionBreakCmd, sessionExtendCmd, sessionCompleteCmd, sessionAbandonCmd,
		sessionExitCmd, sessionEventsCmd)

	sessionExtendCmd.Flags().IntVar(&extendMinutes, "minutes", 15, "Extra minutes to add")
}

// activeSessionID resolves the running session from the daemon.
func activeSessionID() (string, error) {
	resp, err := apiGet("/sessions/active")
	if err != nil {
		return "", err
	}

	var status struct {
		Session *struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(resp, &status); err != nil {
		return "", err
	}
	if status.Session == nil {
		return "", fmt.Errorf("no session is running")
	}
	return status.Session.ID, nil
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	body := map[string]string{"task_id": args[0]}
	resp, err := apiPost("/sessions", body)
	if err != nil {
		return err
	}

	var sess map[string]interface{}
	if err := json.Unmarshal(resp, &sess); err != nil {
		return err
	}

	fmt.Printf("Started session %s (%.0f minutes, %s mode)\n",
		truncateID(sess["id"].(string)),
		sess["planned_minutes"].(float64),
		sess["mode"].(string))
	return nil
}

func runSessionStatus(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/sessions/active")
	if err != nil {
		return err
	}

	var status map[string]interface{}
	if err := json.Unmarshal(resp, &status); err != nil {
		return err
	}

	if cooling, _ := status["cooling_down"].(bool); cooling {
		fmt.Printf("Cooldown in progress: %.0f seconds remaining\n",
			status["cooldown_remaining_seconds"].(float64))
	}

	sess, ok := status["session"].(map[string]interface{})
	if !ok {
		fmt.Println("No session running")
		return nil
	}

	fmt.Printf("Session:   %s\n", truncateID(sess["id"].(string)))
	fmt.Printf("Mode:      %s\n", sess["mode"])
	fmt.Printf("Timer:     %s\n", status["timer_state"])
	fmt.Printf("Remaining: %s (%.0f%% done)\n", status["clock"], status["progress_percent"].(float64))

	if onBreak, _ := status["on_break"].(bool); onBreak {
		fmt.Printf("On break:  %.0f seconds left\n", status["break_remaining_seconds"].(float64))
	} else if next, ok := status["next_break_time"].(string); ok {
		fmt.Printf("Next break: %s\n", next)
	}

	fmt.Printf("Breaks:    %.0f taken, %.0f skipped, %.0f snooze passes left\n",
		sess["breaks_taken"].(float64),
		sess["breaks_skipped"].(float64),
		sess["snooze_passes_remaining"].(float64))
	return nil
}

// breakAction builds a RunE for the break verbs, where refusal comes back
// as an outcome instead of an error.
func breakAction(action, message string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := activeSessionID()
		if err != nil {
			return err
		}

		resp, err := apiPost("/sessions/"+id+"/"+action, nil)
		if err != nil {
			return err
		}

		var result struct {
			OK     bool   `json:"ok"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(resp, &result); err != nil {
			return err
		}

		if !result.OK {
			fmt.Printf("Refused: %s\n", result.Reason)
			return nil
		}
		fmt.Println(message)
		return nil
	}
}

func runSessionExtend(cmd *cobra.Command, args []string) error {
	id, err := activeSessionID()
	if err != nil {
		return err
	}

	body := map[string]int{"extra_minutes": extendMinutes}
	if _, err := apiPost("/sessions/"+id+"/extend", body); err != nil {
		return err
	}
	fmt.Printf("Session extended by %d minutes\n", extendMinutes)
	return nil
}

// sessionAction builds a RunE that posts a bare action against the active
// session.
func sessionAction(action, message string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := activeSessionID()
		if err != nil {
			return err
		}
		if _, err := apiPost("/sessions/"+id+"/"+action, nil); err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	}
}

func runSessionEvents(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/sessions/" + args[0] + "/events")
	if err != nil {
		return err
	}

	var events []map[string]interface{}
	if err := json.Unmarshal(resp, &events); err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("No events found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tDETAILS")
	for _, e := range events {
		details := ""
		if d, ok := e["details"].(string); ok {
			details = truncate(d, 60)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e["timestamp"], e["event_type"], details)
	}
	w.Flush()
	return nil
}

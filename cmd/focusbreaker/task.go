package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details and session history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var (
	taskName    string
	taskMinutes int
	taskMode    string
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskDeleteCmd)

	taskAddCmd.Flags().StringVar(&taskName, "name", "", "Task name (required)")
	taskAddCmd.Flags().IntVar(&taskMinutes, "minutes", 60, "Allocated focus minutes")
	taskAddCmd.Flags().StringVar(&taskMode, "mode", "normal", "Mode (normal, strict, focused)")
	taskAddCmd.MarkFlagRequired("name")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{
		"name":              taskName,
		"allocated_minutes": taskMinutes,
		"mode":              taskMode,
	}

	resp, err := apiPost("/tasks", body)
	if err != nil {
		return err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", result["id"])
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks")
	if err != nil {
		return err
	}

	var tasks []map[string]interface{}
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMINUTES\tMODE")
	for _, t := range tasks {
		id := truncateID(t["id"].(string))
		name := truncate(t["name"].(string), 40)
		minutes := t["allocated_minutes"].(float64)
		mode := t["mode"].(string)
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\n", id, name, minutes, mode)
	}
	w.Flush()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var task map[string]interface{}
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", task["id"])
	fmt.Printf("Name:      %s\n", task["name"])
	fmt.Printf("Minutes:   %.0f\n", task["allocated_minutes"].(float64))
	fmt.Printf("Mode:      %s\n", task["mode"])
	fmt.Printf("Created:   %s\n", task["created_at"])

	resp, err = apiGet("/tasks/" + args[0] + "/sessions")
	if err != nil {
		return err
	}

	var sessions []map[string]interface{}
	if err := json.Unmarshal(resp, &sessions); err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	fmt.Println("\nSessions:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPLANNED\tACTUAL\tBREAKS\tSKIPPED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\n",
			truncateID(s["id"].(string)),
			s["status"].(string),
			s["planned_minutes"].(float64),
			s["actual_minutes"].(float64),
			s["breaks_taken"].(float64),
			s["breaks_skipped"].(float64))
	}
	w.Flush()
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	if _, err := apiDelete("/tasks/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

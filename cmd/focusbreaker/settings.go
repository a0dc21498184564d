package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change daemon settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Update one setting by its JSON key",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/settings")
	if err != nil {
		return err
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(resp, &settings); err != nil {
		return err
	}
	delete(settings, "updated_at")

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, settings[k])
	}
	w.Flush()
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	resp, err := apiGet("/settings")
	if err != nil {
		return err
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(resp, &settings); err != nil {
		return err
	}
	if _, ok := settings[key]; !ok {
		return fmt.Errorf("unknown setting %q (see: focusbreaker settings show)", key)
	}

	// Values are numbers or booleans; parse the literal the same way JSON
	// would.
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("invalid value %q: %w", raw, err)
	}
	settings[key] = value

	if _, err := apiPut("/settings", settings); err != nil {
		return err
	}
	fmt.Printf("Set %s = %v\n", key, value)
	return nil
}

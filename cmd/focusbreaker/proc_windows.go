//go:build windows

package main

import (
	"os/exec"
)

func configureDaemonProc(cmd *exec.Cmd) {
	// Windows has no Setsid; the default detachment is enough for the
	// daemon to outlive the TUI.
	_ = cmd
}

package tui

import "time"

// TaskItem is a task row shown in the picker.
type TaskItem struct {
	ID               string
	Name             string
	AllocatedMinutes int
	Mode             string
}

// SessionView is the live state the dashboard renders, decoded from the
// daemon's active-session endpoint.
type SessionView struct {
	SessionID        string
	TaskID           string
	Mode             string
	Status           string
	TimerState       string
	ElapsedSeconds   int
	RemainingSeconds int
	ProgressPercent  float64
	Clock            string

	OnBreak               bool
	BreakRemainingSeconds int

	CoolingDown              bool
	CooldownRemainingSeconds int

	NextBreakTime *time.Time

	BreaksTaken           int
	BreaksSkipped         int
	SnoozePassesRemaining int
}

// StreakView is one streak counter.
type StreakView struct {
	Type    string
	Current int
	Best    int
}

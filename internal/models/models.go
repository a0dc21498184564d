// Package models defines the core domain types for FocusBreaker.
package models

import "time"

// Mode selects the break-enforcement policy for a work session.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeStrict  Mode = "strict"
	ModeFocused Mode = "focused"
)

// Modes lists every valid mode.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeStrict, ModeFocused}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeStrict, ModeFocused:
		return true
	}
	return false
}

// SessionStatus represents the lifecycle state of a work session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
	SessionExtended   SessionStatus = "extended"
)

// BreakStatus represents the lifecycle state of a scheduled break.
type BreakStatus string

const (
	BreakPending    BreakStatus = "pending"
	BreakInProgress BreakStatus = "in_progress"
	BreakCompleted  BreakStatus = "completed"
	BreakSnoozed    BreakStatus = "snoozed"
	BreakSkipped    BreakStatus = "skipped"
)

// Task is a named unit of work with an allocated focus budget.
// It is read-only input to scheduling once a session references it.
type Task struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AllocatedMinutes int       `json:"allocated_minutes"`
	Mode             Mode      `json:"mode"`
	CreatedAt        time.Time `json:"created_at"`
}

// WorkSession is one timed focus interval bound to a task.
type WorkSession struct {
	ID                    string        `json:"id"`
	TaskID                string        `json:"task_id"`
	StartTime             time.Time     `json:"start_time"`
	EndTime               *time.Time    `json:"end_time,omitempty"`
	PlannedMinutes        int           `json:"planned_minutes"`
	ActualMinutes         int           `json:"actual_minutes"`
	Mode                  Mode          `json:"mode"`
	Status                SessionStatus `json:"status"`
	BreaksTaken           int           `json:"breaks_taken"`
	BreaksSnoozed         int           `json:"breaks_snoozed"`
	BreaksSkipped         int           `json:"breaks_skipped"`
	ExtendedCount         int           `json:"extended_count"`
	EmergencyExits        int           `json:"emergency_exits"`
	SnoozePassesRemaining int           `json:"snooze_passes_remaining"`
	Archived              bool          `json:"archived"`
	CreatedAt             time.Time     `json:"created_at"`
}

// Break is a scheduled rest interval within a session.
type Break struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"session_id"`
	ScheduledTime  time.Time   `json:"scheduled_time"`
	ActualTime     *time.Time  `json:"actual_time,omitempty"`
	DurationMins   int         `json:"duration_minutes"`
	Status         BreakStatus `json:"status"`
	SnoozeCount    int         `json:"snooze_count"`
	SnoozeDuration int         `json:"snooze_duration_minutes"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Streak tracks a running count of consecutive qualifying sessions or days.
type Streak struct {
	Type         string    `json:"type"`
	CurrentCount int       `json:"current_count"`
	BestCount    int       `json:"best_count"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Streak types recognized by the streak collaborator.
const (
	StreakSession          = "session_streak"
	StreakPerfectSession   = "perfect_session"
	StreakDailyConsistency = "daily_consistency"
)

// Settings holds the per-mode tunables read by the scheduler and mode rules.
type Settings struct {
	NormalWorkIntervalMins   int `json:"normal_work_interval_minutes"`
	NormalBreakDurationMins  int `json:"normal_break_duration_minutes"`
	NormalSnoozeDurationMins int `json:"normal_snooze_duration_minutes"`

	StrictWorkIntervalMins  int `json:"strict_work_interval_minutes"`
	StrictBreakDurationMins int `json:"strict_break_duration_minutes"`
	StrictCooldownMins      int `json:"strict_cooldown_minutes"`

	FocusedMandatoryBreakMins  int  `json:"focused_mandatory_break_minutes"`
	FocusedBreakScalingEnabled bool `json:"focused_break_scaling_enabled"`

	MaxSnoozePasses           int  `json:"max_snooze_passes"`
	SnoozeRedistributesBreaks bool `json:"snooze_redistributes_breaks"`
	AllowSkipInNormalMode     bool `json:"allow_skip_in_normal_mode"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings returns the factory defaults seeded into a fresh database.
func DefaultSettings() Settings {
	return Settings{
		NormalWorkIntervalMins:     25,
		NormalBreakDurationMins:    5,
		NormalSnoozeDurationMins:   5,
		StrictWorkIntervalMins:     52,
		StrictBreakDurationMins:    17,
		StrictCooldownMins:         20,
		FocusedMandatoryBreakMins:  30,
		FocusedBreakScalingEnabled: true,
		MaxSnoozePasses:            3,
		SnoozeRedistributesBreaks:  true,
		AllowSkipInNormalMode:      true,
	}
}

// Duration bounds enforced when creating tasks and sessions.
const (
	MinWorkDurationMinutes  = 5
	MaxWorkDurationMinutes  = 480
	MinBreakDurationMinutes = 1
	MaxBreakDurationMinutes = 60
)

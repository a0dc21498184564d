// Package modes centralizes the per-mode policy rules so mode-dependent
// behavior lives in one exhaustive table instead of scattered conditionals.
package modes

import "github.com/ferenimedez-stab/Focus-Breaker/internal/models"

// BreakWindowHint tells the presentation layer how intrusive the break
// surface should be. The core never renders anything itself.
type BreakWindowHint string

const (
	WindowSmallMovable BreakWindowHint = "small_movable"
	WindowFullScreen   BreakWindowHint = "full_screen"
)

// Policy is the complete rule set for one mode.
type Policy struct {
	CanSnooze              bool
	CanSkip                bool
	CanExtend              bool
	RequiresCooldown       bool
	HasInterimBreaks       bool
	EmergencyExitAvailable bool
	BreakWindow            BreakWindowHint
	DisplayName            string
	Description            string
}

var policies = map[models.Mode]Policy{
	models.ModeNormal: {
		CanSnooze:              true,
		CanSkip:                true,
		CanExtend:              true,
		RequiresCooldown:       false,
		HasInterimBreaks:       true,
		EmergencyExitAvailable: false,
		BreakWindow:            WindowSmallMovable,
		DisplayName:            "Normal mode",
		Description:            "Flexible breaks - can snooze/skip, can extend session",
	},
	models.ModeStrict: {
		CanSnooze:              false,
		CanSkip:                false,
		CanExtend:              false,
		RequiresCooldown:       true,
		HasInterimBreaks:       true,
		EmergencyExitAvailable: true,
		BreakWindow:            WindowFullScreen,
		DisplayName:            "Strict mode",
		Description:            "Enforced breaks - no snooze/skip, mandatory cooldown after work",
	},
	models.ModeFocused: {
		CanSnooze:              false,
		CanSkip:                false,
		CanExtend:              false,
		RequiresCooldown:       true,
		HasInterimBreaks:       false,
		EmergencyExitAvailable: true,
		BreakWindow:            WindowFullScreen,
		DisplayName:            "Focused mode",
		Description:            "No interruptions - pure focus, mandatory break at the end",
	},
}

// Rules returns the policy for a mode. Unknown modes fall back to the
// most restrictive interpretation: no permissions, full-screen break.
func Rules(m models.Mode) Policy {
	if p, ok := policies[m]; ok {
		return p
	}
	return Policy{BreakWindow: WindowFullScreen, DisplayName: "Unknown mode"}
}

// CanSnooze reports whether breaks may be snoozed in this mode.
func CanSnooze(m models.Mode) bool { return Rules(m).CanSnooze }

// CanSkip reports whether breaks may be skipped in this mode. Skipping in
// Normal mode can additionally be disabled via settings.
func CanSkip(m models.Mode, settings models.Settings) bool {
	if m == models.ModeNormal {
		return settings.AllowSkipInNormalMode
	}
	return Rules(m).CanSkip
}

// CanExtend reports whether the session may be extended in this mode.
func CanExtend(m models.Mode) bool { return Rules(m).CanExtend }

// RequiresCooldown reports whether a mandatory cooldown follows the work
// interval in this mode.
func RequiresCooldown(m models.Mode) bool { return Rules(m).RequiresCooldown }

// HasInterimBreaks reports whether breaks interrupt the work interval.
// Focused mode takes its single mandatory break as a post-work cooldown.
func HasInterimBreaks(m models.Mode) bool { return Rules(m).HasInterimBreaks }

// Focused-mode cooldown scaling: longer sessions earn longer mandatory rest.
var focusedCooldownTiers = []struct {
	upToMinutes int
	cooldown    int
}{
	{120, 30},
	{240, 45},
}

// CooldownDuration returns the mandatory post-work rest in minutes for a
// mode, or 0 when no cooldown applies.
func CooldownDuration(m models.Mode, settings models.Settings, workMinutes int) int {
	switch m {
	case models.ModeStrict:
		return settings.StrictCooldownMins
	case models.ModeFocused:
		if !settings.FocusedBreakScalingEnabled {
			return settings.FocusedMandatoryBreakMins
		}
		for _, tier := range focusedCooldownTiers {
			if workMinutes < tier.upToMinutes {
				return tier.cooldown
			}
		}
		return 60
	default:
		return 0
	}
}

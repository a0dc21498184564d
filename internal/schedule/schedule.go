// Package schedule computes break schedules for work sessions. All
// functions are pure: they map (mode, duration, settings) to minute
// offsets and never touch storage or timers.
package schedule

import "github.com/ferenimedez-stab/Focus-Breaker/internal/models"

// WorkIntervalForMode returns the minutes of work before each interim
// break in a mode. Focused mode has no interim breaks.
func WorkIntervalForMode(mode models.Mode, settings models.Settings) int {
	switch mode {
	case models.ModeNormal:
		if settings.NormalWorkIntervalMins > 0 {
			return settings.NormalWorkIntervalMins
		}
		return 25
	case models.ModeStrict:
		if settings.StrictWorkIntervalMins > 0 {
			return settings.StrictWorkIntervalMins
		}
		return 52
	case models.ModeFocused:
		return 0
	default:
		return 25
	}
}

// BreakDurationForMode returns the length in minutes of one break in a mode.
func BreakDurationForMode(mode models.Mode, settings models.Settings) int {
	switch mode {
	case models.ModeNormal:
		if settings.NormalBreakDurationMins > 0 {
			return settings.NormalBreakDurationMins
		}
		return 5
	case models.ModeStrict:
		if settings.StrictBreakDurationMins > 0 {
			return settings.StrictBreakDurationMins
		}
		return 17
	default:
		if settings.FocusedMandatoryBreakMins > 0 {
			return settings.FocusedMandatoryBreakMins
		}
		return 30
	}
}

// CalculateBreakSchedule returns the minute offsets, relative to session
// start, at which breaks interrupt the work interval. Focused mode and
// durations below the minimum work duration yield no breaks.
func CalculateBreakSchedule(mode models.Mode, workMinutes int, settings models.Settings) []int {
	if mode == models.ModeFocused {
		return nil
	}
	if workMinutes < models.MinWorkDurationMinutes {
		return nil
	}

	interval := WorkIntervalForMode(mode, settings)
	if interval <= 0 || workMinutes < interval {
		return nil
	}

	var offsets []int
	for i := 1; i <= workMinutes/interval; i++ {
		offset := i * interval
		if offset < workMinutes {
			offsets = append(offsets, offset)
		}
	}
	return offsets
}

// ValidateBreakSchedule reports whether offsets form a sensible schedule
// for a session of the given length: strictly increasing, first after the
// start, last before the end. An empty schedule is always valid.
func ValidateBreakSchedule(offsets []int, workMinutes int) bool {
	if len(offsets) == 0 {
		return true
	}
	if offsets[0] <= 0 || offsets[len(offsets)-1] >= workMinutes {
		return false
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return false
		}
	}
	return true
}

// RedistributeAfterSnooze spaces pendingCount breaks evenly across the
// time remaining in the session and returns their new minute offsets.
// With a single pending break it lands at the midpoint of the remainder.
// Returns nil when the session time is already used up or nothing is
// pending, meaning: leave the schedule alone.
func RedistributeAfterSnooze(plannedMinutes, elapsedMinutes, pendingCount int) []int {
	remaining := plannedMinutes - elapsedMinutes
	if remaining <= 0 || pendingCount <= 0 {
		return nil
	}
	if pendingCount == 1 {
		return []int{elapsedMinutes + remaining/2}
	}

	interval := float64(remaining) / float64(pendingCount+1)
	offsets := make([]int, 0, pendingCount)
	for i := 1; i <= pendingCount; i++ {
		offsets = append(offsets, elapsedMinutes+int(float64(i)*interval))
	}
	return offsets
}

// NextBreakTime returns the first offset after the current minute, or -1
// when no break remains.
func NextBreakTime(currentMinute int, offsets []int) int {
	for _, offset := range offsets {
		if offset > currentMinute {
			return offset
		}
	}
	return -1
}

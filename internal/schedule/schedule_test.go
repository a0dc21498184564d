package schedule

import (
	"reflect"
	"testing"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
)

func TestCalculateBreakSchedule(t *testing.T) {
	settings := models.DefaultSettings()

	tests := []struct {
		name    string
		mode    models.Mode
		minutes int
		want    []int
	}{
		{"normal 2h", models.ModeNormal, 120, []int{25, 50, 75, 100}},
		{"normal exactly one interval", models.ModeNormal, 25, nil},
		{"normal just past one interval", models.ModeNormal, 26, []int{25}},
		{"normal shorter than interval", models.ModeNormal, 20, nil},
		{"normal below minimum", models.ModeNormal, 4, nil},
		{"strict 2h", models.ModeStrict, 120, []int{52, 104}},
		{"focused never breaks", models.ModeFocused, 240, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBreakSchedule(tt.mode, tt.minutes, settings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CalculateBreakSchedule(%s, %d) = %v, want %v", tt.mode, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestCalculateBreakScheduleOffsetsAreInterior(t *testing.T) {
	settings := models.DefaultSettings()

	for minutes := 5; minutes <= 480; minutes += 7 {
		for _, mode := range []models.Mode{models.ModeNormal, models.ModeStrict} {
			offsets := CalculateBreakSchedule(mode, minutes, settings)
			if !ValidateBreakSchedule(offsets, minutes) {
				t.Fatalf("invalid schedule for %s/%d: %v", mode, minutes, offsets)
			}
		}
	}
}

func TestValidateBreakSchedule(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
		minutes int
		want    bool
	}{
		{"empty is valid", nil, 60, true},
		{"interior ascending", []int{25, 50}, 60, true},
		{"zero offset", []int{0, 25}, 60, false},
		{"at session end", []int{25, 60}, 60, false},
		{"past session end", []int{25, 70}, 60, false},
		{"not ascending", []int{50, 25}, 60, false},
		{"duplicate", []int{25, 25}, 60, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateBreakSchedule(tt.offsets, tt.minutes); got != tt.want {
				t.Errorf("ValidateBreakSchedule(%v, %d) = %v, want %v", tt.offsets, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestRedistributeAfterSnooze(t *testing.T) {
	tests := []struct {
		name    string
		planned int
		elapsed int
		pending int
		want    []int
	}{
		{"single break lands midway", 60, 20, 1, []int{40}},
		{"two breaks split the remainder", 60, 30, 2, []int{40, 50}},
		{"three breaks", 120, 40, 3, []int{60, 80, 100}},
		{"no time left", 60, 60, 2, nil},
		{"overrun", 60, 70, 1, nil},
		{"nothing pending", 60, 20, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedistributeAfterSnooze(tt.planned, tt.elapsed, tt.pending)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RedistributeAfterSnooze(%d, %d, %d) = %v, want %v",
					tt.planned, tt.elapsed, tt.pending, got, tt.want)
			}
		})
	}
}

func TestRedistributedOffsetsStayInterior(t *testing.T) {
	for elapsed := 0; elapsed < 120; elapsed += 11 {
		for pending := 1; pending <= 5; pending++ {
			offsets := RedistributeAfterSnooze(120, elapsed, pending)
			for _, offset := range offsets {
				if offset <= elapsed || offset >= 120 {
					t.Fatalf("offset %d out of (elapsed=%d, planned=120) for pending=%d: %v",
						offset, elapsed, pending, offsets)
				}
			}
		}
	}
}

func TestNextBreakTime(t *testing.T) {
	offsets := []int{25, 50, 75}

	if got := NextBreakTime(0, offsets); got != 25 {
		t.Errorf("NextBreakTime(0) = %d, want 25", got)
	}
	if got := NextBreakTime(25, offsets); got != 50 {
		t.Errorf("NextBreakTime(25) = %d, want 50", got)
	}
	if got := NextBreakTime(80, offsets); got != -1 {
		t.Errorf("NextBreakTime(80) = %d, want -1", got)
	}
	if got := NextBreakTime(10, nil); got != -1 {
		t.Errorf("NextBreakTime with no offsets = %d, want -1", got)
	}
}

func TestWorkIntervalForMode(t *testing.T) {
	settings := models.DefaultSettings()

	if got := WorkIntervalForMode(models.ModeNormal, settings); got != 25 {
		t.Errorf("normal interval = %d, want 25", got)
	}
	if got := WorkIntervalForMode(models.ModeStrict, settings); got != 52 {
		t.Errorf("strict interval = %d, want 52", got)
	}
	if got := WorkIntervalForMode(models.ModeFocused, settings); got != 0 {
		t.Errorf("focused interval = %d, want 0", got)
	}
}

func TestOptimizeForEnergyPattern(t *testing.T) {
	got := OptimizeForEnergyPattern(90, EnergyMorningPerson)
	want := []int{20, 40, 70}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("morning person over 90 = %v, want %v", got, want)
	}

	// Unknown patterns fall back to the normal preset.
	got = OptimizeForEnergyPattern(60, EnergyPattern("lark"))
	want = []int{25, 50}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unknown pattern = %v, want %v", got, want)
	}
}

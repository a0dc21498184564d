package modes

import (
	"testing"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
)

func TestPolicyTable(t *testing.T) {
	tests := []struct {
		mode          models.Mode
		canSnooze     bool
		canExtend     bool
		cooldown      bool
		interimBreaks bool
		emergencyExit bool
		window        BreakWindowHint
	}{
		{models.ModeNormal, true, true, false, true, false, WindowSmallMovable},
		{models.ModeStrict, false, false, true, true, true, WindowFullScreen},
		{models.ModeFocused, false, false, true, false, true, WindowFullScreen},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := Rules(tt.mode)
			if p.CanSnooze != tt.canSnooze {
				t.Errorf("CanSnooze = %v, want %v", p.CanSnooze, tt.canSnooze)
			}
			if p.CanExtend != tt.canExtend {
				t.Errorf("CanExtend = %v, want %v", p.CanExtend, tt.canExtend)
			}
			if p.RequiresCooldown != tt.cooldown {
				t.Errorf("RequiresCooldown = %v, want %v", p.RequiresCooldown, tt.cooldown)
			}
			if p.HasInterimBreaks != tt.interimBreaks {
				t.Errorf("HasInterimBreaks = %v, want %v", p.HasInterimBreaks, tt.interimBreaks)
			}
			if p.EmergencyExitAvailable != tt.emergencyExit {
				t.Errorf("EmergencyExitAvailable = %v, want %v", p.EmergencyExitAvailable, tt.emergencyExit)
			}
			if p.BreakWindow != tt.window {
				t.Errorf("BreakWindow = %v, want %v", p.BreakWindow, tt.window)
			}
		})
	}
}

func TestUnknownModeIsRestrictive(t *testing.T) {
	p := Rules(models.Mode("turbo"))
	if p.CanSnooze || p.CanSkip || p.CanExtend {
		t.Error("unknown mode must not grant permissions")
	}
	if p.BreakWindow != WindowFullScreen {
		t.Errorf("unknown mode window = %v, want full screen", p.BreakWindow)
	}
}

func TestCanSkipHonorsSettings(t *testing.T) {
	settings := models.DefaultSettings()

	if !CanSkip(models.ModeNormal, settings) {
		t.Error("normal mode should allow skip by default")
	}

	settings.AllowSkipInNormalMode = false
	if CanSkip(models.ModeNormal, settings) {
		t.Error("normal-mode skip should respect the settings toggle")
	}
	if CanSkip(models.ModeStrict, settings) {
		t.Error("strict mode never allows skip")
	}
}

func TestCooldownDuration(t *testing.T) {
	settings := models.DefaultSettings()

	tests := []struct {
		name        string
		mode        models.Mode
		workMinutes int
		want        int
	}{
		{"normal has none", models.ModeNormal, 120, 0},
		{"strict uses setting", models.ModeStrict, 120, 20},
		{"focused short", models.ModeFocused, 90, 30},
		{"focused medium", models.ModeFocused, 180, 45},
		{"focused long", models.ModeFocused, 300, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CooldownDuration(tt.mode, settings, tt.workMinutes); got != tt.want {
				t.Errorf("CooldownDuration(%s, %d) = %d, want %d", tt.mode, tt.workMinutes, got, tt.want)
			}
		})
	}
}

func TestCooldownScalingDisabled(t *testing.T) {
	settings := models.DefaultSettings()
	settings.FocusedBreakScalingEnabled = false

	if got := CooldownDuration(models.ModeFocused, settings, 300); got != settings.FocusedMandatoryBreakMins {
		t.Errorf("CooldownDuration = %d, want fixed %d", got, settings.FocusedMandatoryBreakMins)
	}
}

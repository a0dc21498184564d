package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/timer"
)

// testMinute keeps scheduled minutes in the millisecond range so sessions
// run to completion inside tests.
const testMinute = 20 * time.Millisecond

// recorder captures lifecycle notifications on buffered channels.
type recorder struct {
	NopObserver
	started       chan *models.WorkSession
	breakStarted  chan *models.Break
	breakTicks    chan time.Duration
	breakFinished chan *models.Break
	finished      chan *models.WorkSession
	cooldown      chan time.Duration
	cooldownTicks chan time.Duration
	cooldownDone  chan string
}

func newRecorder() *recorder {
	return &recorder{
		started:       make(chan *models.WorkSession, 4),
		breakStarted:  make(chan *models.Break, 8),
		breakTicks:    make(chan time.Duration, 8),
		breakFinished: make(chan *models.Break, 8),
		finished:      make(chan *models.WorkSession, 4),
		cooldown:      make(chan time.Duration, 4),
		cooldownTicks: make(chan time.Duration, 8),
		cooldownDone:  make(chan string, 4),
	}
}

func (r *recorder) SessionStarted(s *models.WorkSession) { r.started <- s }
func (r *recorder) BreakStarted(_ string, b *models.Break) {
	select {
	case r.breakStarted <- b:
	default:
	}
}
func (r *recorder) BreakFinished(_ string, b *models.Break) {
	select {
	case r.breakFinished <- b:
	default:
	}
}
func (r *recorder) SessionFinished(s *models.WorkSession)     { r.finished <- s }
func (r *recorder) CooldownStarted(_ string, d time.Duration) { r.cooldown <- d }
func (r *recorder) BreakTick(_ string, _, remaining time.Duration) {
	select {
	case r.breakTicks <- remaining:
	default:
	}
}
func (r *recorder) CooldownTick(_ string, remaining time.Duration) {
	select {
	case r.cooldownTicks <- remaining:
	default:
	}
}
func (r *recorder) CooldownFinished(id string) {
	select {
	case r.cooldownDone <- id:
	default:
	}
}

func newTestManager(t *testing.T) (*Manager, *store.Store, *recorder) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Short intervals so a 12 minute session runs in ~240ms.
	set, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	set.NormalWorkIntervalMins = 5
	set.NormalBreakDurationMins = 2
	set.NormalSnoozeDurationMins = 3
	set.StrictWorkIntervalMins = 50
	set.StrictBreakDurationMins = 2
	set.StrictCooldownMins = 25
	set.MaxSnoozePasses = 2
	if err := s.UpdateSettings(set); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	rec := newRecorder()
	m := NewManager(s, Options{
		MinuteUnit:   testMinute,
		TickInterval: 2 * time.Millisecond,
		StopTimeout:  200 * time.Millisecond,
		Observer:     rec,
	})
	t.Cleanup(m.Shutdown)
	return m, s, rec
}

func startSession(t *testing.T, m *Manager, minutes int, mode models.Mode) *models.WorkSession {
	t.Helper()
	task, err := m.CreateTask("test task", minutes, mode)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	sess, err := m.StartSession(task.ID)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return sess
}

func waitFinished(t *testing.T, rec *recorder) *models.WorkSession {
	t.Helper()
	select {
	case sess := <-rec.finished:
		return sess
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}

func TestCreateTaskValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	tests := []struct {
		name    string
		task    string
		minutes int
		mode    models.Mode
	}{
		{"empty name", "  ", 60, models.ModeNormal},
		{"too short", "t", 3, models.ModeNormal},
		{"too long", "t", 999, models.ModeNormal},
		{"unknown mode", "t", 60, models.Mode("turbo")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateTask(tt.task, tt.minutes, tt.mode)
			if !IsValidation(err) {
				t.Errorf("CreateTask(%q, %d, %q) error = %v, want ValidationError",
					tt.task, tt.minutes, tt.mode, err)
			}
		})
	}

	task, err := m.CreateTask("write report", 60, models.ModeNormal)
	if err != nil {
		t.Fatalf("valid CreateTask failed: %v", err)
	}
	if task.AllocatedMinutes != 60 {
		t.Errorf("allocated = %d, want 60", task.AllocatedMinutes)
	}
}

func TestStartSessionSchedulesBreaks(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 12, models.ModeNormal)

	// Interval 5 over 12 minutes gives breaks at 5 and 10.
	pending, err := s.PendingBreaks(sess.ID)
	if err != nil {
		t.Fatalf("PendingBreaks failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 scheduled breaks, got %d", len(pending))
	}

	wantFirst := sess.StartTime.Add(5 * testMinute)
	if !pending[0].ScheduledTime.Equal(wantFirst) {
		t.Errorf("first break at %v, want %v", pending[0].ScheduledTime, wantFirst)
	}

	// Only one session at a time.
	if _, err := m.StartSession(sess.TaskID); !IsState(err) {
		t.Errorf("second StartSession error = %v, want StateError", err)
	}
}

func TestStartSessionUnknownTask(t *testing.T) {
	m, _, _ := newTestManager(t)

	if _, err := m.StartSession("no-such-task"); !IsValidation(err) {
		t.Errorf("StartSession error = %v, want ValidationError", err)
	}
}

func TestFocusedSessionHasNoInterimBreaks(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 12, models.ModeFocused)

	pending, _ := s.PendingBreaks(sess.ID)
	if len(pending) != 0 {
		t.Errorf("Expected no breaks in focused mode, got %d", len(pending))
	}
}

func TestSessionRunsBreaksAndCompletes(t *testing.T) {
	m, s, rec := newTestManager(t)

	sess := startSession(t, m, 12, models.ModeNormal)

	// Both scheduled breaks happen on their own.
	for i := 0; i < 2; i++ {
		select {
		case <-rec.breakStarted:
		case <-time.After(5 * time.Second):
			t.Fatalf("break %d never started", i+1)
		}
		select {
		case <-rec.breakFinished:
		case <-time.After(5 * time.Second):
			t.Fatalf("break %d never finished", i+1)
		}
	}

	finished := waitFinished(t, rec)
	if finished.Status != models.SessionCompleted {
		t.Errorf("status = %s, want completed", finished.Status)
	}

	got, _ := s.GetSession(sess.ID)
	if got.Status != models.SessionCompleted {
		t.Errorf("persisted status = %s, want completed", got.Status)
	}
	if got.BreaksTaken != 2 {
		t.Errorf("breaks taken = %d, want 2", got.BreaksTaken)
	}
	if got.EndTime == nil {
		t.Error("end time not set")
	}
}

func TestSnoozeSpendsPassesThenRefuses(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	// Two passes configured; both succeed.
	for i := 0; i < 2; i++ {
		ok, err := m.SnoozeBreak()
		if err != nil {
			t.Fatalf("SnoozeBreak %d failed: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("SnoozeBreak %d = false, want true", i+1)
		}
	}

	// Allowance exhausted: refused without error, break still owed.
	ok, err := m.SnoozeBreak()
	if err != nil {
		t.Fatalf("exhausted SnoozeBreak errored: %v", err)
	}
	if ok {
		t.Error("exhausted SnoozeBreak = true, want false")
	}

	got, _ := s.GetSession(sess.ID)
	if got.SnoozePassesRemaining != 0 {
		t.Errorf("passes remaining = %d, want 0", got.SnoozePassesRemaining)
	}
	if got.BreaksSnoozed != 2 {
		t.Errorf("breaks snoozed = %d, want 2", got.BreaksSnoozed)
	}

	breaks, _ := s.ListBreaksForSession(sess.ID)
	owed := 0
	for _, brk := range breaks {
		if brk.Status == models.BreakPending || brk.Status == models.BreakSnoozed || brk.Status == models.BreakInProgress {
			owed++
		}
	}
	if owed == 0 {
		t.Error("refused snooze must leave the break owed")
	}
}

func TestSnoozeRefusedInStrictMode(t *testing.T) {
	m, _, _ := newTestManager(t)

	startSession(t, m, 60, models.ModeStrict)

	if _, err := m.SnoozeBreak(); !IsState(err) {
		t.Errorf("SnoozeBreak error = %v, want StateError", err)
	}
}

func TestSkipRefusedInStrictMode(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeStrict)

	if _, err := m.SkipBreak(); !IsState(err) {
		t.Errorf("SkipBreak error = %v, want StateError", err)
	}

	// Nothing changed.
	got, _ := s.GetSession(sess.ID)
	if got.BreaksSkipped != 0 {
		t.Errorf("breaks skipped = %d, want 0", got.BreaksSkipped)
	}
	pending, _ := s.PendingBreaks(sess.ID)
	if len(pending) != 1 {
		t.Errorf("pending breaks = %d, want 1", len(pending))
	}
}

func TestSkipBreakInNormalMode(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	ok, err := m.SkipBreak()
	if err != nil {
		t.Fatalf("SkipBreak failed: %v", err)
	}
	if !ok {
		t.Fatal("SkipBreak = false, want true")
	}

	got, _ := s.GetSession(sess.ID)
	if got.BreaksSkipped != 1 {
		t.Errorf("breaks skipped = %d, want 1", got.BreaksSkipped)
	}
}

func TestBreakActionsRefuseWithoutError(t *testing.T) {
	m, _, _ := newTestManager(t)

	// 8 minutes schedules a single break at minute 5.
	startSession(t, m, 8, models.ModeNormal)

	if ok, err := m.SkipBreak(); err != nil || !ok {
		t.Fatalf("SkipBreak = %v, %v, want true, nil", ok, err)
	}

	// Nothing left to act on: refused, not failed.
	if ok, err := m.SkipBreak(); err != nil || ok {
		t.Errorf("SkipBreak with empty schedule = %v, %v, want false, nil", ok, err)
	}
	if ok, err := m.TakeBreak(); err != nil || ok {
		t.Errorf("TakeBreak with empty schedule = %v, %v, want false, nil", ok, err)
	}
}

func TestSkipRespectsSettingsToggle(t *testing.T) {
	m, s, _ := newTestManager(t)

	set, _ := s.GetSettings()
	set.AllowSkipInNormalMode = false
	s.UpdateSettings(set)

	startSession(t, m, 60, models.ModeNormal)

	if _, err := m.SkipBreak(); !IsState(err) {
		t.Errorf("SkipBreak error = %v, want StateError when disabled", err)
	}
}

func TestTakeBreakManually(t *testing.T) {
	m, s, rec := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	ok, err := m.TakeBreak()
	if err != nil {
		t.Fatalf("TakeBreak failed: %v", err)
	}
	if !ok {
		t.Fatal("TakeBreak = false, want true")
	}
	select {
	case <-rec.breakStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("break never started")
	}
	select {
	case <-rec.breakTicks:
	case <-time.After(2 * time.Second):
		t.Fatal("no break tick observed")
	}

	// Credit waits for the break to run its course.
	got, _ := s.GetSession(sess.ID)
	if got.BreaksTaken != 0 {
		t.Errorf("breaks taken mid-break = %d, want 0", got.BreaksTaken)
	}

	// A second take while on break is refused, not failed.
	if ok, err := m.TakeBreak(); err != nil || ok {
		t.Errorf("TakeBreak on break = %v, %v, want false, nil", ok, err)
	}

	select {
	case <-rec.breakFinished:
	case <-time.After(2 * time.Second):
		t.Fatal("break never finished")
	}

	got, _ = s.GetSession(sess.ID)
	if got.BreaksTaken != 1 {
		t.Errorf("breaks taken = %d, want 1", got.BreaksTaken)
	}
}

func TestInterruptedBreakNotCounted(t *testing.T) {
	m, s, rec := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	if ok, err := m.TakeBreak(); err != nil || !ok {
		t.Fatalf("TakeBreak = %v, %v, want true, nil", ok, err)
	}
	select {
	case <-rec.breakStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("break never started")
	}

	// Snoozing the running break cancels it; only a break that completes
	// naturally counts toward compliance.
	if ok, err := m.SnoozeBreak(); err != nil || !ok {
		t.Fatalf("SnoozeBreak = %v, %v, want true, nil", ok, err)
	}

	got, _ := s.GetSession(sess.ID)
	if got.BreaksTaken != 0 {
		t.Errorf("breaks taken after snoozed break = %d, want 0", got.BreaksTaken)
	}
	if got.BreaksSnoozed != 1 {
		t.Errorf("breaks snoozed = %d, want 1", got.BreaksSnoozed)
	}
}

func TestCompleteSessionIdempotent(t *testing.T) {
	m, s, rec := newTestManager(t)

	// 5 minutes under a 5 minute interval: no breaks, finishes in ~100ms.
	sess := startSession(t, m, 5, models.ModeNormal)
	waitFinished(t, rec)

	// Late duplicate completions are harmless no-ops.
	for i := 0; i < 2; i++ {
		if err := m.CompleteSession(); err != nil {
			t.Fatalf("duplicate CompleteSession errored: %v", err)
		}
	}

	got, _ := s.GetSession(sess.ID)
	if got.Status != models.SessionCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	streak, _ := s.GetStreak(models.StreakSession)
	if streak.CurrentCount != 1 {
		t.Errorf("session streak = %d, want exactly 1", streak.CurrentCount)
	}
}

func TestAbandonSession(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	if err := m.AbandonSession(); err != nil {
		t.Fatalf("AbandonSession failed: %v", err)
	}

	got, _ := s.GetSession(sess.ID)
	if got.Status != models.SessionAbandoned {
		t.Errorf("status = %s, want abandoned", got.Status)
	}

	// Abandoning again: nothing to abandon.
	if err := m.AbandonSession(); !IsState(err) {
		t.Errorf("second AbandonSession error = %v, want StateError", err)
	}
}

func TestEmergencyExit(t *testing.T) {
	m, s, rec := newTestManager(t)

	// Not available in normal mode.
	startSession(t, m, 60, models.ModeNormal)
	if err := m.HandleEmergencyExit(); !IsState(err) {
		t.Errorf("normal-mode emergency exit error = %v, want StateError", err)
	}
	m.AbandonSession()

	sess := startSession(t, m, 60, models.ModeStrict)
	if ok, err := m.TakeBreak(); err != nil || !ok {
		t.Fatalf("TakeBreak = %v, %v, want true, nil", ok, err)
	}
	select {
	case <-rec.breakStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("break never started")
	}

	if err := m.HandleEmergencyExit(); err != nil {
		t.Fatalf("HandleEmergencyExit failed: %v", err)
	}

	// The escape ends the break, never the session: work resumes and the
	// exit is counted.
	st := m.Status()
	if st.Session == nil || st.Session.ID != sess.ID {
		t.Fatal("session gone after emergency exit")
	}
	if st.OnBreak {
		t.Error("still on break after emergency exit")
	}
	if st.TimerState != timer.StateRunning {
		t.Errorf("work timer state = %s, want running", st.TimerState)
	}

	got, _ := s.GetSession(sess.ID)
	if got.Status != models.SessionInProgress {
		t.Errorf("status = %s, want in_progress", got.Status)
	}
	if got.EmergencyExits != 1 {
		t.Errorf("emergency exits = %d, want 1", got.EmergencyExits)
	}
	if got.BreaksTaken != 0 {
		t.Errorf("breaks taken = %d, want 0 for an interrupted break", got.BreaksTaken)
	}
}

func TestExtendSession(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 12, models.ModeNormal)

	if err := m.ExtendSession(6); err != nil {
		t.Fatalf("ExtendSession failed: %v", err)
	}

	got, _ := s.GetSession(sess.ID)
	if got.PlannedMinutes != 18 {
		t.Errorf("planned = %d, want 18", got.PlannedMinutes)
	}
	if got.Status != models.SessionExtended {
		t.Errorf("status = %s, want extended", got.Status)
	}

	// A break for the added stretch appears at minute 15.
	pending, _ := s.PendingBreaks(sess.ID)
	if len(pending) != 3 {
		t.Fatalf("pending breaks = %d, want 3", len(pending))
	}
	wantLast := sess.StartTime.Add(15 * testMinute)
	if !pending[2].ScheduledTime.Equal(wantLast) {
		t.Errorf("new break at %v, want %v", pending[2].ScheduledTime, wantLast)
	}

	if err := m.ExtendSession(-5); !IsValidation(err) {
		t.Errorf("negative extension error = %v, want ValidationError", err)
	}
	if err := m.ExtendSession(1000); !IsValidation(err) {
		t.Errorf("oversize extension error = %v, want ValidationError", err)
	}
}

func TestExtendRenewsSnoozePasses(t *testing.T) {
	m, s, _ := newTestManager(t)

	sess := startSession(t, m, 60, models.ModeNormal)

	for i := 0; i < 2; i++ {
		if ok, err := m.SnoozeBreak(); err != nil || !ok {
			t.Fatalf("SnoozeBreak %d = %v, %v, want true, nil", i+1, ok, err)
		}
	}
	if ok, _ := m.SnoozeBreak(); ok {
		t.Fatal("allowance should be spent before the extension")
	}

	// Extending the session restores the full snooze allowance.
	if err := m.ExtendSession(15); err != nil {
		t.Fatalf("ExtendSession failed: %v", err)
	}

	got, _ := s.GetSession(sess.ID)
	if got.SnoozePassesRemaining != 2 {
		t.Errorf("passes after extension = %d, want 2", got.SnoozePassesRemaining)
	}
	if ok, err := m.SnoozeBreak(); err != nil || !ok {
		t.Errorf("snooze after extension = %v, %v, want true, nil", ok, err)
	}
}

func TestExtendRefusedInStrictMode(t *testing.T) {
	m, _, _ := newTestManager(t)

	startSession(t, m, 60, models.ModeStrict)

	if err := m.ExtendSession(10); !IsState(err) {
		t.Errorf("ExtendSession error = %v, want StateError", err)
	}
}

func TestCooldownBlocksNextSession(t *testing.T) {
	m, s, rec := newTestManager(t)

	// 6 minutes under the strict interval of 50: no interim breaks, but a
	// mandatory cooldown follows the work interval.
	sess := startSession(t, m, 6, models.ModeStrict)

	select {
	case <-rec.cooldown:
	case <-time.After(5 * time.Second):
		t.Fatal("cooldown never started")
	}
	select {
	case <-rec.cooldownTicks:
	case <-time.After(2 * time.Second):
		t.Fatal("no cooldown tick observed")
	}

	// Credit waits for the cooldown: the row is still live, streaks are
	// untouched, and a new session cannot start.
	got, _ := s.GetSession(sess.ID)
	if got.Status == models.SessionCompleted {
		t.Error("session marked completed before the cooldown ended")
	}
	if got.EndTime == nil {
		t.Error("work end time not stamped when the cooldown began")
	}
	if _, err := m.StartSession(sess.TaskID); !IsState(err) {
		t.Errorf("StartSession during cooldown error = %v, want StateError", err)
	}

	finished := waitFinished(t, rec)
	if finished.Status != models.SessionCompleted {
		t.Errorf("status = %s, want completed", finished.Status)
	}
	select {
	case <-rec.cooldownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("cooldown completion never notified")
	}

	got, _ = s.GetSession(sess.ID)
	if got.Status != models.SessionCompleted {
		t.Errorf("persisted status = %s, want completed after cooldown", got.Status)
	}

	// Once the cooldown ends a new session is allowed.
	if _, err := m.StartSession(sess.TaskID); err != nil {
		t.Fatalf("StartSession after cooldown failed: %v", err)
	}
}

func TestStatusSnapshot(t *testing.T) {
	m, _, _ := newTestManager(t)

	st := m.Status()
	if st.Session != nil {
		t.Error("expected empty status before any session")
	}

	sess := startSession(t, m, 60, models.ModeNormal)

	st = m.Status()
	if st.Session == nil || st.Session.ID != sess.ID {
		t.Fatal("status missing active session")
	}
	if st.NextBreakTime == nil {
		t.Error("status missing next break time")
	}
	if st.Clock == "" {
		t.Error("status missing clock display")
	}
}

func TestRecoverOrphanedSession(t *testing.T) {
	m, s, _ := newTestManager(t)

	task, _ := m.CreateTask("orphan", 60, models.ModeNormal)
	orphan, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)

	if err := m.RecoverOrphanedSession(); err != nil {
		t.Fatalf("RecoverOrphanedSession failed: %v", err)
	}

	got, _ := s.GetSession(orphan.ID)
	if got.Status != models.SessionAbandoned {
		t.Errorf("status = %s, want abandoned", got.Status)
	}

	// With a clean slate it does nothing.
	if err := m.RecoverOrphanedSession(); err != nil {
		t.Fatalf("second RecoverOrphanedSession failed: %v", err)
	}
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	// Create
	task, err := s.CreateTask("Write report", 120, models.ModeNormal)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == "" {
		t.Error("Task ID should not be empty")
	}

	// Get
	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Name != "Write report" {
		t.Errorf("Expected name 'Write report', got %s", got.Name)
	}
	if got.AllocatedMinutes != 120 {
		t.Errorf("Expected 120 allocated minutes, got %d", got.AllocatedMinutes)
	}

	// Get missing
	missing, err := s.GetTask("no-such-id")
	if err != nil {
		t.Fatalf("GetTask for missing id failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing task")
	}

	// List
	tasks, err := s.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(tasks))
	}

	// Delete cascades
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)
	s.CreateBreaks(sess.ID, []time.Time{time.Now().Add(25 * time.Minute)}, 5)

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	got, _ = s.GetTask(task.ID)
	if got != nil {
		t.Error("Expected task to be deleted")
	}
	gotSess, _ := s.GetSession(sess.ID)
	if gotSess != nil {
		t.Error("Expected session to be deleted with task")
	}
	breaks, _ := s.ListBreaksForSession(sess.ID)
	if len(breaks) != 0 {
		t.Errorf("Expected breaks to be deleted with task, got %d", len(breaks))
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)

	sess, err := s.CreateSession(task.ID, 60, models.ModeNormal, 3)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.Status != models.SessionInProgress {
		t.Errorf("Expected status in_progress, got %s", sess.Status)
	}
	if sess.SnoozePassesRemaining != 3 {
		t.Errorf("Expected 3 snooze passes, got %d", sess.SnoozePassesRemaining)
	}

	// Active session lookup
	active, err := s.GetActiveSession()
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if active == nil || active.ID != sess.ID {
		t.Fatal("Expected the new session to be active")
	}

	// Counters
	s.RecordBreakTaken(sess.ID)
	s.RecordBreakTaken(sess.ID)
	s.RecordBreakSkipped(sess.ID)
	s.RecordEmergencyExit(sess.ID)

	got, _ := s.GetSession(sess.ID)
	if got.BreaksTaken != 2 {
		t.Errorf("Expected 2 breaks taken, got %d", got.BreaksTaken)
	}
	if got.BreaksSkipped != 1 {
		t.Errorf("Expected 1 break skipped, got %d", got.BreaksSkipped)
	}
	if got.EmergencyExits != 1 {
		t.Errorf("Expected 1 emergency exit, got %d", got.EmergencyExits)
	}

	// Extension
	if err := s.RecordExtension(sess.ID, 90); err != nil {
		t.Fatalf("RecordExtension failed: %v", err)
	}
	got, _ = s.GetSession(sess.ID)
	if got.PlannedMinutes != 90 {
		t.Errorf("Expected 90 planned minutes, got %d", got.PlannedMinutes)
	}
	if got.Status != models.SessionExtended {
		t.Errorf("Expected status extended, got %s", got.Status)
	}
	if got.ExtendedCount != 1 {
		t.Errorf("Expected 1 extension, got %d", got.ExtendedCount)
	}

	// Extended sessions are still active
	active, _ = s.GetActiveSession()
	if active == nil || active.ID != sess.ID {
		t.Fatal("Extended session should still be active")
	}

	// Finish
	if err := s.FinishSession(sess.ID, models.SessionCompleted, 87); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}
	got, _ = s.GetSession(sess.ID)
	if got.Status != models.SessionCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.ActualMinutes != 87 {
		t.Errorf("Expected 87 actual minutes, got %d", got.ActualMinutes)
	}
	if got.EndTime == nil {
		t.Error("Expected end time to be set")
	}

	active, _ = s.GetActiveSession()
	if active != nil {
		t.Error("Expected no active session after finish")
	}
}

func TestRecordSessionEndKeepsStatus(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Cooldown", 60, models.ModeStrict)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeStrict, 0)

	if err := s.RecordSessionEnd(sess.ID, 60); err != nil {
		t.Fatalf("RecordSessionEnd failed: %v", err)
	}
	got, _ := s.GetSession(sess.ID)
	if got.Status != models.SessionInProgress {
		t.Errorf("Expected status in_progress, got %s", got.Status)
	}
	if got.ActualMinutes != 60 {
		t.Errorf("Expected 60 actual minutes, got %d", got.ActualMinutes)
	}
	if got.EndTime == nil {
		t.Fatal("Expected end time to be set")
	}
	workEnd := *got.EndTime

	// Finishing later keeps the work end, not the finish moment.
	if err := s.FinishSession(sess.ID, models.SessionCompleted, 60); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}
	got, _ = s.GetSession(sess.ID)
	if got.Status != models.SessionCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.EndTime == nil || !got.EndTime.Equal(workEnd) {
		t.Errorf("End time = %v, want the work end %v", got.EndTime, workEnd)
	}
}

func TestArchiveSessionsForTask(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)

	if err := s.ArchiveSessionsForTask(task.ID); err != nil {
		t.Fatalf("ArchiveSessionsForTask failed: %v", err)
	}

	active, _ := s.GetActiveSession()
	if active != nil {
		t.Error("Archived session should not be active")
	}

	got, _ := s.GetSession(sess.ID)
	if !got.Archived {
		t.Error("Expected session to be archived")
	}
}

func TestBreakLifecycle(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)

	times := []time.Time{
		sess.StartTime.Add(25 * time.Minute),
		sess.StartTime.Add(50 * time.Minute),
	}
	breaks, err := s.CreateBreaks(sess.ID, times, 5)
	if err != nil {
		t.Fatalf("CreateBreaks failed: %v", err)
	}
	if len(breaks) != 2 {
		t.Fatalf("Expected 2 breaks, got %d", len(breaks))
	}

	pending, err := s.PendingBreaks(sess.ID)
	if err != nil {
		t.Fatalf("PendingBreaks failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending breaks, got %d", len(pending))
	}

	// Take the first break
	if err := s.StartBreak(pending[0].ID); err != nil {
		t.Fatalf("StartBreak failed: %v", err)
	}
	got, _ := s.GetBreak(pending[0].ID)
	if got.Status != models.BreakInProgress {
		t.Errorf("Expected status in_progress, got %s", got.Status)
	}
	if got.ActualTime == nil {
		t.Error("Expected actual time to be set")
	}

	if err := s.CompleteBreak(pending[0].ID); err != nil {
		t.Fatalf("CompleteBreak failed: %v", err)
	}
	got, _ = s.GetBreak(pending[0].ID)
	if got.Status != models.BreakCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}

	// Skip the second
	if err := s.SkipBreak(pending[1].ID); err != nil {
		t.Fatalf("SkipBreak failed: %v", err)
	}

	pending, _ = s.PendingBreaks(sess.ID)
	if len(pending) != 0 {
		t.Errorf("Expected no pending breaks, got %d", len(pending))
	}
}

func TestRescheduleBreak(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)
	breaks, _ := s.CreateBreaks(sess.ID, []time.Time{sess.StartTime.Add(25 * time.Minute)}, 5)

	newTime := sess.StartTime.Add(40 * time.Minute)
	if err := s.RescheduleBreak(breaks[0].ID, newTime); err != nil {
		t.Fatalf("RescheduleBreak failed: %v", err)
	}

	got, _ := s.GetBreak(breaks[0].ID)
	if !got.ScheduledTime.Equal(newTime.UTC()) {
		t.Errorf("Expected scheduled time %v, got %v", newTime.UTC(), got.ScheduledTime)
	}

	// Completed breaks are not reschedulable
	s.CompleteBreak(breaks[0].ID)
	later := sess.StartTime.Add(55 * time.Minute)
	s.RescheduleBreak(breaks[0].ID, later)
	got, _ = s.GetBreak(breaks[0].ID)
	if got.ScheduledTime.Equal(later.UTC()) {
		t.Error("Completed break should not be rescheduled")
	}
}

func TestSnoozeBreakTx(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 2)
	breaks, _ := s.CreateBreaks(sess.ID, []time.Time{sess.StartTime.Add(25 * time.Minute)}, 5)

	// First snooze succeeds
	result, err := s.SnoozeBreakTx(sess.ID, breaks[0].ID, 5)
	if err != nil {
		t.Fatalf("SnoozeBreakTx failed: %v", err)
	}
	if result.PassesLeft != 1 {
		t.Errorf("Expected 1 pass left, got %d", result.PassesLeft)
	}
	if result.Break.Status != models.BreakSnoozed {
		t.Errorf("Expected status snoozed, got %s", result.Break.Status)
	}
	if result.Break.SnoozeCount != 1 {
		t.Errorf("Expected snooze count 1, got %d", result.Break.SnoozeCount)
	}

	// Snoozed breaks are still owed
	pending, _ := s.PendingBreaks(sess.ID)
	if len(pending) != 1 {
		t.Fatalf("Expected snoozed break to remain pending, got %d", len(pending))
	}

	// Second snooze spends the last pass
	result, err = s.SnoozeBreakTx(sess.ID, breaks[0].ID, 5)
	if err != nil {
		t.Fatalf("Second SnoozeBreakTx failed: %v", err)
	}
	if result.PassesLeft != 0 {
		t.Errorf("Expected 0 passes left, got %d", result.PassesLeft)
	}

	// Third snooze is refused and changes nothing
	before, _ := s.GetBreak(breaks[0].ID)
	_, err = s.SnoozeBreakTx(sess.ID, breaks[0].ID, 5)
	if err != ErrNoSnoozePasses {
		t.Errorf("Expected ErrNoSnoozePasses, got %v", err)
	}
	after, _ := s.GetBreak(breaks[0].ID)
	if after.SnoozeCount != before.SnoozeCount {
		t.Error("Refused snooze must not modify the break")
	}
	gotSess, _ := s.GetSession(sess.ID)
	if gotSess.BreaksSnoozed != 2 {
		t.Errorf("Expected 2 snoozes recorded, got %d", gotSess.BreaksSnoozed)
	}
}

func TestSnoozeBreakTx_NotSnoozable(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)
	breaks, _ := s.CreateBreaks(sess.ID, []time.Time{sess.StartTime.Add(25 * time.Minute)}, 5)

	// Unknown break
	_, err := s.SnoozeBreakTx(sess.ID, "no-such-break", 5)
	if err != ErrBreakNotSnoozable {
		t.Errorf("Expected ErrBreakNotSnoozable, got %v", err)
	}

	// Completed break
	s.CompleteBreak(breaks[0].ID)
	_, err = s.SnoozeBreakTx(sess.ID, breaks[0].ID, 5)
	if err != ErrBreakNotSnoozable {
		t.Errorf("Expected ErrBreakNotSnoozable, got %v", err)
	}

	// Pass untouched on refusal
	gotSess, _ := s.GetSession(sess.ID)
	if gotSess.SnoozePassesRemaining != 3 {
		t.Errorf("Expected 3 passes remaining, got %d", gotSess.SnoozePassesRemaining)
	}
}

func TestResetSnoozePasses(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 0)

	if err := s.ResetSnoozePasses(sess.ID, 3); err != nil {
		t.Fatalf("ResetSnoozePasses failed: %v", err)
	}
	got, _ := s.GetSession(sess.ID)
	if got.SnoozePassesRemaining != 3 {
		t.Errorf("Expected 3 passes, got %d", got.SnoozePassesRemaining)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	// Defaults are seeded
	set, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if set.NormalWorkIntervalMins != 25 {
		t.Errorf("Expected default interval 25, got %d", set.NormalWorkIntervalMins)
	}
	if set.MaxSnoozePasses != 3 {
		t.Errorf("Expected default 3 snooze passes, got %d", set.MaxSnoozePasses)
	}
	if !set.SnoozeRedistributesBreaks {
		t.Error("Expected redistribution enabled by default")
	}

	// Update round-trips
	set.StrictWorkIntervalMins = 45
	set.AllowSkipInNormalMode = false
	if err := s.UpdateSettings(set); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	got, _ := s.GetSettings()
	if got.StrictWorkIntervalMins != 45 {
		t.Errorf("Expected 45, got %d", got.StrictWorkIntervalMins)
	}
	if got.AllowSkipInNormalMode {
		t.Error("Expected skip disabled")
	}
}

func TestStreaks(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	// Seeded at zero
	streak, err := s.GetStreak(models.StreakSession)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if streak == nil || streak.CurrentCount != 0 {
		t.Fatal("Expected seeded streak at zero")
	}

	now := time.Now()
	s.SaveStreak(models.StreakSession, 3, now)
	streak, _ = s.GetStreak(models.StreakSession)
	if streak.CurrentCount != 3 || streak.BestCount != 3 {
		t.Errorf("Expected 3/3, got %d/%d", streak.CurrentCount, streak.BestCount)
	}

	// Reset keeps the best count
	s.SaveStreak(models.StreakSession, 0, now)
	streak, _ = s.GetStreak(models.StreakSession)
	if streak.CurrentCount != 0 {
		t.Errorf("Expected current 0, got %d", streak.CurrentCount)
	}
	if streak.BestCount != 3 {
		t.Errorf("Expected best 3, got %d", streak.BestCount)
	}

	streaks, err := s.ListStreaks()
	if err != nil {
		t.Fatalf("ListStreaks failed: %v", err)
	}
	if len(streaks) != 3 {
		t.Errorf("Expected 3 streak rows, got %d", len(streaks))
	}
}

func TestEvents(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)
	sess, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)

	if err := s.LogEvent(sess.ID, "session.started", "mode=normal"); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if err := s.LogEvent(sess.ID, "break.taken", ""); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if err := s.LogEvent("", "daemon.started", ""); err != nil {
		t.Fatalf("LogEvent without session failed: %v", err)
	}

	events, err := s.ListEventsForSession(sess.ID)
	if err != nil {
		t.Fatalf("ListEventsForSession failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].EventType != "session.started" {
		t.Errorf("Expected oldest first, got %s", events[0].EventType)
	}
}

func TestSessionStats(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	task, _ := s.CreateTask("Test", 60, models.ModeNormal)

	first, _ := s.CreateSession(task.ID, 60, models.ModeNormal, 3)
	s.RecordBreakTaken(first.ID)
	s.RecordBreakTaken(first.ID)
	s.RecordBreakSkipped(first.ID)
	s.FinishSession(first.ID, models.SessionCompleted, 58)

	second, _ := s.CreateSession(task.ID, 60, models.ModeStrict, 0)
	s.FinishSession(second.ID, models.SessionAbandoned, 20)

	since := time.Now().UTC().Add(-time.Hour)
	stats, err := s.GetSessionStats(since)
	if err != nil {
		t.Fatalf("GetSessionStats failed: %v", err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("Expected 2 sessions, got %d", stats.TotalSessions)
	}
	if stats.CompletedSessions != 1 || stats.AbandonedSessions != 1 {
		t.Errorf("Expected 1 completed / 1 abandoned, got %d / %d", stats.CompletedSessions, stats.AbandonedSessions)
	}
	if stats.TotalWorkMinutes != 78 {
		t.Errorf("Expected 78 work minutes, got %d", stats.TotalWorkMinutes)
	}
	if got := stats.BreakCompliancePercent(); got < 66 || got > 67 {
		t.Errorf("Expected compliance ~66.7, got %v", got)
	}

	dist, err := s.GetModeDistribution(since)
	if err != nil {
		t.Fatalf("GetModeDistribution failed: %v", err)
	}
	if dist[models.ModeNormal] != 1 || dist[models.ModeStrict] != 1 {
		t.Errorf("Unexpected mode distribution: %v", dist)
	}

	count, err := s.CountSessionsOnDay(time.Now())
	if err != nil {
		t.Fatalf("CountSessionsOnDay failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 completed session today, got %d", count)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func newTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

// Package session orchestrates work sessions: it owns the timers, applies
// mode policy, persists every state change, and notifies the observer.
package session

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/audit"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/modes"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/schedule"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/streaks"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/timer"
)

// Options tune the manager. The zero value gives production behavior.
type Options struct {
	// MinuteUnit is the wall-clock length of one scheduled minute.
	// Defaults to time.Minute; tests shrink it to run in milliseconds.
	MinuteUnit time.Duration
	// TickInterval is passed through to the timers.
	TickInterval time.Duration
	// StopTimeout bounds timer shutdown waits.
	StopTimeout time.Duration
	// Observer receives lifecycle notifications. Defaults to NopObserver.
	Observer Observer
}

// Manager coordinates at most one active work session. All public methods
// are safe for concurrent use; one mutex serializes every state change.
type Manager struct {
	mu       sync.Mutex
	store    *store.Store
	audit    *audit.Logger
	streaks  *streaks.Manager
	observer Observer

	minute      time.Duration
	tick        time.Duration
	stopTimeout time.Duration

	sess          *models.WorkSession
	settings      models.Settings
	workTimer     *timer.WorkTimer
	breakTimer    *timer.BreakTimer
	currentBreak  *models.Break
	cooldownTimer *timer.Timer
}

// NewManager creates a manager on top of an open store.
func NewManager(s *store.Store, opts Options) *Manager {
	if opts.MinuteUnit <= 0 {
		opts.MinuteUnit = time.Minute
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Manager{
		store:       s,
		audit:       audit.NewLogger(s),
		streaks:     streaks.NewManager(s),
		observer:    opts.Observer,
		minute:      opts.MinuteUnit,
		tick:        opts.TickInterval,
		stopTimeout: opts.StopTimeout,
	}
}

func (m *Manager) timerConfig(d time.Duration) timer.Config {
	return timer.Config{
		Duration:     d,
		TickInterval: m.tick,
		StopTimeout:  m.stopTimeout,
	}
}

// --- Task Operations ---

// CreateTask validates and persists a new task.
func (m *Manager) CreateTask(name string, allocatedMinutes int, mode models.Mode) (*models.Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErrorf("task name is required")
	}
	if allocatedMinutes < models.MinWorkDurationMinutes || allocatedMinutes > models.MaxWorkDurationMinutes {
		return nil, validationErrorf("allocated minutes must be between %d and %d, got %d",
			models.MinWorkDurationMinutes, models.MaxWorkDurationMinutes, allocatedMinutes)
	}
	if !mode.Valid() {
		return nil, validationErrorf("unknown mode %q", mode)
	}
	return m.store.CreateTask(strings.TrimSpace(name), allocatedMinutes, mode)
}

// --- Session Lifecycle ---

// StartSession begins a work session for a task. Only one session may run
// at a time, and a mandatory cooldown blocks the next start until it ends.
func (m *Manager) StartSession(taskID string) (*models.WorkSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cooldownTimer != nil {
		return nil, stateErrorf("cooldown in progress, wait for it to finish")
	}
	if m.sess != nil {
		return nil, stateErrorf("session %s is already running", m.sess.ID)
	}
	if active, err := m.store.GetActiveSession(); err != nil {
		return nil, fmt.Errorf("check active session: %w", err)
	} else if active != nil {
		return nil, stateErrorf("session %s is already running", active.ID)
	}

	task, err := m.store.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, validationErrorf("task %s not found", taskID)
	}

	settings, err := m.store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	sess, err := m.store.CreateSession(task.ID, task.AllocatedMinutes, task.Mode, settings.MaxSnoozePasses)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	offsets := schedule.CalculateBreakSchedule(task.Mode, task.AllocatedMinutes, settings)
	if len(offsets) > 0 {
		times := make([]time.Time, len(offsets))
		for i, offset := range offsets {
			times[i] = sess.StartTime.Add(time.Duration(offset) * m.minute)
		}
		breakMins := schedule.BreakDurationForMode(task.Mode, settings)
		if _, err := m.store.CreateBreaks(sess.ID, times, breakMins); err != nil {
			return nil, fmt.Errorf("create breaks: %w", err)
		}
	}

	durOffsets := make([]time.Duration, len(offsets))
	for i, offset := range offsets {
		durOffsets[i] = time.Duration(offset) * m.minute
	}

	cfg := m.timerConfig(time.Duration(sess.PlannedMinutes) * m.minute)
	var wt *timer.WorkTimer
	wt = timer.NewWorkTimer(cfg, durOffsets, func(int, time.Duration) {
		m.handleBreakDue(wt)
	})
	// Tick forwarding stays lock-free so a slow observer cannot stall
	// session operations.
	wt.SetOnTick(func(elapsed time.Duration) {
		m.observer.WorkTick(sess.ID, elapsed, wt.Remaining(), wt.ProgressPercent())
	})
	wt.SetOnComplete(func() {
		m.handleWorkComplete(wt)
	})

	m.sess = sess
	m.settings = settings
	m.workTimer = wt
	wt.Start()

	m.audit.Record(sess.ID, audit.EventSessionStarted, map[string]interface{}{
		"task_id": task.ID,
		"mode":    sess.Mode,
		"planned": sess.PlannedMinutes,
		"breaks":  len(offsets),
	})
	m.observer.SessionStarted(sess)
	return sess, nil
}

// handleBreakDue runs on the work timer goroutine when a scheduled offset
// is crossed.
func (m *Manager) handleBreakDue(wt *timer.WorkTimer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A stale timer can fire after the session changed; ignore it.
	if m.workTimer != wt || m.sess == nil || m.currentBreak != nil {
		return
	}

	pending, err := m.store.PendingBreaks(m.sess.ID)
	if err != nil {
		log.Printf("session: load pending breaks: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	if err := m.beginBreakLocked(pending[0]); err != nil {
		log.Printf("session: begin break: %v", err)
	}
}

// beginBreakLocked pauses work and starts the break timer. Caller holds the
// mutex.
func (m *Manager) beginBreakLocked(brk models.Break) error {
	if err := m.store.StartBreak(brk.ID); err != nil {
		return fmt.Errorf("start break: %w", err)
	}
	now := time.Now().UTC()
	brk.Status = models.BreakInProgress
	brk.ActualTime = &now

	m.workTimer.Pause()

	sessionID := m.sess.ID
	cfg := m.timerConfig(time.Duration(brk.DurationMins) * m.minute)
	var bt *timer.BreakTimer
	bt = timer.NewBreakTimer(cfg, m.minute, func(remaining time.Duration) {
		m.observer.BreakEnding(sessionID, remaining)
	})
	bt.SetOnTick(func(elapsed time.Duration) {
		m.observer.BreakTick(sessionID, elapsed, bt.Remaining())
	})
	bt.SetOnComplete(func() {
		m.handleBreakComplete(bt)
	})

	m.breakTimer = bt
	m.currentBreak = &brk
	bt.Start()

	m.audit.Record(sessionID, audit.EventBreakTaken, map[string]interface{}{
		"break_id": brk.ID,
		"duration": brk.DurationMins,
	})
	m.observer.BreakStarted(sessionID, &brk)
	return nil
}

// handleBreakComplete runs on the break timer goroutine.
func (m *Manager) handleBreakComplete(bt *timer.BreakTimer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.breakTimer != bt || m.currentBreak == nil {
		return
	}

	brk := m.currentBreak
	if err := m.store.CompleteBreak(brk.ID); err != nil {
		log.Printf("session: complete break: %v", err)
	}
	// Only a break that ran its full length counts as taken; snoozed and
	// skipped breaks never reach this point.
	if err := m.store.RecordBreakTaken(m.sess.ID); err != nil {
		log.Printf("session: record break taken: %v", err)
	}
	brk.Status = models.BreakCompleted
	m.sess.BreaksTaken++

	m.breakTimer = nil
	m.currentBreak = nil
	m.workTimer.Resume()

	m.audit.Record(m.sess.ID, audit.EventBreakCompleted, map[string]interface{}{"break_id": brk.ID})
	m.observer.BreakFinished(m.sess.ID, brk)
}

// TakeBreak starts the next owed break immediately, ahead of its schedule.
// It returns false with a nil error when a break is already underway or
// nothing is owed; the request is refused, not failed.
func (m *Manager) TakeBreak() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return false, stateErrorf("no active session")
	}
	if m.currentBreak != nil {
		return false, nil
	}

	pending, err := m.store.PendingBreaks(m.sess.ID)
	if err != nil {
		return false, fmt.Errorf("load pending breaks: %w", err)
	}
	if len(pending) == 0 {
		return false, nil
	}
	if err := m.beginBreakLocked(pending[0]); err != nil {
		return false, err
	}
	return true, nil
}

// SnoozeBreak postpones the current or next owed break, spending one snooze
// pass. It returns false with a nil error when the allowance is exhausted;
// the break stays owed.
func (m *Manager) SnoozeBreak() (bool, error) {
	m.mu.Lock()

	if m.sess == nil {
		m.mu.Unlock()
		return false, stateErrorf("no active session")
	}
	if !modes.CanSnooze(m.sess.Mode) {
		m.mu.Unlock()
		return false, stateErrorf("breaks cannot be snoozed in %s mode", m.sess.Mode)
	}

	target := m.currentBreak
	if target == nil {
		pending, err := m.store.PendingBreaks(m.sess.ID)
		if err != nil {
			m.mu.Unlock()
			return false, fmt.Errorf("load pending breaks: %w", err)
		}
		if len(pending) == 0 {
			m.mu.Unlock()
			return false, stateErrorf("no break to snooze")
		}
		target = &pending[0]
	}

	result, err := m.store.SnoozeBreakTx(m.sess.ID, target.ID, m.settings.NormalSnoozeDurationMins)
	if err == store.ErrNoSnoozePasses {
		m.mu.Unlock()
		return false, nil
	}
	if err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("snooze break: %w", err)
	}

	m.sess.SnoozePassesRemaining = result.PassesLeft
	m.sess.BreaksSnoozed = result.SessionSnoozes

	// If the break was underway, cancel it and go back to work.
	var staleBreakTimer *timer.BreakTimer
	if m.currentBreak != nil && m.currentBreak.ID == target.ID {
		staleBreakTimer = m.breakTimer
		m.breakTimer = nil
		m.currentBreak = nil
		m.workTimer.Resume()
	}

	if m.settings.SnoozeRedistributesBreaks {
		if err := m.redistributeLocked(); err != nil {
			log.Printf("session: redistribute breaks: %v", err)
		}
	}
	if err := m.syncTimerOffsetsLocked(); err != nil {
		log.Printf("session: sync break offsets: %v", err)
	}

	m.audit.Record(m.sess.ID, audit.EventBreakSnoozed, map[string]interface{}{
		"break_id":    result.Break.ID,
		"passes_left": result.PassesLeft,
	})
	m.observer.BreakSnoozed(m.sess.ID, result.Break, result.PassesLeft)
	m.mu.Unlock()

	// Stopping outside the lock: the timer goroutine may be waiting on it.
	if staleBreakTimer != nil {
		staleBreakTimer.Stop()
	}
	return true, nil
}

// redistributeLocked spaces the owed breaks evenly across the remaining
// session time. Caller holds the mutex.
func (m *Manager) redistributeLocked() error {
	pending, err := m.store.PendingBreaks(m.sess.ID)
	if err != nil {
		return err
	}
	elapsed := int(m.workTimer.Elapsed() / m.minute)
	offsets := schedule.RedistributeAfterSnooze(m.sess.PlannedMinutes, elapsed, len(pending))
	if offsets == nil {
		return nil
	}
	for i, brk := range pending {
		if i >= len(offsets) {
			break
		}
		newTime := m.sess.StartTime.Add(time.Duration(offsets[i]) * m.minute)
		if err := m.store.RescheduleBreak(brk.ID, newTime); err != nil {
			return err
		}
	}
	return nil
}

// syncTimerOffsetsLocked rebuilds the work timer's break offsets from the
// owed break rows so delayed breaks fire at their new times. Caller holds
// the mutex.
func (m *Manager) syncTimerOffsetsLocked() error {
	pending, err := m.store.PendingBreaks(m.sess.ID)
	if err != nil {
		return err
	}
	offsets := make([]time.Duration, 0, len(pending))
	for _, brk := range pending {
		offsets = append(offsets, brk.ScheduledTime.Sub(m.sess.StartTime))
	}
	m.workTimer.ResetBreakOffsets(offsets)
	return nil
}

// SkipBreak discards the current or next owed break where the mode allows
// it. With nothing owed it returns false and a nil error.
func (m *Manager) SkipBreak() (bool, error) {
	m.mu.Lock()

	if m.sess == nil {
		m.mu.Unlock()
		return false, stateErrorf("no active session")
	}
	if !modes.CanSkip(m.sess.Mode, m.settings) {
		m.mu.Unlock()
		return false, stateErrorf("breaks cannot be skipped in %s mode", m.sess.Mode)
	}

	target := m.currentBreak
	if target == nil {
		pending, err := m.store.PendingBreaks(m.sess.ID)
		if err != nil {
			m.mu.Unlock()
			return false, fmt.Errorf("load pending breaks: %w", err)
		}
		if len(pending) == 0 {
			m.mu.Unlock()
			return false, nil
		}
		target = &pending[0]
	}

	if err := m.store.SkipBreak(target.ID); err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("skip break: %w", err)
	}
	if err := m.store.RecordBreakSkipped(m.sess.ID); err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("record break skipped: %w", err)
	}
	target.Status = models.BreakSkipped
	m.sess.BreaksSkipped++

	var staleBreakTimer *timer.BreakTimer
	if m.currentBreak != nil && m.currentBreak.ID == target.ID {
		staleBreakTimer = m.breakTimer
		m.breakTimer = nil
		m.currentBreak = nil
		m.workTimer.Resume()
	}

	m.audit.Record(m.sess.ID, audit.EventBreakSkipped, map[string]interface{}{"break_id": target.ID})
	m.observer.BreakSkipped(m.sess.ID, target)
	m.mu.Unlock()

	if staleBreakTimer != nil {
		staleBreakTimer.Stop()
	}
	return true, nil
}

// ExtendSession lengthens the running session and schedules breaks for the
// added stretch.
func (m *Manager) ExtendSession(extraMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return stateErrorf("no active session")
	}
	if !modes.CanExtend(m.sess.Mode) {
		return stateErrorf("sessions cannot be extended in %s mode", m.sess.Mode)
	}
	if extraMinutes <= 0 {
		return validationErrorf("extension must be positive, got %d", extraMinutes)
	}
	newTotal := m.sess.PlannedMinutes + extraMinutes
	if newTotal > models.MaxWorkDurationMinutes {
		return validationErrorf("extension would exceed the %d minute limit", models.MaxWorkDurationMinutes)
	}

	oldPlanned := m.sess.PlannedMinutes
	if err := m.store.RecordExtension(m.sess.ID, newTotal); err != nil {
		return fmt.Errorf("record extension: %w", err)
	}
	// An extension renews the snooze allowance along with the schedule.
	if err := m.store.ResetSnoozePasses(m.sess.ID, m.settings.MaxSnoozePasses); err != nil {
		return fmt.Errorf("reset snooze passes: %w", err)
	}
	m.sess.PlannedMinutes = newTotal
	m.sess.ExtendedCount++
	m.sess.Status = models.SessionExtended
	m.sess.SnoozePassesRemaining = m.settings.MaxSnoozePasses

	m.workTimer.SetDuration(time.Duration(newTotal) * m.minute)

	// Schedule breaks for the added stretch only; history stays untouched.
	offsets := schedule.CalculateBreakSchedule(m.sess.Mode, newTotal, m.settings)
	var added []time.Time
	for _, offset := range offsets {
		if offset >= oldPlanned {
			added = append(added, m.sess.StartTime.Add(time.Duration(offset)*m.minute))
		}
	}
	if len(added) > 0 {
		breakMins := schedule.BreakDurationForMode(m.sess.Mode, m.settings)
		if _, err := m.store.CreateBreaks(m.sess.ID, added, breakMins); err != nil {
			return fmt.Errorf("create breaks: %w", err)
		}
	}
	if err := m.syncTimerOffsetsLocked(); err != nil {
		log.Printf("session: sync break offsets: %v", err)
	}

	m.audit.Record(m.sess.ID, audit.EventSessionExtended, map[string]interface{}{
		"extra_minutes": extraMinutes,
		"new_planned":   newTotal,
	})
	return nil
}

// handleWorkComplete runs on the work timer goroutine when the planned
// duration is reached. Cooldown modes hold their credit until the
// mandatory rest has run; everything else finalizes right away.
func (m *Manager) handleWorkComplete(wt *timer.WorkTimer) {
	m.mu.Lock()
	if m.workTimer != wt || m.sess == nil {
		m.mu.Unlock()
		return
	}
	var stale []stoppable
	if modes.RequiresCooldown(m.sess.Mode) {
		stale = m.beginCooldownLocked()
	} else {
		stale = m.finishLocked(models.SessionCompleted)
	}
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
}

// CompleteSession ends the running session as completed. Completing when
// nothing is running is a no-op so duplicate requests are harmless.
func (m *Manager) CompleteSession() error {
	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return nil
	}
	stale := m.finishLocked(models.SessionCompleted)
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
	return nil
}

// AbandonSession ends the running session early without credit.
func (m *Manager) AbandonSession() error {
	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return stateErrorf("no active session")
	}
	stale := m.finishLocked(models.SessionAbandoned)
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
	return nil
}

// HandleEmergencyExit bails out of the current break or cooldown in a
// strict or focused session. The session keeps its status; only the exit
// is counted, and work resumes where the break interrupted it.
func (m *Manager) HandleEmergencyExit() error {
	m.mu.Lock()

	if m.sess == nil {
		m.mu.Unlock()
		return stateErrorf("no active session")
	}
	if !modes.Rules(m.sess.Mode).EmergencyExitAvailable {
		m.mu.Unlock()
		return stateErrorf("emergency exit is not available in %s mode", m.sess.Mode)
	}

	if err := m.store.RecordEmergencyExit(m.sess.ID); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("record emergency exit: %w", err)
	}
	m.sess.EmergencyExits++
	m.audit.Record(m.sess.ID, audit.EventEmergencyExit, nil)

	// Drop whichever rest is underway. The interrupted break row stays
	// in_progress and never counts as taken.
	var stale []stoppable
	if m.breakTimer != nil {
		stale = append(stale, m.breakTimer)
		m.breakTimer = nil
		m.currentBreak = nil
	}
	if m.cooldownTimer != nil {
		stale = append(stale, m.cooldownTimer)
		m.cooldownTimer = nil
	}
	// No-op unless the break had paused the work timer; after the work
	// interval already ended there is nothing to resume.
	m.workTimer.Resume()
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
	return nil
}

// stoppable is any timer that needs a bounded shutdown wait.
type stoppable interface {
	Stop()
}

// finishLocked ends the session: terminal status, streaks, observer, and
// state teardown. It returns the timers the caller must stop after
// releasing the mutex. Caller holds the mutex.
func (m *Manager) finishLocked(status models.SessionStatus) []stoppable {
	sess := m.sess
	actual := int(m.workTimer.Elapsed() / m.minute)

	if err := m.store.FinishSession(sess.ID, status, actual); err != nil {
		log.Printf("session: finish session: %v", err)
	}
	now := time.Now().UTC()
	sess.Status = status
	sess.ActualMinutes = actual
	if sess.EndTime == nil {
		sess.EndTime = &now
	}

	if err := m.streaks.UpdateAfterSession(sess); err != nil {
		log.Printf("session: update streaks: %v", err)
	}

	eventType := audit.EventSessionCompleted
	if status == models.SessionAbandoned {
		eventType = audit.EventSessionAbandoned
	}
	m.audit.Record(sess.ID, eventType, map[string]interface{}{"actual_minutes": actual})
	m.observer.SessionFinished(sess)

	var stale []stoppable
	if m.workTimer != nil && !m.workTimer.IsCompleted() {
		stale = append(stale, m.workTimer)
	}
	if m.breakTimer != nil {
		stale = append(stale, m.breakTimer)
	}
	if m.cooldownTimer != nil {
		stale = append(stale, m.cooldownTimer)
	}

	m.sess = nil
	m.workTimer = nil
	m.breakTimer = nil
	m.currentBreak = nil
	m.cooldownTimer = nil
	return stale
}

// beginCooldownLocked stamps the end of the work interval and starts the
// mandatory rest. The session stays active and uncredited until the
// cooldown runs out. Caller holds the mutex.
func (m *Manager) beginCooldownLocked() []stoppable {
	sess := m.sess
	actual := int(m.workTimer.Elapsed() / m.minute)

	if err := m.store.RecordSessionEnd(sess.ID, actual); err != nil {
		log.Printf("session: record session end: %v", err)
	}
	now := time.Now().UTC()
	sess.ActualMinutes = actual
	sess.EndTime = &now

	mins := modes.CooldownDuration(sess.Mode, m.settings, actual)
	if mins <= 0 {
		return m.finishLocked(models.SessionCompleted)
	}

	duration := time.Duration(mins) * m.minute
	sessionID := sess.ID
	var ct *timer.Timer
	ct = timer.New(m.timerConfig(duration))
	ct.SetOnTick(func(time.Duration) {
		m.observer.CooldownTick(sessionID, ct.Remaining())
	})
	ct.SetOnComplete(func() {
		m.handleCooldownDone(ct)
	})
	m.cooldownTimer = ct
	ct.Start()

	m.audit.Record(sessionID, audit.EventCooldownStarted, map[string]interface{}{"minutes": mins})
	m.observer.CooldownStarted(sessionID, duration)
	return nil
}

// handleCooldownDone runs on the cooldown timer goroutine. Completion of
// the rest is what finalizes the session.
func (m *Manager) handleCooldownDone(ct *timer.Timer) {
	m.mu.Lock()
	if m.cooldownTimer != ct || m.sess == nil {
		m.mu.Unlock()
		return
	}
	m.cooldownTimer = nil
	m.audit.Record(m.sess.ID, audit.EventCooldownFinished, nil)
	m.observer.CooldownFinished(m.sess.ID)
	stale := m.finishLocked(models.SessionCompleted)
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
}

// RecoverOrphanedSession abandons a session left active by an unclean
// daemon shutdown. Its timers died with the old process, so the session
// cannot be resumed.
func (m *Manager) RecoverOrphanedSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, err := m.store.GetActiveSession()
	if err != nil {
		return fmt.Errorf("check active session: %w", err)
	}
	if active == nil {
		return nil
	}

	actual := int(time.Since(active.StartTime) / m.minute)
	if actual > active.PlannedMinutes {
		actual = active.PlannedMinutes
	}
	if err := m.store.FinishSession(active.ID, models.SessionAbandoned, actual); err != nil {
		return fmt.Errorf("abandon orphaned session: %w", err)
	}
	m.audit.Record(active.ID, audit.EventSessionAbandoned, map[string]interface{}{"orphaned": true})
	log.Printf("session: abandoned orphaned session %s", active.ID)
	return nil
}

// Shutdown stops every timer. The session row keeps its current status so
// a restart can recover it.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	var stale []stoppable
	if m.workTimer != nil {
		stale = append(stale, m.workTimer)
	}
	if m.breakTimer != nil {
		stale = append(stale, m.breakTimer)
	}
	if m.cooldownTimer != nil {
		stale = append(stale, m.cooldownTimer)
	}
	m.sess = nil
	m.workTimer = nil
	m.breakTimer = nil
	m.currentBreak = nil
	m.cooldownTimer = nil
	m.mu.Unlock()

	for _, t := range stale {
		t.Stop()
	}
}

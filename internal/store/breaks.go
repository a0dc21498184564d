package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/google/uuid"
)

// --- Break Operations ---

const breakColumns = `id, session_id, scheduled_time, actual_time, duration_minutes, status,
	snooze_count, snooze_duration_minutes, created_at`

func scanBreak(row rowScanner) (*models.Break, error) {
	brk := &models.Break{}
	var actualTime sql.NullTime
	err := row.Scan(
		&brk.ID, &brk.SessionID, &brk.ScheduledTime, &actualTime, &brk.DurationMins,
		&brk.Status, &brk.SnoozeCount, &brk.SnoozeDuration, &brk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualTime.Valid {
		brk.ActualTime = &actualTime.Time
	}
	return brk, nil
}

// CreateBreaks inserts one pending break per scheduled time for a session.
func (s *Store) CreateBreaks(sessionID string, scheduledTimes []time.Time, durationMins int) ([]models.Break, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	breaks := make([]models.Break, 0, len(scheduledTimes))
	for _, scheduled := range scheduledTimes {
		brk := models.Break{
			ID:            uuid.New().String(),
			SessionID:     sessionID,
			ScheduledTime: scheduled.UTC(),
			DurationMins:  durationMins,
			Status:        models.BreakPending,
			CreatedAt:     now,
		}
		if _, err := tx.Exec(
			`INSERT INTO breaks (id, session_id, scheduled_time, duration_minutes, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			brk.ID, brk.SessionID, brk.ScheduledTime, brk.DurationMins, brk.Status, brk.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert break: %w", err)
		}
		breaks = append(breaks, brk)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return breaks, nil
}

// GetBreak retrieves a break by ID. Returns nil when not found.
func (s *Store) GetBreak(id string) (*models.Break, error) {
	brk, err := scanBreak(s.db.QueryRow(
		`SELECT `+breakColumns+` FROM breaks WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query break: %w", err)
	}
	return brk, nil
}

// ListBreaksForSession returns all breaks for a session in schedule order.
func (s *Store) ListBreaksForSession(sessionID string) ([]models.Break, error) {
	rows, err := s.db.Query(
		`SELECT `+breakColumns+` FROM breaks WHERE session_id = ? ORDER BY scheduled_time`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query breaks: %w", err)
	}
	defer rows.Close()

	var breaks []models.Break
	for rows.Next() {
		brk, err := scanBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("scan break: %w", err)
		}
		breaks = append(breaks, *brk)
	}
	return breaks, rows.Err()
}

// PendingBreaks returns the breaks still owed to a session, soonest first.
// Snoozed breaks are delayed, not cancelled, so they stay in the queue.
func (s *Store) PendingBreaks(sessionID string) ([]models.Break, error) {
	rows, err := s.db.Query(
		`SELECT `+breakColumns+` FROM breaks
		 WHERE session_id = ? AND status IN ('pending', 'snoozed')
		 ORDER BY scheduled_time`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending breaks: %w", err)
	}
	defer rows.Close()

	var breaks []models.Break
	for rows.Next() {
		brk, err := scanBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("scan break: %w", err)
		}
		breaks = append(breaks, *brk)
	}
	return breaks, rows.Err()
}

// StartBreak marks a break as in progress and stamps when it actually began.
func (s *Store) StartBreak(id string) error {
	_, err := s.db.Exec(
		`UPDATE breaks SET status = ?, actual_time = ? WHERE id = ?`,
		models.BreakInProgress, time.Now().UTC(), id,
	)
	return err
}

// CompleteBreak marks a break as fully taken.
func (s *Store) CompleteBreak(id string) error {
	_, err := s.db.Exec(
		`UPDATE breaks SET status = ? WHERE id = ?`, models.BreakCompleted, id,
	)
	return err
}

// SkipBreak marks a break as skipped.
func (s *Store) SkipBreak(id string) error {
	_, err := s.db.Exec(
		`UPDATE breaks SET status = ? WHERE id = ?`, models.BreakSkipped, id,
	)
	return err
}

// RescheduleBreak moves a pending or snoozed break to a new time. Used when
// the remaining schedule is redistributed.
func (s *Store) RescheduleBreak(id string, scheduledTime time.Time) error {
	_, err := s.db.Exec(
		`UPDATE breaks SET scheduled_time = ? WHERE id = ? AND status IN ('pending', 'snoozed')`,
		scheduledTime.UTC(), id,
	)
	return err
}

// ErrNoSnoozePasses indicates the session has spent its snooze allowance.
var ErrNoSnoozePasses = fmt.Errorf("no snooze passes remaining")

// ErrBreakNotSnoozable indicates the break is missing or not in a snoozable state.
var ErrBreakNotSnoozable = fmt.Errorf("break not found or not snoozable")

// SnoozeResult holds the outcome of an atomic snooze operation.
type SnoozeResult struct {
	Break          *models.Break
	PassesLeft     int
	SessionSnoozes int
}

// SnoozeBreakTx atomically spends one snooze pass and pushes a break out by
// snoozeMins. It verifies the session has a pass left and the break is still
// owed, then updates both rows in a single transaction. On any error nothing
// is persisted.
func (s *Store) SnoozeBreakTx(sessionID, breakID string, snoozeMins int) (*SnoozeResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Step 1: Verify the session still has a snooze pass
	var passes, snoozes int
	err = tx.QueryRow(
		`SELECT snooze_passes_remaining, breaks_snoozed FROM work_sessions WHERE id = ?`,
		sessionID,
	).Scan(&passes, &snoozes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if passes <= 0 {
		return nil, ErrNoSnoozePasses
	}

	// Step 2: Verify the break is still owed
	brk, err := scanBreak(tx.QueryRow(
		`SELECT `+breakColumns+` FROM breaks WHERE id = ? AND session_id = ?`,
		breakID, sessionID,
	))
	if err == sql.ErrNoRows {
		return nil, ErrBreakNotSnoozable
	}
	if err != nil {
		return nil, fmt.Errorf("query break: %w", err)
	}
	if brk.Status != models.BreakPending && brk.Status != models.BreakInProgress && brk.Status != models.BreakSnoozed {
		return nil, ErrBreakNotSnoozable
	}

	now := time.Now().UTC()
	newScheduled := now.Add(time.Duration(snoozeMins) * time.Minute)

	// Step 3: Push the break out and record the snooze on it
	if _, err := tx.Exec(
		`UPDATE breaks SET status = ?, scheduled_time = ?, snooze_count = snooze_count + 1,
		 snooze_duration_minutes = snooze_duration_minutes + ? WHERE id = ?`,
		models.BreakSnoozed, newScheduled, snoozeMins, breakID,
	); err != nil {
		return nil, fmt.Errorf("update break: %w", err)
	}

	// Step 4: Spend the pass. Guard on the counter so a concurrent snooze
	// cannot spend the same pass twice.
	result, err := tx.Exec(
		`UPDATE work_sessions SET snooze_passes_remaining = snooze_passes_remaining - 1,
		 breaks_snoozed = breaks_snoozed + 1
		 WHERE id = ? AND snooze_passes_remaining > 0`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNoSnoozePasses
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	brk.Status = models.BreakSnoozed
	brk.ScheduledTime = newScheduled
	brk.SnoozeCount++
	brk.SnoozeDuration += snoozeMins

	return &SnoozeResult{
		Break:          brk,
		PassesLeft:     passes - 1,
		SessionSnoozes: snoozes + 1,
	}, nil
}

// Package store provides SQLite-backed persistence for FocusBreaker.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the FocusBreaker SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations and seeds default rows.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		allocated_minutes INTEGER NOT NULL,
		mode TEXT NOT NULL DEFAULT 'normal',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS work_sessions (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		planned_minutes INTEGER NOT NULL,
		actual_minutes INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		breaks_taken INTEGER NOT NULL DEFAULT 0,
		breaks_snoozed INTEGER NOT NULL DEFAULT 0,
		breaks_skipped INTEGER NOT NULL DEFAULT 0,
		extended_count INTEGER NOT NULL DEFAULT 0,
		emergency_exits INTEGER NOT NULL DEFAULT 0,
		snooze_passes_remaining INTEGER NOT NULL DEFAULT 3,
		archived INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	);

	CREATE TABLE IF NOT EXISTS breaks (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		scheduled_time DATETIME NOT NULL,
		actual_time DATETIME,
		duration_minutes INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		snooze_count INTEGER NOT NULL DEFAULT 0,
		snooze_duration_minutes INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES work_sessions(id)
	);

	CREATE TABLE IF NOT EXISTS streaks (
		type TEXT PRIMARY KEY,
		current_count INTEGER NOT NULL DEFAULT 0,
		best_count INTEGER NOT NULL DEFAULT 0,
		last_updated DATETIME
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		normal_work_interval_minutes INTEGER NOT NULL,
		normal_break_duration_minutes INTEGER NOT NULL,
		normal_snooze_duration_minutes INTEGER NOT NULL,
		strict_work_interval_minutes INTEGER NOT NULL,
		strict_break_duration_minutes INTEGER NOT NULL,
		strict_cooldown_minutes INTEGER NOT NULL,
		focused_mandatory_break_minutes INTEGER NOT NULL,
		focused_break_scaling_enabled INTEGER NOT NULL,
		max_snooze_passes INTEGER NOT NULL,
		snooze_redistributes_breaks INTEGER NOT NULL,
		allow_skip_in_normal_mode INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		event_type TEXT NOT NULL,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_sessions_task_id ON work_sessions(task_id);
	CREATE INDEX IF NOT EXISTS idx_work_sessions_status ON work_sessions(status);
	CREATE INDEX IF NOT EXISTS idx_breaks_session_id ON breaks(session_id);
	CREATE INDEX IF NOT EXISTS idx_breaks_status ON breaks(status);
	CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if err := s.seedSettings(); err != nil {
		return err
	}
	return s.seedStreaks()
}

func (s *Store) seedSettings() error {
	def := models.DefaultSettings()
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO settings (
			id,
			normal_work_interval_minutes, normal_break_duration_minutes, normal_snooze_duration_minutes,
			strict_work_interval_minutes, strict_break_duration_minutes, strict_cooldown_minutes,
			focused_mandatory_break_minutes, focused_break_scaling_enabled,
			max_snooze_passes, snooze_redistributes_breaks, allow_skip_in_normal_mode,
			updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.NormalWorkIntervalMins, def.NormalBreakDurationMins, def.NormalSnoozeDurationMins,
		def.StrictWorkIntervalMins, def.StrictBreakDurationMins, def.StrictCooldownMins,
		def.FocusedMandatoryBreakMins, def.FocusedBreakScalingEnabled,
		def.MaxSnoozePasses, def.SnoozeRedistributesBreaks, def.AllowSkipInNormalMode,
		time.Now().UTC(),
	)
	return err
}

func (s *Store) seedStreaks() error {
	for _, streakType := range []string{models.StreakSession, models.StreakPerfectSession, models.StreakDailyConsistency} {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO streaks (type, current_count, best_count) VALUES (?, 0, 0)`,
			streakType,
		); err != nil {
			return err
		}
	}
	return nil
}

// --- Task Operations ---

// CreateTask inserts a new task.
func (s *Store) CreateTask(name string, allocatedMinutes int, mode models.Mode) (*models.Task, error) {
	task := &models.Task{
		ID:               uuid.New().String(),
		Name:             name,
		AllocatedMinutes: allocatedMinutes,
		Mode:             mode,
		CreatedAt:        time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, name, allocated_minutes, mode, created_at) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.AllocatedMinutes, task.Mode, task.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by ID. Returns nil when not found.
func (s *Store) GetTask(id string) (*models.Task, error) {
	task := &models.Task{}
	err := s.db.QueryRow(
		`SELECT id, name, allocated_minutes, mode, created_at FROM tasks WHERE id = ?`,
		id,
	).Scan(&task.ID, &task.Name, &task.AllocatedMinutes, &task.Mode, &task.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks() ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, name, allocated_minutes, mode, created_at FROM tasks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Name, &task.AllocatedMinutes, &task.Mode, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task and everything recorded under it.
func (s *Store) DeleteTask(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM breaks WHERE session_id IN (SELECT id FROM work_sessions WHERE task_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("delete breaks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM work_sessions WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return tx.Commit()
}

// --- Session Operations ---

const sessionColumns = `id, task_id, start_time, end_time, planned_minutes, actual_minutes, mode, status,
	breaks_taken, breaks_snoozed, breaks_skipped, extended_count, emergency_exits,
	snooze_passes_remaining, archived, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.WorkSession, error) {
	sess := &models.WorkSession{}
	var endTime sql.NullTime
	err := row.Scan(
		&sess.ID, &sess.TaskID, &sess.StartTime, &endTime, &sess.PlannedMinutes, &sess.ActualMinutes,
		&sess.Mode, &sess.Status, &sess.BreaksTaken, &sess.BreaksSnoozed, &sess.BreaksSkipped,
		&sess.ExtendedCount, &sess.EmergencyExits, &sess.SnoozePassesRemaining, &sess.Archived, &sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		sess.EndTime = &endTime.Time
	}
	return sess, nil
}

// CreateSession inserts a new in-progress session for a task.
func (s *Store) CreateSession(taskID string, plannedMinutes int, mode models.Mode, snoozePasses int) (*models.WorkSession, error) {
	now := time.Now().UTC()
	sess := &models.WorkSession{
		ID:                    uuid.New().String(),
		TaskID:                taskID,
		StartTime:             now,
		PlannedMinutes:        plannedMinutes,
		Mode:                  mode,
		Status:                models.SessionInProgress,
		SnoozePassesRemaining: snoozePasses,
		CreatedAt:             now,
	}

	_, err := s.db.Exec(
		`INSERT INTO work_sessions (id, task_id, start_time, planned_minutes, mode, status, snooze_passes_remaining, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TaskID, sess.StartTime, sess.PlannedMinutes, sess.Mode, sess.Status, sess.SnoozePassesRemaining, sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID. Returns nil when not found.
func (s *Store) GetSession(id string) (*models.WorkSession, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM work_sessions WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return sess, nil
}

// GetActiveSession returns the most recent unarchived session that is still
// running, or nil when no session is active.
func (s *Store) GetActiveSession() (*models.WorkSession, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT ` + sessionColumns + ` FROM work_sessions
		 WHERE status IN ('in_progress', 'extended') AND archived = 0
		 ORDER BY start_time DESC LIMIT 1`,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active session: %w", err)
	}
	return sess, nil
}

// ListSessionsForTask returns all sessions recorded for a task, newest first.
func (s *Store) ListSessionsForTask(taskID string) ([]models.WorkSession, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM work_sessions WHERE task_id = ? ORDER BY start_time DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// FinishSession stamps a session with its terminal status and the minutes
// actually worked. An end time recorded earlier, at the close of the work
// interval, is kept.
func (s *Store) FinishSession(id string, status models.SessionStatus, actualMinutes int) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET status = ?, actual_minutes = ?, end_time = COALESCE(end_time, ?) WHERE id = ?`,
		status, actualMinutes, time.Now().UTC(), id,
	)
	return err
}

// RecordSessionEnd stamps when the work interval ended and how long it ran,
// leaving the status untouched. Cooldown modes stop the clock here and mark
// the session completed only after the rest has run.
func (s *Store) RecordSessionEnd(id string, actualMinutes int) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET actual_minutes = ?, end_time = ? WHERE id = ?`,
		actualMinutes, time.Now().UTC(), id,
	)
	return err
}

// RecordBreakTaken bumps the taken-breaks counter on a session.
func (s *Store) RecordBreakTaken(sessionID string) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET breaks_taken = breaks_taken + 1 WHERE id = ?`, sessionID,
	)
	return err
}

// RecordBreakSkipped bumps the skipped-breaks counter on a session.
func (s *Store) RecordBreakSkipped(sessionID string) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET breaks_skipped = breaks_skipped + 1 WHERE id = ?`, sessionID,
	)
	return err
}

// RecordEmergencyExit bumps the emergency-exit counter on a session.
func (s *Store) RecordEmergencyExit(sessionID string) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET emergency_exits = emergency_exits + 1 WHERE id = ?`, sessionID,
	)
	return err
}

// RecordExtension replaces the planned length of a session and marks it
// extended.
func (s *Store) RecordExtension(sessionID string, newPlannedMinutes int) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET planned_minutes = ?, extended_count = extended_count + 1, status = ? WHERE id = ?`,
		newPlannedMinutes, models.SessionExtended, sessionID,
	)
	return err
}

// ResetSnoozePasses restores the snooze-pass allowance on a session.
func (s *Store) ResetSnoozePasses(sessionID string, passes int) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET snooze_passes_remaining = ? WHERE id = ?`, passes, sessionID,
	)
	return err
}

// ArchiveSessionsForTask hides a task's sessions from active queries while
// keeping them for analytics.
func (s *Store) ArchiveSessionsForTask(taskID string) error {
	_, err := s.db.Exec(
		`UPDATE work_sessions SET archived = 1 WHERE task_id = ?`, taskID,
	)
	return err
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/google/uuid"
)

// --- Settings Operations ---

// GetSettings returns the single settings row. Defaults are seeded at
// migration time so the row always exists.
func (s *Store) GetSettings() (models.Settings, error) {
	var set models.Settings
	err := s.db.QueryRow(
		`SELECT normal_work_interval_minutes, normal_break_duration_minutes, normal_snooze_duration_minutes,
			strict_work_interval_minutes, strict_break_duration_minutes, strict_cooldown_minutes,
			focused_mandatory_break_minutes, focused_break_scaling_enabled,
			max_snooze_passes, snooze_redistributes_breaks, allow_skip_in_normal_mode,
			updated_at
		 FROM settings WHERE id = 1`,
	).Scan(
		&set.NormalWorkIntervalMins, &set.NormalBreakDurationMins, &set.NormalSnoozeDurationMins,
		&set.StrictWorkIntervalMins, &set.StrictBreakDurationMins, &set.StrictCooldownMins,
		&set.FocusedMandatoryBreakMins, &set.FocusedBreakScalingEnabled,
		&set.MaxSnoozePasses, &set.SnoozeRedistributesBreaks, &set.AllowSkipInNormalMode,
		&set.UpdatedAt,
	)
	if err != nil {
		return models.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return set, nil
}

// UpdateSettings replaces the settings row.
func (s *Store) UpdateSettings(set models.Settings) error {
	_, err := s.db.Exec(
		`UPDATE settings SET
			normal_work_interval_minutes = ?, normal_break_duration_minutes = ?, normal_snooze_duration_minutes = ?,
			strict_work_interval_minutes = ?, strict_break_duration_minutes = ?, strict_cooldown_minutes = ?,
			focused_mandatory_break_minutes = ?, focused_break_scaling_enabled = ?,
			max_snooze_passes = ?, snooze_redistributes_breaks = ?, allow_skip_in_normal_mode = ?,
			updated_at = ?
		 WHERE id = 1`,
		set.NormalWorkIntervalMins, set.NormalBreakDurationMins, set.NormalSnoozeDurationMins,
		set.StrictWorkIntervalMins, set.StrictBreakDurationMins, set.StrictCooldownMins,
		set.FocusedMandatoryBreakMins, set.FocusedBreakScalingEnabled,
		set.MaxSnoozePasses, set.SnoozeRedistributesBreaks, set.AllowSkipInNormalMode,
		time.Now().UTC(),
	)
	return err
}

// --- Streak Operations ---

// GetStreak returns one streak row by type. Returns nil when unknown.
func (s *Store) GetStreak(streakType string) (*models.Streak, error) {
	streak := &models.Streak{}
	var lastUpdated sql.NullTime
	err := s.db.QueryRow(
		`SELECT type, current_count, best_count, last_updated FROM streaks WHERE type = ?`,
		streakType,
	).Scan(&streak.Type, &streak.CurrentCount, &streak.BestCount, &lastUpdated)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query streak: %w", err)
	}
	if lastUpdated.Valid {
		streak.LastUpdated = lastUpdated.Time
	}
	return streak, nil
}

// ListStreaks returns every streak row.
func (s *Store) ListStreaks() ([]models.Streak, error) {
	rows, err := s.db.Query(
		`SELECT type, current_count, best_count, last_updated FROM streaks ORDER BY type`,
	)
	if err != nil {
		return nil, fmt.Errorf("query streaks: %w", err)
	}
	defer rows.Close()

	var streaks []models.Streak
	for rows.Next() {
		var streak models.Streak
		var lastUpdated sql.NullTime
		if err := rows.Scan(&streak.Type, &streak.CurrentCount, &streak.BestCount, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan streak: %w", err)
		}
		if lastUpdated.Valid {
			streak.LastUpdated = lastUpdated.Time
		}
		streaks = append(streaks, streak)
	}
	return streaks, rows.Err()
}

// SaveStreak upserts a streak row, keeping best_count as the high-water mark.
func (s *Store) SaveStreak(streakType string, currentCount int, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO streaks (type, current_count, best_count, last_updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(type) DO UPDATE SET
			current_count = excluded.current_count,
			best_count = MAX(best_count, excluded.current_count),
			last_updated = excluded.last_updated`,
		streakType, currentCount, currentCount, at.UTC(),
	)
	return err
}

// --- Event Operations ---

// LogEvent appends one audit event. sessionID may be empty for app-level events.
func (s *Store) LogEvent(sessionID, eventType, details string) error {
	var sid interface{}
	if sessionID != "" {
		sid = sessionID
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, session_id, event_type, details, timestamp) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sid, eventType, details, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Event is one audit log row.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ListEventsForSession returns a session's audit trail, oldest first.
func (s *Store) ListEventsForSession(sessionID string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, event_type, details, timestamp FROM events WHERE session_id = ? ORDER BY timestamp`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var sid, details sql.NullString
		if err := rows.Scan(&ev.ID, &sid, &ev.EventType, &details, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if sid.Valid {
			ev.SessionID = sid.String
		}
		if details.Valid {
			ev.Details = details.String
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// --- Analytics Operations ---

// SessionStats aggregates session outcomes over a window.
type SessionStats struct {
	TotalSessions     int `json:"total_sessions"`
	CompletedSessions int `json:"completed_sessions"`
	AbandonedSessions int `json:"abandoned_sessions"`
	TotalWorkMinutes  int `json:"total_work_minutes"`
	BreaksTaken       int `json:"breaks_taken"`
	BreaksSnoozed     int `json:"breaks_snoozed"`
	BreaksSkipped     int `json:"breaks_skipped"`
	EmergencyExits    int `json:"emergency_exits"`
}

// BreakCompliancePercent returns the share of owed breaks actually taken,
// or 100 when no breaks were owed.
func (st SessionStats) BreakCompliancePercent() float64 {
	owed := st.BreaksTaken + st.BreaksSkipped
	if owed == 0 {
		return 100
	}
	return float64(st.BreaksTaken) / float64(owed) * 100
}

// GetSessionStats aggregates all sessions started at or after since.
func (s *Store) GetSessionStats(since time.Time) (*SessionStats, error) {
	stats := &SessionStats{}
	err := s.db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'abandoned' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(actual_minutes), 0),
			COALESCE(SUM(breaks_taken), 0),
			COALESCE(SUM(breaks_snoozed), 0),
			COALESCE(SUM(breaks_skipped), 0),
			COALESCE(SUM(emergency_exits), 0)
		 FROM work_sessions WHERE start_time >= ?`,
		since.UTC(),
	).Scan(
		&stats.TotalSessions, &stats.CompletedSessions, &stats.AbandonedSessions,
		&stats.TotalWorkMinutes, &stats.BreaksTaken, &stats.BreaksSnoozed,
		&stats.BreaksSkipped, &stats.EmergencyExits,
	)
	if err != nil {
		return nil, fmt.Errorf("query session stats: %w", err)
	}
	return stats, nil
}

// GetModeDistribution counts sessions per mode since the given time.
func (s *Store) GetModeDistribution(since time.Time) (map[models.Mode]int, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*) FROM work_sessions WHERE start_time >= ? GROUP BY mode`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query mode distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[models.Mode]int)
	for rows.Next() {
		var mode models.Mode
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			return nil, fmt.Errorf("scan mode distribution: %w", err)
		}
		dist[mode] = count
	}
	return dist, rows.Err()
}

// CountSessionsOnDay returns how many sessions completed on the local day
// containing t. Used for the daily consistency streak.
func (s *Store) CountSessionsOnDay(t time.Time) (int, error) {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM work_sessions WHERE status = 'completed' AND end_time >= ? AND end_time < ?`,
		dayStart, dayEnd,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions on day: %w", err)
	}
	return count, nil
}

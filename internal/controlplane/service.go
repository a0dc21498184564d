// Package controlplane provides the HTTP API and service layer for
// FocusBreaker.
package controlplane

import (
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/session"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
)

// Service exposes the daemon's operations to the HTTP layer. Session
// mutations go through the manager so policy and timers stay consistent;
// reads go straight to the store.
type Service struct {
	store   *store.Store
	manager *session.Manager
}

// NewService creates a new control plane service.
func NewService(s *store.Store, m *session.Manager) *Service {
	return &Service{store: s, manager: m}
}

// --- Task Operations ---

// CreateTask validates and creates a new task.
func (s *Service) CreateTask(name string, allocatedMinutes int, mode models.Mode) (*models.Task, error) {
	return s.manager.CreateTask(name, allocatedMinutes, mode)
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	return s.store.GetTask(id)
}

// ListTasks returns all tasks.
func (s *Service) ListTasks() ([]models.Task, error) {
	return s.store.ListTasks()
}

// DeleteTask removes a task and its history. The task's sessions must not
// be running.
func (s *Service) DeleteTask(id string) error {
	task, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}

	active, err := s.store.GetActiveSession()
	if err != nil {
		return err
	}
	if active != nil && active.TaskID == id {
		return ErrTaskHasSession
	}
	return s.store.DeleteTask(id)
}

// ListSessionsForTask returns a task's session history.
func (s *Service) ListSessionsForTask(taskID string) ([]models.WorkSession, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return s.store.ListSessionsForTask(taskID)
}

// --- Session Operations ---

// StartSession begins a work session for a task.
func (s *Service) StartSession(taskID string) (*models.WorkSession, error) {
	return s.manager.StartSession(taskID)
}

// ActiveStatus reports the live session snapshot.
func (s *Service) ActiveStatus() *session.Status {
	return s.manager.Status()
}

// GetSession retrieves a session row by ID.
func (s *Service) GetSession(id string) (*models.WorkSession, error) {
	sess, err := s.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// ListBreaksForSession returns every break recorded for a session.
func (s *Service) ListBreaksForSession(sessionID string) ([]models.Break, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.store.ListBreaksForSession(sessionID)
}

// ListEventsForSession returns a session's audit trail.
func (s *Service) ListEventsForSession(sessionID string) ([]store.Event, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.store.ListEventsForSession(sessionID)
}

// requireActive verifies the given session is the one the manager is
// running.
func (s *Service) requireActive(sessionID string) error {
	if _, err := s.GetSession(sessionID); err != nil {
		return err
	}
	st := s.manager.Status()
	if st.Session == nil || st.Session.ID != sessionID {
		return ErrNotActive
	}
	return nil
}

// SnoozeBreak postpones the active session's break. ok is false when the
// snooze allowance is spent.
func (s *Service) SnoozeBreak(sessionID string) (bool, error) {
	if err := s.requireActive(sessionID); err != nil {
		return false, err
	}
	return s.manager.SnoozeBreak()
}

// SkipBreak discards the active session's break. ok is false when nothing
// is owed.
func (s *Service) SkipBreak(sessionID string) (bool, error) {
	if err := s.requireActive(sessionID); err != nil {
		return false, err
	}
	return s.manager.SkipBreak()
}

// TakeBreak starts the next owed break immediately. ok is false when a
// break is already underway or nothing is owed.
func (s *Service) TakeBreak(sessionID string) (bool, error) {
	if err := s.requireActive(sessionID); err != nil {
		return false, err
	}
	return s.manager.TakeBreak()
}

// ExtendSession lengthens the active session.
func (s *Service) ExtendSession(sessionID string, extraMinutes int) error {
	if err := s.requireActive(sessionID); err != nil {
		return err
	}
	return s.manager.ExtendSession(extraMinutes)
}

// CompleteSession finishes the active session as completed.
func (s *Service) CompleteSession(sessionID string) error {
	if err := s.requireActive(sessionID); err != nil {
		return err
	}
	return s.manager.CompleteSession()
}

// AbandonSession finishes the active session without credit.
func (s *Service) AbandonSession(sessionID string) error {
	if err := s.requireActive(sessionID); err != nil {
		return err
	}
	return s.manager.AbandonSession()
}

// EmergencyExit abandons a strict or focused session through the escape
// hatch.
func (s *Service) EmergencyExit(sessionID string) error {
	if err := s.requireActive(sessionID); err != nil {
		return err
	}
	return s.manager.HandleEmergencyExit()
}

// --- Stats Operations ---

// StatsReport bundles the analytics the stats endpoints serve.
type StatsReport struct {
	Since            time.Time           `json:"since"`
	Sessions         *store.SessionStats `json:"sessions"`
	BreakCompliance  float64             `json:"break_compliance_percent"`
	ModeDistribution map[models.Mode]int `json:"mode_distribution"`
}

// GetStats aggregates session outcomes over the trailing window.
func (s *Service) GetStats(since time.Time) (*StatsReport, error) {
	stats, err := s.store.GetSessionStats(since)
	if err != nil {
		return nil, err
	}
	dist, err := s.store.GetModeDistribution(since)
	if err != nil {
		return nil, err
	}
	return &StatsReport{
		Since:            since,
		Sessions:         stats,
		BreakCompliance:  stats.BreakCompliancePercent(),
		ModeDistribution: dist,
	}, nil
}

// ListStreaks returns every streak counter.
func (s *Service) ListStreaks() ([]models.Streak, error) {
	return s.store.ListStreaks()
}

// GetSettings returns the current tunables.
func (s *Service) GetSettings() (models.Settings, error) {
	return s.store.GetSettings()
}

// UpdateSettings replaces the tunables. Running sessions keep the settings
// they started with.
func (s *Service) UpdateSettings(set models.Settings) error {
	return s.store.UpdateSettings(set)
}

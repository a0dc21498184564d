// Package streaks maintains the running discipline counters updated at the
// end of every session.
package streaks

import (
	"fmt"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
)

// Manager updates streak counters from session outcomes.
type Manager struct {
	store *store.Store
}

// NewManager creates a streak manager.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// UpdateAfterSession applies one finished session to all streaks.
//
// The session streak counts consecutive completed sessions with no skipped
// breaks. The perfect streak additionally requires no snoozes and no
// emergency exits. Daily consistency counts consecutive calendar days with
// at least one completed session; a second completion on the same day
// leaves it unchanged.
func (m *Manager) UpdateAfterSession(sess *models.WorkSession) error {
	now := time.Now()

	if sess.Status != models.SessionCompleted {
		if err := m.reset(models.StreakSession, now); err != nil {
			return err
		}
		return m.reset(models.StreakPerfectSession, now)
	}

	if sess.BreaksSkipped == 0 {
		if err := m.increment(models.StreakSession, now); err != nil {
			return err
		}
	} else if err := m.reset(models.StreakSession, now); err != nil {
		return err
	}

	perfect := sess.BreaksSkipped == 0 && sess.BreaksSnoozed == 0 && sess.EmergencyExits == 0
	if perfect {
		if err := m.increment(models.StreakPerfectSession, now); err != nil {
			return err
		}
	} else if err := m.reset(models.StreakPerfectSession, now); err != nil {
		return err
	}

	return m.updateDailyConsistency(now)
}

func (m *Manager) increment(streakType string, at time.Time) error {
	streak, err := m.store.GetStreak(streakType)
	if err != nil {
		return err
	}
	current := 0
	if streak != nil {
		current = streak.CurrentCount
	}
	return m.store.SaveStreak(streakType, current+1, at)
}

func (m *Manager) reset(streakType string, at time.Time) error {
	return m.store.SaveStreak(streakType, 0, at)
}

func (m *Manager) updateDailyConsistency(now time.Time) error {
	streak, err := m.store.GetStreak(models.StreakDailyConsistency)
	if err != nil {
		return err
	}
	if streak == nil {
		return fmt.Errorf("streak %s not seeded", models.StreakDailyConsistency)
	}

	last := streak.LastUpdated.Local()
	switch {
	case streak.CurrentCount > 0 && sameDay(last, now):
		// Already counted today.
		return nil
	case streak.CurrentCount > 0 && sameDay(last, now.AddDate(0, 0, -1)):
		return m.store.SaveStreak(models.StreakDailyConsistency, streak.CurrentCount+1, now)
	default:
		return m.store.SaveStreak(models.StreakDailyConsistency, 1, now)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

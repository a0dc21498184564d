package session

import (
	"log"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/timer"
)

// Status is a point-in-time snapshot of the manager, safe to serialize.
type Status struct {
	Session          *models.WorkSession `json:"session,omitempty"`
	TimerState       timer.State         `json:"timer_state"`
	ElapsedSeconds   int                 `json:"elapsed_seconds"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	ProgressPercent  float64             `json:"progress_percent"`
	Clock            string              `json:"clock"`

	OnBreak               bool          `json:"on_break"`
	CurrentBreak          *models.Break `json:"current_break,omitempty"`
	BreakRemainingSeconds int           `json:"break_remaining_seconds,omitempty"`

	CoolingDown              bool `json:"cooling_down"`
	CooldownRemainingSeconds int  `json:"cooldown_remaining_seconds,omitempty"`

	NextBreakTime *time.Time `json:"next_break_time,omitempty"`
}

// Status reports the current session, timers, and owed breaks.
func (m *Manager) Status() *Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &Status{TimerState: timer.StateStopped}

	if m.cooldownTimer != nil {
		st.CoolingDown = true
		st.CooldownRemainingSeconds = int(m.cooldownTimer.Remaining().Seconds())
	}

	if m.sess == nil {
		return st
	}

	sess := *m.sess
	st.Session = &sess
	st.TimerState = m.workTimer.State()
	st.ElapsedSeconds = int(m.workTimer.Elapsed().Seconds())
	st.RemainingSeconds = int(m.workTimer.Remaining().Seconds())
	st.ProgressPercent = m.workTimer.ProgressPercent()
	st.Clock = timer.FormatClock(m.workTimer.Remaining())

	if m.currentBreak != nil {
		brk := *m.currentBreak
		st.OnBreak = true
		st.CurrentBreak = &brk
		if m.breakTimer != nil {
			st.BreakRemainingSeconds = int(m.breakTimer.Remaining().Seconds())
		}
	} else {
		pending, err := m.store.PendingBreaks(sess.ID)
		if err != nil {
			log.Printf("session: load pending breaks: %v", err)
		} else if len(pending) > 0 {
			next := pending[0].ScheduledTime
			st.NextBreakTime = &next
		}
	}
	return st
}

package session

import (
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
)

// Observer receives session lifecycle notifications. Methods are called
// from timer goroutines and from the goroutine invoking a manager
// operation; implementations must be safe for concurrent use and must not
// call back into the manager from within a notification.
type Observer interface {
	SessionStarted(sess *models.WorkSession)
	WorkTick(sessionID string, elapsed, remaining time.Duration, progress float64)
	BreakStarted(sessionID string, brk *models.Break)
	BreakTick(sessionID string, elapsed, remaining time.Duration)
	BreakEnding(sessionID string, remaining time.Duration)
	BreakFinished(sessionID string, brk *models.Break)
	BreakSnoozed(sessionID string, brk *models.Break, passesLeft int)
	BreakSkipped(sessionID string, brk *models.Break)
	CooldownStarted(sessionID string, duration time.Duration)
	CooldownTick(sessionID string, remaining time.Duration)
	CooldownFinished(sessionID string)
	SessionFinished(sess *models.WorkSession)
}

// NopObserver ignores every notification. Embed it to implement only the
// notifications you care about.
type NopObserver struct{}

func (NopObserver) SessionStarted(*models.WorkSession)                     {}
func (NopObserver) WorkTick(string, time.Duration, time.Duration, float64) {}
func (NopObserver) BreakStarted(string, *models.Break)                     {}
func (NopObserver) BreakTick(string, time.Duration, time.Duration)         {}
func (NopObserver) BreakEnding(string, time.Duration)                      {}
func (NopObserver) BreakFinished(string, *models.Break)                    {}
func (NopObserver) BreakSnoozed(string, *models.Break, int)                {}
func (NopObserver) BreakSkipped(string, *models.Break)                     {}
func (NopObserver) CooldownStarted(string, time.Duration)                  {}
func (NopObserver) CooldownTick(string, time.Duration)                     {}
func (NopObserver) CooldownFinished(string)                                {}
func (NopObserver) SessionFinished(*models.WorkSession)                    {}

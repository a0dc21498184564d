// Package audit records the append-only event trail for sessions and breaks.
package audit

import (
	"encoding/json"
	"log"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
)

// Event types written by the session manager.
const (
	EventSessionStarted   = "session.started"
	EventSessionCompleted = "session.completed"
	EventSessionAbandoned = "session.abandoned"
	EventSessionExtended  = "session.extended"
	EventEmergencyExit    = "session.emergency_exit"
	EventBreakDue         = "break.due"
	EventBreakTaken       = "break.taken"
	EventBreakCompleted   = "break.completed"
	EventBreakSnoozed     = "break.snoozed"
	EventBreakSkipped     = "break.skipped"
	EventCooldownStarted  = "cooldown.started"
	EventCooldownFinished = "cooldown.finished"
)

// Logger appends events to the store. Recording is best-effort: a failed
// write is logged and never propagated, so audit problems cannot break a
// running session.
type Logger struct {
	store *store.Store
}

// NewLogger creates a new event logger.
func NewLogger(s *store.Store) *Logger {
	return &Logger{store: s}
}

// Record writes one event. details may be any JSON-encodable value or nil.
func (l *Logger) Record(sessionID, eventType string, details interface{}) {
	encoded := ""
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: encode details for %s: %v", eventType, err)
		} else {
			encoded = string(data)
		}
	}

	if err := l.store.LogEvent(sessionID, eventType, encoded); err != nil {
		log.Printf("audit: record %s: %v", eventType, err)
	}
}

// Package timer provides pausable countdown timers for work intervals,
// breaks and cooldowns. Each timer owns one background goroutine; elapsed
// time is derived from the monotonic clock so wall-clock adjustments
// cannot corrupt it.
package timer

import (
	"log"
	"sync"
	"time"
)

// State is the lifecycle state of a timer.
type State string

const (
	StateStopped   State = "stopped"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// Config contains the runtime options for a timer.
type Config struct {
	// Duration is the total time the timer counts through.
	Duration time.Duration
	// TickInterval is the polling cadence while running. Defaults to 1s.
	TickInterval time.Duration
	// IdleInterval is the polling cadence while paused. Defaults to 100ms.
	IdleInterval time.Duration
	// StopTimeout bounds how long Stop waits for the background goroutine
	// to exit. Defaults to 1s. Expiry is logged, not fatal.
	StopTimeout time.Duration

	// OnTick fires roughly once per TickInterval with the elapsed time.
	OnTick func(elapsed time.Duration)
	// OnComplete fires exactly once when the duration is reached.
	OnComplete func()
}

func (cfg *Config) applyDefaults() {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 100 * time.Millisecond
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = time.Second
	}
}

// Timer is a pausable interval timer. The zero value is not usable; use New.
type Timer struct {
	mu          sync.Mutex
	cfg         Config
	state       State
	startMark   time.Time
	pauseMark   time.Time
	pausedAccum time.Duration
	stopCh      chan struct{}
	done        chan struct{}
	stopped     bool

	// onPoll runs on every running tick before the completion check.
	// Variants hook their break/warning logic in here.
	onPoll func(elapsed time.Duration)
}

// New creates a stopped timer.
func New(cfg Config) *Timer {
	cfg.applyDefaults()
	return &Timer{cfg: cfg, state: StateStopped}
}

// Start moves the timer from Stopped to Running and launches the
// background goroutine. It is a no-op in any other state.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state != StateStopped {
		t.mu.Unlock()
		return
	}
	t.state = StateRunning
	t.startMark = time.Now()
	t.pausedAccum = 0
	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	t.stopped = false
	t.mu.Unlock()

	go t.run()
}

// Pause freezes the timer. Only meaningful while Running.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return
	}
	t.pauseMark = time.Now()
	t.state = StatePaused
}

// Resume continues from where Pause left off. Only meaningful while Paused.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return
	}
	t.pausedAccum += time.Since(t.pauseMark)
	t.state = StateRunning
}

// Stop forces the timer to Stopped from any state and waits, bounded by
// StopTimeout, for the background goroutine to exit so no late callback
// fires after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.state = StateStopped
	done := t.done
	if t.done != nil && !t.stopped {
		t.stopped = true
		close(t.stopCh)
	}
	timeout := t.cfg.StopTimeout
	t.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("timer: stop timed out after %v waiting for goroutine exit", timeout)
	}
}

// Reset stops the timer and clears all elapsed and paused accumulators.
func (t *Timer) Reset() {
	t.Stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startMark = time.Time{}
	t.pauseMark = time.Time{}
	t.pausedAccum = 0
	t.state = StateStopped
}

// State returns the current lifecycle state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsRunning reports whether the timer is currently Running.
func (t *Timer) IsRunning() bool { return t.State() == StateRunning }

// IsPaused reports whether the timer is currently Paused.
func (t *Timer) IsPaused() bool { return t.State() == StatePaused }

// IsCompleted reports whether the timer reached its full duration.
func (t *Timer) IsCompleted() bool { return t.State() == StateCompleted }

// Elapsed returns how much running time has accumulated, excluding pauses.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() time.Duration {
	switch t.state {
	case StateRunning:
		return time.Since(t.startMark) - t.pausedAccum
	case StatePaused:
		return t.pauseMark.Sub(t.startMark) - t.pausedAccum
	case StateCompleted:
		return t.cfg.Duration
	default:
		return 0
	}
}

// Remaining returns the time left before completion, floored at zero.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	remaining := t.cfg.Duration - t.elapsedLocked()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ElapsedMinutes returns the elapsed time in fractional minutes.
func (t *Timer) ElapsedMinutes() float64 {
	return t.Elapsed().Minutes()
}

// ProgressPercent returns completion progress clamped to [0,100]. A
// zero-duration timer is complete by definition.
func (t *Timer) ProgressPercent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.Duration <= 0 {
		return 100
	}
	progress := float64(t.elapsedLocked()) / float64(t.cfg.Duration) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Duration returns the timer's current total duration.
func (t *Timer) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Duration
}

// SetDuration replaces the total duration without restarting the timer or
// losing elapsed time. Used when a session is extended mid-run.
func (t *Timer) SetDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.Duration = d
}

// SetOnTick replaces the tick callback. Call before Start.
func (t *Timer) SetOnTick(fn func(elapsed time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.OnTick = fn
}

// SetOnComplete replaces the completion callback. Call before Start.
func (t *Timer) SetOnComplete(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.OnComplete = fn
}

func (t *Timer) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("timer: panic in background goroutine: %v", r)
			t.mu.Lock()
			t.state = StateStopped
			t.mu.Unlock()
		}
		close(t.done)
	}()

	for {
		t.mu.Lock()
		state := t.state
		elapsed := t.elapsedLocked()
		duration := t.cfg.Duration
		onTick := t.cfg.OnTick
		onComplete := t.cfg.OnComplete
		wait := t.cfg.IdleInterval
		if state == StateRunning {
			wait = t.cfg.TickInterval
		}
		t.mu.Unlock()

		if state == StateStopped || state == StateCompleted {
			return
		}

		if state == StateRunning {
			if t.onPoll != nil {
				t.onPoll(elapsed)
			}

			if elapsed >= duration {
				t.mu.Lock()
				// Stop may have raced with us while polling.
				if t.state != StateRunning {
					t.mu.Unlock()
					return
				}
				t.state = StateCompleted
				t.mu.Unlock()
				if onComplete != nil {
					onComplete()
				}
				return
			}

			if onTick != nil {
				onTick(elapsed)
			}
		}

		select {
		case <-t.stopCh:
			return
		case <-time.After(wait):
		}
	}
}

package timer

import (
	"sort"
	"sync"
	"time"
)

// WorkTimer is a Timer that additionally fires a callback when the elapsed
// time crosses each scheduled break offset. Each offset fires at most once;
// replacing the offsets mid-run does not re-fire indices already triggered.
type WorkTimer struct {
	*Timer

	offsetMu  sync.Mutex
	offsets   []time.Duration
	triggered map[int]bool

	onBreakTime func(index int, offset time.Duration)
}

// NewWorkTimer creates a stopped work timer. Offsets are sorted ascending;
// onBreakTime fires on the timer's goroutine when each offset is reached.
func NewWorkTimer(cfg Config, offsets []time.Duration, onBreakTime func(index int, offset time.Duration)) *WorkTimer {
	w := &WorkTimer{
		Timer:       New(cfg),
		offsets:     sortedOffsets(offsets),
		triggered:   make(map[int]bool),
		onBreakTime: onBreakTime,
	}
	w.Timer.onPoll = w.checkBreaks
	return w
}

func sortedOffsets(offsets []time.Duration) []time.Duration {
	out := make([]time.Duration, len(offsets))
	copy(out, offsets)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *WorkTimer) checkBreaks(elapsed time.Duration) {
	w.offsetMu.Lock()
	var due []int
	for i, offset := range w.offsets {
		if elapsed >= offset && !w.triggered[i] {
			w.triggered[i] = true
			due = append(due, i)
		}
	}
	offsets := w.offsets
	w.offsetMu.Unlock()

	if w.onBreakTime == nil {
		return
	}
	for _, i := range due {
		w.onBreakTime(i, offsets[i])
	}
}

// SetBreakOffsets replaces the break schedule while the timer keeps
// running. Indices that already fired stay fired.
func (w *WorkTimer) SetBreakOffsets(offsets []time.Duration) {
	w.offsetMu.Lock()
	defer w.offsetMu.Unlock()
	w.offsets = sortedOffsets(offsets)
}

// ResetBreakOffsets replaces the break schedule and clears the fired
// indices. Offsets at or before the current elapsed time fire on the next
// tick, so callers normally pass only future offsets.
func (w *WorkTimer) ResetBreakOffsets(offsets []time.Duration) {
	w.offsetMu.Lock()
	defer w.offsetMu.Unlock()
	w.offsets = sortedOffsets(offsets)
	w.triggered = make(map[int]bool)
}

// BreakOffsets returns a copy of the current break schedule.
func (w *WorkTimer) BreakOffsets() []time.Duration {
	w.offsetMu.Lock()
	defer w.offsetMu.Unlock()
	out := make([]time.Duration, len(w.offsets))
	copy(out, w.offsets)
	return out
}

// TriggeredCount returns how many break offsets have fired so far.
func (w *WorkTimer) TriggeredCount() int {
	w.offsetMu.Lock()
	defer w.offsetMu.Unlock()
	return len(w.triggered)
}

// BreakTimer is a Timer that fires a single warning callback when the
// remaining time drops to the warning threshold.
type BreakTimer struct {
	*Timer

	warnMu sync.Mutex
	warnAt time.Duration
	warned bool
	onWarn func(remaining time.Duration)
}

// NewBreakTimer creates a stopped break timer. warnAt is how much remaining
// time triggers the one-shot warning; zero disables it.
func NewBreakTimer(cfg Config, warnAt time.Duration, onWarn func(remaining time.Duration)) *BreakTimer {
	b := &BreakTimer{
		Timer:  New(cfg),
		warnAt: warnAt,
		onWarn: onWarn,
	}
	b.Timer.onPoll = b.checkWarning
	return b
}

func (b *BreakTimer) checkWarning(elapsed time.Duration) {
	if b.onWarn == nil || b.warnAt <= 0 {
		return
	}
	remaining := b.Timer.Duration() - elapsed
	if remaining > b.warnAt || remaining <= 0 {
		return
	}

	b.warnMu.Lock()
	fire := !b.warned
	b.warned = true
	b.warnMu.Unlock()

	if fire {
		b.onWarn(remaining)
	}
}

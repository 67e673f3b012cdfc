// Package timer implements the classroom elapsed-time display.
package timer

import (
	"fmt"
	"sync"
	"time"
)

var now = time.Now // mockable

// Display receives the formatted elapsed time.
type Display interface {
	SetText(text string)
}

type Timer struct {
	display Display
	period  time.Duration

	mu      sync.Mutex
	start   time.Time
	ticker  *time.Ticker
	stopped chan struct{}
}

// New creates a stopped timer. display may be nil, in which case ticks are
// computed but not shown.
func New(display Display, period time.Duration) *Timer {
	if period <= 0 {
		period = time.Second
	}
	return &Timer{display: display, period: period}
}

// Format renders d as MM:SS. Minutes are not capped at 59.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Start records the current instant and begins ticking. Starting a running
// timer restarts it.
func (t *Timer) Start() {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = now()
	t.ticker = time.NewTicker(t.period)
	t.stopped = make(chan struct{})
	go t.run(t.ticker, t.stopped)
}

func (t *Timer) run(ticker *time.Ticker, stopped chan struct{}) {
	for {
		select {
		case <-ticker.C:
			t.tick()
		case <-stopped:
			return
		}
	}
}

func (t *Timer) tick() {
	t.mu.Lock()
	if t.ticker == nil {
		t.mu.Unlock()
		return
	}
	text := Format(now().Sub(t.start))
	display := t.display
	t.mu.Unlock()

	if display != nil {
		display.SetText(text)
	}
}

// Stop cancels the tick. It is safe to call repeatedly or before Start.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	close(t.stopped)
	t.ticker = nil
	t.stopped = nil
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticker != nil
}

// Elapsed is the time since Start, or zero when stopped.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker == nil {
		return 0
	}
	return now().Sub(t.start)
}

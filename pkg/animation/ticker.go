package animation

import "time"

// Ticker calls a callback on each frame while active.
//
// Ticker is the low-level timing primitive used by [AnimationController].
// Most code should use AnimationController or [Scheduler.Animate] rather
// than Ticker.
//
// The callback receives the elapsed time since Start was called. Tickers
// are driven by the owning scheduler's frame loop via [Scheduler.Step].
type Ticker struct {
	owner    *Scheduler
	callback func(elapsed time.Duration)
	isActive bool
	start    time.Time
}

// Start activates the ticker. Starting an active ticker is a no-op.
func (t *Ticker) Start() {
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = t.owner.Now()
	t.owner.addTicker(t)
}

// Stop deactivates the ticker. The callback is not invoked again, even
// if the owning scheduler is in the middle of a Step.
func (t *Ticker) Stop() {
	if !t.isActive {
		return
	}
	t.isActive = false
	t.owner.removeTicker(t)
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	if !t.isActive {
		return 0
	}
	return t.owner.Now().Sub(t.start)
}

// TickerProvider creates tickers.
type TickerProvider interface {
	CreateTicker(callback func(time.Duration)) *Ticker
}

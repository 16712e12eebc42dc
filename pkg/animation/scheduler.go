package animation

import (
	"sort"
	"sync"
	"time"
)

// AnimationHandle identifies one animation started through
// [Scheduler.Animate] or [Scheduler.AnimateLoop]. The zero value refers
// to no animation.
type AnimationHandle struct {
	id uint64
}

// IsZero reports whether h refers to no animation.
func (h AnimationHandle) IsZero() bool { return h.id == 0 }

// ID returns a numeric identifier, unique within the owning scheduler.
func (h AnimationHandle) ID() uint64 { return h.id }

// TimerHandle identifies one timer started through [Scheduler.ScheduleOnce].
// The zero value refers to no timer.
type TimerHandle struct {
	id uint64
}

// IsZero reports whether h refers to no timer.
func (h TimerHandle) IsZero() bool { return h.id == 0 }

// ID returns a numeric identifier, unique within the owning scheduler.
func (h TimerHandle) ID() uint64 { return h.id }

type timer struct {
	handle TimerHandle
	due    time.Time
	fn     func()
}

// Scheduler owns the tickers, animations and one-shot timers of a single
// frame loop.
//
// Callbacks never run from inside Animate, AnimateLoop, ScheduleOnce or
// the Cancel methods; they run only inside [Scheduler.Step]. A callback
// for a handle fires at most once (completion) and never after that
// handle is cancelled.
//
// A Scheduler is meant to be driven from one goroutine, usually by a
// [FrameLoop]. The bookkeeping is mutex-protected so counts may be read
// from elsewhere.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	nextID  uint64
	tickers map[*Ticker]struct{}
	timers  map[TimerHandle]*timer
	anims   map[AnimationHandle]*AnimationController
}

// NewScheduler creates a scheduler reading time from clock. A nil clock
// means [SystemClock].
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:   clock,
		tickers: make(map[*Ticker]struct{}),
		timers:  make(map[TimerHandle]*timer),
		anims:   make(map[AnimationHandle]*AnimationController),
	}
}

// Now returns the current time of the scheduler's clock.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// CreateTicker returns an inactive ticker stepped by this scheduler.
func (s *Scheduler) CreateTicker(callback func(time.Duration)) *Ticker {
	return &Ticker{owner: s, callback: callback}
}

func (s *Scheduler) addTicker(t *Ticker) {
	s.mu.Lock()
	s.tickers[t] = struct{}{}
	s.mu.Unlock()
}

func (s *Scheduler) removeTicker(t *Ticker) {
	s.mu.Lock()
	delete(s.tickers, t)
	s.mu.Unlock()
}

func (s *Scheduler) newID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Animate runs a new animation from `from` to `to` over d. onProgress
// receives every intermediate value and onComplete runs once when the
// target is reached. Either callback may be nil. A nil curve is linear.
func (s *Scheduler) Animate(from, to float64, d time.Duration, curve func(float64) float64, onProgress func(float64), onComplete func()) AnimationHandle {
	h := AnimationHandle{id: s.newID()}
	c := NewAnimationController(s, d)
	c.Value = from
	if curve != nil {
		c.Curve = curve
	}
	c.LowerBound = min(from, to)
	c.UpperBound = max(from, to)
	if onProgress != nil {
		c.AddListener(func() { onProgress(c.Value) })
	}
	c.AddDoneListener(func() {
		if !s.release(h) {
			return
		}
		c.Dispose()
		if onComplete != nil {
			onComplete()
		}
	})

	s.mu.Lock()
	s.anims[h] = c
	s.mu.Unlock()

	c.AnimateTo(to)
	return h
}

// AnimateLoop runs a repeating 0..1 animation with period d, starting at
// phase. It never completes; cancel it with CancelAnimation.
func (s *Scheduler) AnimateLoop(d time.Duration, phase float64, onProgress func(float64)) AnimationHandle {
	h := AnimationHandle{id: s.newID()}
	c := NewAnimationController(s, d)
	c.Value = phase
	if onProgress != nil {
		c.AddListener(func() { onProgress(c.Value) })
	}

	s.mu.Lock()
	s.anims[h] = c
	s.mu.Unlock()

	c.Repeat()
	return h
}

// CancelAnimation stops the animation at its current value. Cancelling a
// completed, cancelled or zero handle is a no-op.
func (s *Scheduler) CancelAnimation(h AnimationHandle) {
	s.mu.Lock()
	c, ok := s.anims[h]
	delete(s.anims, h)
	s.mu.Unlock()
	if ok {
		c.Dispose()
	}
}

// release forgets h and reports whether it was still live.
func (s *Scheduler) release(h AnimationHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anims[h]; !ok {
		return false
	}
	delete(s.anims, h)
	return true
}

// ScheduleOnce runs fn on the first Step at or after delay from now.
func (s *Scheduler) ScheduleOnce(delay time.Duration, fn func()) TimerHandle {
	h := TimerHandle{id: s.newID()}
	s.mu.Lock()
	s.timers[h] = &timer{handle: h, due: s.clock.Now().Add(delay), fn: fn}
	s.mu.Unlock()
	return h
}

// CancelTimer cancels a pending timer. Cancelling a fired, cancelled or
// zero handle is a no-op.
func (s *Scheduler) CancelTimer(h TimerHandle) {
	s.mu.Lock()
	delete(s.timers, h)
	s.mu.Unlock()
}

// Step advances all active tickers and then fires due timers in due
// order. Work scheduled during a Step runs on the next Step at the
// earliest. This should be called once per frame.
func (s *Scheduler) Step() {
	now := s.clock.Now()

	s.mu.Lock()
	// Copy to avoid holding the lock during callbacks
	tickers := make([]*Ticker, 0, len(s.tickers))
	for ticker := range s.tickers {
		tickers = append(tickers, ticker)
	}
	var due []*timer
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, ticker := range tickers {
		if ticker.isActive && ticker.callback != nil {
			ticker.callback(now.Sub(ticker.start))
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].handle.id < due[j].handle.id
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		s.mu.Lock()
		_, live := s.timers[t.handle]
		delete(s.timers, t.handle)
		s.mu.Unlock()
		// Cancelled by an earlier callback in this Step.
		if !live {
			continue
		}
		if t.fn != nil {
			t.fn()
		}
	}
}

// HasActiveTickers returns true if any tickers are active.
func (s *Scheduler) HasActiveTickers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers) > 0
}

// ActiveAnimations returns the number of live animation handles.
func (s *Scheduler) ActiveAnimations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anims)
}

// PendingTimers returns the number of timers that have neither fired
// nor been cancelled.
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Idle reports whether nothing is scheduled.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers) == 0 && len(s.timers) == 0
}

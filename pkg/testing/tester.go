package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/fade/pkg/animation"
)

// DefaultFrameDuration is the clock advance per pumped frame.
const DefaultFrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: scheduler did not settle")

// Tester drives an [animation.Scheduler] on a fake clock, one frame at a
// time, so controller tests are deterministic.
type Tester struct {
	clock      *FakeClock
	scheduler  *animation.Scheduler
	frame      time.Duration
	dispatches []func()
}

// NewTester creates a tester with a fresh clock and scheduler.
func NewTester() *Tester {
	clk := NewFakeClock()
	return &Tester{
		clock:     clk,
		scheduler: animation.NewScheduler(clk),
		frame:     DefaultFrameDuration,
	}
}

// NewTesterWithT creates a tester that fails t if any animation or timer
// handle is still live when the test finishes.
func NewTesterWithT(t testing.TB) *Tester {
	t.Helper()
	tester := NewTester()
	t.Cleanup(func() {
		if n := tester.ActiveAnimations(); n != 0 {
			t.Errorf("%d animation(s) still live at end of test", n)
		}
		if n := tester.PendingTimers(); n != 0 {
			t.Errorf("%d timer(s) still pending at end of test", n)
		}
	})
	return tester
}

// Clock returns the fake clock for advancing time in tests.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Scheduler returns the scheduler, which is both the timer source and the
// animation driver handed to controllers.
func (t *Tester) Scheduler() *animation.Scheduler {
	return t.scheduler
}

// SetFrameDuration changes the clock advance per frame.
func (t *Tester) SetFrameDuration(d time.Duration) {
	if d > 0 {
		t.frame = d
	}
}

// Elapsed returns the fake time passed since the tester was created.
func (t *Tester) Elapsed() time.Duration {
	return t.clock.Now().Sub(Epoch)
}

// Pump drains the dispatch queue and steps the scheduler once at the
// current fake time.
func (t *Tester) Pump() {
	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn()
	}
	t.scheduler.Step()
}

// Advance moves the clock forward by d in frame-sized steps, pumping
// after each step. The last step is shortened so that the clock lands
// exactly on the target and a frame is pumped there.
func (t *Tester) Advance(d time.Duration) {
	for d > 0 {
		step := min(t.frame, d)
		t.clock.Advance(step)
		d -= step
		t.Pump()
	}
}

// AdvanceTo advances until Elapsed() == at. It does nothing if at is in
// the past.
func (t *Tester) AdvanceTo(at time.Duration) {
	t.Advance(at - t.Elapsed())
}

// PumpAndSettle runs frames until nothing is scheduled or the timeout is
// reached. Looping animations never settle.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		t.Pump()
		if !t.needsWork() {
			return nil
		}
		t.clock.Advance(t.frame)
		elapsed += t.frame
	}
	return ErrSettleTimeout
}

func (t *Tester) needsWork() bool {
	return !t.scheduler.Idle() || len(t.dispatches) > 0
}

// Dispatch queues a callback for the next frame.
func (t *Tester) Dispatch(fn func()) {
	t.dispatches = append(t.dispatches, fn)
}

// ActiveAnimations returns the number of live animation handles.
func (t *Tester) ActiveAnimations() int {
	return t.scheduler.ActiveAnimations()
}

// PendingTimers returns the number of live timer handles.
func (t *Tester) PendingTimers() int {
	return t.scheduler.PendingTimers()
}

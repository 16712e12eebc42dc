// Package animation provides the timing primitives behind fade's
// visibility controllers.
//
// # Core Components
//
//   - [Scheduler]: owns the tickers, animations and one-shot timers of one
//     frame loop. It is both the timer source ([Scheduler.ScheduleOnce],
//     [Scheduler.CancelTimer]) and the animation driver ([Scheduler.Animate],
//     [Scheduler.AnimateLoop], [Scheduler.CancelAnimation]). Every started
//     animation or timer is identified by an opaque handle.
//
//   - [AnimationController]: drives a value toward a target over a
//     duration with an easing curve, or repeats it forever.
//
//   - [FrameLoop]: steps a Scheduler in real time and serializes external
//     work onto the same goroutine.
//
//   - [Tween] and the curves: map progress onto concrete values.
//
// # Basic Usage
//
//	sched := animation.NewScheduler(nil)
//	h := sched.Animate(0, 1, 300*time.Millisecond, animation.EaseOut,
//	    func(v float64) { opacity = v },
//	    func() { fmt.Println("shown") },
//	)
//	// later, from the same goroutine:
//	sched.CancelAnimation(h) // opacity keeps its last value
//
// Tests replace the clock with a fake one and call Step directly; see
// package github.com/go-drift/fade/pkg/testing.
package animation

package animation

import (
	"fmt"
	"math"
	"time"
)

// AnimationStatus represents the current state of an animation.
//
// The status follows this state machine:
//
//	                Forward()
//	Dismissed ──────────────────► Completed
//	    ▲                              │
//	    │         Reverse()            │
//	    └──────────────────────────────┘
//
// While animating, status is AnimationForward or AnimationReverse.
// When stopped, status is AnimationDismissed (at 0) or AnimationCompleted (at 1).
// A repeating controller stays in AnimationForward until stopped.
type AnimationStatus int

const (
	// AnimationDismissed means the animation is stopped at the lower bound (0.0).
	AnimationDismissed AnimationStatus = iota
	// AnimationForward means the animation is playing toward the upper bound (1.0).
	AnimationForward
	// AnimationReverse means the animation is playing toward the lower bound (0.0).
	AnimationReverse
	// AnimationCompleted means the animation is stopped at the upper bound (1.0).
	AnimationCompleted
)

// String returns a human-readable representation of the animation status.
func (s AnimationStatus) String() string {
	switch s {
	case AnimationDismissed:
		return "dismissed"
	case AnimationForward:
		return "forward"
	case AnimationReverse:
		return "reverse"
	case AnimationCompleted:
		return "completed"
	default:
		return fmt.Sprintf("AnimationStatus(%d)", int(s))
	}
}

// AnimationController drives an animation by producing values over time.
//
// The controller manages a Value that progresses toward a target over the
// specified Duration, starting from wherever Value currently is. The Curve
// function transforms linear progress into eased motion.
//
// Use [Tween] to map the 0-1 value to other ranges.
//
// Always call Dispose when done to stop the animation and release the
// ticker.
type AnimationController struct {
	// Value is the current animation value, ranging from LowerBound to UpperBound.
	Value float64

	// Duration is the length of one run (or one cycle when repeating).
	Duration time.Duration

	// Curve transforms linear progress (optional).
	Curve func(float64) float64

	// LowerBound is the minimum value (default 0.0).
	LowerBound float64

	// UpperBound is the maximum value (default 1.0).
	UpperBound float64

	vsync           TickerProvider
	status          AnimationStatus
	ticker          *Ticker
	target          float64
	startValue      float64
	repeating       bool
	listeners       map[int]func()
	statusListeners map[int]func(AnimationStatus)
	doneListeners   map[int]func()
	nextListenerID  int
}

// NewAnimationController creates an animation controller with the given
// duration whose ticks come from vsync.
func NewAnimationController(vsync TickerProvider, duration time.Duration) *AnimationController {
	return &AnimationController{
		Value:           0,
		Duration:        duration,
		LowerBound:      0,
		UpperBound:      1,
		Curve:           LinearCurve,
		vsync:           vsync,
		status:          AnimationDismissed,
		listeners:       make(map[int]func()),
		statusListeners: make(map[int]func(AnimationStatus)),
		doneListeners:   make(map[int]func()),
	}
}

// Forward animates from the current value to the upper bound.
func (c *AnimationController) Forward() {
	c.animateTo(c.UpperBound, AnimationForward)
}

// Reverse animates from the current value to the lower bound.
func (c *AnimationController) Reverse() {
	c.animateTo(c.LowerBound, AnimationReverse)
}

// AnimateTo animates to a specific target value.
func (c *AnimationController) AnimateTo(target float64) {
	if target >= c.Value {
		c.animateTo(target, AnimationForward)
	} else {
		c.animateTo(target, AnimationReverse)
	}
}

// Repeat cycles the value from the current position through the upper
// bound, wrapping to the lower bound, once per Duration. It never
// completes on its own; call Stop or Dispose to end it.
func (c *AnimationController) Repeat() {
	c.animateTo(c.UpperBound, AnimationForward)
	c.repeating = true
}

func (c *AnimationController) animateTo(target float64, direction AnimationStatus) {
	if c.ticker != nil {
		c.ticker.Stop()
	}

	c.target = target
	c.startValue = c.Value
	c.repeating = false
	c.setStatus(direction)

	c.ticker = c.vsync.CreateTicker(func(elapsed time.Duration) {
		c.tick(elapsed)
	})
	c.ticker.Start()
}

func (c *AnimationController) tick(elapsed time.Duration) {
	if c.repeating {
		c.tickRepeat(elapsed)
		return
	}

	run := c.ticker

	if c.Duration <= 0 {
		c.Value = c.target
		c.notifyListeners()
		if c.ticker == run {
			c.finish()
		}
		return
	}

	// Calculate progress as fraction of duration
	progress := float64(elapsed) / float64(c.Duration)
	if progress >= 1.0 {
		progress = 1.0
	}

	// Interpolate from start to target
	eased := progress
	if c.Curve != nil {
		eased = c.Curve(progress)
	}
	c.Value = c.startValue + (c.target-c.startValue)*eased
	c.notifyListeners()

	// A listener may have stopped or restarted the run.
	if c.ticker != run {
		return
	}
	if progress >= 1.0 {
		c.Value = c.target
		c.finish()
	}
}

func (c *AnimationController) tickRepeat(elapsed time.Duration) {
	span := c.UpperBound - c.LowerBound
	if c.Duration <= 0 || span <= 0 {
		return
	}
	cycles := float64(elapsed) / float64(c.Duration)
	offset := (c.startValue - c.LowerBound) / span
	c.Value = c.LowerBound + span*math.Mod(offset+cycles, 1)
	c.notifyListeners()
}

func (c *AnimationController) finish() {
	c.Stop()

	// Update status based on final value
	if c.Value <= c.LowerBound {
		c.setStatus(AnimationDismissed)
	} else if c.Value >= c.UpperBound {
		c.setStatus(AnimationCompleted)
	}

	for _, listener := range c.doneListeners {
		listener()
	}
}

// Reset immediately sets the value to the lower bound.
func (c *AnimationController) Reset() {
	c.Stop()
	c.Value = c.LowerBound
	c.setStatus(AnimationDismissed)
	c.notifyListeners()
}

// Stop stops the animation at the current value. Done listeners are not
// notified.
func (c *AnimationController) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.repeating = false
}

// Status returns the current animation status.
func (c *AnimationController) Status() AnimationStatus {
	return c.status
}

// IsAnimating returns true if the ticker is running.
func (c *AnimationController) IsAnimating() bool {
	return c.ticker != nil && c.ticker.IsActive()
}

// IsCompleted returns true if the animation finished at the upper bound.
func (c *AnimationController) IsCompleted() bool {
	return c.status == AnimationCompleted
}

// IsDismissed returns true if the animation is at the lower bound.
func (c *AnimationController) IsDismissed() bool {
	return c.status == AnimationDismissed
}

// AddListener adds a callback that fires whenever the value changes.
// Returns an unsubscribe function.
func (c *AnimationController) AddListener(fn func()) func() {
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	return func() {
		delete(c.listeners, id)
	}
}

// AddStatusListener adds a callback that fires whenever the status changes.
// Returns an unsubscribe function.
func (c *AnimationController) AddStatusListener(fn func(AnimationStatus)) func() {
	id := c.nextListenerID
	c.nextListenerID++
	c.statusListeners[id] = fn
	return func() {
		delete(c.statusListeners, id)
	}
}

// AddDoneListener adds a callback that fires when a run reaches its
// target naturally, whatever the target was. It does not fire on Stop.
// Returns an unsubscribe function.
func (c *AnimationController) AddDoneListener(fn func()) func() {
	id := c.nextListenerID
	c.nextListenerID++
	c.doneListeners[id] = fn
	return func() {
		delete(c.doneListeners, id)
	}
}

func (c *AnimationController) setStatus(status AnimationStatus) {
	if c.status == status {
		return
	}
	c.status = status
	for _, listener := range c.statusListeners {
		listener(status)
	}
}

func (c *AnimationController) notifyListeners() {
	for _, listener := range c.listeners {
		listener()
	}
}

// Dispose cleans up resources used by the controller.
func (c *AnimationController) Dispose() {
	c.Stop()
	c.listeners = nil
	c.statusListeners = nil
	c.doneListeners = nil
}

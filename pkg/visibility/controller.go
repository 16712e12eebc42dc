package visibility

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-drift/fade/pkg/animation"
	"github.com/go-drift/fade/pkg/errors"
)

// TimerSource schedules the dwell timer. [*animation.Scheduler]
// implements it.
type TimerSource interface {
	ScheduleOnce(delay time.Duration, fn func()) animation.TimerHandle
	CancelTimer(h animation.TimerHandle)
}

// AnimationDriver runs the enter, exit and loop animations.
// [*animation.Scheduler] implements it.
//
// Implementations must not invoke callbacks from inside Animate,
// AnimateLoop or CancelAnimation.
type AnimationDriver interface {
	Animate(from, to float64, d time.Duration, curve func(float64) float64, onProgress func(float64), onComplete func()) animation.AnimationHandle
	AnimateLoop(d time.Duration, phase float64, onProgress func(float64)) animation.AnimationHandle
	CancelAnimation(h animation.AnimationHandle)
}

// Option configures a Controller at Mount.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithID sets the identifier used in log entries. The default is a
// random UUID.
func WithID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// Controller owns the visibility state machine of one mounted splash or
// overlay, together with every animation and timer it starts.
//
// All methods must be called from the goroutine that steps the timer
// source and animation driver.
type Controller struct {
	cfg    Config
	timers TimerSource
	anims  AnimationDriver
	logger *zap.Logger
	id     string

	state         State
	intent        bool
	terminated    bool
	enterProgress float64
	loopProgress  float64

	// transition is the live enter or exit animation; never both.
	transition animation.AnimationHandle
	loop       animation.AnimationHandle
	dwell      animation.TimerHandle

	listeners      map[int]func(Snapshot)
	stateListeners map[int]func(from, to State)
	nextListenerID int
}

// Mount validates cfg, creates a Hidden controller and applies the
// initial visibility intent. Invalid configurations fail with a
// [errors.KindConfig] error; a nil timers or anims fails with
// [errors.KindLifecycle].
func Mount(cfg Config, visible bool, timers TimerSource, anims AnimationDriver, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if timers == nil || anims == nil {
		return nil, errors.New("visibility.Mount", errors.KindLifecycle, "", errors.ErrMissingDriver)
	}
	if cfg.AutoAdvance != nil {
		aa := *cfg.AutoAdvance
		cfg.AutoAdvance = &aa
	}

	c := &Controller{
		cfg:            cfg,
		timers:         timers,
		anims:          anims,
		logger:         zap.NewNop(),
		id:             uuid.NewString(),
		state:          Hidden,
		listeners:      make(map[int]func(Snapshot)),
		stateListeners: make(map[int]func(from, to State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("controller", c.id))
	c.logger.Debug("mounted", zap.Bool("visible", visible))

	c.SetVisible(visible)
	return c, nil
}

// MustMount is like Mount but panics on error.
func MustMount(cfg Config, visible bool, timers TimerSource, anims AnimationDriver, opts ...Option) *Controller {
	c, err := Mount(cfg, visible, timers, anims, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the controller's log identifier.
func (c *Controller) ID() string { return c.id }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Intent returns the last requested visibility.
func (c *Controller) Intent() bool { return c.intent }

// Terminated reports whether Unmount has been called.
func (c *Controller) Terminated() bool { return c.terminated }

// Snapshot returns the values the presentation layer renders.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:         c.state,
		EnterProgress: c.enterProgress,
		LoopProgress:  c.loopProgress,
	}
}

// SetVisible changes the visibility intent. Repeating the current intent
// is a no-op, as is any call after Unmount.
func (c *Controller) SetVisible(visible bool) {
	if c.terminated {
		c.logger.Debug("set visible after unmount ignored", zap.Bool("visible", visible))
		return
	}
	if visible == c.intent {
		return
	}
	c.intent = visible
	if visible {
		c.enter()
	} else {
		c.exit()
	}
}

// Show is SetVisible(true).
func (c *Controller) Show() { c.SetVisible(true) }

// Hide is SetVisible(false).
func (c *Controller) Hide() { c.SetVisible(false) }

// Unmount cancels every animation and the dwell timer and terminates the
// controller. The state is left as it was; no listener fires. Unmount is
// idempotent.
func (c *Controller) Unmount() {
	if c.terminated {
		return
	}
	c.terminated = true
	c.cancelTransition()
	c.stopLoop()
	c.cancelDwell()
	c.listeners = nil
	c.stateListeners = nil
	c.logger.Debug("unmounted", zap.Stringer("state", c.state))
}

// enter runs from Hidden or Exiting.
func (c *Controller) enter() {
	c.cancelTransition()
	c.startLoop()

	var h animation.AnimationHandle
	h = c.anims.Animate(c.enterProgress, 1, c.cfg.EnterDuration, c.cfg.EnterCurve,
		func(v float64) {
			if c.stale(h, "enter progress") {
				return
			}
			c.enterProgress = v
			c.notify()
		},
		func() {
			if c.stale(h, "enter complete") {
				return
			}
			c.transition = animation.AnimationHandle{}
			c.enterProgress = 1
			c.setState(Visible)
			// A state listener may have hidden or unmounted us.
			if c.state == Visible && !c.terminated {
				c.armDwell()
			}
		},
	)
	c.transition = h
	c.setState(Entering)
}

// exit runs from Entering or Visible.
func (c *Controller) exit() {
	c.cancelTransition()
	c.cancelDwell()
	c.stopLoop()

	var h animation.AnimationHandle
	h = c.anims.Animate(c.enterProgress, 0, c.cfg.ExitDuration, c.cfg.ExitCurve,
		func(v float64) {
			if c.stale(h, "exit progress") {
				return
			}
			c.enterProgress = v
			c.notify()
		},
		func() {
			if c.stale(h, "exit complete") {
				return
			}
			c.transition = animation.AnimationHandle{}
			c.enterProgress = 0
			c.setState(Hidden)
		},
	)
	c.transition = h
	c.setState(Exiting)
}

// stale reports whether a transition callback comes from a handle that
// is no longer the live one.
func (c *Controller) stale(h animation.AnimationHandle, what string) bool {
	if !c.terminated && h == c.transition {
		return false
	}
	c.logger.Debug("stale callback ignored", zap.String("callback", what), zap.Uint64("handle", h.ID()))
	return true
}

func (c *Controller) cancelTransition() {
	if c.transition.IsZero() {
		return
	}
	c.anims.CancelAnimation(c.transition)
	c.transition = animation.AnimationHandle{}
}

func (c *Controller) startLoop() {
	if c.cfg.LoopDuration <= 0 || !c.loop.IsZero() {
		return
	}
	var h animation.AnimationHandle
	h = c.anims.AnimateLoop(c.cfg.LoopDuration, c.loopProgress, func(v float64) {
		if c.terminated || h != c.loop {
			return
		}
		c.loopProgress = v
		c.notify()
	})
	c.loop = h
}

func (c *Controller) stopLoop() {
	if c.loop.IsZero() {
		return
	}
	c.anims.CancelAnimation(c.loop)
	c.loop = animation.AnimationHandle{}
}

func (c *Controller) armDwell() {
	aa := c.cfg.AutoAdvance
	if aa == nil {
		return
	}
	var h animation.TimerHandle
	h = c.timers.ScheduleOnce(aa.Delay, func() {
		if c.terminated || h != c.dwell {
			c.logger.Debug("stale dwell timer ignored", zap.Uint64("handle", h.ID()))
			return
		}
		c.dwell = animation.TimerHandle{}
		c.logger.Debug("auto-advance")
		intent := c.intent
		c.invoke("visibility.autoAdvance", aa.OnAdvance)
		// OnAdvance may have changed the intent or unmounted us itself.
		if aa.Hide && !c.terminated && c.intent == intent {
			c.SetVisible(false)
		}
	})
	c.dwell = h
}

func (c *Controller) cancelDwell() {
	if c.dwell.IsZero() {
		return
	}
	c.timers.CancelTimer(c.dwell)
	c.dwell = animation.TimerHandle{}
}

func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.logger.Debug("transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Float64("progress", c.enterProgress),
	)
	for _, listener := range c.stateListeners {
		// A listener that changed the state has already delivered the
		// newer transition; the rest must not see this one after it.
		if c.terminated || c.state != to {
			return
		}
		c.invoke("visibility.stateListener", func() { listener(from, to) })
	}
	if c.state != to {
		return
	}
	c.notify()
}

func (c *Controller) notify() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, listener := range c.listeners {
		if c.terminated || c.Snapshot() != snap {
			return
		}
		c.invoke("visibility.listener", func() { listener(snap) })
	}
}

// invoke runs a user callback, reporting a panic instead of unwinding
// through the scheduler.
func (c *Controller) invoke(op string, fn func()) {
	defer errors.RecoverWithCallback(op, func(r any) {
		c.logger.Warn("callback panicked", zap.String("callback", op), zap.Any("value", r))
		errors.Report(errors.New(op, errors.KindCallback, "", fmt.Errorf("callback panicked: %v", r)))
	})
	fn()
}

// AddListener adds a callback that fires whenever the snapshot changes.
// Returns an unsubscribe function.
func (c *Controller) AddListener(fn func(Snapshot)) func() {
	if c.terminated {
		return func() {}
	}
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	return func() {
		delete(c.listeners, id)
	}
}

// AddStateListener adds a callback that fires on every state transition.
// Returns an unsubscribe function.
func (c *Controller) AddStateListener(fn func(from, to State)) func() {
	if c.terminated {
		return func() {}
	}
	id := c.nextListenerID
	c.nextListenerID++
	c.stateListeners[id] = fn
	return func() {
		delete(c.stateListeners, id)
	}
}

package visibility_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-drift/fade/pkg/animation"
	"github.com/go-drift/fade/pkg/errors"
	fadetest "github.com/go-drift/fade/pkg/testing"
	"github.com/go-drift/fade/pkg/visibility"
)

const ms = time.Millisecond

func linearConfig(enter, exit, loop time.Duration) visibility.Config {
	return visibility.Config{
		EnterDuration: enter,
		ExitDuration:  exit,
		LoopDuration:  loop,
	}
}

func mount(t *testing.T, tester *fadetest.Tester, cfg visibility.Config, visible bool) *visibility.Controller {
	t.Helper()
	sched := tester.Scheduler()
	c, err := visibility.Mount(cfg, visible, sched, sched)
	require.NoError(t, err)
	return c
}

func TestMount_RejectsInvalidConfig(t *testing.T) {
	noop := func() {}
	tests := []struct {
		name  string
		cfg   visibility.Config
		field string
		cause error
	}{
		{"negative enter", visibility.Config{EnterDuration: -1}, "EnterDuration", errors.ErrNegativeDuration},
		{"negative exit", visibility.Config{ExitDuration: -ms}, "ExitDuration", errors.ErrNegativeDuration},
		{"negative loop", visibility.Config{LoopDuration: -ms}, "LoopDuration", errors.ErrNegativeDuration},
		{
			"negative dwell",
			visibility.Config{AutoAdvance: &visibility.AutoAdvance{Delay: -ms, OnAdvance: noop}},
			"AutoAdvance.Delay",
			errors.ErrNegativeDuration,
		},
		{
			"dwell without callback",
			visibility.Config{AutoAdvance: &visibility.AutoAdvance{Delay: ms}},
			"AutoAdvance.OnAdvance",
			errors.ErrMissingCallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := fadetest.NewTesterWithT(t)
			sched := tester.Scheduler()

			c, err := visibility.Mount(tt.cfg, true, sched, sched)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.cause)
			assert.True(t, errors.IsKind(err, errors.KindConfig))

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)

			assert.Panics(t, func() { visibility.MustMount(tt.cfg, true, sched, sched) })
			assert.Zero(t, tester.ActiveAnimations(), "failed mount must not start anything")
		})
	}
}

func TestMount_RequiresDrivers(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	_, err := visibility.Mount(visibility.OverlayConfig(), true, nil, tester.Scheduler())
	assert.ErrorIs(t, err, errors.ErrMissingDriver)
	assert.True(t, errors.IsKind(err, errors.KindLifecycle))
}

func TestMount_Hidden(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, visibility.OverlayConfig(), false)
	defer c.Unmount()

	tester.Advance(time.Second)
	assert.Equal(t, visibility.Snapshot{State: visibility.Hidden}, c.Snapshot())
	assert.Zero(t, tester.ActiveAnimations())
}

func TestController_SplashScenario(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	fired := 0
	cfg := linearConfig(300*ms, 300*ms, 1500*ms)
	cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 2000 * ms, OnAdvance: func() { fired++ }}
	c := mount(t, tester, cfg, true)

	var transitions []string
	c.AddStateListener(func(from, to visibility.State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	assert.Equal(t, visibility.Entering, c.State())
	tester.AdvanceTo(299 * ms)
	assert.Equal(t, visibility.Entering, c.State())
	tester.AdvanceTo(300 * ms)
	assert.Equal(t, visibility.Visible, c.State())
	assert.Equal(t, 1.0, c.Snapshot().EnterProgress)
	assert.Equal(t, 1, tester.PendingTimers(), "dwell armed on Visible entry")

	tester.AdvanceTo(2299 * ms)
	assert.Zero(t, fired)
	tester.AdvanceTo(2300 * ms)
	assert.Equal(t, 1, fired)
	tester.AdvanceTo(6000 * ms)
	assert.Equal(t, 1, fired, "dwell is never re-armed implicitly")
	assert.Equal(t, visibility.Visible, c.State())

	c.Unmount()
	before := c.Snapshot()
	tester.Advance(2 * time.Second)
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, []string{"entering->visible"}, transitions)
}

func TestController_HideMidEnterStartsFromCurrentProgress(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(300*ms, 300*ms, 0), true)
	defer c.Unmount()

	tester.AdvanceTo(150 * ms)
	require.Equal(t, 0.5, c.Snapshot().EnterProgress)

	var values []float64
	c.AddListener(func(s visibility.Snapshot) { values = append(values, s.EnterProgress) })

	c.SetVisible(false)
	assert.Equal(t, visibility.Exiting, c.State())
	assert.Equal(t, 1, tester.ActiveAnimations(), "enter animation cancelled before exit starts")

	tester.Pump()
	require.NotEmpty(t, values)
	assert.Equal(t, 0.5, values[0], "exit starts from the enter animation's progress")
	for _, v := range values {
		assert.LessOrEqual(t, v, 0.5)
	}

	tester.Advance(150 * ms)
	assert.InDelta(t, 0.25, c.Snapshot().EnterProgress, 1e-9)

	tester.Advance(150 * ms)
	assert.Equal(t, visibility.Snapshot{State: visibility.Hidden}, c.Snapshot())
	assert.Zero(t, tester.ActiveAnimations())
}

func TestController_ShowMidExitResumesEntering(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(200*ms, 400*ms, 1000*ms), true)
	defer c.Unmount()

	tester.AdvanceTo(200 * ms)
	require.Equal(t, visibility.Visible, c.State())
	c.Hide()
	loopAtHide := c.Snapshot().LoopProgress
	tester.Advance(100 * ms)
	assert.Equal(t, loopAtHide, c.Snapshot().LoopProgress, "loop stops while exiting")
	exitProgress := c.Snapshot().EnterProgress
	assert.InDelta(t, 0.75, exitProgress, 1e-9)

	c.Show()
	assert.Equal(t, visibility.Entering, c.State())
	tester.Pump()
	assert.Equal(t, exitProgress, c.Snapshot().EnterProgress)
	assert.Equal(t, loopAtHide, c.Snapshot().LoopProgress, "loop resumes from its last phase")
	assert.Equal(t, 2, tester.ActiveAnimations(), "one transition plus the loop")

	tester.Advance(200 * ms)
	assert.Equal(t, visibility.Visible, c.State())
}

func TestController_RepeatedIntentIsNoop(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(300*ms, 300*ms, 0), true)
	defer c.Unmount()

	tester.AdvanceTo(100 * ms)
	c.SetVisible(true)
	tester.AdvanceTo(300 * ms)
	assert.Equal(t, visibility.Visible, c.State(), "enter was not restarted")
}

func TestController_AutoAdvanceWithdrawnBeforeDwell(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	fired := 0
	cfg := linearConfig(100*ms, 100*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{Delay: time.Second, OnAdvance: func() { fired++ }}
	c := mount(t, tester, cfg, true)
	defer c.Unmount()

	tester.AdvanceTo(600 * ms)
	require.Equal(t, visibility.Visible, c.State())
	c.Hide()
	assert.Zero(t, tester.PendingTimers(), "leaving Visible cancels the dwell")

	tester.AdvanceTo(5 * time.Second)
	assert.Zero(t, fired)
	assert.Equal(t, visibility.Hidden, c.State())
}

func TestController_AutoAdvanceOncePerVisibleEntry(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	fired := 0
	cfg := linearConfig(100*ms, 100*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 500 * ms, OnAdvance: func() { fired++ }}
	c := mount(t, tester, cfg, true)
	defer c.Unmount()

	tester.AdvanceTo(2 * time.Second)
	assert.Equal(t, 1, fired)

	c.Hide()
	tester.Advance(100 * ms)
	c.Show()
	tester.Advance(100 * ms)
	assert.Equal(t, visibility.Visible, c.State())
	tester.Advance(500 * ms)
	assert.Equal(t, 2, fired)
}

func TestController_AutoAdvanceHide(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	finished := 0
	c := mount(t, tester, visibility.SplashConfig(func() { finished++ }), true)
	defer c.Unmount()

	var states []visibility.State
	c.AddStateListener(func(_, to visibility.State) { states = append(states, to) })

	dwellEnd := visibility.SplashEnterDuration + visibility.SplashDwell
	tester.AdvanceTo(dwellEnd)
	assert.Equal(t, 1, finished)
	assert.Equal(t, visibility.Exiting, c.State())
	assert.False(t, c.Intent())

	tester.Advance(visibility.SplashExitDuration)
	assert.Equal(t, visibility.Hidden, c.State())
	assert.Equal(t, []visibility.State{visibility.Visible, visibility.Exiting, visibility.Hidden}, states)
	assert.Zero(t, tester.ActiveAnimations(), "loop stopped when exiting")
}

func TestController_UnmountInEveryState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *visibility.Controller, tester *fadetest.Tester)
		want  visibility.State
	}{
		{"hidden", func(c *visibility.Controller, tester *fadetest.Tester) {}, visibility.Hidden},
		{"entering", func(c *visibility.Controller, tester *fadetest.Tester) {
			c.Show()
			tester.Advance(50 * ms)
		}, visibility.Entering},
		{"visible", func(c *visibility.Controller, tester *fadetest.Tester) {
			c.Show()
			tester.Advance(150 * ms)
		}, visibility.Visible},
		{"exiting", func(c *visibility.Controller, tester *fadetest.Tester) {
			c.Show()
			tester.Advance(150 * ms)
			c.Hide()
			tester.Advance(20 * ms)
		}, visibility.Exiting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := fadetest.NewTesterWithT(t)
			fired := 0
			cfg := linearConfig(100*ms, 100*ms, 400*ms)
			cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 200 * ms, OnAdvance: func() { fired++ }}
			c := mount(t, tester, cfg, false)
			tt.setup(c, tester)
			require.Equal(t, tt.want, c.State())

			calls := 0
			c.AddListener(func(visibility.Snapshot) { calls++ })
			c.AddStateListener(func(_, _ visibility.State) { calls++ })

			c.Unmount()
			c.Unmount()
			assert.True(t, c.Terminated())
			assert.Equal(t, tt.want, c.State(), "unmount is not a transition")
			assert.Zero(t, tester.ActiveAnimations())
			assert.Zero(t, tester.PendingTimers())

			before := c.Snapshot()
			c.SetVisible(!c.Intent())
			tester.Advance(time.Second)
			assert.Equal(t, before, c.Snapshot())
			assert.Zero(t, calls)
			assert.Zero(t, fired)
		})
	}
}

func TestController_RoundTripLeavesNoHandles(t *testing.T) {
	gaps := [][3]time.Duration{
		{0, 0, 0},
		{10 * ms, 10 * ms, 10 * ms},
		{150 * ms, 50 * ms, 300 * ms},
		{time.Second, time.Second, time.Second},
	}
	for _, g := range gaps {
		tester := fadetest.NewTesterWithT(t)
		cfg := linearConfig(100*ms, 100*ms, 250*ms)
		cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 50 * ms, OnAdvance: func() {}}
		c := mount(t, tester, cfg, false)

		c.SetVisible(true)
		tester.Advance(g[0])
		c.SetVisible(false)
		tester.Advance(g[1])
		c.SetVisible(true)
		tester.Advance(g[2])
		c.Unmount()

		assert.True(t, c.Terminated(), "gaps %v", g)
		assert.Zero(t, tester.ActiveAnimations(), "gaps %v", g)
		assert.Zero(t, tester.PendingTimers(), "gaps %v", g)
	}
}

func TestController_RapidTogglingIsContinuous(t *testing.T) {
	const frame = fadetest.DefaultFrameDuration
	tester := fadetest.NewTesterWithT(t)
	enter, exit := 200*ms, 120*ms
	c := mount(t, tester, linearConfig(enter, exit, 0), false)
	defer c.Unmount()

	var values []float64
	c.AddListener(func(s visibility.Snapshot) { values = append(values, s.EnterProgress) })

	maxStep := float64(frame)/float64(min(enter, exit)) + 1e-9
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		before := c.Snapshot().EnterProgress
		c.SetVisible(!c.Intent())
		assert.LessOrEqual(t, tester.ActiveAnimations(), 1, "at most one enter/exit animation")
		assert.Equal(t, before, c.Snapshot().EnterProgress, "toggle must not move progress")

		tester.Pump()
		assert.Equal(t, before, c.Snapshot().EnterProgress, "new animation starts where the old one stopped")

		tester.Advance(time.Duration(rng.Intn(60)) * ms)
	}

	for i := 1; i < len(values); i++ {
		step := math.Abs(values[i] - values[i-1])
		require.LessOrEqual(t, step, maxStep, "jump between %v and %v", values[i-1], values[i])
	}
}

func TestController_LoopRunsWhileShown(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(100*ms, 100*ms, 400*ms), true)
	defer c.Unmount()

	tester.AdvanceTo(100 * ms)
	assert.InDelta(t, 0.25, c.Snapshot().LoopProgress, 1e-9)
	tester.AdvanceTo(500 * ms)
	assert.InDelta(t, 0.25, c.Snapshot().LoopProgress, 1e-9, "loop wraps once per period")
	assert.Equal(t, 1, tester.ActiveAnimations(), "only the loop outlives the enter animation")
}

func TestController_ZeroDurations(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(0, 0, 0), true)
	defer c.Unmount()

	assert.Equal(t, visibility.Entering, c.State(), "callbacks never run inside SetVisible")
	tester.Pump()
	assert.Equal(t, visibility.Visible, c.State())
	c.Hide()
	tester.Pump()
	assert.Equal(t, visibility.Hidden, c.State())
}

func TestController_ListenerPanicIsRecovered(t *testing.T) {
	var panics []*errors.PanicError
	var reported []*errors.Error
	old := errors.DefaultHandler
	errors.SetHandler(&recordingHandler{
		onPanic: func(p *errors.PanicError) { panics = append(panics, p) },
		onError: func(e *errors.Error) { reported = append(reported, e) },
	})
	defer errors.SetHandler(old)

	tester := fadetest.NewTesterWithT(t)
	c := mount(t, tester, linearConfig(50*ms, 50*ms, 0), false)
	defer c.Unmount()
	c.AddStateListener(func(_, to visibility.State) {
		if to == visibility.Visible {
			panic("presenter bug")
		}
	})

	c.Show()
	tester.Advance(100 * ms)
	assert.Equal(t, visibility.Visible, c.State())
	require.Len(t, panics, 1)
	assert.Equal(t, "visibility.stateListener", panics[0].Op)
	require.Len(t, reported, 1)
	assert.Equal(t, "visibility.stateListener", reported[0].Op)
	assert.True(t, errors.IsKind(reported[0], errors.KindCallback))
	assert.Contains(t, reported[0].Error(), "presenter bug")
}

func TestController_StateListenersSeeTransitionsInOrder(t *testing.T) {
	// Listener order is map order, so repeat to cover both orders.
	for range 50 {
		tester := fadetest.NewTesterWithT(t)
		c := mount(t, tester, linearConfig(50*ms, 50*ms, 0), true)

		var seen []visibility.State
		c.AddStateListener(func(_, to visibility.State) {
			if to == visibility.Visible {
				c.Hide()
			}
		})
		c.AddStateListener(func(_, to visibility.State) { seen = append(seen, to) })

		tester.Advance(50 * ms)
		require.Equal(t, visibility.Exiting, c.State())
		require.NotEmpty(t, seen)
		require.Equal(t, c.State(), seen[len(seen)-1], "transitions seen: %v", seen)
		c.Unmount()
	}
}

func TestController_ListenersSeeLatestSnapshotLast(t *testing.T) {
	for range 50 {
		tester := fadetest.NewTesterWithT(t)
		c := mount(t, tester, linearConfig(50*ms, 50*ms, 0), true)

		var last visibility.Snapshot
		c.AddListener(func(s visibility.Snapshot) {
			if s.State == visibility.Visible {
				c.Hide()
			}
		})
		c.AddListener(func(s visibility.Snapshot) { last = s })

		tester.Advance(50 * ms)
		require.Equal(t, visibility.Exiting, c.State())
		require.Equal(t, c.Snapshot(), last)
		c.Unmount()
	}
}

func TestController_AutoAdvanceRespectsIntentSetByCallback(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	var c *visibility.Controller
	cfg := linearConfig(50*ms, 50*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{
		Delay: 100 * ms,
		Hide:  true,
		OnAdvance: func() {
			c.Hide()
			c.Show()
		},
	}
	c = mount(t, tester, cfg, true)
	defer c.Unmount()

	tester.Advance(150 * ms)
	assert.True(t, c.Intent(), "the callback's own Show wins over Hide")
	assert.Equal(t, visibility.Entering, c.State())
}

func TestController_AutoAdvanceCallbackMayUnmount(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	var c *visibility.Controller
	cfg := linearConfig(50*ms, 50*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{
		Delay:     100 * ms,
		Hide:      true,
		OnAdvance: func() { c.Unmount() },
	}
	c = mount(t, tester, cfg, true)

	tester.Advance(150 * ms)
	assert.True(t, c.Terminated())
	assert.Equal(t, visibility.Visible, c.State())
	assert.True(t, c.Intent())
}

func TestController_ListenerCanHideDuringVisibleEntry(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	fired := 0
	cfg := linearConfig(50*ms, 50*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 10 * ms, OnAdvance: func() { fired++ }}
	c := mount(t, tester, cfg, true)
	defer c.Unmount()
	c.AddStateListener(func(_, to visibility.State) {
		if to == visibility.Visible {
			c.Hide()
		}
	})

	tester.Advance(50 * ms)
	assert.Equal(t, visibility.Exiting, c.State())
	assert.Zero(t, tester.PendingTimers(), "no dwell armed once Visible was left")
	tester.Advance(time.Second)
	assert.Zero(t, fired)
}

func TestController_IgnoresLateCallbacks(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	rec := newRecordingDriver(tester.Scheduler())
	fired := 0
	cfg := linearConfig(100*ms, 100*ms, 0)
	cfg.AutoAdvance = &visibility.AutoAdvance{Delay: 100 * ms, OnAdvance: func() { fired++ }}
	c, err := visibility.Mount(cfg, true, rec, rec)
	require.NoError(t, err)
	defer c.Unmount()

	enter := rec.lastComplete
	tester.Advance(50 * ms)
	c.Hide()

	// The scheduler will never deliver it, but a driver racing its own
	// cancellation might.
	enter()
	assert.Equal(t, visibility.Exiting, c.State(), "completion of a cancelled enter is ignored")
	assert.Zero(t, tester.PendingTimers())

	c.Show()
	tester.Advance(100 * ms)
	require.Equal(t, visibility.Visible, c.State())
	dwell := rec.lastTimer
	c.Hide()
	dwell()
	assert.Zero(t, fired, "a cancelled dwell timer does nothing")
}

func TestController_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tester := fadetest.NewTesterWithT(t)
	sched := tester.Scheduler()
	c, err := visibility.Mount(linearConfig(10*ms, 10*ms, 0), true, sched, sched,
		visibility.WithLogger(zap.New(core)),
		visibility.WithID("splash-1"),
	)
	require.NoError(t, err)
	tester.Advance(10 * ms)
	c.Unmount()

	assert.Equal(t, "splash-1", c.ID())
	transitions := logs.FilterMessage("transition").All()
	require.Len(t, transitions, 2)
	fields := transitions[1].ContextMap()
	assert.Equal(t, "splash-1", fields["controller"])
	assert.Equal(t, "entering", fields["from"])
	assert.Equal(t, "visible", fields["to"])
	assert.Equal(t, 1, logs.FilterMessage("unmounted").Len())
}

func TestController_DefaultIDIsUnique(t *testing.T) {
	tester := fadetest.NewTesterWithT(t)
	a := mount(t, tester, visibility.OverlayConfig(), false)
	b := mount(t, tester, visibility.OverlayConfig(), false)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "hidden", visibility.Hidden.String())
	assert.Equal(t, "entering", visibility.Entering.String())
	assert.Equal(t, "visible", visibility.Visible.String())
	assert.Equal(t, "exiting", visibility.Exiting.String())
	assert.Equal(t, "State(9)", visibility.State(9).String())
}

// recordingDriver forwards to a scheduler and remembers the most recent
// raw callbacks so tests can deliver them late.
type recordingDriver struct {
	*animation.Scheduler
	lastComplete func()
	lastTimer    func()
}

func newRecordingDriver(s *animation.Scheduler) *recordingDriver {
	return &recordingDriver{Scheduler: s}
}

func (d *recordingDriver) Animate(from, to float64, dur time.Duration, curve func(float64) float64, onProgress func(float64), onComplete func()) animation.AnimationHandle {
	d.lastComplete = onComplete
	return d.Scheduler.Animate(from, to, dur, curve, onProgress, onComplete)
}

func (d *recordingDriver) ScheduleOnce(delay time.Duration, fn func()) animation.TimerHandle {
	d.lastTimer = fn
	return d.Scheduler.ScheduleOnce(delay, fn)
}

type recordingHandler struct {
	onPanic func(*errors.PanicError)
	onError func(*errors.Error)
}

func (h *recordingHandler) HandleError(e *errors.Error) {
	if h.onError != nil {
		h.onError(e)
	}
}

func (h *recordingHandler) HandlePanic(p *errors.PanicError) {
	if h.onPanic != nil {
		h.onPanic(p)
	}
}

// Package sim runs a visibility controller on a fake clock and records
// what happened, for the simulate and render commands.
package sim

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/fade/cmd/fade/internal/config"
	fadetest "github.com/go-drift/fade/pkg/testing"
	"github.com/go-drift/fade/pkg/visibility"
)

// EntryKind classifies timeline entries.
type EntryKind int

const (
	EntryEvent EntryKind = iota
	EntryTransition
	EntryAdvance
	EntrySample
)

// Entry is one line of a simulation timeline.
type Entry struct {
	At   time.Duration
	Kind EntryKind

	// Action is set for EntryEvent.
	Action Action
	// From and To are set for EntryTransition.
	From, To visibility.State
	// Snapshot and Appearance are set for EntrySample.
	Snapshot   visibility.Snapshot
	Appearance visibility.Appearance
}

// String formats the entry without its time.
func (e Entry) String() string {
	switch e.Kind {
	case EntryEvent:
		return e.Action.String()
	case EntryTransition:
		return fmt.Sprintf("%s -> %s", e.From, e.To)
	case EntryAdvance:
		return "auto-advance"
	case EntrySample:
		return fmt.Sprintf("%-8s enter=%.3f loop=%.3f opacity=%.2f scale=%.2f",
			e.Snapshot.State, e.Snapshot.EnterProgress, e.Snapshot.LoopProgress,
			e.Appearance.Opacity, e.Appearance.Scale)
	default:
		return fmt.Sprintf("EntryKind(%d)", int(e.Kind))
	}
}

// Options controls a run.
type Options struct {
	// Until is when the run stops. Zero means one full cycle plus a frame.
	Until time.Duration
	// Frame is the clock advance per frame. Zero means 16ms.
	Frame time.Duration
	// SampleEvery records a sample at every multiple of it, from zero to
	// Until. Zero records no samples.
	SampleEvery time.Duration
	// Logger is handed to the controller.
	Logger *zap.Logger
}

// Result is the outcome of a run.
type Result struct {
	Timeline []Entry
	// Final is the snapshot at Until (or at unmount).
	Final visibility.Snapshot
	// Unmounted reports whether the script unmounted the controller.
	Unmounted bool
	// LiveAfterUnmount counts animation and timer handles still live after
	// the controller was unmounted at the end of the run.
	LiveAfterUnmount int
}

// Filter returns the entries of the given kind.
func (r *Result) Filter(kind EntryKind) []Entry {
	var out []Entry
	for _, e := range r.Timeline {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Run mounts a hidden controller built from cfg and plays script.
func Run(cfg *config.Resolved, script []Event, opts Options) (*Result, error) {
	if opts.Until <= 0 {
		opts.Until = cfg.Cycle() + fadetest.DefaultFrameDuration
	}
	tester := fadetest.NewTester()
	tester.SetFrameDuration(opts.Frame)

	res := &Result{}
	record := func(e Entry) {
		e.At = tester.Elapsed()
		res.Timeline = append(res.Timeline, e)
	}

	vcfg := cfg.Build(func() { record(Entry{Kind: EntryAdvance}) })
	var mountOpts []visibility.Option
	if opts.Logger != nil {
		mountOpts = append(mountOpts, visibility.WithLogger(opts.Logger))
	}
	c, err := visibility.Mount(vcfg, false, tester.Scheduler(), tester.Scheduler(), mountOpts...)
	if err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	c.AddStateListener(func(from, to visibility.State) {
		record(Entry{Kind: EntryTransition, From: from, To: to})
	})
	style := cfg.Style()

	for _, stop := range stops(script, opts) {
		if res.Unmounted {
			break
		}
		tester.AdvanceTo(stop)
		for _, ev := range script {
			if ev.At != stop {
				continue
			}
			record(Entry{Kind: EntryEvent, Action: ev.Action})
			switch ev.Action {
			case ActionShow:
				c.Show()
			case ActionHide:
				c.Hide()
			case ActionUnmount:
				res.Final = c.Snapshot()
				c.Unmount()
				res.Unmounted = true
			}
		}
		if opts.SampleEvery > 0 && stop%opts.SampleEvery == 0 && stop <= opts.Until {
			snap := c.Snapshot()
			record(Entry{Kind: EntrySample, Snapshot: snap, Appearance: style.Resolve(snap)})
		}
	}

	if !res.Unmounted {
		res.Final = c.Snapshot()
		c.Unmount()
	}
	res.LiveAfterUnmount = tester.ActiveAnimations() + tester.PendingTimers()
	return res, nil
}

// stops lists every time the run must land on exactly, in order.
func stops(script []Event, opts Options) []time.Duration {
	out := []time.Duration{0, opts.Until}
	for _, ev := range script {
		if ev.At <= opts.Until {
			out = append(out, ev.At)
		}
	}
	if opts.SampleEvery > 0 {
		for t := time.Duration(0); t <= opts.Until; t += opts.SampleEvery {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Samples plays script and returns n appearances evenly spaced over
// one cycle, for rendering.
func Samples(cfg *config.Resolved, script []Event, n int) ([]Entry, error) {
	if n < 2 {
		n = 2
	}
	step := cfg.Cycle() / time.Duration(n-1)
	if step <= 0 {
		step = time.Millisecond
	}
	res, err := Run(cfg, script, Options{
		Until:       step * time.Duration(n-1),
		Frame:       time.Millisecond,
		SampleEvery: step,
	})
	if err != nil {
		return nil, err
	}
	return res.Filter(EntrySample), nil
}

package visibility

import (
	"time"

	"github.com/go-drift/fade/pkg/animation"
	"github.com/go-drift/fade/pkg/errors"
)

// Config holds the per-controller settings. It is copied at Mount and
// never changes afterwards.
type Config struct {
	// EnterDuration is the length of the enter animation. Required.
	EnterDuration time.Duration
	// ExitDuration is the length of the exit animation. Required.
	ExitDuration time.Duration
	// LoopDuration is the period of the loop animation. Zero disables it.
	LoopDuration time.Duration
	// AutoAdvance arms a dwell timer on every entry into Visible. Nil
	// disables it.
	AutoAdvance *AutoAdvance
	// EnterCurve and ExitCurve shape the enter and exit animations. Nil
	// means linear.
	EnterCurve func(float64) float64
	ExitCurve  func(float64) float64
}

// AutoAdvance configures the dwell timer.
type AutoAdvance struct {
	// Delay is how long the controller stays Visible before OnAdvance.
	Delay time.Duration
	// OnAdvance is invoked once per Visible entry when the dwell elapses.
	OnAdvance func()
	// Hide withdraws the visibility intent right after OnAdvance.
	Hide bool
}

// Validate checks the preconditions Mount enforces. Errors are of kind
// [errors.KindConfig].
func (c Config) Validate() error {
	const op = "visibility.Config.Validate"
	type field struct {
		name string
		d    time.Duration
	}
	durations := []field{
		{"EnterDuration", c.EnterDuration},
		{"ExitDuration", c.ExitDuration},
		{"LoopDuration", c.LoopDuration},
	}
	if c.AutoAdvance != nil {
		durations = append(durations, field{"AutoAdvance.Delay", c.AutoAdvance.Delay})
	}
	for _, d := range durations {
		if d.d < 0 {
			return errors.New(op, errors.KindConfig, d.name, errors.ErrNegativeDuration)
		}
	}
	if c.AutoAdvance != nil && c.AutoAdvance.OnAdvance == nil {
		return errors.New(op, errors.KindConfig, "AutoAdvance.OnAdvance", errors.ErrMissingCallback)
	}
	return nil
}

// Splash screen timings.
const (
	SplashEnterDuration = 300 * time.Millisecond
	SplashExitDuration  = 300 * time.Millisecond
	SplashLoopDuration  = 1500 * time.Millisecond
	SplashDwell         = 2000 * time.Millisecond
)

// Loading overlay timings.
const (
	OverlayEnterDuration = 200 * time.Millisecond
	OverlayExitDuration  = 200 * time.Millisecond
	OverlayLoopDuration  = 1000 * time.Millisecond
)

// SplashConfig returns the splash screen configuration: the logo eases
// in, spins, and after the dwell onFinish runs and the splash hides
// itself.
func SplashConfig(onFinish func()) Config {
	if onFinish == nil {
		onFinish = func() {}
	}
	return Config{
		EnterDuration: SplashEnterDuration,
		ExitDuration:  SplashExitDuration,
		LoopDuration:  SplashLoopDuration,
		AutoAdvance: &AutoAdvance{
			Delay:     SplashDwell,
			OnAdvance: onFinish,
			Hide:      true,
		},
		EnterCurve: animation.EaseOut,
		ExitCurve:  animation.EaseIn,
	}
}

// OverlayConfig returns the loading overlay configuration: a spinner
// faded in and out by the caller's visibility intent.
func OverlayConfig() Config {
	return Config{
		EnterDuration: OverlayEnterDuration,
		ExitDuration:  OverlayExitDuration,
		LoopDuration:  OverlayLoopDuration,
	}
}

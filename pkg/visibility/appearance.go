package visibility

import (
	"math"

	"github.com/go-drift/fade/pkg/animation"
)

// Appearance is the visual state derived from a Snapshot.
type Appearance struct {
	Opacity float64
	Scale   float64
	// Rotation is in radians.
	Rotation float64
}

// AppearanceStyle maps snapshot progress onto an Appearance.
type AppearanceStyle struct {
	Opacity  *animation.Tween[float64]
	Scale    *animation.Tween[float64]
	Rotation *animation.Tween[float64]
}

// Resolve evaluates the style for snap. A hidden snapshot is fully
// transparent whatever the tweens say.
func (st AppearanceStyle) Resolve(snap Snapshot) Appearance {
	a := Appearance{Opacity: 1, Scale: 1}
	if st.Opacity != nil {
		a.Opacity = st.Opacity.Evaluate(snap.EnterProgress)
	}
	if st.Scale != nil {
		a.Scale = st.Scale.Evaluate(snap.EnterProgress)
	}
	if st.Rotation != nil {
		a.Rotation = st.Rotation.Evaluate(snap.LoopProgress)
	}
	if !snap.Shown() {
		a.Opacity = 0
	}
	return a
}

// SplashAppearance fades the logo in while it grows from 80% to full
// size during the first 60% of the enter animation, and spins it one
// turn per loop.
func SplashAppearance() AppearanceStyle {
	scale := animation.TweenFloat64(0.8, 1)
	scale.Curve = animation.Interval(0, 0.6, animation.EaseOut)
	return AppearanceStyle{
		Opacity:  animation.TweenFloat64(0, 1),
		Scale:    scale,
		Rotation: animation.TweenFloat64(0, 2*math.Pi),
	}
}

// OverlayAppearance fades the overlay in place and spins the indicator
// one turn per loop.
func OverlayAppearance() AppearanceStyle {
	return AppearanceStyle{
		Opacity:  animation.TweenFloat64(0, 1),
		Rotation: animation.TweenFloat64(0, 2*math.Pi),
	}
}

package animation

// Tween interpolates between Begin and End values based on animation progress.
//
// Tween maps a 0-1 progress value to any value range or type. Use
// [TweenFloat64] for numbers, or create custom tweens with a Lerp function.
type Tween[T any] struct {
	// Begin is the starting value (when t = 0).
	Begin T
	// End is the ending value (when t = 1).
	End T
	// Lerp linearly interpolates between Begin and End. Receives the begin value,
	// end value, and progress t in [0, 1]. Returns the interpolated value.
	Lerp func(a, b T, t float64) T
	// Curve reshapes t before Lerp (optional).
	Curve func(float64) float64
}

// Evaluate returns the interpolated value at t (0.0 to 1.0).
func (tw *Tween[T]) Evaluate(t float64) T {
	if tw.Lerp == nil {
		return tw.End
	}
	if tw.Curve != nil {
		t = tw.Curve(t)
	}
	return tw.Lerp(tw.Begin, tw.End, t)
}

// Transform returns the interpolated value using the controller's current value.
func (tw *Tween[T]) Transform(controller *AnimationController) T {
	return tw.Evaluate(controller.Value)
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// TweenFloat64 creates a tween for float64 values.
func TweenFloat64(begin, end float64) *Tween[float64] {
	return &Tween[float64]{
		Begin: begin,
		End:   end,
		Lerp:  LerpFloat64,
	}
}

// Interval returns a curve that is 0 until begin, 1 after end, and
// follows curve (linear if nil) in between. It staggers several tweens
// driven by one progress value.
func Interval(begin, end float64, curve func(float64) float64) func(float64) float64 {
	return func(t float64) float64 {
		if end <= begin {
			if t < begin {
				return 0
			}
			return 1
		}
		t = clampUnit((t - begin) / (end - begin))
		if curve != nil {
			return curve(t)
		}
		return t
	}
}

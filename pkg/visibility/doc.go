// Package visibility implements the timed show/hide lifecycle behind
// splash screens and loading overlays.
//
// A [Controller] moves through Hidden, Entering, Visible and Exiting as
// its visibility intent changes. While entering it plays an enter
// animation and, when configured, starts a looping animation (a spinner)
// that keeps running while Visible. On every entry into Visible it may
// arm a one-shot dwell timer that calls [AutoAdvance.OnAdvance].
//
// Reversing the intent mid-animation cancels the running animation and
// starts the opposite one from the current progress, so the rendered
// value never jumps. Every animation and timer is tracked by a handle;
// callbacks from a handle that is no longer the live one are ignored.
//
// Unmount is a hard teardown: all handles are cancelled and no further
// callbacks, listeners or state changes happen.
//
// Controllers are not safe for concurrent use. Drive them, and the
// [animation.Scheduler] they use, from one goroutine, such as the one
// running an [animation.FrameLoop].
package visibility

// Package testing provides deterministic test drivers for fade.
//
// # Quick Start
//
// Create a tester, mount a controller on its scheduler, and advance time:
//
//	func TestOverlay(t *testing.T) {
//	    tester := fadetest.NewTesterWithT(t)
//	    sched := tester.Scheduler()
//	    c := visibility.MustMount(visibility.OverlayConfig(), true, sched, sched)
//	    defer c.Unmount()
//
//	    tester.Advance(200 * time.Millisecond)
//	    if c.State() != visibility.Visible {
//	        t.Errorf("state = %v", c.State())
//	    }
//	}
//
// Advance pumps one frame per [DefaultFrameDuration] and always pumps a
// final frame exactly at the target time, so progress values observed
// after Advance(d) are the values at d.
//
// NewTesterWithT fails the test if any animation or timer handle is still
// live when it ends.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import fadetest "github.com/go-drift/fade/pkg/testing"
package testing

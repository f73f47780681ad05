// Package testing provides a headless harness for flight animations.
//
// # Quick Start
//
// Create a tester, seed a layer, apply an animation and pump frames:
//
//	func TestFade(t *testing.T) {
//	    tester := flighttest.NewTesterWithT(t)
//	    tester.Set("card", "opacity", value.Scalar(0))
//	    card := tester.Layer("card")
//
//	    p := animation.NewProperty("opacity", easing.Of(easing.Linear), value.Scalar(1), time.Second, true)
//	    if err := p.Apply(card); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    tester.PumpFor(500 * time.Millisecond)
//	    if got := p.TimeProgress(); got != 0.5 {
//	        t.Errorf("progress = %v", got)
//	    }
//	}
//
// # Time
//
// The tester installs a [FakeClock] as the animation clock. Nothing moves
// unless the test advances it:
//
//	tester.Clock().Advance(100 * time.Millisecond)
//	tester.Pump()
//
// # Snapshot Testing
//
// Capture and compare the host call timeline of a layer:
//
//	snapshot := tester.CaptureSnapshot("card")
//	snapshot.MatchesFile(t, "testdata/fade.snapshot.json")
//
// Update snapshots with:
//
//	FLIGHT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import flighttest "github.com/go-drift/flight/pkg/testing"
package testing

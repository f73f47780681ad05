package animation_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/errors"
	flighttest "github.com/go-drift/flight/pkg/testing"
	"github.com/go-drift/flight/pkg/value"
)

func TestRegistry_ApplyCached(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	reg := animation.NewRegistry(tester.Layer("box"))
	seq := sequence(t, tester, linear("x", 1, 100*time.Millisecond), "box")
	reg.Cache(seq, "bounce")

	if err := reg.ApplyCached("bounce"); err != nil {
		t.Fatal(err)
	}
	if seq.Status() != animation.SequenceRunning {
		t.Errorf("Status = %v, want running", seq.Status())
	}
	if err := reg.ApplyCached("bounce"); err != nil {
		t.Fatal(err)
	}
	if plays(tester, "box") != 2 {
		t.Errorf("plays = %d, want a restart", plays(tester, "box"))
	}
	if err := reg.ApplyCached("nope"); !stderrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("unknown key err = %v", err)
	}
}

func TestRegistry_CacheReplacesAndStops(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	reg := animation.NewRegistry(tester.Layer("box"))
	first := sequence(t, tester, linear("x", 1, time.Second), "box")
	reg.Cache(first, "k")
	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	second := sequence(t, tester, linear("x", 2, time.Second), "box")
	reg.Cache(second, "k")
	if first.Status() != animation.SequenceIdle {
		t.Error("replaced sequence still running")
	}
	if got, _ := reg.Lookup("k"); got != second {
		t.Error("Lookup did not return the replacement")
	}
	reg.Remove("k")
	if _, ok := reg.Lookup("k"); ok || len(reg.Keys()) != 0 {
		t.Error("Remove left the key")
	}
}

func TestRegistry_ClosedWithLayer(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	box := tester.Layer("box")
	reg := animation.NewRegistry(box)
	seq := sequence(t, tester, linear("x", 1, time.Second), "box")
	reg.Cache(seq, "a")
	reg.Cache(seq, "b")
	if got := reg.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Keys = %v", got)
	}
	if err := reg.ApplyCached("a"); err != nil {
		t.Fatal(err)
	}

	box.Destroy()
	if !reg.Closed() {
		t.Fatal("registry not closed with its layer")
	}
	if seq.Status() != animation.SequenceIdle {
		t.Errorf("Status = %v, want idle", seq.Status())
	}
	if err := reg.ApplyCached("a"); !stderrors.Is(err, errors.ErrMissingTarget) {
		t.Errorf("err after close = %v, want missing target", err)
	}
	reg.Cache(seq, "c")
	if len(reg.Keys()) != 0 {
		t.Error("Cache after close stored a sequence")
	}
}

package animation_test

import (
	stderrors "errors"
	"math"
	"runtime"
	"testing"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/config"
	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
	flighttest "github.com/go-drift/flight/pkg/testing"
	"github.com/go-drift/flight/pkg/value"
)

func TestProperty_RedirectStartsFromPresentedValue(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	box := tester.Layer("box")

	if err := linear("x", 100, time.Second).Apply(box); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(500 * time.Millisecond)
	if got := scalar(t, tester, "box", "x"); got != 50 {
		t.Fatalf("midpoint = %v, want 50", got)
	}

	back := linear("x", 0, time.Second)
	if err := back.Apply(box); err != nil {
		t.Fatal(err)
	}
	if got := scalar(t, tester, "box", "x"); got != 50 {
		t.Errorf("value after redirect = %v, want 50", got)
	}
	if back.From() != value.Scalar(50) {
		t.Errorf("From = %v, want 50", back.From())
	}
	if _, d, _ := back.Applied(); d != time.Second {
		t.Errorf("redirect duration = %v, want 1s", d)
	}
}

func TestProperty_SameTargetScalesByRemainingDistance(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	box := tester.Layer("box")

	if err := linear("x", 100, time.Second).Apply(box); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(500 * time.Millisecond)
	again := linear("x", 100, time.Second)
	if err := again.Apply(box); err != nil {
		t.Fatal(err)
	}
	if _, d, _ := again.Applied(); d != 500*time.Millisecond {
		t.Errorf("duration = %v, want 500ms", d)
	}
}

func TestProperty_Progress(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	p := linear("x", 100, time.Second)
	if p.TimeProgress() != 0 || p.ValueProgress() != 0 {
		t.Error("progress before apply should be 0")
	}
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(250 * time.Millisecond)
	if got := p.TimeProgress(); got != 0.25 {
		t.Errorf("TimeProgress = %v, want 0.25", got)
	}
	if got := p.ValueProgress(); got != 0.25 {
		t.Errorf("ValueProgress = %v, want 0.25", got)
	}
	tester.Clock().Advance(1250 * time.Millisecond)
	if got := p.TimeProgress(); got != 1.5 {
		t.Errorf("TimeProgress past end = %v, want 1.5", got)
	}
}

func TestProperty_EachApplyIsNewInstance(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	p := linear("x", 100, time.Second)
	if p.ID() != uuid.Nil {
		t.Error("ID before apply should be nil")
	}
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	first := p.ID()
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	if p.ID() == first || p.ID() == uuid.Nil {
		t.Errorf("second apply reused id %v", first)
	}
}

func TestProperty_ReverseRoundTrip(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(0))
	p := animation.NewProperty("x", easing.Of(easing.OutQuad), value.Scalar(100), time.Second, true)
	if p.Reversed() != nil {
		t.Fatal("reverse without a start should be nil")
	}
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}

	r := p.Reversed().(*animation.Property)
	if r.From() != value.Scalar(100) || r.To() != value.Scalar(0) {
		t.Errorf("reverse = %v -> %v, want 100 -> 0", r.From(), r.To())
	}
	if r.Easing().Kind() != easing.InQuad {
		t.Errorf("reverse easing = %v, want in-quad", r.Easing())
	}
	if r.Duration() != time.Second {
		t.Errorf("reverse duration = %v", r.Duration())
	}

	rr := r.Reversed().(*animation.Property)
	if rr.From() != value.Scalar(0) || rr.To() != value.Scalar(100) {
		t.Errorf("reverse of reverse = %v -> %v, want 0 -> 100", rr.From(), rr.To())
	}
	if !rr.Easing().Equal(p.Easing()) || rr.Key() != p.Key() {
		t.Errorf("reverse of reverse easing = %v, want %v", rr.Easing(), p.Easing())
	}

	tester.Clock().Advance(time.Second)
	if err := r.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(time.Second)
	if got := scalar(t, tester, "box", "x"); got != 0 {
		t.Errorf("after reverse x = %v, want 0", got)
	}
}

func TestProperty_SpringHandOffKeepsVelocity(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "pos", value.Point{})
	box := tester.Layer("box")

	first := animation.NewProperty("pos", easing.SpringDecay(nil), value.Point{X: 100}, 0, false)
	if err := first.Apply(box); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(100 * time.Millisecond)
	want := first.Curve().Velocity(100 * time.Millisecond)
	if want[0] <= 0 {
		t.Fatalf("spring velocity = %v, want moving toward +x", want)
	}

	second := animation.NewProperty("pos", easing.SpringDecay(nil), value.Point{Y: 100}, 0, false)
	if err := second.Apply(box); err != nil {
		t.Fatal(err)
	}
	got := second.Curve().Velocity(0)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("velocity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !second.Primary() {
		t.Error("springs are always primary")
	}
}

func TestProperty_SpringHandOffTimeAdjustment(t *testing.T) {
	cfg := config.Default()
	cfg.TimeAdjustment = 40 * time.Millisecond
	prev, err := animation.SetConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { animation.SetConfig(prev) })

	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "pos", value.Point{})
	box := tester.Layer("box")

	first := animation.NewProperty("pos", easing.SpringDecay(nil), value.Point{X: 100}, 0, false)
	if err := first.Apply(box); err != nil {
		t.Fatal(err)
	}
	tester.Clock().Advance(100 * time.Millisecond)
	want := first.Curve().Velocity(60 * time.Millisecond)
	unadjusted := first.Curve().Velocity(100 * time.Millisecond)
	if math.Abs(want[0]-unadjusted[0]) < 1e-6 {
		t.Fatalf("velocity at 60ms and 100ms both %v", want[0])
	}

	second := animation.NewProperty("pos", easing.SpringDecay(nil), value.Point{Y: 100}, 0, false)
	if err := second.Apply(box); err != nil {
		t.Fatal(err)
	}
	got := second.Curve().Velocity(0)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("velocity[%d] = %v, want %v sampled 40ms earlier", i, got[i], want[i])
		}
	}
}

func TestProperty_MissingKey(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	err := linear("ghost", 1, time.Second).Apply(tester.Layer("box"))
	if !stderrors.Is(err, errors.ErrMissingTarget) {
		t.Errorf("err = %v, want missing target", err)
	}
}

func TestProperty_ExplicitFrom(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	tester.Set("box", "x", value.Scalar(40))
	p := linear("x", 100, time.Second).WithFrom(value.Scalar(0))
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	if got := scalar(t, tester, "box", "x"); got != 0 {
		t.Errorf("start = %v, want explicit 0", got)
	}
}

func TestProperty_MirrorsConfiguredKeys(t *testing.T) {
	cfg := config.Default()
	cfg.Mirror = map[string]string{"bounds": "frame"}
	prev, err := animation.SetConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { animation.SetConfig(prev) })

	tester := flighttest.NewTesterWithT(t)
	want := value.Rect{Size: value.Size{Width: 20, Height: 10}}
	tester.Set("box", "bounds", value.Rect{})
	p := animation.NewProperty("bounds", easing.Of(easing.InOutSine), want, time.Second, true)
	if err := p.Apply(tester.Layer("box")); err != nil {
		t.Fatal(err)
	}
	if v, ok := tester.Host("box").ViewValue("frame"); !ok || v != want {
		t.Errorf("frame = %v, %v; want %v", v, ok, want)
	}
	if n := tester.Host("box").Count(layer.EventMirror, "alpha"); n != 0 {
		t.Errorf("alpha mirrored %d times with custom table", n)
	}
}

func TestProperty_WeakTarget(t *testing.T) {
	tester := flighttest.NewTesterWithT(t)
	p := linear("x", 1, time.Second)
	var ref weak.Pointer[layer.Layer]
	func() {
		host := layer.NewMemoryHost(tester.Clock())
		host.Set("x", value.Scalar(0))
		l := layer.New("temp", host)
		ref = weak.Make(l)
		if err := p.Apply(l); err != nil {
			t.Fatal(err)
		}
	}()
	tester.Clock().Advance(500 * time.Millisecond)
	for i := 0; i < 5 && ref.Value() != nil; i++ {
		runtime.GC()
	}
	if ref.Value() != nil {
		t.Skip("layer was not collected")
	}
	if p.TimeProgress() != 0 || p.ValueProgress() != 0 {
		t.Errorf("progress on collected target = %v/%v, want 0/0", p.TimeProgress(), p.ValueProgress())
	}
}

package interpolate

import (
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/value"
)

func TestBuildLinear(t *testing.T) {
	ip, err := New(value.Scalar(0), value.Scalar(100), nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	r, err := ip.Build(easing.Of(easing.Linear), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if r.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", r.Duration)
	}
	if len(r.Values) != 61 {
		t.Fatalf("len(Values) = %d, want 61", len(r.Values))
	}
	if got := r.Values[30].(value.Scalar); math.Abs(float64(got)-50) > 1e-9 {
		t.Errorf("midpoint = %v, want 50", got)
	}
	if r.Values[0] != value.Scalar(0) || r.Values[60] != value.Scalar(100) {
		t.Errorf("endpoints = %v, %v", r.Values[0], r.Values[60])
	}
}

func TestSampleCount(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 2},
		{time.Millisecond, 2},
		{500 * time.Millisecond, 31},
		{time.Second, 61},
	}
	for _, tt := range tests {
		if got := SampleCount(tt.d, 60); got != tt.want {
			t.Errorf("SampleCount(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestNewTypeMismatch(t *testing.T) {
	_, err := New(value.Point{}, value.Scalar(1), nil, DefaultOptions())
	if !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("err = %v, want type mismatch", err)
	}
}

func TestRectPerAxis(t *testing.T) {
	from := value.Rect{Size: value.Size{Width: 10, Height: 10}}
	to := value.Rect{Origin: value.Point{X: 100}, Size: value.Size{Width: 10, Height: 30}}
	ip, _ := New(from, to, nil, DefaultOptions())
	r, _ := ip.Build(easing.Of(easing.Linear), time.Second)
	mid := r.Values[30].(value.Rect)
	if math.Abs(mid.Origin.X-50) > 1e-9 || mid.Origin.Y != 0 || math.Abs(mid.Size.Height-20) > 1e-9 || mid.Size.Width != 10 {
		t.Errorf("mid = %+v", mid)
	}
}

func TestRemainingDistanceScaling(t *testing.T) {
	ip, _ := New(value.Scalar(50), value.Scalar(100), value.Scalar(0), DefaultOptions())
	r, _ := ip.Build(easing.Of(easing.OutQuad), time.Second)
	if r.Duration != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", r.Duration)
	}

	// Moving away from the previous path never lengthens the animation.
	ip, _ = New(value.Scalar(-50), value.Scalar(100), value.Scalar(0), DefaultOptions())
	if r, _ = ip.Build(easing.Of(easing.OutQuad), time.Second); r.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", r.Duration)
	}

	r, _ = ip.BuildExact(easing.Of(easing.OutQuad), 300*time.Millisecond)
	if r.Duration != 300*time.Millisecond {
		t.Errorf("BuildExact Duration = %v", r.Duration)
	}
}

func TestValueProgressDominantAxis(t *testing.T) {
	ip, _ := New(value.Point{}, value.Point{X: 10, Y: 100}, nil, DefaultOptions())
	if got := ip.ValueProgress(value.Point{X: 5, Y: 25}); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("ValueProgress = %v, want 0.25", got)
	}
	if got := ip.ValueProgress(value.Scalar(3)); got != 0 {
		t.Errorf("ValueProgress of wrong kind = %v, want 0", got)
	}

	still, _ := New(value.Point{X: 1, Y: 1}, value.Point{X: 1, Y: 1}, nil, DefaultOptions())
	if got := still.ValueProgress(value.Point{X: 1, Y: 1}); got != 0 {
		t.Errorf("ValueProgress with no change = %v, want 0", got)
	}
}

func TestSpringSettles(t *testing.T) {
	ip, _ := New(value.Scalar(0), value.Scalar(100), nil, DefaultOptions())
	r, err := ip.Build(easing.SpringDecay(nil), 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Duration <= 0 || r.Duration >= 10*time.Second {
		t.Fatalf("settle = %v", r.Duration)
	}
	if r.Values[0] != value.Scalar(0) || r.Values[len(r.Values)-1] != value.Scalar(100) {
		t.Errorf("endpoints = %v, %v", r.Values[0], r.Values[len(r.Values)-1])
	}
	if got := r.Curve.At(r.Duration / 2).(value.Scalar); got <= 0 || got > 120 {
		t.Errorf("midway = %v", got)
	}
}

func TestSpringCriticalDamping(t *testing.T) {
	spec, _ := easing.SpringCustom(nil, 10, 1)
	ip, _ := New(value.Point{}, value.Point{X: 100, Y: -40}, nil, DefaultOptions())
	r, _ := ip.Build(spec, 0)
	for i, v := range r.Values {
		for _, c := range v.Components() {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				t.Fatalf("sample %d = %v", i, v)
			}
		}
	}
}

func TestSpringVelocityKindMismatch(t *testing.T) {
	ip, _ := New(value.Scalar(0), value.Scalar(1), nil, DefaultOptions())
	_, err := ip.Build(easing.SpringDecay(value.Point{X: 1}), 0)
	if !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("err = %v, want type mismatch", err)
	}
}

func TestSpringHandOffVelocity(t *testing.T) {
	a, _ := New(value.Scalar(0), value.Scalar(100), nil, DefaultOptions())
	ra, _ := a.Build(easing.SpringDecay(nil), 0)
	at := 300 * time.Millisecond
	handOff := ra.Curve.VelocityValue(at)

	b, _ := New(ra.Curve.At(at), value.Scalar(0), nil, DefaultOptions())
	rb, _ := b.Build(easing.SpringDecay(handOff), 0)

	want := ra.Curve.Velocity(at)[0]
	got := rb.Curve.Velocity(0)[0]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("velocity at splice = %v, want %v", got, want)
	}
	if want == 0 {
		t.Error("expected a moving spring at the splice")
	}
}

func TestLinearVelocity(t *testing.T) {
	ip, _ := New(value.Scalar(0), value.Scalar(100), nil, DefaultOptions())
	r, _ := ip.Build(easing.Of(easing.Linear), time.Second)
	if got := r.Curve.Velocity(500 * time.Millisecond)[0]; math.Abs(got-100) > 1e-6 {
		t.Errorf("velocity = %v, want 100", got)
	}
	if got := r.Curve.Velocity(2 * time.Second)[0]; got != 0 {
		t.Errorf("velocity after end = %v, want 0", got)
	}
}

func TestRetimeSpring(t *testing.T) {
	ip, _ := New(value.Scalar(0), value.Scalar(10), nil, DefaultOptions())
	r, _ := ip.Build(easing.SpringDecay(nil), 0)
	longer := r.Retime(r.Duration+time.Second, 60)
	if longer.Duration != r.Duration+time.Second {
		t.Errorf("Retime duration = %v", longer.Duration)
	}
	if longer.Values[len(longer.Values)-1] != value.Scalar(10) {
		t.Error("retimed spring should end at the target")
	}
	if len(longer.Values) <= len(r.Values) {
		t.Error("retimed spring should have more samples")
	}
}

func TestColorBlend(t *testing.T) {
	ip, _ := New(value.RGBA(1, 0, 0, 1), value.RGBA(0, 0, 1, 0), nil, DefaultOptions())
	r, _ := ip.Build(easing.Of(easing.Linear), time.Second)
	mid := r.Values[30].(value.Color)
	if math.Abs(mid.R-0.5) > 1e-9 || math.Abs(mid.B-0.5) > 1e-9 || math.Abs(mid.A-0.5) > 1e-9 {
		t.Errorf("mid color = %+v", mid)
	}
}

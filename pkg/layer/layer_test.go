package layer

import (
	"math"
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/value"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeAnim struct {
	values   []value.Value
	duration time.Duration
	evicted  int
	by       Animation
}

func (a *fakeAnim) Values() []value.Value   { return a.values }
func (a *fakeAnim) Duration() time.Duration { return a.duration }
func (a *fakeAnim) Evicted(by Animation) {
	a.evicted++
	a.by = by
}

func newTestLayer() (*Layer, *MemoryHost, *stepClock) {
	clock := &stepClock{t: time.Unix(1000, 0)}
	host := NewMemoryHost(clock)
	return New("box", host), host, clock
}

func ramp(d time.Duration) *fakeAnim {
	return &fakeAnim{values: []value.Value{value.Scalar(0), value.Scalar(50), value.Scalar(100)}, duration: d}
}

func TestInstallEvictsPlayingOccupant(t *testing.T) {
	l, _, clock := newTestLayer()
	a, b := ramp(time.Second), ramp(time.Second)
	l.Install("position", a)
	clock.advance(200 * time.Millisecond)
	l.Install("position", b)

	if a.evicted != 1 || a.by != b {
		t.Errorf("occupant evicted %d times by %v, want once by replacement", a.evicted, a.by)
	}
	if got, _ := l.Animation("position"); got != b {
		t.Error("slot should hold the replacement")
	}
}

func TestInstallOverFinishedEvicts(t *testing.T) {
	l, _, clock := newTestLayer()
	a := ramp(100 * time.Millisecond)
	l.Install("position", a)
	clock.advance(time.Second)
	if l.Playing("position") {
		t.Error("finished animation reported as playing")
	}
	if got, ok := l.Animation("position"); !ok || got != a {
		t.Error("finished animation should stay in its slot")
	}
	b := ramp(time.Second)
	l.Install("position", b)
	if a.evicted != 1 || a.by != b {
		t.Errorf("finished occupant evicted %d times by %v, want once by replacement", a.evicted, a.by)
	}
}

func TestReinstallSameAnimationDoesNotEvict(t *testing.T) {
	l, _, _ := newTestLayer()
	a := ramp(time.Second)
	l.Install("position", a)
	l.Install("position", a)
	if a.evicted != 0 {
		t.Errorf("reinstalled occupant evicted %d times", a.evicted)
	}
}

func TestRemoveEvicts(t *testing.T) {
	l, host, _ := newTestLayer()
	a := ramp(time.Second)
	l.Install("opacity", a)
	l.Remove("opacity")
	if a.evicted != 1 || a.by != nil {
		t.Errorf("Remove: evicted=%d by=%v", a.evicted, a.by)
	}
	if host.Count(EventCancel, "opacity") != 1 {
		t.Error("Remove should cancel host playback")
	}
	l.Remove("opacity")
	if a.evicted != 1 {
		t.Error("second Remove should be a no-op")
	}
}

func TestCommitMirrors(t *testing.T) {
	l, host, _ := newTestLayer()
	l.Commit("opacity", value.Scalar(0.5))
	l.Commit("position", value.Point{X: 1})

	if v, ok := host.ViewValue("alpha"); !ok || v != value.Scalar(0.5) {
		t.Errorf("alpha = %v, %v", v, ok)
	}
	if host.Count(EventMirror, "") != 1 {
		t.Errorf("mirror events = %d, want 1", host.Count(EventMirror, ""))
	}

	l.SetMirrors(nil)
	l.Commit("opacity", value.Scalar(0.2))
	if v, _ := host.ViewValue("alpha"); v != value.Scalar(0.5) {
		t.Error("cleared mirrors should stop the dual write")
	}
}

func TestMemoryHostPlayback(t *testing.T) {
	l, host, clock := newTestLayer()
	host.Set("opacity", value.Scalar(100))
	l.Install("opacity", ramp(time.Second))

	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 0},
		{250 * time.Millisecond, 25},
		{500 * time.Millisecond, 50},
		{900 * time.Millisecond, 90},
		{time.Second, 100},
	}
	var elapsed time.Duration
	for _, tt := range tests {
		clock.advance(tt.at - elapsed)
		elapsed = tt.at
		v, ok := l.Value("opacity")
		if !ok || math.Abs(float64(v.(value.Scalar))-tt.want) > 1e-9 {
			t.Errorf("at %v presented %v, want %v", tt.at, v, tt.want)
		}
	}
	if host.IsPlaying("opacity") {
		t.Error("playback should end after its duration")
	}
}

func TestDestroy(t *testing.T) {
	l, host, _ := newTestLayer()
	host.Set("opacity", value.Scalar(1))
	a := ramp(time.Second)
	l.Install("opacity", a)

	var order []int
	l.OnDestroy(func() { order = append(order, 1) })
	unregister := l.OnDestroy(func() { order = append(order, 2) })
	l.OnDestroy(func() { order = append(order, 3) })
	unregister()

	l.Destroy()
	l.Destroy()
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("destroy hooks ran %v, want [1 3]", order)
	}
	if a.evicted != 0 {
		t.Error("destroy should not evict")
	}
	if _, ok := l.Value("opacity"); ok {
		t.Error("destroyed layer should not report values")
	}
	before := len(host.Events())
	l.Install("opacity", ramp(time.Second))
	l.Commit("opacity", value.Scalar(0))
	if len(host.Events()) != before {
		t.Error("destroyed layer should not reach the host")
	}
	if !l.Destroyed() {
		t.Error("Destroyed() = false")
	}
}

func TestKeys(t *testing.T) {
	l, _, _ := newTestLayer()
	l.Install("b", ramp(time.Second))
	l.Install("a", ramp(time.Second))
	keys := l.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v", keys)
	}
}

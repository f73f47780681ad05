package animation

import (
	"math"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/interpolate"
	"github.com/go-drift/flight/pkg/layer"
	"github.com/go-drift/flight/pkg/value"
)

// Property animates one key of a layer toward a value.
//
// A Property is a reusable description. Every apply creates a fresh live
// instance with its own id; the instance is what occupies the layer slot.
type Property struct {
	key      string
	easing   easing.Spec
	from     value.Value
	to       value.Value
	duration time.Duration
	primary  bool

	// retrace, when set, replaces sampling with these keyframes. Reverse
	// properties built with InvertProgress retrace the forward samples.
	retrace []value.Value

	live *instance
}

// NewProperty describes an animation of key to to over duration. Primary
// properties drive their group's timing; springs always do.
func NewProperty(key string, e easing.Spec, to value.Value, duration time.Duration, primary bool) *Property {
	return &Property{key: key, easing: e, to: to, duration: duration, primary: primary}
}

// WithFrom returns a copy that starts at from instead of the presented value.
func (p *Property) WithFrom(from value.Value) *Property {
	c := *p
	c.from = from
	c.live = nil
	return &c
}

// Key returns the animated key.
func (p *Property) Key() string { return p.key }

// Easing returns the easing.
func (p *Property) Easing() easing.Spec { return p.easing }

// From returns the explicit start value, or the start captured by the last
// apply, or nil.
func (p *Property) From() value.Value {
	if p.from != nil {
		return p.from
	}
	if p.live != nil {
		return p.live.from
	}
	return nil
}

// To returns the end value.
func (p *Property) To() value.Value { return p.to }

// Duration returns the requested duration.
func (p *Property) Duration() time.Duration { return p.duration }

// Primary reports whether the property drives its group's timing.
func (p *Property) Primary() bool { return p.primary || p.easing.IsSpring() }

// ID returns the id of the live instance, or uuid.Nil before the first apply.
func (p *Property) ID() uuid.UUID {
	if p.live == nil {
		return uuid.Nil
	}
	return p.live.id
}

// Applied returns the keyframes and duration of the live instance.
func (p *Property) Applied() ([]value.Value, time.Duration, bool) {
	if p.live == nil {
		return nil, 0, false
	}
	return p.live.result.Values, p.live.result.Duration, true
}

// Curve returns the continuous path of the live instance.
func (p *Property) Curve() *interpolate.Curve {
	if p.live == nil {
		return nil
	}
	return p.live.result.Curve
}

// Apply runs the property on target as a one-member group.
func (p *Property) Apply(target *layer.Layer) error {
	return p.run(target, nil)
}

func (p *Property) run(target *layer.Layer, seq *Sequence) error {
	g := &Group{id: uuid.New(), members: []*Property{p}, policy: MaxDuration}
	return g.run(target, seq)
}

// TimeProgress is elapsed over duration for the live instance, rounded to
// hundredths. It keeps growing past 1 after the animation ends. It is 0
// before the first apply or once the target is gone.
func (p *Property) TimeProgress() float64 {
	if p.live == nil {
		return 0
	}
	return p.live.timeProgress()
}

// ValueProgress inverse-interpolates the presented value against the live
// instance's from and to. It is 0 before the first apply or once the target
// is gone.
func (p *Property) ValueProgress() float64 {
	if p.live == nil {
		return 0
	}
	return p.live.valueProgress()
}

// Reversed returns the property from its end back to its start with the
// time-reversed easing, or nil while the start is unknown.
func (p *Property) Reversed() Schedulable {
	r := p.reversed(true, false)
	if r == nil {
		return nil
	}
	return r
}

func (p *Property) reverseWith(ar Autoreverse) Schedulable {
	r := p.reversed(ar.InvertEasing, ar.InvertProgress)
	if r == nil {
		return nil
	}
	return r
}

func (p *Property) state() nodeState {
	if p.live == nil {
		return nodeState{}
	}
	return p.live.state()
}

func (p *Property) cycle() Autoreverse { return Autoreverse{} }

func (p *Property) reversed(invertEasing, retrace bool) *Property {
	from := p.From()
	if from == nil {
		return nil
	}
	e := p.easing
	if invertEasing {
		e = e.Reverse()
	}
	e = e.WithVelocity(nil)
	d := p.duration
	r := &Property{key: p.key, easing: e, from: p.to, to: from, primary: p.primary}
	if p.live != nil {
		d = p.live.result.Duration
		if retrace && len(p.live.result.Values) > 1 {
			r.retrace = reversedValues(p.live.result.Values)
		}
	}
	r.duration = d
	return r
}

// plan captures the start value and builds keyframes without touching the
// layer. A playing occupant of the key on target is the hand-off source.
func (p *Property) plan(target *layer.Layer, opts interpolate.Options, adjust time.Duration) (*instance, error) {
	const op = "animation.Property.Apply"
	from := p.from
	if from == nil {
		v, ok := target.Value(p.key)
		if !ok {
			return nil, &errors.FlightError{Op: op, Kind: errors.KindMissingTarget, Key: p.key, Err: errors.ErrMissingTarget}
		}
		from = v
	}
	if p.to == nil {
		return nil, &errors.FlightError{Op: op, Kind: errors.KindTypeMismatch, Key: p.key, Err: errors.ErrTypeMismatch}
	}

	e := p.easing
	var previous value.Value
	if old := playingInstance(target, p.key); old != nil && old.from.Kind() == from.Kind() {
		if e.IsSpring() && e.Velocity() == nil {
			elapsed := target.Now().Sub(old.start) - adjust
			e = e.WithVelocity(old.result.Curve.VelocityValue(elapsed))
		}
		if value.Equal(old.prop.to, p.to, 1e-9) {
			previous = old.from
		}
	}

	ip, err := interpolate.New(from, p.to, previous, opts)
	if err != nil {
		return nil, withKey(err, p.key)
	}
	var res interpolate.Result
	if p.retrace != nil {
		res, err = ip.BuildExact(e, p.duration)
		if err == nil && res.Duration > 0 {
			res.Values = p.retrace
		}
	} else {
		res, err = ip.Build(e, p.duration)
	}
	if err != nil {
		return nil, withKey(err, p.key)
	}
	return &instance{prop: p, from: from, easing: e, interp: ip, result: res}, nil
}

// retime forces the instance to d. Curves are resampled at d so the easing
// shape holds; springs keep their physics and are padded or cut.
func (in *instance) retime(d time.Duration, frameRate float64) error {
	if in.result.Duration == d {
		return nil
	}
	if in.prop.retrace != nil || in.easing.IsSpring() {
		in.result = in.result.Retime(d, frameRate)
		return nil
	}
	res, err := in.interp.BuildExact(in.easing, d)
	if err != nil {
		return withKey(err, in.prop.key)
	}
	in.result = res
	return nil
}

// instance is one applied run of a Property. It is what a layer slot holds.
type instance struct {
	id     uuid.UUID
	prop   *Property
	target weak.Pointer[layer.Layer]
	from   value.Value
	easing easing.Spec
	interp *interpolate.Interpolator
	result interpolate.Result
	start  time.Time
	seq    *Sequence
}

func (in *instance) Values() []value.Value   { return in.result.Values }
func (in *instance) Duration() time.Duration { return in.result.Duration }

// Evicted stops the owning sequence unless the replacement belongs to it.
func (in *instance) Evicted(by layer.Animation) {
	if in.seq == nil {
		return
	}
	if other, ok := by.(*instance); ok && other.seq == in.seq {
		return
	}
	in.seq.evicted()
}

func (in *instance) layer() *layer.Layer {
	l := in.target.Value()
	if l == nil || l.Destroyed() {
		return nil
	}
	return l
}

func (in *instance) timeProgress() float64 {
	l := in.layer()
	if l == nil {
		return 0
	}
	d := in.result.Duration
	if d <= 0 {
		return 1
	}
	raw := l.Now().Sub(in.start).Seconds() / d.Seconds()
	if raw < 0 {
		return 0
	}
	return math.Round(raw*100) / 100
}

func (in *instance) valueProgress() float64 {
	l := in.layer()
	if l == nil {
		return 0
	}
	if in.result.Duration <= 0 {
		return 1
	}
	cur, ok := l.Value(in.prop.key)
	if !ok {
		return 0
	}
	return in.interp.ValueProgress(cur)
}

func (in *instance) state() nodeState {
	l := in.layer()
	if l == nil {
		return nodeState{dead: true}
	}
	a, ok := l.Animation(in.prop.key)
	if !ok || a != layer.Animation(in) {
		return nodeState{}
	}
	return nodeState{installed: true, playing: l.Playing(in.prop.key)}
}

func playingInstance(target *layer.Layer, key string) *instance {
	if !target.Playing(key) {
		return nil
	}
	a, _ := target.Animation(key)
	in, _ := a.(*instance)
	return in
}

func reversedValues(vs []value.Value) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return out
}

func withKey(err error, key string) error {
	if fe, ok := err.(*errors.FlightError); ok && fe.Key == "" {
		c := *fe
		c.Key = key
		return &c
	}
	return err
}

// Package interpolate turns a from/to pair and an easing into a sampled
// keyframe sequence, and maps observed values back to progress.
//
// Non-spring curves are sampled at a fixed frame rate by easing normalized
// time and interpolating each component. Springs are evaluated in closed
// form from the hand-off velocity until they settle; their duration is the
// settle time, not the requested one.
package interpolate

import (
	"math"
	"time"

	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/value"
)

// Options tunes sampling and spring settling.
type Options struct {
	FrameRate      float64
	SettleEpsilon  float64
	MaxSettle      time.Duration
	VelocityStep   time.Duration
	DecayFrequency float64
	DecayDamping   float64
}

// DefaultOptions matches the engine's default configuration.
func DefaultOptions() Options {
	return Options{
		FrameRate:      60,
		SettleEpsilon:  0.001,
		MaxSettle:      10 * time.Second,
		VelocityStep:   time.Millisecond,
		DecayFrequency: easing.DefaultDecayFrequency,
		DecayDamping:   easing.DefaultDecayDamping,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if !(o.FrameRate > 0) {
		o.FrameRate = def.FrameRate
	}
	if !(o.SettleEpsilon > 0) {
		o.SettleEpsilon = def.SettleEpsilon
	}
	if o.MaxSettle <= 0 {
		o.MaxSettle = def.MaxSettle
	}
	if o.VelocityStep <= 0 {
		o.VelocityStep = def.VelocityStep
	}
	return o
}

// Interpolator interpolates between two values of one kind.
type Interpolator struct {
	from, to value.Value
	previous value.Value
	opts     Options
}

// New returns an interpolator from from to to. previous, if non-nil, is the
// start of the in-flight path being redirected; non-spring builds scale their
// duration by the share of that path still to travel.
func New(from, to, previous value.Value, opts Options) (*Interpolator, error) {
	if err := value.CheckKinds("interpolate.New", from, to); err != nil {
		return nil, err
	}
	if previous != nil && previous.Kind() != from.Kind() {
		previous = nil
	}
	return &Interpolator{from: from, to: to, previous: previous, opts: opts.normalized()}, nil
}

// From returns the start value.
func (ip *Interpolator) From() value.Value { return ip.from }

// To returns the end value.
func (ip *Interpolator) To() value.Value { return ip.to }

// Result is a built animation.
type Result struct {
	Duration time.Duration
	Values   []value.Value
	Curve    *Curve
}

// Build samples the path under e. For non-spring curves the requested
// duration is used, shortened when redirecting partway along a previous
// path. For springs the duration is the settle time.
func (ip *Interpolator) Build(e easing.Spec, requested time.Duration) (Result, error) {
	if e.IsSpring() {
		return ip.buildSpring(e)
	}
	return ip.BuildExact(e, ip.scaled(requested))
}

// BuildExact samples a non-spring curve over exactly d. Springs ignore d
// for their physics and are retimed to d.
func (ip *Interpolator) BuildExact(e easing.Spec, d time.Duration) (Result, error) {
	if e.IsSpring() {
		r, err := ip.buildSpring(e)
		if err != nil {
			return Result{}, err
		}
		return r.Retime(d, ip.opts.FrameRate), nil
	}
	if d < 0 {
		d = 0
	}
	c := &Curve{
		kind:     ip.from.Kind(),
		from:     ip.from,
		to:       ip.to,
		in:       ip.from.Components(),
		out:      ip.to.Components(),
		easing:   e,
		duration: d,
		step:     ip.opts.VelocityStep,
	}
	return Result{Duration: d, Values: c.Samples(d, ip.opts.FrameRate), Curve: c}, nil
}

func (ip *Interpolator) buildSpring(e easing.Spec) (Result, error) {
	in, out := ip.from.Components(), ip.to.Components()
	x0 := make([]float64, len(in))
	for i := range in {
		x0[i] = in[i] - out[i]
	}
	v0 := make([]float64, len(in))
	if v := e.Velocity(); v != nil {
		if v.Kind() != ip.from.Kind() {
			return Result{}, errors.New("interpolate.Build", errors.KindTypeMismatch,
				"spring velocity is %s, values are %s", v.Kind(), ip.from.Kind())
		}
		copy(v0, v.Components())
	}
	freq, damp := e.SpringParams(ip.opts.DecayFrequency, ip.opts.DecayDamping)

	scale := 1.0
	for i := range x0 {
		scale = math.Max(scale, math.Abs(x0[i]))
	}
	settle := easing.SettleTime(x0, v0, freq, damp, ip.opts.SettleEpsilon*scale,
		1/ip.opts.FrameRate, ip.opts.MaxSettle.Seconds())
	d := time.Duration(settle * float64(time.Second))

	c := &Curve{
		kind:     ip.from.Kind(),
		from:     ip.from,
		to:       ip.to,
		in:       in,
		out:      out,
		easing:   e,
		duration: d,
		step:     ip.opts.VelocityStep,
		spring:   true,
		x0:       x0,
		v0:       v0,
		freq:     freq,
		damp:     damp,
	}
	return Result{Duration: d, Values: c.Samples(d, ip.opts.FrameRate), Curve: c}, nil
}

// scaled shortens d by the remaining share of the previous path. A
// redirect with nowhere left to go keeps d.
func (ip *Interpolator) scaled(d time.Duration) time.Duration {
	if ip.previous == nil {
		return d
	}
	total, err := value.Distance(ip.previous, ip.to)
	if err != nil || total == 0 {
		return d
	}
	remaining, err := value.Distance(ip.from, ip.to)
	if err != nil || remaining == 0 {
		return d
	}
	f := value.Clamp(remaining/total, 0, 1)
	return time.Duration(float64(d) * f)
}

// ValueProgress inverse-interpolates current against from and to along the
// axis with the largest change. It returns 0 when nothing changes or the
// kinds differ. Overshooting values report progress past 1.
func (ip *Interpolator) ValueProgress(current value.Value) float64 {
	if current == nil || current.Kind() != ip.from.Kind() {
		return 0
	}
	in := ip.from.Components()
	axis, delta := value.DominantAxis(in, ip.to.Components())
	if delta == 0 {
		return 0
	}
	p := (current.Components()[axis] - in[axis]) / delta
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// Retime resamples the result's curve over d. Spring physics are unchanged;
// the final sample is always the end value.
func (r Result) Retime(d time.Duration, frameRate float64) Result {
	if r.Curve == nil {
		return r
	}
	if d < 0 {
		d = 0
	}
	return Result{Duration: d, Values: r.Curve.Samples(d, frameRate), Curve: r.Curve}
}

// SampleCount is the number of keyframes for d at frameRate, never fewer
// than 2.
func SampleCount(d time.Duration, frameRate float64) int {
	n := int(math.Round(d.Seconds()*frameRate)) + 1
	if n < 2 {
		return 2
	}
	return n
}

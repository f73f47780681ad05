package interpolate

import (
	"time"

	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/value"
)

// Curve is the continuous path behind a Result. It is immutable.
type Curve struct {
	kind     value.Kind
	from, to value.Value
	in, out  []float64
	easing   easing.Spec
	duration time.Duration
	step     time.Duration

	spring bool
	x0, v0 []float64
	freq   float64
	damp   float64
}

// Duration returns the natural length of the curve.
func (c *Curve) Duration() time.Duration { return c.duration }

// Easing returns the curve's easing.
func (c *Curve) Easing() easing.Spec { return c.easing }

// At returns the value at elapsed. Elapsed time is clamped to the curve, so
// the end value is returned once the curve is done.
func (c *Curve) At(elapsed time.Duration) value.Value {
	return c.atScaled(elapsed, c.duration)
}

// atScaled evaluates the curve as if it lasted d. Springs are physical and
// ignore d except for the end snap.
func (c *Curve) atScaled(elapsed, d time.Duration) value.Value {
	if elapsed <= 0 {
		return c.from
	}
	if elapsed >= d {
		return c.to
	}
	if c.spring {
		pos := make([]float64, len(c.x0))
		for i := range c.x0 {
			x, _ := easing.SpringState(c.x0[i], c.v0[i], c.freq, c.damp, elapsed.Seconds())
			pos[i] = c.out[i] + x
		}
		v, _ := value.FromComponents(c.kind, pos)
		return v
	}
	p := c.easing.Sample(elapsed.Seconds() / d.Seconds())
	v, err := value.Lerp(c.from, c.to, p)
	if err != nil {
		return c.to
	}
	return v
}

// Velocity returns the per-component velocity in units per second at
// elapsed. Springs are differentiated analytically; other curves by finite
// difference. Outside the curve the velocity is zero.
func (c *Curve) Velocity(elapsed time.Duration) []float64 {
	v := make([]float64, len(c.in))
	if elapsed < 0 || elapsed >= c.duration {
		return v
	}
	if c.spring {
		for i := range c.x0 {
			_, v[i] = easing.SpringState(c.x0[i], c.v0[i], c.freq, c.damp, elapsed.Seconds())
		}
		return v
	}
	lo, hi := elapsed-c.step, elapsed+c.step
	if lo < 0 {
		lo = 0
	}
	if hi > c.duration {
		hi = c.duration
	}
	if hi <= lo {
		return v
	}
	a, b := c.At(lo).Components(), c.At(hi).Components()
	dt := (hi - lo).Seconds()
	for i := range v {
		v[i] = (b[i] - a[i]) / dt
	}
	return v
}

// VelocityValue is Velocity packed as a value of the curve's kind.
func (c *Curve) VelocityValue(elapsed time.Duration) value.Value {
	v, err := value.FromComponents(c.kind, c.Velocity(elapsed))
	if err != nil {
		return value.Zero(c.kind)
	}
	return v
}

// Samples returns keyframes over d at frameRate. The first sample is the
// start value and the last is the end value.
func (c *Curve) Samples(d time.Duration, frameRate float64) []value.Value {
	n := SampleCount(d, frameRate)
	out := make([]value.Value, n)
	for i := range out {
		switch i {
		case 0:
			out[i] = c.from
		case n - 1:
			out[i] = c.to
		default:
			at := time.Duration(float64(d) * float64(i) / float64(n-1))
			out[i] = c.atScaled(at, d)
		}
	}
	return out
}

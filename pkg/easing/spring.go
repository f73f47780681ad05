package easing

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// SpringState returns the displacement from rest and the velocity of a damped
// spring after elapsed seconds, starting at displacement x0 with velocity v0.
// The result is closed form, so any elapsed time can be sampled directly.
func SpringState(x0, v0, frequency, damping, elapsed float64) (x, v float64) {
	if elapsed <= 0 {
		return x0, v0
	}
	s := harmonica.NewSpring(elapsed, frequency, damping)
	return s.Update(x0, v0, 0)
}

// SettleTime steps a spring per component at step seconds until every
// component's displacement and velocity are within eps, and returns the
// elapsed seconds. It gives up at limit seconds and returns limit.
func SettleTime(x0, v0 []float64, frequency, damping, eps, step, limit float64) float64 {
	if step <= 0 || limit <= 0 {
		return 0
	}
	x := append([]float64(nil), x0...)
	v := make([]float64, len(x0))
	copy(v, v0)

	s := harmonica.NewSpring(step, frequency, damping)
	elapsed := 0.0
	for {
		if settled(x, v, eps) {
			return elapsed
		}
		if elapsed >= limit {
			return limit
		}
		for i := range x {
			x[i], v[i] = s.Update(x[i], v[i], 0)
		}
		elapsed += step
	}
}

func settled(x, v []float64, eps float64) bool {
	for i := range x {
		if math.Abs(x[i]) > eps || math.Abs(v[i]) > eps {
			return false
		}
	}
	return true
}

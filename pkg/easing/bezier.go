package easing

import (
	"math"

	"github.com/go-drift/flight/pkg/value"
)

// cubicBezier solves the curve for x = t and returns y. The endpoints are
// fixed at (0,0) and (1,1).
func cubicBezier(x1, y1, x2, y2, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	u := t
	for range 8 {
		x := bezierAxis(x1, x2, u) - t
		if math.Abs(x) < 1e-7 {
			return bezierAxis(y1, y2, value.Clamp(u, 0, 1))
		}
		dx := bezierSlope(x1, x2, u)
		if math.Abs(dx) < 1e-7 {
			break
		}
		u -= x / dx
	}

	// Newton stalled on a flat segment; bisect over the full parameter range.
	lo, hi := 0.0, 1.0
	u = 0.5
	for range 30 {
		x := bezierAxis(x1, x2, u) - t
		if math.Abs(x) < 1e-7 {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return bezierAxis(y1, y2, u)
}

func bezierAxis(a, b, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*u*a + 3*inv*u*u*b + u*u*u
}

func bezierSlope(a, b, u float64) float64 {
	inv := 1 - u
	return 3*inv*inv*a + 6*inv*u*(b-a) + 3*u*u*(1-b)
}

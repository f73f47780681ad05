package value

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/go-drift/flight/pkg/errors"
)

// LerpNumber linearly interpolates between two numbers. t may fall outside
// [0, 1] for overshooting curves.
func LerpNumber[T constraints.Integer | constraints.Float](a, b T, t float64) T {
	switch t {
	case 0:
		return a
	case 1:
		return b
	default:
		return T(float64(a) + float64(b-a)*t)
	}
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CheckKinds returns a type-mismatch error if a and b differ in kind.
func CheckKinds(op string, a, b Value) error {
	if a == nil || b == nil {
		return errors.New(op, errors.KindTypeMismatch, "nil value")
	}
	if a.Kind() != b.Kind() {
		return errors.New(op, errors.KindTypeMismatch, "%s vs %s", a.Kind(), b.Kind())
	}
	return nil
}

// Lerp interpolates a toward b by t. Colors blend their RGB channels
// through go-colorful; every other kind interpolates per component.
func Lerp(a, b Value, t float64) (Value, error) {
	if err := CheckKinds("value.Lerp", a, b); err != nil {
		return nil, err
	}
	if ca, ok := a.(Color); ok {
		cb := b.(Color)
		return Color{Color: ca.BlendRgb(cb.Color, t), A: LerpNumber(ca.A, cb.A, t)}, nil
	}
	ac, bc := a.Components(), b.Components()
	out := make([]float64, len(ac))
	for i := range ac {
		out[i] = LerpNumber(ac[i], bc[i], t)
	}
	return FromComponents(a.Kind(), out)
}

// FromComponents rebuilds a value of kind k from its components.
func FromComponents(k Kind, c []float64) (Value, error) {
	if len(c) != k.Arity() || k == KindInvalid {
		return nil, errors.New("value.FromComponents", errors.KindTypeMismatch,
			"%s needs %d components, got %d", k, k.Arity(), len(c))
	}
	switch k {
	case KindScalar:
		return Scalar(c[0]), nil
	case KindPoint:
		return Point{X: c[0], Y: c[1]}, nil
	case KindSize:
		return Size{Width: c[0], Height: c[1]}, nil
	case KindRect:
		return Rect{Origin: Point{X: c[0], Y: c[1]}, Size: Size{Width: c[2], Height: c[3]}}, nil
	case KindTransform:
		var m Transform
		copy(m[:], c)
		return m, nil
	default:
		return RGBA(c[0], c[1], c[2], c[3]), nil
	}
}

// Zero returns the zero value of kind k, used as a resting velocity.
func Zero(k Kind) Value {
	v, err := FromComponents(k, make([]float64, k.Arity()))
	if err != nil {
		return nil
	}
	return v
}

// Distance is the Euclidean distance between a and b in component space.
func Distance(a, b Value) (float64, error) {
	if err := CheckKinds("value.Distance", a, b); err != nil {
		return 0, err
	}
	ac, bc := a.Components(), b.Components()
	var sum float64
	for i := range ac {
		d := bc[i] - ac[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// DominantAxis returns the component index with the largest absolute change
// from a to b, and that change. Ties keep the lowest index.
func DominantAxis(a, b []float64) (int, float64) {
	axis, delta := 0, 0.0
	for i := range a {
		if i >= len(b) {
			break
		}
		d := b[i] - a[i]
		if math.Abs(d) > math.Abs(delta) {
			axis, delta = i, d
		}
	}
	return axis, delta
}

// Equal reports whether a and b share a kind and every component is within eps.
func Equal(a, b Value, eps float64) bool {
	if CheckKinds("value.Equal", a, b) != nil {
		return false
	}
	ac, bc := a.Components(), b.Components()
	for i := range ac {
		if math.Abs(ac[i]-bc[i]) > eps {
			return false
		}
	}
	return true
}

// Package value defines the animatable value kinds: scalars, points, sizes,
// rects, 4x4 transforms and colors.
//
// Every value decomposes into a flat list of float64 components. The
// interpolator works on components, so a Rect moves per-axis and a Color
// blends per-channel.
package value

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/math/f64"

	"github.com/go-drift/flight/pkg/errors"
)

// Kind identifies the semantic type of a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindScalar
	KindPoint
	KindSize
	KindRect
	KindTransform
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPoint:
		return "point"
	case KindSize:
		return "size"
	case KindRect:
		return "rect"
	case KindTransform:
		return "transform"
	case KindColor:
		return "color"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Arity returns the number of components for values of kind k.
func (k Kind) Arity() int {
	switch k {
	case KindScalar:
		return 1
	case KindPoint, KindSize:
		return 2
	case KindRect, KindColor:
		return 4
	case KindTransform:
		return 16
	default:
		return 0
	}
}

// Value is an animatable value. Implementations are immutable.
type Value interface {
	Kind() Kind
	Components() []float64
}

// Scalar is a single number such as opacity or corner radius.
type Scalar float64

func (Scalar) Kind() Kind              { return KindScalar }
func (s Scalar) Components() []float64 { return []float64{float64(s)} }

// Point is a position in the target's coordinate space.
type Point struct {
	X, Y float64
}

func (Point) Kind() Kind              { return KindPoint }
func (p Point) Components() []float64 { return []float64{p.X, p.Y} }

// Size is a width and height.
type Size struct {
	Width, Height float64
}

func (Size) Kind() Kind              { return KindSize }
func (s Size) Components() []float64 { return []float64{s.Width, s.Height} }

// Rect is an origin and size.
type Rect struct {
	Origin Point
	Size   Size
}

func (Rect) Kind() Kind { return KindRect }
func (r Rect) Components() []float64 {
	return []float64{r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height}
}

// Transform is a 4x4 matrix in row-major order.
type Transform f64.Mat4

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation transform.
func Translate(x, y, z float64) Transform {
	m := Identity()
	m[3], m[7], m[11] = x, y, z
	return m
}

// Scale returns a scaling transform.
func Scale(sx, sy, sz float64) Transform {
	m := Identity()
	m[0], m[5], m[10] = sx, sy, sz
	return m
}

func (Transform) Kind() Kind { return KindTransform }
func (m Transform) Components() []float64 {
	out := make([]float64, len(m))
	copy(out, m[:])
	return out
}

// Color is an RGB color with straight alpha. Channels are in [0, 1].
type Color struct {
	colorful.Color
	A float64
}

// RGBA builds a Color from normalized channels.
func RGBA(r, g, b, a float64) Color {
	return Color{Color: colorful.Color{R: r, G: g, B: b}, A: a}
}

// Hex parses "#rrggbb" or "#rrggbbaa".
func Hex(s string) (Color, error) {
	alpha := 1.0
	if len(s) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Color{}, errors.New("value.Hex", errors.KindConfiguration, "invalid alpha in %q", s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, &errors.FlightError{Op: "value.Hex", Kind: errors.KindConfiguration, Err: err}
	}
	return Color{Color: c, A: alpha}, nil
}

func (Color) Kind() Kind              { return KindColor }
func (c Color) Components() []float64 { return []float64{c.R, c.G, c.B, c.A} }

func (c Color) String() string {
	return fmt.Sprintf("%s@%.2f", c.Hex(), c.A)
}

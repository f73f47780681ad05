// Package easing maps normalized time to interpolation progress.
//
// A [Spec] is an immutable tagged value. Curve kinds (Linear, the Penner
// families, SmoothStep, Bezier) are pure functions of t in [0, 1]. Spring
// kinds carry physical parameters and are evaluated in elapsed seconds
// through [SpringState] instead.
package easing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fogleman/ease"

	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/value"
)

// Kind is the tag of a Spec.
type Kind int

const (
	Linear Kind = iota
	InSine
	OutSine
	InOutSine
	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InQuart
	OutQuart
	InOutQuart
	InQuint
	OutQuint
	InOutQuint
	InExpo
	OutExpo
	InOutExpo
	InCirc
	OutCirc
	InOutCirc
	InBack
	OutBack
	InOutBack
	InElastic
	OutElastic
	InOutElastic
	InBounce
	OutBounce
	InOutBounce
	SmoothStep
	BezierCurve
	SpringDecayKind
	SpringCustomKind
)

// Default spring parameters. Frequencies are angular (rad/s).
const (
	DefaultDecayFrequency  = 14.0
	DefaultDecayDamping    = 0.97
	DefaultBounceFrequency = 12.0
	DefaultBounceDamping   = 0.58
)

var functions = map[Kind]ease.Function{
	Linear:       ease.Linear,
	InSine:       ease.InSine,
	OutSine:      ease.OutSine,
	InOutSine:    ease.InOutSine,
	InQuad:       ease.InQuad,
	OutQuad:      ease.OutQuad,
	InOutQuad:    ease.InOutQuad,
	InCubic:      ease.InCubic,
	OutCubic:     ease.OutCubic,
	InOutCubic:   ease.InOutCubic,
	InQuart:      ease.InQuart,
	OutQuart:     ease.OutQuart,
	InOutQuart:   ease.InOutQuart,
	InQuint:      ease.InQuint,
	OutQuint:     ease.OutQuint,
	InOutQuint:   ease.InOutQuint,
	InExpo:       ease.InExpo,
	OutExpo:      ease.OutExpo,
	InOutExpo:    ease.InOutExpo,
	InCirc:       ease.InCirc,
	OutCirc:      ease.OutCirc,
	InOutCirc:    ease.InOutCirc,
	InBack:       ease.InBack,
	OutBack:      ease.OutBack,
	InOutBack:    ease.InOutBack,
	InElastic:    ease.InElastic,
	OutElastic:   ease.OutElastic,
	InOutElastic: ease.InOutElastic,
	InBounce:     ease.InBounce,
	OutBounce:    ease.OutBounce,
	InOutBounce:  ease.InOutBounce,
	SmoothStep:   smoothStep,
}

var names = map[Kind]string{
	Linear:           "linear",
	InSine:           "in-sine",
	OutSine:          "out-sine",
	InOutSine:        "in-out-sine",
	InQuad:           "in-quad",
	OutQuad:          "out-quad",
	InOutQuad:        "in-out-quad",
	InCubic:          "in-cubic",
	OutCubic:         "out-cubic",
	InOutCubic:       "in-out-cubic",
	InQuart:          "in-quart",
	OutQuart:         "out-quart",
	InOutQuart:       "in-out-quart",
	InQuint:          "in-quint",
	OutQuint:         "out-quint",
	InOutQuint:       "in-out-quint",
	InExpo:           "in-expo",
	OutExpo:          "out-expo",
	InOutExpo:        "in-out-expo",
	InCirc:           "in-circ",
	OutCirc:          "out-circ",
	InOutCirc:        "in-out-circ",
	InBack:           "in-back",
	OutBack:          "out-back",
	InOutBack:        "in-out-back",
	InElastic:        "in-elastic",
	OutElastic:       "out-elastic",
	InOutElastic:     "in-out-elastic",
	InBounce:         "in-bounce",
	OutBounce:        "out-bounce",
	InOutBounce:      "in-out-bounce",
	SmoothStep:       "smooth-step",
	BezierCurve:      "bezier",
	SpringDecayKind:  "spring-decay",
	SpringCustomKind: "spring-custom",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Names returns every parseable kind name in sorted order.
func Names() []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Spec is an immutable easing specification.
type Spec struct {
	kind      Kind
	velocity  value.Value
	frequency float64
	damping   float64
	bezier    [4]float64
}

// Of returns the Spec for a kind with default parameters. Spring kinds get
// a resting initial velocity; BezierCurve gets CSS "ease".
func Of(k Kind) Spec {
	switch k {
	case SpringDecayKind:
		return SpringDecay(nil)
	case SpringCustomKind:
		return Spec{kind: k, frequency: DefaultBounceFrequency, damping: DefaultBounceDamping}
	case BezierCurve:
		return Spec{kind: k, bezier: [4]float64{0.25, 0.1, 0.25, 1.0}}
	}
	if _, ok := functions[k]; !ok {
		return Spec{kind: Linear}
	}
	return Spec{kind: k}
}

// SpringDecay returns a spring with the engine's decay frequency and damping.
// A nil velocity starts at rest.
func SpringDecay(velocity value.Value) Spec {
	return Spec{kind: SpringDecayKind, velocity: velocity}
}

// SpringCustom returns a spring with explicit angular frequency and damping
// ratio. Both must be positive.
func SpringCustom(velocity value.Value, frequency, damping float64) (Spec, error) {
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return Spec{}, errors.New("easing.SpringCustom", errors.KindConfiguration, "frequency must be > 0, got %v", frequency)
	}
	if !(damping > 0) || math.IsInf(damping, 0) {
		return Spec{}, errors.New("easing.SpringCustom", errors.KindConfiguration, "damping ratio must be > 0, got %v", damping)
	}
	return Spec{kind: SpringCustomKind, velocity: velocity, frequency: frequency, damping: damping}, nil
}

// Bezier returns a cubic-bezier curve matching CSS cubic-bezier(). The x
// coordinates of both control points must lie in [0, 1].
func Bezier(x1, y1, x2, y2 float64) (Spec, error) {
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return Spec{}, errors.New("easing.Bezier", errors.KindConfiguration, "control x must be in [0, 1], got %v and %v", x1, x2)
	}
	return Spec{kind: BezierCurve, bezier: [4]float64{x1, y1, x2, y2}}, nil
}

// Kind returns the tag.
func (s Spec) Kind() Kind { return s.kind }

// IsSpring reports whether s is a spring.
func (s Spec) IsSpring() bool {
	return s.kind == SpringDecayKind || s.kind == SpringCustomKind
}

// IsSpring reports whether s is a spring.
func IsSpring(s Spec) bool { return s.IsSpring() }

// Velocity returns the spring's initial velocity, nil meaning at rest.
func (s Spec) Velocity() value.Value { return s.velocity }

// WithVelocity returns a copy of a spring with a new initial velocity.
// Non-spring specs are returned unchanged.
func (s Spec) WithVelocity(v value.Value) Spec {
	if !s.IsSpring() {
		return s
	}
	s.velocity = v
	return s
}

// SpringParams returns the angular frequency and damping ratio. Decay
// springs use the supplied engine defaults.
func (s Spec) SpringParams(decayFrequency, decayDamping float64) (frequency, damping float64) {
	if s.kind == SpringDecayKind {
		if decayFrequency <= 0 {
			decayFrequency = DefaultDecayFrequency
		}
		if decayDamping <= 0 {
			decayDamping = DefaultDecayDamping
		}
		return decayFrequency, decayDamping
	}
	return s.frequency, s.damping
}

// Control returns the bezier control points.
func (s Spec) Control() (x1, y1, x2, y2 float64) {
	return s.bezier[0], s.bezier[1], s.bezier[2], s.bezier[3]
}

// Sample evaluates a curve at t, clamped to [0, 1]. Springs return the
// at-rest step response with t read as elapsed seconds.
func (s Spec) Sample(t float64) float64 {
	if s.IsSpring() {
		f, d := s.SpringParams(0, 0)
		x, _ := SpringState(1, 0, f, d, t)
		return 1 - x
	}
	t = value.Clamp(t, 0, 1)
	if s.kind == BezierCurve {
		return cubicBezier(s.bezier[0], s.bezier[1], s.bezier[2], s.bezier[3], t)
	}
	fn, ok := functions[s.kind]
	if !ok {
		return t
	}
	return fn(t)
}

// Reverse returns the time-reversed curve: ease-in becomes ease-out and the
// reverse. Symmetric curves and springs are returned unchanged.
func (s Spec) Reverse() Spec {
	switch s.kind {
	case InSine, InQuad, InCubic, InQuart, InQuint, InExpo, InCirc, InBack, InElastic, InBounce:
		s.kind++
	case OutSine, OutQuad, OutCubic, OutQuart, OutQuint, OutExpo, OutCirc, OutBack, OutElastic, OutBounce:
		s.kind--
	case BezierCurve:
		x1, y1, x2, y2 := s.Control()
		s.bezier = [4]float64{1 - x2, 1 - y2, 1 - x1, 1 - y1}
	}
	return s
}

// Reverse returns the time-reversed curve of s.
func Reverse(s Spec) Spec { return s.Reverse() }

// Equal reports whether a and b describe the same curve.
func (s Spec) Equal(o Spec) bool {
	if s.kind != o.kind || s.frequency != o.frequency || s.damping != o.damping || s.bezier != o.bezier {
		return false
	}
	if s.velocity == nil || o.velocity == nil {
		return s.velocity == nil && o.velocity == nil
	}
	return value.Equal(s.velocity, o.velocity, 0)
}

func (s Spec) String() string {
	switch s.kind {
	case SpringCustomKind:
		return fmt.Sprintf("spring-custom(%g,%g)", s.frequency, s.damping)
	case BezierCurve:
		return fmt.Sprintf("bezier(%g,%g,%g,%g)", s.bezier[0], s.bezier[1], s.bezier[2], s.bezier[3])
	}
	return s.kind.String()
}

// Parse reads a kind name such as "out-quad" or "spring-decay". Custom
// springs and beziers accept arguments: "spring-custom(12,0.5)",
// "bezier(0.4,0,0.2,1)".
func Parse(name string) (Spec, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	base, args, err := splitArgs(name)
	if err != nil {
		return Spec{}, err
	}
	for k, n := range names {
		if n != base {
			continue
		}
		switch {
		case len(args) == 0:
			return Of(k), nil
		case k == SpringCustomKind && len(args) == 2:
			return SpringCustom(nil, args[0], args[1])
		case k == BezierCurve && len(args) == 4:
			return Bezier(args[0], args[1], args[2], args[3])
		default:
			return Spec{}, errors.New("easing.Parse", errors.KindConfiguration, "%s takes no %d arguments", base, len(args))
		}
	}
	return Spec{}, errors.New("easing.Parse", errors.KindConfiguration, "unknown easing %q", name)
}

func splitArgs(name string) (string, []float64, error) {
	open := strings.IndexByte(name, '(')
	if open < 0 {
		return name, nil, nil
	}
	if !strings.HasSuffix(name, ")") {
		return "", nil, errors.New("easing.Parse", errors.KindConfiguration, "unterminated arguments in %q", name)
	}
	var args []float64
	for _, part := range strings.Split(name[open+1:len(name)-1], ",") {
		var f float64
		if _, err := fmt.Sscan(strings.TrimSpace(part), &f); err != nil {
			return "", nil, errors.New("easing.Parse", errors.KindConfiguration, "bad argument %q in %q", part, name)
		}
		args = append(args, f)
	}
	return name[:open], args, nil
}

func smoothStep(t float64) float64 {
	return t * t * (3 - 2*t)
}

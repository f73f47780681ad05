// Package scenario reads simulation scripts for the flight CLI and runs
// them headless against memory hosts.
package scenario

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
	"github.com/go-drift/flight/pkg/value"
)

// SchemaVersion is the newest scenario schema this build reads.
const SchemaVersion = "v1.0.0"

// Scenario is a decoded simulation script. Sequence is optional; without
// it every group is applied at t=0 in name order.
type Scenario struct {
	Version  string                          `yaml:"version"`
	Frame    time.Duration                   `yaml:"frame,omitempty"`
	Timeout  time.Duration                   `yaml:"timeout,omitempty"`
	Sample   time.Duration                   `yaml:"sample,omitempty"`
	Layers   map[string]map[string]ValueSpec `yaml:"layers"`
	Groups   map[string]GroupSpec            `yaml:"groups"`
	Sequence *SequenceSpec                   `yaml:"sequence,omitempty"`
}

// GroupSpec describes one group.
type GroupSpec struct {
	Layer       string           `yaml:"layer"`
	Policy      string           `yaml:"policy,omitempty"`
	Autoreverse *AutoreverseSpec `yaml:"autoreverse,omitempty"`
	Properties  []PropertySpec   `yaml:"properties"`
}

// AutoreverseSpec enables autoreverse on a group.
type AutoreverseSpec struct {
	Count          int           `yaml:"count,omitempty"`
	Delay          time.Duration `yaml:"delay,omitempty"`
	InvertEasing   bool          `yaml:"invert_easing,omitempty"`
	InvertProgress bool          `yaml:"invert_progress,omitempty"`
}

// PropertySpec describes one property.
type PropertySpec struct {
	Key      string        `yaml:"key"`
	To       ValueSpec     `yaml:"to"`
	From     *ValueSpec    `yaml:"from,omitempty"`
	Easing   string        `yaml:"easing,omitempty"`
	Velocity *ValueSpec    `yaml:"velocity,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Primary  bool          `yaml:"primary,omitempty"`
}

// SequenceSpec schedules groups by name.
type SequenceSpec struct {
	Root  string     `yaml:"root"`
	Edges []EdgeSpec `yaml:"edges,omitempty"`
}

// EdgeSpec is one trigger edge between two groups.
type EdgeSpec struct {
	Parent       string  `yaml:"parent"`
	Child        string  `yaml:"child"`
	TimeRelative bool    `yaml:"time_relative,omitempty"`
	Progress     float64 `yaml:"progress"`
	OnRemoval    bool    `yaml:"on_removal,omitempty"`
}

// ValueSpec is a value written as a number, a list of numbers, a hex color
// string, or a mapping with an explicit kind:
//
//	opacity: 1
//	position: [0, 0]
//	tint: "#ff8800"
//	size: {kind: size, values: [100, 40]}
type ValueSpec struct {
	Kind   string    `yaml:"kind,omitempty"`
	Values []float64 `yaml:"values,omitempty"`
	Hex    string    `yaml:"hex,omitempty"`
}

// UnmarshalYAML accepts the short forms documented on ValueSpec.
func (v *ValueSpec) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if strings.HasPrefix(n.Value, "#") {
			v.Kind, v.Hex = "color", n.Value
			return nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		v.Values = []float64{f}
		return nil
	case yaml.SequenceNode:
		return n.Decode(&v.Values)
	case yaml.MappingNode:
		type plain ValueSpec
		return n.Decode((*plain)(v))
	default:
		return fmt.Errorf("line %d: unsupported value", n.Line)
	}
}

// Value converts the spec to an engine value. Without an explicit kind the
// component count decides: 1 scalar, 2 point, 4 rect, 16 transform.
func (v ValueSpec) Value() (value.Value, error) {
	const op = "scenario.Value"
	if v.Hex != "" {
		c, err := value.Hex(v.Hex)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	kind := value.KindInvalid
	switch strings.ToLower(v.Kind) {
	case "":
		switch len(v.Values) {
		case 1:
			kind = value.KindScalar
		case 2:
			kind = value.KindPoint
		case 4:
			kind = value.KindRect
		case 16:
			kind = value.KindTransform
		}
	case "scalar":
		kind = value.KindScalar
	case "point":
		kind = value.KindPoint
	case "size":
		kind = value.KindSize
	case "rect":
		kind = value.KindRect
	case "transform":
		kind = value.KindTransform
	case "color":
		kind = value.KindColor
	}
	if kind == value.KindInvalid {
		return nil, errors.New(op, errors.KindConfiguration, "cannot infer value kind %q from %d components", v.Kind, len(v.Values))
	}
	return value.FromComponents(kind, v.Values)
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &errors.FlightError{Op: "scenario.Parse", Kind: errors.KindConfiguration, Err: err}
	}
	if s.Frame == 0 {
		s.Frame = 16 * time.Millisecond
	}
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Second
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the schema version and every cross reference.
func (s *Scenario) Validate() error {
	const op = "scenario.Validate"
	v := s.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return errors.New(op, errors.KindConfiguration, "version %q is not a semantic version", s.Version)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return errors.New(op, errors.KindConfiguration, "unsupported scenario version %s (this build reads %s)", s.Version, semver.Major(SchemaVersion))
	}
	if s.Frame < 0 || s.Timeout < 0 || s.Sample < 0 {
		return errors.New(op, errors.KindConfiguration, "frame, timeout and sample must be >= 0")
	}
	if len(s.Groups) == 0 {
		return errors.New(op, errors.KindConfiguration, "no groups")
	}
	for _, name := range sortedKeys(s.Groups) {
		g := s.Groups[name]
		if _, ok := s.Layers[g.Layer]; !ok {
			return errors.New(op, errors.KindConfiguration, "group %s: unknown layer %q", name, g.Layer)
		}
	}
	if s.Sequence == nil {
		return nil
	}
	if _, ok := s.Groups[s.Sequence.Root]; !ok {
		return errors.New(op, errors.KindConfiguration, "sequence root %q is not a group", s.Sequence.Root)
	}
	for i, e := range s.Sequence.Edges {
		if _, ok := s.Groups[e.Parent]; !ok {
			return errors.New(op, errors.KindConfiguration, "edge %d: unknown parent %q", i, e.Parent)
		}
		if _, ok := s.Groups[e.Child]; !ok {
			return errors.New(op, errors.KindConfiguration, "edge %d: unknown child %q", i, e.Child)
		}
	}
	return nil
}

func (g GroupSpec) build() (*animation.Group, error) {
	policy := animation.MaxDuration
	if g.Policy != "" {
		p, err := animation.ParseTimingPolicy(g.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	var ar animation.Autoreverse
	if g.Autoreverse != nil {
		ar = animation.Autoreverse{
			Enabled:        true,
			Count:          g.Autoreverse.Count,
			Delay:          g.Autoreverse.Delay,
			InvertEasing:   g.Autoreverse.InvertEasing,
			InvertProgress: g.Autoreverse.InvertProgress,
		}
	}
	members := make([]*animation.Property, 0, len(g.Properties))
	for _, ps := range g.Properties {
		p, err := ps.build()
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	return animation.NewGroup(members, policy, ar)
}

func (ps PropertySpec) build() (*animation.Property, error) {
	to, err := ps.To.Value()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ps.Key, err)
	}
	e := easing.Of(easing.Linear)
	if ps.Easing != "" {
		if e, err = easing.Parse(ps.Easing); err != nil {
			return nil, fmt.Errorf("%s: %w", ps.Key, err)
		}
	}
	if ps.Velocity != nil {
		v, err := ps.Velocity.Value()
		if err != nil {
			return nil, fmt.Errorf("%s velocity: %w", ps.Key, err)
		}
		e = e.WithVelocity(v)
	}
	p := animation.NewProperty(ps.Key, e, to, ps.Duration, ps.Primary)
	if ps.From != nil {
		from, err := ps.From.Value()
		if err != nil {
			return nil, fmt.Errorf("%s from: %w", ps.Key, err)
		}
		p = p.WithFrom(from)
	}
	return p, nil
}

func (s *Scenario) seed(host *layer.MemoryHost, layerID string) error {
	values := s.Layers[layerID]
	for _, key := range sortedKeys(values) {
		v, err := values[key].Value()
		if err != nil {
			return fmt.Errorf("layer %s key %s: %w", layerID, key, err)
		}
		host.Set(key, v)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

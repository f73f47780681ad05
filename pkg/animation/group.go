package animation

import (
	"cmp"
	"slices"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
)

// Group applies properties to one layer as a unit with a shared duration.
type Group struct {
	id          uuid.UUID
	members     []*Property
	policy      TimingPolicy
	autoreverse Autoreverse

	target    weak.Pointer[layer.Layer]
	applied   bool
	instant   bool
	resolved  time.Duration
	primary   *Property
	reverse   *Group
	implicit  *Sequence
	appliedAt time.Time
}

// NewGroup builds a group. Members are ordered by key; two members may not
// share a key.
func NewGroup(members []*Property, policy TimingPolicy, ar Autoreverse) (*Group, error) {
	const op = "animation.NewGroup"
	if policy < MaxDuration || policy > AverageDuration {
		return nil, errors.New(op, errors.KindConfiguration, "unknown timing policy %d", int(policy))
	}
	if err := ar.validate(); err != nil {
		return nil, err
	}
	sorted := make([]*Property, 0, len(members))
	for _, m := range members {
		if m == nil {
			return nil, errors.New(op, errors.KindConfiguration, "nil member")
		}
		sorted = append(sorted, m)
	}
	slices.SortStableFunc(sorted, func(a, b *Property) int { return cmp.Compare(a.key, b.key) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].key == sorted[i-1].key {
			return nil, &errors.FlightError{Op: op, Kind: errors.KindConfiguration, Key: sorted[i].key,
				Err: errors.New(op, errors.KindConfiguration, "duplicate key")}
		}
	}
	return &Group{id: uuid.New(), members: sorted, policy: policy, autoreverse: ar}, nil
}

// ID returns the group's identifier.
func (g *Group) ID() uuid.UUID { return g.id }

// Members returns the properties in key order.
func (g *Group) Members() []*Property { return slices.Clone(g.members) }

// Policy returns the timing policy.
func (g *Group) Policy() TimingPolicy { return g.policy }

// Autoreverse returns the autoreverse configuration.
func (g *Group) Autoreverse() Autoreverse { return g.autoreverse }

// Duration returns the resolved duration of the last apply.
func (g *Group) Duration() time.Duration { return g.resolved }

// Primary returns the member that drives progress queries, or nil before
// the group is applied.
func (g *Group) Primary() *Property { return g.primary }

// Apply synchronizes the group against whatever occupies target. A group
// with autoreverse enabled runs in an implicit one-node sequence. A group
// without members does nothing.
func (g *Group) Apply(target *layer.Layer) error {
	if len(g.members) == 0 {
		return nil
	}
	if g.autoreverse.Enabled {
		if g.implicit != nil {
			g.implicit.Stop()
		}
		s, err := NewSequence(g, target)
		if err != nil {
			return err
		}
		g.implicit = s
		return s.Start()
	}
	return g.run(target, nil)
}

func (g *Group) run(target *layer.Layer, seq *Sequence) error {
	const op = "animation.Group.Apply"
	if len(g.members) == 0 {
		return nil
	}
	if target == nil || target.Destroyed() {
		return &errors.FlightError{Op: op, Kind: errors.KindMissingTarget, Err: errors.ErrMissingTarget}
	}

	cfg := CurrentConfig()
	opts := interpolateOptions()
	plans := make([]*instance, len(g.members))
	natural := make([]time.Duration, len(g.members))
	for i, m := range g.members {
		in, err := m.plan(target, opts, cfg.TimeAdjustment)
		if err != nil {
			return err
		}
		plans[i] = in
		natural[i] = in.result.Duration
	}

	var primaries []time.Duration
	for i, m := range g.members {
		if m.Primary() {
			primaries = append(primaries, natural[i])
		}
	}
	if len(primaries) == 0 {
		primaries = natural
	}
	resolved := ResolveDuration(g.policy, primaries)
	now := target.Now()

	if resolved <= 0 {
		for i, m := range g.members {
			in := plans[i]
			in.result = in.result.Retime(0, opts.FrameRate)
			in.bind(target, now, seq)
			m.live = in
			target.Supersede(m.key, in)
			target.Commit(m.key, m.to)
		}
		g.finish(target, 0, nil, true, now)
		return nil
	}

	for _, in := range plans {
		if err := in.retime(resolved, opts.FrameRate); err != nil {
			return err
		}
	}
	for i, m := range g.members {
		in := plans[i]
		in.bind(target, now, seq)
		m.live = in
		target.Install(m.key, in)
	}
	for _, m := range g.members {
		target.Commit(m.key, m.to)
	}
	g.finish(target, resolved, g.choosePrimary(natural, resolved), false, now)
	return nil
}

func (g *Group) finish(target *layer.Layer, resolved time.Duration, primary *Property, instant bool, now time.Time) {
	g.target = weak.Make(target)
	g.applied = true
	g.instant = instant
	g.resolved = resolved
	g.primary = primary
	g.appliedAt = now
	if g.primary == nil {
		g.primary = g.members[0]
	}
	if g.autoreverse.Enabled && g.reverse == nil {
		g.reverse = g.reversed(g.autoreverse)
	}
}

// choosePrimary returns the first primary member in key order whose natural
// duration equals resolved. Under AverageDuration no member may match; the
// primary member closest to resolved wins, again first in key order. With
// no flagged member every member counts as primary.
func (g *Group) choosePrimary(natural []time.Duration, resolved time.Duration) *Property {
	flagged := g.anyPrimary()
	for i, m := range g.members {
		if (m.Primary() || !flagged) && natural[i] == resolved {
			return m
		}
	}
	var best *Property
	var bestDiff time.Duration
	for i, m := range g.members {
		if !m.Primary() && flagged {
			continue
		}
		diff := natural[i] - resolved
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best, bestDiff = m, diff
		}
	}
	return best
}

func (g *Group) anyPrimary() bool {
	for _, m := range g.members {
		if m.Primary() {
			return true
		}
	}
	return false
}

func (g *Group) layer() *layer.Layer {
	l := g.target.Value()
	if l == nil || l.Destroyed() {
		return nil
	}
	return l
}

// TimeProgress delegates to the primary member. An applied instant group
// reports 1. It is 0 before the first apply or once the target is gone.
func (g *Group) TimeProgress() float64 {
	if !g.applied || g.layer() == nil {
		return 0
	}
	if g.instant {
		return 1
	}
	return g.primary.TimeProgress()
}

// ValueProgress delegates to the primary member like TimeProgress.
func (g *Group) ValueProgress() float64 {
	if !g.applied || g.layer() == nil {
		return 0
	}
	if g.instant {
		return 1
	}
	return g.primary.ValueProgress()
}

// Reversed returns the cached reverse group, building one from the current
// start values when none is cached. It is nil while a member's start is
// unknown.
func (g *Group) Reversed() Schedulable {
	r := g.reverseGroup(g.autoreverse)
	if r == nil {
		return nil
	}
	return r
}

func (g *Group) reverseWith(ar Autoreverse) Schedulable {
	r := g.reverseGroup(ar)
	if r == nil {
		return nil
	}
	return r
}

func (g *Group) reverseGroup(ar Autoreverse) *Group {
	if g.reverse != nil {
		return g.reverse
	}
	return g.reversed(ar)
}

// reversed swaps every member's start and end. The reverse keeps the
// policy and the autoreverse flags, but never autoreverses on its own.
func (g *Group) reversed(ar Autoreverse) *Group {
	members := make([]*Property, len(g.members))
	for i, m := range g.members {
		r := m.reversed(ar.InvertEasing, ar.InvertProgress)
		if r == nil {
			return nil
		}
		if g.applied {
			r.duration = g.resolved
		}
		members[i] = r
	}
	rar := ar
	rar.Enabled = false
	return &Group{id: uuid.New(), members: members, policy: g.policy, autoreverse: rar}
}

func (g *Group) state() nodeState {
	if !g.applied {
		return nodeState{}
	}
	if g.layer() == nil {
		return nodeState{dead: true}
	}
	var st nodeState
	for _, m := range g.members {
		ms := m.state()
		st.installed = st.installed || ms.installed
		st.playing = st.playing || ms.playing
	}
	return st
}

// cycle is disabled for an empty group, which has nothing to reverse.
func (g *Group) cycle() Autoreverse {
	if len(g.members) == 0 {
		return Autoreverse{}
	}
	return g.autoreverse
}

func (in *instance) bind(target *layer.Layer, now time.Time, seq *Sequence) {
	in.id = uuid.New()
	in.target = weak.Make(target)
	in.start = now
	in.seq = seq
}

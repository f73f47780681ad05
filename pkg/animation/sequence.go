package animation

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
)

// SequenceStatus is the state of a Sequence.
//
//	         Start()
//	Idle ─────────────► Running ◄──────────┐
//	 ▲                     │  pass done,   │
//	 │   pending empty,    │  autoreverse  │
//	 │   no autoreverse    ▼               │
//	 └─────────────── ReverseRunning ──────┘
//
// Stop returns to Idle from any state.
type SequenceStatus int

const (
	// SequenceIdle means the sequence is not polling.
	SequenceIdle SequenceStatus = iota
	// SequenceRunning means the forward pass is polling.
	SequenceRunning
	// SequenceReverseRunning means the reverse pass is polling.
	SequenceReverseRunning
)

func (s SequenceStatus) String() string {
	switch s {
	case SequenceIdle:
		return "idle"
	case SequenceRunning:
		return "running"
	case SequenceReverseRunning:
		return "reverse-running"
	default:
		return fmt.Sprintf("SequenceStatus(%d)", int(s))
	}
}

// Trigger is the condition on an edge's parent.
type Trigger struct {
	// TimeRelative compares the parent's time progress; otherwise its
	// value progress.
	TimeRelative bool
	// Progress is the threshold. Values above 1 on a time-relative edge
	// delay the child past the end of the parent.
	Progress float64
	// OnRemoval applies the child if the sequence is evicted before the
	// edge fires.
	OnRemoval bool
}

type node struct {
	item   Schedulable
	target weak.Pointer[layer.Layer]
}

type edge struct {
	parent, child int
	trigger       Trigger
}

// Node is a handle to an item scheduled in a sequence.
type Node struct {
	seq   *Sequence
	index int
}

// Item returns the scheduled item.
func (n Node) Item() Schedulable { return n.seq.nodes[n.index].item }

// Append schedules child on target to apply when n's item meets trigger.
func (n Node) Append(child Schedulable, target *layer.Layer, trigger Trigger) (Node, error) {
	return n.seq.append(n.index, child, target, trigger)
}

// SequenceOption configures a Sequence.
type SequenceOption func(*Sequence)

// WithTickerProvider polls through p instead of the package frame loop.
func WithTickerProvider(p TickerProvider) SequenceOption {
	return func(s *Sequence) { s.provider = p }
}

// Sequence applies a root item and then, frame by frame, the children whose
// trigger edges are satisfied.
//
// Nodes and their reverses live in two parallel tables indexed by node: a
// reverse is built the first time the sequence changes direction and is
// reused by every later cycle.
type Sequence struct {
	id       uuid.UUID
	nodes    []node
	twins    []Schedulable
	edges    []edge
	provider TickerProvider
	ticker   FrameTicker

	status     SequenceStatus
	reversed   bool
	pending    []int
	applied    []bool
	passes     int
	reversals  int
	generation int
	waitUntil  time.Time

	listeners      map[int]func(SequenceStatus)
	nextListenerID int
}

// NewSequence creates an idle sequence whose root runs on target.
func NewSequence(root Schedulable, target *layer.Layer, opts ...SequenceOption) (*Sequence, error) {
	const op = "animation.NewSequence"
	if isNil(root) {
		return nil, errors.New(op, errors.KindConfiguration, "nil root")
	}
	if target == nil {
		return nil, errors.New(op, errors.KindConfiguration, "nil root target")
	}
	s := &Sequence{
		id:        uuid.New(),
		nodes:     []node{{item: root, target: weak.Make(target)}},
		twins:     []Schedulable{nil},
		provider:  DefaultTickerProvider,
		listeners: make(map[int]func(SequenceStatus)),
	}
	if root == Schedulable(s) {
		return nil, errors.New(op, errors.KindConfiguration, "sequence cannot be its own root")
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the sequence's identifier.
func (s *Sequence) ID() uuid.UUID { return s.id }

// Root returns the root node.
func (s *Sequence) Root() Node { return Node{seq: s, index: 0} }

// AddEdge schedules child on target under the root.
func (s *Sequence) AddEdge(child Schedulable, target *layer.Layer, timeRelative bool, threshold float64) (Node, error) {
	return s.append(0, child, target, Trigger{TimeRelative: timeRelative, Progress: threshold})
}

// Link adds an edge between two scheduled nodes. Links that would make a
// node its own ancestor are rejected. A node with several parents applies
// once per satisfied edge.
func (s *Sequence) Link(parent, child Node, trigger Trigger) error {
	const op = "animation.Sequence.Link"
	if parent.seq != s || child.seq != s {
		return errors.New(op, errors.KindConfiguration, "node belongs to another sequence")
	}
	if err := checkTrigger(op, trigger); err != nil {
		return err
	}
	if child.index == 0 || s.reaches(child.index, parent.index) {
		return errors.New(op, errors.KindConfiguration, "edge %d->%d closes a cycle", parent.index, child.index)
	}
	for _, e := range s.edges {
		if e.parent == parent.index && e.child == child.index {
			return errors.New(op, errors.KindConfiguration, "duplicate edge %d->%d", parent.index, child.index)
		}
	}
	s.edges = append(s.edges, edge{parent: parent.index, child: child.index, trigger: trigger})
	return nil
}

func (s *Sequence) append(parent int, child Schedulable, target *layer.Layer, trigger Trigger) (Node, error) {
	const op = "animation.Sequence.AddEdge"
	if isNil(child) {
		return Node{}, errors.New(op, errors.KindConfiguration, "nil child")
	}
	if target == nil {
		return Node{}, errors.New(op, errors.KindConfiguration, "nil target")
	}
	if err := checkTrigger(op, trigger); err != nil {
		return Node{}, err
	}
	if child == Schedulable(s) {
		return Node{}, errors.New(op, errors.KindConfiguration, "sequence cannot contain itself")
	}
	for i, n := range s.nodes {
		if n.item != child {
			continue
		}
		if i == parent || s.reaches(i, parent) {
			return Node{}, errors.New(op, errors.KindConfiguration, "child is an ancestor of its parent")
		}
		return Node{}, errors.New(op, errors.KindConfiguration, "item already scheduled as node %d; use Link", i)
	}
	s.nodes = append(s.nodes, node{item: child, target: weak.Make(target)})
	s.twins = append(s.twins, nil)
	idx := len(s.nodes) - 1
	s.edges = append(s.edges, edge{parent: parent, child: idx, trigger: trigger})
	return Node{seq: s, index: idx}, nil
}

func checkTrigger(op string, t Trigger) error {
	if math.IsNaN(t.Progress) || math.IsInf(t.Progress, 0) || t.Progress < 0 {
		return errors.New(op, errors.KindConfiguration, "threshold must be a finite value >= 0, got %v", t.Progress)
	}
	return nil
}

// reaches reports whether to is reachable from from along edges.
func (s *Sequence) reaches(from, to int) bool {
	seen := make([]bool, len(s.nodes))
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, e := range s.edges {
			if e.parent == n {
				stack = append(stack, e.child)
			}
		}
	}
	return false
}

// Status returns the current state.
func (s *Sequence) Status() SequenceStatus { return s.status }

// Reversals returns the direction swaps since the last Start, including the
// final swap back to forward when the cycle budget runs out. It is kept
// after the sequence stops; Stop resets only the cycle budget, and the
// next Start clears both.
func (s *Sequence) Reversals() int { return s.reversals }

// Pending returns how many edges of the current pass have not fired.
func (s *Sequence) Pending() int { return len(s.pending) }

// Edges returns the number of edges.
func (s *Sequence) Edges() int { return len(s.edges) }

// AddStatusListener registers fn for status changes. The returned function
// unregisters it.
func (s *Sequence) AddStatusListener(fn func(SequenceStatus)) func() {
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

func (s *Sequence) setStatus(status SequenceStatus) {
	if s.status == status {
		return
	}
	s.status = status
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn(status)
		}
	}
}

// Start applies the root and begins polling. It is a no-op while running.
// If the root cannot be applied the sequence stays idle.
func (s *Sequence) Start() error {
	if s.status != SequenceIdle {
		return nil
	}
	s.reversed = false
	s.passes = 0
	s.reversals = 0
	s.waitUntil = time.Time{}
	s.reseed()
	s.setStatus(SequenceRunning)

	if err := s.applyRoot(); err != nil {
		s.halt()
		return err
	}
	if s.status == SequenceIdle {
		return nil
	}
	if s.ticker == nil {
		s.ticker = s.provider.CreateTicker(s.tick)
	}
	s.ticker.Start()
	return nil
}

// Stop cancels polling, drops pending edges and resets the cycle budget, so
// the next Start runs every autoreverse cycle again. It is idempotent.
func (s *Sequence) Stop() {
	if s.status == SequenceIdle {
		return
	}
	s.halt()
}

func (s *Sequence) halt() {
	if s.ticker != nil && s.ticker.IsActive() {
		s.ticker.Stop()
	}
	s.generation++
	s.pending = nil
	s.passes = 0
	s.reversed = false
	s.waitUntil = time.Time{}
	s.setStatus(SequenceIdle)
}

func (s *Sequence) reseed() {
	s.generation++
	s.pending = s.pending[:0]
	for i := range s.edges {
		s.pending = append(s.pending, i)
	}
	s.applied = make([]bool, len(s.nodes))
}

func (s *Sequence) applyRoot() error {
	s.applied[0] = true
	l := s.nodes[0].target.Value()
	if l == nil || l.Destroyed() {
		return &errors.FlightError{Op: "animation.Sequence.Start", Kind: errors.KindMissingTarget, Err: errors.ErrMissingTarget}
	}
	return s.item(0).run(l, s)
}

// item returns node i's item in the current direction.
func (s *Sequence) item(i int) Schedulable {
	if s.reversed && s.twins[i] != nil {
		return s.twins[i]
	}
	return s.nodes[i].item
}

func (s *Sequence) tick(time.Duration) {
	defer errors.Recover("animation.Sequence.tick")
	s.poll()
}

func (s *Sequence) poll() {
	if s.status == SequenceIdle {
		return
	}
	if !s.waitUntil.IsZero() {
		if s.now().Before(s.waitUntil) {
			return
		}
		s.waitUntil = time.Time{}
		s.swap()
		return
	}

	gen := s.generation
	for _, ei := range slices.Clone(s.pending) {
		if s.generation != gen {
			return
		}
		if !slices.Contains(s.pending, ei) {
			continue
		}
		e := s.edges[ei]
		if !s.eligible(e) {
			continue
		}
		s.unpend(ei)
		s.applyNode(e.child)
	}
	if s.generation == gen && len(s.pending) == 0 {
		s.finishPass()
	}
}

// settled reports whether every node applied this pass has stopped playing.
func (s *Sequence) settled() bool {
	for i, ok := range s.applied {
		if ok && s.item(i).state().playing {
			return false
		}
	}
	return true
}

// eligible reports whether e's parent meets the trigger. A parent that was
// applied this pass but no longer occupies its slot fires unconditionally;
// a value-relative parent that has finished playing does too. A parent
// whose target is gone never fires.
func (s *Sequence) eligible(e edge) bool {
	if !s.applied[e.parent] {
		return false
	}
	item := s.item(e.parent)
	st := item.state()
	switch {
	case st.dead:
		return false
	case !st.installed:
		return true
	case e.trigger.TimeRelative:
		return item.TimeProgress() >= e.trigger.Progress
	case !st.playing:
		return true
	default:
		return item.ValueProgress() >= e.trigger.Progress
	}
}

func (s *Sequence) unpend(ei int) {
	if i := slices.Index(s.pending, ei); i >= 0 {
		s.pending = slices.Delete(s.pending, i, i+1)
	}
}

// applyNode runs node i. Failures are reported, and the node still counts
// as applied so its own edges can proceed.
func (s *Sequence) applyNode(i int) {
	if i >= len(s.applied) {
		return
	}
	s.applied[i] = true
	l := s.nodes[i].target.Value()
	if l == nil || l.Destroyed() {
		errors.Report(&errors.FlightError{Op: "animation.Sequence.apply", Kind: errors.KindMissingTarget, Err: errors.ErrMissingTarget})
		return
	}
	if err := s.item(i).run(l, s); err != nil {
		errors.ReportError("animation.Sequence.apply", err)
	}
}

func (s *Sequence) finishPass() {
	ar := s.nodes[0].item.cycle()
	if !ar.Enabled {
		s.halt()
		return
	}
	if !s.settled() {
		return
	}
	s.passes++
	if ar.Count > 0 && s.passes >= 2*ar.Count {
		// The last pass ends back at the start, which counts as a swap.
		s.reversals++
		s.halt()
		return
	}
	if ar.Delay > 0 {
		s.waitUntil = s.now().Add(ar.Delay)
		return
	}
	s.swap()
}

// swap flips direction, reseeds the pending edges and applies the root of
// the new direction.
func (s *Sequence) swap() {
	ar := s.nodes[0].item.cycle()
	for i, n := range s.nodes {
		if s.twins[i] == nil {
			s.twins[i] = n.item.reverseWith(ar)
		}
	}
	s.reversed = !s.reversed
	s.reversals++
	s.reseed()
	if s.reversed {
		s.setStatus(SequenceReverseRunning)
	} else {
		s.setStatus(SequenceRunning)
	}
	if err := s.applyRoot(); err != nil {
		errors.ReportError("animation.Sequence.reverse", err)
		s.halt()
	}
}

// evicted is called when a slot held by this sequence is taken by an
// animation from elsewhere. Pending edges marked OnRemoval fire first.
func (s *Sequence) evicted() {
	if s.status == SequenceIdle {
		return
	}
	gen := s.generation
	for _, ei := range slices.Clone(s.pending) {
		if s.generation != gen {
			return
		}
		e := s.edges[ei]
		if !e.trigger.OnRemoval || !slices.Contains(s.pending, ei) {
			continue
		}
		s.unpend(ei)
		s.applyNode(e.child)
	}
	if s.generation == gen {
		s.halt()
	}
}

func (s *Sequence) now() time.Time {
	if l := s.nodes[0].target.Value(); l != nil {
		return l.Now()
	}
	return Now()
}

// Apply starts the sequence. Nested sequences run on their own targets, so
// target is ignored.
func (s *Sequence) Apply(target *layer.Layer) error { return s.Start() }

// TimeProgress reports the root's time progress in the current direction.
func (s *Sequence) TimeProgress() float64 {
	if s.status == SequenceIdle {
		return 0
	}
	return s.item(0).TimeProgress()
}

// ValueProgress reports the root's value progress in the current direction.
func (s *Sequence) ValueProgress() float64 {
	if s.status == SequenceIdle {
		return 0
	}
	return s.item(0).ValueProgress()
}

// Reversed returns the sequence itself. Sequences change direction only
// through autoreverse on their root.
func (s *Sequence) Reversed() Schedulable { return s }

func (s *Sequence) run(target *layer.Layer, parent *Sequence) error { return s.Start() }

func (s *Sequence) reverseWith(Autoreverse) Schedulable { return s }

func (s *Sequence) state() nodeState {
	running := s.status != SequenceIdle
	return nodeState{installed: running, playing: running}
}

func (s *Sequence) cycle() Autoreverse { return Autoreverse{} }

func isNil(item Schedulable) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *Property:
		return v == nil
	case *Group:
		return v == nil
	case *Sequence:
		return v == nil
	}
	return false
}

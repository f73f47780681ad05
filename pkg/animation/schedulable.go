package animation

import "github.com/go-drift/flight/pkg/layer"

// Schedulable is implemented by Property, Group and Sequence, and only by
// them. A sequence schedules any of the three through this one set of
// operations.
type Schedulable interface {
	// Apply runs the item on target.
	Apply(target *layer.Layer) error
	// TimeProgress reports elapsed time over duration, 0 when not running.
	TimeProgress() float64
	// ValueProgress reports how far the presented value has moved from
	// start to end, 0 when not running.
	ValueProgress() float64
	// Reversed returns the item played backwards, or nil when it cannot be
	// derived yet.
	Reversed() Schedulable

	run(target *layer.Layer, seq *Sequence) error
	reverseWith(ar Autoreverse) Schedulable
	state() nodeState
	cycle() Autoreverse
}

// nodeState is what a scheduler needs to know about an item's slot.
type nodeState struct {
	// installed means the item still occupies its layer slot.
	installed bool
	// playing means it is installed and within its duration.
	playing bool
	// dead means the target layer is gone.
	dead bool
}

var (
	_ Schedulable = (*Property)(nil)
	_ Schedulable = (*Group)(nil)
	_ Schedulable = (*Sequence)(nil)
)

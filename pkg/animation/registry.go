package animation

import (
	"sort"

	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
)

// Registry keeps named sequences for one layer. It is closed, and every
// sequence in it stopped, when the layer is destroyed.
type Registry struct {
	sequences  map[string]*Sequence
	unregister func()
	closed     bool
}

// NewRegistry returns an empty registry bound to target's lifetime.
func NewRegistry(target *layer.Layer) *Registry {
	r := &Registry{sequences: make(map[string]*Sequence)}
	if target != nil {
		r.unregister = target.OnDestroy(r.Close)
	}
	return r
}

// Cache stores seq under key, replacing and stopping any sequence already
// there.
func (r *Registry) Cache(seq *Sequence, key string) {
	if r.closed || seq == nil {
		return
	}
	if old, ok := r.sequences[key]; ok && old != seq {
		old.Stop()
	}
	r.sequences[key] = seq
}

// ApplyCached restarts the sequence cached under key.
func (r *Registry) ApplyCached(key string) error {
	const op = "animation.Registry.ApplyCached"
	if r.closed {
		return &errors.FlightError{Op: op, Kind: errors.KindMissingTarget, Key: key, Err: errors.ErrMissingTarget}
	}
	seq, ok := r.sequences[key]
	if !ok {
		return &errors.FlightError{Op: op, Kind: errors.KindConfiguration, Key: key,
			Err: errors.New(op, errors.KindConfiguration, "no sequence cached")}
	}
	seq.Stop()
	return seq.Start()
}

// Lookup returns the sequence cached under key.
func (r *Registry) Lookup(key string) (*Sequence, bool) {
	seq, ok := r.sequences[key]
	return seq, ok
}

// Remove stops and forgets the sequence under key.
func (r *Registry) Remove(key string) {
	if seq, ok := r.sequences[key]; ok {
		seq.Stop()
		delete(r.sequences, key)
	}
}

// Keys returns the cached keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sequences))
	for k := range r.sequences {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops every cached sequence and empties the registry. Later calls
// to Cache are ignored.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, k := range r.Keys() {
		r.sequences[k].Stop()
	}
	r.sequences = make(map[string]*Sequence)
	if r.unregister != nil {
		r.unregister()
	}
}

// Closed reports whether the registry has been closed.
func (r *Registry) Closed() bool { return r.closed }

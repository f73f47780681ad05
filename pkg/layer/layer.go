// Package layer adapts a host's animatable layer to the engine.
//
// A Host is the native side: it reports presented values, plays sampled
// keyframes, and commits model values. [Layer] wraps a Host and owns the
// one-animation-per-key slot table. Installing into an occupied slot calls
// the occupant's Evicted hook before the replacement is played, which is
// how running sequences learn that something else took over their key.
package layer

import (
	"sort"
	"time"

	"github.com/go-drift/flight/pkg/value"
)

// Host is implemented by the platform layer being animated.
type Host interface {
	// PresentedValue returns what is currently on screen for key, including
	// any running animation.
	PresentedValue(key string) (value.Value, bool)
	// Now returns the host's time base.
	Now() time.Time
	// Play starts keyframe playback for key, replacing any playback.
	Play(key string, values []value.Value, duration time.Duration)
	// Cancel stops playback for key.
	Cancel(key string)
	// Commit sets the model value for key without animation.
	Commit(key string, v value.Value)
}

// ViewMirror is implemented by hosts whose platform binds a second copy of
// some layer state on a higher-level view. Values committed to a mirrored
// key are written to both.
type ViewMirror interface {
	MirrorViewValue(key string, v value.Value)
}

// Animation is something installed in a slot.
type Animation interface {
	Values() []value.Value
	Duration() time.Duration
	// Evicted is called when the animation is removed from its slot or
	// replaced, finished or not. by is the replacement, or nil for a plain
	// removal.
	Evicted(by Animation)
}

// DefaultMirrors maps opacity onto the view's alpha.
func DefaultMirrors() map[string]string {
	return map[string]string{"opacity": "alpha"}
}

type slot struct {
	anim  Animation
	begin time.Time
}

// Layer is an animation target.
type Layer struct {
	id        string
	host      Host
	slots     map[string]slot
	mirrors   map[string]string
	destroyed bool
	onDestroy map[int]func()
	nextHook  int
}

// New wraps host as a layer identified by id.
func New(id string, host Host) *Layer {
	return &Layer{
		id:        id,
		host:      host,
		slots:     make(map[string]slot),
		mirrors:   DefaultMirrors(),
		onDestroy: make(map[int]func()),
	}
}

// ID returns the layer's identifier.
func (l *Layer) ID() string { return l.id }

// Host returns the wrapped host.
func (l *Layer) Host() Host { return l.host }

// SetMirrors replaces the layer-key to view-key mirror table.
func (l *Layer) SetMirrors(m map[string]string) {
	l.mirrors = make(map[string]string, len(m))
	for k, v := range m {
		l.mirrors[k] = v
	}
}

// Value returns the presented value for key.
func (l *Layer) Value(key string) (value.Value, bool) {
	if l.destroyed {
		return nil, false
	}
	return l.host.PresentedValue(key)
}

// Now returns the layer's time base.
func (l *Layer) Now() time.Time { return l.host.Now() }

// Install plays a on key. The previous occupant is evicted first, whether or
// not it has finished playing.
func (l *Layer) Install(key string, a Animation) {
	if l.destroyed || a == nil {
		return
	}
	if old, ok := l.slots[key]; ok && old.anim != a {
		old.anim.Evicted(a)
	}
	l.slots[key] = slot{anim: a, begin: l.host.Now()}
	l.host.Play(key, a.Values(), a.Duration())
}

// Remove cancels whatever occupies key and evicts it.
func (l *Layer) Remove(key string) {
	l.Supersede(key, nil)
}

// Supersede empties key's slot on behalf of by, which is not installed.
// It is used when a value is committed without animation. The occupant is
// evicted with by as its replacement.
func (l *Layer) Supersede(key string, by Animation) {
	old, ok := l.slots[key]
	if !ok {
		return
	}
	delete(l.slots, key)
	if l.destroyed {
		return
	}
	l.host.Cancel(key)
	if old.anim != by {
		old.anim.Evicted(by)
	}
}

// Animation returns the occupant of key. Finished animations stay in their
// slot until replaced or removed.
func (l *Layer) Animation(key string) (Animation, bool) {
	s, ok := l.slots[key]
	if !ok || l.destroyed {
		return nil, false
	}
	return s.anim, true
}

// Playing reports whether key's occupant is still within its duration.
func (l *Layer) Playing(key string) bool {
	s, ok := l.slots[key]
	return ok && !l.destroyed && l.playing(s)
}

// Began returns when key's occupant was installed.
func (l *Layer) Began(key string) (time.Time, bool) {
	s, ok := l.slots[key]
	if !ok {
		return time.Time{}, false
	}
	return s.begin, true
}

func (l *Layer) playing(s slot) bool {
	return l.host.Now().Sub(s.begin) < s.anim.Duration()
}

// Keys returns the occupied keys in sorted order.
func (l *Layer) Keys() []string {
	keys := make([]string, 0, len(l.slots))
	for k := range l.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Commit writes v as key's model value, mirroring it to the view when the
// key is mirrored and the host supports it.
func (l *Layer) Commit(key string, v value.Value) {
	if l.destroyed {
		return
	}
	l.host.Commit(key, v)
	if viewKey, ok := l.mirrors[key]; ok {
		if m, ok := l.host.(ViewMirror); ok {
			m.MirrorViewValue(viewKey, v)
		}
	}
}

// OnDestroy registers fn to run when the layer is destroyed. The returned
// function unregisters it.
func (l *Layer) OnDestroy(fn func()) func() {
	if l.destroyed {
		return func() {}
	}
	id := l.nextHook
	l.nextHook++
	l.onDestroy[id] = fn
	return func() { delete(l.onDestroy, id) }
}

// Destroy tears down the layer. Slots are dropped without eviction and
// destroy hooks run in registration order. Later calls are no-ops.
func (l *Layer) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	l.slots = make(map[string]slot)
	ids := make([]int, 0, len(l.onDestroy))
	for id := range l.onDestroy {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := l.onDestroy[id]; ok {
			fn()
		}
	}
	l.onDestroy = nil
}

// Destroyed reports whether Destroy has been called.
func (l *Layer) Destroyed() bool { return l.destroyed }

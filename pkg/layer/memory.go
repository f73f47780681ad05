package layer

import (
	"sort"
	"time"

	"github.com/go-drift/flight/pkg/value"
)

// Clock is a time source.
type Clock interface {
	Now() time.Time
}

// EventKind classifies a MemoryHost event.
type EventKind int

const (
	EventPlay EventKind = iota
	EventCancel
	EventCommit
	EventMirror
)

func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventCancel:
		return "cancel"
	case EventCommit:
		return "commit"
	case EventMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// Event records one call into a MemoryHost.
type Event struct {
	Kind     EventKind
	Key      string
	Value    value.Value
	Duration time.Duration
	At       time.Time
}

type playback struct {
	values   []value.Value
	duration time.Duration
	begin    time.Time
}

// MemoryHost is a headless Host. Playback is evaluated on demand against
// the clock: the presented value is interpolated between adjacent keyframes
// while playing, and is the model value otherwise.
type MemoryHost struct {
	clock   Clock
	model   map[string]value.Value
	view    map[string]value.Value
	playing map[string]playback
	events  []Event
}

// NewMemoryHost returns an empty host reading time from clock.
func NewMemoryHost(clock Clock) *MemoryHost {
	return &MemoryHost{
		clock:   clock,
		model:   make(map[string]value.Value),
		view:    make(map[string]value.Value),
		playing: make(map[string]playback),
	}
}

// Set seeds a model value without recording an event.
func (h *MemoryHost) Set(key string, v value.Value) {
	h.model[key] = v
}

func (h *MemoryHost) Now() time.Time { return h.clock.Now() }

func (h *MemoryHost) PresentedValue(key string) (value.Value, bool) {
	if p, ok := h.playing[key]; ok {
		if v, ok := p.at(h.clock.Now()); ok {
			return v, true
		}
	}
	v, ok := h.model[key]
	return v, ok
}

func (h *MemoryHost) Play(key string, values []value.Value, duration time.Duration) {
	now := h.clock.Now()
	h.playing[key] = playback{values: values, duration: duration, begin: now}
	h.record(Event{Kind: EventPlay, Key: key, Duration: duration, At: now})
}

func (h *MemoryHost) Cancel(key string) {
	delete(h.playing, key)
	h.record(Event{Kind: EventCancel, Key: key, At: h.clock.Now()})
}

func (h *MemoryHost) Commit(key string, v value.Value) {
	h.model[key] = v
	h.record(Event{Kind: EventCommit, Key: key, Value: v, At: h.clock.Now()})
}

// MirrorViewValue implements ViewMirror.
func (h *MemoryHost) MirrorViewValue(key string, v value.Value) {
	h.view[key] = v
	h.record(Event{Kind: EventMirror, Key: key, Value: v, At: h.clock.Now()})
}

// ModelValue returns the committed value for key.
func (h *MemoryHost) ModelValue(key string) (value.Value, bool) {
	v, ok := h.model[key]
	return v, ok
}

// ViewValue returns the mirrored view value for key.
func (h *MemoryHost) ViewValue(key string) (value.Value, bool) {
	v, ok := h.view[key]
	return v, ok
}

// IsPlaying reports whether key has playback that has not yet ended.
func (h *MemoryHost) IsPlaying(key string) bool {
	p, ok := h.playing[key]
	return ok && h.clock.Now().Sub(p.begin) < p.duration
}

// Events returns every recorded event in order.
func (h *MemoryHost) Events() []Event {
	return append([]Event(nil), h.events...)
}

// Count returns how many events of kind k were recorded for key. An empty
// key counts every key.
func (h *MemoryHost) Count(k EventKind, key string) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == k && (key == "" || e.Key == key) {
			n++
		}
	}
	return n
}

// Keys returns every key with a model value, sorted.
func (h *MemoryHost) Keys() []string {
	keys := make([]string, 0, len(h.model))
	for k := range h.model {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset clears the event log.
func (h *MemoryHost) Reset() {
	h.events = nil
}

func (h *MemoryHost) record(e Event) {
	h.events = append(h.events, e)
}

func (p playback) at(now time.Time) (value.Value, bool) {
	elapsed := now.Sub(p.begin)
	if len(p.values) == 0 || elapsed < 0 || elapsed >= p.duration {
		return nil, false
	}
	if len(p.values) == 1 {
		return p.values[0], true
	}
	pos := elapsed.Seconds() / p.duration.Seconds() * float64(len(p.values)-1)
	i := int(pos)
	if i >= len(p.values)-1 {
		return p.values[len(p.values)-1], true
	}
	v, err := value.Lerp(p.values[i], p.values[i+1], pos-float64(i))
	if err != nil {
		return p.values[i], true
	}
	return v, true
}

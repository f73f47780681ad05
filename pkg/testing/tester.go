package testing

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
	"github.com/go-drift/flight/pkg/value"
)

// FrameDuration is the frame step used by PumpFrame.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = stderrors.New("PumpAndSettle timed out: tickers still active")

// Tester drives the engine headless on a fake clock. Reported errors are
// recorded instead of logged, and layers are backed by memory hosts.
type Tester struct {
	clock       *FakeClock
	prevClock   animation.Clock
	prevHandler errors.ErrorHandler
	prevTicks   animation.TickerProvider
	provider    *CountingProvider
	hosts       map[string]*layer.MemoryHost
	layers      map[string]*layer.Layer
	order       []string
	recorder    *recordingHandler
}

// NewTester creates a tester. It replaces package state, so testers must
// not run in parallel. Call Cleanup when done, or use NewTesterWithT.
func NewTester() *Tester {
	clk := NewFakeClock()
	rec := &recordingHandler{}
	t := &Tester{
		clock:    clk,
		provider: NewCountingProvider(),
		hosts:    make(map[string]*layer.MemoryHost),
		layers:   make(map[string]*layer.Layer),
		recorder: rec,
	}
	t.prevClock = animation.SetClock(clk)
	t.prevHandler = errors.SetHandler(rec)
	t.prevTicks = animation.DefaultTickerProvider
	animation.DefaultTickerProvider = t.provider
	return t
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup stops every ticker, destroys every layer and restores the
// package clock, ticker provider and error handler.
func (t *Tester) Cleanup() {
	t.provider.StopAll()
	for _, id := range t.order {
		t.layers[id].Destroy()
	}
	t.layers = make(map[string]*layer.Layer)
	t.hosts = make(map[string]*layer.MemoryHost)
	t.order = nil
	animation.DefaultTickerProvider = t.prevTicks
	animation.SetClock(t.prevClock)
	errors.SetHandler(t.prevHandler)
}

// Clock returns the fake clock.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Provider returns the counting ticker provider used by Sequence.
func (t *Tester) Provider() *CountingProvider { return t.provider }

// Layer returns the layer named id, creating it with the configured mirror
// table on first use.
func (t *Tester) Layer(id string) *layer.Layer {
	if l, ok := t.layers[id]; ok {
		return l
	}
	host := layer.NewMemoryHost(t.clock)
	l := layer.New(id, host)
	l.SetMirrors(animation.CurrentConfig().Mirror)
	t.hosts[id] = host
	t.layers[id] = l
	t.order = append(t.order, id)
	return l
}

// Host returns the memory host behind the layer named id.
func (t *Tester) Host(id string) *layer.MemoryHost {
	t.Layer(id)
	return t.hosts[id]
}

// Set seeds a model value on the layer named id.
func (t *Tester) Set(id, key string, v value.Value) {
	t.Host(id).Set(key, v)
}

// Value returns the presented value of key on the layer named id.
func (t *Tester) Value(id, key string) value.Value {
	v, _ := t.Layer(id).Value(key)
	return v
}

// Sequence creates a sequence that polls through the tester's provider.
// NewSequence does the same while the tester is installed.
func (t *Tester) Sequence(root animation.Schedulable, target *layer.Layer) (*animation.Sequence, error) {
	return animation.NewSequence(root, target, animation.WithTickerProvider(t.provider))
}

// Pump runs one frame at the current time.
func (t *Tester) Pump() {
	animation.StepTickers()
}

// PumpFrame advances the clock by FrameDuration and runs a frame.
func (t *Tester) PumpFrame() {
	t.clock.Advance(FrameDuration)
	t.Pump()
}

// PumpFor runs frames until d has elapsed. The last frame may land short of
// d when d is not a multiple of FrameDuration; it never overshoots.
func (t *Tester) PumpFor(d time.Duration) {
	for elapsed := FrameDuration; elapsed <= d; elapsed += FrameDuration {
		t.PumpFrame()
	}
}

// PumpAndSettle runs frames until no ticker is active or timeout elapses.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		t.Pump()
		if !animation.HasActiveTickers() {
			return nil
		}
		t.clock.Advance(FrameDuration)
		elapsed += FrameDuration
	}
	return ErrSettleTimeout
}

// Errors returns the errors reported since the tester was created.
func (t *Tester) Errors() []*errors.FlightError {
	return append([]*errors.FlightError(nil), t.recorder.errors...)
}

// Panics returns the panics recovered since the tester was created.
func (t *Tester) Panics() []*errors.PanicError {
	return append([]*errors.PanicError(nil), t.recorder.panics...)
}

type recordingHandler struct {
	errors []*errors.FlightError
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.FlightError) {
	h.errors = append(h.errors, err)
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.panics = append(h.panics, err)
}

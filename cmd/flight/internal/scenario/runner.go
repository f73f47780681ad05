package scenario

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/errors"
	"github.com/go-drift/flight/pkg/layer"
	"github.com/go-drift/flight/pkg/value"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Entry is one line of the simulated timeline.
type Entry struct {
	At     time.Duration
	Layer  string
	Event  string
	Key    string
	Detail string
}

// Sample is a presented value captured at a sampling point.
type Sample struct {
	At    time.Duration
	Layer string
	Key   string
	Value value.Value
}

// Report is the outcome of a run. Settled is false when the run hit its
// timeout with animations or sequences still active.
type Report struct {
	Timeline []Entry
	Samples  []Sample
	Elapsed  time.Duration
	Settled  bool
	Errors   []string
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

type trackingProvider struct{ tickers []animation.FrameTicker }

func (p *trackingProvider) CreateTicker(cb func(time.Duration)) animation.FrameTicker {
	t := animation.NewTicker(cb)
	p.tickers = append(p.tickers, t)
	return t
}

type collector struct {
	clock  *stepClock
	report *Report
}

func (c *collector) HandleError(err *errors.FlightError) {
	c.report.Errors = append(c.report.Errors, err.Error())
	c.report.Timeline = append(c.report.Timeline, Entry{At: c.clock.now.Sub(epoch), Layer: "-", Event: "error", Detail: err.Error()})
}

func (c *collector) HandlePanic(err *errors.PanicError) {
	c.report.Errors = append(c.report.Errors, err.Error())
}

type runner struct {
	s        *Scenario
	clock    *stepClock
	report   *Report
	ids      []string
	layers   map[string]*layer.Layer
	hosts    map[string]*layer.MemoryHost
	seen     map[string]int
	groups   map[string]*boundGroup
	seq      *animation.Sequence
	provider *trackingProvider
}

// boundGroup pairs a built group with the layer it runs on.
type boundGroup struct {
	*animation.Group
	target *layer.Layer
}

// Run simulates s from t=0 until everything settles or the timeout passes.
// It swaps the package clock, ticker provider and error handler for the
// duration of the run, so runs must not overlap.
func Run(s *Scenario) (*Report, error) {
	r := &runner{
		s:        s,
		clock:    &stepClock{now: epoch},
		report:   &Report{},
		layers:   make(map[string]*layer.Layer),
		hosts:    make(map[string]*layer.MemoryHost),
		seen:     make(map[string]int),
		groups:   make(map[string]*boundGroup),
		provider: &trackingProvider{},
	}
	prevClock := animation.SetClock(r.clock)
	prevHandler := errors.SetHandler(&collector{clock: r.clock, report: r.report})
	prevProvider := animation.DefaultTickerProvider
	animation.DefaultTickerProvider = r.provider
	defer func() {
		for _, t := range r.provider.tickers {
			t.Stop()
		}
		for _, id := range r.ids {
			r.layers[id].Destroy()
		}
		animation.DefaultTickerProvider = prevProvider
		errors.SetHandler(prevHandler)
		animation.SetClock(prevClock)
	}()

	if err := r.setup(); err != nil {
		return nil, err
	}
	if err := r.start(); err != nil {
		return nil, err
	}
	r.loop()
	return r.report, nil
}

func (r *runner) setup() error {
	mirrors := animation.CurrentConfig().Mirror
	r.ids = sortedKeys(r.s.Layers)
	for _, id := range r.ids {
		host := layer.NewMemoryHost(r.clock)
		if err := r.s.seed(host, id); err != nil {
			return err
		}
		l := layer.New(id, host)
		l.SetMirrors(mirrors)
		r.layers[id] = l
		r.hosts[id] = host
	}
	for _, name := range sortedKeys(r.s.Groups) {
		spec := r.s.Groups[name]
		g, err := spec.build()
		if err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		r.groups[name] = &boundGroup{Group: g, target: r.layers[spec.Layer]}
	}
	return nil
}

func (r *runner) start() error {
	if r.s.Sequence == nil {
		for _, name := range sortedKeys(r.groups) {
			g := r.groups[name]
			if err := g.Apply(g.target); err != nil {
				return fmt.Errorf("group %s: %w", name, err)
			}
		}
		r.harvest()
		return nil
	}

	spec := r.s.Sequence
	root := r.groups[spec.Root]
	seq, err := animation.NewSequence(root.Group, root.target)
	if err != nil {
		return err
	}
	nodes := map[string]animation.Node{spec.Root: seq.Root()}
	for i, e := range spec.Edges {
		parent, ok := nodes[e.Parent]
		if !ok {
			return fmt.Errorf("edge %d: parent %q is not scheduled before it is used", i, e.Parent)
		}
		trigger := animation.Trigger{TimeRelative: e.TimeRelative, Progress: e.Progress, OnRemoval: e.OnRemoval}
		if child, ok := nodes[e.Child]; ok {
			if err := seq.Link(parent, child, trigger); err != nil {
				return fmt.Errorf("edge %d: %w", i, err)
			}
			continue
		}
		g := r.groups[e.Child]
		child, err := parent.Append(g.Group, g.target, trigger)
		if err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
		nodes[e.Child] = child
	}
	seq.AddStatusListener(func(st animation.SequenceStatus) {
		r.harvest()
		r.report.Timeline = append(r.report.Timeline, Entry{At: r.elapsed(), Layer: "-", Event: "sequence", Detail: st.String()})
	})
	r.seq = seq
	if err := seq.Start(); err != nil {
		return err
	}
	r.harvest()
	return nil
}

func (r *runner) loop() {
	nextSample := time.Duration(0)
	sample := func() {
		if r.s.Sample <= 0 || r.elapsed() < nextSample {
			return
		}
		r.sample()
		nextSample += r.s.Sample
	}
	sample()
	for !r.settled() {
		if r.elapsed() >= r.s.Timeout {
			if r.seq != nil {
				r.seq.Stop()
			}
			r.report.Elapsed = r.elapsed()
			return
		}
		r.clock.now = r.clock.now.Add(r.s.Frame)
		animation.StepTickers()
		r.harvest()
		sample()
	}
	r.report.Settled = true
	r.report.Elapsed = r.elapsed()
	if r.s.Sample > 0 {
		r.sample()
	}
}

func (r *runner) elapsed() time.Duration { return r.clock.now.Sub(epoch) }

func (r *runner) settled() bool {
	if animation.HasActiveTickers() {
		return false
	}
	for _, id := range r.ids {
		host := r.hosts[id]
		for _, key := range host.Keys() {
			if host.IsPlaying(key) {
				return false
			}
		}
	}
	return true
}

// harvest appends host events recorded since the last call.
func (r *runner) harvest() {
	for _, id := range r.ids {
		events := r.hosts[id].Events()
		for _, e := range events[r.seen[id]:] {
			r.report.Timeline = append(r.report.Timeline, entryFor(id, e))
		}
		r.seen[id] = len(events)
	}
}

func (r *runner) sample() {
	at := r.elapsed()
	if n := len(r.report.Samples); n > 0 && r.report.Samples[n-1].At == at {
		return
	}
	for _, id := range r.ids {
		for _, key := range r.hosts[id].Keys() {
			v, _ := r.layers[id].Value(key)
			r.report.Samples = append(r.report.Samples, Sample{At: at, Layer: id, Key: key, Value: v})
		}
	}
}

func entryFor(id string, e layer.Event) Entry {
	en := Entry{At: e.At.Sub(epoch), Layer: id, Event: e.Kind.String(), Key: e.Key}
	switch e.Kind {
	case layer.EventPlay:
		en.Detail = e.Duration.String()
	case layer.EventCommit, layer.EventMirror:
		en.Detail = FormatValue(e.Value)
	}
	return en
}

// FormatValue renders a value's components, rounded to four places.
func FormatValue(v value.Value) string {
	if v == nil {
		return "-"
	}
	cs := v.Components()
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%.4g", c)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Write prints the timeline, then the samples.
func (rep *Report) Write(w io.Writer) {
	fmt.Fprintln(w, "Timeline:")
	for _, e := range rep.Timeline {
		fmt.Fprintf(w, "  %7s  %-10s %-9s %-12s %s\n", ms(e.At), e.Layer, e.Event, e.Key, e.Detail)
	}
	if len(rep.Samples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Samples:")
		for _, s := range rep.Samples {
			fmt.Fprintf(w, "  %7s  %-10s %-12s %s\n", ms(s.At), s.Layer, s.Key, FormatValue(s.Value))
		}
	}
	fmt.Fprintln(w)
	if rep.Settled {
		fmt.Fprintf(w, "Settled after %s.\n", ms(rep.Elapsed))
	} else {
		fmt.Fprintf(w, "Timed out after %s.\n", ms(rep.Elapsed))
	}
	if len(rep.Errors) > 0 {
		fmt.Fprintf(w, "%d error(s) reported.\n", len(rep.Errors))
	}
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

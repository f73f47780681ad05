package animation

import (
	"sync"
	"time"
)

var (
	tickerMu      sync.Mutex
	activeTickers []*Ticker
)

// Ticker calls a callback once per frame while active. Tickers are driven
// by the host's frame loop through [StepTickers], in the order they were
// started.
type Ticker struct {
	callback func(elapsed time.Duration)
	isActive bool
	start    time.Time
}

// FrameTicker is a per-frame subscription.
type FrameTicker interface {
	Start()
	Stop()
	IsActive() bool
}

// TickerProvider creates frame subscriptions. Sequences poll through one.
type TickerProvider interface {
	CreateTicker(callback func(elapsed time.Duration)) FrameTicker
}

// NewTicker creates a stopped ticker.
func NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{callback: callback}
}

// Start subscribes the ticker to frames.
func (t *Ticker) Start() {
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = Now()
	tickerMu.Lock()
	activeTickers = append(activeTickers, t)
	tickerMu.Unlock()
}

// Stop unsubscribes the ticker.
func (t *Ticker) Stop() {
	if !t.isActive {
		return
	}
	t.isActive = false
	tickerMu.Lock()
	for i, a := range activeTickers {
		if a == t {
			activeTickers = append(activeTickers[:i], activeTickers[i+1:]...)
			break
		}
	}
	tickerMu.Unlock()
}

// IsActive reports whether the ticker is subscribed.
func (t *Ticker) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since Start, or 0 when stopped.
func (t *Ticker) Elapsed() time.Duration {
	if !t.isActive {
		return 0
	}
	return Now().Sub(t.start)
}

type frameTickers struct{}

func (frameTickers) CreateTicker(callback func(time.Duration)) FrameTicker {
	return NewTicker(callback)
}

// DefaultTickerProvider creates tickers on the package frame loop.
var DefaultTickerProvider TickerProvider = frameTickers{}

// StepTickers runs every active ticker once. Call it once per frame.
// Tickers started during the step run from the next frame.
func StepTickers() {
	tickerMu.Lock()
	if len(activeTickers) == 0 {
		tickerMu.Unlock()
		return
	}
	tickers := append([]*Ticker(nil), activeTickers...)
	tickerMu.Unlock()

	for _, ticker := range tickers {
		if ticker.isActive && ticker.callback != nil {
			ticker.callback(Now().Sub(ticker.start))
		}
	}
}

// HasActiveTickers reports whether any ticker is subscribed.
func HasActiveTickers() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return len(activeTickers) > 0
}

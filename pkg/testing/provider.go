package testing

import (
	"time"

	"github.com/go-drift/flight/pkg/animation"
)

// CountingProvider creates package-loop tickers and counts how often they
// subscribe and unsubscribe.
type CountingProvider struct {
	tickers []*countingTicker
	created int
	starts  int
	stops   int
}

// NewCountingProvider returns a provider with zeroed counts.
func NewCountingProvider() *CountingProvider {
	return &CountingProvider{}
}

// CreateTicker implements animation.TickerProvider.
func (p *CountingProvider) CreateTicker(callback func(time.Duration)) animation.FrameTicker {
	p.created++
	t := &countingTicker{inner: animation.NewTicker(callback), provider: p}
	p.tickers = append(p.tickers, t)
	return t
}

// StopAll stops every ticker the provider created.
func (p *CountingProvider) StopAll() {
	for _, t := range p.tickers {
		t.Stop()
	}
}

// Created returns how many tickers were created.
func (p *CountingProvider) Created() int { return p.created }

// Starts returns how many times an inactive ticker was started.
func (p *CountingProvider) Starts() int { return p.starts }

// Stops returns how many times an active ticker was stopped.
func (p *CountingProvider) Stops() int { return p.stops }

type countingTicker struct {
	inner    *animation.Ticker
	provider *CountingProvider
}

func (t *countingTicker) Start() {
	if !t.inner.IsActive() {
		t.provider.starts++
	}
	t.inner.Start()
}

func (t *countingTicker) Stop() {
	if t.inner.IsActive() {
		t.provider.stops++
	}
	t.inner.Stop()
}

func (t *countingTicker) IsActive() bool { return t.inner.IsActive() }

package animation

import (
	"sync"

	"github.com/go-drift/flight/pkg/config"
	"github.com/go-drift/flight/pkg/interpolate"
)

var (
	configMu sync.RWMutex
	active   = config.Default()
)

// SetConfig replaces the engine configuration and returns the previous
// one. The configuration is validated first; an invalid one is rejected
// and the current one kept.
func SetConfig(c config.Config) (config.Config, error) {
	if err := c.Validate(); err != nil {
		return CurrentConfig(), err
	}
	configMu.Lock()
	defer configMu.Unlock()
	prev := active
	active = c
	return prev, nil
}

// CurrentConfig returns the active configuration.
func CurrentConfig() config.Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return active
}

func interpolateOptions() interpolate.Options {
	c := CurrentConfig()
	return interpolate.Options{
		FrameRate:      c.FrameRate,
		SettleEpsilon:  c.SettleEpsilon,
		MaxSettle:      c.MaxSettle,
		VelocityStep:   c.VelocityStep,
		DecayFrequency: c.SpringDecay.Frequency,
		DecayDamping:   c.SpringDecay.Damping,
	}
}

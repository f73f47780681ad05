package animation

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-drift/flight/pkg/errors"
)

// TimingPolicy chooses a group's duration from its primary members.
type TimingPolicy int

const (
	// MaxDuration uses the longest primary duration.
	MaxDuration TimingPolicy = iota
	// MinDuration uses the shortest.
	MinDuration
	// MedianDuration uses the median. For an even count it is the upper of
	// the two middle durations.
	MedianDuration
	// AverageDuration uses the arithmetic mean.
	AverageDuration
)

func (p TimingPolicy) String() string {
	switch p {
	case MaxDuration:
		return "max"
	case MinDuration:
		return "min"
	case MedianDuration:
		return "median"
	case AverageDuration:
		return "average"
	default:
		return fmt.Sprintf("TimingPolicy(%d)", int(p))
	}
}

// ParseTimingPolicy reads "max", "min", "median" or "average".
func ParseTimingPolicy(s string) (TimingPolicy, error) {
	for p := MaxDuration; p <= AverageDuration; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, errors.New("animation.ParseTimingPolicy", errors.KindConfiguration, "unknown timing policy %q", s)
}

// ResolveDuration applies policy to durations. An empty list resolves to 0
// and negative durations count as 0.
func ResolveDuration(policy TimingPolicy, durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	for i, d := range durations {
		sorted[i] = max(d, 0)
	}
	slices.Sort(sorted)

	switch policy {
	case MinDuration:
		return sorted[0]
	case MedianDuration:
		return sorted[len(sorted)/2]
	case AverageDuration:
		var sum time.Duration
		for _, d := range sorted {
			sum += d
		}
		return sum / time.Duration(len(sorted))
	default:
		return sorted[len(sorted)-1]
	}
}

// Autoreverse configures back-and-forth playback.
type Autoreverse struct {
	Enabled bool
	// Count is the number of forward-and-back cycles; 0 repeats forever.
	Count int
	// Delay is waited between directions.
	Delay time.Duration
	// InvertEasing plays the reverse with the time-reversed easing.
	InvertEasing bool
	// InvertProgress plays the reverse by retracing the forward keyframes
	// in reverse order.
	InvertProgress bool
}

func (a Autoreverse) validate() error {
	if a.Count < 0 {
		return errors.New("animation.NewGroup", errors.KindConfiguration, "autoreverse count must be >= 0, got %d", a.Count)
	}
	if a.Delay < 0 {
		return errors.New("animation.NewGroup", errors.KindConfiguration, "autoreverse delay must be >= 0, got %v", a.Delay)
	}
	return nil
}

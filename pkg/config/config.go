// Package config loads the optional flight.yaml engine configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/flight/pkg/errors"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "flight.yaml"

// SchemaVersion is the newest configuration schema this build reads.
const SchemaVersion = "v1.0.0"

// Config holds engine tuning. Zero fields are filled from Default by Load.
type Config struct {
	Version string `yaml:"version,omitempty"`

	// FrameRate is the sampling rate for keyframe values, in samples per second.
	FrameRate float64 `yaml:"frame_rate,omitempty"`

	// SettleEpsilon is the spring settle threshold relative to the travel
	// distance (or 1, whichever is larger).
	SettleEpsilon float64 `yaml:"settle_epsilon,omitempty"`

	// MaxSettle caps the settle time of a spring that never comes to rest.
	MaxSettle time.Duration `yaml:"max_settle,omitempty"`

	// TimeAdjustment is subtracted from elapsed time when reading the velocity
	// of a superseded animation, compensating for host render latency.
	TimeAdjustment time.Duration `yaml:"time_adjustment,omitempty"`

	// VelocityStep is the finite-difference step for non-spring velocity.
	VelocityStep time.Duration `yaml:"velocity_step,omitempty"`

	SpringDecay SpringConfig `yaml:"spring_decay,omitempty"`

	// Mirror maps layer keys to view keys that receive a copy of every
	// committed value.
	Mirror map[string]string `yaml:"mirror,omitempty"`
}

// SpringConfig holds the parameters of the decay spring.
type SpringConfig struct {
	Frequency float64 `yaml:"frequency,omitempty"`
	Damping   float64 `yaml:"damping,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:        SchemaVersion,
		FrameRate:      60,
		SettleEpsilon:  0.001,
		MaxSettle:      10 * time.Second,
		TimeAdjustment: 0,
		VelocityStep:   time.Millisecond,
		SpringDecay:    SpringConfig{Frequency: 14, Damping: 0.97},
		Mirror:         map[string]string{"opacity": "alpha"},
	}
}

// LoadOptional reads flight.yaml from dir if present, returning defaults when
// the file does not exist.
func LoadOptional(dir string) (Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if stderrors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads and validates a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// Parse decodes yaml, fills unset fields from Default, and validates.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &errors.FlightError{Op: "config.Parse", Kind: errors.KindConfiguration, Err: err}
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	def := Default()
	if strings.TrimSpace(c.Version) == "" {
		c.Version = def.Version
	}
	if c.FrameRate == 0 {
		c.FrameRate = def.FrameRate
	}
	if c.SettleEpsilon == 0 {
		c.SettleEpsilon = def.SettleEpsilon
	}
	if c.MaxSettle == 0 {
		c.MaxSettle = def.MaxSettle
	}
	if c.VelocityStep == 0 {
		c.VelocityStep = def.VelocityStep
	}
	if c.SpringDecay.Frequency == 0 {
		c.SpringDecay.Frequency = def.SpringDecay.Frequency
	}
	if c.SpringDecay.Damping == 0 {
		c.SpringDecay.Damping = def.SpringDecay.Damping
	}
	if c.Mirror == nil {
		c.Mirror = def.Mirror
	}
	return c
}

// Validate reports the first invalid field as a configuration error.
func (c Config) Validate() error {
	const op = "config.Validate"
	if err := CheckVersion(c.Version); err != nil {
		return err
	}
	switch {
	case !(c.FrameRate > 0):
		return errors.New(op, errors.KindConfiguration, "frame_rate must be > 0, got %v", c.FrameRate)
	case !(c.SettleEpsilon > 0):
		return errors.New(op, errors.KindConfiguration, "settle_epsilon must be > 0, got %v", c.SettleEpsilon)
	case c.MaxSettle <= 0:
		return errors.New(op, errors.KindConfiguration, "max_settle must be > 0, got %v", c.MaxSettle)
	case c.TimeAdjustment < 0:
		return errors.New(op, errors.KindConfiguration, "time_adjustment must be >= 0, got %v", c.TimeAdjustment)
	case c.VelocityStep <= 0:
		return errors.New(op, errors.KindConfiguration, "velocity_step must be > 0, got %v", c.VelocityStep)
	case !(c.SpringDecay.Frequency > 0) || !(c.SpringDecay.Damping > 0):
		return errors.New(op, errors.KindConfiguration, "spring_decay frequency and damping must be > 0")
	}
	return nil
}

// CheckVersion accepts any valid semver with major version v1. A missing
// "v" prefix is tolerated.
func CheckVersion(v string) error {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return errors.New("config.CheckVersion", errors.KindConfiguration, "invalid version %q", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return errors.New("config.CheckVersion", errors.KindConfiguration,
			"unsupported version %s (this build reads %s)", v, semver.Major(SchemaVersion))
	}
	return nil
}

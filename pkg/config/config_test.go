package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/errors"
)

func TestLoadOptionalMissing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.FrameRate != 60 || cfg.MaxSettle != 10*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Mirror["opacity"] != "alpha" {
		t.Errorf("default mirror = %v", cfg.Mirror)
	}
}

func TestLoadOptionalFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`version: v1.2.0
frame_rate: 120
max_settle: 3s
time_adjustment: 8ms
spring_decay:
  frequency: 20
mirror:
  opacity: alpha
  bounds: frame
`)
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.FrameRate != 120 {
		t.Errorf("FrameRate = %v, want 120", cfg.FrameRate)
	}
	if cfg.MaxSettle != 3*time.Second || cfg.TimeAdjustment != 8*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.MaxSettle, cfg.TimeAdjustment)
	}
	if cfg.SpringDecay.Frequency != 20 || cfg.SpringDecay.Damping != 0.97 {
		t.Errorf("spring decay = %+v", cfg.SpringDecay)
	}
	if cfg.SettleEpsilon != 0.001 || cfg.VelocityStep != time.Millisecond {
		t.Errorf("unset fields should default: %+v", cfg)
	}
	if cfg.Mirror["bounds"] != "frame" {
		t.Errorf("mirror = %v", cfg.Mirror)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "frame_rate: [1"},
		{"negative frame rate", "frame_rate: -5"},
		{"negative adjustment", "time_adjustment: -1s"},
		{"major version", "version: v2.0.0"},
		{"garbage version", "version: latest"},
		{"negative damping", "spring_decay: {damping: -1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !stderrors.Is(err, errors.ErrConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"v1", "1.0.0", "v1.4.2"} {
		if err := CheckVersion(v); err != nil {
			t.Errorf("CheckVersion(%q) = %v", v, err)
		}
	}
	if err := CheckVersion("v0.9.0"); err == nil {
		t.Error("CheckVersion(v0.9.0) should fail")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-drift/flight/pkg/layer"
)

// UpdateSnapshotsEnv names the variable that rewrites golden files.
const UpdateSnapshotsEnv = "FLIGHT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is the timeline of host calls for one layer, timed relative to
// the first event.
type Snapshot struct {
	Layer  string               `json:"layer"`
	Events []SnapshotEvent      `json:"events"`
	Final  map[string][]float64 `json:"final,omitempty"`
}

// SnapshotEvent is one host call.
type SnapshotEvent struct {
	AtMS       int64     `json:"atMs"`
	Kind       string    `json:"kind"`
	Key        string    `json:"key"`
	ValueKind  string    `json:"valueKind,omitempty"`
	Value      []float64 `json:"value,omitempty"`
	DurationMS int64     `json:"durationMs,omitempty"`
}

// CaptureSnapshot captures the event log and final model values of the layer
// named id.
func (t *Tester) CaptureSnapshot(id string) *Snapshot {
	host := t.Host(id)
	snap := &Snapshot{Layer: id}
	events := host.Events()
	var origin time.Time
	if len(events) > 0 {
		origin = events[0].At
	}
	snap.Events = make([]SnapshotEvent, 0, len(events))
	for _, e := range events {
		snap.Events = append(snap.Events, captureEvent(e, origin))
	}
	for _, key := range host.Keys() {
		v, _ := host.ModelValue(key)
		if snap.Final == nil {
			snap.Final = make(map[string][]float64)
		}
		snap.Final[key] = roundAll(v.Components())
	}
	return snap
}

func captureEvent(e layer.Event, origin time.Time) SnapshotEvent {
	se := SnapshotEvent{
		AtMS:       e.At.Sub(origin).Milliseconds(),
		Kind:       e.Kind.String(),
		Key:        e.Key,
		DurationMS: e.Duration.Milliseconds(),
	}
	if e.Value != nil {
		se.ValueKind = e.Value.Kind().String()
		se.Value = roundAll(e.Value.Components())
	}
	return se
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When FLIGHT_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other, or "" when
// they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

func roundAll(cs []float64) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = math.Round(c*1e4) / 1e4
	}
	return out
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalize(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalize(s *Snapshot) *Snapshot {
	c := *s
	if c.Events == nil {
		c.Events = []SnapshotEvent{}
	}
	return &c
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	n := max(len(expectedLines), len(actualLines))
	for i := 0; i < n; i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}
	return buf.String()
}

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestExecute_Version(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "flight version "+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestExecute_Help(t *testing.T) {
	out := capture(t)
	if err := Execute(nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"simulate", "curve"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help missing %s:\n%s", name, out.String())
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	capture(t)
	if err := Execute([]string{"fly"}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExecute_ConfigFlagRequiresPath(t *testing.T) {
	capture(t)
	if err := Execute([]string{"curve", "linear", "--config"}); err == nil {
		t.Error("expected error for --config without a path")
	}
}

func TestCurve_Linear(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"curve", "linear", "--samples", "3"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "linear" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], " 0.50    0.5000  ") {
		t.Errorf("midpoint line = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], strings.Repeat("#", barWidth)) {
		t.Errorf("end line = %q", lines[3])
	}
}

func TestCurve_Reverse(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"curve", "in-quad", "--reverse", "--samples", "2"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "out-quad\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCurve_Errors(t *testing.T) {
	capture(t)
	tests := [][]string{
		{"curve"},
		{"curve", "wobble"},
		{"curve", "linear", "--samples", "1"},
		{"curve", "linear", "--samples"},
		{"curve", "linear", "in-quad"},
	}
	for _, args := range tests {
		if err := Execute(args); err == nil {
			t.Errorf("Execute(%q) succeeded, want error", args)
		}
	}
}

func TestCurve_List(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"curve", "--list"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "out-quad\n") {
		t.Errorf("list missing out-quad:\n%s", out.String())
	}
}

func TestSimulate_Card(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"simulate", "../internal/scenario/testdata/card.yaml", "--no-samples"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Settled after 560ms.") {
		t.Errorf("output:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Samples:") {
		t.Error("--no-samples still printed samples")
	}
}

func TestSimulate_MissingFile(t *testing.T) {
	capture(t)
	if err := Execute([]string{"simulate"}); err == nil {
		t.Error("expected error without a scenario")
	}
	if err := Execute([]string{"simulate", "nope.yaml"}); err == nil {
		t.Error("expected error for a missing file")
	}
}

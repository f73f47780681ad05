package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-drift/flight/pkg/easing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "curve",
		Short: "Print a sampled easing curve",
		Long: `Print an easing curve sampled at evenly spaced points in [0, 1].

Easings are named like "out-cubic" or "in-out-back". Parameterized curves
take arguments: "bezier(0.4,0,0.2,1)" and "spring-custom(12,0.5)".

Flags:
  --samples N   Number of samples (default: 11)
  --reverse     Print the time-reversed curve
  --list        List every easing name`,
		Usage: "flight curve <easing> [--samples N] [--reverse] | flight curve --list",
		Run:   runCurve,
	})
}

const barWidth = 40

func runCurve(args []string) error {
	n := 11
	reverse := false
	var name string
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--list":
			for _, name := range easing.Names() {
				fmt.Fprintln(stdout, name)
			}
			return nil
		case "--reverse":
			reverse = true
		case "--samples":
			if i+1 >= len(args) {
				return fmt.Errorf("--samples requires a number")
			}
			v, err := strconv.Atoi(args[i+1])
			if err != nil || v < 2 {
				return fmt.Errorf("--samples must be an integer >= 2, got %q", args[i+1])
			}
			n = v
			i++
		default:
			if name != "" {
				return fmt.Errorf("curve takes one easing, got %q and %q", name, arg)
			}
			name = arg
		}
	}
	if name == "" {
		return fmt.Errorf("curve requires an easing name (see flight curve --list)")
	}

	e, err := easing.Parse(name)
	if err != nil {
		return err
	}
	if reverse {
		e = e.Reverse()
	}
	fmt.Fprintln(stdout, e)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		y := e.Sample(t)
		fmt.Fprintf(stdout, "%5.2f  %8.4f  %s\n", t, y, bar(y))
	}
	return nil
}

// bar draws y in [0, 1] as a run of hashes. Overshoot past either end is
// marked with < or >.
func bar(y float64) string {
	switch {
	case y < 0:
		return "<"
	case y > 1:
		return strings.Repeat("#", barWidth) + ">"
	}
	return strings.Repeat("#", int(math.Round(y*barWidth)))
}

package cmd

import (
	"fmt"

	"github.com/go-drift/flight/cmd/flight/internal/scenario"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Run a scenario headless",
		Long: `Run an animation scenario against in-memory layers and print the
timeline of host calls, sequence status changes and sampled values.

A scenario is a yaml file with a semantic "version" (major v1), the layers
and their starting values, the groups to animate and an optional sequence
of trigger edges between groups.

Flags:
  --no-samples   Omit sampled values from the output`,
		Usage: "flight simulate <scenario.yaml> [--no-samples]",
		Run:   runSimulate,
	})
}

func runSimulate(args []string) error {
	var path string
	samples := true
	for _, arg := range args {
		switch arg {
		case "--no-samples":
			samples = false
		default:
			if path != "" {
				return fmt.Errorf("simulate takes one scenario file, got %q and %q", path, arg)
			}
			path = arg
		}
	}
	if path == "" {
		return fmt.Errorf("simulate requires a scenario file")
	}

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if !samples {
		s.Sample = 0
	}
	rep, err := scenario.Run(s)
	if err != nil {
		return err
	}
	rep.Write(stdout)
	if !rep.Settled {
		return fmt.Errorf("scenario did not settle within %s", s.Timeout)
	}
	return nil
}

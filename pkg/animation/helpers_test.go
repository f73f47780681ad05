package animation_test

import (
	"testing"
	"time"

	"github.com/go-drift/flight/pkg/animation"
	"github.com/go-drift/flight/pkg/easing"
	"github.com/go-drift/flight/pkg/layer"
	flighttest "github.com/go-drift/flight/pkg/testing"
	"github.com/go-drift/flight/pkg/value"
)

func linear(key string, to float64, d time.Duration) *animation.Property {
	return animation.NewProperty(key, easing.Of(easing.Linear), value.Scalar(to), d, true)
}

func group(t *testing.T, ar animation.Autoreverse, members ...*animation.Property) *animation.Group {
	t.Helper()
	g, err := animation.NewGroup(members, animation.MaxDuration, ar)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func scalar(t *testing.T, tester *flighttest.Tester, id, key string) float64 {
	t.Helper()
	v := tester.Value(id, key)
	s, ok := v.(value.Scalar)
	if !ok {
		t.Fatalf("%s.%s = %v, want scalar", id, key, v)
	}
	return float64(s)
}

func plays(tester *flighttest.Tester, id string) int {
	return tester.Host(id).Count(layer.EventPlay, "")
}

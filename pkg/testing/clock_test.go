package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	c := NewFakeClock()
	start := c.Now()
	c.Advance(250 * time.Millisecond)
	if got := c.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("elapsed = %v, want 250ms", got)
	}
}

func TestFakeClock_Set(t *testing.T) {
	c := NewFakeClock()
	want := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	c.Set(want)
	if !c.Now().Equal(want) {
		t.Errorf("Now = %v, want %v", c.Now(), want)
	}
}

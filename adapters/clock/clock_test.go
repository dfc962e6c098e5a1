package clock_test

import (
	"testing"
	"time"

	"github.com/artpar/actuate/adapters/clock"
)

var baseTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", got, before, after)
	}
	if got.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", got.Location())
	}
}

func TestFake_Stable(t *testing.T) {
	c := clock.NewFake(baseTime)

	for i := 0; i < 3; i++ {
		if got := c.Now(); !got.Equal(baseTime) {
			t.Errorf("call %d: Now() = %v, want %v", i, got, baseTime)
		}
	}
}

func TestFake_Advance(t *testing.T) {
	c := clock.NewFake(baseTime)
	c.Advance(time.Hour)

	if got := c.Now(); !got.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("Now() = %v, want %v", got, baseTime.Add(time.Hour))
	}
}

func TestTicking(t *testing.T) {
	c := clock.NewTicking(baseTime, 5*time.Millisecond)

	start := c.Now()
	end := c.Now()
	if d := end.Sub(start); d != 5*time.Millisecond {
		t.Errorf("elapsed = %v, want 5ms", d)
	}
	if !start.Equal(baseTime) {
		t.Errorf("first reading = %v, want %v", start, baseTime)
	}
}

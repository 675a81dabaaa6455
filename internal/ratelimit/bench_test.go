package ratelimit

import (
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
)

// BenchmarkController_Unlimited measures the per-send overhead with no target.
func BenchmarkController_Unlimited(b *testing.B) {
	vc := clock.NewVirtualClock(epoch)
	c := NewController(Schedule{Interval: 1}, vc)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Sent()
		c.Allow()
	}
}

// BenchmarkController_Throttled measures the gate while it is releasing.
func BenchmarkController_Throttled(b *testing.B) {
	vc := clock.NewVirtualClock(epoch)
	c := NewController(Schedule{Start: 1000000, Interval: 1}, vc)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vc.Advance(time.Microsecond)
		c.Sent()
		if _, err := c.Wait(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseSchedule measures flag parsing.
func BenchmarkParseSchedule(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ParseSchedule("1000:100:50000:5"); err != nil {
			b.Fatal(err)
		}
	}
}

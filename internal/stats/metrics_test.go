package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_TracksTotals(t *testing.T) {
	m := NewMetrics()

	m.Window(Snapshot{EPS: 100, TotalEvents: 100, TotalBytes: 1000, TargetRate: 150})
	m.Window(Snapshot{EPS: 50, TotalEvents: 150, TotalBytes: 1500, Dropped: 2, TargetRate: 150})

	if got := testutil.ToFloat64(m.events); got != 150 {
		t.Errorf("events = %v, want 150", got)
	}
	if got := testutil.ToFloat64(m.bytes); got != 1500 {
		t.Errorf("bytes = %v, want 1500", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.eps); got != 50 {
		t.Errorf("eps = %v, want 50", got)
	}
	if got := testutil.ToFloat64(m.target); got != 150 {
		t.Errorf("target = %v, want 150", got)
	}

	m.Final(Summary{Events: 160, Bytes: 1600, Dropped: 2, Seconds: 3, EPS: 53})
	if got := testutil.ToFloat64(m.events); got != 160 {
		t.Errorf("events after Final = %v, want 160", got)
	}
	if got := testutil.ToFloat64(m.seconds); got != 3 {
		t.Errorf("seconds = %v, want 3", got)
	}
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics()
	n, err := testutil.GatherAndCount(m.Registry())
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Errorf("gathered %d metrics, want 6", n)
	}
}

package aggregate

import (
	"math"
	"testing"

	"github.com/instantcocoa/replicatrace/pkg/event"
	"github.com/instantcocoa/replicatrace/pkg/statsd"
)

func TestGaugeLastWriteWins(t *testing.T) {
	tab := NewTable()
	e := event.CacheHits{Tree: event.TreeAccounts}

	tab.Gauge(e, 3)
	tab.Gauge(e, 7)

	got := tab.Gauges()[event.MetricSlot(e)]
	if got == nil || got.Value != 7 {
		t.Fatalf("Gauges()[slot] = %+v, want Value=7", got)
	}
}

func TestTimingFirstSampleInitializes(t *testing.T) {
	tab := NewTable()
	e := event.ReplicaAofWrite{}

	tab.Timing(e, 42)

	got := tab.Timings()[event.TimingSlot(e)]
	if got.Min != 42 || got.Max != 42 || got.Sum != 42 || got.Count != 1 {
		t.Fatalf("got %+v, want min=max=sum=42 count=1", got)
	}
}

func TestTimingMonotoneMinMax(t *testing.T) {
	tab := NewTable()
	e := event.ReplicaAofWrite{}

	tab.Timing(e, 10)
	tab.Timing(e, 3)
	tab.Timing(e, 100)

	got := tab.Timings()[event.TimingSlot(e)]
	if got.Min != 3 {
		t.Fatalf("Min = %d, want 3", got.Min)
	}
	if got.Max != 100 {
		t.Fatalf("Max = %d, want 100", got.Max)
	}
	if got.Sum != 113 {
		t.Fatalf("Sum = %d, want 113", got.Sum)
	}
	if got.Count != 3 {
		t.Fatalf("Count = %d, want 3", got.Count)
	}
	if got.Min > got.Max {
		t.Fatal("invariant violated: min > max")
	}
}

func TestTimingSumSaturates(t *testing.T) {
	tab := NewTable()
	e := event.ReplicaAofWrite{}

	tab.Timing(e, math.MaxUint64-1)
	tab.Timing(e, math.MaxUint64-1)

	got := tab.Timings()[event.TimingSlot(e)]
	if got.Min != math.MaxUint64-1 || got.Max != math.MaxUint64-1 {
		t.Fatalf("got min=%d max=%d, want %d", got.Min, got.Max, uint64(math.MaxUint64-1))
	}
	if got.Count != 2 {
		t.Fatalf("Count = %d, want 2", got.Count)
	}
	if got.Sum != math.MaxUint64 {
		t.Fatalf("Sum = %d, want saturated %d", got.Sum, uint64(math.MaxUint64))
	}
}

func TestTimingCountSaturates(t *testing.T) {
	a := &TimingAggregate{Count: math.MaxUint64}
	got := saturatingAdd(a.Count, 1)
	if got != math.MaxUint64 {
		t.Fatalf("saturatingAdd(MaxUint64, 1) = %d, want MaxUint64", got)
	}
}

func TestResetClearsAllSlots(t *testing.T) {
	tab := NewTable()
	g := event.ReplicationLag{}
	tm := event.ReplicaAofWrite{}
	tab.Gauge(g, 5)
	tab.Timing(tm, 5)

	tab.Reset()

	for _, ga := range tab.Gauges() {
		if ga != nil {
			t.Fatal("expected all gauge slots nil after Reset")
		}
	}
	for _, ta := range tab.Timings() {
		if ta != nil {
			t.Fatal("expected all timing slots nil after Reset")
		}
	}
}

func TestValueForMatchesStatOrder(t *testing.T) {
	a := &TimingAggregate{Min: 1, Max: 9, Sum: 10, Count: 4}
	if a.ValueFor(statsd.TimingMin) != 1 {
		t.Fatal("TimingMin mismatch")
	}
	if a.ValueFor(statsd.TimingMax) != 9 {
		t.Fatal("TimingMax mismatch")
	}
	if a.ValueFor(statsd.TimingAvg) != 2 {
		t.Fatalf("TimingAvg = %d, want floor(10/4)=2", a.ValueFor(statsd.TimingAvg))
	}
	if a.ValueFor(statsd.TimingSum) != 10 {
		t.Fatal("TimingSum mismatch")
	}
	if a.ValueFor(statsd.TimingCount) != 4 {
		t.Fatal("TimingCount mismatch")
	}
}

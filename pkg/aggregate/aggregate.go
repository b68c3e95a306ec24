// Package aggregate maintains the replica's gauge and timing aggregate
// tables: fixed-width slot arrays updated with saturating arithmetic.
package aggregate

import (
	"math"

	"github.com/instantcocoa/replicatrace/pkg/event"
	"github.com/instantcocoa/replicatrace/pkg/statsd"
)

// GaugeAggregate is a single gauge slot: last write wins.
type GaugeAggregate struct {
	Event event.Gaugeable
	Value uint64
}

// TimingAggregate is a single timing slot's min/max/sum/count reduction.
type TimingAggregate struct {
	Event event.Timeable
	Min   uint64
	Max   uint64
	Sum   uint64
	Count uint64
}

// Avg returns floor(Sum/Count), the value reported on the "_us.avg"
// StatsD line.
func (a *TimingAggregate) Avg() uint64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / a.Count
}

// ValueFor returns the numeric value the given stat kind contributes.
func (a *TimingAggregate) ValueFor(stat statsd.TimingStat) uint64 {
	switch stat {
	case statsd.TimingMin:
		return a.Min
	case statsd.TimingMax:
		return a.Max
	case statsd.TimingAvg:
		return a.Avg()
	case statsd.TimingSum:
		return a.Sum
	case statsd.TimingCount:
		return a.Count
	default:
		panic("aggregate: invalid timing stat")
	}
}

// Table holds the two fixed-width aggregate slot arrays for one replica.
// Table carries no lock: it must be driven from a single logical
// execution context, the same one that drives the tracer.
type Table struct {
	gauges  []*GaugeAggregate
	timings []*TimingAggregate
}

// NewTable allocates a table sized to the event catalogue's slot counts.
// Every slot starts empty.
func NewTable() *Table {
	return &Table{
		gauges:  make([]*GaugeAggregate, event.MetricSlotCount),
		timings: make([]*TimingAggregate, event.TimingSlotCount),
	}
}

// Gauge records a gauge sample: last write wins.
func (t *Table) Gauge(e event.Gaugeable, value uint64) {
	t.gauges[event.MetricSlot(e)] = &GaugeAggregate{Event: e, Value: value}
}

// Timing folds one duration sample into its slot's min/max/sum/count
// reduction. Sum and count use saturating addition and never wrap.
func (t *Table) Timing(e event.Timeable, durationUs uint64) {
	slot := event.TimingSlot(e)
	a := t.timings[slot]
	if a == nil {
		t.timings[slot] = &TimingAggregate{Event: e, Min: durationUs, Max: durationUs, Sum: durationUs, Count: 1}
		return
	}
	if durationUs < a.Min {
		a.Min = durationUs
	}
	if durationUs > a.Max {
		a.Max = durationUs
	}
	a.Sum = saturatingAdd(a.Sum, durationUs)
	a.Count = saturatingAdd(a.Count, 1)
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}

// Gauges returns the dense gauge slot array, for the emitter to walk.
func (t *Table) Gauges() []*GaugeAggregate { return t.gauges }

// Timings returns the dense timing slot array, for the emitter to walk.
func (t *Table) Timings() []*TimingAggregate { return t.timings }

// Reset clears every slot to empty, run after a successful emission so
// aggregation windows never span emissions.
func (t *Table) Reset() {
	for i := range t.gauges {
		t.gauges[i] = nil
	}
	for i := range t.timings {
		t.timings[i] = nil
	}
}

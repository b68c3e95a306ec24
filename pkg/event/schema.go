package event

// This file derives, once at package-init time, everything that should
// in principle be knowable purely from the shape of the event catalogue:
// stack_count, stack_bases, and the timing/metric slot counts and bases.
// Go has no comptime evaluator over struct layouts, so this module
// approximates a build-time guarantee by running the derivation in an
// init(), the closest equivalent available without code generation. This
// init() only sums the per-tag counts; the size-budget checks that panic
// on violation run in the statsd package's init().

// stackLimits[tag] is the number of concurrent tracing stacks a tag needs;
// zero for tags with no EventTracing view.
var stackLimits = [tagCount]uint32{
	TagReplicaCommit:  1,
	TagClientRequest:  clientRequestConcurrencyMax,
	TagCompactionBeat: uint32(treeCount) * compactionLevelsMax,
	TagIORead:         ioQueueDepthMax,
	TagIOWrite:        ioQueueDepthMax,
	TagGridScrub:      1,
	TagMetricsEmit:    1,
}

// timingSlots[tag] is the number of distinct EventTiming aggregate slots a
// tag needs; zero for tags with no timing view.
var timingSlots = [tagCount]uint32{
	TagReplicaCommit:        uint32(commitStageCount),
	TagClientRequest:        uint32(clientOpCount),
	TagCompactionBeat:       uint32(treeCount) * compactionLevelsMax,
	TagIORead:               1,
	TagIOWrite:              1,
	TagGridScrub:            1,
	TagMetricsEmit:          1,
	TagReplicaAofWrite:      1,
	TagClientRequestLatency: uint32(clientOpCount),
}

// metricSlots[tag] is the number of distinct EventMetric (gauge) aggregate
// slots a tag needs; zero for tags with no metric view.
var metricSlots = [tagCount]uint32{
	TagCacheHits:        uint32(treeCount),
	TagCacheMisses:      uint32(treeCount),
	TagReplicationLag:   1,
	TagStorageUsedBytes: 1,
	TagConnectionCount:  1,
}

var (
	stackBases  [tagCount]uint32
	timingBases [tagCount]uint32
	metricBases [tagCount]uint32

	// StackCount is the total number of tracing stack slots across all tags.
	StackCount uint32
	// TimingSlotCount is the total number of timing aggregate slots.
	TimingSlotCount uint32
	// MetricSlotCount is the total number of gauge aggregate slots.
	MetricSlotCount uint32
)

func init() {
	var stack, timing, metric uint32
	for t := Tag(0); t < tagCount; t++ {
		stackBases[t] = stack
		stack += stackLimits[t]

		timingBases[t] = timing
		timing += timingSlots[t]

		metricBases[t] = metric
		metric += metricSlots[t]
	}
	StackCount = stack
	TimingSlotCount = timing
	MetricSlotCount = metric
}

// Stack returns the global stack slot an EventTracing view occupies, in
// [0, StackCount).
func Stack(e Traceable) uint32 {
	return stackBases[e.Tag()] + e.StackIndex()
}

// TimingSlot returns the global timing aggregate slot an EventTiming view
// occupies, in [0, TimingSlotCount).
func TimingSlot(e Timeable) uint32 {
	return timingBases[e.Tag()] + e.TimingIndex()
}

// MetricSlot returns the global gauge aggregate slot an EventMetric view
// occupies, in [0, MetricSlotCount).
func MetricSlot(e Gaugeable) uint32 {
	return metricBases[e.Tag()] + e.MetricIndex()
}

// StackRange returns the [begin, end) span of stack slots a tag owns, for
// Tracer.Cancel to sweep.
func StackRange(t Tag) (begin, end uint32) {
	return stackBases[t], stackBases[t] + stackLimits[t]
}

// TagCount returns the number of tags in the catalogue, for callers that
// need to range over every Tag value.
func TagCount() Tag { return tagCount }

// HasMetricView reports whether t has a non-empty EventMetric view.
func HasMetricView(t Tag) bool { return metricSlots[t] > 0 }

// HasTimingView reports whether t has a non-empty EventTiming view.
func HasTimingView(t Tag) bool { return timingSlots[t] > 0 }

// HasTracingView reports whether t has a non-empty EventTracing view.
func HasTracingView(t Tag) bool { return stackLimits[t] > 0 }

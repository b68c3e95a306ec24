package statsd

import "github.com/instantcocoa/replicatrace/pkg/event"

// PacketSizeMax is the hard UDP datagram payload ceiling: a single
// datagram must never exceed the common 1400-byte safe path MTU.
const PacketSizeMax = 1400

var (
	// LineSizeMax is the supremum, over every admissible payload and stat
	// kind in the event catalogue, of a formatted StatsD line's length.
	// Computed once at package-init time by formatting the catalogue's
	// worst-case values, standing in for a build-time evaluation Go has
	// no mechanism to express directly.
	LineSizeMax int
	// PacketMessagesMax is the number of LineSizeMax-sized lines
	// guaranteed to fit in one datagram.
	PacketMessagesMax int
	// PacketCountMax bounds the number of datagrams a single emission can
	// produce, computed from the catalogue's total line count in the
	// worst case: one line per gauge slot, five lines per timing slot.
	PacketCountMax int
)

func worstCaseOptions() Options {
	var opts Options
	for i := range opts.Cluster {
		opts.Cluster[i] = 0xff
	}
	opts.Replica = 255
	return opts
}

func init() {
	opts := worstCaseOptions()
	longest := 0
	measure := func(line []byte) {
		if len(line) > longest {
			longest = len(line)
		}
	}

	for t := event.Tag(0); t < event.TagCount(); t++ {
		fields := event.WorstCaseFields(t)
		if event.HasMetricView(t) {
			measure(buildLine(nil, t, "", "g", ^uint64(0), fields, opts))
		}
		if event.HasTimingView(t) {
			for _, stat := range timingStatOrder {
				suffix, kind := stat.suffixAndType()
				measure(buildLine(nil, t, suffix, kind, ^uint64(0), fields, opts))
			}
		}
	}

	LineSizeMax = longest
	if LineSizeMax > PacketSizeMax {
		panic("statsd: worst-case StatsD line exceeds packet size budget")
	}

	PacketMessagesMax = PacketSizeMax / LineSizeMax
	if PacketMessagesMax <= 0 {
		panic("statsd: packet_messages_max must be positive")
	}

	totalLines := int(event.MetricSlotCount) + 5*int(event.TimingSlotCount)
	PacketCountMax = ceilDiv(totalLines, PacketMessagesMax)
	if PacketCountMax < 1 {
		PacketCountMax = 1
	}
	if PacketCountMax >= 256 {
		panic("statsd: packet_count_max must stay below 256")
	}
}

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

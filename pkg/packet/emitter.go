// Package packet packs aggregate slot tables into StatsD datagrams and
// dispatches them through a transport.
package packet

import (
	"log/slog"

	"github.com/instantcocoa/replicatrace/pkg/aggregate"
	"github.com/instantcocoa/replicatrace/pkg/statsd"
	"github.com/instantcocoa/replicatrace/pkg/transport"
)

// Outcome reports what an Emit call did.
type Outcome int

const (
	// OutcomeSent means the aggregate tables were packed and handed to the
	// transport (some datagrams may still have been dropped for pool
	// exhaustion; such drops are logged, not counted).
	OutcomeSent Outcome = iota
	// OutcomeBusy means a prior emission still has datagrams outstanding;
	// this tick is skipped entirely rather than interleaving two
	// emissions' lines in the same buffer.
	OutcomeBusy
)

// Emitter packs one replica's gauge and timing aggregate tables into
// StatsD datagrams and dispatches them through transport, using pool as
// its sole backpressure signal. Emitter carries no lock and must be
// driven from a single logical execution context, never concurrently.
type Emitter struct {
	pool      *transport.Pool
	transport transport.Transport
	opts      statsd.Options
	logger    *slog.Logger

	buf      []byte
	errCount int
}

// NewEmitter builds an emitter with a completion pool sized to
// statsd.PacketCountMax, the worst-case number of datagrams one emission
// can produce.
func NewEmitter(tr transport.Transport, opts statsd.Options, logger *slog.Logger) *Emitter {
	return &Emitter{
		pool:      transport.NewPool(statsd.PacketCountMax),
		transport: tr,
		opts:      opts,
		logger:    logger,
		buf:       make([]byte, 0, statsd.PacketCountMax*statsd.PacketSizeMax),
	}
}

// ErrorCount returns the number of send failures observed since the last
// Emit call reset it.
func (e *Emitter) ErrorCount() int { return e.errCount }

// Close releases the underlying transport, if the emitter owns it (e.g. a
// dialed UDP socket).
func (e *Emitter) Close() error { return e.transport.Close() }

// Emit formats every non-empty slot in gauges and timings into
// LineSizeMax-bounded StatsD lines, greedily packs consecutive lines into
// PacketSizeMax-bounded datagrams preserving slot order, and dispatches
// one datagram per acquired completion. It never blocks: if the prior
// emission is still outstanding it does nothing and returns OutcomeBusy;
// if the completion pool is exhausted mid-emission the remaining
// datagrams are dropped and logged.
func (e *Emitter) Emit(gauges []*aggregate.GaugeAggregate, timings []*aggregate.TimingAggregate) Outcome {
	if e.pool.Executing() > 0 {
		return OutcomeBusy
	}

	if e.errCount > 0 {
		e.logger.Warn("statsd send errors since last emission", "count", e.errCount)
	}
	e.errCount = 0

	e.buf = e.buf[:0]
	datagramSizes := e.packLines(gauges, timings)
	e.dispatch(datagramSizes)
	return OutcomeSent
}

func (e *Emitter) packLines(gauges []*aggregate.GaugeAggregate, timings []*aggregate.TimingAggregate) []int {
	var sizes []int
	datagramStart := 0

	appendLine := func(build func(dst []byte) ([]byte, error)) {
		candidate, err := build(e.buf)
		if err != nil {
			e.logger.Warn("dropping oversize statsd line", "error", err)
			return
		}
		lineLen := len(candidate) - len(e.buf)
		open := len(e.buf) - datagramStart
		if open > 0 && open+lineLen > statsd.PacketSizeMax {
			sizes = append(sizes, open)
			datagramStart = len(e.buf)
		}
		e.buf = candidate
	}

	for _, g := range gauges {
		if g == nil {
			continue
		}
		appendLine(func(dst []byte) ([]byte, error) {
			return statsd.AppendGauge(dst, g.Event.Tag(), g.Event.Fields(), g.Value, e.opts)
		})
	}
	for _, tm := range timings {
		if tm == nil {
			continue
		}
		for _, stat := range statsd.TimingStatOrder() {
			appendLine(func(dst []byte) ([]byte, error) {
				return statsd.AppendTimingStat(dst, tm.Event.Tag(), tm.Event.Fields(), stat, tm.ValueFor(stat), e.opts)
			})
		}
	}

	if len(e.buf) > datagramStart {
		sizes = append(sizes, len(e.buf)-datagramStart)
	}
	return sizes
}

func (e *Emitter) dispatch(sizes []int) {
	offset := 0
	for i, size := range sizes {
		c, ok := e.pool.Acquire()
		if !ok {
			e.logger.Warn("completion pool exhausted, dropping remaining datagrams",
				"dropped", len(sizes)-i, "sent", i)
			return
		}
		payload := e.buf[offset : offset+size]
		offset += size
		e.transport.Send(c, payload, func(c *transport.Completion, err error) {
			if err != nil {
				e.errCount++
				e.logger.Warn("statsd send failed", "error", err)
			}
			e.pool.Release(c)
		})
	}
}

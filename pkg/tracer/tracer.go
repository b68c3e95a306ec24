// Package tracer implements the replica's observability façade: start,
// stop, cancel, gauge, and emit_metrics. It owns the per-stack in-flight
// instant table, writes Chrome-trace JSON spans to an optional sink, and
// drives the aggregator and emitter.
package tracer

import (
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/instantcocoa/replicatrace/pkg/aggregate"
	"github.com/instantcocoa/replicatrace/pkg/clock"
	"github.com/instantcocoa/replicatrace/pkg/event"
	"github.com/instantcocoa/replicatrace/pkg/packet"
)

// traceSpanSizeMax bounds one formatted JSON span object; an oversize span
// is dropped and logged rather than truncated mid-object.
const traceSpanSizeMax = 1024

// stopLogThreshold is the duration above which Stop logs in milliseconds
// rather than microseconds, for readability.
const stopLogThreshold = 5 * time.Millisecond

type startSlot struct {
	valid bool
	at    clock.Instant
}

// Config carries a Tracer's collaborators. Clock, Emitter, and Logger are
// required; Sink is optional.
type Config struct {
	Clock   clock.Clock
	Emitter *packet.Emitter
	Sink    io.Writer
	Replica uint8
	Logger  *slog.Logger
}

// Tracer is the observability façade for one replica. It carries no
// lock: every method must be called from the same single logical
// execution context, never concurrently.
type Tracer struct {
	clock   clock.Clock
	emitter *packet.Emitter
	sink    io.Writer
	replica uint8
	logger  *slog.Logger

	table     *aggregate.Table
	started   []startSlot
	timeStart clock.Instant
	scratch   []byte
}

// New constructs a Tracer, capturing time_start and writing the trace
// sink's opening "[\n" if a sink is configured.
func New(cfg Config) *Tracer {
	t := &Tracer{
		clock:   cfg.Clock,
		emitter: cfg.Emitter,
		sink:    cfg.Sink,
		replica: cfg.Replica,
		logger:  cfg.Logger,
		table:   aggregate.NewTable(),
		started: make([]startSlot, event.StackCount),
		scratch: make([]byte, 0, traceSpanSizeMax),
	}
	t.timeStart = t.clock.Now()
	if t.sink != nil {
		if _, err := t.sink.Write([]byte("[\n")); err != nil {
			t.logger.Warn("trace sink write failed", "error", err)
		}
	}
	return t
}

// Close releases the emitter's transport. The trace sink is borrowed and
// is not closed here.
func (t *Tracer) Close() error {
	return t.emitter.Close()
}

// Start begins a span for e. Starting an already-running stack is a
// programmer error and panics.
func (t *Tracer) Start(e event.TracedEvent) {
	s := event.Stack(e)
	if t.started[s].valid {
		panic("tracer: start on already-running stack " + strconv.FormatUint(uint64(s), 10))
	}
	now := t.clock.Now()
	t.started[s] = startSlot{valid: true, at: now}
	t.emitBegin(e, s, now)
	t.logger.Debug("span start", "tag", e.Tag().String(), "stack", s)
}

// Stop ends the span for e, folding its duration into the timing
// aggregate. Stopping an idle stack is a programmer error and panics.
func (t *Tracer) Stop(e event.TracedEvent) {
	s := event.Stack(e)
	slot := t.started[s]
	if !slot.valid {
		panic("tracer: stop on idle stack " + strconv.FormatUint(uint64(s), 10))
	}
	t.started[s] = startSlot{}

	now := t.clock.Now()
	d := now.Sub(slot.at)
	durationUs := clock.Microseconds(d)
	t.table.Timing(e, durationUs)
	t.emitEnd(e.Tag(), s, now)

	if d >= stopLogThreshold {
		t.logger.Debug("span stop", "tag", e.Tag().String(), "stack", s, "duration_ms", d.Milliseconds())
	} else {
		t.logger.Debug("span stop", "tag", e.Tag().String(), "stack", s, "duration_us", durationUs)
	}
}

// Cancel ends every currently running stack of tag without folding a
// duration into the timing aggregate -- a cancelled span never counts
// toward timing statistics, since it never really completed. It is a
// no-op if no instance of tag is running.
func (t *Tracer) Cancel(tag event.Tag) {
	begin, end := event.StackRange(tag)
	now := t.clock.Now()
	for s := begin; s < end; s++ {
		if !t.started[s].valid {
			continue
		}
		t.started[s] = startSlot{}
		t.emitEnd(tag, s, now)
		t.logger.Debug("span cancel", "tag", tag.String(), "stack", s)
	}
}

// Gauge records a gauge sample. Last write wins.
func (t *Tracer) Gauge(e event.Gaugeable, value uint64) {
	t.table.Gauge(e, value)
}

// Timing records a duration sample directly, for timing-only tags that
// have no tracing stack (e.g. an fsync latency measured outside any
// Start/Stop pair).
func (t *Tracer) Timing(e event.Timeable, durationUs uint64) {
	t.table.Timing(e, durationUs)
}

// EmitMetrics packs and dispatches the current aggregate tables, wrapping
// the call in a span of its own so emission cost is observable. On
// success both tables are reset; on Busy they are left untouched.
func (t *Tracer) EmitMetrics() packet.Outcome {
	span := event.MetricsEmit{}
	t.Start(span)
	outcome := t.emitter.Emit(t.table.Gauges(), t.table.Timings())
	t.Stop(span)

	if outcome == packet.OutcomeSent {
		t.table.Reset()
	}
	return outcome
}

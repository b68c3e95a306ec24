package tracer

import (
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/instantcocoa/replicatrace/pkg/clock"
	"github.com/instantcocoa/replicatrace/pkg/event"
	"github.com/instantcocoa/replicatrace/pkg/packet"
	"github.com/instantcocoa/replicatrace/pkg/statsd"
	"github.com/instantcocoa/replicatrace/pkg/transport"
)

func newTestTracer(t *testing.T, sink *bytes.Buffer) (*Tracer, *packet.Emitter, *clock.FakeClock) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
	tr := transport.NewLogTransport(logger)
	emitter := packet.NewEmitter(tr, statsd.Options{Replica: 1}, logger)
	fc := clock.NewFakeClock(time.Unix(0, 0))
	var w io.Writer
	if sink != nil {
		w = sink
	}
	tracer := New(Config{Clock: fc, Emitter: emitter, Sink: w, Replica: 1, Logger: logger})
	return tracer, emitter, fc
}

func TestSinkOpensWithBracket(t *testing.T) {
	var sink bytes.Buffer
	newTestTracer(t, &sink)
	if !strings.HasPrefix(sink.String(), "[\n") {
		t.Fatalf("sink does not start with '[\\n': %q", sink.String())
	}
}

func TestJSONTraceShape(t *testing.T) {
	var sink bytes.Buffer
	tracer, _, fc := newTestTracer(t, &sink)

	commit := event.ReplicaCommit{Stage: event.CommitStageIdle, Op: 123}
	beat := event.CompactionBeat{Tree: event.TreeAccounts, Level: 1}

	tracer.Start(commit)
	fc.Advance(time.Microsecond)
	tracer.Start(beat)
	fc.Advance(time.Microsecond)
	tracer.Stop(beat)
	fc.Advance(time.Microsecond)
	tracer.Stop(event.ReplicaCommit{Stage: event.CommitStageIdle, Op: 456})

	out := sink.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 { // opening "[" plus 4 span lines
		t.Fatalf("got %d lines, want 5: %q", len(lines), out)
	}
	if lines[0] != "[" {
		t.Fatalf("first line = %q, want [", lines[0])
	}

	beatStack := event.Stack(beat)
	commitStack := event.Stack(commit)

	if !strings.Contains(lines[1], `"pid":1`) || !strings.Contains(lines[1], `"cat":"replica_commit"`) ||
		!strings.Contains(lines[1], `"ph":"B"`) || !strings.Contains(lines[1], `"stage":"idle"`) ||
		!strings.Contains(lines[1], `"op":123`) {
		t.Fatalf("span 1 malformed: %q", lines[1])
	}
	wantTid2 := `"tid":` + strconv.FormatUint(uint64(beatStack), 10)
	if !strings.Contains(lines[2], wantTid2) || !strings.Contains(lines[2], `"cat":"compaction_beat"`) || !strings.Contains(lines[2], `"ph":"B"`) {
		t.Fatalf("span 2 malformed: %q", lines[2])
	}
	if !strings.Contains(lines[3], wantTid2) || !strings.Contains(lines[3], `"ph":"E"`) || strings.Contains(lines[3], `"cat"`) {
		t.Fatalf("span 3 malformed: %q", lines[3])
	}
	wantTid4 := `"tid":` + strconv.FormatUint(uint64(commitStack), 10)
	if !strings.Contains(lines[4], wantTid4) || !strings.Contains(lines[4], `"ph":"E"`) || strings.Contains(lines[4], `"cat"`) {
		t.Fatalf("span 4 malformed: %q", lines[4])
	}
	for _, l := range lines[1:] {
		if !strings.HasSuffix(l, ",") {
			t.Fatalf("span line missing trailing comma: %q", l)
		}
	}
	if strings.Contains(out, "]") {
		t.Fatal("trace stream must never contain a closing ]")
	}
}

func TestStartWhileRunningPanics(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	e := event.GridScrub{}
	tracer.Start(e)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on start-while-running")
		}
	}()
	tracer.Start(e)
}

func TestStopWhileIdlePanics(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on stop-while-idle")
		}
	}()
	tracer.Stop(event.GridScrub{})
}

func TestCancelIsNoOpWhenNothingRunning(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	tracer.Cancel(event.TagIORead) // must not panic
}

func TestCancelDoesNotRecordTiming(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	e := event.IORead{Slot: 0}
	tracer.Start(e)
	tracer.Cancel(event.TagIORead)

	if tracer.table.Timings()[event.TimingSlot(e)] != nil {
		t.Fatal("cancel must not populate the timing aggregate")
	}

	// The stack must be free again: starting the same instance must not panic.
	tracer.Start(e)
	tracer.Stop(e)
}

func TestGaugeLastWriteWins(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	e := event.ReplicationLag{}
	tracer.Gauge(e, 1)
	tracer.Gauge(e, 2)

	got := tracer.table.Gauges()[event.MetricSlot(e)]
	if got == nil || got.Value != 2 {
		t.Fatalf("got %+v, want Value=2", got)
	}
}

func TestEmitMetricsClearsTablesOnSuccess(t *testing.T) {
	tracer, _, _ := newTestTracer(t, nil)
	tracer.Gauge(event.ConnectionCount{}, 5)

	outcome := tracer.EmitMetrics()
	if outcome != packet.OutcomeSent {
		t.Fatalf("EmitMetrics() = %v, want OutcomeSent", outcome)
	}
	for _, g := range tracer.table.Gauges() {
		if g != nil {
			t.Fatal("expected all gauge slots cleared after successful emit")
		}
	}
}

func TestEmitMetricsPreservesTablesOnBusy(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
	holdingTr := &holdingTransport{}
	emitter := packet.NewEmitter(holdingTr, statsd.Options{Replica: 1}, logger)
	fc := clock.NewFakeClock(time.Unix(0, 0))
	tracer := New(Config{Clock: fc, Emitter: emitter, Replica: 1, Logger: logger})

	tracer.Gauge(event.ConnectionCount{}, 9)
	if outcome := tracer.EmitMetrics(); outcome != packet.OutcomeSent {
		t.Fatalf("first EmitMetrics() = %v, want OutcomeSent", outcome)
	}

	tracer.Gauge(event.StorageUsedBytes{}, 40)
	before := tracer.table.Gauges()[event.MetricSlot(event.StorageUsedBytes{})]

	if outcome := tracer.EmitMetrics(); outcome != packet.OutcomeBusy {
		t.Fatalf("second EmitMetrics() = %v, want OutcomeBusy", outcome)
	}
	after := tracer.table.Gauges()[event.MetricSlot(event.StorageUsedBytes{})]
	if after == nil || *after != *before {
		t.Fatal("aggregates must be preserved across a Busy emit")
	}
}

type holdingTransport struct{}

func (t *holdingTransport) Send(_ *transport.Completion, _ []byte, _ transport.Callback) {}
func (t *holdingTransport) Close() error                                                 { return nil }

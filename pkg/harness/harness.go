// Package harness drives a simulated replica workload against the tracer
// façade, exercising the observability core end to end without a real
// database engine behind it.
package harness

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/instantcocoa/replicatrace/pkg/clock"
	"github.com/instantcocoa/replicatrace/pkg/config"
	"github.com/instantcocoa/replicatrace/pkg/event"
	"github.com/instantcocoa/replicatrace/pkg/packet"
	"github.com/instantcocoa/replicatrace/pkg/statsd"
	"github.com/instantcocoa/replicatrace/pkg/tracer"
	"github.com/instantcocoa/replicatrace/pkg/transport"
)

// tickInterval is the fixed cadence of one simulated workload beat.
const tickInterval = 20 * time.Millisecond

// Harness owns a Tracer and everything it was built from, and drives a
// bounded simulated replica workload across it. It never reaches into the
// tracer's internal tables; every observation goes through Start, Stop,
// Cancel, Gauge and Timing exactly as a real replica would call them.
type Harness struct {
	tracer    *tracer.Tracer
	sink      io.Closer
	logger    *slog.Logger
	emitEvery time.Duration
	tick      uint64
}

// New wires a Tracer from cfg: a Clock, a Transport, a trace sink and a
// packet.Emitter, in the same construct-then-run order the teacher's
// services use for their store/handler/server chain.
func New(cfg *config.Config, logger *slog.Logger) (*Harness, error) {
	tr, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}

	sinkFile, sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}

	opts := statsd.Options{Cluster: cfg.Cluster, Replica: cfg.Replica}
	emitter := packet.NewEmitter(tr, opts, logger)

	tracerLogger := logger.With("component", "tracer")
	t := tracer.New(tracer.Config{
		Clock:   clock.SystemClock{},
		Emitter: emitter,
		Sink:    sink,
		Replica: cfg.Replica,
		Logger:  tracerLogger,
	})

	runID := uuid.New()
	hlogger := logger.With("component", "harness", "run_id", runID.String())
	hlogger.Info("harness run identified", "run_id", runID.String())

	return &Harness{
		tracer:    t,
		sink:      sinkFile,
		logger:    hlogger,
		emitEvery: cfg.EmitInterval,
	}, nil
}

func newTransport(cfg *config.Config, logger *slog.Logger) (transport.Transport, error) {
	if cfg.StatsDMode == config.StatsDModeUDP {
		logger.Info("dialing statsd transport", "mode", "udp", "addr", cfg.StatsDAddr)
		return transport.DialUDP(cfg.StatsDAddr)
	}
	logger.Info("using log-mode statsd transport", "mode", "log")
	return transport.NewLogTransport(logger.With("component", "statsd")), nil
}

// newSink opens the trace file named by cfg, if any, and returns it both
// as the io.Closer the harness owns and as the io.Writer the tracer
// writes spans to.
func newSink(cfg *config.Config) (io.Closer, io.Writer, error) {
	if cfg.TracePath == "" {
		return nil, nil, nil
	}
	f, err := newTraceFile(cfg.TracePath)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// Close releases the transport underlying the tracer's emitter and closes
// the trace sink, if any.
func (h *Harness) Close() error {
	err := h.tracer.Close()
	if h.sink != nil {
		if sinkErr := h.sink.Close(); sinkErr != nil && err == nil {
			err = sinkErr
		}
	}
	return err
}

// Run drives the simulated workload until ctx is cancelled. It calls
// start/stop/cancel/gauge across the event catalogue on a fixed tick and
// calls EmitMetrics on the slower cadence cfg.EmitInterval named it with.
func (h *Harness) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	emitTicker := time.NewTicker(h.emitEvery)
	defer emitTicker.Stop()

	h.logger.Info("harness started", "tick", tickInterval, "emit_interval", h.emitEvery)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("harness stopping")
			return nil
		case <-ticker.C:
			h.beat()
		case <-emitTicker.C:
			h.emit()
		}
	}
}

// beat runs one simulated tick of replica activity: it walks a scripted
// sequence of start/stop/cancel/gauge calls across the catalogue, driven
// by h.tick so consecutive beats exercise different stacks and slots.
func (h *Harness) beat() {
	n := h.tick
	h.tick++

	stage := event.CommitStage(n % 4)
	commit := event.ReplicaCommit{Stage: stage, Op: n}
	h.tracer.Start(commit)
	h.tracer.Stop(commit)

	op := event.ClientOp(n % 3)
	slot := uint32(n % 64)
	req := event.ClientRequest{Operation: op, Slot: slot}
	h.tracer.Start(req)
	if n%7 == 6 {
		// Simulate a client disconnecting mid-request: the span never
		// stops cleanly, so the harness cancels its tag instead.
		h.tracer.Cancel(event.TagClientRequest)
	} else {
		h.tracer.Stop(req)
	}
	h.tracer.Timing(event.ClientRequestLatency{Operation: op}, n%5000)

	tree := event.TreeName(n % 4)
	beat := event.CompactionBeat{Tree: tree, Level: uint8(n % 4)}
	h.tracer.Start(beat)
	h.tracer.Stop(beat)
	h.tracer.Gauge(event.CacheHits{Tree: tree}, n*3)
	h.tracer.Gauge(event.CacheMisses{Tree: tree}, n)

	ioSlot := uint8(n % 32)
	read := event.IORead{Slot: ioSlot}
	h.tracer.Start(read)
	h.tracer.Stop(read)
	write := event.IOWrite{Slot: ioSlot}
	h.tracer.Start(write)
	h.tracer.Stop(write)

	h.tracer.Timing(event.ReplicaAofWrite{}, n%2000)
	h.tracer.Gauge(event.ReplicationLag{}, n%10)
	h.tracer.Gauge(event.StorageUsedBytes{}, n*4096)
	h.tracer.Gauge(event.ConnectionCount{}, n%128)

	if n%50 == 0 {
		scrub := event.GridScrub{}
		h.tracer.Start(scrub)
		h.tracer.Stop(scrub)
	}
}

// emit flushes the aggregate tables through the tracer's emitter, logging
// backpressure the way the teacher's services log a busy downstream.
func (h *Harness) emit() {
	switch h.tracer.EmitMetrics() {
	case packet.OutcomeBusy:
		h.logger.Warn("emit skipped, transport still draining previous batch")
	case packet.OutcomeSent:
		h.logger.Debug("metrics emitted")
	}
}

package event

import "strconv"

// Field is one pre-formatted tag field of an event's payload, in the order
// it must appear in a formatted StatsD line or trace span.
type Field struct {
	Name  string
	Value string
	// Numeric marks Value as a bare decimal integer rather than an enum
	// tag name, so JSON span encoding can emit it unquoted.
	Numeric bool
}

// Event is the base view every catalogue member implements: its tag and
// its payload fields, formatted for the wire.
type Event interface {
	Tag() Tag
	Fields() []Field
}

// Traceable is the tracing view of an event: it carries a stack-slot
// assignment used to disambiguate concurrent in-flight spans of the same
// tag.
type Traceable interface {
	Event
	StackIndex() uint32
}

// Timeable is the EventTiming view: an event that maps to a flat slot in
// the timing aggregate table.
type Timeable interface {
	Event
	TimingIndex() uint32
}

// Gaugeable is the EventMetric view: an event that maps to a flat slot in
// the gauge aggregate table.
type Gaugeable interface {
	Event
	MetricIndex() uint32
}

// TracedEvent is any event that can be passed to Tracer.Start/Stop: it
// carries both a tracing stack and a timing slot, since stop() always
// updates the timing aggregate for the event it started.
type TracedEvent interface {
	Traceable
	Timeable
}

func decimalField(name string, v uint64) Field {
	return Field{Name: name, Value: strconv.FormatUint(v, 10), Numeric: true}
}

// ReplicaCommit reports progress of a single logical operation through the
// commit pipeline. The pipeline is single-flight per replica, so it owns
// exactly one tracing stack.
type ReplicaCommit struct {
	Stage CommitStage
	Op    uint64
}

func (e ReplicaCommit) Tag() Tag             { return TagReplicaCommit }
func (e ReplicaCommit) StackIndex() uint32   { return 0 }
func (e ReplicaCommit) TimingIndex() uint32  { return uint32(e.Stage) }
func (e ReplicaCommit) Fields() []Field {
	return []Field{{Name: "stage", Value: e.Stage.String()}, decimalField("op", e.Op)}
}

// ClientRequest reports processing of one inbound client request. Slot is
// the caller-assigned concurrency slot in [0, clientRequestConcurrencyMax)
// identifying which in-flight request this is.
type ClientRequest struct {
	Operation ClientOp
	Slot      uint32
}

func (e ClientRequest) Tag() Tag            { return TagClientRequest }
func (e ClientRequest) StackIndex() uint32  { return e.Slot }
func (e ClientRequest) TimingIndex() uint32 { return uint32(e.Operation) }
func (e ClientRequest) Fields() []Field {
	return []Field{{Name: "operation", Value: e.Operation.String()}}
}

// CompactionBeat reports one compaction beat for one tree level. It owns
// one tracing stack and one timing slot per (tree, level) pair.
type CompactionBeat struct {
	Tree  TreeName
	Level uint8
}

func (e CompactionBeat) Tag() Tag { return TagCompactionBeat }
func (e CompactionBeat) index() uint32 {
	return uint32(e.Tree)*compactionLevelsMax + uint32(e.Level)
}
func (e CompactionBeat) StackIndex() uint32  { return e.index() }
func (e CompactionBeat) TimingIndex() uint32 { return e.index() }
func (e CompactionBeat) Fields() []Field {
	return []Field{{Name: "tree", Value: e.Tree.String()}, decimalField("level", uint64(e.Level))}
}

// IORead reports one in-flight read request. Slot is the caller-assigned
// queue slot in [0, ioQueueDepthMax); all reads aggregate into one timing
// slot regardless of which queue slot served them.
type IORead struct {
	Slot uint8
}

func (e IORead) Tag() Tag            { return TagIORead }
func (e IORead) StackIndex() uint32  { return uint32(e.Slot) }
func (e IORead) TimingIndex() uint32 { return 0 }
func (e IORead) Fields() []Field     { return nil }

// IOWrite is the write-direction counterpart of IORead.
type IOWrite struct {
	Slot uint8
}

func (e IOWrite) Tag() Tag            { return TagIOWrite }
func (e IOWrite) StackIndex() uint32  { return uint32(e.Slot) }
func (e IOWrite) TimingIndex() uint32 { return 0 }
func (e IOWrite) Fields() []Field     { return nil }

// GridScrub reports one background storage-scrubbing pass. Scrubbing is
// single-flight per replica.
type GridScrub struct{}

func (e GridScrub) Tag() Tag            { return TagGridScrub }
func (e GridScrub) StackIndex() uint32  { return 0 }
func (e GridScrub) TimingIndex() uint32 { return 0 }
func (e GridScrub) Fields() []Field     { return nil }

// MetricsEmit wraps a call to Tracer.EmitMetrics so the cost of emission
// itself is observable.
type MetricsEmit struct{}

func (e MetricsEmit) Tag() Tag            { return TagMetricsEmit }
func (e MetricsEmit) StackIndex() uint32  { return 0 }
func (e MetricsEmit) TimingIndex() uint32 { return 0 }
func (e MetricsEmit) Fields() []Field     { return nil }

// CacheHits is a gauge-only tag: the number of cache hits observed for one
// logical tree since the last emission.
type CacheHits struct {
	Tree TreeName
}

func (e CacheHits) Tag() Tag             { return TagCacheHits }
func (e CacheHits) MetricIndex() uint32  { return uint32(e.Tree) }
func (e CacheHits) Fields() []Field      { return []Field{{Name: "tree", Value: e.Tree.String()}} }

// CacheMisses is the miss-side counterpart of CacheHits.
type CacheMisses struct {
	Tree TreeName
}

func (e CacheMisses) Tag() Tag            { return TagCacheMisses }
func (e CacheMisses) MetricIndex() uint32 { return uint32(e.Tree) }
func (e CacheMisses) Fields() []Field     { return []Field{{Name: "tree", Value: e.Tree.String()}} }

// ReplicationLag is a gauge-only tag reporting the replica's lag, in
// operations, behind the cluster's commit head.
type ReplicationLag struct{}

func (e ReplicationLag) Tag() Tag            { return TagReplicationLag }
func (e ReplicationLag) MetricIndex() uint32 { return 0 }
func (e ReplicationLag) Fields() []Field     { return nil }

// StorageUsedBytes is a gauge-only tag reporting on-disk storage usage.
type StorageUsedBytes struct{}

func (e StorageUsedBytes) Tag() Tag            { return TagStorageUsedBytes }
func (e StorageUsedBytes) MetricIndex() uint32 { return 0 }
func (e StorageUsedBytes) Fields() []Field     { return nil }

// ConnectionCount is a gauge-only tag reporting the number of open client
// connections.
type ConnectionCount struct{}

func (e ConnectionCount) Tag() Tag            { return TagConnectionCount }
func (e ConnectionCount) MetricIndex() uint32 { return 0 }
func (e ConnectionCount) Fields() []Field     { return nil }

// ReplicaAofWrite is a timing-only tag with no tracing stack: its duration
// samples are recorded directly via Tracer.Timing rather than Start/Stop,
// because the write-ahead-log fsync it measures is not itself a span the
// replica keeps open.
type ReplicaAofWrite struct{}

func (e ReplicaAofWrite) Tag() Tag            { return TagReplicaAofWrite }
func (e ReplicaAofWrite) TimingIndex() uint32 { return 0 }
func (e ReplicaAofWrite) Fields() []Field     { return nil }

// ClientRequestLatency is a timing-only tag recording end-to-end client
// request latency, bucketed by operation, independent of the
// client_request tracing stack.
type ClientRequestLatency struct {
	Operation ClientOp
}

func (e ClientRequestLatency) Tag() Tag            { return TagClientRequestLatency }
func (e ClientRequestLatency) TimingIndex() uint32 { return uint32(e.Operation) }
func (e ClientRequestLatency) Fields() []Field {
	return []Field{{Name: "operation", Value: e.Operation.String()}}
}

// Package event defines the closed catalogue of observability events a
// replica can record: their tags, tracing-stack cardinality, and the
// aggregate slots they map onto.
package event

// Tag identifies one variant of the event catalogue. The catalogue is
// closed: every Tag has a fixed name, a fixed tracing-stack cardinality
// (possibly zero) and fixed timing/metric slot cardinalities (possibly
// zero), all wired up in schema.go.
type Tag uint8

const (
	TagReplicaCommit Tag = iota
	TagClientRequest
	TagCompactionBeat
	TagIORead
	TagIOWrite
	TagGridScrub
	TagMetricsEmit
	TagCacheHits
	TagCacheMisses
	TagReplicationLag
	TagStorageUsedBytes
	TagConnectionCount
	TagReplicaAofWrite
	TagClientRequestLatency

	tagCount
)

var tagNames = [tagCount]string{
	TagReplicaCommit:       "replica_commit",
	TagClientRequest:       "client_request",
	TagCompactionBeat:      "compaction_beat",
	TagIORead:              "io_read",
	TagIOWrite:             "io_write",
	TagGridScrub:           "grid_scrub",
	TagMetricsEmit:         "metrics_emit",
	TagCacheHits:           "cache_hits",
	TagCacheMisses:         "cache_misses",
	TagReplicationLag:      "replication_lag",
	TagStorageUsedBytes:    "storage_used_bytes",
	TagConnectionCount:     "connection_count",
	TagReplicaAofWrite:     "replica_aof_write",
	TagClientRequestLatency: "client_request_latency",
}

// String returns the tag's StatsD/trace name.
func (t Tag) String() string {
	if int(t) < 0 || t >= tagCount {
		return "unknown"
	}
	return tagNames[t]
}

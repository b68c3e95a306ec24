package event

// maxUint64Decimal is the longest decimal rendering of any value this
// catalogue's integer fields can take.
const maxUint64Decimal = "18446744073709551615" // 20 digits, math.MaxUint64
const maxUint8Decimal = "255"

func longest(names []string) string {
	best := ""
	for _, n := range names {
		if len(n) > len(best) {
			best = n
		}
	}
	return best
}

var longestCommitStage = longest(commitStageNames[:])
var longestClientOp = longest(clientOpNames[:])
var longestTreeName = longest(treeNames[:])

// worstCaseFields[tag] holds one field set per tag, populated with the
// value that produces the longest (in bytes) formatted field for that
// field's type: the maximum-width integer, or the longest enum tag
// name. StatsD line size budgeting sums over these instead of over any
// concrete event value.
var worstCaseFields = [tagCount][]Field{
	TagReplicaCommit: {
		{Name: "stage", Value: longestCommitStage},
		{Name: "op", Value: maxUint64Decimal},
	},
	TagClientRequest: {
		{Name: "operation", Value: longestClientOp},
	},
	TagCompactionBeat: {
		{Name: "tree", Value: longestTreeName},
		{Name: "level", Value: maxUint8Decimal},
	},
	TagCacheHits: {
		{Name: "tree", Value: longestTreeName},
	},
	TagCacheMisses: {
		{Name: "tree", Value: longestTreeName},
	},
	TagClientRequestLatency: {
		{Name: "operation", Value: longestClientOp},
	},
	// TagIORead, TagIOWrite, TagGridScrub, TagMetricsEmit,
	// TagReplicationLag, TagStorageUsedBytes, TagConnectionCount,
	// TagReplicaAofWrite carry no payload fields; their zero-value nil
	// entries in this table are already correct.
}

// WorstCaseFields returns the field set that produces the longest
// formatted line for a tag, for use by the StatsD line-size budget
// computation.
func WorstCaseFields(t Tag) []Field {
	return worstCaseFields[t]
}

// reservedFieldNames must never appear as a payload field name: they are
// reserved for the cluster/replica tags every StatsD line carries.
var reservedFieldNames = map[string]bool{"cluster": true, "replica": true}

func init() {
	for t := Tag(0); t < tagCount; t++ {
		for _, f := range worstCaseFields[t] {
			if reservedFieldNames[f.Name] {
				panic("event: tag " + t.String() + " uses reserved field name " + f.Name)
			}
		}
	}
}

// Package statsd formats replica event samples as StatsD protocol lines
// bounded to fit one UDP datagram, in the spirit of the zero-allocation
// packet-oriented StatsD clients in the wider Go ecosystem.
package statsd

import (
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/instantcocoa/replicatrace/pkg/event"
)

// ErrLineTooLong is returned when a formatted line would exceed
// LineSizeMax. The event catalogue is constructed so this can never
// happen for an admissible payload; callers should log and drop the
// sample rather than propagate the error.
var ErrLineTooLong = errors.New("statsd: no space left for line")

// TimingStat selects which of the five StatsD lines a timing aggregate
// contributes.
type TimingStat int

const (
	TimingMin TimingStat = iota
	TimingMax
	TimingAvg
	TimingSum
	TimingCount
)

// timingStatOrder is the mandated emission order for one timing aggregate.
var timingStatOrder = [5]TimingStat{TimingMin, TimingMax, TimingAvg, TimingSum, TimingCount}

func (s TimingStat) suffixAndType() (suffix, kind string) {
	switch s {
	case TimingMin:
		return "_us.min", "g"
	case TimingMax:
		return "_us.max", "g"
	case TimingAvg:
		return "_us.avg", "g"
	case TimingSum:
		return "_us.sum", "c"
	case TimingCount:
		return "_us.count", "c"
	default:
		panic("statsd: invalid timing stat")
	}
}

// Options carries the tags every StatsD line and trace span includes.
type Options struct {
	Cluster [16]byte
	Replica uint8
}

// AppendGauge appends one gauge line for tag, with the given payload
// fields and value, to dst. It returns the extended slice, or dst and
// ErrLineTooLong if the result would exceed LineSizeMax.
func AppendGauge(dst []byte, tag event.Tag, fields []event.Field, value uint64, opts Options) ([]byte, error) {
	return capLine(dst, buildLine(dst, tag, "", "g", value, fields, opts))
}

// AppendTimingStat appends one of the five StatsD lines for a timing
// aggregate. avg is computed by the caller as floor(sum/count).
func AppendTimingStat(dst []byte, tag event.Tag, fields []event.Field, stat TimingStat, value uint64, opts Options) ([]byte, error) {
	suffix, kind := stat.suffixAndType()
	return capLine(dst, buildLine(dst, tag, suffix, kind, value, fields, opts))
}

// TimingStatOrder returns the five stat kinds in the order they must be
// appended for one timing aggregate: min, max, avg, sum, then count.
func TimingStatOrder() [5]TimingStat {
	return timingStatOrder
}

// capLine rejects a formatted line if it grew the buffer past LineSizeMax.
// LineSizeMax itself is derived by calling buildLine directly during
// package init, before this cap can be enforced -- see budget.go.
func capLine(dst, out []byte) ([]byte, error) {
	if len(out)-len(dst) > LineSizeMax {
		return dst, ErrLineTooLong
	}
	return out, nil
}

func buildLine(dst []byte, tag event.Tag, suffix, kind string, value uint64, fields []event.Field, opts Options) []byte {
	out := dst
	out = append(out, "tb."...)
	out = append(out, tag.String()...)
	out = append(out, suffix...)
	out = append(out, ':')
	out = strconv.AppendUint(out, value, 10)
	out = append(out, '|')
	out = append(out, kind...)
	out = append(out, "|#cluster:"...)
	var hexBuf [32]byte
	hex.Encode(hexBuf[:], opts.Cluster[:])
	out = append(out, hexBuf[:]...)
	out = append(out, ",replica:"...)
	out = strconv.AppendUint(out, uint64(opts.Replica), 10)
	for _, f := range fields {
		out = append(out, ',')
		out = append(out, f.Name...)
		out = append(out, ':')
		out = append(out, f.Value...)
	}
	out = append(out, '\n')
	return out
}

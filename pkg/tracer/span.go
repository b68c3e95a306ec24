package tracer

import (
	"strconv"

	"github.com/instantcocoa/replicatrace/pkg/clock"
	"github.com/instantcocoa/replicatrace/pkg/event"
)

// emitBegin writes a phase-B span for e if a sink is configured.
func (t *Tracer) emitBegin(e event.TracedEvent, stack uint32, now clock.Instant) {
	if t.sink == nil {
		return
	}
	name := e.Tag().String() + " " + strconv.FormatUint(uint64(stack), 10) + " " + strconv.FormatUint(uint64(e.TimingIndex()), 10)
	t.writeSpan('B', e.Tag(), stack, now, name, e.Fields())
}

// emitEnd writes a phase-E span if a sink is configured. Phase-E objects
// carry no cat/name/args: end events are matched by tid alone.
func (t *Tracer) emitEnd(tag event.Tag, stack uint32, now clock.Instant) {
	if t.sink == nil {
		return
	}
	t.writeSpan('E', tag, stack, now, "", nil)
}

func (t *Tracer) writeSpan(phase byte, tag event.Tag, stack uint32, now clock.Instant, name string, fields []event.Field) {
	ts := clock.Microseconds(now.Sub(t.timeStart))

	buf := t.scratch[:0]
	buf = append(buf, '{')
	buf = append(buf, `"pid":`...)
	buf = strconv.AppendUint(buf, uint64(t.replica), 10)
	buf = append(buf, `,"tid":`...)
	buf = strconv.AppendUint(buf, uint64(stack), 10)
	if phase == 'B' {
		buf = append(buf, `,"cat":"`...)
		buf = append(buf, tag.String()...)
		buf = append(buf, '"')
	}
	buf = append(buf, `,"ph":"`...)
	buf = append(buf, phase)
	buf = append(buf, '"')
	buf = append(buf, `,"ts":`...)
	buf = strconv.AppendUint(buf, ts, 10)
	if phase == 'B' {
		buf = append(buf, `,"name":"`...)
		buf = append(buf, name...)
		buf = append(buf, '"')
		buf = append(buf, `,"args":{`...)
		for i, f := range fields {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, '"')
			buf = append(buf, f.Name...)
			buf = append(buf, `":`...)
			if f.Numeric {
				buf = append(buf, f.Value...)
			} else {
				buf = append(buf, '"')
				buf = append(buf, f.Value...)
				buf = append(buf, '"')
			}
		}
		buf = append(buf, '}')
	}
	buf = append(buf, '}')

	if len(buf) > traceSpanSizeMax {
		t.logger.Warn("dropping oversize trace span", "tag", tag.String(), "size", len(buf))
		return
	}
	t.scratch = buf

	t.scratch = append(t.scratch, ",\n"...)
	if _, err := t.sink.Write(t.scratch); err != nil {
		t.logger.Warn("trace sink write failed", "error", err)
	}
}

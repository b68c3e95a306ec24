package transport

import "log/slog"

// LogTransport writes the datagram payload to a logger instead of a
// socket and invokes the completion callback inline with a nil error, a
// deterministic "log mode" used by the simulator harness and this
// module's own tests.
type LogTransport struct {
	logger *slog.Logger
	// Fail, when non-nil, is consulted before logging; if it returns a
	// non-nil error, Send reports that error instead of succeeding. Used
	// to inject send failures in tests.
	Fail func(payload []byte) error
}

// NewLogTransport returns a log-mode transport writing datagrams at debug
// level under logger.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(c *Completion, payload []byte, callback Callback) {
	var err error
	if t.Fail != nil {
		err = t.Fail(payload)
	}
	if err == nil {
		t.logger.Debug("statsd datagram", "bytes", len(payload), "payload", string(payload))
	}
	callback(c, err)
}

func (t *LogTransport) Close() error { return nil }

var _ Transport = (*LogTransport)(nil)

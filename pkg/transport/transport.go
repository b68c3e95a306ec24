// Package transport supplies the concrete realizations of the module's
// asynchronous I/O layer: a connected-datagram send primitive with
// completion callbacks, plus a deterministic log-mode stand-in for
// tests.
package transport

// Callback is invoked once a Send completes, with the completion handle
// that was used and the outcome. Implementations in this package invoke
// it synchronously and on the caller's goroutine -- there is no
// cross-goroutine handoff to guard against.
type Callback func(c *Completion, err error)

// Sender is the send half of the I/O layer contract. Send must not
// block indefinitely; on return, either payload has been handed off or
// callback has already fired synchronously with an error.
type Sender interface {
	Send(c *Completion, payload []byte, callback Callback)
}

// Closer optionally releases resources a Sender owns (e.g. a socket).
type Closer interface {
	Close() error
}

// Transport is the full contract the packet emitter depends on.
type Transport interface {
	Sender
	Closer
}

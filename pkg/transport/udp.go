package transport

import "net"

// UDPTransport sends datagrams over a pre-connected net.UDPConn. It never
// retries and never queues: a failed write increments the caller's error
// counter through callback and is otherwise forgotten.
type UDPTransport struct {
	conn *net.UDPConn
}

// DialUDP connects a UDP socket to addr, ready for connected-datagram
// sends.
func DialUDP(addr string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &UDPTransport{conn: conn}, nil
}

// Send writes payload to the connected socket and invokes callback
// synchronously with the result. A short write is treated as a send
// error: StatsD lines are not resumable mid-datagram.
func (t *UDPTransport) Send(c *Completion, payload []byte, callback Callback) {
	n, err := t.conn.Write(payload)
	if err == nil && n != len(payload) {
		err = errShortWrite(n, len(payload))
	}
	callback(c, err)
}

// Close closes the underlying socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

type shortWriteError struct {
	wrote, want int
}

func (e shortWriteError) Error() string {
	return "transport: short write"
}

func errShortWrite(wrote, want int) error {
	return shortWriteError{wrote: wrote, want: want}
}

var _ Transport = (*UDPTransport)(nil)

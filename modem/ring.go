package modem

import (
	"errors"
	"net"
	"time"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Non-blocking wrapper around a TCP connection, used by
 *		the link layer's socket pump (spec.md §4.4).
 *
 * Description:	The reference implementation opens the socket with
 *		O_NONBLOCK so recv() returns immediately, possibly with
 *		zero bytes, instead of blocking the single audio-frame
 *		thread. net.Conn has no non-blocking mode of its own, so
 *		an immediate read deadline is used to get the same
 *		effect: a Read that would block instead returns (0, nil).
 *
 *---------------------------------------------------------------*/

// netConn is the socket surface the link layer depends on. Tests
// substitute an in-memory fake; production wires a *nonBlockingConn
// wrapping a real *net.TCPConn.
type netConn interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

// nonBlockingConn adapts a net.Conn so that Read never blocks: if no
// data is queued, it returns (0, nil) rather than waiting.
type nonBlockingConn struct {
	net.Conn
}

func newNonBlockingConn(c net.Conn) *nonBlockingConn {
	return &nonBlockingConn{Conn: c}
}

func (c *nonBlockingConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.Conn.Read(b)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

// Dial opens a TCP connection to addr (already validated "host:port")
// and wraps it for non-blocking reads, mirroring the reference
// v23_connect's fcntl(O_NONBLOCK) call.
func Dial(addr string) (netConn, error) {
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return nil, err
	}
	return newNonBlockingConn(conn), nil
}

// readLen is the maximum number of bytes drained from the socket per
// pump call (spec.md §4.4, READLEN=32).
const readLen = 32

// pumpSocket drains up to readLen bytes from the socket into the
// circular buffer at readp, but only when there are more than 2*readLen
// bytes of headroom ahead of the oldest retained byte. Returns true if
// the connection has failed fatally.
func (l *LinkLayer) pumpSocket() bool {
	lb := l.last
	if lb < 0 {
		lb = l.border
	}

	var free int
	switch {
	case lb == l.readp:
		free = l.blen
	case lb > l.readp:
		free = lb - l.readp
	default:
		free = l.blen - (l.readp - lb)
	}

	if free <= 2*readLen {
		return false
	}

	var buf [readLen]byte
	n, err := l.conn.Read(buf[:])
	if err != nil {
		return true
	}
	for i := 0; i < n; i++ {
		l.buffer[l.readp] = buf[i]
		l.readp = (l.readp + 1) % l.blen
	}
	return false
}

// send forwards a single byte to the TCP peer. A write failure is
// fatal, per spec.md §4.5 / §7.
func (l *LinkLayer) send(b byte) bool {
	_, err := l.conn.Write([]byte{b})
	return err != nil
}

package checker

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/Jigsaw-Code/outline-sdk/transport"
	"github.com/Jigsaw-Code/outline-sdk/x/configurl"

	"proxy-discovery/pkg/models"
)

// NewViaDialer builds a stream dialer from an outline transport config, such
// as "socks5://127.0.0.1:9050" or "ss://...". Proxies are then reached
// through that transport. An empty config dials directly.
func NewViaDialer(config string) (transport.StreamDialer, error) {
	return configurl.NewDefaultConfigToDialer().NewStreamDialer(config)
}

func newTCPDialer(timeout time.Duration) transport.StreamDialer {
	return &transport.TCPDialer{Dialer: net.Dialer{Timeout: timeout}}
}

// tuneConn disables lingering and enables no-delay on direct TCP connections.
func tuneConn(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	// close in the background
	tcp.SetLinger(-1)
	tcp.SetNoDelay(true)
}

// deadlineConn applies a per-operation timeout, refreshed before each Read
// and Write. A zero timeout means no deadline.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func withTimeout(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, timeout: timeout}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

// classify maps an error raised during a check to a result. Anything seen
// after the context is done is a cancellation, since closing a socket under
// an in-flight operation surfaces as arbitrary I/O errors.
func classify(ctx context.Context, err error) (models.CheckResult, string) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return models.Canceled, msgCanceled
	}

	var netErr net.Error
	var errno syscall.Errno
	switch {
	case errors.As(err, &netErr),
		errors.As(err, &errno),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed):
		return models.NetworkError, findBaseError(err).Error()
	}
	return models.Failure, err.Error()
}

// findBaseError unwraps an error chain to find the most basic underlying error
func findBaseError(err error) error {
	for err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			errs := joined.Unwrap()
			if len(errs) > 0 {
				// the last one is usually the most specific
				err = errs[len(errs)-1]
				continue
			}
		}

		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
	return err
}

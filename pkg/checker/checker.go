package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"

	"proxy-discovery/pkg/models"
)

// ErrNotPrepared is the panic value when a ProxyChecker is used before Prepare.
var ErrNotPrepared = errors.New("proxy checker is not prepared, call Prepare() first")

const (
	msgCanceled       = "Check has been canceled"
	msgClosedByProxy  = "Connection closed by the proxy server."
	msgUnparsableResp = "Couldn't parse proxy response."
)

// TestResult is the outcome of a handshake or tunnel probe.
type TestResult struct {
	Result  models.CheckResult
	Message string
}

func result(r models.CheckResult, format string, args ...any) TestResult {
	if len(args) == 0 {
		return TestResult{Result: r, Message: format}
	}
	return TestResult{Result: r, Message: fmt.Sprintf(format, args...)}
}

var canceled = TestResult{Result: models.Canceled, Message: msgCanceled}

// ProtocolChecker performs the proxy protocol handshake over an open
// connection. An OK result means conn is now a tunnel to the target; any
// other result means conn must not be reused. I/O failures are returned as
// errors and classified by the caller.
type ProtocolChecker interface {
	// Prepare builds the request bytes for target. It is called once.
	Prepare(target *url.URL) error
	TestConnection(ctx context.Context, target *url.URL, proxy *models.ProxyInformation, conn net.Conn) (TestResult, error)
	Validate() []string
}

// DefaultProtocols returns a fresh registry with the http, socks4 and
// socks5 checkers.
func DefaultProtocols() map[string]ProtocolChecker {
	return map[string]ProtocolChecker{
		"http":   &HTTPConnect{},
		"socks4": &Socks4{},
		"socks5": &Socks5{},
	}
}

// targetPort returns the explicit port of u or the scheme default.
func targetPort(u *url.URL) (uint16, error) {
	if p := u.Port(); p != "" {
		v, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid target port %q", p)
		}
		return uint16(v), nil
	}
	switch u.Scheme {
	case "https":
		return 443, nil
	case "http":
		return 80, nil
	default:
		return 0, fmt.Errorf("no port for scheme %q", u.Scheme)
	}
}

// readOnce reads a single response chunk. closed is set when the peer shut
// the connection without sending anything.
func readOnce(conn net.Conn, size int) (buf []byte, closed bool, err error) {
	buf = make([]byte, size)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], false, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, true, nil
	}
	return nil, false, err
}

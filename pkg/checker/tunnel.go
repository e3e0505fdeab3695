package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/url"
	"strconv"

	"proxy-discovery/pkg/codec"
	"proxy-discovery/pkg/models"
)

// Capability tells which target schemes a tunnel tester can speak.
type Capability int

const (
	DontCare Capability = iota
	HTTP
	SSL
)

func (c Capability) String() string {
	switch c {
	case HTTP:
		return "http"
	case SSL:
		return "ssl"
	default:
		return "dontcare"
	}
}

// TunnelTester sends an application probe through an established tunnel.
type TunnelTester interface {
	CheckTunnel(ctx context.Context, target *url.URL, conn net.Conn) (TestResult, error)
	Capability() Capability
}

// NewTunnelTester returns the tester for name: "none", "head" or "trace".
func NewTunnelTester(name string) (TunnelTester, bool) {
	switch name {
	case "none":
		return NoneTester{}, true
	case "head", "":
		return HeadTester(), true
	case "trace":
		return TraceTester(), true
	default:
		return nil, false
	}
}

// NoneTester accepts every tunnel without sending anything.
type NoneTester struct{}

func (NoneTester) CheckTunnel(context.Context, *url.URL, net.Conn) (TestResult, error) {
	return result(models.OK, "Tunnel not checked"), nil
}

func (NoneTester) Capability() Capability { return DontCare }

// MethodTester sends one header-only HTTP/1.1 request for the target path
// and accepts any parsable status line. Error statuses still prove the
// tunnel reaches a real HTTP server.
type MethodTester struct {
	Method string
}

// HeadTester probes with HEAD.
func HeadTester() *MethodTester { return &MethodTester{Method: "HEAD"} }

// TraceTester probes with TRACE. Servers commonly answer 405, which counts
// as success.
func TraceTester() *MethodTester { return &MethodTester{Method: "TRACE"} }

func (t *MethodTester) CheckTunnel(ctx context.Context, target *url.URL, conn net.Conn) (TestResult, error) {
	request, err := codec.BuildHTTPRequest(codec.HTTP11, t.Method, target.Hostname(), explicitPort(target), requestPath(target))
	if err != nil {
		return TestResult{}, err
	}

	if _, err := conn.Write(request); err != nil {
		return TestResult{}, err
	}
	if ctx.Err() != nil {
		return result(models.Canceled, "Tunnel check has been canceled"), nil
	}

	buf, closed, err := readOnce(conn, 1000)
	if err != nil {
		return TestResult{}, err
	}
	if closed {
		return result(models.ServiceRefused, "Connection closed during target response receiving."), nil
	}

	resp := codec.ParseHTTPResponse(buf)
	if !resp.Valid {
		return result(models.UnparsableResponse, "Couldn't parse target server's response."), nil
	}
	if resp.StatusCode >= 400 {
		return result(models.OK, "Target server responds with error: %d %s", resp.StatusCode, resp.Phrase), nil
	}
	if resp.Phrase == "" {
		return result(models.OK, strconv.Itoa(resp.StatusCode)), nil
	}
	return result(models.OK, resp.Phrase), nil
}

func (t *MethodTester) Capability() Capability { return HTTP }

// explicitPort returns the URL port unless it is the scheme default.
func explicitPort(u *url.URL) uint16 {
	p := u.Port()
	if p == "" || (u.Scheme == "http" && p == "80") || (u.Scheme == "https" && p == "443") {
		return 0
	}
	v, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

func requestPath(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// SSLTester wraps the tunnel in a TLS client and runs Inner over it. The
// server certificate is verified against the target host name.
type SSLTester struct {
	Inner TunnelTester
	// Config is cloned for each handshake. Nil uses system roots.
	Config *tls.Config
}

func (t *SSLTester) CheckTunnel(ctx context.Context, target *url.URL, conn net.Conn) (TestResult, error) {
	var cfg *tls.Config
	if t.Config != nil {
		cfg = t.Config.Clone()
	} else {
		cfg = &tls.Config{}
	}
	cfg.ServerName = target.Hostname()

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		if ctx.Err() != nil || isTransportError(err) {
			return TestResult{}, err
		}
		return result(models.SSLError, err.Error()), nil
	}
	if ctx.Err() != nil {
		return result(models.Canceled, "Tunnel check has been canceled"), nil
	}

	return t.Inner.CheckTunnel(ctx, target, tlsConn)
}

func (t *SSLTester) Capability() Capability { return SSL }

func isTransportError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

package checker

import (
	"context"
	"net"
	"net/url"

	"proxy-discovery/pkg/codec"
	"proxy-discovery/pkg/models"
)

// HTTPConnect checks HTTP proxies with a CONNECT request. A 2xx answer
// proves the proxy can tunnel TLS.
type HTTPConnect struct {
	Version codec.HTTPVersion

	request []byte
}

func (c *HTTPConnect) Prepare(target *url.URL) error {
	port, err := targetPort(target)
	if err != nil {
		return err
	}
	c.request, err = codec.BuildHTTPRequest(c.Version, "CONNECT", target.Hostname(), port, "")
	return err
}

func (c *HTTPConnect) TestConnection(ctx context.Context, target *url.URL, proxy *models.ProxyInformation, conn net.Conn) (TestResult, error) {
	if proxy.SSL() == models.No {
		return result(models.Unchecked, "HTTP CONNECT checker doesn't support non-SSL proxies"), nil
	}

	if _, err := conn.Write(c.request); err != nil {
		return TestResult{}, err
	}
	if ctx.Err() != nil {
		return canceled, nil
	}

	buf, closed, err := readOnce(conn, 1024)
	if err != nil {
		return TestResult{}, err
	}
	if closed {
		return result(models.ServiceRefused, msgClosedByProxy), nil
	}

	resp := codec.ParseHTTPResponse(buf)
	if !resp.Valid {
		return result(models.UnparsableResponse, msgUnparsableResp), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result(models.ServiceRefused, "Proxy status: %d %s", resp.StatusCode, resp.Phrase), nil
	}

	proxy.MarkSSL()
	return result(models.OK, resp.Phrase), nil
}

func (c *HTTPConnect) Validate() []string {
	if c.Version != codec.HTTP10 && c.Version != codec.HTTP11 {
		return []string{"Unsupported HTTP version: " + c.Version.String()}
	}
	return nil
}

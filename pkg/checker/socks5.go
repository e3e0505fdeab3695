package checker

import (
	"context"
	"net"
	"net/url"

	"proxy-discovery/pkg/codec"
	"proxy-discovery/pkg/models"
)

// Socks5 checks SOCKS5 proxies that accept unauthenticated clients. The
// target host is sent as a domain name and resolved by the proxy.
type Socks5 struct {
	methods []byte
	request []byte
}

func (c *Socks5) Prepare(target *url.URL) error {
	port, err := targetPort(target)
	if err != nil {
		return err
	}
	if c.methods, err = codec.BuildSocks5MethodRequest(codec.Socks5MethodNone); err != nil {
		return err
	}
	c.request, err = codec.BuildSocks5Request(codec.Socks5Connect, target.Hostname(), port)
	return err
}

func (c *Socks5) TestConnection(ctx context.Context, target *url.URL, proxy *models.ProxyInformation, conn net.Conn) (TestResult, error) {
	if _, err := conn.Write(c.methods); err != nil {
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
	if codec.ParseSocks5MethodResponse(buf) == codec.Socks5NoAcceptableMethods {
		return result(models.ServiceRefused, "Socks5 proxy does not support non-authorized connections."), nil
	}
	if ctx.Err() != nil {
		return canceled, nil
	}

	if _, err := conn.Write(c.request); err != nil {
		return TestResult{}, err
	}
	if ctx.Err() != nil {
		return canceled, nil
	}

	buf, closed, err = readOnce(conn, 1024)
	if err != nil {
		return TestResult{}, err
	}
	if closed {
		return result(models.ServiceRefused, msgClosedByProxy), nil
	}

	if reply := codec.ParseSocks5Reply(buf); reply.Reply != codec.Socks5OK {
		return result(models.ServiceRefused, "Proxy response: %v (%02X)", reply.Reply, byte(reply.Reply)), nil
	}

	proxy.MarkSSL()
	return result(models.OK, "Connected"), nil
}

func (c *Socks5) Validate() []string {
	return nil
}

package checker

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"

	"proxy-discovery/pkg/codec"
	"proxy-discovery/pkg/models"
)

// Socks4 checks SOCKS4 proxies. SOCKS4 can only address IPv4 targets, so
// the target host is resolved once in Prepare.
type Socks4 struct {
	// UserID defaults to codec.DefaultSocks4UserID.
	UserID string
	// Resolver is used for the target lookup. Nil means net.DefaultResolver.
	Resolver *net.Resolver

	request []byte
}

func (c *Socks4) Prepare(target *url.URL) error {
	port, err := targetPort(target)
	if err != nil {
		return err
	}

	addr, err := netip.ParseAddr(target.Hostname())
	if err != nil {
		resolver := c.Resolver
		if resolver == nil {
			resolver = net.DefaultResolver
		}
		addrs, err := resolver.LookupNetIP(context.Background(), "ip4", target.Hostname())
		if err != nil {
			return fmt.Errorf("failed to resolve socks4 target: %w", err)
		}
		if len(addrs) == 0 {
			return fmt.Errorf("no IPv4 address for %s", target.Hostname())
		}
		addr = addrs[0]
	}

	userID := c.UserID
	if userID == "" {
		userID = codec.DefaultSocks4UserID
	}
	c.request, err = codec.BuildSocks4ConnectRequest(addr, port, userID)
	return err
}

func (c *Socks4) TestConnection(ctx context.Context, target *url.URL, proxy *models.ProxyInformation, conn net.Conn) (TestResult, error) {
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

	if r := codec.ParseSocks4ConnectResponse(buf); r != codec.Socks4OK {
		return result(models.ServiceRefused, "Proxy response: %v (%02X)", r, byte(r)), nil
	}

	// stream oriented, so TLS passes through
	proxy.MarkSSL()
	return result(models.OK, "Connected"), nil
}

func (c *Socks4) Validate() []string {
	for i := 0; i < len(c.UserID); i++ {
		if c.UserID[i] == 0 || c.UserID[i] > 127 {
			return []string{"SOCKS4 user id must be ASCII without NUL bytes"}
		}
	}
	return nil
}

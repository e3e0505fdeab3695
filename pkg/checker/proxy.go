package checker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Jigsaw-Code/outline-sdk/transport"

	"proxy-discovery/pkg/models"
)

// ProxyChecker runs one full check per proxy: connect, protocol handshake,
// tunnel probe. Configure the exported fields, call Validate and Prepare
// once, then CheckProxy may be called concurrently.
type ProxyChecker struct {
	// Target is the URL the tunnel is opened to and probed with.
	Target *url.URL
	// Timeout bounds the dial through Dialer and every read and write.
	// Zero means no timeout.
	Timeout time.Duration
	// GracefulCancel lets in-flight I/O finish after the context is done;
	// cancellation is then observed between operations. When false the
	// connection is closed as soon as the context is done.
	GracefulCancel bool
	// TunnelTester probes the tunnel. HTTP testers are wrapped in TLS
	// automatically for https targets.
	TunnelTester TunnelTester
	// Protocols maps a lowercase protocol name to its handshake.
	Protocols map[string]ProtocolChecker
	// Dialer reaches the proxy. Nil dials TCP directly.
	Dialer transport.StreamDialer

	logger    *slog.Logger
	effective TunnelTester
	prepared  bool
}

// NewProxyChecker returns a checker with graceful cancellation, a HEAD
// tunnel test and the default protocol checkers.
func NewProxyChecker(target *url.URL, logger *slog.Logger) *ProxyChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyChecker{
		Target:         target,
		GracefulCancel: true,
		TunnelTester:   HeadTester(),
		Protocols:      DefaultProtocols(),
		logger:         logger,
	}
}

// Validate reports configuration problems. It does not change state.
func (c *ProxyChecker) Validate() []string {
	var problems []string

	if c.Target == nil || c.Target.Host == "" {
		problems = append(problems, "Target URL cannot be empty")
	} else if c.Target.Scheme != "http" && c.Target.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("Target URL scheme must be http or https, got %q", c.Target.Scheme))
	}

	if c.TunnelTester == nil {
		problems = append(problems, "Tunnel tester cannot be nil")
	} else if c.TunnelTester.Capability() == SSL && c.Target != nil && c.Target.Scheme == "http" {
		problems = append(problems, "Tunnel tester uses SSL, but the target URL uses http")
	}

	if len(c.Protocols) == 0 {
		problems = append(problems, "At least one protocol checker must be registered")
	}
	for _, name := range c.protocolNames() {
		for _, p := range c.Protocols[name].Validate() {
			problems = append(problems, fmt.Sprintf("[%s] %s", name, p))
		}
	}

	if c.Timeout < 0 {
		problems = append(problems, "Timeout cannot be negative")
	}
	return problems
}

// Prepare builds every protocol request and picks the effective tunnel
// tester. It must be called once before CheckProxy.
func (c *ProxyChecker) Prepare() error {
	if problems := c.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid proxy checker: %s", strings.Join(problems, "; "))
	}

	for _, name := range c.protocolNames() {
		if err := c.Protocols[name].Prepare(c.Target); err != nil {
			return fmt.Errorf("failed to prepare %s checker: %w", name, err)
		}
	}

	c.effective = c.TunnelTester
	if c.TunnelTester.Capability() == HTTP && c.Target.Scheme == "https" {
		c.effective = &SSLTester{Inner: c.TunnelTester}
	}

	if c.Dialer == nil {
		c.Dialer = newTCPDialer(c.Timeout)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.prepared = true

	c.logger.Debug("Proxy checker prepared",
		"target", c.Target.String(),
		"tunnelTester", c.effective.Capability().String(),
		"protocols", c.protocolNames(),
		"timeout", c.Timeout)
	return nil
}

// EffectiveTunnelTester returns the tester chosen by Prepare.
func (c *ProxyChecker) EffectiveTunnelTester() TunnelTester {
	return c.effective
}

// CheckProxy checks one proxy. It panics with ErrNotPrepared if Prepare
// has not succeeded.
func (c *ProxyChecker) CheckProxy(ctx context.Context, proxy *models.ProxyInformation) (state models.ProxyState) {
	if !c.prepared {
		panic(ErrNotPrepared)
	}
	if ctx.Err() != nil {
		return models.NewProxyState(proxy, models.Canceled, msgCanceled, 0)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			state = c.failed(ctx, proxy, err, start)
		}
	}()

	dialCtx := ctx
	if c.GracefulCancel {
		dialCtx = context.WithoutCancel(ctx)
	}
	var stopDial context.CancelFunc = func() {}
	if c.Timeout > 0 {
		dialCtx, stopDial = context.WithTimeout(dialCtx, c.Timeout)
	}
	conn, err := c.Dialer.DialStream(dialCtx, proxy.Address())
	stopDial()
	if err != nil {
		return c.failed(ctx, proxy, err, start)
	}
	defer conn.Close()

	if !c.GracefulCancel {
		stop := context.AfterFunc(ctx, func() { conn.Close() })
		defer stop()
	}
	tuneConn(conn)
	stream := withTimeout(conn, c.Timeout)

	if ctx.Err() != nil {
		return models.NewProxyState(proxy, models.Canceled, msgCanceled, 0)
	}

	protocol := c.Protocols[strings.ToLower(strings.TrimSpace(proxy.Protocol))]
	if protocol == nil {
		msg := fmt.Sprintf("Protocol %q is not supported", proxy.Protocol)
		if proxy.Protocol == "" {
			msg = "Proxy protocol is not specified"
		}
		return models.NewProxyState(proxy, models.Unchecked, msg, time.Since(start))
	}

	res, err := protocol.TestConnection(ctx, c.Target, proxy, stream)
	if err != nil {
		return c.failed(ctx, proxy, err, start)
	}
	if res.Result != models.OK {
		return c.finish(proxy, res, start)
	}

	if ctx.Err() != nil {
		return models.NewProxyState(proxy, models.Canceled, msgCanceled, 0)
	}

	res, err = c.effective.CheckTunnel(ctx, c.Target, stream)
	if err != nil {
		return c.failed(ctx, proxy, err, start)
	}
	if res.Result == models.OK && c.effective.Capability() != DontCare && isGoogleHost(c.Target.Hostname()) {
		proxy.MarkGoogle()
	}
	return c.finish(proxy, res, start)
}

// isGoogleHost reports whether host is google.com or one of its subdomains.
func isGoogleHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}

func (c *ProxyChecker) finish(proxy *models.ProxyInformation, res TestResult, start time.Time) models.ProxyState {
	if res.Result == models.Canceled {
		return models.NewProxyState(proxy, models.Canceled, res.Message, 0)
	}
	return models.NewProxyState(proxy, res.Result, res.Message, time.Since(start))
}

func (c *ProxyChecker) failed(ctx context.Context, proxy *models.ProxyInformation, err error, start time.Time) models.ProxyState {
	kind, msg := classify(ctx, err)
	switch kind {
	case models.NetworkError:
		return models.NewProxyState(proxy, kind, msg, time.Since(start))
	case models.Failure:
		c.logger.Debug("Unexpected proxy check failure", "proxy", proxy.Address(), "error", err)
	}
	return models.NewProxyState(proxy, kind, msg, 0)
}

func (c *ProxyChecker) protocolNames() []string {
	names := make([]string, 0, len(c.Protocols))
	for name, p := range c.Protocols {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"proxy-discovery/pkg/checker"
	"proxy-discovery/pkg/config"
	"proxy-discovery/pkg/database"
	"proxy-discovery/pkg/filter"
	"proxy-discovery/pkg/geo"
	"proxy-discovery/pkg/lookup"
	"proxy-discovery/pkg/provider"
)

// newChecker builds the proxy checker from settings. transport is the
// resolved upstream transport, empty for direct connections.
func newChecker(s config.DiscoverySettings, transport string, logger *slog.Logger) (*checker.ProxyChecker, error) {
	target, err := url.Parse(s.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	c := checker.NewProxyChecker(target, logger)
	c.Timeout = s.Timeout
	c.GracefulCancel = s.GracefulCancel

	tester, ok := checker.NewTunnelTester(s.TunnelTester)
	if !ok {
		return nil, fmt.Errorf("unknown tunnel tester %q", s.TunnelTester)
	}
	c.TunnelTester = tester

	c.Protocols = map[string]checker.ProtocolChecker{
		"http":   &checker.HTTPConnect{Version: s.HTTPVersion},
		"socks4": &checker.Socks4{UserID: s.Socks4UserID},
		"socks5": &checker.Socks5{},
	}

	if transport != "" {
		dialer, err := checker.NewViaDialer(transport)
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream dialer: %w", err)
		}
		c.Dialer = dialer
	}

	return c, nil
}

func newFilters(s config.FilterSettings) ([]filter.Filter, error) {
	var filters []filter.Filter

	if s.Protocol != "" {
		filters = append(filters, &filter.Protocol{Protocol: s.Protocol})
	}
	if s.SSLOnly {
		filters = append(filters, &filter.SSL{AllowUnknown: s.AllowUnknown})
	}
	if s.GoogleOnly {
		filters = append(filters, &filter.Google{AllowUnknown: s.AllowUnknown})
	}
	if s.IncludeCountries != "" {
		filters = append(filters, filter.NewIncludeCountries(s.IncludeCountries, lookup.Countries()))
	}
	if s.ExcludeCountries != "" {
		filters = append(filters, filter.NewExcludeCountries(s.ExcludeCountries, lookup.Countries()))
	}
	if s.Ports != "" {
		f, err := filter.NewPort(s.Ports)
		if err != nil {
			return nil, fmt.Errorf("invalid port filter: %w", err)
		}
		filters = append(filters, f)
	}

	return filters, nil
}

// newLocator opens the configured geolocation sources. The returned closer
// releases the database files.
func newLocator(s config.GeoSettings) (geo.Locator, io.Closer, error) {
	var chain geo.Chain

	if s.GeoIP2DB != "" {
		db, err := geo.OpenGeoIP2(s.GeoIP2DB)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, db)
	}
	if s.IP2LocationDB != "" {
		db, err := geo.OpenIP2Location(s.IP2LocationDB)
		if err != nil {
			chain.Close()
			return nil, nil, err
		}
		chain = append(chain, db)
	}
	if s.IPInfoToken != "" {
		chain = append(chain, &geo.IPInfo{Token: s.IPInfoToken})
	}

	if len(chain) == 0 {
		return nil, chain, nil
	}
	return chain, chain, nil
}

// newProviders builds every configured provider. db may be nil when the
// database provider is disabled.
func newProviders(s config.ProviderSettings, transport string, db *database.DB, locator geo.Locator, logger *slog.Logger) ([]provider.Provider, error) {
	var configs []provider.Config

	for _, name := range s.WellKnown {
		configs = append(configs, provider.Config{System: provider.SystemWellKnown, Name: strings.TrimSpace(name)})
	}
	for _, path := range s.Files {
		configs = append(configs, provider.Config{System: provider.SystemFile, Path: path})
	}
	for _, u := range s.URLs {
		configs = append(configs, provider.Config{System: provider.SystemWeb, URL: u, Headers: s.Headers})
	}
	if s.Database {
		configs = append(configs, provider.Config{
			System:  provider.SystemDatabase,
			DB:      db,
			Country: s.DatabaseCountry,
			Limit:   s.DatabaseLimit,
		})
	}

	var providers []provider.Provider
	for _, c := range configs {
		c.Transport = transport
		c.Format = provider.Format(s.Format)
		c.LineRegex = s.LineRegex
		c.Locator = locator

		p, err := provider.NewProvider(c, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// resolveVia expands the upstream transport once for the whole run.
func resolveVia(ctx context.Context, via string, logger *slog.Logger) (string, error) {
	if via == "" {
		return "", nil
	}
	transport, err := config.ResolveTransport(ctx, via)
	if err != nil {
		return "", err
	}
	logger.Debug("Using upstream transport", "via", via)
	return transport, nil
}

// Package config maps the viper configuration to typed settings and
// resolves upstream transports.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"proxy-discovery/pkg/codec"
)

// Settings is the typed form of config.yaml.
type Settings struct {
	Discovery DiscoverySettings
	Filters   FilterSettings
	Providers ProviderSettings
	Geo       GeoSettings
}

type DiscoverySettings struct {
	TargetURL      string
	Timeout        time.Duration
	MaxThreads     int
	MaxResults     int
	GracefulCancel bool
	Shuffle        bool
	TunnelTester   string
	HTTPVersion    codec.HTTPVersion
	Socks4UserID   string
	// Via is an outline transport or ssconfig:// link used for every
	// outgoing connection.
	Via string
}

type FilterSettings struct {
	Protocol         string
	SSLOnly          bool
	GoogleOnly       bool
	AllowUnknown     bool
	IncludeCountries string
	ExcludeCountries string
	Ports            string
}

type ProviderSettings struct {
	WellKnown []string
	Files     []string
	URLs      []string
	// Format of files and URLs: lines, csv or html.
	Format    string
	LineRegex string
	// Headers are extra "Name: value" lines sent to list URLs.
	Headers  []string
	Database bool
	// DatabaseCountry keeps only candidates stored with this country code.
	DatabaseCountry string
	// DatabaseLimit caps the candidates read from the database.
	DatabaseLimit int
}

type GeoSettings struct {
	GeoIP2DB      string
	IP2LocationDB string
	IPInfoToken   string
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("discovery.target_url", "https://www.google.com/")
	v.SetDefault("discovery.timeout", 5*time.Second)
	v.SetDefault("discovery.max_threads", 32)
	v.SetDefault("discovery.max_results", 0)
	v.SetDefault("discovery.graceful_cancel", true)
	v.SetDefault("discovery.shuffle", true)
	v.SetDefault("discovery.tunnel_tester", "head")
	v.SetDefault("discovery.http_version", "1.1")
	v.SetDefault("discovery.socks4_user_id", codec.DefaultSocks4UserID)
	v.SetDefault("discovery.via", "")

	v.SetDefault("filters.allow_unknown", false)

	v.SetDefault("providers.format", "lines")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

// Load reads the settings from v, applying defaults for missing keys.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	var s Settings
	var errs []error

	s.Discovery = DiscoverySettings{
		TargetURL:      v.GetString("discovery.target_url"),
		Timeout:        v.GetDuration("discovery.timeout"),
		MaxThreads:     v.GetInt("discovery.max_threads"),
		MaxResults:     v.GetInt("discovery.max_results"),
		GracefulCancel: v.GetBool("discovery.graceful_cancel"),
		Shuffle:        v.GetBool("discovery.shuffle"),
		TunnelTester:   strings.ToLower(v.GetString("discovery.tunnel_tester")),
		Socks4UserID:   v.GetString("discovery.socks4_user_id"),
		Via:            v.GetString("discovery.via"),
	}

	version, err := codec.ParseHTTPVersion(v.GetString("discovery.http_version"))
	if err != nil {
		errs = append(errs, fmt.Errorf("discovery.http_version: %w", err))
	}
	s.Discovery.HTTPVersion = version

	if _, err := url.Parse(s.Discovery.TargetURL); err != nil {
		errs = append(errs, fmt.Errorf("discovery.target_url: %w", err))
	}
	if s.Discovery.Timeout < 0 {
		errs = append(errs, errors.New("discovery.timeout cannot be negative"))
	}
	if s.Discovery.MaxThreads < 1 {
		errs = append(errs, errors.New("discovery.max_threads must be positive"))
	}
	if s.Discovery.MaxResults < 0 {
		errs = append(errs, errors.New("discovery.max_results cannot be negative"))
	}
	switch s.Discovery.TunnelTester {
	case "none", "head", "trace":
	default:
		errs = append(errs, fmt.Errorf("discovery.tunnel_tester must be none, head or trace, got %q", s.Discovery.TunnelTester))
	}

	s.Filters = FilterSettings{
		Protocol:         v.GetString("filters.protocol"),
		SSLOnly:          v.GetBool("filters.ssl_only"),
		GoogleOnly:       v.GetBool("filters.google_only"),
		AllowUnknown:     v.GetBool("filters.allow_unknown"),
		IncludeCountries: v.GetString("filters.include_countries"),
		ExcludeCountries: v.GetString("filters.exclude_countries"),
		Ports:            v.GetString("filters.ports"),
	}

	s.Providers = ProviderSettings{
		WellKnown:       v.GetStringSlice("providers.wellknown"),
		Files:           v.GetStringSlice("providers.files"),
		URLs:            v.GetStringSlice("providers.urls"),
		Format:          strings.ToLower(v.GetString("providers.format")),
		LineRegex:       v.GetString("providers.line_regex"),
		Headers:         v.GetStringSlice("providers.headers"),
		Database:        v.GetBool("providers.database"),
		DatabaseCountry: v.GetString("providers.database_country"),
		DatabaseLimit:   v.GetInt("providers.database_limit"),
	}
	switch s.Providers.Format {
	case "lines", "csv", "html":
	default:
		errs = append(errs, fmt.Errorf("providers.format must be lines, csv or html, got %q", s.Providers.Format))
	}
	for _, h := range s.Providers.Headers {
		if name, _, ok := strings.Cut(h, ":"); !ok || strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("providers.headers: %q is not a \"Name: value\" line", h))
		}
	}
	if c := s.Providers.DatabaseCountry; c != "" && len(strings.TrimSpace(c)) != 2 {
		errs = append(errs, fmt.Errorf("providers.database_country must be a two-letter code, got %q", c))
	}

	s.Geo = GeoSettings{
		GeoIP2DB:      v.GetString("geo.geoip2_db"),
		IP2LocationDB: v.GetString("geo.ip2location_db"),
		IPInfoToken:   v.GetString("geo.ipinfo_token"),
	}

	if len(errs) > 0 {
		return s, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return s, nil
}

package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"proxy-discovery/pkg/codec"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DiscoverySettings{
		TargetURL:      "https://www.google.com/",
		Timeout:        5 * time.Second,
		MaxThreads:     32,
		GracefulCancel: true,
		Shuffle:        true,
		TunnelTester:   "head",
		HTTPVersion:    codec.HTTP11,
		Socks4UserID:   "ProxyDiscovery",
	}
	if !reflect.DeepEqual(s.Discovery, want) {
		t.Errorf("Load().Discovery = %+v, want %+v", s.Discovery, want)
	}
	if s.Providers.Format != "lines" {
		t.Errorf("Load().Providers.Format = %q, want lines", s.Providers.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	config := `
discovery:
  target_url: http://example.com/
  timeout: 2s
  max_threads: 8
  max_results: 10
  graceful_cancel: false
  tunnel_tester: TRACE
  http_version: "1.0"
filters:
  protocol: socks5
  ssl_only: true
  include_countries: "US, DE"
  ports: "80, 8000-8100, ~8080"
providers:
  wellknown: [free, pubproxy]
  files: [/tmp/list.txt]
  format: csv
  headers:
    - "Referer: https://lists.example/"
  database: true
  database_country: nl
geo:
  geoip2_db: /var/lib/GeoLite2-City.mmdb
`
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(config)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"target", s.Discovery.TargetURL, "http://example.com/"},
		{"timeout", s.Discovery.Timeout, 2 * time.Second},
		{"threads", s.Discovery.MaxThreads, 8},
		{"results", s.Discovery.MaxResults, 10},
		{"graceful", s.Discovery.GracefulCancel, false},
		{"tester", s.Discovery.TunnelTester, "trace"},
		{"version", s.Discovery.HTTPVersion, codec.HTTP10},
		{"protocol", s.Filters.Protocol, "socks5"},
		{"ssl", s.Filters.SSLOnly, true},
		{"countries", s.Filters.IncludeCountries, "US, DE"},
		{"ports", s.Filters.Ports, "80, 8000-8100, ~8080"},
		{"wellknown", s.Providers.WellKnown, []string{"free", "pubproxy"}},
		{"files", s.Providers.Files, []string{"/tmp/list.txt"}},
		{"format", s.Providers.Format, "csv"},
		{"database", s.Providers.Database, true},
		{"headers", s.Providers.Headers, []string{"Referer: https://lists.example/"}},
		{"database country", s.Providers.DatabaseCountry, "nl"},
		{"geoip2", s.Geo.GeoIP2DB, "/var/lib/GeoLite2-City.mmdb"},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"tester", "discovery.tunnel_tester", "ping", "discovery.tunnel_tester"},
		{"version", "discovery.http_version", "2.0", "discovery.http_version"},
		{"threads", "discovery.max_threads", 0, "discovery.max_threads"},
		{"timeout", "discovery.timeout", -time.Second, "discovery.timeout"},
		{"results", "discovery.max_results", -1, "discovery.max_results"},
		{"format", "providers.format", "xml", "providers.format"},
		{"headers", "providers.headers", []string{"NoColon"}, "providers.headers"},
		{"database country", "providers.database_country", "Netherlands", "providers.database_country"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

package provider

import (
	"context"
	"time"

	"proxy-discovery/pkg/database"
	"proxy-discovery/pkg/geo"
	"proxy-discovery/pkg/models"
)

// System represents the kind of proxy list provider
type System string

const (
	SystemStatic    System = "static"
	SystemFile      System = "file"
	SystemWeb       System = "web"
	SystemWellKnown System = "wellknown"
	SystemDatabase  System = "database"
)

// Format selects the parser used by file and web providers
type Format string

const (
	FormatLines Format = "lines"
	FormatCSV   Format = "csv"
	FormatHTML  Format = "html"
)

// Config represents the configuration for a proxy list provider
type Config struct {
	System System

	Name      string        // well-known list name, only used by SystemWellKnown
	Path      string        // only used by SystemFile
	URL       string        // only used by SystemWeb
	Transport string        // outline transport for web downloads
	Timeout   time.Duration // web download timeout
	Headers   []string      // extra web request headers, "Name: value"

	Format          Format
	LineRegex       string // FormatLines, defaults to "address:port" lines
	DefaultProtocol string

	DB       *database.DB // only used by SystemDatabase
	Protocol string       // database protocol filter
	Country  string       // database country code filter
	Limit    int          // database row limit

	Proxies []*models.ProxyInformation // only used by SystemStatic

	// Locator fills in missing locations when set.
	Locator geo.Locator
}

// Provider defines the interface for proxy list providers.
//
// GetProxies returns a non-nil error only when the whole list is lost. Such
// errors have already been passed to onError. Problems with single entries
// are reported through onError and the entries are skipped.
type Provider interface {
	GetProxies(ctx context.Context, onError func(string)) ([]*models.ProxyInformation, error)
	Validate() []string
	String() string
}

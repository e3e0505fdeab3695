// Package parser turns downloaded proxy list content into proxy entries.
//
// Three formats are supported: a regular expression applied line by line,
// CSV with configurable columns, and HTML tables scraped with CSS selectors.
// Rows that cannot be parsed are reported through onError and skipped; they
// never abort the list.
package parser

import (
	"net/netip"
	"strings"

	"proxy-discovery/pkg/lookup"
	"proxy-discovery/pkg/models"
)

// Parser converts list content to proxies.
type Parser interface {
	Parse(content string, onError func(string)) []*models.ProxyInformation
	Validate() []string
	String() string
}

// Common holds the settings shared by every parser. Defaults apply when
// the list does not carry the value.
type Common struct {
	DefaultProtocol string
	DefaultSSL      models.Tristate
	DefaultGoogle   models.Tristate
	// Resolvers fill in country and service names. The zero value uses
	// the embedded lookup tables.
	Resolvers models.Resolvers
}

func (c *Common) newProxy(addr netip.Addr, port uint16, d models.Details) *models.ProxyInformation {
	if d.Protocol == "" {
		d.Protocol = c.DefaultProtocol
	}
	r := c.Resolvers
	if r.Countries == nil && r.Services == nil {
		r = DefaultResolvers()
	}
	return models.NewProxyInformation(addr, port, d, r)
}

// DefaultResolvers returns the embedded country and service tables.
func DefaultResolvers() models.Resolvers {
	return models.Resolvers{Countries: lookup.Countries(), Services: lookup.Services()}
}

// ParseBool accepts "1", "yes", "true" and "+" in any case. Everything
// else, including blank input, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "+":
		return true
	default:
		return false
	}
}

func splitLines(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool { return r == '\r' || r == '\n' })
}

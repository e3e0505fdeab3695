package models

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"sync/atomic"
)

// CountryResolver maps a country code to a display name.
type CountryResolver interface {
	Resolve(code string) string
}

// ServiceResolver guesses the proxy software from its port.
type ServiceResolver interface {
	Detect(port uint16) string
}

// Resolvers are consulted once when a ProxyInformation is constructed.
// Either field may be nil.
type Resolvers struct {
	Countries CountryResolver
	Services  ServiceResolver
}

// Details is the descriptive part of a proxy list entry.
type Details struct {
	Protocol string
	SSL      Tristate
	Google   Tristate
	Name     string
	Country  string
	City     string
}

// ProxyInformation describes one candidate proxy. Identity is (Addr, Port):
// two entries with the same endpoint are equal regardless of metadata.
//
// Metadata is fixed at construction. The capability flags can only move from
// Unknown to Yes, so concurrent checks may upgrade them without locking.
type ProxyInformation struct {
	Addr     netip.Addr
	Port     uint16
	Protocol string
	Name     string
	Country  string
	City     string

	ssl    atomic.Int32
	google atomic.Int32
}

// NewProxyInformation builds a proxy entry, normalising the protocol and
// resolving the country name once.
func NewProxyInformation(addr netip.Addr, port uint16, d Details, r Resolvers) *ProxyInformation {
	p := &ProxyInformation{
		Addr:     addr.Unmap(),
		Port:     port,
		Protocol: strings.ToLower(strings.TrimSpace(d.Protocol)),
		Name:     strings.TrimSpace(d.Name),
		Country:  strings.TrimSpace(d.Country),
		City:     strings.TrimSpace(d.City),
	}
	if r.Countries != nil {
		p.Country = r.Countries.Resolve(p.Country)
	}
	if p.Name == "" && r.Services != nil {
		p.Name = r.Services.Detect(port)
	}
	p.ssl.Store(int32(d.SSL))
	p.google.Store(int32(d.Google))
	return p
}

// SSL reports whether the proxy is known to tunnel TLS.
func (p *ProxyInformation) SSL() Tristate {
	return Tristate(p.ssl.Load())
}

// Google reports whether the proxy is known to be usable for Google services.
func (p *ProxyInformation) Google() Tristate {
	return Tristate(p.google.Load())
}

// MarkSSL upgrades the SSL flag from Unknown to Yes. A known value is kept.
func (p *ProxyInformation) MarkSSL() {
	p.ssl.CompareAndSwap(int32(Unknown), int32(Yes))
}

// MarkGoogle upgrades the Google flag from Unknown to Yes. A known value is kept.
func (p *ProxyInformation) MarkGoogle() {
	p.google.CompareAndSwap(int32(Unknown), int32(Yes))
}

// Key is the deduplication key.
func (p *ProxyInformation) Key() netip.AddrPort {
	return netip.AddrPortFrom(p.Addr, p.Port)
}

// Equal compares endpoints only.
func (p *ProxyInformation) Equal(other *ProxyInformation) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Key() == other.Key()
}

// Address returns "ip:port", bracketing IPv6 addresses.
func (p *ProxyInformation) Address() string {
	return p.Key().String()
}

// URL returns the proxy as "protocol://ip:port". Entries without a protocol
// are rendered as http.
func (p *ProxyInformation) URL() string {
	protocol := p.Protocol
	if protocol == "" {
		protocol = "http"
	}
	return protocol + "://" + p.Address()
}

func (p *ProxyInformation) String() string {
	var sb strings.Builder
	sb.WriteString(p.Address())
	if p.Protocol != "" {
		fmt.Fprintf(&sb, " (%s)", p.Protocol)
	}
	if ssl := p.SSL(); ssl.Known() {
		sb.WriteString(", SSL: " + ssl.String())
	}
	if google := p.Google(); google.Known() {
		sb.WriteString(", Google: " + google.String())
	}
	if p.Name != "" {
		sb.WriteString(", " + p.Name)
	}
	if p.Country != "" {
		sb.WriteString(", " + p.Country)
		if p.City != "" {
			sb.WriteString("/" + p.City)
		}
	}
	return sb.String()
}

// ParsePort parses a decimal TCP port.
func ParsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(v), nil
}

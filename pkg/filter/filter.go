// Package filter holds the static predicates applied to acquired proxies
// before they are checked. A proxy is kept only if it passes every filter.
package filter

import (
	"fmt"
	"strings"

	"proxy-discovery/pkg/models"
)

// Filter decides whether a proxy is worth checking.
type Filter interface {
	Passes(p *models.ProxyInformation) bool
	// Validate returns configuration problems. An empty result means the
	// filter is usable.
	Validate() []string
	String() string
}

// Protocol keeps proxies of one protocol.
type Protocol struct {
	// Protocol is compared with the lowercase proxy protocol.
	Protocol string
}

func (f *Protocol) Passes(p *models.ProxyInformation) bool {
	return p.Protocol == strings.ToLower(strings.TrimSpace(f.Protocol))
}

func (f *Protocol) Validate() []string {
	if strings.TrimSpace(f.Protocol) == "" {
		return []string{"Protocol cannot be empty"}
	}
	return nil
}

func (f *Protocol) String() string { return fmt.Sprintf("Protocol filter (%s)", f.Protocol) }

// SSL keeps proxies known to tunnel TLS.
type SSL struct {
	// AllowUnknown also keeps proxies whose SSL support is not known yet.
	AllowUnknown bool
}

func (f *SSL) Passes(p *models.ProxyInformation) bool {
	return tristatePasses(p.SSL(), f.AllowUnknown)
}

func (f *SSL) Validate() []string { return nil }

func (f *SSL) String() string { return "SSL filter" }

// Google keeps proxies known to be usable for Google services.
type Google struct {
	AllowUnknown bool
}

func (f *Google) Passes(p *models.ProxyInformation) bool {
	return tristatePasses(p.Google(), f.AllowUnknown)
}

func (f *Google) Validate() []string { return nil }

func (f *Google) String() string { return "Google filter" }

func tristatePasses(v models.Tristate, allowUnknown bool) bool {
	switch v {
	case models.Yes:
		return true
	case models.No:
		return false
	default:
		return allowUnknown
	}
}

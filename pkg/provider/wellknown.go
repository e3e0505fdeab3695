package provider

import (
	"log/slog"
	"sort"

	"proxy-discovery/pkg/parser"
	"proxy-discovery/pkg/source"
)

const (
	FreeProxiesURL      = "https://free-proxy-list.net/"
	USProxiesURL        = "https://www.us-proxy.org/"
	UKProxiesURL        = "https://free-proxy-list.net/uk-proxy.html"
	SSLProxiesURL       = "https://www.sslproxies.org/"
	AnonymousProxiesURL = "https://free-proxy-list.net/anonymous-proxy.html"
	PubProxyURL         = "https://raw.githubusercontent.com/clarketm/proxy-list/master/proxy-list.txt"
)

// wellKnown maps list names accepted by the factory to their constructors.
var wellKnown = map[string]func(transport string, logger *slog.Logger) *Composite{
	"free":      FreeProxies,
	"us":        USProxies,
	"uk":        UKProxies,
	"ssl":       SSLProxies,
	"anonymous": AnonymousProxies,
	"pubproxy":  PubProxy,
}

// WellKnownNames lists the names accepted by SystemWellKnown.
func WellKnownNames() []string {
	names := make([]string, 0, len(wellKnown))
	for name := range wellKnown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func freeProxyListSite(url, transport string, logger *slog.Logger) *Composite {
	return NewComposite(&source.Web{URL: url, Transport: transport}, parser.FreeProxyListParser(), logger)
}

// FreeProxies reads free-proxy-list.net.
func FreeProxies(transport string, logger *slog.Logger) *Composite {
	return freeProxyListSite(FreeProxiesURL, transport, logger)
}

// USProxies reads www.us-proxy.org.
func USProxies(transport string, logger *slog.Logger) *Composite {
	return freeProxyListSite(USProxiesURL, transport, logger)
}

// UKProxies reads the UK page of free-proxy-list.net.
func UKProxies(transport string, logger *slog.Logger) *Composite {
	return freeProxyListSite(UKProxiesURL, transport, logger)
}

// SSLProxies reads www.sslproxies.org.
func SSLProxies(transport string, logger *slog.Logger) *Composite {
	return freeProxyListSite(SSLProxiesURL, transport, logger)
}

// AnonymousProxies reads the anonymous page of free-proxy-list.net.
func AnonymousProxies(transport string, logger *slog.Logger) *Composite {
	return freeProxyListSite(AnonymousProxiesURL, transport, logger)
}

// PubProxy reads the clarketm list on GitHub.
func PubProxy(transport string, logger *slog.Logger) *Composite {
	return NewComposite(&source.Web{URL: PubProxyURL, Transport: transport}, parser.PubProxyParser(), logger)
}

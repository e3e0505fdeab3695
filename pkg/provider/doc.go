/*
Package provider supplies the raw proxy lists consumed by discovery.

Every provider implements the Provider interface, so discovery can merge lists
from very different origins in the same run.

Key Components:

  - Provider: Interface that defines the contract for proxy list providers
  - Config: Configuration structure for proxy list providers
  - System: Enum type representing supported provider kinds
  - Factory: Creates provider instances based on configuration

Provider Interface Methods:

	GetProxies: Returns the proxy list, reporting bad entries through onError
	Validate: Returns configuration problems, empty when ready to use
	String: Returns a human readable description used in logs

Supported Providers:

 1. Static Provider:
    - Serves a fixed list built in code

 2. Composite Provider:
    - Combines a source (file or web download) with a parser (line regex, CSV or HTML)
    - Prefixes problems with "[Source] " and "[Parser] "

 3. Database Provider:
    - Reads candidates stored by the importer
    - Optionally restricted to one protocol and a row limit

 4. Locating Provider:
    - Wraps another provider and fills in missing countries with a geo.Locator

Well-known lists (free-proxy-list.net and its sister sites, and the clarketm
list on GitHub) are available through FreeProxies, USProxies, UKProxies,
SSLProxies, AnonymousProxies and PubProxy.

Usage Example:

	config := provider.Config{
		System:    provider.SystemWellKnown,
		Name:      "free",
		Transport: "socks5://127.0.0.1:9050",
	}

	p, err := provider.NewProvider(config, logger)
	if err != nil {
		log.Fatal(err)
	}

	proxies, err := p.GetProxies(ctx, func(msg string) {
		logger.Warn("Proxy list problem", "message", msg)
	})
*/
package provider

/*
Package models defines the core data structures shared by the proxy-discovery
packages. It provides the types that describe candidate proxies, check
outcomes and stored candidates.

Core Types:

Tristate is a capability flag that may not be known yet:

	type Tristate int32
	const (
		Unknown Tristate = iota
		Yes
		No
	)

ProxyInformation describes one candidate proxy. Identity is the endpoint:

	type ProxyInformation struct {
		Addr     netip.Addr // Proxy address, IPv4 mapped addresses unmapped
		Port     uint16     // Proxy port
		Protocol string     // Lowercase protocol name (http, socks4, socks5)
		Name     string     // Service name from the list or detected from the port
		Country  string     // Country name, resolved from a code when possible
		City     string     // City if the list carries one
	}

The SSL and Google flags are read with SSL() and Google() and can only be
upgraded from Unknown to Yes with MarkSSL() and MarkGoogle(), so concurrent
checks never need a lock.

CheckResult classifies a finished check:

	Unchecked, OK, NetworkError, ServiceRefused,
	UnparsableResponse, SSLError, Failure, Canceled

ProxyState is the immutable record of one check:

	type ProxyState struct {
		Proxy  *ProxyInformation
		Result CheckResult
		Status string        // Human readable detail
		Delay  time.Duration // Time to the verdict, zero for Canceled and Failure
	}

Candidate is the bun model of the candidates table filled by the importer:

	type Candidate struct {
		ID       int64  // Primary key
		IP       string // Unique together with Port
		Port     int
		Protocol string
		Host     string // Host name the address was resolved from
		Name     string
		Country  string
		City     string
		SSL      string // Tristate as "yes", "no" or "unknown"
		Google   string
		Batch    string // Import batch id
	}

Usage Example:

	p := models.NewProxyInformation(netip.MustParseAddr("203.0.113.7"), 3128,
		models.Details{Protocol: "HTTP", Country: "DE"},
		models.Resolvers{Countries: lookup.Countries(), Services: lookup.Services()})

	fmt.Println(p.URL())    // http://203.0.113.7:3128
	fmt.Println(p.Country)  // Germany
	fmt.Println(p.Name)     // software usually found on port 3128

	c := models.CandidateFrom(p, "", batchID)
	p2, ok := c.Proxy(resolvers)
*/
package models

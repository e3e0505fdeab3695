package parser

import "proxy-discovery/pkg/models"

// PubProxyRegex matches lines of the clarketm proxy list, such as
// "200.1.2.3:3128 BR-N-S +". The https group is the "S" marker.
const PubProxyRegex = `(?P<address>[\d\.]+):(?P<port>\d+)\s+(?P<country>\w{2})-(\w{1})(-(?P<https>S{1}))?!{0,1}\s(?P<google>(?:\+|-))\s*$`

// FreeProxyListParser reads the table layout shared by free-proxy-list.net
// and its sister sites.
func FreeProxyListParser() *HTML {
	return &HTML{
		Common:          Common{DefaultProtocol: "http"},
		RowSelector:     "section#list table tbody tr",
		IPSelector:      "td:nth-child(1)",
		PortSelector:    "td:nth-child(2)",
		CountrySelector: "td:nth-child(4)",
		GoogleSelector:  "td:nth-child(6)",
		SSLSelector:     "td:nth-child(7)",
	}
}

// PubProxyParser reads the clarketm proxy list.
func PubProxyParser() *LineRegex {
	return &LineRegex{
		Common:    Common{DefaultProtocol: "http", DefaultSSL: models.Unknown},
		Regex:     PubProxyRegex,
		SSLMarker: "S",
	}
}

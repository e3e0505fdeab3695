package parser

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"proxy-discovery/pkg/models"
)

// HTML scrapes proxies from a table in an HTML page. RowSelector is
// applied to the document; every other selector is applied to a row and
// its first match's text is used.
type HTML struct {
	Common
	RowSelector string

	IPSelector   string
	PortSelector string

	SSLSelector      string
	GoogleSelector   string
	ProtocolSelector string
	NameSelector     string
	CountrySelector  string
	CitySelector     string
}

func (p *HTML) Validate() []string {
	var problems []string
	if strings.TrimSpace(p.RowSelector) == "" {
		problems = append(problems, "Proxy table selector is missing")
	}
	if strings.TrimSpace(p.IPSelector) == "" {
		problems = append(problems, "IP address selector is missing")
	}
	if strings.TrimSpace(p.PortSelector) == "" {
		problems = append(problems, "Port selector is missing")
	}
	return problems
}

func (p *HTML) Parse(content string, onError func(string)) []*models.ProxyInformation {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		onError(fmt.Sprintf("Unable to parse HTML: %v", err))
		return nil
	}

	var proxies []*models.ProxyInformation
	doc.Find(p.RowSelector).Each(func(i int, row *goquery.Selection) {
		cell := func(selector string) (string, bool) {
			if selector == "" {
				return "", false
			}
			sel := row.Find(selector).First()
			if sel.Length() == 0 {
				return "", false
			}
			return strings.TrimSpace(sel.Text()), true
		}

		address, ok := cell(p.IPSelector)
		if !ok {
			onError(fmt.Sprintf("Row %d has no IP address", i+1))
			return
		}
		addr, err := netip.ParseAddr(address)
		if err != nil {
			onError(fmt.Sprintf("Unable to parse address. IP expected, but '%s' encountered.", address))
			return
		}
		portText, ok := cell(p.PortSelector)
		if !ok {
			onError(fmt.Sprintf("Row %d has no port", i+1))
			return
		}
		port, err := models.ParsePort(portText)
		if err != nil {
			onError(fmt.Sprintf("Unable to parse port. Number expected, but '%s' encountered.", portText))
			return
		}

		d := models.Details{SSL: p.DefaultSSL, Google: p.DefaultGoogle}
		if v, ok := cell(p.SSLSelector); ok {
			d.SSL = models.TristateOf(ParseBool(v))
		}
		if v, ok := cell(p.GoogleSelector); ok {
			d.Google = models.TristateOf(ParseBool(v))
		}
		d.Protocol, _ = cell(p.ProtocolSelector)
		d.Name, _ = cell(p.NameSelector)
		d.Country, _ = cell(p.CountrySelector)
		d.City, _ = cell(p.CitySelector)

		proxies = append(proxies, p.newProxy(addr, port, d))
	})
	return proxies
}

func (p *HTML) String() string { return "HTML Parser" }

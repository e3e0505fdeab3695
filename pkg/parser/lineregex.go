package parser

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"proxy-discovery/pkg/models"
)

// LineRegex matches every line of the content against Regex and reads the
// proxy from named groups: address and port are required; https, google,
// protocol, name, country and city are optional. Lines that do not match
// are skipped silently.
type LineRegex struct {
	Common
	Regex string
	// SSLMarker is a literal https group value that also means yes, for
	// lists that mark SSL support with a letter.
	SSLMarker string
}

// NewLineRegex returns a parser for expr.
func NewLineRegex(expr string) *LineRegex {
	return &LineRegex{Regex: expr}
}

func (p *LineRegex) Validate() []string {
	if strings.TrimSpace(p.Regex) == "" {
		return []string{"Line regex cannot be empty"}
	}
	re, err := regexp.Compile(p.Regex)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	for _, group := range []string{"address", "port"} {
		if re.SubexpIndex(group) < 0 {
			problems = append(problems, fmt.Sprintf("Line regex does not contain '%s' group", group))
		}
	}
	if re.SubexpIndex("protocol") < 0 && p.DefaultProtocol == "" {
		problems = append(problems, "Line regex does not contain 'protocol' group and default protocol is not set")
	}
	return problems
}

func (p *LineRegex) Parse(content string, onError func(string)) []*models.ProxyInformation {
	re, err := regexp.Compile(p.Regex)
	if err != nil {
		onError(fmt.Sprintf("Unable to compile line regex: %v", err))
		return nil
	}

	var proxies []*models.ProxyInformation
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		group := func(name string) (string, bool) {
			i := re.SubexpIndex(name)
			if i < 0 || m[2*i] < 0 {
				return "", false
			}
			return line[m[2*i]:m[2*i+1]], true
		}

		address, okAddr := group("address")
		portText, okPort := group("port")
		if !okAddr || !okPort {
			onError(fmt.Sprintf("Line '%s' does not contain address and port", line))
			continue
		}
		addr, err := netip.ParseAddr(strings.TrimSpace(address))
		if err != nil {
			onError(fmt.Sprintf("Unable to parse address '%s' in line '%s'", address, line))
			continue
		}
		port, err := models.ParsePort(portText)
		if err != nil {
			onError(fmt.Sprintf("Unable to parse port '%s' in line '%s'", portText, line))
			continue
		}

		d := models.Details{SSL: p.DefaultSSL, Google: p.DefaultGoogle}
		if v, ok := group("https"); ok {
			d.SSL = models.TristateOf(ParseBool(v) || (p.SSLMarker != "" && v == p.SSLMarker))
		}
		if v, ok := group("google"); ok {
			d.Google = models.TristateOf(ParseBool(v))
		}
		if v, ok := group("protocol"); ok {
			d.Protocol = strings.ToLower(v)
		}
		d.Name, _ = group("name")
		d.Country, _ = group("country")
		d.City, _ = group("city")

		proxies = append(proxies, p.newProxy(addr, port, d))
	}
	return proxies
}

func (p *LineRegex) String() string { return "Line Regex Parser" }

package parser

import (
	"fmt"
	"net/netip"
	"strings"

	"proxy-discovery/pkg/models"
)

// Separator selects the CSV column separator.
type Separator int

const (
	// Detect picks semicolon when the first line contains one, else comma.
	Detect Separator = iota
	Comma
	// Semicolon is common where comma is the decimal mark.
	Semicolon
)

// CSV reads proxies from delimited text. Column numbers start at 1 and
// zero means the column is absent.
type CSV struct {
	Common
	SkipHeader bool
	Separator  Separator

	// EndpointColumn holds "ip:port". When set, IPColumn and PortColumn
	// are ignored.
	EndpointColumn int
	IPColumn       int
	PortColumn     int

	SSLColumn      int
	GoogleColumn   int
	ProtocolColumn int
	NameColumn     int
	CountryColumn  int
	CityColumn     int
}

func (p *CSV) Validate() []string {
	if p.EndpointColumn > 0 {
		return nil
	}
	if p.IPColumn <= 0 || p.PortColumn <= 0 {
		return []string{"IP column and Port column must be set when there is no endpoint column"}
	}
	if p.IPColumn == p.PortColumn {
		return []string{"IP column and Port column numbers cannot be equal"}
	}
	return nil
}

func (p *CSV) Parse(content string, onError func(string)) []*models.ProxyInformation {
	var proxies []*models.ProxyInformation
	sep := byte(',')

	for i, row := range splitLines(content) {
		if i == 0 {
			sep = p.separator(row)
			if p.SkipHeader {
				continue
			}
		}
		if proxy := p.parseRow(SplitCSV(row, sep), onError); proxy != nil {
			proxies = append(proxies, proxy)
		}
	}
	return proxies
}

func (p *CSV) separator(firstLine string) byte {
	switch p.Separator {
	case Comma:
		return ','
	case Semicolon:
		return ';'
	}
	if strings.Contains(firstLine, ";") {
		return ';'
	}
	return ','
}

func (p *CSV) parseRow(cells []string, onError func(string)) *models.ProxyInformation {
	required := func(col int, entity string) (string, bool) {
		if col < 1 || col > len(cells) {
			onError(fmt.Sprintf("Unable to get %s by column %d. It is out of columns range (%d)", entity, col, len(cells)))
			return "", false
		}
		return cells[col-1], true
	}
	optional := func(col int) (string, bool) {
		if col < 1 || col > len(cells) {
			return "", false
		}
		return cells[col-1], true
	}

	var addr netip.Addr
	var port uint16
	if p.EndpointColumn > 0 {
		endpoint, ok := required(p.EndpointColumn, "endpoint")
		if !ok {
			return nil
		}
		ap, err := netip.ParseAddrPort(endpoint)
		if err != nil {
			onError(fmt.Sprintf("Unable to parse endpoint. IP:Port expected, but '%s' encountered.", endpoint))
			return nil
		}
		addr, port = ap.Addr(), ap.Port()
	} else {
		address, ok := required(p.IPColumn, "address")
		if !ok {
			return nil
		}
		var err error
		if addr, err = netip.ParseAddr(address); err != nil {
			onError(fmt.Sprintf("Unable to parse address. IP expected, but '%s' encountered.", address))
			return nil
		}
		portText, ok := required(p.PortColumn, "port")
		if !ok {
			return nil
		}
		if port, err = models.ParsePort(portText); err != nil {
			onError(fmt.Sprintf("Unable to parse port. Number expected, but '%s' encountered.", portText))
			return nil
		}
	}

	d := models.Details{SSL: p.DefaultSSL, Google: p.DefaultGoogle}
	if v, ok := optional(p.SSLColumn); ok {
		d.SSL = models.TristateOf(ParseBool(v))
	}
	if v, ok := optional(p.GoogleColumn); ok {
		d.Google = models.TristateOf(ParseBool(v))
	}
	d.Protocol, _ = optional(p.ProtocolColumn)
	d.Name, _ = optional(p.NameColumn)
	d.Country, _ = optional(p.CountryColumn)
	d.City, _ = optional(p.CityColumn)

	return p.newProxy(addr, port, d)
}

func (p *CSV) String() string { return "CSV Parser" }

// SplitCSV splits one CSV line. Cells may be quoted with single or double
// quotes, a backslash escapes the next character, and unquoted whitespace
// around a cell is trimmed. A trailing separator yields an empty last cell.
func SplitCSV(line string, sep byte) []string {
	var cells []string
	i := 0
	for {
		var cell string
		cell, i = csvCell(line, i, sep)
		cells = append(cells, cell)
		if i >= len(line) {
			break
		}
		// separator
		i++
		if i >= len(line) {
			cells = append(cells, "")
			break
		}
	}
	return cells
}

func csvCell(line string, i int, sep byte) (string, int) {
	var sb strings.Builder
	var startQuote, quote byte
	escaped := false
	start := i
	// length of sb up to the last non-whitespace byte
	kept := 0

	for ; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			sb.WriteByte(c)
			kept = sb.Len()
			continue
		}
		if quote == 0 && c == sep {
			break
		}

		whitespace := false
		switch c {
		case '\\':
			escaped = true
			continue
		case '"', '\'':
			if quote != 0 {
				if quote == c {
					quote = 0
				}
				break
			}
			if i == start && startQuote == 0 {
				startQuote, quote = c, c
				continue
			}
			quote = c
		case ' ', '\t':
			if i == start {
				start++
				continue
			}
			whitespace = true
		}

		sb.WriteByte(c)
		if !whitespace {
			kept = sb.Len()
		}
	}

	s := sb.String()
	if kept < len(s) {
		return s[:kept], i
	}
	if startQuote != 0 && len(s) > 0 && s[len(s)-1] == startQuote {
		return s[:len(s)-1], i
	}
	return s, i
}

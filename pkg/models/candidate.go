package models

import (
	"net/netip"
	"time"

	"github.com/uptrace/bun"
)

// Candidate is a stored proxy list entry waiting to be checked.
type Candidate struct {
	bun.BaseModel `bun:"table:candidates,alias:c"`

	ID        int64  `bun:",pk,autoincrement"`
	IP        string `bun:",unique:candidates_endpoint_key,notnull"`
	Port      int    `bun:",unique:candidates_endpoint_key,notnull"`
	Protocol  string `bun:",notnull"`
	Host      string
	Name      string
	Country   string
	City      string
	SSL       string `bun:",notnull,default:'unknown'"`
	Google    string `bun:",notnull,default:'unknown'"`
	Batch     string
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ParseTristate reverses Tristate.String.
func ParseTristate(s string) Tristate {
	switch s {
	case "yes":
		return Yes
	case "no":
		return No
	default:
		return Unknown
	}
}

// CandidateFrom converts a proxy entry into its stored form.
func CandidateFrom(p *ProxyInformation, host, batch string) Candidate {
	return Candidate{
		IP:       p.Addr.String(),
		Port:     int(p.Port),
		Protocol: p.Protocol,
		Host:     host,
		Name:     p.Name,
		Country:  p.Country,
		City:     p.City,
		SSL:      p.SSL().String(),
		Google:   p.Google().String(),
		Batch:    batch,
	}
}

// Proxy converts a stored candidate back into a proxy entry. Rows with an
// unparsable address or port are reported as ok=false.
func (c Candidate) Proxy(r Resolvers) (*ProxyInformation, bool) {
	addr, err := netip.ParseAddr(c.IP)
	if err != nil || c.Port <= 0 || c.Port > 65535 {
		return nil, false
	}
	return NewProxyInformation(addr, uint16(c.Port), Details{
		Protocol: c.Protocol,
		SSL:      ParseTristate(c.SSL),
		Google:   ParseTristate(c.Google),
		Name:     c.Name,
		Country:  c.Country,
		City:     c.City,
	}, r), true
}

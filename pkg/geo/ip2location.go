package geo

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/ip2location/ip2location-go/v9"
)

// IP2Location reads an IP2Location BIN database.
type IP2Location struct {
	db *ip2location.DB
}

// OpenIP2Location opens a BIN file such as IP2LOCATION-LITE-DB3.BIN.
func OpenIP2Location(path string) (*IP2Location, error) {
	db, err := ip2location.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open IP2Location database: %w", err)
	}
	return &IP2Location{db: db}, nil
}

func (g *IP2Location) Locate(_ context.Context, addr netip.Addr) (Location, error) {
	rec, err := g.db.Get_all(addr.String())
	if err != nil {
		return Location{}, fmt.Errorf("ip2location lookup of %v failed: %w", addr, err)
	}
	return Location{Country: ip2locationValue(rec.Country_short), City: ip2locationValue(rec.City)}, nil
}

// ip2locationValue drops the placeholders the database uses for missing data.
func ip2locationValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" || strings.Contains(s, "unavailable") || strings.HasPrefix(s, "Invalid") {
		return ""
	}
	return s
}

func (g *IP2Location) Close() error {
	g.db.Close()
	return nil
}

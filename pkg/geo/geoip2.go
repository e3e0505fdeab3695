package geo

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP2 reads a MaxMind database. City databases give country and city;
// country databases give the country only.
type GeoIP2 struct {
	reader *geoip2.Reader
}

// OpenGeoIP2 opens an mmdb file such as GeoLite2-City.mmdb.
func OpenGeoIP2(path string) (*GeoIP2, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP2 database: %w", err)
	}
	return &GeoIP2{reader: reader}, nil
}

func (g *GeoIP2) Locate(_ context.Context, addr netip.Addr) (Location, error) {
	ip := addr.AsSlice()
	if city, err := g.reader.City(ip); err == nil {
		return Location{Country: city.Country.IsoCode, City: city.City.Names["en"]}, nil
	}
	country, err := g.reader.Country(ip)
	if err != nil {
		return Location{}, fmt.Errorf("geoip2 lookup of %v failed: %w", addr, err)
	}
	return Location{Country: country.Country.IsoCode}, nil
}

func (g *GeoIP2) Close() error {
	return g.reader.Close()
}

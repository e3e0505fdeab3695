package filter

import (
	"strings"

	"proxy-discovery/pkg/models"
)

// ParseCountries splits a human readable list on spaces, commas and
// semicolons. Multi-word names must be given by code.
func ParseCountries(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';'
	})
}

type countryList struct {
	items []string
	names []string
}

func newCountryList(list string, resolver models.CountryResolver) countryList {
	l := countryList{items: ParseCountries(list)}
	for _, item := range l.items {
		l.names = append(l.names, item)
		if resolver != nil {
			if name := resolver.Resolve(item); name != "" && !strings.EqualFold(name, item) {
				l.names = append(l.names, name)
			}
		}
	}
	return l
}

func (l countryList) contains(country string) bool {
	for _, name := range l.names {
		if strings.EqualFold(name, country) {
			return true
		}
	}
	return false
}

func (l countryList) validate() []string {
	if len(l.items) == 0 {
		return []string{"Countries list can't be empty."}
	}
	return nil
}

// IncludeCountries keeps proxies located in one of the listed countries.
// Proxies with no country are dropped.
type IncludeCountries struct {
	list countryList
}

// NewIncludeCountries parses list with ParseCountries. Items that are
// country codes are also matched by name through resolver, which may be nil.
func NewIncludeCountries(list string, resolver models.CountryResolver) *IncludeCountries {
	return &IncludeCountries{list: newCountryList(list, resolver)}
}

func (f *IncludeCountries) Passes(p *models.ProxyInformation) bool {
	if strings.TrimSpace(p.Country) == "" {
		return false
	}
	return f.list.contains(p.Country)
}

func (f *IncludeCountries) Validate() []string { return f.list.validate() }

// Countries returns the list as given, joined with ", ".
func (f *IncludeCountries) Countries() string { return strings.Join(f.list.items, ", ") }

func (f *IncludeCountries) String() string { return "Include countries filter (" + f.Countries() + ")" }

// ExcludeCountries drops proxies located in one of the listed countries.
// Proxies with no country are kept.
type ExcludeCountries struct {
	list countryList
}

func NewExcludeCountries(list string, resolver models.CountryResolver) *ExcludeCountries {
	return &ExcludeCountries{list: newCountryList(list, resolver)}
}

func (f *ExcludeCountries) Passes(p *models.ProxyInformation) bool {
	if strings.TrimSpace(p.Country) == "" {
		return true
	}
	return !f.list.contains(p.Country)
}

func (f *ExcludeCountries) Validate() []string { return f.list.validate() }

func (f *ExcludeCountries) Countries() string { return strings.Join(f.list.items, ", ") }

func (f *ExcludeCountries) String() string { return "Exclude countries filter (" + f.Countries() + ")" }

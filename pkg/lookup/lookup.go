// Package lookup holds the read-only tables consulted when proxy entries
// are built: country names by ISO code and proxy software by default port.
// Both tables are embedded and parsed on first use.
package lookup

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
	"sync"
)

// CustomService is returned when no known proxy software uses a port.
const CustomService = "<custom>"

//go:embed countries.csv
var countriesCSV string

//go:embed services.csv
var servicesCSV string

// CountryTable resolves two-letter country codes to names.
type CountryTable struct {
	names map[string]string
}

// Countries returns the shared country table.
var Countries = sync.OnceValue(func() *CountryTable {
	t := &CountryTable{names: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(countriesCSV))
	for scanner.Scan() {
		code, name, ok := strings.Cut(scanner.Text(), ";")
		if !ok || code == "" {
			continue
		}
		t.names[code] = strings.TrimSpace(name)
	}
	return t
})

// Resolve returns the country name for code. Blank input gives "". Values
// longer than two characters are taken to be names already and returned
// unchanged, as are unknown codes.
func (t *CountryTable) Resolve(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	if len(code) > 2 {
		return code
	}
	if name, ok := t.names[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// Len returns the number of known codes.
func (t *CountryTable) Len() int {
	return len(t.names)
}

type service struct {
	name  string
	ports []uint16
}

// ServiceTable guesses proxy software from its default port.
type ServiceTable struct {
	services []service
}

// Services returns the shared service table. Table order is kept so that
// Detect output is stable.
var Services = sync.OnceValue(func() *ServiceTable {
	t := &ServiceTable{}
	scanner := bufio.NewScanner(strings.NewReader(servicesCSV))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		s := service{name: fields[0]}
		for _, f := range fields[1:] {
			port, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
			if err != nil {
				continue
			}
			s.ports = append(s.ports, uint16(port))
		}
		t.services = append(t.services, s)
	}
	return t
})

// Detect lists the software that uses port by default, for example
// "Squid, Blue Coat ProxySG or 3Proxy". It returns CustomService when
// nothing matches. The guess is only meaningful for default ports.
func (t *ServiceTable) Detect(port uint16) string {
	var names []string
	for _, s := range t.services {
		for _, p := range s.ports {
			if p == port {
				names = append(names, s.name)
				break
			}
		}
	}

	switch len(names) {
	case 0:
		return CustomService
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

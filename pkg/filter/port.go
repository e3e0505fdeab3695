package filter

import (
	"fmt"
	"strconv"
	"strings"

	"proxy-discovery/pkg/models"
)

// PortSet is a single port or an inclusive range. Inverted sets exclude.
type PortSet struct {
	Min, Max uint16
	Inverted bool
}

func (s PortSet) Contains(port uint16) bool {
	return port >= s.Min && port <= s.Max
}

func (s PortSet) String() string {
	var v string
	if s.Min == s.Max {
		v = strconv.Itoa(int(s.Min))
	} else {
		v = fmt.Sprintf("%d-%d", s.Min, s.Max)
	}
	if s.Inverted {
		return "~" + v
	}
	return v
}

// ParsePortSets parses lists like "80, 8000-8100, ~8080". Items are
// separated by commas, semicolons or spaces; "~" marks an exclusion.
func ParsePortSets(s string) ([]PortSet, error) {
	var sets []PortSet
	i := 0

	skipSpaces := func() bool {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		return i < len(s)
	}
	digits := func() (uint16, error) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return 0, fmt.Errorf("unexpected character %q at %d", s[i], i)
		}
		v, err := strconv.ParseUint(s[start:i], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid port %q", s[start:i])
		}
		return uint16(v), nil
	}

	for skipSpaces() {
		set := PortSet{}
		if s[i] == '~' {
			set.Inverted = true
			i++
			if !skipSpaces() {
				return nil, fmt.Errorf("missing port after '~'")
			}
		}

		first, err := digits()
		if err != nil {
			return nil, err
		}
		set.Min, set.Max = first, first

		if skipSpaces() {
			switch s[i] {
			case ',', ';':
				i++
			case '-':
				i++
				if !skipSpaces() {
					return nil, fmt.Errorf("missing range end at %d", i)
				}
				last, err := digits()
				if err != nil {
					return nil, err
				}
				if last < first {
					return nil, fmt.Errorf("invalid port range %d-%d", first, last)
				}
				set.Max = last
				if skipSpaces() && (s[i] == ',' || s[i] == ';') {
					i++
				}
			}
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Port keeps proxies on the listed ports. Inclusions are alternatives;
// with no inclusions every port passes unless excluded.
type Port struct {
	Sets []PortSet
}

// NewPort parses ports with ParsePortSets.
func NewPort(ports string) (*Port, error) {
	sets, err := ParsePortSets(ports)
	if err != nil {
		return nil, fmt.Errorf("failed to parse port filter: %w", err)
	}
	return &Port{Sets: sets}, nil
}

func (f *Port) Passes(p *models.ProxyInformation) bool {
	hasIncludes, included := false, false
	for _, set := range f.Sets {
		if set.Inverted {
			continue
		}
		hasIncludes = true
		if set.Contains(p.Port) {
			included = true
			break
		}
	}
	if hasIncludes && !included {
		return false
	}

	for _, set := range f.Sets {
		if set.Inverted && set.Contains(p.Port) {
			return false
		}
	}
	return true
}

func (f *Port) Validate() []string {
	if len(f.Sets) == 0 {
		return []string{"Port filter ports lists are empty."}
	}
	return nil
}

// Ports returns the canonical form, such as "80, 90-100, ~91".
func (f *Port) Ports() string {
	parts := make([]string, len(f.Sets))
	for i, set := range f.Sets {
		parts[i] = set.String()
	}
	return strings.Join(parts, ", ")
}

func (f *Port) String() string { return "Port filter (" + f.Ports() + ")" }

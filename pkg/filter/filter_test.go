package filter

import (
	"net/netip"
	"reflect"
	"testing"

	"proxy-discovery/pkg/models"
)

type codeTable map[string]string

func (t codeTable) Resolve(code string) string {
	if name, ok := t[code]; ok {
		return name
	}
	return code
}

func proxyWith(port uint16, d models.Details) *models.ProxyInformation {
	return models.NewProxyInformation(netip.MustParseAddr("192.168.0.1"), port, d, models.Resolvers{})
}

func TestParsePortSets(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"80", "80"},
		{"8080", "8080"},
		{"80,8080", "80, 8080"},
		{"80, 8080", "80, 8080"},
		{"80 , 8080", "80, 8080"},
		{"80 8080", "80, 8080"},
		{"80  8080", "80, 8080"},
		{"80, 8080,", "80, 8080"},
		{"80, 8080, ", "80, 8080"},
		{"80 8080 ", "80, 8080"},
		{"80;8080;8081", "80, 8080, 8081"},
		{"80 8080, 8081", "80, 8080, 8081"},
		{"80-81", "80-81"},
		{"80 -81", "80-81"},
		{"80 - 81", "80-81"},
		{"80-100, 120-140,", "80-100, 120-140"},
		{"80 - 100  120 - 140", "80-100, 120-140"},
		{"8080, 80-100", "8080, 80-100"},
		{"~80", "~80"},
		{"80-100, ~91", "80-100, ~91"},
		{"~ 80-90", "~80-90"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sets, err := ParsePortSets(tt.input)
			if err != nil {
				t.Fatalf("ParsePortSets(%q) error = %v", tt.input, err)
			}
			f := &Port{Sets: sets}
			if got := f.Ports(); got != tt.want {
				t.Errorf("Ports() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePortSetsErrors(t *testing.T) {
	for _, input := range []string{
		"qwerty", "q80", "80q", "80,q81", "80q,81", "80q-81", "80-q81", "80-81q",
		"70000", "90-80", "80-", "~",
	} {
		if _, err := ParsePortSets(input); err == nil {
			t.Errorf("ParsePortSets(%q) error = nil, want an error", input)
		}
	}
}

func TestPortPasses(t *testing.T) {
	tests := []struct {
		ports string
		port  uint16
		want  bool
	}{
		{"80,81", 80, true},
		{"80,81", 81, true},
		{"80,81", 82, false},
		{"80-81", 80, true},
		{"80-81", 81, true},
		{"80-81", 82, false},
		{"80,82-85", 80, true},
		{"80,82-85", 81, false},
		{"80,82-85", 82, true},
		{"80,82-85", 85, true},
		{"80,82-85", 86, false},
		{"~80", 80, false},
		{"~80", 3128, true},
		{"80-100, ~91", 91, false},
		{"80-100, ~91", 92, true},
		{"80-100, ~91", 101, false},
	}

	for _, tt := range tests {
		f, err := NewPort(tt.ports)
		if err != nil {
			t.Fatalf("NewPort(%q) error = %v", tt.ports, err)
		}
		if problems := f.Validate(); len(problems) != 0 {
			t.Errorf("Validate() = %v, want none", problems)
		}
		if got := f.Passes(proxyWith(tt.port, models.Details{})); got != tt.want {
			t.Errorf("Port(%q).Passes(%d) = %v, want %v", tt.ports, tt.port, got, tt.want)
		}
	}
}

func TestPortValidateEmpty(t *testing.T) {
	f := &Port{}
	want := []string{"Port filter ports lists are empty."}
	if got := f.Validate(); !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %v, want %v", got, want)
	}
}

func TestParseCountries(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Malaysia", "Malaysia"},
		{"Malaysia ", "Malaysia"},
		{"Malaysia,", "Malaysia"},
		{"Malaysia,Philippines", "Malaysia, Philippines"},
		{"Malaysia, Philippines", "Malaysia, Philippines"},
		{"Malaysia Philippines", "Malaysia, Philippines"},
		{"Malaysia Philippines,", "Malaysia, Philippines"},
		{"Malaysia,Philippines,India", "Malaysia, Philippines, India"},
		{"Malaysia Philippines;India,", "Malaysia, Philippines, India"},
	}

	for _, tt := range tests {
		if got := NewIncludeCountries(tt.input, nil).Countries(); got != tt.want {
			t.Errorf("Countries() for %q = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCountryFilters(t *testing.T) {
	table := codeTable{"MY": "Malaysia", "IN": "India"}

	tests := []struct {
		list        string
		country     string
		wantInclude bool
	}{
		{"Malaysia", "", false},
		{"Malaysia", "Malaysia", true},
		{"Malaysia", "malaysia", true},
		{"Malaysia, Philippines", "Malaysia", true},
		{"Malaysia, Philippines", "India", false},
		{"MY, PH", "Malaysia", true},
		{"my", "Malaysia", true},
		{"IN", "Malaysia", false},
	}

	for _, tt := range tests {
		p := proxyWith(80, models.Details{Protocol: "http", Country: tt.country})

		include := NewIncludeCountries(tt.list, table)
		if problems := include.Validate(); len(problems) != 0 {
			t.Errorf("Validate() = %v, want none", problems)
		}
		if got := include.Passes(p); got != tt.wantInclude {
			t.Errorf("IncludeCountries(%q).Passes(%q) = %v, want %v", tt.list, tt.country, got, tt.wantInclude)
		}

		exclude := NewExcludeCountries(tt.list, table)
		// no country passes exclusion
		wantExclude := tt.country == "" || !tt.wantInclude
		if got := exclude.Passes(p); got != wantExclude {
			t.Errorf("ExcludeCountries(%q).Passes(%q) = %v, want %v", tt.list, tt.country, got, wantExclude)
		}
	}
}

func TestCountryValidateEmpty(t *testing.T) {
	want := []string{"Countries list can't be empty."}
	if got := NewIncludeCountries(" , ;", nil).Validate(); !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %v, want %v", got, want)
	}
	if got := NewExcludeCountries("", nil).Validate(); !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %v, want %v", got, want)
	}
}

func TestTristateFilters(t *testing.T) {
	tests := []struct {
		name         string
		value        models.Tristate
		allowUnknown bool
		want         bool
	}{
		{"yes", models.Yes, false, true},
		{"no", models.No, false, false},
		{"no allow unknown", models.No, true, false},
		{"unknown", models.Unknown, false, false},
		{"unknown allowed", models.Unknown, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ssl := &SSL{AllowUnknown: tt.allowUnknown}
			if got := ssl.Passes(proxyWith(80, models.Details{SSL: tt.value})); got != tt.want {
				t.Errorf("SSL.Passes() = %v, want %v", got, tt.want)
			}
			google := &Google{AllowUnknown: tt.allowUnknown}
			if got := google.Passes(proxyWith(80, models.Details{Google: tt.value})); got != tt.want {
				t.Errorf("Google.Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProtocol(t *testing.T) {
	f := &Protocol{Protocol: "socks5"}
	if !f.Passes(proxyWith(1080, models.Details{Protocol: "SOCKS5"})) {
		t.Errorf("Passes() = false for matching protocol")
	}
	if f.Passes(proxyWith(1080, models.Details{Protocol: "http"})) {
		t.Errorf("Passes() = true for different protocol")
	}

	want := []string{"Protocol cannot be empty"}
	if got := (&Protocol{Protocol: " "}).Validate(); !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %v, want %v", got, want)
	}
}

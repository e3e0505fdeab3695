package codec

import (
	"encoding/binary"
	"errors"
	"net/netip"
	"reflect"
	"testing"
)

func TestBuildSocks4ConnectRequest(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		port   uint16
		userID string
		want   []byte
	}{
		{
			name:   "default user id",
			addr:   "192.168.1.10",
			port:   443,
			userID: DefaultSocks4UserID,
			want:   append([]byte{4, 1, 0x01, 0xbb, 192, 168, 1, 10}, append([]byte("ProxyDiscovery"), 0)...),
		},
		{
			name: "empty user id",
			addr: "10.0.0.1",
			port: 80,
			want: []byte{4, 1, 0, 80, 10, 0, 0, 1, 0},
		},
		{
			name: "mapped address",
			addr: "::ffff:1.2.3.4",
			port: 8080,
			want: []byte{4, 1, 0x1f, 0x90, 1, 2, 3, 4, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSocks4ConnectRequest(netip.MustParseAddr(tt.addr), tt.port, tt.userID)
			if err != nil {
				t.Fatalf("BuildSocks4ConnectRequest() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildSocks4ConnectRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSocks4ConnectRequestRejectsIPv6(t *testing.T) {
	_, err := BuildSocks4ConnectRequest(netip.MustParseAddr("2001:db8::1"), 80, "")
	if !errors.Is(err, ErrNotIPv4) {
		t.Errorf("BuildSocks4ConnectRequest() error = %v, want %v", err, ErrNotIPv4)
	}
}

func TestSocks4FieldsRecoverable(t *testing.T) {
	addrs := []string{"0.0.0.0", "1.2.3.4", "127.0.0.1", "255.255.255.255", "192.168.100.200"}
	ports := []uint16{0, 1, 80, 443, 1080, 8080, 65535}

	for _, a := range addrs {
		for _, port := range ports {
			addr := netip.MustParseAddr(a)
			b, err := BuildSocks4ConnectRequest(addr, port, "id")
			if err != nil {
				t.Fatalf("BuildSocks4ConnectRequest(%v, %d) error = %v", addr, port, err)
			}
			if b[0] != 4 || b[1] != byte(Socks4Connect) {
				t.Errorf("header = %v, want [4 1]", b[:2])
			}
			if got := binary.BigEndian.Uint16(b[2:4]); got != port {
				t.Errorf("port = %d, want %d", got, port)
			}
			if got := netip.AddrFrom4([4]byte(b[4:8])); got != addr {
				t.Errorf("addr = %v, want %v", got, addr)
			}
			if string(b[8:len(b)-1]) != "id" || b[len(b)-1] != 0 {
				t.Errorf("user id = %q, want %q", b[8:], "id\x00")
			}
		}
	}
}

func TestParseSocks4ConnectResponse(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Socks4Result
	}{
		{"granted", []byte{0, 90, 0, 0, 0, 0, 0, 0}, Socks4OK},
		{"failed", []byte{0, 91}, Socks4Failed},
		{"rejected", []byte{0, 92}, Socks4Rejected},
		{"user id mismatch", []byte{0, 93}, Socks4UserIDMismatch},
		{"bad first byte", []byte{4, 90}, Socks4Invalid},
		{"short", []byte{0}, Socks4Invalid},
		{"empty", nil, Socks4Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSocks4ConnectResponse(tt.in); got != tt.want {
				t.Errorf("ParseSocks4ConnectResponse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSocks5MethodNegotiation(t *testing.T) {
	got, err := BuildSocks5MethodRequest(Socks5MethodNone)
	if err != nil {
		t.Fatalf("BuildSocks5MethodRequest() error = %v", err)
	}
	if want := []byte{5, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSocks5MethodRequest() = %v, want %v", got, want)
	}

	got, _ = BuildSocks5MethodRequest(Socks5MethodNone, Socks5MethodUserPass)
	if want := []byte{5, 2, 0, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSocks5MethodRequest() = %v, want %v", got, want)
	}

	if _, err := BuildSocks5MethodRequest(); err == nil {
		t.Errorf("BuildSocks5MethodRequest() with no methods: expected error")
	}

	tests := []struct {
		in   []byte
		want Socks5Method
	}{
		{[]byte{5, 0}, Socks5MethodNone},
		{[]byte{5, 2}, Socks5MethodUserPass},
		{[]byte{5, 255}, Socks5NoAcceptableMethods},
		{[]byte{5}, Socks5NoAcceptableMethods},
	}
	for _, tt := range tests {
		if got := ParseSocks5MethodResponse(tt.in); got != tt.want {
			t.Errorf("ParseSocks5MethodResponse(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildSocks5Request(t *testing.T) {
	tests := []struct {
		name string
		host string
		port uint16
		want []byte
	}{
		{
			name: "domain",
			host: "example.com",
			port: 443,
			want: append(append([]byte{5, 1, 0, 3, 11}, "example.com"...), 0x01, 0xbb),
		},
		{
			name: "ipv4 literal",
			host: "10.1.2.3",
			port: 80,
			want: []byte{5, 1, 0, 1, 10, 1, 2, 3, 0, 80},
		},
		{
			name: "ipv6 literal",
			host: "2001:db8::1",
			port: 80,
			want: []byte{5, 1, 0, 4, 0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSocks5Request(Socks5Connect, tt.host, tt.port)
			if err != nil {
				t.Fatalf("BuildSocks5Request() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildSocks5Request() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSocks5RequestErrors(t *testing.T) {
	if _, err := BuildSocks5Request(Socks5Connect, "", 80); err == nil {
		t.Errorf("BuildSocks5Request() with empty host: expected error")
	}
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := BuildSocks5Request(Socks5Connect, string(long), 80); !errors.Is(err, ErrDomainTooLong) {
		t.Errorf("BuildSocks5Request() error = %v, want %v", err, ErrDomainTooLong)
	}
}

func TestParseSocks5Reply(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Socks5Reply
	}{
		{
			name: "ok ipv4",
			in:   []byte{5, 0, 0, 1, 127, 0, 0, 1, 0x04, 0x38},
			want: Socks5Reply{Reply: Socks5OK, BindAddr: netip.MustParseAddr("127.0.0.1"), BindPort: 1080},
		},
		{
			name: "ok ipv6",
			in:   append(append([]byte{5, 0, 0, 4}, netip.MustParseAddr("::1").AsSlice()...), 0, 80),
			want: Socks5Reply{Reply: Socks5OK, BindAddr: netip.MustParseAddr("::1"), BindPort: 80},
		},
		{
			name: "ok domain",
			in:   append(append([]byte{5, 0, 0, 3, 4}, "host"...), 0, 81),
			want: Socks5Reply{Reply: Socks5OK, BindHost: "host", BindPort: 81},
		},
		{
			name: "refused",
			in:   []byte{5, 5, 0, 1, 0, 0, 0, 0, 0, 0},
			want: Socks5Reply{Reply: Socks5ConnectionRefused},
		},
		{
			name: "host unreachable short",
			in:   []byte{5, 4},
			want: Socks5Reply{Reply: Socks5HostUnreachable},
		},
		{
			name: "bad version",
			in:   []byte{4, 0, 0, 1, 0, 0, 0, 0, 0, 0},
			want: Socks5Reply{Reply: Socks5InvalidPacket},
		},
		{
			name: "truncated address",
			in:   []byte{5, 0, 0, 1, 127, 0},
			want: Socks5Reply{Reply: Socks5InvalidPacket},
		},
		{
			name: "unknown address type",
			in:   []byte{5, 0, 0, 9, 0, 0},
			want: Socks5Reply{Reply: Socks5InvalidPacket},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSocks5Reply(tt.in); got != tt.want {
				t.Errorf("ParseSocks5Reply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSocks5ReplyCodeString(t *testing.T) {
	if got := Socks5TTLExpired.String(); got != "TTLExpired" {
		t.Errorf("String() = %q, want %q", got, "TTLExpired")
	}
	if got := Socks5ReplyCode(42).String(); got != "Socks5ReplyCode(42)" {
		t.Errorf("String() = %q, want %q", got, "Socks5ReplyCode(42)")
	}
}

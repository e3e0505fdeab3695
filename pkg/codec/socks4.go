package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

// DefaultSocks4UserID is sent when no user id is configured.
const DefaultSocks4UserID = "ProxyDiscovery"

// ErrNotIPv4 is returned when a SOCKS4 request targets a non-IPv4 address.
var ErrNotIPv4 = errors.New("only IPv4 addresses are supported")

// Socks4Command is the SOCKS4 command code.
type Socks4Command byte

const (
	Socks4Connect Socks4Command = 1
	Socks4Bind    Socks4Command = 2
)

// Socks4Result is the second byte of a SOCKS4 response.
type Socks4Result byte

const (
	Socks4Invalid        Socks4Result = 0
	Socks4OK             Socks4Result = 90
	Socks4Failed         Socks4Result = 91
	Socks4Rejected       Socks4Result = 92
	Socks4UserIDMismatch Socks4Result = 93
)

func (r Socks4Result) String() string {
	switch r {
	case Socks4Invalid:
		return "Invalid"
	case Socks4OK:
		return "OK"
	case Socks4Failed:
		return "Failed"
	case Socks4Rejected:
		return "Rejected"
	case Socks4UserIDMismatch:
		return "UserIdMismatch"
	default:
		return fmt.Sprintf("Socks4Result(%d)", byte(r))
	}
}

// BuildSocks4ConnectRequest encodes a SOCKS4 CONNECT request. IPv4-mapped
// IPv6 addresses are accepted; any other non-IPv4 address is rejected.
func BuildSocks4ConnectRequest(addr netip.Addr, port uint16, userID string) ([]byte, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, fmt.Errorf("socks4 target %v: %w", addr, ErrNotIPv4)
	}

	request := make([]byte, 0, 9+len(userID))
	request = append(request, 4, byte(Socks4Connect))
	request = binary.BigEndian.AppendUint16(request, port)
	ip := addr.As4()
	request = append(request, ip[:]...)
	request = append(request, userID...)
	request = append(request, 0)
	return request, nil
}

// ParseSocks4ConnectResponse decodes the result of a SOCKS4 response. The
// first byte must be zero; anything else, or a short buffer, is Invalid.
func ParseSocks4ConnectResponse(b []byte) Socks4Result {
	if len(b) < 2 || b[0] != 0 {
		return Socks4Invalid
	}
	return Socks4Result(b[1])
}

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

// ErrDomainTooLong is returned for SOCKS5 domain names over 255 bytes.
var ErrDomainTooLong = errors.New("domain name longer than 255 bytes")

// Socks5Method is an authentication method code.
type Socks5Method byte

const (
	Socks5MethodNone              Socks5Method = 0
	Socks5MethodGSSAPI            Socks5Method = 1
	Socks5MethodUserPass          Socks5Method = 2
	Socks5MethodCHAP              Socks5Method = 3
	Socks5MethodChallengeResponse Socks5Method = 5
	Socks5MethodSSL               Socks5Method = 6
	Socks5MethodLDAP              Socks5Method = 7
	Socks5MethodMultifactor       Socks5Method = 8
	Socks5MethodJSON              Socks5Method = 9
	Socks5NoAcceptableMethods     Socks5Method = 255
)

// Socks5Command is the request command code.
type Socks5Command byte

const (
	Socks5Connect      Socks5Command = 1
	Socks5Bind         Socks5Command = 2
	Socks5UDPAssociate Socks5Command = 3
)

// Socks5AddrType is the address type byte.
type Socks5AddrType byte

const (
	Socks5AddrIPv4   Socks5AddrType = 1
	Socks5AddrDomain Socks5AddrType = 3
	Socks5AddrIPv6   Socks5AddrType = 4
)

// Socks5ReplyCode is the second byte of a SOCKS5 reply.
type Socks5ReplyCode byte

const (
	Socks5OK                      Socks5ReplyCode = 0
	Socks5ServerFailure           Socks5ReplyCode = 1
	Socks5NotAllowed              Socks5ReplyCode = 2
	Socks5NetworkUnreachable      Socks5ReplyCode = 3
	Socks5HostUnreachable         Socks5ReplyCode = 4
	Socks5ConnectionRefused       Socks5ReplyCode = 5
	Socks5TTLExpired              Socks5ReplyCode = 6
	Socks5CommandNotSupported     Socks5ReplyCode = 7
	Socks5AddressTypeNotSupported Socks5ReplyCode = 8
	// Socks5InvalidPacket is not on the wire. It marks a reply that could not
	// be decoded.
	Socks5InvalidPacket Socks5ReplyCode = 100
)

var socks5ReplyNames = map[Socks5ReplyCode]string{
	Socks5OK:                      "OK",
	Socks5ServerFailure:           "ServerFailure",
	Socks5NotAllowed:              "NotAllowed",
	Socks5NetworkUnreachable:      "NetworkUnreachable",
	Socks5HostUnreachable:         "HostUnreachable",
	Socks5ConnectionRefused:       "ConnectionRefused",
	Socks5TTLExpired:              "TTLExpired",
	Socks5CommandNotSupported:     "CommandNotSupported",
	Socks5AddressTypeNotSupported: "AddressTypeNotSupported",
	Socks5InvalidPacket:           "InvalidPacket",
}

func (c Socks5ReplyCode) String() string {
	if name, ok := socks5ReplyNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Socks5ReplyCode(%d)", byte(c))
}

// BuildSocks5MethodRequest encodes the method negotiation greeting.
func BuildSocks5MethodRequest(methods ...Socks5Method) ([]byte, error) {
	if len(methods) == 0 || len(methods) > 255 {
		return nil, fmt.Errorf("socks5: %d methods offered, want 1..255", len(methods))
	}
	request := make([]byte, 0, 2+len(methods))
	request = append(request, 5, byte(len(methods)))
	for _, m := range methods {
		request = append(request, byte(m))
	}
	return request, nil
}

// ParseSocks5MethodResponse returns the method chosen by the server. The
// version byte is not checked. A short buffer is NoAcceptableMethods.
func ParseSocks5MethodResponse(b []byte) Socks5Method {
	if len(b) < 2 {
		return Socks5NoAcceptableMethods
	}
	return Socks5Method(b[1])
}

// BuildSocks5Request encodes a request for a host given as text. IP literals
// are sent as addresses, everything else as a domain name.
func BuildSocks5Request(cmd Socks5Command, host string, port uint16) ([]byte, error) {
	if host == "" {
		return nil, errors.New("socks5: empty target host")
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return BuildSocks5RequestAddr(cmd, addr, port), nil
	}
	if len(host) > 255 {
		return nil, fmt.Errorf("socks5 target %q: %w", host, ErrDomainTooLong)
	}

	request := make([]byte, 0, 7+len(host))
	request = append(request, 5, byte(cmd), 0, byte(Socks5AddrDomain), byte(len(host)))
	request = append(request, host...)
	request = binary.BigEndian.AppendUint16(request, port)
	return request, nil
}

// BuildSocks5RequestAddr encodes a request for an IPv4 or IPv6 address.
func BuildSocks5RequestAddr(cmd Socks5Command, addr netip.Addr, port uint16) []byte {
	addr = addr.Unmap()
	request := make([]byte, 0, 22)
	if addr.Is4() {
		request = append(request, 5, byte(cmd), 0, byte(Socks5AddrIPv4))
	} else {
		request = append(request, 5, byte(cmd), 0, byte(Socks5AddrIPv6))
	}
	request = append(request, addr.AsSlice()...)
	return binary.BigEndian.AppendUint16(request, port)
}

// Socks5Reply is a decoded SOCKS5 reply. The bind fields are only filled in
// for an OK reply.
type Socks5Reply struct {
	Reply    Socks5ReplyCode
	BindAddr netip.Addr
	BindHost string
	BindPort uint16
}

// ParseSocks5Reply decodes a SOCKS5 reply. A wrong version byte, an unknown
// address type or a truncated buffer yields Socks5InvalidPacket.
func ParseSocks5Reply(b []byte) Socks5Reply {
	invalid := Socks5Reply{Reply: Socks5InvalidPacket}
	if len(b) < 2 || b[0] != 5 {
		return invalid
	}
	r := Socks5Reply{Reply: Socks5ReplyCode(b[1])}
	if r.Reply != Socks5OK {
		return r
	}
	if len(b) < 4 {
		return invalid
	}

	rest := b[4:]
	switch Socks5AddrType(b[3]) {
	case Socks5AddrIPv4:
		if len(rest) < 4 {
			return invalid
		}
		r.BindAddr = netip.AddrFrom4([4]byte(rest[:4]))
		rest = rest[4:]
	case Socks5AddrIPv6:
		if len(rest) < 16 {
			return invalid
		}
		r.BindAddr = netip.AddrFrom16([16]byte(rest[:16]))
		rest = rest[16:]
	case Socks5AddrDomain:
		if len(rest) < 1 || len(rest) < 1+int(rest[0]) {
			return invalid
		}
		n := int(rest[0])
		r.BindHost = string(rest[1 : 1+n])
		rest = rest[1+n:]
	default:
		return invalid
	}

	if len(rest) < 2 {
		return invalid
	}
	r.BindPort = binary.BigEndian.Uint16(rest)
	return r
}

package codec

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// HTTPVersion selects the request line version. The zero value is HTTP/1.1.
type HTTPVersion int

const (
	HTTP11 HTTPVersion = iota
	HTTP10
)

func (v HTTPVersion) String() string {
	switch v {
	case HTTP10:
		return "1.0"
	case HTTP11:
		return "1.1"
	default:
		return fmt.Sprintf("HTTPVersion(%d)", int(v))
	}
}

// ParseHTTPVersion accepts "1.0", "1.1" and the same with an "HTTP/" prefix.
func ParseHTTPVersion(s string) (HTTPVersion, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "HTTP/") {
	case "1.0":
		return HTTP10, nil
	case "1.1", "":
		return HTTP11, nil
	default:
		return 0, fmt.Errorf("unsupported HTTP version %q", s)
	}
}

const crlf = "\r\n"

// BuildHTTPRequest encodes a header-only HTTP request. The target is
// host[:port] when resource is empty (CONNECT form), otherwise resource.
// HTTP/1.1 requests carry a Host header; HTTP/1.0 requests carry none.
// A zero port is omitted. IPv6 hosts are bracketed.
func BuildHTTPRequest(version HTTPVersion, method, host string, port uint16, resource string) ([]byte, error) {
	if method == "" {
		return nil, fmt.Errorf("http request: empty method")
	}
	if host == "" {
		return nil, fmt.Errorf("http request: empty host")
	}
	if version != HTTP10 && version != HTTP11 {
		return nil, fmt.Errorf("http request: unsupported version %v", version)
	}

	authority := host
	if port != 0 {
		authority = net.JoinHostPort(host, strconv.Itoa(int(port)))
	} else if strings.Contains(host, ":") {
		authority = "[" + host + "]"
	}

	var b bytes.Buffer
	b.WriteString(method)
	b.WriteByte(' ')
	if resource == "" {
		b.WriteString(authority)
	} else {
		b.WriteString(resource)
	}
	b.WriteString(" HTTP/")
	b.WriteString(version.String())
	b.WriteString(crlf)
	if version == HTTP11 {
		b.WriteString("Host:")
		b.WriteString(authority)
		b.WriteString(crlf)
	}
	b.WriteString(crlf)
	return b.Bytes(), nil
}

// HTTPResponse is a parsed status line.
type HTTPResponse struct {
	Version    string
	StatusCode int
	// Phrase is empty when the server sent only a code.
	Phrase string
	Valid  bool
}

// ParseHTTPResponse parses the status line at the start of b. It never
// panics; anything that is not "HTTP/<version> <code>[ <phrase>]\r\n"
// is returned with Valid unset. Extra spaces before the code are tolerated.
// When the line is cut short before its CRLF, a code followed by a space
// is still accepted and the partial phrase is dropped.
func ParseHTTPResponse(b []byte) HTTPResponse {
	var r HTTPResponse
	s := string(b)

	if !strings.HasPrefix(s, "HTTP/") {
		return r
	}
	line, _, complete := strings.Cut(s[len("HTTP/"):], crlf)

	version, rest, found := strings.Cut(line, " ")
	if !found || version == "" {
		return r
	}
	rest = strings.TrimLeft(rest, " ")

	code, phrase, spaced := strings.Cut(rest, " ")
	if !complete {
		if !spaced {
			return r
		}
		phrase = ""
	}
	if code == "" || !isDigits(code) {
		return r
	}
	status, err := strconv.Atoi(code)
	if err != nil {
		return r
	}

	r.Version = version
	r.StatusCode = status
	r.Phrase = phrase
	r.Valid = true
	return r
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

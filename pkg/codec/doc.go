/*
Package codec encodes and decodes the wire messages used to open a tunnel
through a proxy: the SOCKS4 CONNECT exchange, SOCKS5 method negotiation and
CONNECT, and the minimal HTTP/1.x request line and status line handling that
an HTTP CONNECT handshake needs.

All functions work on byte slices and never perform I/O. Decoders never
panic on short or malformed input; they report an invalid result instead.

Wire formats:

	SOCKS4 request   [4][cmd][port:2][ipv4:4][user id][0]
	SOCKS4 response  [0][result][ignored...]
	SOCKS5 methods   [5][n][method...]        -> [5][method]
	SOCKS5 request   [5][cmd][0][atyp][addr][port:2]
	SOCKS5 reply     [5][reply][0][atyp][addr][port:2]

Ports are big-endian. SOCKS5 domain names are length-prefixed ASCII.
*/
package codec

// Package ipv4 provides value types for IPv4 datagrams: addresses, the
// handful of header fields the router and interface layers need, and the
// header checksum. Wire (de)serialization is out of scope; Datagram
// carries parsed fields only.
package ipv4

import "fmt"

// Address is an IPv4 address in network byte order.
type Address [4]byte

// String renders addr in dotted-decimal notation.
func (addr Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", addr[0], addr[1], addr[2], addr[3])
}

// Protocol is the IPv4 header's protocol field.
type Protocol uint8

const (
	ProtocolTCP Protocol = 6
	ProtocolUDP Protocol = 17
)

// Datagram is a parsed IPv4 packet: the header fields the router and
// interface layers act on, plus a payload.
type Datagram struct {
	TTL         uint8
	Protocol    Protocol
	Source      Address
	Destination Address
	// HeaderChecksum is the header checksum as last computed by
	// [Datagram.RecomputeChecksum]; it is not kept automatically in sync
	// with the other fields.
	HeaderChecksum uint16
	Payload        []byte
}

// RecomputeChecksum recalculates and stores the IPv4 header checksum
// using the standard ones'-complement algorithm over the datagram's
// header fields (with the checksum field itself taken as zero), and
// returns the new value. Must be called after any header field changes,
// such as the TTL decrement a router performs on forward.
func (d *Datagram) RecomputeChecksum() uint16 {
	var sum uint32
	// Version/IHL (0x45, no options) + ToS (0).
	sum += 0x4500
	// Total length: header (20) + payload.
	sum += uint32(20 + len(d.Payload))
	// Identification, flags, fragment offset are not modeled; treated as 0.
	sum += uint32(d.TTL) << 8
	sum += uint32(d.Protocol)
	sum += uint32(d.Source[0])<<8 | uint32(d.Source[1])
	sum += uint32(d.Source[2])<<8 | uint32(d.Source[3])
	sum += uint32(d.Destination[0])<<8 | uint32(d.Destination[1])
	sum += uint32(d.Destination[2])<<8 | uint32(d.Destination[3])
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	d.HeaderChecksum = ^uint16(sum)
	return d.HeaderChecksum
}

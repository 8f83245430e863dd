// Package arp implements the Address Resolution Protocol: request/reply
// messages and a TTL-based cache mapping protocol addresses to hardware
// addresses.
package arp

import "github.com/soypat/minnet/ethernet"

// Operation is the opcode of an ARP [Message], either request or reply.
type Operation uint8

const (
	OpRequest Operation = 1
	OpReply   Operation = 2
)

// String returns "request", "reply", or "unknown" for any other op.
func (op Operation) String() string {
	switch op {
	case OpRequest:
		return "request"
	case OpReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Message is a parsed ARP packet for hardware type Ethernet and protocol
// type IPv4, the only combination this stack needs.
type Message struct {
	Operation   Operation
	SenderHW    ethernet.Address
	SenderProto [4]byte
	TargetHW    ethernet.Address
	TargetProto [4]byte
}

// NewRequest builds a request for targetProto, sent by an interface
// identified by senderHW/senderProto. TargetHW is left zeroed, as is
// conventional for ARP requests.
func NewRequest(senderHW ethernet.Address, senderProto [4]byte, targetProto [4]byte) Message {
	return Message{
		Operation:   OpRequest,
		SenderHW:    senderHW,
		SenderProto: senderProto,
		TargetProto: targetProto,
	}
}

// Reply builds the reply to msg, as sent by the owner of ourHW/ourProto.
func Reply(msg Message, ourHW ethernet.Address, ourProto [4]byte) Message {
	return Message{
		Operation:   OpReply,
		SenderHW:    ourHW,
		SenderProto: ourProto,
		TargetHW:    msg.SenderHW,
		TargetProto: msg.SenderProto,
	}
}

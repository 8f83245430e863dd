// Package tcp implements the sender and receiver halves of the
// reliability/flow-control logic that sits between a [bytestream.ByteStream]
// and the IP layer: segmentation, SYN/FIN placement, retransmission with
// exponential backoff, zero-window probing, and cumulative-ACK processing.
package tcp

import "github.com/soypat/minnet/wrap32"

// MaxPayloadSize is the largest payload, in bytes, a single
// [SenderMessage] may carry.
const MaxPayloadSize = 1000

// SenderMessage is a TCP segment as produced by [Sender]: a sequence
// number, optional SYN/FIN control flags, and a payload.
type SenderMessage struct {
	Seqno   wrap32.Wrap32
	SYN     bool
	Payload []byte
	FIN     bool
}

// SequenceLength returns the number of sequence numbers this message
// occupies: one for SYN, one per payload byte, one for FIN.
func (m SenderMessage) SequenceLength() uint64 {
	n := uint64(len(m.Payload))
	if m.SYN {
		n++
	}
	if m.FIN {
		n++
	}
	return n
}

// ReceiverMessage is the acknowledgment sent back by [Receiver]: a
// cumulative ack number (absent until a SYN has been seen) and the
// receiver's advertised window size.
type ReceiverMessage struct {
	Ackno      wrap32.Wrap32
	HasAckno   bool
	WindowSize uint16
}

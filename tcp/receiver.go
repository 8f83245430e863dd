package tcp

import (
	"log/slog"

	"github.com/rs/xid"
	"github.com/soypat/minnet/bytestream"
	"github.com/soypat/minnet/internal"
	"github.com/soypat/minnet/reassembler"
	"github.com/soypat/minnet/wrap32"
)

// Receiver consumes incoming [SenderMessage]s from a peer, feeds their
// payload through a [reassembler.Reassembler] into an inbound byte stream,
// and reports back the cumulative ack number and receive window.
type Receiver struct {
	id         xid.ID
	zeroPoint  wrap32.Wrap32
	haveZero   bool
	checkpoint uint64
	log        *slog.Logger
	metrics    *Metrics
}

// ReceiverConfig configures a [Receiver].
type ReceiverConfig struct {
	Log     *slog.Logger
	Metrics *Metrics
}

// NewReceiver returns a ready-to-use Receiver with no ISN established yet.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	return &Receiver{id: xid.New(), log: cfg.Log, metrics: cfg.Metrics}
}

// ID returns the identifier assigned to this receiver at construction,
// useful for correlating log lines and metrics across many connections.
func (r *Receiver) ID() xid.ID { return r.id }

// Receive processes an incoming segment, establishing the zero point from
// the first SYN seen, and inserts its payload into reasm at the
// appropriate absolute stream index. Segments arriving before any SYN is
// seen are dropped.
func (r *Receiver) Receive(msg SenderMessage, reasm *reassembler.Reassembler, inbound bytestream.Writer) {
	if msg.SYN && !r.haveZero {
		r.zeroPoint = msg.Seqno
		r.haveZero = true
		internal.LogAttrs(r.log, slog.LevelDebug, "tcp.Receiver:syn", slog.String("id", r.id.String()))
	}
	if !r.haveZero {
		internal.LogAttrs(r.log, internal.LevelTrace, "tcp.Receiver:drop-no-syn", slog.String("id", r.id.String()))
		return
	}
	checkpoint := r.checkpoint
	abs := msg.Seqno.Unwrap(r.zeroPoint, checkpoint)
	if !msg.SYN {
		abs-- // Stream indices skip the SYN: a non-SYN segment's first payload byte is one before its absolute seqno.
	}
	reasm.Insert(abs, msg.Payload, msg.FIN, inbound)
	r.checkpoint = inbound.BytesPushed()
	if r.metrics != nil {
		r.metrics.observeReceive(msg)
	}
}

// Send computes the [ReceiverMessage] to report back to the peer: the
// current receive window, and the cumulative ack number once a SYN has
// been observed.
func (r *Receiver) Send(inbound bytestream.Writer) ReceiverMessage {
	const maxWindow = 1<<16 - 1
	window := inbound.AvailableCapacity()
	if window > maxWindow {
		window = maxWindow
	}
	msg := ReceiverMessage{WindowSize: uint16(window)}
	if r.haveZero {
		ackOffset := uint64(1) + inbound.BytesPushed()
		if inbound.Closed() {
			ackOffset++
		}
		msg.Ackno = wrap32.Wrap(ackOffset, r.zeroPoint)
		msg.HasAckno = true
	}
	return msg
}

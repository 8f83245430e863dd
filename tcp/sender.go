package tcp

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"

	"github.com/rs/xid"
	"github.com/soypat/minnet/bytestream"
	"github.com/soypat/minnet/internal"
	"github.com/soypat/minnet/wrap32"
)

// pendingSegment is one entry of the sender's outstanding queue: a
// transmitted-or-pending [SenderMessage] together with the absolute
// sequence number of its first octet/flag, used to test whether it falls
// within an acknowledged range without re-unwrapping its Wrap32 seqno.
type pendingSegment struct {
	abs  uint64
	msg  SenderMessage
	sent bool
}

// Sender produces [SenderMessage]s from an outbound [bytestream.Reader],
// tracking unacknowledged data, the peer's advertised window, and a single
// retransmission timer shared by all outstanding segments.
type Sender struct {
	id  xid.ID
	isn wrap32.Wrap32

	initialRTOMillis uint64
	rtoMillis        uint64
	timerRunning     bool
	timerRemaining   uint64
	retransmitDue    bool

	nextSeqno uint64 // Absolute index of the next octet/flag to transmit.
	ackSeqno  uint64 // Highest cumulative ACK received, in absolute space.

	windowSize      uint64 // Peer's last-advertised window, verbatim (may be 0).
	windowRemaining uint64 // Budget left for new data under that window; floored to 1 while probing.
	peerWindowZero  bool

	outstanding []*pendingSegment

	synSent bool
	finSent bool

	consecutiveRetransmissions uint64

	log     *slog.Logger
	metrics *Metrics
}

// SenderConfig configures a [Sender].
type SenderConfig struct {
	// InitialRTOMillis is the retransmission timeout used at startup and
	// restored after every valid ACK.
	InitialRTOMillis uint64
	// FixedISN pins the initial sequence number; if nil a random one is
	// generated.
	FixedISN *wrap32.Wrap32
	Log      *slog.Logger
	Metrics  *Metrics
}

// NewSender constructs a Sender with the given initial RTO and ISN.
func NewSender(cfg SenderConfig) *Sender {
	isn := cfg.FixedISN
	if isn == nil {
		var b [4]byte
		_, _ = rand.Read(b[:])
		w := wrap32.New(binary.BigEndian.Uint32(b[:]))
		isn = &w
	}
	return &Sender{
		id:               xid.New(),
		isn:              *isn,
		initialRTOMillis: cfg.InitialRTOMillis,
		rtoMillis:        cfg.InitialRTOMillis,
		windowRemaining:  1, // Room enough to send the initial SYN before any ACK/window arrives.
		log:              cfg.Log,
		metrics:          cfg.Metrics,
	}
}

// ID returns the identifier assigned to this sender at construction.
func (s *Sender) ID() xid.ID { return s.id }

// SequenceNumbersInFlight returns next_seqno - ack_seqno: how many
// sequence numbers have been sent but not yet cumulatively acknowledged.
func (s *Sender) SequenceNumbersInFlight() uint64 { return s.nextSeqno - s.ackSeqno }

// ConsecutiveRetransmissions returns the number of back-to-back
// retransmissions since the last valid ACK.
func (s *Sender) ConsecutiveRetransmissions() uint64 { return s.consecutiveRetransmissions }

// RTOMillis returns the current retransmission timeout.
func (s *Sender) RTOMillis() uint64 { return s.rtoMillis }

// WindowSize returns the peer's last-advertised window, verbatim.
func (s *Sender) WindowSize() uint64 { return s.windowSize }

// IsFINSent reports whether a FIN has already been placed on a segment.
func (s *Sender) IsFINSent() bool { return s.finSent }

// Push reads from outbound and builds as many segments as the current
// window allows, appending each to the outstanding queue and starting the
// retransmission timer on first transmission.
func (s *Sender) Push(outbound bytestream.Reader) {
	if s.peerWindowZero && s.windowRemaining == 0 && s.SequenceNumbersInFlight() == 0 {
		s.windowRemaining = 1 // Zero-window probe: one in-flight octet at a time, never more.
	}
	for s.windowRemaining > 0 && !s.finSent {
		msg := SenderMessage{Seqno: wrap32.Wrap(s.nextSeqno, s.isn)}
		if s.nextSeqno == 0 {
			msg.SYN = true
			s.windowRemaining--
		}
		n := min(outbound.BytesBuffered(), int(min64(s.windowRemaining, MaxPayloadSize)))
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, outbound.Peek()[:n])
			outbound.Pop(n)
			msg.Payload = payload
			s.windowRemaining -= uint64(n)
		}
		if outbound.IsFinished() && s.windowRemaining > 0 {
			msg.FIN = true
		}
		seqLen := msg.SequenceLength()
		if seqLen == 0 {
			break
		}
		if msg.SYN {
			s.synSent = true
		}
		if msg.FIN {
			s.finSent = true
			s.windowRemaining--
		}
		abs := s.nextSeqno
		s.nextSeqno += seqLen
		s.outstanding = append(s.outstanding, &pendingSegment{abs: abs, msg: msg})
		if !s.timerRunning {
			s.timerRunning = true
			s.timerRemaining = s.rtoMillis
		}
		internal.LogAttrs(s.log, internal.LevelTrace, "tcp.Sender:push",
			slog.String("id", s.id.String()), slog.Uint64("abs", abs), slog.Uint64("seqlen", seqLen))
	}
	if s.metrics != nil {
		s.metrics.observeOutstanding(s.SequenceNumbersInFlight())
	}
}

// SendEmptyMessage returns a zero-length segment carrying the current
// seqno, for the caller to use to carry an ACK without consuming
// sequence space. It is not placed on the outstanding queue.
func (s *Sender) SendEmptyMessage() SenderMessage {
	return SenderMessage{Seqno: wrap32.Wrap(s.nextSeqno, s.isn)}
}

// MaybeSend returns the next not-yet-transmitted outstanding segment, or
// the oldest outstanding segment if the retransmission timer fired since
// the last call. Exactly one segment is returned per firing.
func (s *Sender) MaybeSend() (SenderMessage, bool) {
	for _, seg := range s.outstanding {
		if !seg.sent {
			seg.sent = true
			if s.metrics != nil {
				s.metrics.observeSend(seg.msg)
			}
			return seg.msg, true
		}
	}
	if s.retransmitDue {
		s.retransmitDue = false
		if len(s.outstanding) == 0 {
			return SenderMessage{}, false
		}
		if s.metrics != nil {
			s.metrics.observeSend(s.outstanding[0].msg)
		}
		return s.outstanding[0].msg, true
	}
	return SenderMessage{}, false
}

// Receive processes a [ReceiverMessage] from the peer: a valid cumulative
// ACK advances ack_seqno, drops fully-acked segments from the outstanding
// queue, and resets the RTO and retransmission counter; the advertised
// window is always adopted, independent of ACK validity.
func (s *Sender) Receive(msg ReceiverMessage) {
	if msg.HasAckno {
		ack := msg.Ackno.Unwrap(s.isn, s.ackSeqno)
		if ack > s.ackSeqno && ack <= s.nextSeqno {
			s.ackSeqno = ack
			i := 0
			for i < len(s.outstanding) && s.outstanding[i].abs+s.outstanding[i].msg.SequenceLength() <= s.ackSeqno {
				i++
			}
			s.outstanding = s.outstanding[i:]
			s.rtoMillis = s.initialRTOMillis
			s.consecutiveRetransmissions = 0
			if len(s.outstanding) > 0 {
				s.timerRunning = true
				s.timerRemaining = s.rtoMillis
			} else {
				s.timerRunning = false
			}
			if s.metrics != nil {
				s.metrics.observeRTO(s.rtoMillis)
			}
		}
	}
	inFlight := s.SequenceNumbersInFlight()
	s.windowSize = uint64(msg.WindowSize)
	if s.windowSize < inFlight {
		s.windowRemaining = 0
	} else {
		s.windowRemaining = s.windowSize - inFlight
	}
	s.peerWindowZero = msg.WindowSize == 0
}

// Tick advances time by ms milliseconds. If the retransmission timer
// fires and there is outstanding data, the oldest outstanding segment is
// scheduled for retransmission via the next [Sender.MaybeSend] call; the
// RTO is doubled and the retransmission counter incremented unless the
// peer's real (non-probed) window was zero.
func (s *Sender) Tick(ms uint64) {
	if !s.timerRunning {
		return
	}
	if s.timerRemaining > ms {
		s.timerRemaining -= ms
		return
	}
	if len(s.outstanding) == 0 {
		s.timerRunning = false
		return
	}
	s.retransmitDue = true
	if !s.peerWindowZero {
		s.consecutiveRetransmissions++
		s.rtoMillis *= 2
		if s.metrics != nil {
			s.metrics.observeRetransmission()
		}
	}
	s.timerRunning = true
	s.timerRemaining = s.rtoMillis
	if s.metrics != nil {
		s.metrics.observeRTO(s.rtoMillis)
	}
}

func min64(a uint64, b int) uint64 {
	if b < 0 {
		return a
	}
	if a < uint64(b) {
		return a
	}
	return uint64(b)
}

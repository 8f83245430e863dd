package tcp

import (
	"testing"

	"github.com/soypat/minnet/bytestream"
	"github.com/soypat/minnet/wrap32"
)

func TestSenderSYNRetransmission(t *testing.T) {
	zero := wrap32.New(0)
	s := NewSender(SenderConfig{InitialRTOMillis: 1000, FixedISN: &zero})
	outbound := bytestream.New(64)

	s.Push(outbound)
	msg, ok := s.MaybeSend()
	if !ok {
		t.Fatal("want a segment from MaybeSend")
	}
	if !msg.SYN || msg.FIN || len(msg.Payload) != 0 || msg.Seqno.Raw() != 0 {
		t.Fatalf("want {seqno=0, SYN, payload=\"\", FIN=false}, got %+v", msg)
	}

	s.Tick(999)
	if _, ok := s.MaybeSend(); ok {
		t.Fatal("must not retransmit before the RTO elapses")
	}

	s.Tick(1)
	retx, ok := s.MaybeSend()
	if !ok {
		t.Fatal("want a retransmission once the RTO elapses")
	}
	if retx.Seqno.Raw() != 0 || !retx.SYN {
		t.Fatalf("retransmission must repeat the same segment, got %+v", retx)
	}
	if s.ConsecutiveRetransmissions() != 1 {
		t.Fatalf("want consecutive_retransmissions=1, got %d", s.ConsecutiveRetransmissions())
	}
	if s.RTOMillis() != 2000 {
		t.Fatalf("want next RTO=2000, got %d", s.RTOMillis())
	}
}

func TestSenderValidAckClearsOutstanding(t *testing.T) {
	zero := wrap32.New(0)
	s := NewSender(SenderConfig{InitialRTOMillis: 1000, FixedISN: &zero})
	outbound := bytestream.New(64)
	outbound.Push([]byte("hello"))
	outbound.Close()

	s.Receive(ReceiverMessage{HasAckno: false, WindowSize: 64})
	s.Push(outbound)
	if _, ok := s.MaybeSend(); !ok {
		t.Fatal("want SYN+payload+FIN segment")
	}

	s.Receive(ReceiverMessage{Ackno: wrap32.New(7), HasAckno: true, WindowSize: 64})
	if s.SequenceNumbersInFlight() != 0 {
		t.Fatalf("want 0 in flight after full ACK, got %d", s.SequenceNumbersInFlight())
	}
	if s.ConsecutiveRetransmissions() != 0 {
		t.Fatalf("want consecutive_retransmissions reset to 0, got %d", s.ConsecutiveRetransmissions())
	}
}

func TestSenderZeroWindowDoesNotDoubleRTO(t *testing.T) {
	zero := wrap32.New(0)
	s := NewSender(SenderConfig{InitialRTOMillis: 1000, FixedISN: &zero})
	outbound := bytestream.New(64)

	s.Push(outbound)
	s.MaybeSend()
	s.Receive(ReceiverMessage{WindowSize: 0}) // Peer's real window is zero.

	s.Tick(1000)
	if _, ok := s.MaybeSend(); !ok {
		t.Fatal("probing segment should still be retransmitted")
	}
	if s.RTOMillis() != 1000 {
		t.Fatalf("RTO must not double while the peer's real window is zero, got %d", s.RTOMillis())
	}
	if s.ConsecutiveRetransmissions() != 0 {
		t.Fatalf("consecutive_retransmissions must not increment during zero-window probing, got %d", s.ConsecutiveRetransmissions())
	}
}

func TestSenderZeroWindowSingleProbe(t *testing.T) {
	zero := wrap32.New(0)
	s := NewSender(SenderConfig{InitialRTOMillis: 1000, FixedISN: &zero})
	outbound := bytestream.New(64)
	outbound.Push([]byte("data"))

	s.Push(outbound)
	s.MaybeSend() // SYN.
	s.Receive(ReceiverMessage{Ackno: wrap32.New(1), HasAckno: true, WindowSize: 0})

	s.Push(outbound)
	msg, ok := s.MaybeSend()
	if !ok || len(msg.Payload) != 1 {
		t.Fatalf("want a one-byte probe, got %+v ok=%v", msg, ok)
	}
	s.Push(outbound)
	if _, ok := s.MaybeSend(); ok {
		t.Fatal("only one probe octet may be in flight while the window is zero")
	}
	// Acking the probe with the window still closed permits the next probe.
	s.Receive(ReceiverMessage{Ackno: wrap32.New(2), HasAckno: true, WindowSize: 0})
	s.Push(outbound)
	if msg, ok := s.MaybeSend(); !ok || len(msg.Payload) != 1 {
		t.Fatalf("want the next probe once the previous is acked, got %+v ok=%v", msg, ok)
	}
}

func TestSenderSegmentsLargePayloadUnderMaxSize(t *testing.T) {
	zero := wrap32.New(0)
	s := NewSender(SenderConfig{InitialRTOMillis: 1000, FixedISN: &zero})
	s.Receive(ReceiverMessage{WindowSize: 65535})
	outbound := bytestream.New(4096)
	outbound.Push(make([]byte, 2500))
	outbound.Close()

	s.Push(outbound)
	var total int
	var sawFIN bool
	for {
		msg, ok := s.MaybeSend()
		if !ok {
			break
		}
		total += len(msg.Payload)
		if len(msg.Payload) > MaxPayloadSize {
			t.Fatalf("segment payload %d exceeds MaxPayloadSize", len(msg.Payload))
		}
		if msg.FIN {
			sawFIN = true
		}
	}
	if total != 2500 {
		t.Fatalf("want all 2500 bytes segmented, got %d", total)
	}
	if !sawFIN {
		t.Fatal("want a FIN once the outbound stream finishes")
	}
}

package netiface

import (
	"testing"

	"github.com/soypat/minnet/arp"
	"github.com/soypat/minnet/ethernet"
	"github.com/soypat/minnet/ipv4"
)

func TestSendDatagramResolvesViaARP(t *testing.T) {
	a := New(Config{
		EthernetAddr: ethernet.Address{0x02, 0, 0, 0, 0, 1},
		IPv4Addr:     ipv4.Address{10, 0, 0, 1},
	})
	nextHop := ipv4.Address{10, 0, 0, 2}
	dgram := ipv4.Datagram{TTL: 64, Destination: ipv4.Address{10, 0, 0, 9}}

	a.SendDatagram(dgram, nextHop)

	f, ok := a.MaybeSend()
	if !ok {
		t.Fatal("want an ARP request frame")
	}
	if f.EtherType != ethernet.TypeARP || f.ARP == nil || f.ARP.Operation != arp.OpRequest {
		t.Fatalf("want an ARP request, got %+v", f)
	}
	if !f.Destination.IsBroadcast() {
		t.Fatalf("ARP request must be broadcast, got dst=%v", f.Destination)
	}
	if _, ok := a.MaybeSend(); ok {
		t.Fatal("want no further queued frames before the reply arrives")
	}

	peerMAC := ethernet.Address{0x02, 0, 0, 0, 0, 2}
	reply := arp.Message{
		Operation:   arp.OpReply,
		SenderHW:    peerMAC,
		SenderProto: [4]byte(nextHop),
		TargetHW:    a.EthernetAddr(),
		TargetProto: [4]byte(a.IPv4Addr()),
	}
	_, gotDatagram := a.RecvFrame(Frame{Destination: a.EthernetAddr(), EtherType: ethernet.TypeARP, ARP: &reply})
	if gotDatagram {
		t.Fatal("an ARP frame must never be reported as a datagram")
	}

	f2, ok := a.MaybeSend()
	if !ok {
		t.Fatal("want the deferred IPv4 frame to flush after the ARP reply")
	}
	if f2.EtherType != ethernet.TypeIPv4 || f2.Datagram == nil || f2.Destination != peerMAC {
		t.Fatalf("want IPv4 frame to learned MAC, got %+v", f2)
	}
	if _, ok := a.MaybeSend(); ok {
		t.Fatal("the deferred datagram must be emitted exactly once")
	}

	// A second send to the same next-hop within 30s must not re-ARP.
	a.SendDatagram(dgram, nextHop)
	f3, ok := a.MaybeSend()
	if !ok || f3.EtherType != ethernet.TypeIPv4 {
		t.Fatalf("want a direct IPv4 frame on cache hit, got %+v ok=%v", f3, ok)
	}
	if _, ok := a.MaybeSend(); ok {
		t.Fatal("no further ARP traffic expected once the mapping is cached")
	}
}

func TestSendDatagramThrottlesRepeatARP(t *testing.T) {
	a := New(Config{
		EthernetAddr: ethernet.Address{0x02, 0, 0, 0, 0, 1},
		IPv4Addr:     ipv4.Address{10, 0, 0, 1},
	})
	nextHop := ipv4.Address{10, 0, 0, 2}
	dgram := ipv4.Datagram{TTL: 64}

	a.SendDatagram(dgram, nextHop)
	a.MaybeSend() // drain the first ARP request.
	a.SendDatagram(dgram, nextHop)
	if _, ok := a.MaybeSend(); ok {
		t.Fatal("a second request for the same target within 5s must be throttled")
	}
}

func TestRecvFrameDropsUnaddressedFrames(t *testing.T) {
	a := New(Config{
		EthernetAddr: ethernet.Address{0x02, 0, 0, 0, 0, 1},
		IPv4Addr:     ipv4.Address{10, 0, 0, 1},
	})
	other := ethernet.Address{0x02, 0, 0, 0, 0, 9}
	dgram := ipv4.Datagram{TTL: 32}
	_, ok := a.RecvFrame(Frame{Destination: other, EtherType: ethernet.TypeIPv4, Datagram: &dgram})
	if ok {
		t.Fatal("a frame addressed to another host must be dropped")
	}
}

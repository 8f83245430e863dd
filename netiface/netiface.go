// Package netiface implements a single network interface: IPv4-over-Ethernet
// framing backed by ARP resolution and an address cache. Frames are
// exchanged as structured values, not serialized bytes — wire encoding is
// an external, out-of-scope concern.
package netiface

import (
	"log/slog"

	"github.com/rs/xid"
	"github.com/soypat/minnet/arp"
	"github.com/soypat/minnet/ethernet"
	"github.com/soypat/minnet/internal"
	"github.com/soypat/minnet/ipv4"
)

// Frame is an Ethernet-layer unit exchanged with an [Interface]: an IPv4
// datagram or ARP message, tagged by EtherType. Exactly one of ARP and
// Datagram is set, matching EtherType.
type Frame struct {
	Destination ethernet.Address
	Source      ethernet.Address
	EtherType   ethernet.Type
	ARP         *arp.Message
	Datagram    *ipv4.Datagram
}

// Config configures an [Interface].
type Config struct {
	EthernetAddr ethernet.Address
	IPv4Addr     ipv4.Address
	Log          *slog.Logger
	Metrics      *Metrics
}

// Interface resolves next-hop IPv4 addresses to Ethernet addresses via
// ARP, queuing frames for transmission and parking datagrams whose
// next-hop is not yet resolved.
type Interface struct {
	id      xid.ID
	ethAddr ethernet.Address
	ipAddr  ipv4.Address
	cache   *arp.Cache

	outbound []Frame
	deferred map[[4]byte][]ipv4.Datagram

	log     *slog.Logger
	metrics *Metrics
}

// New returns a ready-to-use Interface with an empty ARP cache.
func New(cfg Config) *Interface {
	var cacheMetrics *arp.CacheMetrics
	if cfg.Metrics != nil {
		cacheMetrics = cfg.Metrics.cache
	}
	iface := &Interface{
		id:       xid.New(),
		ethAddr:  cfg.EthernetAddr,
		ipAddr:   cfg.IPv4Addr,
		cache:    arp.NewCache(cfg.Log, cacheMetrics),
		deferred: make(map[[4]byte][]ipv4.Datagram),
		log:      cfg.Log,
		metrics:  cfg.Metrics,
	}
	internal.LogAttrs(iface.log, slog.LevelInfo, "netiface.Interface:up",
		slog.String("id", iface.id.String()),
		slog.String("eth", iface.ethAddr.String()),
		slog.String("ip", iface.ipAddr.String()))
	return iface
}

// ID returns the identifier assigned to this interface at construction.
func (iface *Interface) ID() xid.ID { return iface.id }

// EthernetAddr returns the interface's local hardware address.
func (iface *Interface) EthernetAddr() ethernet.Address { return iface.ethAddr }

// IPv4Addr returns the interface's local protocol address.
func (iface *Interface) IPv4Addr() ipv4.Address { return iface.ipAddr }

func (iface *Interface) enqueue(f Frame) {
	iface.outbound = append(iface.outbound, f)
	if iface.metrics != nil {
		iface.metrics.observeQueued()
	}
}

// SendDatagram queues dgram for next_hop. If next_hop's hardware address
// is cached, an IPv4 frame is enqueued immediately; otherwise the
// datagram is parked in the deferred list and an ARP request is sent,
// subject to the per-target throttle.
func (iface *Interface) SendDatagram(dgram ipv4.Datagram, nextHop ipv4.Address) {
	key := [4]byte(nextHop)
	if mac, ok := iface.cache.Lookup(key); ok {
		d := dgram
		iface.enqueue(Frame{Destination: mac, Source: iface.ethAddr, EtherType: ethernet.TypeIPv4, Datagram: &d})
		return
	}
	iface.deferred[key] = append(iface.deferred[key], dgram)
	if iface.cache.ShouldThrottle(key) {
		internal.LogAttrs(iface.log, internal.LevelTrace, "netiface.Interface:throttled", internal.SlogAddr4("target", &key))
		if iface.metrics != nil {
			iface.metrics.observeThrottled()
		}
		return
	}
	iface.cache.MarkRequested(key)
	req := arp.NewRequest(iface.ethAddr, [4]byte(iface.ipAddr), key)
	iface.enqueue(Frame{Destination: ethernet.BroadcastAddr(), Source: iface.ethAddr, EtherType: ethernet.TypeARP, ARP: &req})
}

// RecvFrame processes an inbound frame, returning the IPv4 datagram it
// carries, if any. ARP traffic is handled internally: sender mappings are
// learned into the cache regardless of opcode, matching requests to our
// address get a reply queued, and learning a next-hop flushes any
// datagrams that were waiting on it.
func (iface *Interface) RecvFrame(f Frame) (ipv4.Datagram, bool) {
	if f.Destination != iface.ethAddr && !f.Destination.IsBroadcast() {
		return ipv4.Datagram{}, false
	}
	switch f.EtherType {
	case ethernet.TypeIPv4:
		if f.Datagram == nil {
			return ipv4.Datagram{}, false
		}
		return *f.Datagram, true
	case ethernet.TypeARP:
		if f.ARP == nil {
			return ipv4.Datagram{}, false
		}
		iface.handleARP(*f.ARP)
	}
	return ipv4.Datagram{}, false
}

func (iface *Interface) handleARP(msg arp.Message) {
	iface.cache.Learn(msg.SenderProto, msg.SenderHW)
	if msg.Operation == arp.OpRequest && msg.TargetProto == [4]byte(iface.ipAddr) {
		reply := arp.Reply(msg, iface.ethAddr, [4]byte(iface.ipAddr))
		iface.enqueue(Frame{Destination: msg.SenderHW, Source: iface.ethAddr, EtherType: ethernet.TypeARP, ARP: &reply})
	}
	iface.flushDeferred(msg.SenderProto)
}

func (iface *Interface) flushDeferred(learned [4]byte) {
	pending, ok := iface.deferred[learned]
	if !ok {
		return
	}
	delete(iface.deferred, learned)
	mac, ok := iface.cache.Lookup(learned)
	if !ok {
		return
	}
	for i := range pending {
		d := pending[i]
		iface.enqueue(Frame{Destination: mac, Source: iface.ethAddr, EtherType: ethernet.TypeIPv4, Datagram: &d})
	}
}

// Tick advances time by ms, expiring ARP cache entries and request
// throttles.
func (iface *Interface) Tick(ms uint64) { iface.cache.Tick(ms) }

// MaybeSend pops and returns the head of the outbound frame queue. ARP
// requests, ARP replies, and IPv4 frames share a single FIFO.
func (iface *Interface) MaybeSend() (Frame, bool) {
	if len(iface.outbound) == 0 {
		return Frame{}, false
	}
	f := iface.outbound[0]
	iface.outbound = iface.outbound[1:]
	return f, true
}

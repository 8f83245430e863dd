// Package router implements longest-prefix-match IPv4 forwarding across a
// set of [netiface.Interface]s.
package router

import (
	"log/slog"

	"github.com/soypat/minnet/internal"
	"github.com/soypat/minnet/ipv4"
	"github.com/soypat/minnet/netiface"
)

// Route is a forwarding table entry: datagrams whose destination matches
// the top PrefixLen bits of Prefix are sent out IfaceIdx, to NextHop if
// set or to the datagram's own destination otherwise (a directly
// connected network). Routes are plain value records; lookup and
// forwarding are performed entirely by [Router], which owns the
// interfaces.
type Route struct {
	Prefix     ipv4.Address
	PrefixLen  uint8
	NextHop    ipv4.Address
	HasNextHop bool
	IfaceIdx   int
}

func matches(r Route, dst ipv4.Address) bool {
	if r.PrefixLen == 0 {
		return true
	}
	n := r.PrefixLen
	for i := 0; i < 4 && n > 0; i++ {
		bits := n
		if bits > 8 {
			bits = 8
		}
		mask := byte(0xff) << (8 - bits)
		if r.Prefix[i]&mask != dst[i]&mask {
			return false
		}
		n -= bits
	}
	return true
}

// Router forwards IPv4 datagrams between a fixed set of interfaces
// according to a longest-prefix-match routing table.
type Router struct {
	interfaces []*netiface.Interface
	routes     []Route
	log        *slog.Logger
	metrics    *Metrics
}

// New returns a Router forwarding across the given interfaces, indexed in
// the order supplied (matching the IfaceIdx used by [Route]).
func New(interfaces []*netiface.Interface, log *slog.Logger, metrics *Metrics) *Router {
	return &Router{interfaces: interfaces, log: log, metrics: metrics}
}

// AddRoute appends r to the table, keeping routes sorted by descending
// PrefixLen; routes with equal PrefixLen keep their relative insertion
// order.
func (rt *Router) AddRoute(r Route) {
	nextHop := "(direct)"
	if r.HasNextHop {
		nextHop = r.NextHop.String()
	}
	internal.LogAttrs(rt.log, slog.LevelInfo, "router.Router:add-route",
		slog.String("prefix", r.Prefix.String()),
		slog.Int("prefix_len", int(r.PrefixLen)),
		slog.String("next_hop", nextHop),
		slog.Int("iface", r.IfaceIdx))
	i := 0
	for i < len(rt.routes) && rt.routes[i].PrefixLen >= r.PrefixLen {
		i++
	}
	rt.routes = append(rt.routes, Route{})
	copy(rt.routes[i+1:], rt.routes[i:])
	rt.routes[i] = r
}

// Route forwards every datagram a caller has drained from its interfaces
// (via repeated [netiface.Interface.RecvFrame]), one slice per interface
// in the same order as New's interfaces argument: TTL<=1 datagrams are
// dropped, otherwise TTL is decremented, the header checksum recomputed,
// and the datagram handed to the outbound interface's SendDatagram.
// Datagrams matching no route are dropped silently.
func (rt *Router) Route(inbound [][]ipv4.Datagram) {
	for _, dgrams := range inbound {
		for _, dgram := range dgrams {
			rt.forward(dgram)
		}
	}
}

func (rt *Router) forward(dgram ipv4.Datagram) {
	route, ok := rt.lookup(dgram.Destination)
	if !ok {
		internal.LogAttrs(rt.log, internal.LevelTrace, "router.Router:no-route")
		if rt.metrics != nil {
			rt.metrics.observeDropped("no_route")
		}
		return
	}
	if dgram.TTL <= 1 {
		if rt.metrics != nil {
			rt.metrics.observeDropped("ttl_expired")
		}
		return
	}
	dgram.TTL--
	dgram.RecomputeChecksum()
	nextHop := dgram.Destination
	if route.HasNextHop {
		nextHop = route.NextHop
	}
	rt.interfaces[route.IfaceIdx].SendDatagram(dgram, nextHop)
	if rt.metrics != nil {
		rt.metrics.observeForwarded()
	}
}

func (rt *Router) lookup(dst ipv4.Address) (Route, bool) {
	for _, r := range rt.routes {
		if matches(r, dst) {
			return r, true
		}
	}
	return Route{}, false
}

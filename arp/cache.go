package arp

import (
	"log/slog"

	"github.com/soypat/minnet/ethernet"
	"github.com/soypat/minnet/internal"
)

// EntryTTLMillis is how long a learned protocol-to-hardware mapping is kept
// before it must be re-resolved.
const EntryTTLMillis = 30_000

// RequestThrottleMillis is the minimum interval between two ARP requests
// for the same target address.
const RequestThrottleMillis = 5_000

type cacheEntry struct {
	hw  ethernet.Address
	ttl uint64
}

// Cache maps IPv4 addresses to hardware addresses, learned from observed
// ARP traffic and expired on a TTL. It also throttles outgoing requests so
// a target is not re-queried more often than [RequestThrottleMillis].
type Cache struct {
	entries map[[4]byte]cacheEntry
	pending map[[4]byte]uint64
	log     *slog.Logger
	metrics *CacheMetrics
}

// NewCache returns an empty Cache.
func NewCache(log *slog.Logger, metrics *CacheMetrics) *Cache {
	return &Cache{
		entries: make(map[[4]byte]cacheEntry),
		pending: make(map[[4]byte]uint64),
		log:     log,
		metrics: metrics,
	}
}

// Lookup returns the hardware address learned for proto, if any and not
// expired.
func (c *Cache) Lookup(proto [4]byte) (ethernet.Address, bool) {
	e, ok := c.entries[proto]
	if !ok {
		return ethernet.Address{}, false
	}
	return e.hw, true
}

// Learn records or refreshes the mapping proto -> hw with a fresh TTL.
// Per the interface's design, this is called for both ARP requests and
// replies: a request's sender fields are just as good a learning
// opportunity as a reply's.
func (c *Cache) Learn(proto [4]byte, hw ethernet.Address) {
	c.entries[proto] = cacheEntry{hw: hw, ttl: EntryTTLMillis}
	internal.LogAttrs(c.log, internal.LevelTrace, "arp.Cache:learn", internal.SlogAddr4("proto", &proto), internal.SlogAddr6("hw", (*[6]byte)(&hw)))
	if c.metrics != nil {
		c.metrics.observeSize(len(c.entries))
	}
}

// ShouldThrottle reports whether a new request for target should be
// suppressed because one was already sent within [RequestThrottleMillis].
func (c *Cache) ShouldThrottle(target [4]byte) bool {
	_, pending := c.pending[target]
	return pending
}

// MarkRequested records that a request for target was just sent, starting
// the throttle window.
func (c *Cache) MarkRequested(target [4]byte) {
	c.pending[target] = RequestThrottleMillis
	if c.metrics != nil {
		c.metrics.observeRequestSent()
	}
}

// Tick advances time by ms, expiring cache entries and clearing request
// throttles whose window has elapsed. Expired keys are collected in a
// first pass and deleted in a second, so the eviction never mutates a map
// while it is being ranged over.
func (c *Cache) Tick(ms uint64) {
	var expired [][4]byte
	for proto, e := range c.entries {
		if e.ttl <= ms {
			expired = append(expired, proto)
			continue
		}
		e.ttl -= ms
		c.entries[proto] = e
	}
	for _, proto := range expired {
		delete(c.entries, proto)
	}

	var cleared [][4]byte
	for target, remaining := range c.pending {
		if remaining <= ms {
			cleared = append(cleared, target)
			continue
		}
		c.pending[target] = remaining - ms
	}
	for _, target := range cleared {
		delete(c.pending, target)
	}
	if c.metrics != nil {
		c.metrics.observeSize(len(c.entries))
	}
}

// Size returns the number of live cache entries.
func (c *Cache) Size() int { return len(c.entries) }

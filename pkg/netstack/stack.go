// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package netstack implements the network stack of the device firmware: an
// Ethernet, ARP, IPv4, UDP and ICMP responder that runs a single polling
// loop over a hardware packet ring.
//
// The stack owns no goroutines. All methods except TriggerGARP must be called
// from the goroutine that runs the loop. Tables are sized at construction and
// never grow.
//
// Inbound frames are decoded with gopacket layers that are reused across
// frames. Outbound frames are assembled in place in the transmit buffer of
// the ring.
package netstack

import (
	"net"
	"net/netip"
	"sync/atomic"

	"github.com/gopacket/gopacket/layers"

	"github.com/sdrfw/fwnet/pkg/arpcache"
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/pkg/ring"
)

const (
	ethHdrLen   = 14
	ipv4HdrLen  = 20
	udpHdrLen   = 8
	icmpHdrLen  = 8
	arpIPv4Len  = 28
	macLen      = 6
	ipv4AddrLen = 4
)

// EthernetTypeRecovery is the ethertype of the IP recovery frame. Its
// payload is the ASCII code "addr" followed by the new IPv4 address.
const EthernetTypeRecovery layers.EthernetType = 0xbeee

var (
	// BroadcastMAC is the Ethernet broadcast address.
	BroadcastMAC = [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	limitedBroadcast = netip.AddrFrom4([4]byte{255, 255, 255, 255})
)

// Config configures a Stack.
type Config struct {
	// MAC is the hardware address of the device.
	MAC net.HardwareAddr
	// IP is the IPv4 address of the device.
	IP netip.Addr
	// Broadcast is the directed broadcast address of the local subnet. It is
	// optional.
	Broadcast netip.Addr
	// Profile describes the platform buffer layout. The zero value selects
	// ProfileHost.
	Profile Profile
	// BufSize is the size of the ring buffers. Zero means 2048.
	BufSize int
	// ARPCacheSize is the number of ARP cache entries. Zero selects
	// arpcache.DefaultSize.
	ARPCacheSize int
	// MaxListeners overrides the listener table size of the profile.
	MaxListeners int
	// Metrics is optional.
	Metrics *Metrics
	// Logger is optional. The root logger is used if nil.
	Logger log.Logger
}

// Stack is the device network stack.
type Stack struct {
	ring      ring.Ring
	profile   Profile
	mac       [6]byte
	ip        netip.Addr
	broadcast netip.Addr
	arp       *arpcache.Cache
	listeners []listenerEntry
	metrics   *Metrics
	logger    log.Logger

	// garp is set asynchronously to request a gratuitous ARP.
	garp atomic.Bool
	// exec carries functions to run on the polling goroutine.
	exec chan func()

	// Decoding state, reused for every inbound frame.
	eth      layers.Ethernet
	arpLayer layers.ARP
	ip4      layers.IPv4
	udp      layers.UDP
	icmp     layers.ICMPv4
	innerIP  layers.IPv4
	innerUDP layers.UDP

	// Header scratch space for outbound frames.
	ipHdr   [ipv4HdrLen]byte
	udpHdr  [udpHdrLen]byte
	icmpHdr [icmpHdrLen]byte
	parts   [][]byte
}

// New creates a stack on top of r and performs the boot time initialization:
// the local addresses are registered, and the ARP cache and the listener
// table are emptied.
func New(r ring.Ring, cfg Config) (*Stack, error) {
	if r == nil {
		return nil, serrors.New("ring must not be nil")
	}
	p := cfg.Profile
	if p == (Profile{}) {
		p = ProfileHost
	}
	if cfg.MaxListeners > 0 {
		p.MaxListeners = cfg.MaxListeners
	}
	bufSize := cfg.BufSize
	if bufSize == 0 {
		bufSize = 2048
	}
	if err := p.Validate(bufSize); err != nil {
		return nil, serrors.Wrap("invalid profile", err, "profile", p.Name)
	}
	if cfg.ARPCacheSize < 0 {
		return nil, serrors.New("negative ARP cache size", "size", cfg.ARPCacheSize)
	}
	if cfg.Broadcast.IsValid() && !cfg.Broadcast.Is4() {
		return nil, serrors.New("broadcast address must be IPv4", "addr", cfg.Broadcast)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	s := &Stack{
		ring:      r,
		profile:   p,
		broadcast: cfg.Broadcast,
		arp:       arpcache.New(cfg.ARPCacheSize),
		listeners: make([]listenerEntry, p.MaxListeners),
		metrics:   cfg.Metrics,
		logger:    logger,
		exec:      make(chan func()),
	}
	if err := s.RegisterAddrs(cfg.MAC, cfg.IP); err != nil {
		return nil, err
	}
	s.arp.Init()
	s.metrics.listenerRegistered(0)
	return s, nil
}

// RegisterAddrs sets the local hardware and IPv4 address.
func (s *Stack) RegisterAddrs(mac net.HardwareAddr, ip netip.Addr) error {
	if len(mac) != macLen {
		return serrors.New("invalid MAC address", "mac", mac)
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return serrors.New("IP address must be IPv4", "ip", ip)
	}
	s.mac = [6]byte(mac)
	s.ip = ip
	s.logger.Info("Registered addresses", "mac", mac.String(), "ip", ip)
	return nil
}

// SetIP replaces the local IPv4 address, keeping the hardware address.
func (s *Stack) SetIP(ip netip.Addr) error {
	return s.RegisterAddrs(net.HardwareAddr(s.mac[:]), ip)
}

// MAC returns the local hardware address.
func (s *Stack) MAC() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), s.mac[:]...))
}

// IP returns the local IPv4 address.
func (s *Stack) IP() netip.Addr {
	return s.ip
}

// Profile returns the platform profile in use.
func (s *Stack) Profile() Profile {
	return s.profile
}

// ARPCache exposes the ARP table, e.g. to add static entries at boot.
func (s *Stack) ARPCache() *arpcache.Cache {
	return s.arp
}

func (s *Stack) updateARP(ip netip.Addr, mac [6]byte) {
	if s.arp.Update(ip, mac) {
		s.metrics.arpCacheUpdated()
	}
}

// resolve returns the destination MAC for ip. The broadcast addresses map to
// the Ethernet broadcast address and the local address to the local MAC.
// Everything else is looked up in the ARP cache.
func (s *Stack) resolve(ip netip.Addr) ([6]byte, bool) {
	switch {
	case ip == limitedBroadcast, s.broadcast.IsValid() && ip == s.broadcast:
		return BroadcastMAC, true
	case ip == s.ip:
		return s.mac, true
	}
	return s.arp.Lookup(ip)
}

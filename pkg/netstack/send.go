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

package netstack

import (
	"encoding/binary"
	"net"
	"net/netip"

	"github.com/gopacket/gopacket/layers"
	"github.com/mdlayher/arp"

	"github.com/sdrfw/fwnet/pkg/chksum"
)

const (
	ipv4VersionIHL = 0x45
	ipv4FlagDF     = 0x4000
)

var zeroMAC [6]byte

// SendPkt transmits an Ethernet frame to dst with the given ethertype. The
// parts are concatenated into the payload. Parts that do not fit into the
// transmit buffer are truncated. Short frames are padded with zeros.
func (s *Stack) SendPkt(dst [6]byte, et layers.EthernetType, parts ...[]byte) {
	s.send(dst, et, kindOfEtherType(et), parts)
}

// SendIPPkt transmits an IPv4 packet to dst. The destination MAC address is
// resolved without sending ARP requests. If it is unknown the packet is
// dropped.
func (s *Stack) SendIPPkt(dst netip.Addr, proto layers.IPProtocol, parts ...[]byte) {
	dst = dst.Unmap()
	mac, ok := s.resolve(dst)
	if !ok {
		s.logger.Debug("No ARP entry for destination, dropping packet",
			"dst", dst, "proto", proto)
		s.metrics.droppedFrame(dropARPMiss)
		return
	}
	n := ipv4HdrLen
	for _, p := range parts {
		n += len(p)
	}
	h := s.ipHdr[:]
	h[0] = ipv4VersionIHL
	h[1] = 0
	binary.BigEndian.PutUint16(h[2:], uint16(n))
	binary.BigEndian.PutUint16(h[4:], 0)
	binary.BigEndian.PutUint16(h[6:], ipv4FlagDF)
	h[8] = s.profile.TTL
	h[9] = byte(proto)
	binary.BigEndian.PutUint16(h[10:], 0)
	src := s.ip.As4()
	copy(h[12:16], src[:])
	dst4 := dst.As4()
	copy(h[16:20], dst4[:])
	binary.BigEndian.PutUint16(h[10:], chksum.Checksum(h, 0))

	s.send(mac, layers.EthernetTypeIPv4, kindIPv4, s.withHeader(h, parts))
}

// SendUDPPkt transmits a UDP datagram from the local address and srcPort to
// dst. The UDP checksum is not computed.
func (s *Stack) SendUDPPkt(srcPort uint16, dst Socket, payload []byte) {
	h := s.udpHdr[:]
	binary.BigEndian.PutUint16(h[0:], srcPort)
	binary.BigEndian.PutUint16(h[2:], dst.Port)
	binary.BigEndian.PutUint16(h[4:], uint16(udpHdrLen+len(payload)))
	binary.BigEndian.PutUint16(h[6:], 0)
	s.SendIPPkt(dst.Addr, layers.IPProtocolUDP, h, payload)
}

// SendICMPPkt transmits an ICMP message with the given header fields. The
// checksum covers the header and the payload.
func (s *Stack) SendICMPPkt(dst netip.Addr, typ, code uint8, id, seq uint16, payload []byte) {
	h := s.icmpHdr[:]
	h[0] = typ
	h[1] = code
	binary.BigEndian.PutUint16(h[2:], 0)
	binary.BigEndian.PutUint16(h[4:], id)
	binary.BigEndian.PutUint16(h[6:], seq)
	binary.BigEndian.PutUint16(h[2:], chksum.Checksum(payload, chksum.Sum(h, 0)))
	s.SendIPPkt(dst, layers.IPProtocolICMPv4, h, payload)
}

// SendGratuitousARP broadcasts an ARP request for the local address.
func (s *Stack) SendGratuitousARP() {
	if s.sendARP(arp.OperationRequest, BroadcastMAC, zeroMAC, s.ip, s.ip) {
		s.metrics.gratuitousARP()
	}
}

// SendARPRequest broadcasts an ARP request for ip. The answer is picked up by
// the dispatcher and stored in the ARP cache.
func (s *Stack) SendARPRequest(ip netip.Addr) {
	s.sendARP(arp.OperationRequest, BroadcastMAC, zeroMAC, s.ip, ip.Unmap())
}

// sendARPReply answers a request for the local address. The reply is sent
// directly to the requester.
func (s *Stack) sendARPReply(reqMAC [6]byte, reqIP, target netip.Addr) {
	s.sendARP(arp.OperationReply, reqMAC, reqMAC, target, reqIP)
}

func (s *Stack) sendARP(op arp.Operation, dst, tha [6]byte, spa, tpa netip.Addr) bool {
	p, err := arp.NewPacket(op, net.HardwareAddr(s.mac[:]), spa,
		net.HardwareAddr(tha[:]), tpa)
	if err != nil {
		s.logger.Error("Building ARP packet", "op", op, "target", tpa, "err", err)
		return false
	}
	b, err := p.MarshalBinary()
	if err != nil {
		s.logger.Error("Encoding ARP packet", "op", op, "target", tpa, "err", err)
		return false
	}
	s.send(dst, layers.EthernetTypeARP, kindARP, [][]byte{b})
	return true
}

// withHeader prepends hdr to parts, reusing the scratch slice of the stack.
func (s *Stack) withHeader(hdr []byte, parts [][]byte) [][]byte {
	s.parts = append(append(s.parts[:0], hdr), parts...)
	return s.parts
}

// send assembles and commits one frame. The transmit buffer starts with
// TxOffset zero bytes, followed by the Ethernet header and the parts.
func (s *Stack) send(dst [6]byte, et layers.EthernetType, k frameKind, parts [][]byte) {
	buf := s.ring.ClaimOutgoing()
	off := s.profile.TxOffset
	clear(buf[:off])
	h := buf[off : off+ethHdrLen]
	copy(h[0:6], dst[:])
	copy(h[6:12], s.mac[:])
	binary.BigEndian.PutUint16(h[12:], uint16(et))

	n := off + ethHdrLen
	for _, p := range parts {
		n += copy(buf[n:], p)
	}
	total := s.profile.frameLen(n, len(buf))
	if total > n {
		clear(buf[n:total])
	}
	s.ring.CommitOutgoing(total)
	s.metrics.sentFrame(k)
}

func kindOfEtherType(et layers.EthernetType) frameKind {
	switch et {
	case layers.EthernetTypeARP:
		return kindARP
	case layers.EthernetTypeIPv4:
		return kindIPv4
	case EthernetTypeRecovery:
		return kindRecovery
	default:
		return kindOther
	}
}

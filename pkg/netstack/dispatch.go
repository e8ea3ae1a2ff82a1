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
	"net/netip"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/sdrfw/fwnet/pkg/log"
)

var recoveryCode = [4]byte{'a', 'd', 'd', 'r'}

// HandleEthPacket processes one received buffer. The buffer starts with the
// receive padding of the profile. Frames that are malformed, unsupported or
// not addressed to the device are dropped silently.
func (s *Stack) HandleEthPacket(buf []byte) {
	if len(buf) < s.profile.RxOffset+ethHdrLen {
		s.drop(dropTruncated, "len", len(buf))
		return
	}
	if err := s.eth.DecodeFromBytes(buf[s.profile.RxOffset:], gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropTruncated, "err", err)
		return
	}
	switch s.eth.EthernetType {
	case layers.EthernetTypeARP:
		s.metrics.receivedFrame(kindARP)
		s.handleARPPacket(s.eth.Payload)
	case layers.EthernetTypeIPv4:
		s.metrics.receivedFrame(kindIPv4)
		s.handleIPv4Packet(s.eth.Payload)
	default:
		s.metrics.receivedFrame(kindOther)
		s.drop(dropEtherType, "ethertype", s.eth.EthernetType)
	}
}

func (s *Stack) handleARPPacket(data []byte) {
	if len(data) < arpIPv4Len {
		s.drop(dropARPMalformed, "len", len(data))
		return
	}
	a := &s.arpLayer
	if err := a.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropARPMalformed, "err", err)
		return
	}
	if a.AddrType != layers.LinkTypeEthernet || a.Protocol != layers.EthernetTypeIPv4 ||
		a.HwAddressSize != macLen || a.ProtAddressSize != ipv4AddrLen {

		s.drop(dropARPMalformed, "htype", a.AddrType, "ptype", a.Protocol)
		return
	}
	senderMAC := [6]byte(a.SourceHwAddress)
	senderIP := netip.AddrFrom4([4]byte(a.SourceProtAddress))
	targetIP := netip.AddrFrom4([4]byte(a.DstProtAddress))
	switch {
	case a.Operation == layers.ARPReply:
		s.updateARP(senderIP, senderMAC)
	case a.Operation == layers.ARPRequest && targetIP == s.ip:
		s.sendARPReply(senderMAC, senderIP, targetIP)
	default:
		s.drop(dropARPIgnored, "op", a.Operation, "target", targetIP)
	}
}

func (s *Stack) handleIPv4Packet(data []byte) {
	if len(data) < ipv4HdrLen {
		s.drop(dropTruncated, "len", len(data))
		return
	}
	if data[0] != ipv4VersionIHL {
		s.drop(dropIPMalformed, "version_ihl", data[0])
		return
	}
	if total := int(binary.BigEndian.Uint16(data[2:4])); total < ipv4HdrLen || total > len(data) {
		s.drop(dropIPMalformed, "total_len", total, "len", len(data))
		return
	}
	ip := &s.ip4
	if err := ip.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropIPMalformed, "err", err)
		return
	}
	if ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0 {
		s.drop(dropIPFragment, "flags", ip.Flags, "offset", ip.FragOffset)
		return
	}
	src := netip.AddrFrom4([4]byte(ip.SrcIP))
	dst := netip.AddrFrom4([4]byte(ip.DstIP))
	if [6]byte(s.eth.DstMAC) != BroadcastMAC && dst != s.ip {
		s.drop(dropNotForUs, "dst", dst)
		return
	}
	s.updateARP(src, [6]byte(s.eth.SrcMAC))

	switch ip.Protocol {
	case layers.IPProtocolUDP:
		s.handleUDPPacket(src, dst, ip.Payload)
	case layers.IPProtocolICMPv4:
		s.handleICMPPacket(src, dst, ip.Payload)
	default:
		s.drop(dropIPProtocol, "proto", ip.Protocol)
	}
}

func (s *Stack) handleUDPPacket(src, dst netip.Addr, data []byte) {
	if len(data) < udpHdrLen {
		s.drop(dropUDPLength, "len", len(data))
		return
	}
	if l := int(binary.BigEndian.Uint16(data[4:6])); l != len(data) {
		s.drop(dropUDPLength, "udp_len", l, "ip_payload_len", len(data))
		return
	}
	if err := s.udp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropUDPLength, "err", err)
		return
	}
	e := s.findListener(uint16(s.udp.DstPort))
	if e == nil {
		s.drop(dropNoListener, "port", s.udp.DstPort)
		return
	}
	e.deliver(
		Socket{Addr: src, Port: uint16(s.udp.SrcPort)},
		Socket{Addr: dst, Port: uint16(s.udp.DstPort)},
		data[udpHdrLen:],
	)
}

func (s *Stack) handleICMPPacket(src, dst netip.Addr, data []byte) {
	icmp := &s.icmp
	if err := icmp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropIPMalformed, "err", err)
		return
	}
	switch icmp.TypeCode {
	case layers.CreateICMPv4TypeCode(layers.ICMPv4TypeDestinationUnreachable, layers.ICMPv4CodePort):
		s.handlePortUnreachable(icmp.Payload)
	case layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0):
		s.SendICMPPkt(src, layers.ICMPv4TypeEchoReply, 0, icmp.Id, icmp.Seq, icmp.Payload)
	default:
		s.drop(dropICMPType, "type_code", icmp.TypeCode)
	}
}

// handlePortUnreachable notifies the listener bound to the source port of
// the rejected datagram.
func (s *Stack) handlePortUnreachable(data []byte) {
	inner := &s.innerIP
	if err := inner.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropIPMalformed, "err", err)
		return
	}
	if inner.Protocol != layers.IPProtocolUDP {
		s.drop(dropIPProtocol, "inner_proto", inner.Protocol)
		return
	}
	udp := &s.innerUDP
	if err := udp.DecodeFromBytes(inner.Payload, gopacket.NilDecodeFeedback); err != nil {
		s.drop(dropUDPLength, "err", err)
		return
	}
	e := s.findListener(uint16(udp.SrcPort))
	if e == nil {
		s.drop(dropNoListener, "port", udp.SrcPort)
		return
	}
	e.deliver(
		Socket{Addr: netip.AddrFrom4([4]byte(inner.SrcIP)), Port: uint16(udp.SrcPort)},
		Socket{Addr: netip.AddrFrom4([4]byte(inner.DstIP)), Port: uint16(udp.DstPort)},
		nil,
	)
}

// handleRecovery applies an IP recovery frame. It reports whether buf
// carried the recovery ethertype, in which case the frame is consumed.
func (s *Stack) handleRecovery(buf []byte) bool {
	off := s.profile.RxOffset
	if len(buf) < off+ethHdrLen ||
		layers.EthernetType(binary.BigEndian.Uint16(buf[off+12:])) != EthernetTypeRecovery {

		return false
	}
	s.metrics.receivedFrame(kindRecovery)
	payload := buf[off+ethHdrLen:]
	if len(payload) < len(recoveryCode)+ipv4AddrLen || [4]byte(payload) != recoveryCode {
		s.drop(dropRecovery, "len", len(payload))
		return true
	}
	ip := netip.AddrFrom4([4]byte(payload[len(recoveryCode):]))
	s.logger.Info("Received IP recovery frame", "ip", ip)
	if err := s.SetIP(ip); err != nil {
		s.logger.Error("Applying recovered IP address", "ip", ip, "err", err)
	}
	return true
}

func (s *Stack) drop(r dropReason, ctx ...any) {
	s.metrics.droppedFrame(r)
	if s.logger.Enabled(log.DebugLevel) {
		s.logger.Debug("Dropped frame", append([]any{"reason", r.String()}, ctx...)...)
	}
}

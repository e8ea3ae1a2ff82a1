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
	"fmt"
	"net/netip"

	"github.com/prometheus/client_golang/prometheus"
)

// Socket is an IPv4 address and a UDP port.
type Socket struct {
	Addr netip.Addr
	Port uint16
}

func (s Socket) String() string {
	return netip.AddrPortFrom(s.Addr, s.Port).String()
}

// Listener receives the datagrams addressed to a registered UDP port.
//
// A nil payload signals that an ICMP port unreachable was received for a
// datagram that was sent from the listener's port. In that case src and dst
// are the sockets of the original datagram, i.e. src is the local socket and
// dst the peer that could not be reached. An empty datagram is delivered as
// a non-nil, zero length payload.
//
// The payload is only valid for the duration of the call. Listeners run on
// the polling goroutine and may send packets.
type Listener interface {
	HandleUDP(src, dst Socket, payload []byte)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(src, dst Socket, payload []byte)

// HandleUDP calls f.
func (f ListenerFunc) HandleUDP(src, dst Socket, payload []byte) {
	f(src, dst, payload)
}

type listenerEntry struct {
	port        uint16
	listener    Listener
	delivered   prometheus.Counter
	unreachable prometheus.Counter
}

// RegisterUDPListener binds l to port. Registering an already bound port
// replaces its listener. It panics if the port is new and the listener table
// is full: the table is sized for the services of the device and running out
// is a configuration defect.
func (s *Stack) RegisterUDPListener(port uint16, l Listener) {
	if l == nil {
		panic("netstack: nil listener")
	}
	for i := range s.listeners {
		if s.listeners[i].listener != nil && s.listeners[i].port == port {
			s.listeners[i].listener = l
			return
		}
	}
	for i := range s.listeners {
		if s.listeners[i].listener == nil {
			delivered, unreachable := s.metrics.listenerCounters(port)
			s.listeners[i] = listenerEntry{
				port:        port,
				listener:    l,
				delivered:   delivered,
				unreachable: unreachable,
			}
			s.metrics.listenerRegistered(s.numListeners())
			s.logger.Debug("Registered UDP listener", "port", port, "slot", i)
			return
		}
	}
	panic(fmt.Sprintf("netstack: UDP listener table full (%d entries), cannot register port %d",
		len(s.listeners), port))
}

func (s *Stack) findListener(port uint16) *listenerEntry {
	for i := range s.listeners {
		if s.listeners[i].listener != nil && s.listeners[i].port == port {
			return &s.listeners[i]
		}
	}
	return nil
}

// ListenerPorts returns the bound ports in table order.
func (s *Stack) ListenerPorts() []uint16 {
	ports := make([]uint16, 0, len(s.listeners))
	for i := range s.listeners {
		if s.listeners[i].listener != nil {
			ports = append(ports, s.listeners[i].port)
		}
	}
	return ports
}

func (s *Stack) numListeners() int {
	n := 0
	for i := range s.listeners {
		if s.listeners[i].listener != nil {
			n++
		}
	}
	return n
}

func (e *listenerEntry) deliver(src, dst Socket, payload []byte) {
	c := e.delivered
	if payload == nil {
		c = e.unreachable
	}
	if c != nil {
		c.Inc()
	}
	e.listener.HandleUDP(src, dst, payload)
}

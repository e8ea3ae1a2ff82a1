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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// dropReason classifies discarded frames.
type dropReason int

const (
	dropTruncated dropReason = iota
	dropEtherType
	dropARPMalformed
	dropARPIgnored
	dropIPMalformed
	dropIPFragment
	dropNotForUs
	dropIPProtocol
	dropUDPLength
	dropNoListener
	dropICMPType
	dropARPMiss
	dropRecovery
	numDropReasons
)

var dropReasonNames = [numDropReasons]string{
	dropTruncated:    "truncated",
	dropEtherType:    "ethertype",
	dropARPMalformed: "arp_malformed",
	dropARPIgnored:   "arp_ignored",
	dropIPMalformed:  "ip_malformed",
	dropIPFragment:   "ip_fragment",
	dropNotForUs:     "not_for_us",
	dropIPProtocol:   "ip_protocol",
	dropUDPLength:    "udp_length",
	dropNoListener:   "no_listener",
	dropICMPType:     "icmp_type",
	dropARPMiss:      "arp_miss",
	dropRecovery:     "recovery_malformed",
}

func (r dropReason) String() string {
	return dropReasonNames[r]
}

// frameKind labels received and sent frames.
type frameKind int

const (
	kindARP frameKind = iota
	kindIPv4
	kindRecovery
	kindOther
	numFrameKinds
)

var frameKindNames = [numFrameKinds]string{
	kindARP:      "arp",
	kindIPv4:     "ipv4",
	kindRecovery: "recovery",
	kindOther:    "other",
}

// Metrics holds the counters of a Stack. A nil *Metrics disables collection.
type Metrics struct {
	ReceivedFramesTotal   *prometheus.CounterVec
	SentFramesTotal       *prometheus.CounterVec
	DroppedFramesTotal    *prometheus.CounterVec
	ListenerCallsTotal    *prometheus.CounterVec
	GratuitousARPsTotal   prometheus.Counter
	ARPCacheUpdatesTotal  prometheus.Counter
	ListenerRegistrations prometheus.Gauge

	received [numFrameKinds]prometheus.Counter
	sent     [numFrameKinds]prometheus.Counter
	dropped  [numDropReasons]prometheus.Counter
}

// NewMetrics creates the stack metrics and registers them with reg. If reg
// is nil the metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		ReceivedFramesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwnet_received_frames_total",
				Help: "Total number of frames claimed from the receive ring.",
			},
			[]string{"kind"},
		),
		SentFramesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwnet_sent_frames_total",
				Help: "Total number of frames committed to the transmit ring.",
			},
			[]string{"kind"},
		),
		DroppedFramesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwnet_dropped_frames_total",
				Help: "Total number of frames dropped by the stack.",
			},
			[]string{"reason"},
		),
		ListenerCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwnet_udp_listener_calls_total",
				Help: "Total number of UDP listener invocations.",
			},
			[]string{"port", "unreachable"},
		),
		GratuitousARPsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fwnet_gratuitous_arps_total",
				Help: "Total number of gratuitous ARP announcements sent.",
			},
		),
		ARPCacheUpdatesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fwnet_arp_cache_updates_total",
				Help: "Total number of ARP cache insertions and modifications.",
			},
		),
		ListenerRegistrations: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fwnet_udp_listeners",
				Help: "Number of registered UDP listeners.",
			},
		),
	}
	for k := frameKind(0); k < numFrameKinds; k++ {
		m.received[k] = m.ReceivedFramesTotal.WithLabelValues(frameKindNames[k])
		m.sent[k] = m.SentFramesTotal.WithLabelValues(frameKindNames[k])
	}
	for r := dropReason(0); r < numDropReasons; r++ {
		m.dropped[r] = m.DroppedFramesTotal.WithLabelValues(r.String())
	}
	return m
}

func (m *Metrics) receivedFrame(k frameKind) {
	if m != nil {
		m.received[k].Inc()
	}
}

func (m *Metrics) sentFrame(k frameKind) {
	if m != nil {
		m.sent[k].Inc()
	}
}

func (m *Metrics) droppedFrame(r dropReason) {
	if m != nil {
		m.dropped[r].Inc()
	}
}

func (m *Metrics) gratuitousARP() {
	if m != nil {
		m.GratuitousARPsTotal.Inc()
	}
}

func (m *Metrics) arpCacheUpdated() {
	if m != nil {
		m.ARPCacheUpdatesTotal.Inc()
	}
}

func (m *Metrics) listenerRegistered(n int) {
	if m != nil {
		m.ListenerRegistrations.Set(float64(n))
	}
}

// listenerCounters returns the call counters for a listener port.
func (m *Metrics) listenerCounters(port uint16) (delivered, unreachable prometheus.Counter) {
	if m == nil {
		return nil, nil
	}
	p := strconv.Itoa(int(port))
	return m.ListenerCallsTotal.WithLabelValues(p, "false"),
		m.ListenerCallsTotal.WithLabelValues(p, "true")
}

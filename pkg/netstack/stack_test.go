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

package netstack_test

import (
	"net"
	"net/netip"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sdrfw/fwnet/pkg/log/testlog"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/ring"
)

const bufSize = 256

var (
	devMAC  = net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}
	devIP   = netip.MustParseAddr("10.10.10.2")
	hostMAC = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	hostIP  = netip.MustParseAddr("10.10.10.1")
	bcast   = netip.MustParseAddr("10.10.10.255")
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type env struct {
	stack   *netstack.Stack
	ring    *ring.Mem
	metrics *netstack.Metrics
	profile netstack.Profile
}

func newEnv(t *testing.T, p netstack.Profile) *env {
	t.Helper()
	r := ring.NewMem(4, bufSize)
	m := netstack.NewMetrics(prometheus.NewRegistry())
	s, err := netstack.New(r, netstack.Config{
		MAC:       devMAC,
		IP:        devIP,
		Broadcast: bcast,
		Profile:   p,
		BufSize:   bufSize,
		Metrics:   m,
		Logger:    testlog.NewLogger(t),
	})
	require.NoError(t, err)
	return &env{stack: s, ring: r, metrics: m, profile: p}
}

// inject serializes the layers into a frame, prepends the receive padding
// and processes it.
func (e *env) inject(t *testing.T, l ...gopacket.SerializableLayer) {
	t.Helper()
	e.injectRaw(t, serialize(t, l...))
}

func (e *env) injectRaw(t *testing.T, frame []byte) {
	t.Helper()
	buf := append(make([]byte, e.profile.RxOffset), frame...)
	require.True(t, e.ring.Inject(buf))
	require.True(t, e.stack.HandleOne())
}

// sent decodes the transmitted frames, stripping the transmit offset.
func (e *env) sent(t *testing.T) []gopacket.Packet {
	t.Helper()
	var pkts []gopacket.Packet
	for _, f := range e.ring.Sent() {
		require.GreaterOrEqual(t, len(f), e.profile.TxOffset)
		pkts = append(pkts, gopacket.NewPacket(f[e.profile.TxOffset:],
			layers.LayerTypeEthernet, gopacket.Default))
	}
	return pkts
}

func (e *env) dropped(reason string) float64 {
	return testutil.ToFloat64(e.metrics.DroppedFramesTotal.WithLabelValues(reason))
}

func serialize(t *testing.T, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	var ip *layers.IPv4
	for _, x := range l {
		switch x := x.(type) {
		case *layers.IPv4:
			ip = x
		case *layers.UDP:
			require.NotNil(t, ip, "UDP without IPv4 layer")
			require.NoError(t, x.SetNetworkLayerForChecksum(ip))
		}
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, l...))
	return buf.Bytes()
}

func ethLayer(dst net.HardwareAddr, et layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{SrcMAC: hostMAC, DstMAC: dst, EthernetType: et}
}

func ipLayer(src, dst netip.Addr, proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Flags:    layers.IPv4DontFragment,
		Protocol: proto,
		SrcIP:    src.AsSlice(),
		DstIP:    dst.AsSlice(),
	}
}

func udpFrame(t *testing.T, dstPort uint16, payload []byte) []byte {
	return serialize(t,
		ethLayer(devMAC, layers.EthernetTypeIPv4),
		ipLayer(hostIP, devIP, layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 5000, DstPort: layers.UDPPort(dstPort)},
		gopacket.Payload(payload),
	)
}

type call struct {
	src, dst netstack.Socket
	payload  []byte
	isNil    bool
}

type recorder struct {
	calls []call
}

func (r *recorder) HandleUDP(src, dst netstack.Socket, payload []byte) {
	r.calls = append(r.calls, call{
		src:     src,
		dst:     dst,
		payload: append([]byte(nil), payload...),
		isNil:   payload == nil,
	})
}

func TestNew(t *testing.T) {
	testCases := map[string]struct {
		cfg       netstack.Config
		assertErr assert.ErrorAssertionFunc
	}{
		"valid": {
			cfg:       netstack.Config{MAC: devMAC, IP: devIP},
			assertErr: assert.NoError,
		},
		"IPv4-mapped": {
			cfg:       netstack.Config{MAC: devMAC, IP: netip.MustParseAddr("::ffff:10.0.0.1")},
			assertErr: assert.NoError,
		},
		"short MAC": {
			cfg:       netstack.Config{MAC: devMAC[:4], IP: devIP},
			assertErr: assert.Error,
		},
		"IPv6": {
			cfg:       netstack.Config{MAC: devMAC, IP: netip.MustParseAddr("fd00::1")},
			assertErr: assert.Error,
		},
		"no IP": {
			cfg:       netstack.Config{MAC: devMAC},
			assertErr: assert.Error,
		},
		"IPv6 broadcast": {
			cfg: netstack.Config{MAC: devMAC, IP: devIP,
				Broadcast: netip.MustParseAddr("fd00::ff")},
			assertErr: assert.Error,
		},
		"buffer too small": {
			cfg:       netstack.Config{MAC: devMAC, IP: devIP, BufSize: 32},
			assertErr: assert.Error,
		},
		"negative ARP cache": {
			cfg:       netstack.Config{MAC: devMAC, IP: devIP, ARPCacheSize: -1},
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := netstack.New(ring.NewMem(1, 2048), tc.cfg)
			tc.assertErr(t, err)
		})
	}
	_, err := netstack.New(nil, netstack.Config{MAC: devMAC, IP: devIP})
	assert.Error(t, err)
}

func TestInitialState(t *testing.T) {
	e := newEnv(t, netstack.ProfileZPU)
	assert.Equal(t, devMAC, e.stack.MAC())
	assert.Equal(t, devIP, e.stack.IP())
	assert.Equal(t, "zpu", e.stack.Profile().Name)
	assert.Zero(t, e.stack.ARPCache().Len())
	assert.Equal(t, float64(0), testutil.ToFloat64(e.metrics.ListenerRegistrations))
}

func TestRegisterAddrs(t *testing.T) {
	e := newEnv(t, netstack.ProfileHost)
	other := net.HardwareAddr{0x02, 0, 0, 0, 0, 0x42}
	require.NoError(t, e.stack.RegisterAddrs(other, netip.MustParseAddr("192.168.1.5")))
	assert.Equal(t, other, e.stack.MAC())
	assert.Equal(t, netip.MustParseAddr("192.168.1.5"), e.stack.IP())

	require.NoError(t, e.stack.SetIP(devIP))
	assert.Equal(t, other, e.stack.MAC())
	assert.Equal(t, devIP, e.stack.IP())

	assert.Error(t, e.stack.SetIP(netip.MustParseAddr("fd00::1")))
	assert.Equal(t, devIP, e.stack.IP(), "unchanged on error")
}

func TestRegisterUDPListener(t *testing.T) {
	e := newEnv(t, netstack.ProfileMicroBlaze)
	for port := uint16(1); port <= 6; port++ {
		e.stack.RegisterUDPListener(port, &recorder{})
	}
	assert.Equal(t, float64(6), testutil.ToFloat64(e.metrics.ListenerRegistrations))

	// Rebinding an existing port does not need a free slot.
	r := &recorder{}
	assert.NotPanics(t, func() { e.stack.RegisterUDPListener(3, r) })
	e.injectRaw(t, udpFrame(t, 3, []byte{1}))
	assert.Len(t, r.calls, 1)

	assert.PanicsWithValue(t,
		"netstack: UDP listener table full (6 entries), cannot register port 7",
		func() { e.stack.RegisterUDPListener(7, &recorder{}) })
	assert.Panics(t, func() { e.stack.RegisterUDPListener(8, nil) })
}

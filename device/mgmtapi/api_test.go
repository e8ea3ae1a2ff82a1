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

package mgmtapi_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sdrfw/fwnet/device/mgmtapi"
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/log/testlog"
	"github.com/sdrfw/fwnet/pkg/netstack"
	"github.com/sdrfw/fwnet/pkg/ring"
	api "github.com/sdrfw/fwnet/private/mgmtapi"
)

var (
	devMAC = net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}
	devIP  = netip.MustParseAddr("10.10.10.2")
)

// direct runs the functions immediately, the tests own the stack.
type direct struct {
	*netstack.Stack
}

func (d direct) Do(_ context.Context, fn func(*netstack.Stack)) error {
	fn(d.Stack)
	return nil
}

// stalled never runs the functions.
type stalled struct{}

func (stalled) Do(ctx context.Context, _ func(*netstack.Stack)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalled) TriggerGARP() {}

type testConfig struct {
	Device struct {
		IP string `toml:"ip"`
	} `toml:"device"`
}

func newServer(t *testing.T) (*mgmtapi.Server, *netstack.Stack, *ring.Mem) {
	t.Helper()
	r := ring.NewMem(2, 256)
	st, err := netstack.New(r, netstack.Config{
		MAC:     devMAC,
		IP:      devIP,
		Profile: netstack.ProfileZPU,
		BufSize: 256,
		Logger:  testlog.NewLogger(t),
	})
	require.NoError(t, err)
	var cfg testConfig
	cfg.Device.IP = devIP.String()
	return &mgmtapi.Server{ID: "dev-1", Device: direct{st}, Config: cfg}, st, r
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetInfo(t *testing.T) {
	s, st, _ := newServer(t)
	st.RegisterUDPListener(7, netstack.ListenerFunc(func(_, _ netstack.Socket, _ []byte) {}))
	rec := request(t, s.Handler(), http.MethodGet, "/api/v1/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info mgmtapi.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, mgmtapi.Info{
		ID:        "dev-1",
		MAC:       devMAC.String(),
		IP:        devIP.String(),
		Profile:   "zpu",
		Listeners: []uint16{7},
	}, info)
}

func TestGetARPTable(t *testing.T) {
	s, st, r := newServer(t)
	rec := request(t, s.Handler(), http.MethodGet, "/api/v1/arp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// Learn the host through an ARP reply.
	host := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{},
		&layers.Ethernet{SrcMAC: host, DstMAC: devMAC, EthernetType: layers.EthernetTypeARP},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPReply,
			SourceHwAddress:   host,
			SourceProtAddress: []byte{10, 10, 10, 1},
			DstHwAddress:      devMAC,
			DstProtAddress:    devIP.AsSlice(),
		},
	))
	require.True(t, r.Inject(append([]byte{0, 0}, buf.Bytes()...)))
	require.True(t, st.HandleOne())

	rec = request(t, s.Handler(), http.MethodGet, "/api/v1/arp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []mgmtapi.ARPEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []mgmtapi.ARPEntry{{IP: "10.10.10.1", MAC: host.String()}}, entries)
}

func TestResolveIP(t *testing.T) {
	tests := map[string]struct {
		ip     string
		status int
		sent   int
	}{
		"valid":  {ip: "10.10.10.9", status: http.StatusAccepted, sent: 1},
		"ipv6":   {ip: "fd00::1", status: http.StatusBadRequest},
		"broken": {ip: "10.10", status: http.StatusBadRequest},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, _, r := newServer(t)
			rec := request(t, s.Handler(), http.MethodPost, "/api/v1/arp/"+tc.ip, "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Len(t, r.Sent(), tc.sent)
		})
	}
}

func TestTriggerGARP(t *testing.T) {
	s, st, r := newServer(t)
	rec := request(t, s.Handler(), http.MethodPost, "/api/v1/garp", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, r.Sent(), "sent by the polling loop")
	st.Poll()
	assert.Len(t, r.Sent(), 1)
}

func TestGetConfig(t *testing.T) {
	s, _, _ := newServer(t)
	rec := request(t, s.Handler(), http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[device]")
	assert.Contains(t, rec.Body.String(), "10.10.10.2")
}

func TestLogLevel(t *testing.T) {
	defer log.ConsoleLevel.SetLevel(log.ConsoleLevel.Level())
	s, _, _ := newServer(t)
	rec := request(t, s.Handler(), http.MethodPut, "/api/v1/log/level", `{"level":"debug"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, zapcore.DebugLevel, log.ConsoleLevel.Level())

	rec = request(t, s.Handler(), http.MethodGet, "/api/v1/log/level", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":"debug"}`, rec.Body.String())
}

func TestUnavailable(t *testing.T) {
	s := &mgmtapi.Server{Device: stalled{}, Timeout: 1}
	rec := request(t, s.Handler(), http.MethodGet, "/api/v1/info", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var p api.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, api.Unavailable, *p.Type)
}

func TestCORS(t *testing.T) {
	s, _, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

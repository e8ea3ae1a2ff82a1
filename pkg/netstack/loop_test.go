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
	"context"
	"testing"
	"time"

	"github.com/gopacket/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdrfw/fwnet/pkg/netstack"
)

func TestPollGratuitousARP(t *testing.T) {
	e := newEnv(t, netstack.ProfileHost)
	assert.False(t, e.stack.Poll())
	assert.Empty(t, e.ring.Sent())

	e.stack.TriggerGARP()
	e.stack.TriggerGARP()
	assert.False(t, e.stack.Poll())
	pkts := e.sent(t)
	require.Len(t, pkts, 1, "flag is consumed once")
	a := pkts[0].Layer(layers.LayerTypeARP).(*layers.ARP)
	assert.Equal(t, devIP.AsSlice(), a.DstProtAddress)

	assert.False(t, e.stack.Poll())
	assert.Empty(t, e.ring.Sent())
}

func TestPollOrder(t *testing.T) {
	e := newEnv(t, netstack.ProfileHost)
	require.True(t, e.ring.Inject(udpFrame(t, 7000, []byte{1})))
	var order []string
	e.stack.RegisterUDPListener(7000, netstack.ListenerFunc(
		func(netstack.Socket, netstack.Socket, []byte) {
			order = append(order, "udp")
			assert.Empty(t, e.ring.Sent(), "GARP is sent after the frame")
		},
	))
	netstack.GratuitousARPTask{Stack: e.stack}.Run(context.Background())
	assert.True(t, e.stack.Poll())
	assert.Equal(t, []string{"udp"}, order)
	assert.Len(t, e.ring.Sent(), 1)
}

func TestRun(t *testing.T) {
	e := newEnv(t, netstack.ProfileZPU)
	got := make(chan []byte, 1)
	e.stack.RegisterUDPListener(7000, netstack.ListenerFunc(
		func(_, _ netstack.Socket, payload []byte) {
			got <- append([]byte(nil), payload...)
		},
	))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- e.stack.Run(ctx, time.Millisecond)
	}()

	// A gratuitous ARP is sent on start.
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(e.metrics.GratuitousARPsTotal) == 1
	}, time.Second, time.Millisecond)

	require.True(t, e.ring.Inject(append(make([]byte, 2), udpFrame(t, 7000, []byte{9, 8})...)))
	select {
	case p := <-got:
		assert.Equal(t, []byte{9, 8}, p)
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestGratuitousARPTask(t *testing.T) {
	e := newEnv(t, netstack.ProfileHost)
	task := netstack.GratuitousARPTask{Stack: e.stack}
	assert.Equal(t, "netstack.gratuitous_arp", task.Name())
	task.Run(context.Background())
	e.stack.Poll()
	assert.Len(t, e.ring.Sent(), 1)
}

func TestDo(t *testing.T) {
	e := newEnv(t, netstack.ProfileHost)
	e.stack.RegisterUDPListener(7000, netstack.ListenerFunc(func(_, _ netstack.Socket, _ []byte) {}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- e.stack.Run(ctx, time.Millisecond)
	}()

	var ports []uint16
	require.NoError(t, e.stack.Do(context.Background(), func(s *netstack.Stack) {
		ports = s.ListenerPorts()
	}))
	assert.Equal(t, []uint16{7000}, ports)

	cancel()
	require.NoError(t, <-done)

	// Nobody polls anymore.
	expired, cancelExpired := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelExpired()
	err := e.stack.Do(expired, func(*netstack.Stack) { t.Error("must not run") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

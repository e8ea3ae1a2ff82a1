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
	"context"
	"time"

	"github.com/sdrfw/fwnet/pkg/log"
)

// HandleOne processes at most one received buffer. It reports whether a
// buffer was available. The buffer is released exactly once.
func (s *Stack) HandleOne() bool {
	buf, ok := s.ring.ClaimIncoming()
	if !ok {
		return false
	}
	defer s.ring.ReleaseIncoming()
	if !s.handleRecovery(buf) {
		s.HandleEthPacket(buf)
	}
	return true
}

// TriggerGARP requests a gratuitous ARP from the polling loop. It is safe to
// call from any goroutine.
func (s *Stack) TriggerGARP() {
	s.garp.Store(true)
}

// Poll runs one iteration of the polling loop: it handles one received
// buffer, then sends a gratuitous ARP if one was requested.
func (s *Stack) Poll() bool {
	handled := s.HandleOne()
	if s.garp.Swap(false) {
		s.SendGratuitousARP()
	}
	select {
	case fn := <-s.exec:
		fn()
	default:
	}
	return handled
}

// Do runs fn on the polling goroutine between two frames and waits for it to
// return. While Run is active it is the only safe way for other goroutines
// to read the stack state or to send packets. fn must not block.
func (s *Stack) Do(ctx context.Context, fn func(*Stack)) error {
	done := make(chan struct{})
	select {
	case s.exec <- func() { fn(s); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Run polls until ctx is done. A gratuitous ARP is sent on start. If
// idleSleep is positive the loop sleeps that long whenever no buffer was
// available, otherwise it spins.
func (s *Stack) Run(ctx context.Context, idleSleep time.Duration) error {
	s.logger.Info("Network stack started", "mac", s.MAC().String(), "ip", s.ip,
		"profile", s.profile.Name)
	defer log.HandlePanic()
	s.TriggerGARP()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Network stack stopped")
			return nil
		default:
		}
		if s.Poll() || idleSleep <= 0 {
			continue
		}
		t := time.NewTimer(idleSleep)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
}

// GratuitousARPTask adapts the stack to a periodic task that requests
// gratuitous ARP announcements.
type GratuitousARPTask struct {
	Stack *Stack
}

// Name returns the task name.
func (t GratuitousARPTask) Name() string {
	return "netstack.gratuitous_arp"
}

// Run requests a gratuitous ARP. It never blocks.
func (t GratuitousARPTask) Run(context.Context) {
	t.Stack.TriggerGARP()
}

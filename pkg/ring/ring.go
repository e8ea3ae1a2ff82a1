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

// Package ring defines the handshake between the network stack and the
// packet buffers of the hardware, and provides several implementations.
//
// The stack holds at most one incoming and one outgoing buffer at a time.
// Every successful ClaimIncoming is followed by exactly one ReleaseIncoming,
// and every ClaimOutgoing by exactly one CommitOutgoing. Buffers must not be
// retained after they have been released or committed.
//
// Implementations:
//   - Mem keeps frames in memory. It is used by tests and simulations.
//   - Regs drives a memory-mapped packet router through status and control
//     registers, as found on the FPGA soft cores.
//   - Driven adapts a blocking FrameDevice (TAP interface, packet socket).
//   - Capture wraps another Ring and records all traffic to a pcap stream.
package ring

//go:generate mockgen -destination=mock_ring/ring.go -package=mock_ring github.com/sdrfw/fwnet/pkg/ring Ring

// Ring is the packet buffer contract consumed by the network stack.
type Ring interface {
	// ClaimIncoming returns the next received frame, if any. It never blocks.
	// The returned buffer starts with the platform receive padding.
	ClaimIncoming() ([]byte, bool)
	// ReleaseIncoming hands the claimed incoming buffer back to the hardware.
	ReleaseIncoming()
	// ClaimOutgoing returns a transmit buffer. It blocks until one is
	// available. The length of the returned slice is the buffer capacity.
	ClaimOutgoing() []byte
	// CommitOutgoing transmits the first n bytes of the claimed buffer and
	// blocks until the hardware acknowledged it.
	CommitOutgoing(n int)
}

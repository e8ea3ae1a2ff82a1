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

package ring

import (
	"sync"
)

// Poison is the value Mem writes into every transmit buffer before handing
// it out. Bytes of a committed frame that still hold it were never written.
const Poison = 0xee

// Mem is an in-memory Ring with a bounded number of receive slots and a
// single transmit buffer. Frames are injected with Inject and transmitted
// frames are collected with Sent. Inject and Sent may be called from any
// goroutine.
type Mem struct {
	mu      sync.Mutex
	slots   int
	bufSize int
	pending [][]byte
	claimed []byte
	out     []byte
	sent    [][]byte
}

// NewMem creates a Mem ring with the given number of receive slots. Each
// buffer, incoming or outgoing, holds at most bufSize bytes.
func NewMem(slots, bufSize int) *Mem {
	if slots <= 0 || bufSize <= 0 {
		panic("ring: slots and buffer size must be positive")
	}
	return &Mem{
		slots:   slots,
		bufSize: bufSize,
		out:     make([]byte, bufSize),
	}
}

// Inject queues a copy of frame for reception. Frames larger than the buffer
// size are truncated. It returns false if all receive slots are occupied, in
// which case the frame is dropped like the hardware would.
func (m *Mem) Inject(frame []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	busy := len(m.pending)
	if m.claimed != nil {
		busy++
	}
	if busy >= m.slots {
		return false
	}
	n := min(len(frame), m.bufSize)
	m.pending = append(m.pending, append([]byte(nil), frame[:n]...))
	return true
}

// Pending returns the number of injected frames not yet claimed.
func (m *Mem) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Sent returns the frames committed since the previous call.
func (m *Mem) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sent
	m.sent = nil
	return s
}

func (m *Mem) ClaimIncoming() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed != nil {
		panic("ring: incoming buffer claimed twice")
	}
	if len(m.pending) == 0 {
		return nil, false
	}
	m.claimed = m.pending[0]
	m.pending = m.pending[1:]
	return m.claimed, true
}

func (m *Mem) ReleaseIncoming() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed == nil {
		panic("ring: release without claim")
	}
	m.claimed = nil
}

func (m *Mem) ClaimOutgoing() []byte {
	for i := range m.out {
		m.out[i] = Poison
	}
	return m.out
}

func (m *Mem) CommitOutgoing(n int) {
	if n < 0 || n > len(m.out) {
		panic("ring: commit length out of range")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, append([]byte(nil), m.out[:n]...))
}

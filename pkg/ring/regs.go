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
	"runtime"
)

// Control register bits written by the CPU.
const (
	// CtrlOutReq asks the router to transmit the outgoing buffer. The number
	// of valid 32-bit lines is encoded in the upper half of the register.
	CtrlOutReq uint32 = 1 << 0
	// CtrlInpReq tells the router that the CPU is done with the incoming
	// buffer.
	CtrlInpReq uint32 = 1 << 2
)

// Status register bits set by the router.
const (
	// StatOutAck acknowledges a transmit request.
	StatOutAck uint32 = 1 << 1
	// StatInpAck signals that the incoming buffer holds a frame. The number
	// of valid 32-bit lines is encoded in the upper half of the register.
	StatInpAck uint32 = 1 << 3
)

// LineBytes is the width of one buffer line.
const LineBytes = 4

// Registers is the CPU view of the packet router: a status word, a control
// word and the two packet buffers.
type Registers interface {
	Status() uint32
	SetControl(v uint32)
	InBuffer() []byte
	OutBuffer() []byte
}

// Regs implements Ring on top of the packet router registers. All waits are
// busy polls without timeout.
type Regs struct {
	regs Registers
}

// NewRegs creates a ring driving the given registers.
func NewRegs(r Registers) *Regs {
	return &Regs{regs: r}
}

func (r *Regs) ClaimIncoming() ([]byte, bool) {
	st := r.regs.Status()
	if st&StatInpAck == 0 {
		return nil, false
	}
	buf := r.regs.InBuffer()
	n := min(int(st>>16)*LineBytes, len(buf))
	return buf[:n], true
}

func (r *Regs) ReleaseIncoming() {
	r.regs.SetControl(CtrlInpReq)
	r.waitFor(StatInpAck, 0)
	r.regs.SetControl(0)
}

func (r *Regs) ClaimOutgoing() []byte {
	r.waitFor(StatOutAck, 0)
	return r.regs.OutBuffer()
}

func (r *Regs) CommitOutgoing(n int) {
	lines := uint32((n + LineBytes - 1) / LineBytes)
	r.regs.SetControl(lines<<16 | CtrlOutReq)
	r.waitFor(StatOutAck, StatOutAck)
	r.regs.SetControl(0)
}

// waitFor spins until the masked status equals want.
func (r *Regs) waitFor(mask, want uint32) {
	for r.regs.Status()&mask != want {
		runtime.Gosched()
	}
}

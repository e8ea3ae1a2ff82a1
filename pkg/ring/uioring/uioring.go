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

//go:build linux

// Package uioring maps the packet router of the FPGA through a Linux UIO
// device and exposes it as ring.Registers.
//
// The mapped window starts with the status word at offset 0 and the control
// word at offset 4. The incoming and outgoing packet buffers live at the
// configured offsets.
package uioring

import (
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

const (
	statusOffset  = 0
	controlOffset = 4
)

// Layout describes the mapped window.
type Layout struct {
	// Size of the window in bytes.
	Size int
	// InOffset and OutOffset locate the packet buffers.
	InOffset  int
	OutOffset int
	// BufSize is the size of each packet buffer.
	BufSize int
}

func (l Layout) validate() error {
	if l.Size <= controlOffset+4 || l.BufSize <= 0 {
		return serrors.New("invalid window size", "size", l.Size, "buf_size", l.BufSize)
	}
	for _, off := range []int{l.InOffset, l.OutOffset} {
		if off < controlOffset+4 || off%4 != 0 || off+l.BufSize > l.Size {
			return serrors.New("buffer outside of window", "offset", off,
				"buf_size", l.BufSize, "size", l.Size)
		}
	}
	return nil
}

// Window is a mapped packet router. It implements ring.Registers.
type Window struct {
	mem    []byte
	status *uint32
	ctrl   *uint32
	in     []byte
	out    []byte
}

// Open maps the UIO device at path with the given layout.
func Open(path string, l Layout) (*Window, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, serrors.Wrap("opening uio device", err, "path", path)
	}
	defer f.Close()
	mem, err := unix.Mmap(int(f.Fd()), 0, l.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, serrors.Wrap("mapping uio device", err, "path", path, "size", l.Size)
	}
	return &Window{
		mem:    mem,
		status: (*uint32)(unsafe.Pointer(&mem[statusOffset])),
		ctrl:   (*uint32)(unsafe.Pointer(&mem[controlOffset])),
		in:     mem[l.InOffset : l.InOffset+l.BufSize],
		out:    mem[l.OutOffset : l.OutOffset+l.BufSize],
	}, nil
}

func (w *Window) Status() uint32 {
	return atomic.LoadUint32(w.status)
}

func (w *Window) SetControl(v uint32) {
	atomic.StoreUint32(w.ctrl, v)
}

func (w *Window) InBuffer() []byte {
	return w.in
}

func (w *Window) OutBuffer() []byte {
	return w.out
}

// Close unmaps the window.
func (w *Window) Close() error {
	return unix.Munmap(w.mem)
}

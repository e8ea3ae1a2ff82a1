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
	"sync/atomic"

	"github.com/sdrfw/fwnet/pkg/log"
)

// FrameDevice is a blocking, frame oriented device such as a TAP interface
// or a packet socket.
type FrameDevice interface {
	// ReadFrame reads one frame into buf and returns its length. A zero
	// length with a nil error means that nothing was read (e.g. a poll
	// timeout).
	ReadFrame(buf []byte) (int, error)
	// WriteFrame transmits one frame.
	WriteFrame(frame []byte) error
	// Close unblocks pending reads and releases the device.
	Close() error
}

// DrivenConfig describes the buffers of a Driven ring.
type DrivenConfig struct {
	// Slots is the number of receive buffers.
	Slots int
	// BufSize is the size of every buffer, padding included.
	BufSize int
	// RxPad zero bytes are placed ahead of every received frame.
	RxPad int
	// TxPad bytes are stripped from the front of every committed frame.
	TxPad int
}

// Driven is a Ring fed by a receiver goroutine that reads from a FrameDevice
// into a fixed set of receive slots. When all slots are full the receiver
// stops reading, leaving the device to drop frames.
//
// The platform padding of the soft cores is emulated so that the stack sees
// the same buffer layout as on the hardware.
type Driven struct {
	dev     FrameDevice
	rxPad   int
	txPad   int
	free    chan []byte
	ready   chan []byte
	claimed []byte
	out     []byte
	logger  log.Logger

	running      atomic.Bool
	stop         chan struct{}
	receiverDone chan struct{}
}

// NewDriven creates a ring on top of dev. The receiver is started with Start.
func NewDriven(dev FrameDevice, cfg DrivenConfig, logger log.Logger) *Driven {
	if cfg.Slots <= 0 || cfg.BufSize <= cfg.RxPad || cfg.BufSize <= cfg.TxPad {
		panic("ring: invalid driven ring configuration")
	}
	d := &Driven{
		dev:          dev,
		rxPad:        cfg.RxPad,
		txPad:        cfg.TxPad,
		free:         make(chan []byte, cfg.Slots),
		ready:        make(chan []byte, cfg.Slots),
		out:          make([]byte, cfg.BufSize),
		logger:       logger,
		stop:         make(chan struct{}),
		receiverDone: make(chan struct{}),
	}
	for i := 0; i < cfg.Slots; i++ {
		d.free <- make([]byte, cfg.BufSize)
	}
	return d
}

// Start launches the receiver goroutine. Start must be called at most once.
func (d *Driven) Start() {
	if d.running.Swap(true) {
		return
	}
	go func() {
		defer log.HandlePanic()
		defer close(d.receiverDone)
		d.receive()
	}()
}

// Stop closes the device and waits for the receiver to exit.
func (d *Driven) Stop() error {
	if !d.running.Swap(false) {
		return nil
	}
	close(d.stop)
	err := d.dev.Close()
	<-d.receiverDone
	return err
}

func (d *Driven) receive() {
	for {
		var buf []byte
		select {
		case buf = <-d.free:
		case <-d.stop:
			return
		}
		buf = buf[:cap(buf)]
		n, err := d.dev.ReadFrame(buf[d.rxPad:])
		if !d.running.Load() {
			return
		}
		if err != nil {
			log.SafeDebug(d.logger, "Reading frame", "err", err)
		}
		if err != nil || n == 0 {
			d.free <- buf
			continue
		}
		clear(buf[:d.rxPad])
		d.ready <- buf[:d.rxPad+n]
	}
}

func (d *Driven) ClaimIncoming() ([]byte, bool) {
	if d.claimed != nil {
		panic("ring: incoming buffer claimed twice")
	}
	select {
	case b := <-d.ready:
		d.claimed = b
		return b, true
	default:
		return nil, false
	}
}

func (d *Driven) ReleaseIncoming() {
	if d.claimed == nil {
		panic("ring: release without claim")
	}
	d.free <- d.claimed[:cap(d.claimed)]
	d.claimed = nil
}

func (d *Driven) ClaimOutgoing() []byte {
	return d.out
}

func (d *Driven) CommitOutgoing(n int) {
	if n <= d.txPad {
		return
	}
	if err := d.dev.WriteFrame(d.out[d.txPad:n]); err != nil {
		log.SafeDebug(d.logger, "Writing frame", "err", err, "len", n)
	}
}

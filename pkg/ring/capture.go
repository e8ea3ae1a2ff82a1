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
	"io"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

// Capture is a Ring decorator that writes every received and every
// transmitted frame to a pcap stream. Platform padding ahead of the Ethernet
// header is stripped from the recorded frames.
type Capture struct {
	Ring
	w        *pcapgo.Writer
	rxOffset int
	txOffset int
	out      []byte
	logger   log.Logger
	// Now is the clock used for the capture timestamps.
	Now func() time.Time
}

// NewCapture wraps r and writes the pcap file header to w.
func NewCapture(r Ring, w io.Writer, rxOffset, txOffset int, logger log.Logger) (*Capture, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		return nil, serrors.Wrap("writing pcap header", err)
	}
	return &Capture{
		Ring:     r,
		w:        pw,
		rxOffset: rxOffset,
		txOffset: txOffset,
		logger:   logger,
		Now:      time.Now,
	}, nil
}

func (c *Capture) ClaimIncoming() ([]byte, bool) {
	b, ok := c.Ring.ClaimIncoming()
	if ok {
		c.record(b, c.rxOffset)
	}
	return b, ok
}

func (c *Capture) ClaimOutgoing() []byte {
	c.out = c.Ring.ClaimOutgoing()
	return c.out
}

func (c *Capture) CommitOutgoing(n int) {
	c.record(c.out[:n], c.txOffset)
	c.out = nil
	c.Ring.CommitOutgoing(n)
}

func (c *Capture) record(b []byte, offset int) {
	if len(b) <= offset {
		return
	}
	frame := b[offset:]
	ci := gopacket.CaptureInfo{
		Timestamp:     c.Now(),
		Length:        len(frame),
		CaptureLength: len(frame),
	}
	if err := c.w.WritePacket(ci, frame); err != nil {
		log.SafeError(c.logger, "Writing capture", "err", err)
	}
}

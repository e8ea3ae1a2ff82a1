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

// Package afpacketring provides a ring backed by an AF_PACKET socket bound to
// a host interface. It lets the device stack run on a Linux host in place of
// the FPGA packet router.
package afpacketring

import (
	"errors"
	"net"
	"time"

	"github.com/gopacket/gopacket/afpacket"

	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/private/serrors"
	"github.com/sdrfw/fwnet/pkg/ring"
)

// pollTimeout bounds how long a read blocks, so that a closed socket is
// noticed by the receiver.
const pollTimeout = 200 * time.Millisecond

type device struct {
	tp *afpacket.TPacket
}

// Open opens a packet socket on the named interface and returns a ring on
// top of it. The receiver is not started.
func Open(name string, cfg ring.DrivenConfig, logger log.Logger) (*ring.Driven, error) {
	intf, err := net.InterfaceByName(name)
	if err != nil {
		return nil, serrors.Wrap("finding interface", err, "name", name)
	}
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(intf.Name),
		afpacket.OptPollTimeout(pollTimeout),
	)
	if err != nil {
		return nil, serrors.Wrap("creating TPacket", err, "name", name)
	}
	log.SafeDebug(logger, "Opened packet socket", "name", intf.Name, "index", intf.Index)
	return ring.NewDriven(device{tp: tp}, cfg, logger), nil
}

func (d device) ReadFrame(buf []byte) (int, error) {
	ci, err := d.tp.ReadPacketDataTo(buf)
	if errors.Is(err, afpacket.ErrTimeout) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return min(ci.CaptureLength, len(buf)), nil
}

func (d device) WriteFrame(frame []byte) error {
	return d.tp.WritePacketData(frame)
}

func (d device) Close() error {
	d.tp.Close()
	return nil
}
